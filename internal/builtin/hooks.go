package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fnrelay/gateway/internal/registry"
	"fnrelay/gateway/internal/schema"
)

var errNoCaller = errors.New("hook functions need an authenticated caller")

func hookDefinitions(hooks HookService) []registry.Definition {
	return []registry.Definition{
		{
			Schema: schema.NewFunction("get_hook").
				Describe("Read a stored value for the calling account. Returns null when unset.").
				Arg("key", schema.Of(schema.String), "Hook key.").
				MustBuild(),
			Implementation: registry.ImplementationFunc(func(ctx context.Context, args registry.Args) (any, error) {
				accountID := registry.CallerFromContext(ctx)
				if accountID == "" {
					return nil, errNoCaller
				}
				hook, err := hooks.Get(ctx, accountID, args.String("key"))
				if err != nil {
					return nil, err
				}
				var value any
				if err := json.Unmarshal(hook.Value, &value); err != nil {
					return nil, fmt.Errorf("decode hook %q: %w", hook.Key, err)
				}
				return value, nil
			}),
		},
		{
			Schema: schema.NewFunction("set_hook").
				Describe("Store a string value for the calling account.").
				Arg("key", schema.Of(schema.String), "Hook key.").
				Arg("value", schema.Of(schema.String), "Value to store.").
				Returns(schema.Of(schema.Boolean)).
				MustBuild(),
			Implementation: registry.ImplementationFunc(func(ctx context.Context, args registry.Args) (any, error) {
				accountID := registry.CallerFromContext(ctx)
				if accountID == "" {
					return nil, errNoCaller
				}
				raw, err := json.Marshal(args.String("value"))
				if err != nil {
					return nil, err
				}
				if _, err := hooks.Set(ctx, accountID, args.String("key"), raw); err != nil {
					return nil, err
				}
				return true, nil
			}),
		},
	}
}
