// Package hostfn registers the functions this gateway exposes to agents.
// Most of them are thin visible wrappers over hidden builtins.
package hostfn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fnrelay/gateway/internal/builtin"
	"fnrelay/gateway/internal/registry"
	"fnrelay/gateway/internal/schema"
)

// RequiredCategories must be loaded before Register.
var RequiredCategories = []string{builtin.CategoryMath, builtin.CategoryHooks}

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID        string
	Name      string
	Email     string
	ManagerID string
}

type Directory interface {
	LookupUser(ctx context.Context, id string) (User, error)
}

// StaticDirectory is an in-memory Directory keyed by user id.
type StaticDirectory map[string]User

func (d StaticDirectory) LookupUser(_ context.Context, id string) (User, error) {
	user, ok := d[id]
	if !ok {
		return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return user, nil
}

var userObject = schema.NewObject("User").
	Describe("A person in the directory.").
	Field("id", schema.Of(schema.String), "Stable user id.").
	Field("name", schema.Of(schema.String), "Display name.").
	OptionalField("email", schema.Of(schema.String), "Contact address.").
	OptionalField("manager", schema.Ref("User"), "The user's manager, when known.").
	Persistable().
	MustBuild()

// maxManagerDepth bounds how far lookup_user follows the manager chain.
const maxManagerDepth = 3

func Register(reg *registry.Registry, dir Directory) error {
	for _, name := range []string{"add_numbers", "set_hook", "get_hook"} {
		if _, err := reg.Resolve(name); err != nil {
			return fmt.Errorf("host functions need builtin %q: %w", name, err)
		}
	}
	if err := reg.RegisterObject(userObject); err != nil {
		return err
	}
	defs := []struct {
		fn   schema.FunctionSchema
		impl registry.Implementation
	}{
		{
			fn: schema.NewFunction("sum_numbers").
				Describe("Add up a list of numbers.").
				Arg("numbers", schema.Of(schema.Array), "Numbers to add.").
				Returns(schema.Of(schema.Number)).
				MustBuild(),
			impl: delegate(reg, "add_numbers", func(args registry.Args) map[string]any {
				return map[string]any{"numbers": args["numbers"]}
			}),
		},
		{
			fn: schema.NewFunction("remember").
				Describe("Remember a note under a key for later.").
				Arg("key", schema.Of(schema.String), "Where to store the note.").
				Arg("note", schema.Of(schema.String), "What to remember.").
				Returns(schema.Of(schema.Boolean)).
				MustBuild(),
			impl: delegate(reg, "set_hook", func(args registry.Args) map[string]any {
				return map[string]any{"key": args.String("key"), "value": args.String("note")}
			}),
		},
		{
			fn: schema.NewFunction("recall").
				Describe("Recall a note stored with remember. Returns null when nothing was stored.").
				Arg("key", schema.Of(schema.String), "Key used with remember.").
				MustBuild(),
			impl: delegate(reg, "get_hook", func(args registry.Args) map[string]any {
				return map[string]any{"key": args.String("key")}
			}),
		},
		{
			fn: schema.NewFunction("lookup_user").
				Describe("Look up a user and their management chain.").
				Arg("id", schema.Of(schema.String), "User id.").
				Returns(schema.Ref("User")).
				MustBuild(),
			impl: registry.ImplementationFunc(func(ctx context.Context, args registry.Args) (any, error) {
				if dir == nil {
					return nil, errors.New("no user directory configured")
				}
				return lookupChain(ctx, dir, strings.TrimSpace(args.String("id")), maxManagerDepth)
			}),
		},
	}
	for _, def := range defs {
		if err := reg.Register(def.fn.Name, def.fn, def.impl); err != nil {
			return err
		}
	}
	return nil
}

// delegate forwards to another registered function so it gets the same
// validation and error wrapping as a direct call. The target is resolved on
// every call since it may have been removed after Register.
func delegate(reg *registry.Registry, target string, mapArgs func(registry.Args) map[string]any) registry.Implementation {
	return registry.ImplementationFunc(func(ctx context.Context, args registry.Args) (any, error) {
		if _, err := reg.Resolve(target); err != nil {
			return nil, fmt.Errorf("delegate target %q is gone: %w", target, err)
		}
		result, err := reg.CallByName(ctx, target, mapArgs(args))
		if err != nil {
			return nil, fmt.Errorf("delegate to %q: %w", target, err)
		}
		return result, nil
	})
}

func lookupChain(ctx context.Context, dir Directory, id string, depth int) (map[string]any, error) {
	user, err := dir.LookupUser(ctx, id)
	if err != nil {
		return nil, err
	}
	out := map[string]any{"id": user.ID, "name": user.Name}
	if user.Email != "" {
		out["email"] = user.Email
	}
	if user.ManagerID == "" || user.ManagerID == user.ID || depth <= 0 {
		return out, nil
	}
	manager, err := lookupChain(ctx, dir, user.ManagerID, depth-1)
	if errors.Is(err, ErrUserNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	out["manager"] = manager
	return out, nil
}
