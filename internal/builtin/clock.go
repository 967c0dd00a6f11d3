package builtin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fnrelay/gateway/internal/registry"
	"fnrelay/gateway/internal/schema"
)

func timeDefinitions(now func() time.Time) []registry.Definition {
	return []registry.Definition{{
		Schema: schema.NewFunction("current_time").
			Describe("Return the current time as RFC 3339.").
			OptionalArg("timezone", schema.Of(schema.String), "IANA zone name such as Europe/Paris. Defaults to UTC.").
			Returns(schema.Of(schema.String)).
			MustBuild(),
		Implementation: registry.ImplementationFunc(func(_ context.Context, args registry.Args) (any, error) {
			loc := time.UTC
			if zone := strings.TrimSpace(args.String("timezone")); zone != "" {
				l, err := time.LoadLocation(zone)
				if err != nil {
					return nil, fmt.Errorf("load timezone %q: %w", zone, err)
				}
				loc = l
			}
			return now().In(loc).Format(time.RFC3339), nil
		}),
	}}
}

func idDefinitions() []registry.Definition {
	return []registry.Definition{{
		Schema: schema.NewFunction("new_uuid").
			Describe("Generate a random UUID.").
			Returns(schema.Of(schema.String)).
			MustBuild(),
		Implementation: registry.ImplementationFunc(func(context.Context, registry.Args) (any, error) {
			return uuid.NewString(), nil
		}),
	}}
}
