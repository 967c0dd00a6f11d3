package builtin

import (
	"context"
	"fmt"
	"strings"

	"fnrelay/gateway/internal/registry"
	"fnrelay/gateway/internal/schema"
)

func textDefinitions() []registry.Definition {
	return []registry.Definition{
		{
			Schema: schema.NewFunction("concat_strings").
				Describe("Join strings with an optional separator.").
				Arg("values", schema.Of(schema.Array), "Strings to join.").
				OptionalArg("separator", schema.Of(schema.String), "Inserted between values. Defaults to empty.").
				Returns(schema.Of(schema.String)).
				MustBuild(),
			Implementation: registry.ImplementationFunc(concatStrings),
		},
		{
			Schema: schema.NewFunction("to_upper").
				Describe("Upper-case a string.").
				Arg("text", schema.Of(schema.String), "Input text.").
				Returns(schema.Of(schema.String)).
				MustBuild(),
			Implementation: registry.ImplementationFunc(func(_ context.Context, args registry.Args) (any, error) {
				return strings.ToUpper(args.String("text")), nil
			}),
		},
		{
			Schema: schema.NewFunction("word_count").
				Describe("Count whitespace separated words.").
				Arg("text", schema.Of(schema.String), "Input text.").
				Returns(schema.Of(schema.Number)).
				MustBuild(),
			Implementation: registry.ImplementationFunc(func(_ context.Context, args registry.Args) (any, error) {
				return len(strings.Fields(args.String("text"))), nil
			}),
		},
	}
}

func concatStrings(_ context.Context, args registry.Args) (any, error) {
	items, err := args.Array("values")
	if err != nil {
		return nil, err
	}
	parts := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("values[%d] is not a string", i)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, args.String("separator")), nil
}
