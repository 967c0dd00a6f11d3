package builtin

import (
	"context"
	"errors"
	"math"

	"fnrelay/gateway/internal/registry"
	"fnrelay/gateway/internal/schema"
)

func mathDefinitions() []registry.Definition {
	return []registry.Definition{
		{
			Schema: schema.NewFunction("add_numbers").
				Describe("Add a list of numbers and return the sum.").
				Arg("numbers", schema.Of(schema.Array), "Numbers to add.").
				Returns(schema.Of(schema.Number)).
				MustBuild(),
			Implementation: registry.ImplementationFunc(addNumbers),
		},
		{
			Schema: schema.NewFunction("multiply_numbers").
				Describe("Multiply a list of numbers and return the product.").
				Arg("numbers", schema.Of(schema.Array), "Numbers to multiply.").
				Returns(schema.Of(schema.Number)).
				MustBuild(),
			Implementation: registry.ImplementationFunc(multiplyNumbers),
		},
	}
}

func addNumbers(_ context.Context, args registry.Args) (any, error) {
	values, err := args.Numbers("numbers")
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return finite(total)
}

func multiplyNumbers(_ context.Context, args registry.Args) (any, error) {
	values, err := args.Numbers("numbers")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return 0.0, nil
	}
	product := 1.0
	for _, v := range values {
		product *= v
	}
	return finite(product)
}

// finite rejects results encoding/json cannot represent.
func finite(v float64) (any, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, errors.New("result is not a finite number")
	}
	return v, nil
}
