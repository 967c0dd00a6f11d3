package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"fnrelay/gateway/internal/schema"
)

// validateArgs checks each declared argument in declaration order and stops
// at the first mismatch. Undeclared arguments pass through untouched.
func (s *snapshot) validateArgs(fn schema.FunctionSchema, args Args) error {
	for _, arg := range fn.Arguments {
		value, present := args[arg.Name]
		if !present || value == nil {
			if arg.Required {
				return &ArgumentValidationError{Function: fn.Name, Field: arg.Name, Reason: "is required"}
			}
			continue
		}
		if reason := s.checkValue(arg.Type, value); reason != "" {
			return &ArgumentValidationError{Function: fn.Name, Field: arg.Name, Reason: reason}
		}
	}
	return nil
}

func (s *snapshot) checkValue(t schema.Type, value any) string {
	got := kindOf(value)
	if got != t.Kind {
		return fmt.Sprintf("expected %s, got %s", t.Kind, describeKind(got))
	}
	if t.Ref == "" {
		return ""
	}
	validator, err := s.validators.get(s.objects, t.Ref)
	if err != nil {
		return fmt.Sprintf("cannot be checked against object %s: %v", t.Ref, err)
	}
	if err := validator.validate(value); err != nil {
		return fmt.Sprintf("does not match object %s: %s", t.Ref, firstLine(err.Error()))
	}
	return ""
}

func kindOf(value any) schema.Primitive {
	switch value.(type) {
	case string:
		return schema.String
	case bool:
		return schema.Boolean
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return schema.Number
	case []any:
		return schema.Array
	case map[string]any:
		return schema.Object
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return schema.Array
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return schema.Object
		}
	case reflect.Struct:
		return schema.Object
	}
	return ""
}

func describeKind(kind schema.Primitive) string {
	if kind == "" {
		return "unsupported value"
	}
	return string(kind)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}

type objectValidator struct {
	compiled *jsonschema.Schema
}

// validate normalises value through JSON first so Go-typed values (structs,
// typed slices) check the same way decoded request bodies do.
func (v objectValidator) validate(value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	return v.compiled.Validate(doc)
}

// validatorCache compiles object schemas on first use. It belongs to one
// arena and is discarded with it.
type validatorCache struct {
	mu    sync.Mutex
	byRef map[string]objectValidator
}

func newValidatorCache() *validatorCache {
	return &validatorCache{byRef: map[string]objectValidator{}}
}

func (c *validatorCache) get(arena *schema.Arena, ref string) (objectValidator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.byRef[ref]; ok {
		return v, nil
	}
	doc, ok := arena.ObjectDocument(ref)
	if !ok {
		return objectValidator{}, fmt.Errorf("unknown object %s", ref)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return objectValidator{}, fmt.Errorf("marshal schema: %w", err)
	}
	decoded, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return objectValidator{}, fmt.Errorf("unmarshal schema: %w", err)
	}
	url := ref + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, decoded); err != nil {
		return objectValidator{}, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return objectValidator{}, fmt.Errorf("compile schema: %w", err)
	}
	v := objectValidator{compiled: compiled}
	c.byRef[ref] = v
	return v, nil
}
