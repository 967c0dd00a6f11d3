// Package schema describes the functions a host exposes to the agent: their
// names, typed arguments and return shapes, plus the named object schemas
// those types refer to.
//
// Values in this package are plain data. They serialise to JSON without loss
// and carry no implementation references.
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Primitive string

const (
	String  Primitive = "string"
	Number  Primitive = "number"
	Boolean Primitive = "boolean"
	Array   Primitive = "array"
	Object  Primitive = "object"
)

var ErrInvalidSchema = errors.New("invalid_schema")

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]{0,127}$`)

// SchemaError reports a malformed function or object schema. It aborts the
// registration that produced it and nothing else.
type SchemaError struct {
	Schema string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("schema %q: field %q: %s", e.Schema, e.Field, e.Reason)
	}
	return fmt.Sprintf("schema %q: %s", e.Schema, e.Reason)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// Type is an argument, field or return type. Ref names an ObjectSchema and is
// only meaningful when Kind is Object.
type Type struct {
	Kind Primitive `json:"type,omitempty"`
	Ref  string    `json:"ref,omitempty"`
}

func Of(kind Primitive) Type {
	return Type{Kind: kind}
}

// Ref returns an object type that refers to the named ObjectSchema.
func Ref(name string) Type {
	return Type{Kind: Object, Ref: name}
}

func (t Type) IsZero() bool {
	return t.Kind == "" && t.Ref == ""
}

func (t Type) String() string {
	if t.Ref != "" {
		return "object<" + t.Ref + ">"
	}
	return string(t.Kind)
}

func (t Type) validate() error {
	switch t.Kind {
	case String, Number, Boolean, Array:
		if t.Ref != "" {
			return fmt.Errorf("ref %q is only allowed on object types", t.Ref)
		}
		return nil
	case Object:
		if t.Ref != "" && !namePattern.MatchString(t.Ref) {
			return fmt.Errorf("invalid object ref %q", t.Ref)
		}
		return nil
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("unknown type %q", t.Kind)
	}
}

// Field is one named, typed slot of a function's arguments or an object.
type Field struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type
	Required bool `json:"required"`
}

type FunctionSchema struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Arguments   []Field `json:"arguments"`
	Returns     Type    `json:"returns"`
}

// Validate checks names, argument uniqueness and types. Object references
// are not resolved here; see Arena.CheckRefs.
func (f FunctionSchema) Validate() error {
	if !namePattern.MatchString(f.Name) {
		return &SchemaError{Schema: f.Name, Reason: "name must match " + namePattern.String()}
	}
	if err := validateFields(f.Name, f.Arguments); err != nil {
		return err
	}
	if f.Returns.IsZero() {
		return nil
	}
	if err := f.Returns.validate(); err != nil {
		return &SchemaError{Schema: f.Name, Field: "returns", Reason: err.Error()}
	}
	return nil
}

// Argument returns the declared argument with the given name.
func (f FunctionSchema) Argument(name string) (Field, bool) {
	for _, arg := range f.Arguments {
		if arg.Name == name {
			return arg, true
		}
	}
	return Field{}, false
}

// Clone returns a copy that shares no slices with f.
func (f FunctionSchema) Clone() FunctionSchema {
	out := f
	out.Arguments = append([]Field(nil), f.Arguments...)
	if out.Arguments == nil {
		out.Arguments = []Field{}
	}
	return out
}

type ObjectSchema struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
	// IsPersistable is display metadata for the settings UI.
	IsPersistable bool `json:"isPersistable,omitempty"`
}

func (o ObjectSchema) Validate() error {
	if !namePattern.MatchString(o.Name) {
		return &SchemaError{Schema: o.Name, Reason: "name must match " + namePattern.String()}
	}
	return validateFields(o.Name, o.Fields)
}

func (o ObjectSchema) Clone() ObjectSchema {
	out := o
	out.Fields = append([]Field(nil), o.Fields...)
	if out.Fields == nil {
		out.Fields = []Field{}
	}
	return out
}

func validateFields(owner string, fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" || name != field.Name {
			return &SchemaError{Schema: owner, Field: field.Name, Reason: "field name must be non-empty without surrounding spaces"}
		}
		if _, dup := seen[name]; dup {
			return &SchemaError{Schema: owner, Field: name, Reason: "duplicate name"}
		}
		seen[name] = struct{}{}
		if err := field.Type.validate(); err != nil {
			return &SchemaError{Schema: owner, Field: name, Reason: err.Error()}
		}
	}
	return nil
}
