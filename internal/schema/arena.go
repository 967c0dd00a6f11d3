package schema

import "sort"

// Arena holds named object schemas. Types refer to its members by name, so
// cyclic and self references need no nested ownership.
//
// An Arena is not safe for concurrent mutation; callers that share one clone
// it before writing.
type Arena struct {
	objects map[string]ObjectSchema
}

func NewArena(objects ...ObjectSchema) (*Arena, error) {
	a := &Arena{objects: make(map[string]ObjectSchema, len(objects))}
	for _, obj := range objects {
		if err := a.Add(obj); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Add validates obj and stores it, replacing any object with the same name.
// Field refs may point at objects added later.
func (a *Arena) Add(obj ObjectSchema) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	if a.objects == nil {
		a.objects = map[string]ObjectSchema{}
	}
	a.objects[obj.Name] = obj.Clone()
	return nil
}

func (a *Arena) Lookup(name string) (ObjectSchema, bool) {
	if a == nil {
		return ObjectSchema{}, false
	}
	obj, ok := a.objects[name]
	return obj, ok
}

func (a *Arena) Len() int {
	if a == nil {
		return 0
	}
	return len(a.objects)
}

func (a *Arena) Names() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.objects))
	for name := range a.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *Arena) Clone() *Arena {
	out := &Arena{objects: make(map[string]ObjectSchema, a.Len())}
	if a == nil {
		return out
	}
	for name, obj := range a.objects {
		out.objects[name] = obj
	}
	return out
}

// CheckRefs reports a SchemaError when fn, or any object it reaches, names
// an object missing from the arena.
func (a *Arena) CheckRefs(fn FunctionSchema) error {
	visited := map[string]struct{}{}
	check := func(owner, field string, t Type) error {
		return a.checkType(owner, field, t, visited)
	}
	for _, arg := range fn.Arguments {
		if err := check(fn.Name, arg.Name, arg.Type); err != nil {
			return err
		}
	}
	return check(fn.Name, "returns", fn.Returns)
}

func (a *Arena) checkType(owner, field string, t Type, visited map[string]struct{}) error {
	if t.Ref == "" {
		return nil
	}
	if _, done := visited[t.Ref]; done {
		return nil
	}
	obj, ok := a.Lookup(t.Ref)
	if !ok {
		return &SchemaError{Schema: owner, Field: field, Reason: "unknown object " + t.Ref}
	}
	visited[t.Ref] = struct{}{}
	for _, f := range obj.Fields {
		if err := a.checkType(obj.Name, f.Name, f.Type, visited); err != nil {
			return err
		}
	}
	return nil
}

// Closure returns every object reachable from fns, keyed by name.
func (a *Arena) Closure(fns ...FunctionSchema) map[string]ObjectSchema {
	out := map[string]ObjectSchema{}
	var walk func(t Type)
	walk = func(t Type) {
		if t.Ref == "" {
			return
		}
		if _, done := out[t.Ref]; done {
			return
		}
		obj, ok := a.Lookup(t.Ref)
		if !ok {
			return
		}
		out[t.Ref] = obj.Clone()
		for _, f := range obj.Fields {
			walk(f.Type)
		}
	}
	for _, fn := range fns {
		for _, arg := range fn.Arguments {
			walk(arg.Type)
		}
		walk(fn.Returns)
	}
	return out
}
