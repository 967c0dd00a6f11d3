package schema

const defsPrefix = "#/$defs/"

// InputSchema renders fn's arguments as a JSON Schema object, the shape
// model providers expect for tool input. Objects are inlined until the first
// cycle; a revisited object becomes a {"$ref": "#/$defs/<Name>"} back-reference
// and its definition is emitted once under "$defs".
func (a *Arena) InputSchema(fn FunctionSchema) map[string]any {
	r := newRenderer(a)
	doc := r.fields(fn.Arguments)
	return r.finish(doc)
}

// ObjectDocument renders the named object as a standalone JSON Schema
// document. ok is false when the arena has no such object.
func (a *Arena) ObjectDocument(name string) (map[string]any, bool) {
	obj, ok := a.Lookup(name)
	if !ok {
		return nil, false
	}
	r := newRenderer(a)
	r.stack[name] = true
	doc := r.object(obj)
	return r.finish(doc), true
}

type renderer struct {
	arena *Arena
	stack map[string]bool
	defs  map[string]any
}

func newRenderer(a *Arena) *renderer {
	return &renderer{arena: a, stack: map[string]bool{}, defs: map[string]any{}}
}

func (r *renderer) finish(doc map[string]any) map[string]any {
	if len(r.defs) > 0 {
		doc["$defs"] = r.defs
	}
	return doc
}

func (r *renderer) fields(fields []Field) map[string]any {
	props := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		prop := r.typeOf(f.Type)
		if f.Description != "" {
			prop["description"] = f.Description
		}
		props[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func (r *renderer) object(obj ObjectSchema) map[string]any {
	out := r.fields(obj.Fields)
	out["title"] = obj.Name
	if obj.Description != "" {
		out["description"] = obj.Description
	}
	return out
}

func (r *renderer) typeOf(t Type) map[string]any {
	if t.Ref == "" {
		if t.Kind == "" {
			return map[string]any{}
		}
		return map[string]any{"type": string(t.Kind)}
	}
	obj, ok := r.arena.Lookup(t.Ref)
	if !ok {
		return map[string]any{"type": "object"}
	}
	if r.stack[t.Ref] {
		r.define(obj)
		return map[string]any{"$ref": defsPrefix + t.Ref}
	}
	r.stack[t.Ref] = true
	out := r.object(obj)
	delete(r.stack, t.Ref)
	return out
}

// define renders obj once into $defs with a fresh stack rooted at obj, so a
// definition never depends on where the cycle was first seen.
func (r *renderer) define(obj ObjectSchema) {
	if _, done := r.defs[obj.Name]; done {
		return
	}
	r.defs[obj.Name] = map[string]any{}
	saved := r.stack
	r.stack = map[string]bool{obj.Name: true}
	r.defs[obj.Name] = r.object(obj)
	r.stack = saved
}
