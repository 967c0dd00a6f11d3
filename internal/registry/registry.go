// Package registry is the process catalog of host functions the agent can
// call: schema, implementation and visibility per name.
//
// The current state lives in an immutable snapshot behind one atomic pointer.
// Writers serialise on a mutex, build the next snapshot and publish it in a
// single store, so readers never lock and never see a half-built entry.
package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"fnrelay/gateway/internal/schema"
)

// Implementation is the callable behind a registered function. Args have
// already been validated against the function's schema.
type Implementation interface {
	Invoke(ctx context.Context, args Args) (any, error)
}

type ImplementationFunc func(ctx context.Context, args Args) (any, error)

func (f ImplementationFunc) Invoke(ctx context.Context, args Args) (any, error) {
	return f(ctx, args)
}

type Entry struct {
	Schema         schema.FunctionSchema
	Implementation Implementation
	Visible        bool
	// Category is the builtin category tag, empty for host registrations.
	Category     string
	RegisteredAt time.Time
}

// Catalog is what discovery hands to the agent: visible functions plus every
// object they reach.
type Catalog struct {
	Functions []schema.FunctionSchema       `json:"functions"`
	Objects   map[string]schema.ObjectSchema `json:"objects"`
}

type Options struct {
	// CallTimeout bounds each CallByName. Zero disables the budget.
	CallTimeout time.Duration
	Builtins    BuiltinCatalog
	Now         func() time.Time
}

type Registry struct {
	mu       sync.Mutex
	snap     atomic.Pointer[snapshot]
	timeout  time.Duration
	builtins BuiltinCatalog
	now      func() time.Time
}

type snapshot struct {
	entries    map[string]*Entry
	order      []string
	objects    *schema.Arena
	validators *validatorCache
}

func New(opts Options) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Registry{
		timeout:  opts.CallTimeout,
		builtins: opts.Builtins,
		now:      opts.Now,
	}
	r.snap.Store(&snapshot{
		entries:    map[string]*Entry{},
		objects:    new(schema.Arena),
		validators: newValidatorCache(),
	})
	return r
}

type registerOptions struct {
	visible  bool
	category string
}

type RegisterOption func(*registerOptions)

// Hidden keeps the function out of discovery. It stays invocable.
func Hidden() RegisterOption {
	return func(o *registerOptions) { o.visible = false }
}

func Visible(visible bool) RegisterOption {
	return func(o *registerOptions) { o.visible = visible }
}

func inCategory(category string) RegisterOption {
	return func(o *registerOptions) { o.category = category }
}

// Register inserts or replaces the function called name. A replaced entry
// keeps its catalog position. Agents that already reasoned about the old
// arguments are not notified.
func (r *Registry) Register(name string, fn schema.FunctionSchema, impl Implementation, opts ...RegisterOption) error {
	o := registerOptions{visible: true}
	for _, opt := range opts {
		opt(&o)
	}
	if fn.Name == "" {
		fn.Name = name
	}
	if fn.Name != name {
		return &schema.SchemaError{Schema: name, Reason: "schema name " + fn.Name + " does not match registration name"}
	}
	if impl == nil {
		return &schema.SchemaError{Schema: name, Reason: "implementation is required"}
	}
	if err := fn.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	if err := cur.objects.CheckRefs(fn); err != nil {
		return err
	}
	entry := &Entry{
		Schema:         fn.Clone(),
		Implementation: impl,
		Visible:        o.visible,
		Category:       o.category,
		RegisteredAt:   r.now(),
	}
	next := cur.copyEntries()
	if _, exists := next.entries[name]; !exists {
		next.order = append(next.order, name)
	}
	next.entries[name] = entry
	r.snap.Store(next)
	return nil
}

// RegisterObject adds or replaces a named object schema. Functions already
// registered keep working; their refs are resolved against the new arena.
func (r *Registry) RegisterObject(obj schema.ObjectSchema) error {
	if err := obj.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	objects := cur.objects.Clone()
	if err := objects.Add(obj); err != nil {
		return err
	}
	r.snap.Store(&snapshot{
		entries:    cur.entries,
		order:      cur.order,
		objects:    objects,
		validators: newValidatorCache(),
	})
	return nil
}

// Remove deletes the function called name and reports whether it existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	if _, ok := cur.entries[name]; !ok {
		return false
	}
	next := cur.copyEntries()
	delete(next.entries, name)
	order := make([]string, 0, len(next.order))
	for _, n := range next.order {
		if n != name {
			order = append(order, n)
		}
	}
	next.order = order
	r.snap.Store(next)
	return true
}

func (r *Registry) Resolve(name string) (Entry, error) {
	entry, ok := r.snap.Load().entries[name]
	if !ok {
		return Entry{}, &NotFoundError{Name: name}
	}
	return *entry, nil
}

// ListVisible returns visible schemas in registration order.
func (r *Registry) ListVisible() []schema.FunctionSchema {
	snap := r.snap.Load()
	out := make([]schema.FunctionSchema, 0, len(snap.order))
	for _, name := range snap.order {
		entry := snap.entries[name]
		if !entry.Visible {
			continue
		}
		out = append(out, entry.Schema.Clone())
	}
	return out
}

// Entries returns every entry, hidden ones included, in registration order.
func (r *Registry) Entries() []Entry {
	snap := r.snap.Load()
	out := make([]Entry, 0, len(snap.order))
	for _, name := range snap.order {
		out = append(out, *snap.entries[name])
	}
	return out
}

func (r *Registry) Catalog() Catalog {
	snap := r.snap.Load()
	functions := make([]schema.FunctionSchema, 0, len(snap.order))
	for _, name := range snap.order {
		entry := snap.entries[name]
		if entry.Visible {
			functions = append(functions, entry.Schema.Clone())
		}
	}
	return Catalog{
		Functions: functions,
		Objects:   snap.objects.Closure(functions...),
	}
}

// InputSchema renders the JSON Schema of a function's arguments against the
// current object arena.
func (r *Registry) InputSchema(fn schema.FunctionSchema) map[string]any {
	return r.snap.Load().objects.InputSchema(fn)
}

func (s *snapshot) copyEntries() *snapshot {
	entries := make(map[string]*Entry, len(s.entries)+1)
	for name, entry := range s.entries {
		entries[name] = entry
	}
	return &snapshot{
		entries:    entries,
		order:      append([]string(nil), s.order...),
		objects:    s.objects,
		validators: s.validators,
	}
}
