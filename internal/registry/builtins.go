package registry

import (
	"fmt"
	"strings"

	"fnrelay/gateway/internal/schema"
)

// Definition is one built-in function together with the objects its schema
// refers to.
type Definition struct {
	Schema         schema.FunctionSchema
	Implementation Implementation
	Objects        []schema.ObjectSchema
}

type BuiltinCatalog interface {
	// Category returns the definitions of a normalised category tag.
	Category(name string) ([]Definition, bool)
	Categories() []string
}

type categorySet map[string]struct{}

func newCategorySet(categories ...string) categorySet {
	set := categorySet{}
	for _, category := range categories {
		normalized := NormalizeCategory(category)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// ParseCategories splits a comma separated list such as "math, text".
func ParseCategories(raw string) []string {
	out := make([]string, 0)
	seen := newCategorySet()
	for _, part := range strings.Split(raw, ",") {
		name := NormalizeCategory(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// LoadBuiltins registers every function of the given categories as hidden
// entries. Loading is best effort: it stops at the first unknown category and
// keeps whatever was applied before it.
func (r *Registry) LoadBuiltins(categories ...string) error {
	applied := make([]string, 0, len(categories))
	loaded := newCategorySet()
	for _, raw := range categories {
		category := NormalizeCategory(raw)
		if category == "" {
			continue
		}
		if _, dup := loaded[category]; dup {
			continue
		}
		var (
			defs []Definition
			ok   bool
		)
		if r.builtins != nil {
			defs, ok = r.builtins.Category(category)
		}
		if !ok {
			return &UnknownCategoryError{Category: raw, Applied: applied}
		}
		for _, def := range defs {
			for _, obj := range def.Objects {
				if err := r.RegisterObject(obj); err != nil {
					return fmt.Errorf("load builtin category %q: %w", category, err)
				}
			}
			if err := r.Register(def.Schema.Name, def.Schema, def.Implementation, Hidden(), inCategory(category)); err != nil {
				return fmt.Errorf("load builtin category %q: %w", category, err)
			}
		}
		loaded[category] = struct{}{}
		applied = append(applied, category)
	}
	return nil
}
