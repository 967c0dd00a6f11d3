// Package builtin holds the function sets LoadBuiltins can register, grouped
// by category tag.
package builtin

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"fnrelay/gateway/internal/domain"
	"fnrelay/gateway/internal/registry"
)

const (
	CategoryMath  = "math"
	CategoryText  = "text"
	CategoryTime  = "time"
	CategoryIDs   = "ids"
	CategoryHooks = "hooks"
)

// HookService is the slice of hooks.Service the hooks category needs.
type HookService interface {
	Get(ctx context.Context, accountID, key string) (domain.Hook, error)
	Set(ctx context.Context, accountID, key string, value json.RawMessage) (domain.Hook, error)
}

type Options struct {
	// Hooks backs get_hook and set_hook. Without it the hooks category is
	// not offered.
	Hooks HookService
	Now   func() time.Time
}

type Catalog struct {
	categories map[string][]registry.Definition
}

var _ registry.BuiltinCatalog = (*Catalog)(nil)

func New(opts Options) *Catalog {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Catalog{categories: map[string][]registry.Definition{
		CategoryMath: mathDefinitions(),
		CategoryText: textDefinitions(),
		CategoryTime: timeDefinitions(opts.Now),
		CategoryIDs:  idDefinitions(),
	}}
	if opts.Hooks != nil {
		c.categories[CategoryHooks] = hookDefinitions(opts.Hooks)
	}
	return c
}

func (c *Catalog) Category(name string) ([]registry.Definition, bool) {
	defs, ok := c.categories[registry.NormalizeCategory(name)]
	if !ok {
		return nil, false
	}
	return append([]registry.Definition(nil), defs...), true
}

func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.categories))
	for name := range c.categories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
