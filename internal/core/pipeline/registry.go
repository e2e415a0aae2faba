package pipeline

import (
	"sort"

	"github.com/joseph-ayodele/docextract/internal/core/extract"
)

// Registry maps provider names to providers. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	providers map[string]extract.Provider
}

// NewRegistry registers providers by Name(); a later provider with the same
// name replaces an earlier one.
func NewRegistry(providers ...extract.Provider) *Registry {
	r := &Registry{providers: make(map[string]extract.Provider, len(providers))}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Get(name string) (extract.Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
