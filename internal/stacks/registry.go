package stacks

import (
	"fmt"
	"sort"

	"github.com/lite-lake/infra-swarmops/internal/domain"
)

type Registry struct {
	definitions map[string]Definition
}

func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{definitions: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		r.definitions[d.Kind()] = d
	}
	return r
}

// DefaultRegistry holds every built-in kind.
func DefaultRegistry() *Registry {
	return NewRegistry(
		newTraefik(),
		newPortainer(),
		newPostgres(),
		newRedis(),
		newPgAdmin(),
		newMinio(),
		newAdminer(),
		newEvolution(),
	)
}

func (r *Registry) Lookup(kind string) (Definition, error) {
	d, ok := r.definitions[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStackKind, kind)
	}
	return d, nil
}

func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.definitions))
	for k := range r.definitions {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
