// Package binding maps catalog parameter kinds onto mutation points of a
// building model.
//
// A Registry is a flat table from kind pattern to a pair of capability
// functions: Discover enumerates the model instances a kind can target and
// their current values, Apply writes a sampled value back into one instance.
// Supporting a new kind of uncertain parameter means registering one more
// Binding; the sampling code never changes.
//
// Registries are built once at process start and only read afterwards, so a
// built registry is safe for concurrent use.
package binding

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/bemuq/internal/catalog"
)

var ErrDuplicatePattern = errors.New("binding: pattern already registered")

// Instance is one discovered mutation target and its value at discovery time.
type Instance struct {
	ID    string
	Value float64
}

type DiscoverFunc[M any] func(m M) ([]Instance, error)

type ApplyFunc[M any] func(m M, id string, value float64) error

// Binding binds a kind pattern to its capability functions.
type Binding[M any] struct {
	Pattern     string
	Description string
	Discover    DiscoverFunc[M]
	Apply       ApplyFunc[M]
}

// Registry resolves parameter kinds for models of type M.
type Registry[M any] struct {
	entries []Binding[M]
	index   map[string]int
}

func NewRegistry[M any]() *Registry[M] {
	return &Registry[M]{index: make(map[string]int)}
}

// Register adds e. Patterns are compared case-insensitively and must be unique.
func (r *Registry[M]) Register(e Binding[M]) error {
	p := strings.ToLower(strings.TrimSpace(e.Pattern))
	if p == "" {
		return fmt.Errorf("binding: empty pattern")
	}
	if e.Discover == nil || e.Apply == nil {
		return fmt.Errorf("binding: %s: discover and apply are required", e.Pattern)
	}
	if _, dup := r.index[p]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicatePattern, e.Pattern)
	}
	r.index[p] = len(r.entries)
	r.entries = append(r.entries, e)
	return nil
}

func (r *Registry[M]) MustRegister(entries ...Binding[M]) *Registry[M] {
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}

// Bindings returns the registered bindings sorted by pattern.
func (r *Registry[M]) Bindings() []Binding[M] {
	out := make([]Binding[M], len(r.entries))
	copy(out, r.entries)
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Pattern) < strings.ToLower(out[j].Pattern)
	})
	return out
}

func (r *Registry[M]) Len() int { return len(r.entries) }

// Resolve finds the entry whose pattern occurs in kind. When several patterns
// match, the longest one wins; two matches of the same length are ambiguous.
func (r *Registry[M]) Resolve(kind string) (*Binding[M], error) {
	k := strings.ToLower(strings.TrimSpace(kind))

	best, bestLen := -1, -1
	tie := ""
	for i := range r.entries {
		p := strings.ToLower(strings.TrimSpace(r.entries[i].Pattern))
		if !strings.Contains(k, p) {
			continue
		}
		switch {
		case len(p) > bestLen:
			best, bestLen, tie = i, len(p), ""
		case len(p) == bestLen:
			tie = r.entries[i].Pattern
		}
	}

	if best < 0 {
		return nil, &catalog.Error{Kind: kind, Wrapped: catalog.ErrUnknownKind}
	}
	if tie != "" {
		return nil, &catalog.Error{
			Kind:    kind,
			Detail:  fmt.Sprintf("patterns %q and %q match equally", r.entries[best].Pattern, tie),
			Wrapped: catalog.ErrAmbiguousKind,
		}
	}
	return &r.entries[best], nil
}

func (r *Registry[M]) lookup(pattern string) (*Binding[M], bool) {
	i, ok := r.index[strings.ToLower(strings.TrimSpace(pattern))]
	if !ok {
		return nil, false
	}
	return &r.entries[i], true
}

// Apply resolves kind and writes value into the instance id.
func (r *Registry[M]) Apply(m M, kind, id string, value float64) error {
	e, err := r.Resolve(kind)
	if err != nil {
		return err
	}
	if err := e.Apply(m, id, value); err != nil {
		return fmt.Errorf("apply %s[%s]: %w", kind, id, err)
	}
	return nil
}

// ApplyRow writes value through the entry captured when p was discovered.
func (r *Registry[M]) ApplyRow(m M, p Parameter, value float64) error {
	e, ok := r.lookup(p.Pattern)
	if !ok {
		return r.Apply(m, p.Kind, p.ObjectRef, value)
	}
	if err := e.Apply(m, p.ObjectRef, value); err != nil {
		return fmt.Errorf("apply %s: %w", p.Identity(), err)
	}
	return nil
}

// ApplyRun writes one sample row into m, parameter by parameter in order.
func (r *Registry[M]) ApplyRun(m M, params []Parameter, row []float64) error {
	if len(row) != len(params) {
		return fmt.Errorf("binding: sample row has %d values for %d parameters", len(row), len(params))
	}
	for i, p := range params {
		if err := r.ApplyRow(m, p, row[i]); err != nil {
			return err
		}
	}
	return nil
}
