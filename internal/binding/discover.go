package binding

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/san-kum/bemuq/internal/catalog"
)

// Parameter is a catalog row bound to exactly one model instance.
// ObjectRef holds the instance id captured at discovery; SourceRef keeps the
// object_ref as written in the catalog.
type Parameter struct {
	catalog.ParameterSpec
	Pattern   string
	SourceRef string
}

func Specs(params []Parameter) []catalog.ParameterSpec {
	specs := make([]catalog.ParameterSpec, len(params))
	for i, p := range params {
		specs[i] = p.ParameterSpec
	}
	return specs
}

func isWildcard(ref string) bool {
	return strings.ContainsAny(ref, "*?[")
}

type kindState[M any] struct {
	entry     *Binding[M]
	instances []Instance
	unnamed   int
	next      int
}

// Discover expands specs into one Parameter per targeted instance.
//
// Each distinct kind is resolved and enumerated once. A named object_ref
// selects that instance, a glob selects every match in discovery order, and
// an empty object_ref selects every instance when it is the kind's only
// empty-ref row. Several empty-ref rows of one kind pair positionally with the
// discovered instances. Relative rows without an explicit base_value take the
// discovered value. Output order is catalog order, then discovery order.
// An instance targeted by two rows, for example by an empty-ref row and a
// named row of the same kind, is an ErrDuplicateBinding.
func (r *Registry[M]) Discover(m M, specs []catalog.ParameterSpec) ([]Parameter, error) {
	kinds := make(map[string]*kindState[M])
	var errs []error

	for _, s := range specs {
		k := strings.ToLower(s.Kind)
		if st, ok := kinds[k]; ok {
			if st != nil && strings.TrimSpace(s.ObjectRef) == "" {
				st.unnamed++
			}
			continue
		}

		e, err := r.Resolve(s.Kind)
		if err != nil {
			var ce *catalog.Error
			if errors.As(err, &ce) {
				ce.Row = s.Row
			}
			errs = append(errs, err)
			kinds[k] = nil
			continue
		}
		instances, err := e.Discover(m)
		if err != nil {
			errs = append(errs, fmt.Errorf("discover %s: %w", s.Kind, err))
			kinds[k] = nil
			continue
		}
		st := &kindState[M]{entry: e, instances: instances}
		if strings.TrimSpace(s.ObjectRef) == "" {
			st.unnamed = 1
		}
		kinds[k] = st
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	var out []Parameter
	bound := make(map[string]int)
	for _, s := range specs {
		st := kinds[strings.ToLower(s.Kind)]
		selected, err := st.selectFor(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, inst := range selected {
			key := st.entry.Pattern + "\x00" + strings.ToLower(inst.ID)
			if prev, ok := bound[key]; ok {
				errs = append(errs, catalog.Errorf(catalog.ErrDuplicateBinding, s,
					"%q is already bound by row %d", inst.ID, prev))
				continue
			}
			bound[key] = s.Row
			p := Parameter{ParameterSpec: s, Pattern: st.entry.Pattern, SourceRef: s.ObjectRef}
			p.ObjectRef = inst.ID
			if p.Distribution.IsRelative() && p.BaseValue == nil {
				p.BaseValue = catalog.Float(inst.Value)
			}
			out = append(out, p)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (st *kindState[M]) selectFor(s catalog.ParameterSpec) ([]Instance, error) {
	ref := strings.TrimSpace(s.ObjectRef)

	switch {
	case ref == "":
		if st.unnamed == 1 {
			if len(st.instances) == 0 {
				return nil, catalog.Errorf(catalog.ErrUnresolvedInstance, s, "model has no instances")
			}
			return st.instances, nil
		}
		if st.next >= len(st.instances) {
			return nil, catalog.Errorf(catalog.ErrUnresolvedInstance, s,
				"%d rows without object_ref but only %d instances", st.unnamed, len(st.instances))
		}
		inst := st.instances[st.next]
		st.next++
		return []Instance{inst}, nil

	case isWildcard(ref):
		// A literal instance name wins over reading it as a glob, so the ids
		// stored with a run rebind to themselves.
		if inst, ok := st.named(ref); ok {
			return []Instance{inst}, nil
		}
		pattern := strings.ToLower(ref)
		var matched []Instance
		for _, inst := range st.instances {
			ok, err := path.Match(pattern, strings.ToLower(inst.ID))
			if err != nil {
				return nil, catalog.Errorf(catalog.ErrMalformed, s, "object_ref %q: %v", ref, err)
			}
			if ok {
				matched = append(matched, inst)
			}
		}
		if len(matched) == 0 {
			return nil, catalog.Errorf(catalog.ErrUnresolvedInstance, s, "no instance matches %q", ref)
		}
		return matched, nil
	}

	if inst, ok := st.named(ref); ok {
		return []Instance{inst}, nil
	}
	return nil, catalog.Errorf(catalog.ErrUnresolvedInstance, s, "%q", ref)
}

func (st *kindState[M]) named(ref string) (Instance, bool) {
	for _, inst := range st.instances {
		if strings.EqualFold(inst.ID, ref) {
			return inst, true
		}
	}
	return Instance{}, false
}
