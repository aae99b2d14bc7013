package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/bemuq/internal/binding"
	"github.com/san-kum/bemuq/internal/model"
	"github.com/san-kum/bemuq/internal/physics"
	"github.com/san-kum/bemuq/internal/runner"
)

// Registry names the building models, simulators and parameter bindings an
// analysis can be assembled from.
type Registry struct {
	models     map[string]func() *model.Model
	simulators map[string]func(physics.Options) runner.Simulator
	bindings   *binding.Registry[*model.Model]
}

func NewRegistry() *Registry {
	r := &Registry{
		models:     make(map[string]func() *model.Model),
		simulators: make(map[string]func(physics.Options) runner.Simulator),
		bindings:   binding.DefaultRegistry(),
	}

	r.models["small_office"] = model.SmallOffice

	r.simulators["reference"] = func(opts physics.Options) runner.Simulator {
		return physics.NewReference(opts)
	}

	return r
}

func (r *Registry) RegisterModel(name string, fn func() *model.Model) {
	r.models[name] = fn
}

func (r *Registry) RegisterSimulator(name string, fn func(physics.Options) runner.Simulator) {
	r.simulators[name] = fn
}

// GetModel returns a built-in model by name or loads a model file.
func (r *Registry) GetModel(name string) (*model.Model, error) {
	if fn, ok := r.models[name]; ok {
		return fn(), nil
	}
	m, err := model.Load(name)
	if err != nil {
		return nil, fmt.Errorf("unknown model: %s: %w", name, err)
	}
	return m, nil
}

func (r *Registry) GetSimulator(name string, opts physics.Options) (runner.Simulator, error) {
	if name == "" {
		name = "reference"
	}
	fn, ok := r.simulators[name]
	if !ok {
		return nil, fmt.Errorf("unknown simulator: %s", name)
	}
	return fn(opts), nil
}

func (r *Registry) Bindings() *binding.Registry[*model.Model] {
	return r.bindings
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListSimulators() []string {
	names := make([]string, 0, len(r.simulators))
	for name := range r.simulators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
