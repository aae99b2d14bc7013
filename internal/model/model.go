// Package model is an in-memory building model object graph: named objects
// grouped by class, each carrying numeric fields and references to other
// objects. It is the reference adapter the binding registry mutates and the
// reference simulator reads.
package model

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoObject     = errors.New("model: object not found")
	ErrNoField      = errors.New("model: field not found")
	ErrDuplicate    = errors.New("model: duplicate object")
	ErrInvalidModel = errors.New("model: invalid model")
)

// Object is one model instance. Class and Name are compared case-insensitively.
type Object struct {
	Class  string             `yaml:"class"`
	Name   string             `yaml:"name"`
	Fields map[string]float64 `yaml:"fields,omitempty"`
	Refs   map[string]string  `yaml:"refs,omitempty"`
}

func (o *Object) Field(name string) (float64, bool) {
	v, ok := o.Fields[name]
	return v, ok
}

func (o *Object) Ref(name string) string {
	return o.Refs[name]
}

func (o *Object) clone() *Object {
	c := &Object{Class: o.Class, Name: o.Name}
	if o.Fields != nil {
		c.Fields = make(map[string]float64, len(o.Fields))
		for k, v := range o.Fields {
			c.Fields[k] = v
		}
	}
	if o.Refs != nil {
		c.Refs = make(map[string]string, len(o.Refs))
		for k, v := range o.Refs {
			c.Refs[k] = v
		}
	}
	return c
}

// Model keeps objects in insertion order, which is the discovery order seen
// by the binding registry.
type Model struct {
	Name    string    `yaml:"name"`
	Objects []*Object `yaml:"objects"`

	index map[string]*Object
}

func New(name string) *Model {
	return &Model{Name: name, index: make(map[string]*Object)}
}

func key(class, name string) string {
	return strings.ToLower(class) + "\x00" + strings.ToLower(name)
}

func (m *Model) reindex() error {
	m.index = make(map[string]*Object, len(m.Objects))
	for _, o := range m.Objects {
		if o.Class == "" || o.Name == "" {
			return fmt.Errorf("%w: object needs class and name (got %q/%q)", ErrInvalidModel, o.Class, o.Name)
		}
		k := key(o.Class, o.Name)
		if _, dup := m.index[k]; dup {
			return fmt.Errorf("%w: %s %q", ErrDuplicate, o.Class, o.Name)
		}
		m.index[k] = o
	}
	return nil
}

// Add appends o to the model.
func (m *Model) Add(o *Object) error {
	if m.index == nil {
		if err := m.reindex(); err != nil {
			return err
		}
	}
	if o.Class == "" || o.Name == "" {
		return fmt.Errorf("%w: object needs class and name", ErrInvalidModel)
	}
	k := key(o.Class, o.Name)
	if _, dup := m.index[k]; dup {
		return fmt.Errorf("%w: %s %q", ErrDuplicate, o.Class, o.Name)
	}
	if o.Fields == nil {
		o.Fields = make(map[string]float64)
	}
	m.Objects = append(m.Objects, o)
	m.index[k] = o
	return nil
}

// Instances returns the objects of class in model order.
func (m *Model) Instances(class string) []*Object {
	out := make([]*Object, 0)
	for _, o := range m.Objects {
		if strings.EqualFold(o.Class, class) {
			out = append(out, o)
		}
	}
	return out
}

func (m *Model) Object(class, name string) (*Object, bool) {
	if m.index == nil {
		_ = m.reindex()
	}
	o, ok := m.index[key(class, name)]
	return o, ok
}

func (m *Model) Get(class, name, field string) (float64, error) {
	o, ok := m.Object(class, name)
	if !ok {
		return 0, fmt.Errorf("%w: %s %q", ErrNoObject, class, name)
	}
	v, ok := o.Fields[field]
	if !ok {
		return 0, fmt.Errorf("%w: %s %q has no %s", ErrNoField, class, name, field)
	}
	return v, nil
}

// Set overwrites an existing field. Unknown fields are an error so a typo in
// a binding cannot silently add a field the simulator never reads.
func (m *Model) Set(class, name, field string, value float64) error {
	o, ok := m.Object(class, name)
	if !ok {
		return fmt.Errorf("%w: %s %q", ErrNoObject, class, name)
	}
	if _, ok := o.Fields[field]; !ok {
		return fmt.Errorf("%w: %s %q has no %s", ErrNoField, class, name, field)
	}
	o.Fields[field] = value
	return nil
}

// Classes returns the distinct classes in the model, sorted.
func (m *Model) Classes() []string {
	seen := make(map[string]bool)
	for _, o := range m.Objects {
		seen[o.Class] = true
	}
	classes := make([]string, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}

// Clone deep-copies the model so each run mutates its own copy.
func (m *Model) Clone() *Model {
	c := &Model{Name: m.Name, Objects: make([]*Object, len(m.Objects))}
	for i, o := range m.Objects {
		c.Objects[i] = o.clone()
	}
	_ = c.reindex()
	return c
}

func Parse(data []byte) (*Model, error) {
	m := &Model{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	for _, o := range m.Objects {
		if o.Fields == nil {
			o.Fields = make(map[string]float64)
		}
	}
	if err := m.reindex(); err != nil {
		return nil, err
	}
	return m, nil
}

func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Save(path string, m *Model) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
