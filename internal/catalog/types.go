package catalog

import (
	"fmt"
	"strings"
)

type Family int

const (
	FamilyUnknown Family = iota
	Normal
	Uniform
	Triangular
	LogNormal
)

func (f Family) String() string {
	switch f {
	case Normal:
		return "Normal"
	case Uniform:
		return "Uniform"
	case Triangular:
		return "Triangular"
	case LogNormal:
		return "LogNormal"
	default:
		return "Unknown"
	}
}

type Variant int

const (
	Absolute Variant = iota
	Relative
)

func (v Variant) String() string {
	if v == Relative {
		return "Relative"
	}
	return "Absolute"
}

// Distribution is a distribution family together with its absolute/relative variant.
type Distribution struct {
	Family  Family
	Variant Variant
}

func (d Distribution) String() string {
	return d.Family.String() + " " + d.Variant.String()
}

// IsRelative reports whether shape parameters are multiples of the base value.
func (d Distribution) IsRelative() bool {
	return d.Variant == Relative
}

var familyNames = map[string]Family{
	"normal":     Normal,
	"gaussian":   Normal,
	"uniform":    Uniform,
	"triangle":   Triangular,
	"triangular": Triangular,
	"lognormal":  LogNormal,
	"lnorm":      LogNormal,
}

var variantNames = map[string]Variant{
	"absolute": Absolute,
	"abs":      Absolute,
	"relative": Relative,
	"rel":      Relative,
}

// ParseDistribution parses names such as "Normal Absolute", "uniform_relative" or
// "Triangle-Relative". Both the family and the variant are required.
func ParseDistribution(s string) (Distribution, error) {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(s)), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	})
	if len(fields) == 3 && fields[0] == "log" {
		fields = []string{"lognormal", fields[2]}
	}
	if len(fields) != 2 {
		return Distribution{}, fmt.Errorf("%w: %q", ErrUnknownDistribution, s)
	}

	family, ok := familyNames[fields[0]]
	if !ok {
		return Distribution{}, fmt.Errorf("%w: %q", ErrUnknownDistribution, s)
	}
	variant, ok := variantNames[fields[1]]
	if !ok {
		return Distribution{}, fmt.Errorf("%w: %q", ErrUnknownDistribution, s)
	}
	return Distribution{Family: family, Variant: variant}, nil
}

// ParameterSpec is one enabled row of the uncertainty catalog.
type ParameterSpec struct {
	// Row is the 1-based source line (header is row 1); zero for specs built in code.
	Row int

	Kind         string
	ObjectRef    string
	BaseValue    *float64
	Distribution Distribution
	MeanOrMode   *float64
	StdDev       *float64
	Min          *float64
	Max          *float64
	Enabled      bool
}

// Identity is the (kind, object_ref) pair that names a parameter column.
type Identity struct {
	Kind      string `json:"kind"`
	ObjectRef string `json:"object_ref,omitempty"`
}

func (id Identity) String() string {
	if id.ObjectRef == "" {
		return id.Kind
	}
	return id.Kind + "[" + id.ObjectRef + "]"
}

func (s ParameterSpec) Identity() Identity {
	return Identity{Kind: s.Kind, ObjectRef: s.ObjectRef}
}

// WithBase returns a copy of s with BaseValue set to v.
func (s ParameterSpec) WithBase(v float64) ParameterSpec {
	s.BaseValue = Float(v)
	return s
}

// Float returns a pointer to v, for building optional shape parameters.
func Float(v float64) *float64 {
	return &v
}

// Catalog is the ordered set of enabled parameter specs read from one source.
type Catalog struct {
	Source  string
	Specs   []ParameterSpec
	Dropped int
}

// Kinds returns the distinct kinds in first-appearance order.
func (c *Catalog) Kinds() []string {
	seen := make(map[string]bool)
	kinds := make([]string, 0)
	for _, s := range c.Specs {
		if !seen[s.Kind] {
			seen[s.Kind] = true
			kinds = append(kinds, s.Kind)
		}
	}
	return kinds
}

func (c *Catalog) Len() int { return len(c.Specs) }
