// Package sample turns a normalized design into physical parameter values and
// persists design and sample tables for later reloading.
package sample

import (
	"fmt"

	"github.com/san-kum/bemuq/internal/catalog"
	"github.com/san-kum/bemuq/internal/design"
	"github.com/san-kum/bemuq/internal/dist"
)

// Table holds physical parameter values: one row per run, in design order,
// and one column per parameter.
type Table struct {
	Params []catalog.Identity
	Values [][]float64
}

func (t *Table) Runs() int { return len(t.Values) }

func (t *Table) Row(n int) []float64 { return t.Values[n] }

func (t *Table) Column(p int) []float64 {
	col := make([]float64, len(t.Values))
	for i, row := range t.Values {
		col[i] = row[p]
	}
	return col
}

// Build applies each parameter's inverse CDF to its design column. Every spec
// is resolved before any value is computed, so a bad catalog row fails the
// whole build without partial output.
func Build(m *design.Matrix, specs []catalog.ParameterSpec) (*Table, error) {
	if m.Params != len(specs) {
		return nil, fmt.Errorf("sample: design has %d parameters, catalog has %d", m.Params, len(specs))
	}

	quantilers := make([]dist.Quantiler, len(specs))
	ids := make([]catalog.Identity, len(specs))
	for p, s := range specs {
		q, err := dist.Resolve(s)
		if err != nil {
			return nil, err
		}
		quantilers[p] = q
		ids[p] = s.Identity()
	}

	values := design.NewMatrix(m.Runs(), m.Params).Points
	for n, point := range m.Points {
		for p, q := range quantilers {
			v, err := dist.Eval(q, point[p])
			if err != nil {
				return nil, fmt.Errorf("sample: run %d, %s: %w", n+1, ids[p], err)
			}
			values[n][p] = v
		}
	}

	return &Table{Params: ids, Values: values}, nil
}
