package design

import (
	"fmt"
	"strings"
)

type Method string

const (
	MethodLHD    Method = "lhd"
	MethodMorris Method = "morris"
)

// ParseMethod accepts the method names used in configs and on the command line.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lhd", "lhs", "latin", "latin_hypercube", "ua":
		return MethodLHD, nil
	case "morris", "oat", "ee", "sa":
		return MethodMorris, nil
	default:
		return "", invalid("method", s, "expected lhd or morris")
	}
}

// Matrix is an ordered set of normalized design points, one row per run and
// one column per parameter. Row order is the run order of the whole analysis.
type Matrix struct {
	Points [][]float64
	Params int
	// Range is the width of the interval a unit grid was rescaled into.
	// Zero means the points are unit-grid coordinates.
	Range float64
}

// NewMatrix allocates a zeroed runs x params matrix backed by one slice.
func NewMatrix(runs, params int) *Matrix {
	backing := make([]float64, runs*params)
	points := make([][]float64, runs)
	for i := range points {
		points[i] = backing[i*params : (i+1)*params : (i+1)*params]
	}
	return &Matrix{Points: points, Params: params}
}

// FromRows wraps rows as a Matrix after checking they are rectangular.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{}, nil
	}
	p := len(rows[0])
	for i, r := range rows {
		if len(r) != p {
			return nil, fmt.Errorf("design: row %d has %d columns, want %d", i, len(r), p)
		}
	}
	return &Matrix{Points: rows, Params: p}, nil
}

// Unit converts a difference between design points back to unit-grid length.
func (m *Matrix) Unit(d float64) float64 {
	if m.Range > 0 {
		return d / m.Range
	}
	return d
}

func (m *Matrix) Runs() int { return len(m.Points) }

func (m *Matrix) Row(n int) []float64 { return m.Points[n] }

func (m *Matrix) At(n, p int) float64 { return m.Points[n][p] }

// Column copies out the values of parameter p across all runs.
func (m *Matrix) Column(p int) []float64 {
	col := make([]float64, len(m.Points))
	for i, row := range m.Points {
		col[i] = row[p]
	}
	return col
}
