package catalog

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `kind,object_ref,base_value,distribution,mean_or_mode,std_dev,min,max,enabled
Material:Conductivity,Brick,,Normal Relative,1.0,0.1,,,true
Material:Density,*,,Uniform Relative,,,0.9,1.1,yes
Lights:WattsPerArea,,10,Triangle Absolute,9,,6,14,1
Boiler:Efficiency,,,Normal Absolute,0.8,0.05,,,false
`

func TestReadCSV(t *testing.T) {
	cat, err := ReadCSV(strings.NewReader(sampleCSV), "test.csv")
	require.NoError(t, err)

	require.Len(t, cat.Specs, 3)
	assert.Equal(t, 1, cat.Dropped)

	first := cat.Specs[0]
	assert.Equal(t, "Material:Conductivity", first.Kind)
	assert.Equal(t, "Brick", first.ObjectRef)
	assert.Nil(t, first.BaseValue)
	assert.Equal(t, Distribution{Family: Normal, Variant: Relative}, first.Distribution)
	require.NotNil(t, first.StdDev)
	assert.InDelta(t, 0.1, *first.StdDev, 1e-12)
	assert.Equal(t, 2, first.Row)

	third := cat.Specs[2]
	assert.Equal(t, Triangular, third.Distribution.Family)
	require.NotNil(t, third.BaseValue)
	assert.Equal(t, 10.0, *third.BaseValue)

	assert.Equal(t, []string{"Material:Conductivity", "Material:Density", "Lights:WattsPerArea"}, cat.Kinds())
	assert.NoError(t, cat.Validate())
}

func TestReadCSV_DisabledRowsSkipValidation(t *testing.T) {
	in := "kind,distribution,enabled\nFan:Efficiency,Bogus Thing,false\n"
	cat, err := ReadCSV(strings.NewReader(in), "x.csv")
	require.NoError(t, err)
	assert.Empty(t, cat.Specs)
	assert.Equal(t, 1, cat.Dropped)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"missing kind column", "distribution\nNormal Absolute\n", ErrMalformed},
		{"unknown distribution", "kind,distribution\nA,Weibull Absolute\n", ErrUnknownDistribution},
		{"variant required", "kind,distribution\nA,Normal\n", ErrUnknownDistribution},
		{"non numeric shape", "kind,distribution,mean_or_mode\nA,Normal Absolute,abc\n", ErrInvalidShape},
		{"bad enabled", "kind,distribution,enabled\nA,Normal Absolute,maybe\n", ErrMalformed},
		{"empty", "", ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), "x.csv")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, IsCatalogError(err))
		})
	}
}

func TestParseDistribution(t *testing.T) {
	tests := []struct {
		in   string
		want Distribution
	}{
		{"Normal Absolute", Distribution{Normal, Absolute}},
		{"normal_relative", Distribution{Normal, Relative}},
		{"Triangle-Relative", Distribution{Triangular, Relative}},
		{"Triangular Absolute", Distribution{Triangular, Absolute}},
		{"LogNormal Absolute", Distribution{LogNormal, Absolute}},
		{"Log Normal Absolute", Distribution{LogNormal, Absolute}},
		{"UNIFORM ABS", Distribution{Uniform, Absolute}},
	}
	for _, tt := range tests {
		got, err := ParseDistribution(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDistribution("Beta Absolute")
	assert.ErrorIs(t, err, ErrUnknownDistribution)
}

func TestValidate(t *testing.T) {
	base := ParameterSpec{Row: 2, Kind: "K", Enabled: true}

	tests := []struct {
		name string
		mod  func(*ParameterSpec)
		want error
	}{
		{"normal ok", func(s *ParameterSpec) {
			s.Distribution = Distribution{Normal, Absolute}
			s.MeanOrMode, s.StdDev = Float(5), Float(2)
		}, nil},
		{"normal missing std", func(s *ParameterSpec) {
			s.Distribution = Distribution{Normal, Absolute}
			s.MeanOrMode = Float(5)
		}, ErrMissingShape},
		{"normal negative std", func(s *ParameterSpec) {
			s.Distribution = Distribution{Normal, Relative}
			s.MeanOrMode, s.StdDev = Float(1), Float(-1)
		}, ErrInvalidShape},
		{"uniform inverted", func(s *ParameterSpec) {
			s.Distribution = Distribution{Uniform, Absolute}
			s.Min, s.Max = Float(3), Float(1)
		}, ErrInvalidShape},
		{"uniform missing max", func(s *ParameterSpec) {
			s.Distribution = Distribution{Uniform, Absolute}
			s.Min = Float(3)
		}, ErrMissingShape},
		{"triangle mode outside", func(s *ParameterSpec) {
			s.Distribution = Distribution{Triangular, Absolute}
			s.Min, s.Max, s.MeanOrMode = Float(0), Float(1), Float(2)
		}, ErrInvalidShape},
		{"lognormal relative", func(s *ParameterSpec) {
			s.Distribution = Distribution{LogNormal, Relative}
			s.MeanOrMode, s.StdDev = Float(0), Float(1)
		}, ErrUnknownDistribution},
		{"unknown family", func(s *ParameterSpec) {}, ErrUnknownDistribution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mod(&s)
			err := Validate(s)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, 2, ce.Row)
		})
	}
}

func TestCatalogValidate_ReportsAllRows(t *testing.T) {
	cat := &Catalog{Specs: []ParameterSpec{
		{Row: 2, Kind: "A", Distribution: Distribution{Normal, Absolute}},
		{Row: 3, Kind: "B", Distribution: Distribution{Uniform, Absolute}},
	}}
	err := cat.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "row 3")
}

func TestWriteCSVRoundTrip(t *testing.T) {
	cat, err := ReadCSV(strings.NewReader(sampleCSV), "test.csv")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cat.Specs))

	again, err := ReadCSV(&buf, "again.csv")
	require.NoError(t, err)
	require.Len(t, again.Specs, len(cat.Specs))
	for i := range cat.Specs {
		assert.Equal(t, cat.Specs[i].Identity(), again.Specs[i].Identity())
		assert.Equal(t, cat.Specs[i].Distribution, again.Specs[i].Distribution)
	}
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")

	f := excelize.NewFile()
	rows := [][]any{
		{"Kind", "Object Ref", "Distribution", "Min", "Max", "Enabled"},
		{"Fan:Efficiency", "SupplyFan", "Uniform Absolute", 0.5, 0.7, "TRUE"},
		{"Coil:Cooling:DX:COP", "", "Uniform Absolute", 2.5, 3.5, "FALSE"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	cat, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cat.Specs, 1)
	assert.Equal(t, "SupplyFan", cat.Specs[0].ObjectRef)
	assert.InDelta(t, 0.7, *cat.Specs[0].Max, 1e-12)
	assert.Equal(t, 1, cat.Dropped)
}
