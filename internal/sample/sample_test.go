package sample

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/san-kum/bemuq/internal/catalog"
	"github.com/san-kum/bemuq/internal/design"
)

func fixtureSpecs() []catalog.ParameterSpec {
	return []catalog.ParameterSpec{
		{
			Kind: "Lights:WattsPerArea", ObjectRef: "Office", Enabled: true,
			Distribution: catalog.Distribution{Family: catalog.Uniform, Variant: catalog.Absolute},
			Min:          catalog.Float(2), Max: catalog.Float(10),
		},
		{
			Kind: "Material:Conductivity", ObjectRef: "Brick", Enabled: true,
			Distribution: catalog.Distribution{Family: catalog.Uniform, Variant: catalog.Relative},
			BaseValue:    catalog.Float(4),
			Min:          catalog.Float(0.5), Max: catalog.Float(1.5),
		},
		{
			Kind: "Boiler:Efficiency", Enabled: true,
			Distribution: catalog.Distribution{Family: catalog.Normal, Variant: catalog.Absolute},
			MeanOrMode:   catalog.Float(5), StdDev: catalog.Float(2),
		},
	}
}

func TestBuild_FixedDesign(t *testing.T) {
	m, err := design.FromRows([][]float64{
		{0.0, 0.0, 0.5},
		{0.5, 1.0, 0.5},
		{1.0, 0.25, 0.5},
	})
	require.NoError(t, err)

	table, err := Build(m, fixtureSpecs())
	require.NoError(t, err)

	require.Equal(t, 3, table.Runs())
	assert.Equal(t, []float64{2, 2, 5}, table.Row(0))
	assert.Equal(t, []float64{6, 6, 5}, table.Row(1))
	assert.Equal(t, []float64{10, 3, 5}, table.Row(2))
	assert.Equal(t, catalog.Identity{Kind: "Material:Conductivity", ObjectRef: "Brick"}, table.Params[1])
}

func TestBuild_SeededPipelineIsReproducible(t *testing.T) {
	specs := fixtureSpecs()

	build := func() *Table {
		rng, _ := design.NewRand(2024)
		m, err := design.LatinHypercube(rng, len(specs), design.LHSConfig{Runs: 25})
		require.NoError(t, err)
		table, err := Build(m, specs)
		require.NoError(t, err)
		return table
	}

	assert.Equal(t, build().Values, build().Values)
}

func TestBuild_Errors(t *testing.T) {
	m, err := design.FromRows([][]float64{{0.5, 0.5}})
	require.NoError(t, err)

	_, err = Build(m, fixtureSpecs())
	assert.Error(t, err, "parameter count mismatch")

	bad := fixtureSpecs()[:2]
	bad[1].BaseValue = nil
	_, err = Build(m, bad)
	assert.ErrorIs(t, err, catalog.ErrMissingShape)
}

func TestGridRoundTrip(t *testing.T) {
	specs := fixtureSpecs()
	rng, _ := design.NewRand(5)
	m, err := design.LatinHypercube(rng, len(specs), design.LHSConfig{Runs: 4})
	require.NoError(t, err)
	table, err := Build(m, specs)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, len(specs)+1)
	assert.Equal(t, "kind,object_ref,run_1,run_2,run_3,run_4", string(lines[0]))

	again, err := ReadTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Params, again.Params)
	assert.Equal(t, table.Values, again.Values)

	buf.Reset()
	require.NoError(t, WriteDesign(&buf, table.Params, m))
	ids, dm, err := ReadDesign(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Params, ids)
	assert.Equal(t, m.Points, dm.Points)
}

func TestReadGrid_Errors(t *testing.T) {
	_, _, err := ReadGrid(bytes.NewBufferString(""))
	assert.Error(t, err)

	_, _, err = ReadGrid(bytes.NewBufferString("name,value\nA,1\n"))
	assert.Error(t, err)

	_, _, err = ReadGrid(bytes.NewBufferString("kind,object_ref,run_1\nA,,oops\n"))
	assert.Error(t, err)
}

func TestWriteXLSX(t *testing.T) {
	specs := fixtureSpecs()
	m, err := design.FromRows([][]float64{{0, 0, 0.5}, {1, 1, 0.5}})
	require.NoError(t, err)
	table, err := Build(m, specs)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "samples.xlsx")
	require.NoError(t, WriteXLSX(path,
		Sheet{Name: "design", Params: table.Params, Values: m.Points},
		Sheet{Name: "samples", Params: table.Params, Values: table.Values},
	))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"design", "samples"}, f.GetSheetList())
	rows, err := f.GetRows("samples")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"kind", "object_ref", "run_1", "run_2"}, rows[0])
	assert.Equal(t, []string{"Lights:WattsPerArea", "Office", "2", "10"}, rows[1])
}
