package viz

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/bemuq/internal/analysis"
	"github.com/san-kum/bemuq/internal/binding"
	"github.com/san-kum/bemuq/internal/catalog"
	"github.com/san-kum/bemuq/internal/design"
	"github.com/san-kum/bemuq/internal/sample"
	"github.com/san-kum/bemuq/internal/storage"
)

func effects() []analysis.Effect {
	return []analysis.Effect{
		{Param: catalog.Identity{Kind: "Lights:WattsPerArea", ObjectRef: "Office Lights"}, Mean: 2, MeanAbs: 2, Sigma: 0.5, Effects: []float64{1.5, 2.5}},
		{Param: catalog.Identity{Kind: "Boiler:Efficiency"}, Mean: -8, MeanAbs: 8, Sigma: 1, Effects: []float64{-7, -9}},
		{Param: catalog.Identity{Kind: "Fan:PressureRise", ObjectRef: "Supply Fan"}, Mean: 0, MeanAbs: 0, Sigma: 0, Effects: []float64{0, 0}},
	}
}

func TestEffectsTableRanksByMuStar(t *testing.T) {
	out := EffectsTable(Current(), analysis.ColumnResult{Column: "heating_kwh", Effects: effects()})

	assert.Contains(t, out, "heating_kwh")
	boiler := strings.Index(out, "Boiler:Efficiency")
	lights := strings.Index(out, "Lights:WattsPerArea[Office Lights]")
	fan := strings.Index(out, "Fan:PressureRise[Supply Fan]")
	require.True(t, boiler >= 0 && lights >= 0 && fan >= 0, out)
	assert.Less(t, boiler, lights)
	assert.Less(t, lights, fan)
}

func TestEffectsTableShowsColumnError(t *testing.T) {
	err := &analysis.ResponseDataError{Column: "peak_heating_kw", Run: 3, Reason: "missing response"}
	out := EffectsTable(Current(), analysis.ColumnResult{Column: "peak_heating_kw", Err: err})
	assert.Contains(t, out, "run 3")
}

func TestSummaryTable(t *testing.T) {
	out := SummaryTable(Current(), []analysis.Summary{
		{Column: "total_kwh", N: 10, Mean: 1234.2, Std: 12, Min: 1200, Max: 1270, P5: 1205, P50: 1233, P95: 1265},
		{Column: "unmet_hours", N: 10, Err: errors.New("bad")},
	})
	assert.Contains(t, out, "total_kwh")
	assert.Contains(t, out, "1234")
	assert.Contains(t, out, "unusable")
}

func TestRunsTable(t *testing.T) {
	assert.Contains(t, RunsTable(Current(), nil), "No runs")

	out := RunsTable(Current(), []storage.RunMetadata{{
		ID:        "0123456789abcdef",
		Timestamp: time.Now(),
		Method:    design.MethodMorris,
		Runs:      40,
		Failed:    []int{3},
		Name:      "office screening",
	}})
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "office screening")
}

func TestParametersAndSamplesTables(t *testing.T) {
	params := []binding.Parameter{{
		ParameterSpec: catalog.ParameterSpec{
			Row: 2, Kind: "Material:Conductivity", ObjectRef: "Insulation",
			Distribution: catalog.Distribution{Family: catalog.Uniform, Variant: catalog.Relative},
			BaseValue:    catalog.Float(0.04),
		},
		Pattern: "Material:Conductivity",
	}}
	out := ParametersTable(Current(), params)
	assert.Contains(t, out, "Insulation")
	assert.Contains(t, out, "0.04")

	tbl := &sample.Table{
		Params: []catalog.Identity{{Kind: "K", ObjectRef: "A"}},
		Values: [][]float64{{1}, {2}, {3}},
	}
	out = SamplesTable(Current(), tbl, 2)
	assert.Contains(t, out, "K[A]")
	assert.Contains(t, out, "1 more runs")
}

func TestMuStarBars(t *testing.T) {
	out := MuStarBars(Current(), effects(), 20)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], strings.Repeat("█", 20))
	assert.Contains(t, lines[1], strings.Repeat("█", 5))
	assert.NotContains(t, lines[2], "█")

	assert.Empty(t, MuStarBars(Current(), nil, 20))
}

func TestCharts(t *testing.T) {
	out := ResponseChart("total_kwh", []float64{3, 1, math.NaN(), 2, 5}, 30, 5)
	assert.Contains(t, out, "total_kwh, 4 runs sorted")
	assert.Empty(t, ResponseChart("x", []float64{1}, 30, 5))

	assert.Contains(t, EffectsChart(effects(), 30, 5), "elementary effects")
}

func TestProgressBar(t *testing.T) {
	st := Current()
	assert.Equal(t, 10, strings.Count(ProgressBar(st, 0.5, 10), "█")+strings.Count(ProgressBar(st, 0.5, 10), "░"))
	assert.Equal(t, 10, strings.Count(ProgressBar(st, 2, 10), "█"))
}

func TestThemes(t *testing.T) {
	assert.Equal(t, ThemeOcean, GetTheme("ocean"))
	assert.Equal(t, ThemeCyberpunk, GetTheme("missing"))
	assert.Equal(t, []string{"cyberpunk", "minimal", "ocean"}, ThemeNames())
}
