package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bemuq/internal/analysis"
)

// MuStarBars draws one horizontal bar per parameter, longest first, scaled so
// the largest μ* fills width cells.
func MuStarBars(st Styles, effects []analysis.Effect, width int) string {
	if len(effects) == 0 {
		return ""
	}
	if width < 1 {
		width = 40
	}

	ranked := analysis.Rank(effects)
	labelWidth := 0
	for _, e := range ranked {
		if n := len([]rune(e.Param.String())); n > labelWidth {
			labelWidth = n
		}
	}

	top := ranked[0].MeanAbs
	var b strings.Builder
	for _, e := range ranked {
		label := e.Param.String()
		cells := 0
		if top > 0 {
			cells = int(math.Round(e.MeanAbs / top * float64(width)))
		}
		b.WriteString(st.Label.Render(label + strings.Repeat(" ", labelWidth-len([]rune(label))) + " "))
		b.WriteString(st.Bar.Render(strings.Repeat("█", cells)))
		b.WriteString(st.Subtle.Render(strings.Repeat("·", width-cells)))
		b.WriteString(" ")
		b.WriteString(st.Value.Render(num(e.MeanAbs)))
		b.WriteString("\n")
	}
	return b.String()
}

// ResponseChart plots the sorted finite values of one response column. Read
// left to right it is the empirical quantile function of the response.
func ResponseChart(name string, values []float64, width, height int) string {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) < 2 {
		return ""
	}
	sort.Float64s(sorted)

	if width <= 0 {
		width = 60
	}
	if height <= 0 {
		height = 10
	}
	return asciigraph.Plot(sorted,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Precision(2),
		asciigraph.Caption(fmt.Sprintf("%s, %d runs sorted", name, len(sorted))),
	) + "\n"
}

// EffectsChart plots the individual elementary effects of each parameter as
// one series per parameter, in trajectory order.
func EffectsChart(effects []analysis.Effect, width, height int) string {
	series := make([][]float64, 0, len(effects))
	legends := make([]string, 0, len(effects))
	for _, e := range effects {
		if len(e.Effects) < 2 {
			continue
		}
		series = append(series, e.Effects)
		legends = append(legends, e.Param.String())
	}
	if len(series) == 0 {
		return ""
	}

	colors := []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Green, asciigraph.Blue, asciigraph.Yellow, asciigraph.Cyan, asciigraph.Magenta}
	seriesColors := make([]asciigraph.AnsiColor, len(series))
	for i := range series {
		seriesColors[i] = colors[i%len(colors)]
	}

	if width <= 0 {
		width = 60
	}
	if height <= 0 {
		height = 10
	}
	return asciigraph.PlotMany(series,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.SeriesColors(seriesColors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption("elementary effects per trajectory"),
	) + "\n"
}
