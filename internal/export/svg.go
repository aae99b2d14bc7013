// Package export renders analysis results as standalone SVG images.
package export

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/bemuq/internal/analysis"
)

const (
	background = "#0a0a0a"
	foreground = "#d0d0d0"
	muted      = "#555555"
	margin     = 60.0
)

type point struct{ X, Y float64 }

// bounds returns the padded data range of points on both axes, starting at
// zero when fromZero is set.
func bounds(points []point, fromZero bool) (minX, maxX, minY, maxY float64) {
	minX, maxX = points[0].X, points[0].X
	minY, maxY = points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if fromZero {
		minX, minY = 0, 0
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	if !fromZero {
		minX -= rangeX * 0.05
		minY -= rangeY * 0.1
	}
	maxX += rangeX * 0.1
	maxY += rangeY * 0.1
	return
}

func header(sb *strings.Builder, width, height int, title string) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="monospace" font-size="11">
<rect width="100%%" height="100%%" fill="%s"/>
<text x="%d" y="20" fill="%s" font-size="13" text-anchor="middle">%s</text>
`, width, height, width, height, background, width/2, foreground, html.EscapeString(title)))
}

func axes(sb *strings.Builder, width, height int, xLabel, yLabel string) {
	w, h := float64(width), float64(height)
	sb.WriteString(fmt.Sprintf(`<g stroke="%s" stroke-width="1">
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
</g>
<text x="%.1f" y="%.1f" fill="%s" text-anchor="middle">%s</text>
<text x="14" y="%.1f" fill="%s" text-anchor="middle" transform="rotate(-90 14 %.1f)">%s</text>
`,
		muted, margin, h-margin, w-margin/2, h-margin,
		margin, h-margin, margin, margin/2,
		w/2, h-margin/3, foreground, html.EscapeString(xLabel),
		h/2, foreground, h/2, html.EscapeString(yLabel)))
}

// MorrisSVG plots σ against μ* for every parameter of one response column,
// with the σ = μ* guide that separates mostly linear effects from
// nonlinear or interacting ones. Columns without effects give "".
func MorrisSVG(res analysis.ColumnResult, width, height int) string {
	if res.Err != nil || len(res.Effects) == 0 {
		return ""
	}

	points := make([]point, len(res.Effects))
	for i, e := range res.Effects {
		points[i] = point{X: e.MeanAbs, Y: e.Sigma}
	}
	_, maxX, _, maxY := bounds(points, true)
	plotW := float64(width) - 1.5*margin
	plotH := float64(height) - 1.5*margin
	toX := func(v float64) float64 { return margin + v/maxX*plotW }
	toY := func(v float64) float64 { return float64(height) - margin - v/maxY*plotH }

	var sb strings.Builder
	header(&sb, width, height, "Morris screening: "+res.Column)
	axes(&sb, width, height, "μ*", "σ")

	guide := math.Min(maxX, maxY)
	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="4 4"/>
`, toX(0), toY(0), toX(guide), toY(guide), muted))

	sb.WriteString(`<g fill="#00ff9f">` + "\n")
	for i, e := range res.Effects {
		x, y := toX(points[i].X), toY(points[i].Y)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3.5"/>
<text x="%.1f" y="%.1f" fill="%s">%s</text>
`, x, y, x+6, y-6, foreground, html.EscapeString(e.Param.String())))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ResponseSVG draws the sorted finite values of one response column as a
// path, which reads as the empirical quantile function of the response.
func ResponseSVG(name string, values []float64, width, height int, strokeColor string) string {
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

	points := make([]point, len(sorted))
	for i, v := range sorted {
		points[i] = point{X: float64(i) / float64(len(sorted)-1), Y: v}
	}
	minX, maxX, minY, maxY := bounds(points, false)
	rangeX := maxX - minX
	rangeY := maxY - minY
	plotW := float64(width) - 1.5*margin
	plotH := float64(height) - 1.5*margin

	var sb strings.Builder
	header(&sb, width, height, fmt.Sprintf("%s, %d runs", name, len(sorted)))
	axes(&sb, width, height, "quantile", name)

	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" text-anchor="end">%.4g</text>
<text x="%.1f" y="%.1f" fill="%s" text-anchor="end">%.4g</text>
`, margin-4, float64(height)-margin, foreground, minY, margin-4, margin/2+10, foreground, maxY))

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, p := range points {
		x := margin + (p.X-minX)/rangeX*plotW
		y := float64(height) - margin - (p.Y-minY)/rangeY*plotH
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
