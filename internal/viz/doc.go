// Package viz renders analysis results for the terminal.
//
// Tables use lipgloss/table and charts use asciigraph:
//
//   - [EffectsTable]: ranked elementary effects of one response column
//   - [SummaryTable]: spread of every response column over the runs
//   - [MuStarBars]: horizontal μ* bars, the usual screening picture
//   - [ResponseChart]: sorted responses, read as an empirical quantile curve
//
// Colors come from the current [Theme].
package viz
