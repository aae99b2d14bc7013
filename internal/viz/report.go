package viz

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/bemuq/internal/analysis"
	"github.com/san-kum/bemuq/internal/binding"
	"github.com/san-kum/bemuq/internal/model"
	"github.com/san-kum/bemuq/internal/sample"
	"github.com/san-kum/bemuq/internal/storage"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func newTable(st Styles, numeric map[int]bool) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.Header
			}
			if numeric[col] {
				return st.Cell.Align(lipgloss.Right)
			}
			return st.Cell
		})
}

// EffectsTable renders one column's elementary effects ranked by μ*.
func EffectsTable(st Styles, res analysis.ColumnResult) string {
	title := st.Title.Render("Elementary effects: " + res.Column)
	if res.Err != nil {
		return title + "\n" + st.Error.Render(res.Err.Error()) + "\n"
	}

	t := newTable(st, map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true}).
		Headers("#", "parameter", "μ", "μ*", "σ", "σ/μ*")
	for i, e := range analysis.Rank(res.Effects) {
		ratio := "-"
		if e.MeanAbs > 0 {
			ratio = num(e.Sigma / e.MeanAbs)
		}
		t.Row(strconv.Itoa(i+1), e.Param.String(), num(e.Mean), num(e.MeanAbs), num(e.Sigma), ratio)
	}
	return title + "\n" + t.Render() + "\n"
}

// SummaryTable renders the uncertainty summary of every response column.
func SummaryTable(st Styles, summaries []analysis.Summary) string {
	title := st.Title.Render("Response uncertainty")
	t := newTable(st, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}).
		Headers("response", "n", "mean", "std", "p5", "p50", "p95", "range")
	for _, s := range summaries {
		if s.Err != nil {
			t.Row(s.Column, strconv.Itoa(s.N), "-", "-", "-", "-", "-", st.Error.Render("unusable"))
			continue
		}
		t.Row(s.Column, strconv.Itoa(s.N), num(s.Mean), num(s.Std), num(s.P5), num(s.P50), num(s.P95),
			fmt.Sprintf("%s..%s", num(s.Min), num(s.Max)))
	}
	return title + "\n" + t.Render() + "\n"
}

// RunsTable lists stored runs.
func RunsTable(st Styles, runs []storage.RunMetadata) string {
	if len(runs) == 0 {
		return st.Subtle.Render("No runs stored.") + "\n"
	}
	t := newTable(st, map[int]bool{3: true, 4: true, 5: true}).
		Headers("id", "created", "method", "params", "runs", "failed", "name")
	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		failed := strconv.Itoa(len(r.Failed))
		if len(r.Failed) > 0 {
			failed = st.Warning.Render(failed)
		}
		t.Row(id, r.Timestamp.Local().Format("2006-01-02 15:04"), string(r.Method),
			strconv.Itoa(len(r.Params)), strconv.Itoa(r.Runs), failed, r.Name)
	}
	return t.Render() + "\n"
}

// ParametersTable shows the catalog rows bound to model instances.
func ParametersTable(st Styles, params []binding.Parameter) string {
	t := newTable(st, map[int]bool{0: true, 5: true}).
		Headers("row", "kind", "catalog ref", "instance", "distribution", "base")
	for _, p := range params {
		base := "-"
		if p.BaseValue != nil {
			base = num(*p.BaseValue)
		}
		row := "-"
		if p.Row > 0 {
			row = strconv.Itoa(p.Row)
		}
		ref := p.SourceRef
		if ref == "" {
			ref = st.Subtle.Render("(all)")
		}
		t.Row(row, p.Kind, ref, p.ObjectRef, p.Distribution.String(), base)
	}
	return t.Render() + "\n"
}

// KindsTable lists the registered parameter kinds.
func KindsTable(st Styles, bindings []binding.Binding[*model.Model]) string {
	t := newTable(st, nil).Headers("kind", "description")
	for _, b := range bindings {
		t.Row(b.Pattern, b.Description)
	}
	return t.Render() + "\n"
}

// SamplesTable shows the first limit rows of a sample table, one column per
// parameter. limit <= 0 shows every row.
func SamplesTable(st Styles, tbl *sample.Table, limit int) string {
	numeric := map[int]bool{0: true}
	headers := []string{"run"}
	for i, id := range tbl.Params {
		numeric[i+1] = true
		headers = append(headers, id.String())
	}

	t := newTable(st, numeric).Headers(headers...)
	runs := tbl.Runs()
	if limit > 0 && limit < runs {
		runs = limit
	}
	for n := 0; n < runs; n++ {
		row := []string{strconv.Itoa(n + 1)}
		for _, v := range tbl.Row(n) {
			row = append(row, num(v))
		}
		t.Row(row...)
	}

	out := t.Render() + "\n"
	if runs < tbl.Runs() {
		out += st.Subtle.Render(fmt.Sprintf("... %d more runs", tbl.Runs()-runs)) + "\n"
	}
	return out
}
