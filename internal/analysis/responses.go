package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// RunColumn is the optional 1-based run index column of a responses file.
const RunColumn = "run"

// Responses is a response table aligned with design row order.
// Values[c][n] is column c at run n; a missing or non-numeric value is NaN.
type Responses struct {
	Columns []string
	Values  [][]float64
}

func NewResponses(columns []string, runs int) *Responses {
	r := &Responses{Columns: append([]string(nil), columns...), Values: make([][]float64, len(columns))}
	for c := range r.Values {
		r.Values[c] = make([]float64, runs)
		for n := range r.Values[c] {
			r.Values[c][n] = math.NaN()
		}
	}
	return r
}

func (r *Responses) Runs() int {
	if len(r.Values) == 0 {
		return 0
	}
	return len(r.Values[0])
}

func (r *Responses) Column(name string) ([]float64, bool) {
	for i, c := range r.Columns {
		if strings.EqualFold(c, name) {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Set stores one run's responses keyed by column name. Unknown names are ignored.
func (r *Responses) Set(run int, values map[string]float64) {
	for c, name := range r.Columns {
		if v, ok := values[name]; ok {
			r.Values[c][run] = v
		}
	}
}

// ReadResponses parses a responses CSV. With a run column, rows may arrive
// in any order and absent runs stay missing; without one, file order is run
// order. Unparseable cells are kept as missing so only their column fails.
func ReadResponses(rd io.Reader) (*Responses, error) {
	records, err := csv.NewReader(rd).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read responses: empty file")
	}

	header := records[0]
	runCol := -1
	var columns []string
	var colIdx []int
	for i, h := range header {
		h = strings.TrimSpace(h)
		if strings.EqualFold(h, RunColumn) {
			runCol = i
			continue
		}
		columns = append(columns, h)
		colIdx = append(colIdx, i)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("read responses: no response columns")
	}

	rows := records[1:]
	runs := len(rows)
	index := make([]int, len(rows))
	for i := range rows {
		index[i] = i
	}

	if runCol >= 0 {
		runs = 0
		seen := make(map[int]bool)
		for i, row := range rows {
			n, err := strconv.Atoi(strings.TrimSpace(cell(row, runCol)))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("read responses: line %d: bad run index %q", i+2, cell(row, runCol))
			}
			if seen[n] {
				return nil, fmt.Errorf("read responses: line %d: duplicate run %d", i+2, n)
			}
			seen[n] = true
			index[i] = n - 1
			if n > runs {
				runs = n
			}
		}
	}

	resp := NewResponses(columns, runs)
	for i, row := range rows {
		for c, col := range colIdx {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell(row, col)), 64)
			if err != nil {
				continue
			}
			resp.Values[c][index[i]] = v
		}
	}
	return resp, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// WriteCSV writes the table with a leading run column. Missing values are empty.
func (r *Responses) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{RunColumn}, r.Columns...)); err != nil {
		return err
	}
	for n := 0; n < r.Runs(); n++ {
		rec := make([]string, 0, len(r.Columns)+1)
		rec = append(rec, strconv.Itoa(n+1))
		for c := range r.Columns {
			v := r.Values[c][n]
			if math.IsNaN(v) {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
