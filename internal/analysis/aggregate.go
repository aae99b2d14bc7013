package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/san-kum/bemuq/internal/catalog"
	"github.com/san-kum/bemuq/internal/design"
)

var ErrResponseData = errors.New("analysis: unusable response data")

// ResponseDataError marks one response column as unusable. Other columns of
// the same table are unaffected.
type ResponseDataError struct {
	Column string
	Run    int
	Reason string
}

func (e *ResponseDataError) Error() string {
	return fmt.Sprintf("analysis: column %q run %d: %s", e.Column, e.Run, e.Reason)
}

func (e *ResponseDataError) Unwrap() error {
	return ErrResponseData
}

// checkColumn returns the first missing or non-finite run, 1-based.
func checkColumn(name string, values []float64, runs int) error {
	if len(values) < runs {
		return &ResponseDataError{Column: name, Run: len(values) + 1, Reason: "missing response"}
	}
	for n := 0; n < runs; n++ {
		if math.IsNaN(values[n]) || math.IsInf(values[n], 0) {
			return &ResponseDataError{Column: name, Run: n + 1, Reason: "missing or non-numeric response"}
		}
	}
	return nil
}

// ColumnResult is the sensitivity table for one response column.
// Err is set instead of Effects when the column could not be analyzed.
type ColumnResult struct {
	Column  string
	Effects []Effect
	Err     error
}

// Aggregate runs ElementaryEffects independently on every response column.
func Aggregate(m *design.Matrix, params []catalog.Identity, resp *Responses) []ColumnResult {
	results := make([]ColumnResult, len(resp.Columns))
	for c, name := range resp.Columns {
		results[c].Column = name

		if err := checkColumn(name, resp.Values[c], m.Runs()); err != nil {
			results[c].Err = err
			continue
		}
		effects, err := ElementaryEffects(m, resp.Values[c][:m.Runs()])
		if err != nil {
			results[c].Err = err
			continue
		}
		for i := range effects {
			if i < len(params) {
				effects[i].Param = params[i]
			}
		}
		results[c].Effects = effects
	}
	return results
}

// Rank returns effects ordered by MeanAbs, largest first.
func Rank(effects []Effect) []Effect {
	out := make([]Effect, len(effects))
	copy(out, effects)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeanAbs > out[j].MeanAbs
	})
	return out
}

// WriteEffectsCSV writes one column result as kind,object_ref,mean,mean_abs,sigma.
func WriteEffectsCSV(w io.Writer, res ColumnResult) error {
	if res.Err != nil {
		return res.Err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kind", "object_ref", "mean", "mean_abs", "sigma"}); err != nil {
		return err
	}
	for _, e := range res.Effects {
		rec := []string{
			e.Param.Kind,
			e.Param.ObjectRef,
			strconv.FormatFloat(e.Mean, 'g', -1, 64),
			strconv.FormatFloat(e.MeanAbs, 'g', -1, 64),
			strconv.FormatFloat(e.Sigma, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
