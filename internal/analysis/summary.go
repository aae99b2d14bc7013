package analysis

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/montanaflynn/stats"
)

// Summary describes the spread of one response column over all runs.
type Summary struct {
	Column string
	N      int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	P5     float64
	P50    float64
	P95    float64
	Err    error
}

// Summarize computes a Summary for every column. A column with missing
// values gets a ResponseDataError and the others are still summarized.
func Summarize(resp *Responses) []Summary {
	out := make([]Summary, len(resp.Columns))
	for c, name := range resp.Columns {
		out[c] = summarize(name, resp.Values[c])
	}
	return out
}

func summarize(name string, values []float64) Summary {
	s := Summary{Column: name, N: len(values)}
	if len(values) == 0 {
		s.Err = &ResponseDataError{Column: name, Run: 1, Reason: "no runs"}
		return s
	}
	if err := checkColumn(name, values, len(values)); err != nil {
		s.Err = err
		return s
	}

	data := stats.Float64Data(values)
	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		s.Err = err
		return s
	}
	if len(values) > 1 {
		if s.Std, err = stats.StandardDeviationSample(data); err != nil {
			s.Err = err
			return s
		}
	}
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	s.P50, _ = stats.Median(data)
	s.P5, _ = stats.Percentile(data, 5)
	s.P95, _ = stats.Percentile(data, 95)
	return s
}

// WriteSummaryCSV writes one line per column. Columns that could not be
// summarized keep their name and carry the error text.
func WriteSummaryCSV(w io.Writer, summaries []Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"column", "n", "mean", "std", "min", "p5", "p50", "p95", "max", "error"}); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, s := range summaries {
		rec := []string{s.Column, strconv.Itoa(s.N), "", "", "", "", "", "", "", ""}
		if s.Err != nil {
			rec[9] = s.Err.Error()
		} else {
			rec[2], rec[3], rec[4], rec[5] = f(s.Mean), f(s.Std), f(s.Min), f(s.P5)
			rec[6], rec[7], rec[8] = f(s.P50), f(s.P95), f(s.Max)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
