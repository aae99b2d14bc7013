package sample

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/bemuq/internal/catalog"
	"github.com/san-kum/bemuq/internal/design"
)

const (
	headerKind      = "kind"
	headerObjectRef = "object_ref"
	runPrefix       = "run_"
)

// Header returns the persisted header: the two identity columns followed by
// one column per run.
func Header(runs int) []string {
	h := make([]string, 0, runs+2)
	h = append(h, headerKind, headerObjectRef)
	for i := 1; i <= runs; i++ {
		h = append(h, runPrefix+strconv.Itoa(i))
	}
	return h
}

// WriteGrid writes a runs x params grid transposed: one line per parameter,
// identified by (kind, object_ref), with one column per run.
func WriteGrid(w io.Writer, ids []catalog.Identity, values [][]float64) error {
	if err := checkGrid(ids, values); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(len(values))); err != nil {
		return err
	}
	for p, id := range ids {
		rec := make([]string, 0, len(values)+2)
		rec = append(rec, id.Kind, id.ObjectRef)
		for _, row := range values {
			rec = append(rec, strconv.FormatFloat(row[p], 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadGrid is the inverse of WriteGrid.
func ReadGrid(r io.Reader) ([]catalog.Identity, [][]float64, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("sample: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("sample: empty table")
	}

	header := records[0]
	if len(header) < 2 || !strings.EqualFold(header[0], headerKind) || !strings.EqualFold(header[1], headerObjectRef) {
		return nil, nil, fmt.Errorf("sample: header must start with %s,%s", headerKind, headerObjectRef)
	}
	runs := len(header) - 2

	ids := make([]catalog.Identity, 0, len(records)-1)
	values := design.NewMatrix(runs, len(records)-1).Points
	for p, rec := range records[1:] {
		ids = append(ids, catalog.Identity{Kind: rec[0], ObjectRef: rec[1]})
		for n := 0; n < runs; n++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[n+2]), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("sample: %s run %d: %w", ids[p], n+1, err)
			}
			values[n][p] = v
		}
	}
	return ids, values, nil
}

func (t *Table) WriteCSV(w io.Writer) error {
	return WriteGrid(w, t.Params, t.Values)
}

// ReadTable reloads a sample table written by Table.WriteCSV.
func ReadTable(r io.Reader) (*Table, error) {
	ids, values, err := ReadGrid(r)
	if err != nil {
		return nil, err
	}
	return &Table{Params: ids, Values: values}, nil
}

// WriteDesign persists a design matrix under the same parameter identities as
// its sample table.
func WriteDesign(w io.Writer, ids []catalog.Identity, m *design.Matrix) error {
	return WriteGrid(w, ids, m.Points)
}

// ReadDesign reloads a design matrix written by WriteDesign.
func ReadDesign(r io.Reader) ([]catalog.Identity, *design.Matrix, error) {
	ids, values, err := ReadGrid(r)
	if err != nil {
		return nil, nil, err
	}
	return ids, &design.Matrix{Points: values, Params: len(ids)}, nil
}

// Sheet is one grid of a workbook export.
type Sheet struct {
	Name   string
	Params []catalog.Identity
	Values [][]float64
}

// WriteXLSX writes each sheet in the same transposed layout as WriteGrid.
func WriteXLSX(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("sample: no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		if err := checkGrid(sh.Params, sh.Values); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.Name, err)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return err
		}

		header := Header(len(sh.Values))
		if err := f.SetSheetRow(sh.Name, "A1", &header); err != nil {
			return err
		}
		for p, id := range sh.Params {
			row := make([]any, 0, len(sh.Values)+2)
			row = append(row, id.Kind, id.ObjectRef)
			for _, r := range sh.Values {
				row = append(row, r[p])
			}
			cell, err := excelize.CoordinatesToCellName(1, p+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sh.Name, cell, &row); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func checkGrid(ids []catalog.Identity, values [][]float64) error {
	for n, row := range values {
		if len(row) != len(ids) {
			return fmt.Errorf("sample: run %d has %d values, want %d", n+1, len(row), len(ids))
		}
	}
	return nil
}
