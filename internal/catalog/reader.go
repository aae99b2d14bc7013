package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column names of the catalog table. Header matching is case-insensitive and
// column order is free.
const (
	ColKind         = "kind"
	ColObjectRef    = "object_ref"
	ColBaseValue    = "base_value"
	ColDistribution = "distribution"
	ColMeanOrMode   = "mean_or_mode"
	ColStdDev       = "std_dev"
	ColMin          = "min"
	ColMax          = "max"
	ColEnabled      = "enabled"
)

// Columns lists the catalog columns in their canonical order.
var Columns = []string{
	ColKind, ColObjectRef, ColBaseValue, ColDistribution,
	ColMeanOrMode, ColStdDev, ColMin, ColMax, ColEnabled,
}

// Load reads a catalog from a .csv or .xlsx file.
func Load(path string) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, "")
	case ".csv", ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f, path)
	default:
		return nil, fmt.Errorf("%w: unsupported catalog file type %q", ErrMalformed, filepath.Ext(path))
	}
}

// ReadCSV parses a catalog from CSV. source is only used in messages.
func ReadCSV(r io.Reader, source string) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, source, err)
	}
	return parseRows(rows, source)
}

// ReadXLSX parses a catalog from a workbook sheet. An empty sheet name selects
// the first sheet.
func ReadXLSX(path, sheet string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrMalformed, path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return parseRows(rows, path)
}

func parseRows(rows [][]string, source string) (*Catalog, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrMalformed, source)
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(h))
		name = strings.ReplaceAll(name, " ", "_")
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate column %q", ErrMalformed, source, h)
		}
		index[name] = i
	}
	for _, required := range []string{ColKind, ColDistribution} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s: missing column %q", ErrMalformed, source, required)
		}
	}

	cat := &Catalog{Source: source, Specs: make([]ParameterSpec, 0, len(rows)-1)}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		cell := func(col string) string {
			j, ok := index[col]
			if !ok || j >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[j])
		}

		spec := ParameterSpec{Row: i + 1, Kind: cell(ColKind), ObjectRef: cell(ColObjectRef)}

		enabled, err := parseEnabled(cell(ColEnabled))
		if err != nil {
			return nil, Errorf(ErrMalformed, spec, "enabled: %v", err)
		}
		if !enabled {
			cat.Dropped++
			continue
		}
		spec.Enabled = true

		dist, err := ParseDistribution(cell(ColDistribution))
		if err != nil {
			return nil, Errorf(ErrUnknownDistribution, spec, "%q", cell(ColDistribution))
		}
		spec.Distribution = dist

		for _, f := range []struct {
			col string
			dst **float64
		}{
			{ColBaseValue, &spec.BaseValue},
			{ColMeanOrMode, &spec.MeanOrMode},
			{ColStdDev, &spec.StdDev},
			{ColMin, &spec.Min},
			{ColMax, &spec.Max},
		} {
			v, err := parseOptional(cell(f.col))
			if err != nil {
				return nil, Errorf(ErrInvalidShape, spec, "%s: %v", f.col, err)
			}
			*f.dst = v
		}

		cat.Specs = append(cat.Specs, spec)
	}
	return cat, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseOptional(s string) (*float64, error) {
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "n/a") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not numeric", s)
	}
	return &v, nil
}

// parseEnabled treats an empty cell (or a missing column) as enabled.
func parseEnabled(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "true", "t", "yes", "y", "1", "x", "on":
		return true, nil
	case "false", "f", "no", "n", "0", "off", "-":
		return false, nil
	default:
		return false, fmt.Errorf("%q is not a boolean", s)
	}
}

// WriteCSV writes specs in catalog column order.
func WriteCSV(w io.Writer, specs []ParameterSpec) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, s := range specs {
		rec := []string{
			s.Kind,
			s.ObjectRef,
			formatOptional(s.BaseValue),
			s.Distribution.String(),
			formatOptional(s.MeanOrMode),
			formatOptional(s.StdDev),
			formatOptional(s.Min),
			formatOptional(s.Max),
			strconv.FormatBool(s.Enabled),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
