package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/bemuq/internal/analysis"
	"github.com/san-kum/bemuq/internal/catalog"
	"github.com/san-kum/bemuq/internal/design"
	"github.com/san-kum/bemuq/internal/sample"
)

// File names inside a run directory.
const (
	MetadataFile  = "metadata.json"
	CatalogFile   = "catalog.csv"
	DesignFile    = "design.csv"
	SamplesFile   = "samples.csv"
	WorkbookFile  = "samples.xlsx"
	ResponsesFile = "responses.csv"
	SummaryFile   = "summary.csv"
)

var (
	ErrRunNotFound  = errors.New("storage: run not found")
	ErrAmbiguousRun = errors.New("storage: run id prefix is ambiguous")
)

// EffectsFile is the sensitivity table of one response column.
func EffectsFile(column string) string {
	return "effects_" + sanitize(column) + ".csv"
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

// RunMetadata describes one analysis run. Seed is always the effective seed,
// so a run drawn with a fresh seed can be replayed.
type RunMetadata struct {
	ID        string               `json:"id"`
	Name      string               `json:"name,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
	Method    design.Method        `json:"method"`
	Seed      int64                `json:"seed"`
	Runs      int                  `json:"runs"`
	Catalog   string               `json:"catalog"`
	Model     string               `json:"model"`
	Params    []catalog.Identity   `json:"params"`
	LHS       *design.LHSConfig    `json:"lhs,omitempty"`
	Morris    *design.MorrisConfig `json:"morris,omitempty"`
	Meters    []string             `json:"meters,omitempty"`
	Failed    []int                `json:"failed_runs,omitempty"`
	Elapsed   string               `json:"elapsed,omitempty"`
	Settings  map[string]any       `json:"settings,omitempty"`
}

// Run is an open run directory.
type Run struct {
	Dir  string
	Meta *RunMetadata
}

// Create allocates a new run directory with a fresh id and writes its
// metadata.
func (s *Store) Create(meta RunMetadata) (*Run, error) {
	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}

	run := &Run{Dir: filepath.Join(s.baseDir, meta.ID), Meta: &meta}
	if err := os.MkdirAll(run.Dir, 0755); err != nil {
		return nil, err
	}
	if err := run.SaveMetadata(); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := readMetadata(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

// Load opens a run by id or by a unique id prefix.
func (s *Store) Load(runID string) (*Run, error) {
	dir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(filepath.Join(dir, MetadataFile)); err != nil {
		id, err := s.resolvePrefix(runID)
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(s.baseDir, id)
	}

	meta, err := readMetadata(dir)
	if err != nil {
		return nil, err
	}
	return &Run{Dir: dir, Meta: meta}, nil
}

func (s *Store) resolvePrefix(prefix string) (string, error) {
	if prefix == "" {
		return "", ErrRunNotFound
	}
	runs, err := s.List()
	if err != nil {
		return "", err
	}

	var match string
	for _, r := range runs {
		if !strings.HasPrefix(r.ID, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s", ErrAmbiguousRun, prefix)
		}
		match = r.ID
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	}
	return match, nil
}

func readMetadata(dir string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (r *Run) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

func (r *Run) Exists(name string) bool {
	_, err := os.Stat(r.Path(name))
	return err == nil
}

func (r *Run) SaveMetadata() error {
	f, err := os.Create(r.Path(MetadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Meta)
}

func (r *Run) SaveCatalog(specs []catalog.ParameterSpec) error {
	return r.write(CatalogFile, func(w io.Writer) error {
		return catalog.WriteCSV(w, specs)
	})
}

func (r *Run) SaveDesign(m *design.Matrix) error {
	return r.write(DesignFile, func(w io.Writer) error {
		return sample.WriteDesign(w, r.Meta.Params, m)
	})
}

// SaveSamples writes the physical sample table as CSV and, together with the
// design, as a workbook.
func (r *Run) SaveSamples(m *design.Matrix, table *sample.Table) error {
	if err := r.write(SamplesFile, table.WriteCSV); err != nil {
		return err
	}
	return sample.WriteXLSX(r.Path(WorkbookFile),
		sample.Sheet{Name: "design", Params: table.Params, Values: m.Points},
		sample.Sheet{Name: "samples", Params: table.Params, Values: table.Values},
	)
}

func (r *Run) SaveResponses(resp *analysis.Responses) error {
	return r.write(ResponsesFile, resp.WriteCSV)
}

// SaveEffects writes one effects file per analyzable column.
func (r *Run) SaveEffects(results []analysis.ColumnResult) error {
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		err := r.write(EffectsFile(res.Column), func(w io.Writer) error {
			return analysis.WriteEffectsCSV(w, res)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Run) SaveSummary(summaries []analysis.Summary) error {
	return r.write(SummaryFile, func(w io.Writer) error {
		return analysis.WriteSummaryCSV(w, summaries)
	})
}

func (r *Run) LoadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(r.Path(CatalogFile))
}

func (r *Run) LoadDesign() ([]catalog.Identity, *design.Matrix, error) {
	f, err := os.Open(r.Path(DesignFile))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	params, m, err := sample.ReadDesign(f)
	if err != nil {
		return nil, nil, err
	}
	if r.Meta.Morris != nil {
		m.Range = r.Meta.Morris.Span()
	}
	return params, m, nil
}

func (r *Run) LoadSamples() (*sample.Table, error) {
	f, err := os.Open(r.Path(SamplesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sample.ReadTable(f)
}

func (r *Run) LoadResponses() (*analysis.Responses, error) {
	f, err := os.Open(r.Path(ResponsesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return analysis.ReadResponses(f)
}

func (r *Run) write(name string, fn func(io.Writer) error) error {
	f, err := os.Create(r.Path(name))
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("storage: writing %s: %w", name, err)
	}
	return f.Close()
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
