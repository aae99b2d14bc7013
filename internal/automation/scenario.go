// Package automation runs scripted sequences of analyses, such as a Morris
// screening followed by an uncertainty analysis of the same catalog.
package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bemuq/internal/config"
	"github.com/san-kum/bemuq/internal/experiment"
	"github.com/san-kum/bemuq/internal/logging"
	"github.com/san-kum/bemuq/internal/storage"
)

// Scenario is a scripted analysis sequence. Catalog and Model apply to every
// step that does not name its own. Relative paths are resolved against the
// scenario file.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Catalog     string         `yaml:"catalog"`
	Model       string         `yaml:"model"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep is one analysis. Settings are layered as config file, then
// preset design settings, then the fields set on the step itself.
type ScenarioStep struct {
	Name      string   `yaml:"name"`
	Config    string   `yaml:"config"`
	Preset    string   `yaml:"preset"`
	Method    string   `yaml:"method"`
	Seed      int64    `yaml:"seed"`
	Catalog   string   `yaml:"catalog"`
	Model     string   `yaml:"model"`
	Responses []string `yaml:"responses"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	scenario.dir = filepath.Dir(path)
	return &scenario, nil
}

func (s *Scenario) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || s.dir == "" {
		return path
	}
	return filepath.Join(s.dir, path)
}

// StepConfig builds the configuration of step i on top of base.
func (s *Scenario) StepConfig(i int, base *config.Config) (*config.Config, error) {
	step := s.Steps[i]

	cfg := base.Clone()
	if step.Config != "" {
		fileCfg, err := config.Load(s.resolve(step.Config))
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		cfg = fileCfg
	}
	if step.Preset != "" {
		p := config.FindPreset(step.Preset)
		if p == nil {
			return nil, fmt.Errorf("step %d: unknown preset %q", i+1, step.Preset)
		}
		cfg.Method = p.Method
		cfg.LHS = p.LHS
		cfg.Morris = p.Morris
	}

	if s.Catalog != "" {
		cfg.Catalog = s.resolve(s.Catalog)
	}
	if s.Model != "" {
		cfg.Model = s.resolve(s.Model)
	}
	if step.Catalog != "" {
		cfg.Catalog = s.resolve(step.Catalog)
	}
	if step.Model != "" {
		cfg.Model = s.resolve(step.Model)
	}
	if step.Method != "" {
		cfg.Method = step.Method
	}
	if step.Seed != 0 {
		cfg.Seed = step.Seed
	}
	if len(step.Responses) > 0 {
		cfg.Responses = append([]string(nil), step.Responses...)
	}

	cfg.Name = step.Name
	if cfg.Name == "" {
		cfg.Name = fmt.Sprintf("%s step %d", s.Name, i+1)
	}
	return cfg, nil
}

// RunScenario executes all steps in order and stores each as its own run.
// It stops at the first failing step and returns the results so far.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, store *storage.Store, reg *experiment.Registry, progress func(step int, done, total int)) ([]*experiment.Result, error) {
	logger := logging.FromContext(ctx).WithName("automation")
	if reg == nil {
		reg = experiment.NewRegistry()
	}

	results := make([]*experiment.Result, 0, len(scenario.Steps))
	for i := range scenario.Steps {
		cfg, err := scenario.StepConfig(i, base)
		if err != nil {
			return results, err
		}
		logger.Info("Running step", "step", i+1, "of", len(scenario.Steps), "name", cfg.Name, "method", cfg.Method)

		var stepProgress func(done, total int)
		if progress != nil {
			stepProgress = func(done, total int) { progress(i, done, total) }
		}
		res, err := experiment.New(cfg, reg).Run(ctx, store, stepProgress)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, cfg.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}
