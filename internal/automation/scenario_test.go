package automation

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/bemuq/internal/config"
	"github.com/san-kum/bemuq/internal/design"
	"github.com/san-kum/bemuq/internal/logging"
	"github.com/san-kum/bemuq/internal/physics"
	"github.com/san-kum/bemuq/internal/storage"
)

const testCatalog = `kind,object_ref,base_value,distribution,mean_or_mode,std_dev,min,max,enabled
Lights:WattsPerArea,Office Lights,,uniform absolute,,,6,14,true
Boiler:Efficiency,,,triangular absolute,0.85,,0.7,0.95,true
`

const testScenario = `name: office
description: screen then propagate
catalog: catalog.csv
steps:
  - name: screen
    method: morris
    seed: 5
  - preset: ua-100
    seed: 6
    responses: [heating_kwh]
`

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.csv"), []byte(testCatalog), 0644))
	path := filepath.Join(dir, "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScenario), 0644))
	return path
}

func baseConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Workers = 2
	cfg.Morris = design.MorrisConfig{Trajectories: 2, Levels: 4}
	cfg.Simulation = physics.Options{Days: 2, WarmupDays: 1, Step: 600, ResponseTime: 900, Integrator: "rk4"}
	return cfg
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t))
	require.NoError(t, err)
	assert.Equal(t, "office", s.Name)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, "ua-100", s.Steps[1].Preset)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("name: nothing\n"), 0644))
	_, err = LoadScenario(empty)
	assert.Error(t, err)
}

func TestStepConfig(t *testing.T) {
	path := writeScenario(t)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	first, err := s.StepConfig(0, baseConfig())
	require.NoError(t, err)
	assert.Equal(t, "screen", first.Name)
	assert.Equal(t, "morris", first.Method)
	assert.Equal(t, int64(5), first.Seed)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "catalog.csv"), first.Catalog)
	assert.Equal(t, 2, first.Morris.Trajectories, "base design settings kept")

	second, err := s.StepConfig(1, baseConfig())
	require.NoError(t, err)
	assert.Equal(t, "lhd", second.Method)
	assert.Equal(t, 100, second.LHS.Runs)
	assert.Equal(t, []string{"heating_kwh"}, second.Responses)
	assert.Equal(t, "office step 2", second.Name)

	s.Steps[0].Preset = "nope"
	_, err = s.StepConfig(0, baseConfig())
	assert.Error(t, err)
}

func TestRunScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t))
	require.NoError(t, err)
	s.Steps = s.Steps[:1]

	store := storage.New(t.TempDir())
	ctx := logging.IntoContext(context.Background(), logging.NewTestLogger())

	var calls, otherSteps atomic.Int32
	results, err := RunScenario(ctx, s, baseConfig(), store, nil, func(step, done, total int) {
		calls.Add(1)
		if step != 0 {
			otherSteps.Add(1)
		}
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(2*(2+1)), calls.Load())
	assert.Zero(t, otherSteps.Load())

	runs, err := store.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "screen", runs[0].Name)
	assert.Equal(t, design.MethodMorris, runs[0].Method)
}
