package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/bemuq/internal/config"
	"github.com/san-kum/bemuq/internal/logging"
)

func TestLoadConfigAppliesFileLogLevel(t *testing.T) {
	t.Setenv(config.EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("method: lhd\nlog_level: debug\n"), 0644))

	prev := logging.Log()
	defer logging.SetLogger(prev)
	configFile, preset = path, ""
	defer func() { configFile = "" }()

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, logging.FromContext(cmd.Context()).V(logging.DEBUG).Enabled())
}

func TestOverlayPresetKeepsFileChoices(t *testing.T) {
	p := config.FindPreset("ua-100")
	require.NotNil(t, p)

	file := config.DefaultConfig()
	file.Seed = 9
	got := overlayPreset(p, file)
	assert.Equal(t, p.Method, got.Method)
	assert.Equal(t, p.LHS, got.LHS)
	assert.Equal(t, int64(9), got.Seed)
}
