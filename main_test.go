package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// parseConfig runs flag parsing and config layering without the report.
func parseConfig(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	var got Config
	cmd := newRootCommand(func(_ context.Context, cfg Config, _ *zap.Logger) error {
		got = cfg
		return nil
	})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return got, err
}

func TestRootCommand_Flags(t *testing.T) {
	t.Setenv("CENSUS_API_KEY", "")

	cfg, err := parseConfig(t,
		"--cejst", "x.csv",
		"--census-key", "flag-key",
		"--year", "2018",
		"--output", "out.png",
		"--workers", "3",
		"--timeout", "5s",
		"--workbook", "bins.xlsx",
	)
	require.NoError(t, err)
	assert.Equal(t, "x.csv", cfg.CEJSTPath)
	assert.Equal(t, "flag-key", cfg.Census.Key)
	assert.Equal(t, 2018, cfg.Census.Year)
	assert.Equal(t, "out.png", cfg.Output)
	assert.Equal(t, 3, cfg.Census.Workers)
	assert.Equal(t, 5*time.Second, cfg.Census.Timeout)
	assert.Equal(t, "bins.xlsx", cfg.Workbook)
	assert.Empty(t, cfg.Summary)
}

func TestRootCommand_ConfigFileThenFlags(t *testing.T) {
	t.Setenv("CENSUS_API_KEY", "env-key")
	path := writeFile(t, t.TempDir(), "report.toml", `
cejst = "file.csv"
output = "file.jpg"

[census]
workers = 2
`)

	cfg, err := parseConfig(t, "--config", path, "--output", "flag.jpg")
	require.NoError(t, err)
	assert.Equal(t, "file.csv", cfg.CEJSTPath)
	assert.Equal(t, "flag.jpg", cfg.Output)
	assert.Equal(t, 2, cfg.Census.Workers)
	assert.Equal(t, "env-key", cfg.Census.Key)
}

func TestRootCommand_EnvDoesNotOverrideConfiguredKey(t *testing.T) {
	t.Setenv("CENSUS_API_KEY", "env-key")

	cfg, err := parseConfig(t, "--census-key", "flag-key")
	require.NoError(t, err)
	assert.Equal(t, "flag-key", cfg.Census.Key)
}

func TestRootCommand_Run(t *testing.T) {
	t.Setenv("CENSUS_API_KEY", "")
	cfg, dir := reportFixture(t)
	configPath := writeFile(t, dir, "report.toml", `
[census]
states = ["01"]

[theme]
dpi = 20
`)
	output := filepath.Join(dir, "chart.jpg")

	cmd := newRootCommand(Run)
	cmd.SetArgs([]string{
		"--config", configPath,
		"--cejst", cfg.CEJSTPath,
		"--census-url", cfg.Census.BaseURL,
		"--census-key", "k",
		"--output", output,
	})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.FileExists(t, output)
}

func TestRootCommand_MissingKey(t *testing.T) {
	t.Setenv("CENSUS_API_KEY", "")

	cmd := newRootCommand(Run)
	cmd.SetArgs([]string{"--cejst", "missing.csv"})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "census api key is required")
}
