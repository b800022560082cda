package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return dir, path
}

func TestLoad_FileValuesAndDefaults(t *testing.T) {
	dir, path := writeConfig(t, "")
	body := "input_dir: " + filepath.Join(dir, "in") + "\n" +
		"output_dir: " + filepath.Join(dir, "out") + "\n" +
		"max_concurrency: 2\n" +
		"cost_center_decimals: 0\n" +
		"references:\n" +
		"  master_file: master.csv\n" +
		"  codes_file: codes.csv\n" +
		"  timeout: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, 0, cfg.CostCenterDecimals)
	assert.Equal(t, "master.csv", cfg.References.MasterFile)
	assert.Equal(t, 5*time.Second, cfg.References.Timeout)
	assert.Equal(t, SourceFile, cfg.References.Source)
	assert.Equal(t, "xlsx", cfg.OutputFormat)
	assert.Equal(t, "auto", cfg.CSVSettings.Encoding)
	assert.True(t, cfg.ContinueOnError)
	assert.DirExists(t, filepath.Join(dir, "in"))
	assert.DirExists(t, filepath.Join(dir, "out"))
}

func TestLoad_EnvOverride(t *testing.T) {
	dir, path := writeConfig(t, "")
	body := "input_dir: " + filepath.Join(dir, "in") + "\n" +
		"output_dir: " + filepath.Join(dir, "out") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	t.Setenv("ACCRUAL_LOG_LEVEL", "debug")
	t.Setenv("ACCRUAL_COST_CENTER_DECIMALS", "3")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3, cfg.CostCenterDecimals)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope.yaml")

	_, err := Load(missing, true)
	assert.Error(t, err)

	t.Setenv("ACCRUAL_INPUT_DIR", filepath.Join(dir, "in"))
	t.Setenv("ACCRUAL_OUTPUT_DIR", filepath.Join(dir, "out"))
	cfg, err := Load(missing, false)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.CostCenterDecimals)
	assert.Equal(t, 4, cfg.MaxConcurrency)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir, path := writeConfig(t, "")
	base := "input_dir: " + filepath.Join(dir, "in") + "\n" +
		"output_dir: " + filepath.Join(dir, "out") + "\n"

	cases := map[string]string{
		"bad output format": base + "output_format: json\n",
		"bad source":        base + "references:\n  source: ftp\n",
		"sheets without url": base + "references:\n  source: sheets\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := Load(path, true)
			assert.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "{name}_coded_{timestamp}", cfg.OutputNameFormat)
	assert.Contains(t, cfg.InputPatterns, "*.txt")
}
