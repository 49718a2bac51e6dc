package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/textprep/pkg/textprep"
)

const yamlConfig = `
data_dir: data
dataset: imdb
column: review
steps:
  - Text Cleaning
  - Tokenization
concurrency: 2
lenient: true
top_k: 10
log_level: debug
datasets:
  - key: yelp
    name: Yelp Reviews
    description: restaurant reviews
    location: extra/yelp.csv
custom_steps:
  - name: Mask Numbers
    kind: regex_replace
    pattern: '\d+'
    replace: "<num>"
`

const tomlConfig = `
data_dir = "data"
dataset = "amazon"
column = "body"
steps = ["Tokenization", "Stemming"]
chunk_size = 500
log_format = "json"

[[datasets]]
key = "yelp"
name = "Yelp Reviews"
location = "/abs/yelp.csv"

[[custom_steps]]
name = "Expand Slang"
kind = "map_values"
map = { gr8 = "great" }
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, used, err := Load("", nil)
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, "review_text", cfg.Column)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, DefaultPreview, cfg.Preview)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Lenient)
	assert.Empty(t, cfg.Steps)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "textprep.yaml", yamlConfig)
	cfg, used, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataDir)
	assert.Equal(t, "imdb", cfg.Dataset)
	assert.Equal(t, "review", cfg.Column)
	assert.Equal(t, []string{"Text Cleaning", "Tokenization"}, cfg.Steps)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.True(t, cfg.Lenient)
	assert.Equal(t, 10, cfg.TopK)

	require.Len(t, cfg.Datasets, 1)
	assert.Equal(t, "yelp", cfg.Datasets[0].Key)
	assert.Equal(t, filepath.Join(dir, "extra", "yelp.csv"), cfg.Datasets[0].Location)

	require.Len(t, cfg.CustomSteps, 1)
	assert.Equal(t, `\d+`, cfg.CustomSteps[0].Pattern)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "textprep.toml", tomlConfig)
	cfg, _, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "amazon", cfg.Dataset)
	assert.Equal(t, "body", cfg.Column)
	assert.Equal(t, []string{"Tokenization", "Stemming"}, cfg.Steps)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, "json", cfg.LogFormat)
	require.Len(t, cfg.Datasets, 1)
	assert.Equal(t, "/abs/yelp.csv", cfg.Datasets[0].Location)
	require.Len(t, cfg.CustomSteps, 1)
	assert.Equal(t, map[string]string{"gr8": "great"}, cfg.CustomSteps[0].Map)
}

func TestLoadBadFile(t *testing.T) {
	_, _, err := Load(writeFile(t, "textprep.ini", "x=1"), nil)
	assert.ErrorContains(t, err, "unsupported extension")

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "read config file")

	_, _, err = Load(writeFile(t, "textprep.yaml", "concurrency: 0\n"), nil)
	assert.ErrorContains(t, err, "concurrency")
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, "textprep.yaml", yamlConfig)
	t.Setenv("TEXTPREP_CONCURRENCY", "4")
	t.Setenv("TEXTPREP_COLUMN", "title")
	t.Setenv("TEXTPREP_STEPS", "Text Cleaning, Tokenization,Stemming")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("concurrency", 1, "")
	fs.String("column", "text", "")
	fs.String("data-dir", "", "")
	fs.StringSlice("steps", nil, "")
	require.NoError(t, fs.Parse([]string{"--concurrency=8", "--data-dir=flagdata"}))

	cfg, _, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Concurrency, "flag beats env")
	assert.Equal(t, "title", cfg.Column, "env beats file; unset flag ignored")
	assert.Equal(t, []string{"Text Cleaning", "Tokenization", "Stemming"}, cfg.Steps)
	abs, err := filepath.Abs("flagdata")
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.DataDir)
}

func TestLoadBadLogLevel(t *testing.T) {
	t.Setenv("TEXTPREP_LOG_LEVEL", "loud")
	_, _, err := Load("", nil)
	assert.ErrorContains(t, err, "log_level")
}

func TestValidate(t *testing.T) {
	t.Parallel()
	base := Config{Concurrency: 1, LogLevel: "info", LogFormat: "text"}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"chunk size", func(c *Config) { c.ChunkSize = -1 }},
		{"preview", func(c *Config) { c.Preview = -1 }},
		{"level", func(c *Config) { c.LogLevel = "" }},
		{"format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		c := base
		tt.mutate(&c)
		assert.Error(t, c.Validate(), tt.name)
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	c := Config{LogLevel: "info", LogFormat: "json"}
	logger, err := c.NewLogger(&buf)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "records", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"records":3`)
}

func TestCatalogAndRegistry(t *testing.T) {
	path := writeFile(t, "textprep.yaml", yamlConfig)
	cfg, _, err := Load(path, nil)
	require.NoError(t, err)

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())
	e, err := cat.Get("yelp")
	require.NoError(t, err)
	assert.Equal(t, "Yelp Reviews", e.Name)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	assert.True(t, reg.Has("Mask Numbers"))

	p, err := textprep.New(reg, cfg.PipelineOptions()...)
	require.NoError(t, err)
	out, err := p.Execute(context.Background(), textprep.TextRecords([]string{"room 101"}), []string{"Mask Numbers"})
	require.NoError(t, err)
	assert.Equal(t, []textprep.Record{"room <num>"}, out)

	bad := Config{CustomSteps: cfg.CustomSteps}
	bad.CustomSteps[0].Pattern = "("
	_, err = bad.Registry()
	assert.ErrorContains(t, err, "custom_steps")
}
