// Package config loads textprep settings from defaults, a config file,
// TEXTPREP_ environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"github.com/pkg/errors"

	"github.com/wdm0006/textprep/pkg/catalog"
	"github.com/wdm0006/textprep/pkg/textprep"
	"github.com/wdm0006/textprep/pkg/transform/text"
)

// Default configuration values.
const (
	DefaultDataDir     = "."
	DefaultColumn      = "review_text"
	DefaultConcurrency = 1
	DefaultPreview     = 5
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
)

type Config struct {
	DataDir     string   `koanf:"data_dir"`
	Dataset     string   `koanf:"dataset"`
	File        string   `koanf:"file"`
	Plan        string   `koanf:"plan"`
	Column      string   `koanf:"column"`
	LabelColumn string   `koanf:"label_column"`
	Steps       []string `koanf:"steps"`

	Concurrency int  `koanf:"concurrency"`
	Lenient     bool `koanf:"lenient"`
	// ChunkSize > 0 streams the input in chunks of that many records.
	ChunkSize int `koanf:"chunk_size"`
	Preview   int `koanf:"preview"`
	TopK      int `koanf:"top_k"`
	Features  int `koanf:"features"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	Datasets    []catalog.Entry   `koanf:"datasets"`
	CustomSteps []text.CustomStep `koanf:"custom_steps"`
}

func defaults() map[string]any {
	return map[string]any{
		"data_dir":    DefaultDataDir,
		"column":      DefaultColumn,
		"concurrency": DefaultConcurrency,
		"lenient":     false,
		"chunk_size":  0,
		"preview":     DefaultPreview,
		"top_k":       0,
		"features":    0,
		"log_level":   DefaultLogLevel,
		"log_format":  DefaultLogFormat,
	}
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return errors.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.ChunkSize < 0 {
		return errors.Errorf("chunk_size must not be negative, got %d", c.ChunkSize)
	}
	if c.Preview < 0 || c.TopK < 0 || c.Features < 0 {
		return errors.New("preview, top_k and features must not be negative")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Catalog returns the built-in datasets under DataDir with the configured
// datasets merged over them.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	cat, err := catalog.Default(c.DataDir).Merge(c.Datasets...)
	if err != nil {
		return nil, errors.Wrap(err, "datasets")
	}
	return cat, nil
}

// Registry returns the standard steps plus the configured custom steps.
func (c *Config) Registry() (*textprep.Registry, error) {
	reg := text.NewRegistry()
	if err := text.RegisterCustom(reg, c.CustomSteps); err != nil {
		return nil, errors.Wrap(err, "custom_steps")
	}
	return reg, nil
}

// PipelineOptions maps the execution settings onto pipeline options.
func (c *Config) PipelineOptions() []textprep.Option {
	return []textprep.Option{
		textprep.WithConcurrency(c.Concurrency),
		textprep.WithLenient(c.Lenient),
	}
}
