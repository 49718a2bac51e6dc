package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// EnvPrefix marks environment variables read as configuration;
// TEXTPREP_DATA_DIR sets data_dir.
const EnvPrefix = "TEXTPREP_"

// configNames are searched in the working directory when no file is given.
var configNames = []string{"textprep.yaml", "textprep.yml", "textprep.toml"}

// FindFile returns the config file to use: explicit if set, otherwise the
// first of configNames that exists in dir, otherwise "".
func FindFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return TOMLParser(), nil
	}
	return nil, errors.Errorf("config file %s: unsupported extension", path)
}

// Load builds the configuration. cfgFile may be empty, in which case
// FindFile looks in the working directory. Only flags that were set on the
// command line override lower layers; flag names map to keys by replacing
// dashes with underscores. The returned string is the config file used.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, "", errors.Wrap(err, "load defaults")
	}

	used := FindFile(cfgFile, ".")
	if used != "" {
		parser, err := parserFor(used)
		if err != nil {
			return nil, "", err
		}
		if err := k.Load(file.Provider(used), parser); err != nil {
			return nil, "", errors.Wrapf(err, "read config file %s", used)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "steps" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, "", errors.Wrap(err, "load env")
	}

	var flagDataDir string
	if flags != nil {
		if flags.Changed("data-dir") {
			if v, _ := flags.GetString("data-dir"); v != "" {
				flagDataDir, _ = filepath.Abs(v)
			}
		}
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", errors.Wrap(err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", errors.Wrap(err, "decode config")
	}

	// Paths from the config file are relative to the file, flag paths to
	// the working directory.
	base := "."
	if used != "" {
		base = filepath.Dir(used)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	} else {
		cfg.DataDir = resolve(cfg.DataDir, base)
	}
	for i := range cfg.Datasets {
		cfg.Datasets[i].Location = resolve(cfg.Datasets[i].Location, base)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, used, nil
}

// splitList reads a comma separated environment value such as
// TEXTPREP_STEPS="Text Cleaning,Tokenization".
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func resolve(path, base string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
