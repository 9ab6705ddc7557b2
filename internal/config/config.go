package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "astdoc.yaml"

// Config represents the application configuration.
type Config struct {
	Renderer     string       `yaml:"renderer"`
	Output       string       `yaml:"output,omitempty"`        // Output file, stdout when empty
	DataDir      string       `yaml:"data_dir"`                // Directory holding books.yaml and authors.yaml
	EnvFiles     []string     `yaml:"env_files,omitempty"`     // Loaded before transforms run, never overriding the environment
	HeadingTypes []string     `yaml:"heading_types,omitempty"` // Node types counted as headings
	Limits       LimitsConfig `yaml:"limits"`
	DumpAST      string       `yaml:"dump_ast,omitempty"`     // Write the transformed tree as YAML to this path
	MetricsFile  string       `yaml:"metrics_file,omitempty"` // Prometheus textfile written after each run
}

// LimitsConfig bounds recursion during a run.
type LimitsConfig struct {
	MaxDepth        int `yaml:"max_depth"`
	MaxRescans      int `yaml:"max_rescans"`
	MaxIncludeDepth int `yaml:"max_include_depth"`
}

// Load reads the configuration file at path. A missing file at the default
// path yields the defaults; a missing file anywhere else is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
				WithContext("path", path).
				Build()
		}
	case os.IsNotExist(err) && path == DefaultPath:
	default:
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration").
			WithContext("path", path).
			Build()
	}

	if err := ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration holding only defaults.
func Default() *Config {
	cfg := &Config{}
	_ = ApplyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Default()
	example.EnvFiles = []string{".env"}

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal configuration").Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}
