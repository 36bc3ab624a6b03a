package gen

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultHeader is the comment placed at the top of every generated file.
const DefaultHeader = "Code generated by protobridge. DO NOT EDIT."

// Config holds the global configuration of schema generation. It can be
// read from a YAML file with LoadConfig or built with functional options.
type Config struct {
	// Name is the base name of the generated files, e.g. "service" yields
	// service.proto, service_accessors.go and service.snapshot.
	Name string `yaml:"name,omitempty"`

	// Package is the proto package of the emitted schema.
	Package string `yaml:"package,omitempty"`

	// GoPackage is written as the go_package option of the schema.
	GoPackage string `yaml:"go_package,omitempty"`

	// Target is the output directory.
	Target string `yaml:"target,omitempty"`

	// Header overrides the header comment of generated files.
	Header string `yaml:"header,omitempty"`

	// Workers bounds the number of files written in parallel.
	Workers int `yaml:"workers,omitempty"`

	// Accessors configures the generated field tables.
	Accessors AccessorConfig `yaml:"accessors,omitempty"`

	// Snapshot enables writing the tag snapshot and checking the previous
	// one for drift.
	Snapshot bool `yaml:"snapshot,omitempty"`

	// StrictStability turns tag drift into a generation failure.
	StrictStability bool `yaml:"strict_stability,omitempty"`

	// Logger receives progress and drift reports.
	Logger *slog.Logger `yaml:"-"`
}

// AccessorConfig configures the accessor table source file.
type AccessorConfig struct {
	// Enabled turns accessor generation on.
	Enabled bool `yaml:"enabled,omitempty"`

	// Path is the import path of the package the file is generated into.
	// Only types of that package, or exported types of other packages,
	// get a table.
	Path string `yaml:"path,omitempty"`

	// Package is the Go package name of the generated file.
	Package string `yaml:"package,omitempty"`
}

// defaults fills unset fields.
func (c *Config) defaults() {
	if c.Name == "" {
		c.Name = "service"
	}
	if c.Header == "" {
		c.Header = DefaultHeader
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Accessors.Package == "" && c.Accessors.Path != "" {
		c.Accessors.Package = filepath.Base(c.Accessors.Path)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// validate checks the fields needed to emit a schema.
func (c *Config) validate() error {
	if c.Package == "" {
		return NewConfigError("package", nil, "proto package cannot be empty")
	}
	if !identPath(c.Package) {
		return NewConfigError("package", c.Package, "proto package must be dot-separated identifiers")
	}
	if c.Accessors.Enabled && c.Accessors.Path == "" {
		return NewConfigError("accessors.path", nil, "accessor generation needs the import path of the target package")
	}
	return nil
}

// LoadConfig reads a YAML configuration file. Options are applied on top of
// the file contents, so they take precedence.
func LoadConfig(path string, opts ...Option) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{File: path, Reason: "read", Cause: err}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{File: path, Reason: "parse", Cause: err}
	}
	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.File = path
		}
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes cfg as YAML.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal protobridge config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func identPath(s string) bool {
	start := true
	for _, r := range s {
		switch {
		case r == '.':
			if start {
				return false
			}
			start = true
		case r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z':
			start = false
		case '0' <= r && r <= '9':
			if start {
				return false
			}
		default:
			return false
		}
	}
	return !start
}
