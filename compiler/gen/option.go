package gen

import (
	"errors"
	"log/slog"
)

// Option configures code generation.
type Option func(*Config) error

// WithName sets the base name of the generated files.
func WithName(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return NewConfigError("name", nil, "name cannot be empty")
		}
		c.Name = name
		return nil
	}
}

// WithPackage sets the proto package of the schema.
// For example: "shop.v1".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("package", nil, "package cannot be empty")
		}
		if !identPath(pkg) {
			return NewConfigError("package", pkg, "package must be dot-separated identifiers")
		}
		c.Package = pkg
		return nil
	}
}

// WithGoPackage sets the go_package option of the schema.
func WithGoPackage(pkg string) Option {
	return func(c *Config) error {
		c.GoPackage = pkg
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithWorkers sets the number of files written in parallel.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("workers", n, "workers cannot be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithAccessors enables generation of the accessor tables into the Go
// package with the given import path. The package name defaults to the
// last path element.
func WithAccessors(path, pkg string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("accessors.path", nil, "import path cannot be empty")
		}
		c.Accessors = AccessorConfig{Enabled: true, Path: path, Package: pkg}
		return nil
	}
}

// WithSnapshot enables the tag snapshot. With strict set, tag drift
// against the previous snapshot fails generation.
func WithSnapshot(strict bool) Option {
	return func(c *Config) error {
		c.Snapshot = true
		c.StrictStability = strict
		return nil
	}
}

// WithLogger sets the logger of the generator.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options and fills in the
// defaults of every unset field.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	c.defaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
