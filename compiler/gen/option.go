package gen

import "strings"

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		if header == "" {
			return NewConfigError("Header", nil, "header cannot be empty")
		}
		c.Header = header
		return nil
	}
}

// WithTarget sets the output directory.
// By default each builder file is written next to its source declaration.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithSuffix sets the generated file name suffix.
// The suffix must end in ".go" and must not be a test suffix.
func WithSuffix(suffix string) Option {
	return func(c *Config) error {
		if !strings.HasSuffix(suffix, ".go") {
			return NewConfigError("Suffix", suffix, "suffix must end in .go")
		}
		if strings.HasSuffix(suffix, "_test.go") {
			return NewConfigError("Suffix", suffix, "suffix must not mark generated files as tests")
		}
		c.Suffix = suffix
		return nil
	}
}

// WithWorkers sets the number of parallel file-rendering workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}
