package gen

import "runtime"

// Defaults applied by NewConfig.
const (
	// DefaultHeader is the comment placed at the top of every
	// generated file.
	DefaultHeader = "Code generated by buildgen. DO NOT EDIT."
	// DefaultSuffix is appended to the lowercased target name to form
	// the output file name.
	DefaultSuffix = "_builder.go"
)

// Config holds the code generation settings.
type Config struct {
	// Header is the first comment line of each generated file.
	Header string
	// Target overrides the output directory. Empty means each builder
	// file is written next to its source declaration.
	Target string
	// Suffix is the output file name suffix.
	Suffix string
	// Workers bounds how many output files are rendered concurrently.
	Workers int
}

// NewConfig creates a Config with defaults and applies the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header:  DefaultHeader,
		Suffix:  DefaultSuffix,
		Workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
