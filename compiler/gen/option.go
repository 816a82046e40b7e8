package gen

// Config holds the code generation settings shared by all tables of a
// run.
type Config struct {
	// Package is the import path of the package the tables live in.
	// Generated files reference the column subpackages through it.
	Package string
	// Target is the directory generated files are written to. Defaults
	// to the loaded package directory.
	Target string
	// Header is the comment added at the top of each generated file.
	Header string
	// Workers bounds the number of files written concurrently.
	Workers int
}

// Option configures code generation.
type Option func(*Config) error

// WithPackage sets the import path of the schema package.
// For example: "github.com/org/project/accounts".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", pkg, "import path cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory for generated files.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", dir, "target directory cannot be empty")
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

// WithWorkers sets the number of parallel file writers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "worker count must be positive")
		}
		c.Workers = n
		return nil
	}
}

// NewConfig creates a generation config from functional options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header: DefaultHeader,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultHeader is the header comment of generated files.
const DefaultHeader = "Code generated by tessera. DO NOT EDIT."
