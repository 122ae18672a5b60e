package contract

import (
	"github.com/erraggy/oasguard/oaserrors"
)

// Option is a functional option for configuring compilation.
type Option func(*config) error

// config holds the configuration for one Compile run.
type config struct {
	logger Logger

	// maxRefDepth bounds chained $ref hops (0 means DefaultMaxRefDepth).
	maxRefDepth int

	// additionalDefault is the additionalProperties policy applied to
	// object schemas that declare none: true allows undeclared
	// properties, false forbids them.
	additionalDefault bool
}

// newConfig applies option functions over the defaults.
func newConfig(opts ...Option) (*config, error) {
	cfg := &config{
		logger:            NopLogger{},
		maxRefDepth:       DefaultMaxRefDepth,
		additionalDefault: true,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithLogger sets a structured logger for diagnostics during compilation.
// By default nothing is logged.
//
// Use NewSlogAdapter to wrap a *slog.Logger:
//
//	doc, err := contract.CompileYAML(spec,
//	    contract.WithLogger(contract.NewSlogAdapter(slog.Default())))
func WithLogger(l Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return &oaserrors.ConfigError{
				Option:  "WithLogger",
				Message: "logger cannot be nil",
			}
		}
		cfg.logger = l
		return nil
	}
}

// WithMaxRefDepth sets the maximum number of chained $ref hops followed
// while resolving references. This guards against pathologically nested
// (but non-circular) reference chains. A value of 0 means use the default
// (100). Returns an error if depth is negative.
func WithMaxRefDepth(depth int) Option {
	return func(cfg *config) error {
		if depth < 0 {
			return &oaserrors.ConfigError{
				Option:  "WithMaxRefDepth",
				Value:   depth,
				Message: "depth cannot be negative",
			}
		}
		if depth == 0 {
			depth = DefaultMaxRefDepth
		}
		cfg.maxRefDepth = depth
		return nil
	}
}

// WithDefaultAdditionalProperties sets the policy applied to object
// schemas that declare no additionalProperties of their own: true permits
// undeclared properties, false rejects them.
//
// The out-of-the-box default is true, matching JSON Schema semantics.
// Schemas that declare additionalProperties explicitly are unaffected.
func WithDefaultAdditionalProperties(allow bool) Option {
	return func(cfg *config) error {
		cfg.additionalDefault = allow
		return nil
	}
}
