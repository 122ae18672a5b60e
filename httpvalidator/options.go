package httpvalidator

import (
	"mime"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/oaserrors"
)

// DefaultMaxBodyBytes is the default cap on request body reads.
const DefaultMaxBodyBytes = 10 << 20 // 10 MiB

// UnionErrorsMode selects how findings are reported when a value matches
// none of a union's alternatives.
type UnionErrorsMode uint8

const (
	// UnionErrorsClosest reports only the findings of the alternative
	// with the fewest of them (ties broken by declaration order). This is
	// a deliberately lossy heuristic that keeps union failures readable;
	// the discarded alternatives usually fail for unrelated reasons.
	UnionErrorsClosest UnionErrorsMode = iota

	// UnionErrorsAll reports one union-mismatch summary followed by every
	// alternative's findings.
	UnionErrorsAll
)

// FormatFunc validates a string against a named format. A nil return
// means the value conforms.
type FormatFunc func(value string) error

// BodyDecoderFunc decodes raw body bytes for one media type into the
// generic value shape the schema validator consumes (map[string]any,
// []any, scalars).
type BodyDecoderFunc func(data []byte) (any, error)

// Option is a functional option for configuring a Validator.
type Option func(*config) error

// config holds a Validator's behavior knobs. It is fixed at construction;
// a Validator never mutates it afterwards.
type config struct {
	strictParams    bool
	strictFormats   bool
	includeWarnings bool
	unionErrors     UnionErrorsMode
	maxBodyBytes    int64
	formats         map[string]FormatFunc
	decoders        map[string]BodyDecoderFunc
	logger          contract.Logger
}

func newValidatorConfig(opts ...Option) (*config, error) {
	cfg := &config{
		includeWarnings: true,
		unionErrors:     UnionErrorsClosest,
		maxBodyBytes:    DefaultMaxBodyBytes,
		logger:          contract.NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithStrictParameters makes undeclared query parameters, cookies, and
// non-standard headers validation errors instead of being ignored.
func WithStrictParameters() Option {
	return func(cfg *config) error {
		cfg.strictParams = true
		return nil
	}
}

// WithStrictFormats promotes format findings from warnings to errors.
func WithStrictFormats() Option {
	return func(cfg *config) error {
		cfg.strictFormats = true
		return nil
	}
}

// WithWarnings controls whether advisory findings are collected on
// results. Default is true.
func WithWarnings(include bool) Option {
	return func(cfg *config) error {
		cfg.includeWarnings = include
		return nil
	}
}

// WithUnionErrors selects the reporting strategy for values matching no
// union alternative. Default is UnionErrorsClosest.
func WithUnionErrors(mode UnionErrorsMode) Option {
	return func(cfg *config) error {
		switch mode {
		case UnionErrorsClosest, UnionErrorsAll:
			cfg.unionErrors = mode
			return nil
		default:
			return &oaserrors.ConfigError{
				Option:  "WithUnionErrors",
				Value:   mode,
				Message: "unknown union errors mode",
			}
		}
	}
}

// WithFormat registers a custom validator for a named string format,
// overriding the built-in validator for that name if one exists. Schemas
// declaring formats with no registered validator pass unchecked, matching
// OpenAPI semantics for unknown formats.
//
//	v, err := httpvalidator.New(doc,
//	    httpvalidator.WithFormat("employee-id", func(s string) error {
//	        if !strings.HasPrefix(s, "E-") {
//	            return fmt.Errorf("must start with E-")
//	        }
//	        return nil
//	    }))
func WithFormat(name string, fn FormatFunc) Option {
	return func(cfg *config) error {
		if name == "" {
			return &oaserrors.ConfigError{
				Option:  "WithFormat",
				Message: "format name cannot be empty",
			}
		}
		if fn == nil {
			return &oaserrors.ConfigError{
				Option:  "WithFormat",
				Value:   name,
				Message: "format function cannot be nil",
			}
		}
		if cfg.formats == nil {
			cfg.formats = make(map[string]FormatFunc)
		}
		cfg.formats[name] = fn
		return nil
	}
}

// WithBodyDecoder registers a decoder for one media type, overriding the
// built-in JSON decoder if the media type is JSON. Declared media types
// with no decoder validate body presence only; their schemas are skipped.
//
//	v, err := httpvalidator.New(doc,
//	    httpvalidator.WithBodyDecoder("application/x-www-form-urlencoded", decodeForm))
func WithBodyDecoder(mediaType string, fn BodyDecoderFunc) Option {
	return func(cfg *config) error {
		normalized, _, err := mime.ParseMediaType(mediaType)
		if err != nil {
			return &oaserrors.ConfigError{
				Option:  "WithBodyDecoder",
				Value:   mediaType,
				Message: "invalid media type",
				Cause:   err,
			}
		}
		if fn == nil {
			return &oaserrors.ConfigError{
				Option:  "WithBodyDecoder",
				Value:   mediaType,
				Message: "decoder function cannot be nil",
			}
		}
		if cfg.decoders == nil {
			cfg.decoders = make(map[string]BodyDecoderFunc)
		}
		cfg.decoders[normalized] = fn
		return nil
	}
}

// WithMaxBodyBytes caps how many request body bytes are read. Bodies over
// the cap produce a malformed-value finding. A value of 0 means use the
// default (10 MiB). Returns an error if n is negative.
func WithMaxBodyBytes(n int64) Option {
	return func(cfg *config) error {
		if n < 0 {
			return &oaserrors.ConfigError{
				Option:  "WithMaxBodyBytes",
				Value:   n,
				Message: "cap cannot be negative",
			}
		}
		if n == 0 {
			n = DefaultMaxBodyBytes
		}
		cfg.maxBodyBytes = n
		return nil
	}
}

// WithLogger sets a structured logger for per-call diagnostics. By
// default nothing is logged.
func WithLogger(l contract.Logger) Option {
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
