package httpvalidator

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/erraggy/oasguard/contract"
)

// Validator validates HTTP requests and responses against a compiled
// contract. It holds no per-call state: one Validator serves any number
// of goroutines.
//
// Create a Validator with New:
//
//	doc, err := contract.CompileYAML(specBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := httpvalidator.New(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := v.ValidateRequest(req)
//	if err != nil {
//	    // request matched nothing in the contract
//	}
//	if !result.Valid {
//	    // result.Errors holds every finding
//	}
type Validator struct {
	doc    *contract.Document
	cfg    *config
	logger contract.Logger

	// patternCache caches compiled regex patterns
	// (sync.Map[string, *regexp.Regexp]).
	patternCache sync.Map

	// patternCount tracks the approximate number of cached patterns for
	// size capping.
	patternCount atomic.Int32
}

// New creates a Validator over a compiled contract document. Behavior is
// fixed at construction; an invalid option returns a
// *oaserrors.ConfigError.
func New(doc *contract.Document, opts ...Option) (*Validator, error) {
	if doc == nil {
		return nil, errors.New("httpvalidator: document must not be nil")
	}
	cfg, err := newValidatorConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Validator{doc: doc, cfg: cfg, logger: cfg.logger}, nil
}

// Document returns the compiled contract this validator checks against.
func (v *Validator) Document() *contract.Document {
	return v.doc
}
