package oaserrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrResolution indicates the contract could not be compiled.
	ErrResolution = errors.New("resolution error")

	// ErrCircularReference indicates a circular $ref was detected where
	// cycles are not permitted.
	ErrCircularReference = errors.New("circular reference")

	// ErrNoMatch indicates no path template matched a request path.
	ErrNoMatch = errors.New("no matching path template")

	// ErrMethodNotAllowed indicates a matched template declares no
	// operation for the request method.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrNoResponseSpec indicates no response selector covers a status.
	ErrNoResponseSpec = errors.New("no response specification")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ResolutionError represents a malformed contract discovered at compile
// time. This includes unresolvable $ref targets, references to the wrong
// kind of component, structurally invalid nodes, and reference cycles in
// components that must be acyclic.
type ResolutionError struct {
	// Ref is the reference string that failed to resolve ("" when the
	// failure is structural rather than reference-related)
	Ref string
	// Path locates the failing node in the document (e.g. "paths./pets.get")
	Path string
	// IsCircular is true if this error is due to a circular reference
	IsCircular bool
	// Message describes the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ResolutionError) Error() string {
	msg := "resolution error"
	if e.IsCircular {
		msg = "circular reference"
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrResolution, and also ErrCircularReference when the error is
// due to a cycle.
func (e *ResolutionError) Is(target error) bool {
	if target == ErrResolution {
		return true
	}
	return target == ErrCircularReference && e.IsCircular
}

// NoMatchError reports that a request path matched none of the compiled
// path templates. It is fatal for the call that produced it: no partial
// validation result accompanies it.
type NoMatchError struct {
	// Method is the request method
	Method string
	// Path is the request path that failed to match
	Path string
}

// Error returns a human-readable error message.
func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no matching path template for %s %s", e.Method, e.Path)
}

// Is reports whether target matches this error type.
func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// MethodNotAllowedError reports that a path template matched the request
// path but declares no operation for the request method. Allowed carries
// the methods the template does declare, sorted, ready for an Allow header.
type MethodNotAllowedError struct {
	// Method is the rejected request method
	Method string
	// Path is the request path
	Path string
	// Template is the matched path template
	Template string
	// Allowed lists the methods the template declares, sorted
	Allowed []string
}

// Error returns a human-readable error message.
func (e *MethodNotAllowedError) Error() string {
	msg := fmt.Sprintf("method %s not allowed for %s", e.Method, e.Template)
	if len(e.Allowed) > 0 {
		msg += " (allowed: " + strings.Join(e.Allowed, ", ") + ")"
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *MethodNotAllowedError) Is(target error) bool {
	return target == ErrMethodNotAllowed
}

// NoResponseSpecError reports that an operation declares no response
// selector covering an observed status code: no exact match, no status
// class wildcard, no default.
type NoResponseSpecError struct {
	// Status is the observed response status code
	Status int
	// Method is the request method
	Method string
	// Template is the matched path template
	Template string
	// Declared lists the selectors the operation declares, sorted
	Declared []string
}

// Error returns a human-readable error message.
func (e *NoResponseSpecError) Error() string {
	msg := fmt.Sprintf("no response specification for status %d on %s %s", e.Status, e.Method, e.Template)
	if len(e.Declared) > 0 {
		msg += " (declared: " + strings.Join(e.Declared, ", ") + ")"
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *NoResponseSpecError) Is(target error) bool {
	return target == ErrNoResponseSpec
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, missing required inputs, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
