// Package oaserrors provides structured error types for the oasguard library.
//
// Import path: github.com/erraggy/oasguard/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish between the fatal error categories of the engine
// and implement appropriate recovery strategies.
//
// # Error Types
//
// The package provides five core error types:
//
//   - [ResolutionError]: malformed contracts detected at compile time
//   - [NoMatchError]: request paths that match no compiled template
//   - [MethodNotAllowedError]: matched templates with no operation for the method
//   - [NoResponseSpecError]: response statuses no declared selector covers
//   - [ConfigError]: invalid configuration or input options
//
// # Sentinel Errors
//
// Each error type has a corresponding sentinel error for use with errors.Is():
//
//   - [ErrResolution]: Matches any [ResolutionError]
//   - [ErrCircularReference]: Matches [ResolutionError] with IsCircular=true
//   - [ErrNoMatch]: Matches any [NoMatchError]
//   - [ErrMethodNotAllowed]: Matches any [MethodNotAllowedError]
//   - [ErrNoResponseSpec]: Matches any [NoResponseSpecError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Fatal vs Recoverable
//
// These types cover the fatal conditions only: a contract that cannot
// compile, a request that cannot be located in the contract, a response
// status the contract never declared. Everything recoverable, such as a
// mis-typed parameter or a body constraint violation, is collected as
// httpvalidator.ValidationError values on the validation results and never
// surfaces through the error return.
//
// # Usage Examples
//
// Check error category with errors.Is():
//
//	result, err := v.ValidateRequest(req)
//	if errors.Is(err, oaserrors.ErrNoMatch) {
//	    http.NotFound(w, req)
//	    return
//	}
//
// Extract error details with errors.As():
//
//	var mna *oaserrors.MethodNotAllowedError
//	if errors.As(err, &mna) {
//	    w.Header().Set("Allow", strings.Join(mna.Allowed, ", "))
//	    w.WriteHeader(http.StatusMethodNotAllowed)
//	    return
//	}
//
// # Error Chaining
//
// ResolutionError and ConfigError support error chaining via the Cause
// field and Unwrap() method. This allows finding root causes through the
// standard error chain:
//
//	var resErr *oaserrors.ResolutionError
//	if errors.As(err, &resErr) {
//	    if errors.Is(resErr.Cause, io.ErrUnexpectedEOF) {
//	        // The document tree was truncated
//	    }
//	}
package oaserrors
