// Package oasguard provides contract validation for HTTP services against
// OpenAPI Specification (OAS) 3.x documents.
//
// oasguard compiles an OpenAPI document into an immutable, resolved contract
// and then validates live HTTP traffic against it: request paths, parameters,
// and bodies on the way in, and response statuses, headers, and bodies on the
// way out.
//
// # Overview
//
// The library consists of three primary packages:
//
//   - contract: Compile OpenAPI documents into resolved, matchable contracts
//   - httpvalidator: Validate HTTP requests and responses against a contract
//   - oaserrors: Error types shared across the library
//
// Both OAS 3.0.x and OAS 3.1.x documents are supported:
//   - OAS 3.0.x (3.0.0 - 3.0.4): https://spec.openapis.org/oas/v3.0.0.html
//   - OAS 3.1.x (3.1.0 - 3.1.2): https://spec.openapis.org/oas/v3.1.0.html
//
// # Installation
//
// Install the library using go get:
//
//	go get github.com/erraggy/oasguard
//
// # Quick Start
//
// Compile a contract and validate a request:
//
//	import (
//		"github.com/erraggy/oasguard/contract"
//		"github.com/erraggy/oasguard/httpvalidator"
//	)
//
//	doc, err := contract.CompileYAML(specBytes)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	v, err := httpvalidator.New(doc)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := v.ValidateRequest(req)
//	if err != nil {
//		log.Fatal(err) // no matching operation
//	}
//	if !result.Valid {
//		for _, verr := range result.Errors {
//			fmt.Printf("%s: %s\n", verr.Path, verr.Message)
//		}
//	}
//
// # Contract Package
//
// The contract package turns a parsed OpenAPI document tree into a Document:
// every $ref resolved (including recursive schemas), every path template
// compiled into a matchable index, and every parameter annotated with its
// effective style and explode behavior.
//
// Key features:
//   - Multi-format support (YAML, JSON)
//   - Document-local reference resolution with cycle detection
//   - Path template matching with literal-over-placeholder preference
//   - Response selector normalization (exact, class wildcard, default)
//   - Media type normalization per RFC 2045
//
// Example:
//
//	doc, err := contract.CompileYAML(specBytes,
//		contract.WithMaxRefDepth(50),
//		contract.WithLogger(contract.NewSlogAdapter(slogger)),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	op, params, err := doc.MatchOperation("GET", "/pets/42")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Matched %s with %v\n", op.Template, params)
//
// See the contract package documentation for more details.
//
// # Httpvalidator Package
//
// The httpvalidator package validates HTTP traffic against a compiled
// Document. Validation is exhaustive: every violation in a request or
// response is reported, not just the first.
//
// Key features:
//   - Request validation (path, query, header, and cookie parameters; bodies)
//   - Response validation (status selectors, declared headers, bodies)
//   - Parameter deserialization honoring style and explode
//   - Strict mode rejecting undeclared parameters
//   - Sensitive value redaction for header and cookie locations
//
// Example:
//
//	v, err := httpvalidator.New(doc,
//		httpvalidator.WithStrictParameters(),
//		httpvalidator.WithStrictFormats(),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := v.ValidateResponse(req, resp.StatusCode, resp.Header, body)
//	if err != nil {
//		log.Fatal(err) // no response specification declared
//	}
//	if !result.Valid {
//		fmt.Printf("response violates selector %s\n", result.Selector)
//	}
//
// See the httpvalidator package documentation for more details.
//
// # Common Workflows
//
// Gate inbound traffic in middleware:
//
//	func guard(v *httpvalidator.Validator, next http.Handler) http.Handler {
//		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//			result, err := v.ValidateRequest(r)
//			if err != nil {
//				http.NotFound(w, r)
//				return
//			}
//			if !result.Valid {
//				http.Error(w, "request does not match the API contract", http.StatusBadRequest)
//				return
//			}
//			next.ServeHTTP(w, r)
//		})
//	}
//
// Audit responses in integration tests:
//
//	resp, err := client.Do(req)
//	if err != nil {
//		t.Fatal(err)
//	}
//	body, _ := io.ReadAll(resp.Body)
//
//	result, err := v.ValidateResponse(req, resp.StatusCode, resp.Header, body)
//	if err != nil {
//		t.Fatal(err)
//	}
//	for _, verr := range result.Errors {
//		t.Errorf("%s: %s", verr.Path, verr.Message)
//	}
//
// # Error Handling
//
// The library distinguishes between traffic that fails validation and calls
// that cannot produce a verdict at all:
//
//   - Validation failures: Collected in RequestResult.Errors and
//     ResponseResult.Errors (not returned as error)
//   - Unmatched traffic: Returned as errors matching oaserrors.ErrNoMatch,
//     oaserrors.ErrMethodNotAllowed, or oaserrors.ErrNoResponseSpec
//   - Compilation failures: Returned as *oaserrors.ResolutionError with the
//     document location that failed
//
// All error types support errors.Is and errors.As:
//
//	_, err := v.ValidateRequest(r)
//	if errors.Is(err, oaserrors.ErrNoMatch) {
//		// the path is outside the contract
//	}
//
// # Performance Tips
//
// For best performance:
//
//   - Compile the contract once at startup and reuse the Document
//   - A Validator is safe for concurrent use; share one across goroutines
//   - Compiled patterns are cached per validator, so repeated pattern
//     constraints cost one compilation
//   - Disable warnings if not needed (httpvalidator.WithWarnings(false))
//
// # Additional Resources
//
//   - GitHub Repository: https://github.com/erraggy/oasguard
//   - OpenAPI Specification: https://spec.openapis.org
//   - JSON Schema Specification: https://json-schema.org
//   - Go Package Documentation: https://pkg.go.dev/github.com/erraggy/oasguard
//
// # License
//
// This library is released under the MIT License. See the LICENSE file in the
// repository for full details.
package oasguard
