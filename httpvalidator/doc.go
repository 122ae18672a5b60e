// Package httpvalidator validates HTTP requests and responses against a
// compiled OpenAPI contract.
//
// This package enables runtime contract enforcement in API gateways,
// middleware, and test harnesses. It consumes the immutable documents
// produced by the contract package and never parses specifications itself.
//
// # Features
//
//   - Request validation: path, query, header, cookie parameters and request body
//   - Response validation: selector precedence (exact code, status class, default), headers, and body
//   - Parameter deserialization: all OAS serialization styles (simple, label, matrix, form, spaceDelimited, pipeDelimited, deepObject)
//   - Exhaustive schema validation: every violation from a single pass, never just the first
//   - Location-tagged findings with stable machine-readable reason codes
//   - Middleware-friendly: works with standard net/http patterns
//
// # Basic Usage
//
// Create a validator from a compiled contract:
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
//	// Validate an incoming request
//	result, err := v.ValidateRequest(req)
//	if err != nil {
//	    // nothing in the contract matched: *oaserrors.NoMatchError or
//	    // *oaserrors.MethodNotAllowedError
//	}
//	if !result.Valid {
//	    for _, e := range result.Errors {
//	        log.Printf("%s %s: %s", e.Location, e.Path, e.Message)
//	    }
//	}
//
//	// Access validated and deserialized parameters
//	petID := result.PathParams["petId"]
//	page := result.QueryParams["page"]
//
// # Fatal Errors vs Findings
//
// The error return of ValidateRequest and ValidateResponse is reserved
// for conditions with no operation to validate against: an unmatched
// path, an undeclared method, or an undeclared response status. Every
// other violation aggregates on the result as a ValidationError value,
// so one pass reports a missing query parameter, a mis-typed path
// parameter, and three body violations together.
//
// # Middleware Pattern
//
//	func Validate(v *httpvalidator.Validator) func(http.Handler) http.Handler {
//	    return func(next http.Handler) http.Handler {
//	        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	            result, err := v.ValidateRequest(r)
//	            if err != nil {
//	                http.NotFound(w, r)
//	                return
//	            }
//	            if !result.Valid {
//	                w.Header().Set("Content-Type", "application/json")
//	                w.WriteHeader(http.StatusBadRequest)
//	                json.NewEncoder(w).Encode(result.Errors)
//	                return
//	            }
//	            next.ServeHTTP(w, r)
//	        })
//	    }
//	}
//
// For response validation in middleware, pass captured response parts
// instead of an *http.Response:
//
//	result, err := v.ValidateResponse(req, rec.Code, rec.Header(), rec.Body.Bytes())
//
// # Options
//
// Behavior is fixed when the validator is constructed:
//
//	v, err := httpvalidator.New(doc,
//	    httpvalidator.WithStrictParameters(),
//	    httpvalidator.WithStrictFormats(),
//	    httpvalidator.WithMaxBodyBytes(1<<20),
//	)
//
// WithStrictParameters reports undeclared query parameters, cookies, and
// non-standard headers. WithStrictFormats promotes format findings from
// warnings to errors. WithFormat and WithBodyDecoder register custom
// format validators and media-type decoders.
//
// # Schema Validation
//
// Bodies and deserialized parameters are checked against the compiled
// schema graph:
//
//   - Type checking (string, number, integer, boolean, array, object, null)
//   - String constraints (minLength, maxLength, pattern, format, enum)
//   - Number constraints (minimum, maximum, exclusive bounds, multipleOf)
//   - Array constraints (minItems, maxItems, uniqueItems)
//   - Object constraints (required, properties, additionalProperties)
//   - Composition (allOf, anyOf, oneOf) with a closest-match error strategy for unions
//   - Cyclic schema graphs, walked with a (value, node) guard
//
// Header and cookie findings never echo the offending value: those
// locations routinely carry credentials.
package httpvalidator
