// Package httputil provides HTTP-related helpers shared by the contract and
// httpvalidator packages: response selector handling and method tables.
package httputil

import (
	"net/http"
	"strconv"
	"strings"
)

// HTTP status code constants
const (
	SelectorLength = 3   // Standard length of HTTP status selectors (e.g., "200", "4XX")
	MinStatusCode  = 100 // Minimum valid HTTP status code
	MaxStatusCode  = 599 // Maximum valid HTTP status code
	WildcardChar   = 'X' // Wildcard character used in status class selectors (e.g., "2XX")
)

// DefaultSelector is the catch-all response selector.
const DefaultSelector = "default"

// methodByKey maps the lowercase operation keys of a path item to their
// canonical request method names.
var methodByKey = map[string]string{
	"get":     http.MethodGet,
	"put":     http.MethodPut,
	"post":    http.MethodPost,
	"delete":  http.MethodDelete,
	"options": http.MethodOptions,
	"head":    http.MethodHead,
	"patch":   http.MethodPatch,
	"trace":   http.MethodTrace,
}

// CanonicalMethod maps a path-item operation key (e.g. "get") to its
// canonical method name (e.g. "GET"). The second return is false for keys
// that are not operations, such as "parameters" or "summary".
func CanonicalMethod(key string) (string, bool) {
	m, ok := methodByKey[strings.ToLower(key)]
	return m, ok
}

// IsExtensionKey reports whether key is a specification extension field.
// Extension fields are carried by OpenAPI documents at most levels and are
// ignored during compilation.
func IsExtensionKey(key string) bool {
	return strings.HasPrefix(key, "x-")
}

// NormalizeSelector canonicalizes a response selector: numeric codes stay
// as-is, status class wildcards are uppercased ("2xx" becomes "2XX"), and
// "default" is accepted in any case. The second return is false when the
// value is not a valid selector.
func NormalizeSelector(code string) (string, bool) {
	if strings.EqualFold(code, DefaultSelector) {
		return DefaultSelector, true
	}

	if len(code) != SelectorLength {
		return "", false
	}

	// Status class wildcards: 1XX through 5XX.
	if (code[1] == 'X' || code[1] == 'x') && (code[2] == 'X' || code[2] == 'x') {
		if code[0] >= '1' && code[0] <= '5' {
			return code[:1] + "XX", true
		}
		return "", false
	}

	// Numeric codes: 100-599.
	status, err := strconv.Atoi(code)
	if err != nil || status < MinStatusCode || status > MaxStatusCode {
		return "", false
	}
	return code, true
}

// ClassSelector returns the status class wildcard selector for a status
// code: 404 becomes "4XX". The second return is false for codes outside
// the valid 100-599 range.
func ClassSelector(status int) (string, bool) {
	if status < MinStatusCode || status > MaxStatusCode {
		return "", false
	}
	return string(rune('0'+status/100)) + "XX", true
}
