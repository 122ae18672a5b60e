package httpvalidator

import (
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/erraggy/oasguard/contract"
)

// Location identifies the part of the HTTP exchange a finding belongs to.
type Location string

// Validation locations.
const (
	LocationPath           Location = "path"
	LocationQuery          Location = "query"
	LocationHeader         Location = "header"
	LocationCookie         Location = "cookie"
	LocationBody           Location = "body"
	LocationResponseBody   Location = "response-body"
	LocationResponseHeader Location = "response-header"
)

// ReasonCode is the machine-readable cause of a finding. Codes are stable;
// callers may dispatch on them without parsing messages.
type ReasonCode string

// Reason codes.
const (
	ReasonRequired           ReasonCode = "required"
	ReasonTypeMismatch       ReasonCode = "type-mismatch"
	ReasonEnumMismatch       ReasonCode = "enum-mismatch"
	ReasonPatternMismatch    ReasonCode = "pattern-mismatch"
	ReasonFormatMismatch     ReasonCode = "format-mismatch"
	ReasonAdditionalProperty ReasonCode = "additional-property-not-allowed"
	ReasonMalformedValue     ReasonCode = "malformed-value"
	ReasonMinimum            ReasonCode = "minimum"
	ReasonMaximum            ReasonCode = "maximum"
	ReasonExclusiveMinimum   ReasonCode = "exclusive-minimum"
	ReasonExclusiveMaximum   ReasonCode = "exclusive-maximum"
	ReasonMultipleOf         ReasonCode = "multiple-of"
	ReasonMinLength          ReasonCode = "min-length"
	ReasonMaxLength          ReasonCode = "max-length"
	ReasonMinItems           ReasonCode = "min-items"
	ReasonMaxItems           ReasonCode = "max-items"
	ReasonUniqueItems        ReasonCode = "unique-items"
	ReasonMinProperties      ReasonCode = "min-properties"
	ReasonMaxProperties      ReasonCode = "max-properties"
	ReasonMediaType          ReasonCode = "media-type-not-allowed"
	ReasonUnionMismatch      ReasonCode = "union-mismatch"
	ReasonAllOfMismatch      ReasonCode = "all-of-mismatch"
	ReasonDeprecated         ReasonCode = "deprecated"
)

// Segment is one step of a FieldPath: an object property name or an array
// index.
type Segment struct {
	name    string
	index   int
	indexed bool
}

// Field returns a Segment naming an object property. For parameter
// findings the parameter name is the first segment.
func Field(name string) Segment { return Segment{name: name} }

// Index returns a Segment addressing an array element.
func Index(i int) Segment { return Segment{index: i, indexed: true} }

// IsIndex reports whether the segment addresses an array element.
func (s Segment) IsIndex() bool { return s.indexed }

// Name returns the property name ("" for index segments).
func (s Segment) Name() string { return s.name }

// Position returns the array index (0 for field segments).
func (s Segment) Position() int { return s.index }

// FieldPath is the ordered sequence of segments from the root of the
// validated value to the field a finding concerns. A body-root finding has
// an empty path.
type FieldPath []Segment

// Field returns a new path with a property segment appended. The receiver
// is not modified.
func (p FieldPath) Field(name string) FieldPath {
	next := make(FieldPath, len(p), len(p)+1)
	copy(next, p)
	return append(next, Field(name))
}

// Index returns a new path with an array-index segment appended. The
// receiver is not modified.
func (p FieldPath) Index(i int) FieldPath {
	next := make(FieldPath, len(p), len(p)+1)
	copy(next, p)
	return append(next, Index(i))
}

// String renders the path in the conventional dotted form: "items[3].name".
// The empty path renders as "".
func (p FieldPath) String() string {
	var b strings.Builder
	for i, s := range p {
		if s.indexed {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.name)
	}
	return b.String()
}

// MarshalJSON renders the path as its dotted string form, the shape API
// error bodies conventionally carry in a "field" member.
func (p FieldPath) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// ValidationError is one validation finding. Findings are values, not
// errors: they aggregate on results and never abort validation. The JSON
// tags let callers marshal findings straight into an API error body.
//
// Value carries the offending value for body and path/query findings;
// header and cookie findings never echo the value, since those locations
// routinely carry credentials.
type ValidationError struct {
	Location Location   `json:"location"`
	Path     FieldPath  `json:"field"`
	Reason   ReasonCode `json:"reason"`
	Message  string     `json:"message"`
	Value    any        `json:"value,omitempty"`
}

// RequestResult is the outcome of validating one HTTP request. When Valid
// is true the parameter maps and Body hold the deserialized, schema-checked
// values; when false, Errors holds every finding from the full pass across
// all locations.
type RequestResult struct {
	// Valid is true when no errors were found. Warnings do not affect it.
	Valid bool `json:"valid"`

	// Errors holds every validation finding, in pass order: path, query,
	// header, cookie, then body.
	Errors []ValidationError `json:"errors,omitempty"`

	// Warnings holds advisory findings (deprecated usage, format
	// mismatches unless strict formats are enabled).
	Warnings []ValidationError `json:"warnings,omitempty"`

	// PathParams holds the deserialized path parameters by name.
	PathParams map[string]any `json:"-"`

	// QueryParams holds the deserialized query parameters by name.
	QueryParams map[string]any `json:"-"`

	// HeaderParams holds the deserialized header parameters by declared
	// name.
	HeaderParams map[string]any `json:"-"`

	// CookieParams holds the deserialized cookie parameters by name.
	CookieParams map[string]any `json:"-"`

	// Body is the decoded request body, nil when absent or undecodable.
	Body any `json:"-"`

	// Operation is the matched contract operation. It exposes the
	// operation id and the security requirement declarations, which the
	// engine carries but never enforces.
	Operation *contract.Operation `json:"-"`
}

// ResponseResult is the outcome of validating one HTTP response.
type ResponseResult struct {
	// Valid is true when no errors were found.
	Valid bool `json:"valid"`

	// Errors holds every validation finding: headers first, then body.
	Errors []ValidationError `json:"errors,omitempty"`

	// Warnings holds advisory findings.
	Warnings []ValidationError `json:"warnings,omitempty"`

	// Status is the observed response status code.
	Status int `json:"-"`

	// Selector is the response selector that covered Status: the exact
	// code, a status class such as "4XX", or "default".
	Selector string `json:"-"`

	// Body is the decoded response body, nil when absent or undecodable.
	Body any `json:"-"`
}

func newRequestResult(op *contract.Operation) *RequestResult {
	return &RequestResult{
		Valid:        true,
		PathParams:   make(map[string]any),
		QueryParams:  make(map[string]any),
		HeaderParams: make(map[string]any),
		CookieParams: make(map[string]any),
		Operation:    op,
	}
}

func (r *RequestResult) addError(e ValidationError) {
	r.Valid = false
	r.Errors = append(r.Errors, e)
}

func (r *RequestResult) addWarning(e ValidationError) {
	r.Warnings = append(r.Warnings, e)
}

func (r *ResponseResult) addError(e ValidationError) {
	r.Valid = false
	r.Errors = append(r.Errors, e)
}

func (r *ResponseResult) addWarning(e ValidationError) {
	r.Warnings = append(r.Warnings, e)
}
