package httpvalidator

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sort"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/erraggy/oasguard/contract"
)

// ValidateRequest validates an incoming HTTP request against the
// contract. The error return covers only conditions with no operation to
// validate against: *oaserrors.NoMatchError when no template matches the
// path and *oaserrors.MethodNotAllowedError when the path matches but the
// method is undeclared. Every other violation aggregates on the result,
// which reports all of them from a single pass.
//
// The request body, when present and decodable, is read in full (capped
// by WithMaxBodyBytes) and is not restored; middleware callers should
// re-wrap r.Body from result.Body or buffer upstream.
func (v *Validator) ValidateRequest(r *http.Request) (*RequestResult, error) {
	if r == nil {
		return nil, errors.New("httpvalidator: request must not be nil")
	}

	op, captures, err := v.doc.MatchOperation(r.Method, r.URL.Path)
	if err != nil {
		return nil, err
	}

	v.logger.Debug("validating request", "method", op.Method, "template", op.Template)

	result := newRequestResult(op)

	if op.Deprecated && v.cfg.includeWarnings {
		result.addWarning(ValidationError{
			Location: LocationPath,
			Reason:   ReasonDeprecated,
			Message:  fmt.Sprintf("operation %s %s is deprecated", op.Method, op.Template),
		})
	}

	v.validatePathParams(captures, op, result)
	v.validateQueryParams(r, op, result)
	v.validateHeaderParams(r, op, result)
	v.validateCookieParams(r, op, result)
	v.validateRequestBody(r, op, result)

	if !result.Valid {
		v.logger.Debug("request validation failed",
			"method", op.Method, "template", op.Template, "errors", len(result.Errors))
	}
	return result, nil
}

func (v *Validator) validatePathParams(captures map[string]string, op *contract.Operation, result *RequestResult) {
	w := getWalk(v, LocationPath)
	defer putWalk(w)

	declared := make(map[string]bool)
	for _, spec := range op.Parameters {
		if spec.In != "path" {
			continue
		}
		declared[spec.Name] = true
		paramPath := FieldPath{Field(spec.Name)}

		raw, ok := captures[spec.Name]
		if !ok {
			w.report(paramPath, ReasonRequired,
				fmt.Sprintf("required path parameter %q is missing", spec.Name), nil)
			continue
		}

		value, err := decodePathParam(raw, spec)
		if err != nil {
			w.report(paramPath, ReasonMalformedValue,
				fmt.Sprintf("malformed path parameter %q: %v", spec.Name, err), nil)
			continue
		}
		result.PathParams[spec.Name] = value

		if spec.Deprecated {
			w.warn(paramPath, ReasonDeprecated,
				fmt.Sprintf("path parameter %q is deprecated", spec.Name), nil)
		}
		w.walkValue(value, spec.Schema, paramPath)
	}

	// A capture without a declaration means the template names a
	// placeholder the operation never declares. Surface it rather than
	// dropping the value.
	var undeclared []string
	for name := range captures {
		if !declared[name] {
			undeclared = append(undeclared, name)
		}
	}
	sort.Strings(undeclared)
	for _, name := range undeclared {
		result.PathParams[name] = captures[name]
		w.warn(FieldPath{Field(name)}, ReasonAdditionalProperty,
			fmt.Sprintf("path parameter %q is not declared by the operation", name), nil)
	}

	w.flush(result)
}

func (v *Validator) validateQueryParams(r *http.Request, op *contract.Operation, result *RequestResult) {
	w := getWalk(v, LocationQuery)
	defer putWalk(w)

	query := r.URL.Query()
	consumed := make(map[string]bool, len(query))

	for _, spec := range op.Parameters {
		if spec.In != "query" {
			continue
		}
		paramPath := FieldPath{Field(spec.Name)}

		value, present, err := decodeQueryParam(query, spec, consumed)
		if err != nil {
			w.report(paramPath, ReasonMalformedValue,
				fmt.Sprintf("malformed query parameter %q: %v", spec.Name, err), nil)
			continue
		}
		if !present {
			if spec.Required {
				w.report(paramPath, ReasonRequired,
					fmt.Sprintf("required query parameter %q is missing", spec.Name), nil)
			}
			continue
		}

		if !spec.AllowEmptyValue {
			if raw, ok := query[spec.Name]; ok && len(raw) == 1 && raw[0] == "" {
				w.report(paramPath, ReasonMalformedValue,
					fmt.Sprintf("query parameter %q has an empty value", spec.Name), nil)
				continue
			}
		}

		result.QueryParams[spec.Name] = value
		if spec.Deprecated {
			w.warn(paramPath, ReasonDeprecated,
				fmt.Sprintf("query parameter %q is deprecated", spec.Name), nil)
		}
		w.walkValue(value, spec.Schema, paramPath)
	}

	if v.cfg.strictParams {
		var unknown []string
		for key := range query {
			if !consumed[key] {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)
		for _, key := range unknown {
			w.report(FieldPath{Field(key)}, ReasonAdditionalProperty,
				fmt.Sprintf("query parameter %q is not declared", key), nil)
		}
	}

	w.flush(result)
}

// standardRequestHeaders are never reported as undeclared in strict mode:
// user agents and proxies send them regardless of any contract.
var standardRequestHeaders = map[string]bool{
	"accept": true, "accept-charset": true, "accept-encoding": true,
	"accept-language": true, "authorization": true, "cache-control": true,
	"connection": true, "content-length": true, "content-type": true,
	"cookie": true, "host": true, "origin": true, "referer": true,
	"user-agent": true, "x-forwarded-for": true, "x-forwarded-host": true,
	"x-forwarded-proto": true, "x-real-ip": true, "x-request-id": true,
}

func isStandardRequestHeader(name string) bool {
	lower := strings.ToLower(name)
	return standardRequestHeaders[lower] || strings.HasPrefix(lower, "sec-")
}

func (v *Validator) validateHeaderParams(r *http.Request, op *contract.Operation, result *RequestResult) {
	w := getWalk(v, LocationHeader)
	defer putWalk(w)

	declared := make(map[string]bool)
	for _, spec := range op.Parameters {
		if spec.In != "header" {
			continue
		}
		name := http.CanonicalHeaderKey(spec.Name)
		declared[name] = true

		// Declarations for the content negotiation headers are ignored
		// per OpenAPI rules; their semantics live in the request body and
		// security declarations.
		switch name {
		case "Accept", "Content-Type", "Authorization":
			continue
		}
		paramPath := FieldPath{Field(spec.Name)}

		values := r.Header[name]
		if len(values) == 0 {
			if spec.Required {
				w.report(paramPath, ReasonRequired,
					fmt.Sprintf("required header parameter %q is missing", spec.Name), nil)
			}
			continue
		}

		// Repeated header fields are equivalent to one comma-joined
		// field, which is exactly the simple-style list form.
		value, err := decodeHeaderParam(strings.Join(values, ","), spec)
		if err != nil {
			w.report(paramPath, ReasonMalformedValue,
				fmt.Sprintf("malformed header parameter %q: %v", spec.Name, err), nil)
			continue
		}

		result.HeaderParams[spec.Name] = value
		if spec.Deprecated {
			w.warn(paramPath, ReasonDeprecated,
				fmt.Sprintf("header parameter %q is deprecated", spec.Name), nil)
		}
		w.walkValue(value, spec.Schema, paramPath)
	}

	if v.cfg.strictParams {
		var unknown []string
		for name := range r.Header {
			if !declared[name] && !isStandardRequestHeader(name) {
				unknown = append(unknown, name)
			}
		}
		sort.Strings(unknown)
		for _, name := range unknown {
			w.report(FieldPath{Field(name)}, ReasonAdditionalProperty,
				fmt.Sprintf("header %q is not declared", name), nil)
		}
	}

	w.flush(result)
}

func (v *Validator) validateCookieParams(r *http.Request, op *contract.Operation, result *RequestResult) {
	w := getWalk(v, LocationCookie)
	defer putWalk(w)

	declared := make(map[string]bool)
	for _, spec := range op.Parameters {
		if spec.In != "cookie" {
			continue
		}
		declared[spec.Name] = true
		paramPath := FieldPath{Field(spec.Name)}

		cookie, err := r.Cookie(spec.Name)
		if err != nil {
			if spec.Required {
				w.report(paramPath, ReasonRequired,
					fmt.Sprintf("required cookie parameter %q is missing", spec.Name), nil)
			}
			continue
		}

		value, err := decodeCookieParam(cookie.Value, spec)
		if err != nil {
			w.report(paramPath, ReasonMalformedValue,
				fmt.Sprintf("malformed cookie parameter %q: %v", spec.Name, err), nil)
			continue
		}

		result.CookieParams[spec.Name] = value
		if spec.Deprecated {
			w.warn(paramPath, ReasonDeprecated,
				fmt.Sprintf("cookie parameter %q is deprecated", spec.Name), nil)
		}
		w.walkValue(value, spec.Schema, paramPath)
	}

	if v.cfg.strictParams {
		for _, cookie := range r.Cookies() {
			if !declared[cookie.Name] {
				w.report(FieldPath{Field(cookie.Name)}, ReasonAdditionalProperty,
					fmt.Sprintf("cookie %q is not declared", cookie.Name), nil)
			}
		}
	}

	w.flush(result)
}

func (v *Validator) validateRequestBody(r *http.Request, op *contract.Operation, result *RequestResult) {
	spec := op.RequestBody
	if spec == nil {
		return
	}

	w := getWalk(v, LocationBody)
	defer putWalk(w)
	defer w.flush(result)

	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		if spec.Required {
			w.report(FieldPath{}, ReasonRequired, "request body is required but missing", nil)
		}
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		w.report(FieldPath{}, ReasonMediaType, "Content-Type header is missing", nil)
		return
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		w.report(FieldPath{}, ReasonMediaType,
			fmt.Sprintf("invalid Content-Type header %q: %v", contentType, err), nil)
		return
	}

	// Exact match only. A contract that accepts application/json does not
	// thereby accept application/xml, and wildcard declarations are not
	// part of the compiled content table.
	node, ok := spec.Content[mediaType]
	if !ok {
		w.report(FieldPath{}, ReasonMediaType,
			fmt.Sprintf("media type %q is not allowed; expected one of: %s",
				mediaType, mediaTypeList(spec.Content)), nil)
		return
	}

	data, err := readCapped(r.Body, v.cfg.maxBodyBytes)
	if err != nil {
		w.report(FieldPath{}, ReasonMalformedValue, err.Error(), nil)
		return
	}

	value, decoded, err := v.decodeBody(mediaType, data)
	if err != nil {
		w.report(FieldPath{}, ReasonMalformedValue,
			fmt.Sprintf("invalid %s body: %v", mediaType, err), nil)
		return
	}
	if !decoded {
		// Declared media type with no registered decoder: presence is all
		// that can be checked.
		v.logger.Debug("no decoder for media type, skipping body schema",
			"mediaType", mediaType, "template", op.Template)
		return
	}

	result.Body = value
	w.walkValue(value, node, FieldPath{})
}

// decodeBody turns raw body bytes into the generic value shape the schema
// walk consumes. Registered decoders take precedence; JSON is built in.
// The second return is false when no decoder covers the media type.
func (v *Validator) decodeBody(mediaType string, data []byte) (any, bool, error) {
	if fn, ok := v.cfg.decoders[mediaType]; ok {
		value, err := fn(data)
		if err != nil {
			return nil, false, err
		}
		return value, true, nil
	}
	if isJSONMediaType(mediaType) {
		var value any
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, false, err
		}
		return value, true, nil
	}
	return nil, false, nil
}

func isJSONMediaType(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// readCapped reads at most limit bytes from body, erroring when the body
// exceeds the limit rather than silently truncating it.
func readCapped(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("request body exceeds %d bytes", limit)
	}
	return data, nil
}

func mediaTypeList(content map[string]*contract.SchemaNode) string {
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
