package httpvalidator

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"sort"
	"strings"

	"github.com/erraggy/oasguard/contract"
)

// ValidateResponse validates an outgoing HTTP response against the
// contract, using the original request to locate the operation. status,
// header, and body are passed separately so middleware can validate
// captured response parts without an *http.Response.
//
// The error return covers conditions with nothing to validate against:
// the request matching errors of ValidateRequest, plus
// *oaserrors.NoResponseSpecError when no declared selector covers status.
// Selector precedence is exact code, then status class ("4XX"), then
// "default"; the covering selector is recorded on the result.
//
//	result, err := v.ValidateResponse(req, rec.Code, rec.Header(), rec.Body.Bytes())
func (v *Validator) ValidateResponse(r *http.Request, status int, header http.Header, body []byte) (*ResponseResult, error) {
	if r == nil {
		return nil, errors.New("httpvalidator: request must not be nil")
	}

	op, _, err := v.doc.MatchOperation(r.Method, r.URL.Path)
	if err != nil {
		return nil, err
	}
	spec, err := op.ResponseFor(status)
	if err != nil {
		return nil, err
	}

	v.logger.Debug("validating response",
		"method", op.Method, "template", op.Template, "status", status, "selector", spec.Selector)

	result := &ResponseResult{Valid: true, Status: status, Selector: spec.Selector}

	v.validateResponseHeaders(header, spec, result)
	v.validateResponseBody(header, body, spec, result)

	if !result.Valid {
		v.logger.Debug("response validation failed",
			"method", op.Method, "template", op.Template, "status", status, "errors", len(result.Errors))
	}
	return result, nil
}

func (v *Validator) validateResponseHeaders(header http.Header, spec *contract.ResponseSpec, result *ResponseResult) {
	if len(spec.Headers) == 0 {
		return
	}

	w := getWalk(v, LocationResponseHeader)
	defer putWalk(w)

	// Declared names are canonical; sorted order keeps findings stable.
	names := make([]string, 0, len(spec.Headers))
	for name := range spec.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		hs := spec.Headers[name]
		headerPath := FieldPath{Field(name)}

		values := header.Values(name)
		if len(values) == 0 {
			if hs.Required {
				w.report(headerPath, ReasonRequired,
					fmt.Sprintf("required response header %q is missing", name), nil)
			}
			continue
		}

		value, err := decodeSimple(strings.Join(values, ","), hs.Schema, hs.Explode)
		if err != nil {
			w.report(headerPath, ReasonMalformedValue,
				fmt.Sprintf("malformed response header %q: %v", name, err), nil)
			continue
		}
		w.walkValue(value, hs.Schema, headerPath)
	}

	w.flush(result)
}

func (v *Validator) validateResponseBody(header http.Header, body []byte, spec *contract.ResponseSpec, result *ResponseResult) {
	if len(spec.Content) == 0 {
		return
	}

	w := getWalk(v, LocationResponseBody)
	defer putWalk(w)
	defer w.flush(result)

	if len(body) == 0 {
		// Declared content with no body to check. Responses to HEAD and
		// 304s legitimately elide bodies, so this stays advisory.
		w.warn(FieldPath{}, ReasonRequired,
			"response body is empty but the contract declares content", nil)
		return
	}

	contentType := header.Get("Content-Type")
	if contentType == "" {
		w.report(FieldPath{}, ReasonMediaType, "response Content-Type header is missing", nil)
		return
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		w.report(FieldPath{}, ReasonMediaType,
			fmt.Sprintf("invalid response Content-Type %q: %v", contentType, err), nil)
		return
	}

	node, ok := spec.Content[mediaType]
	if !ok {
		w.report(FieldPath{}, ReasonMediaType,
			fmt.Sprintf("media type %q is not allowed; expected one of: %s",
				mediaType, mediaTypeList(spec.Content)), nil)
		return
	}

	value, decoded, err := v.decodeBody(mediaType, body)
	if err != nil {
		w.report(FieldPath{}, ReasonMalformedValue,
			fmt.Sprintf("invalid %s body: %v", mediaType, err), nil)
		return
	}
	if !decoded {
		v.logger.Debug("no decoder for media type, skipping response body schema",
			"mediaType", mediaType)
		return
	}

	result.Body = value
	w.walkValue(value, node, FieldPath{})
}
