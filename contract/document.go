package contract

import (
	"fmt"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasguard/internal/httputil"
	"github.com/erraggy/oasguard/oaserrors"
)

// Document is a compiled API contract: the path index, the operation
// table, and every parameter and schema those operations declare, with all
// references resolved into a shared node graph.
//
// A Document is immutable once Compile returns. It may be shared freely
// across goroutines without locking; the runtime validators never mutate
// it. Compile retains the input tree's leaf values (enum entries, for
// example), so callers that build trees by hand must not mutate them after
// compiling.
type Document struct {
	// Version is the declared OpenAPI version string ("" when absent).
	Version string

	index *pathIndex
}

// PathItem is one compiled path template with its operations.
type PathItem struct {
	// Template is the path template as declared (e.g. "/pets/{petId}").
	Template string

	// Operations maps canonical request methods ("GET") to operations.
	Operations map[string]*Operation

	// Allowed lists the declared methods, sorted, ready for an Allow
	// header.
	Allowed []string
}

// Operation is one compiled operation: a (method, path template) pair with
// its merged parameter list, request body, and response table.
type Operation struct {
	// Method is the canonical request method (e.g. "GET").
	Method string

	// Template is the owning path template.
	Template string

	// OperationID is the declared operationId ("" when absent).
	OperationID string

	// Deprecated marks operations the contract declares as deprecated.
	Deprecated bool

	// Parameters is the merged parameter list: path-level parameters
	// first, in declaration order, with operation-level declarations
	// overriding on the same (name, location) pair.
	Parameters []*ParameterSpec

	// RequestBody is nil when the operation declares none.
	RequestBody *RequestBodySpec

	// Responses maps normalized response selectors (exact codes, "4XX"
	// classes, "default") to response specifications.
	Responses map[string]*ResponseSpec

	// Security carries the operation's security requirement declarations
	// untouched: the engine never enforces them. An operation-level
	// declaration, even an empty one, overrides the document-level list.
	Security []SecurityRequirement

	// selectors caches the declared selector keys, sorted, for error
	// reporting.
	selectors []string
}

// ParameterSpec is one compiled parameter declaration.
type ParameterSpec struct {
	// Name is the parameter name as declared.
	Name string

	// In is the parameter location: "path", "query", "header" or "cookie".
	In string

	// Required marks parameters that must be present. Path parameters are
	// always required.
	Required bool

	// Style is the serialization style, normalized with its location
	// default when the document omits it.
	Style string

	// Explode is the explode flag, defaulted per OpenAPI rules (true only
	// for form style when omitted).
	Explode bool

	// AllowEmptyValue permits empty query values.
	AllowEmptyValue bool

	// Deprecated marks parameters the contract declares as deprecated.
	Deprecated bool

	// Schema constrains the deserialized value; nil leaves it
	// unconstrained.
	Schema *SchemaNode
}

// RequestBodySpec is a compiled request body declaration.
type RequestBodySpec struct {
	// Required marks bodies that must be present.
	Required bool

	// Content maps normalized media types to body schemas. A nil schema
	// leaves that media type unconstrained.
	Content map[string]*SchemaNode
}

// ResponseSpec is one compiled response declaration.
type ResponseSpec struct {
	// Selector is the normalized selector this response was declared
	// under: an exact code ("200"), a status class ("4XX"), or "default".
	Selector string

	// Content maps normalized media types to body schemas.
	Content map[string]*SchemaNode

	// Headers maps canonical header names to their declarations. The
	// Content-Type header is excluded per OpenAPI rules.
	Headers map[string]*HeaderSpec
}

// HeaderSpec is a compiled response header declaration.
type HeaderSpec struct {
	// Required marks headers that must be present.
	Required bool

	// Explode is the explode flag; header serialization is always simple
	// style.
	Explode bool

	// Schema constrains the deserialized header value.
	Schema *SchemaNode
}

// SecurityRequirement maps a security scheme name to its required scopes.
type SecurityRequirement map[string][]string

// Compile compiles a parsed OpenAPI document tree into an immutable
// Document. The tree is the generic form produced by decoding JSON or
// YAML: map[string]any mappings, []any sequences, and scalar leaves.
// Compile reads no files and makes no network requests; use [CompileYAML]
// or [CompileJSON] to go straight from bytes.
//
// Any malformed-contract condition, from an unresolvable $ref to an
// invalid path template, returns a *oaserrors.ResolutionError.
func Compile(tree map[string]any, opts ...Option) (*Document, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, &oaserrors.ResolutionError{Message: "document tree must not be nil"}
	}

	r := newResolver(tree, cfg)
	doc := &Document{}
	if raw, ok := tree["openapi"]; ok {
		doc.Version = fmt.Sprint(raw)
	} else {
		cfg.logger.Debug("document declares no openapi version")
	}

	rootSecurity, err := r.compileSecurity(tree["security"], "security")
	if err != nil {
		return nil, err
	}

	matchers, err := r.compilePaths(tree, rootSecurity)
	if err != nil {
		return nil, err
	}
	doc.index, err = newPathIndex(matchers)
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug("compiled contract",
		"templates", len(matchers), "version", doc.Version)
	return doc, nil
}

// CompileYAML decodes an OpenAPI document from YAML bytes and compiles it.
func CompileYAML(data []byte, opts ...Option) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &oaserrors.ResolutionError{Message: "invalid YAML document", Cause: err}
	}
	tree, ok := normalizeTree(raw).(map[string]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{Message: fmt.Sprintf("document root must be a mapping, got %T", raw)}
	}
	return Compile(tree, opts...)
}

// CompileJSON decodes an OpenAPI document from JSON bytes and compiles it.
func CompileJSON(data []byte, opts ...Option) (*Document, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, &oaserrors.ResolutionError{Message: "invalid JSON document", Cause: err}
	}
	return Compile(tree, opts...)
}

// normalizeTree rewrites the map[any]any mappings some YAML decoders
// produce (unquoted status-code keys, for example) into map[string]any so
// the compile walk sees one tree shape.
func normalizeTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeTree(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeTree(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalizeTree(val)
		}
		return t
	default:
		return v
	}
}

// Match finds the first path template matching path in preference order.
// The returned map holds the raw text captured by each placeholder.
// When nothing matches it returns a *oaserrors.NoMatchError.
func (d *Document) Match(path string) (*PathItem, map[string]string, error) {
	if item, params, ok := d.index.match(path); ok {
		return item, params, nil
	}
	return nil, nil, &oaserrors.NoMatchError{Path: path}
}

// MatchOperation locates the operation for a (method, path) pair. A path
// with no matching template returns a *oaserrors.NoMatchError; a matched
// template with no operation for the method returns a
// *oaserrors.MethodNotAllowedError carrying the allowed methods.
func (d *Document) MatchOperation(method, path string) (*Operation, map[string]string, error) {
	item, params, ok := d.index.match(path)
	if !ok {
		return nil, nil, &oaserrors.NoMatchError{Method: method, Path: path}
	}
	op, ok := item.Operations[strings.ToUpper(method)]
	if !ok {
		return nil, nil, &oaserrors.MethodNotAllowedError{
			Method:   method,
			Path:     path,
			Template: item.Template,
			Allowed:  item.Allowed,
		}
	}
	return op, params, nil
}

// Templates returns every compiled path template in match-preference
// order.
func (d *Document) Templates() []string {
	return d.index.templates()
}

// ResponseFor selects the response specification covering a status code:
// the exact numeric selector first, then the status class wildcard
// ("4XX"), then "default". When nothing covers the status it returns a
// *oaserrors.NoResponseSpecError listing the declared selectors.
func (op *Operation) ResponseFor(status int) (*ResponseSpec, error) {
	if rs, ok := op.Responses[strconv.Itoa(status)]; ok {
		return rs, nil
	}
	if class, ok := httputil.ClassSelector(status); ok {
		if rs, ok := op.Responses[class]; ok {
			return rs, nil
		}
	}
	if rs, ok := op.Responses[httputil.DefaultSelector]; ok {
		return rs, nil
	}
	return nil, &oaserrors.NoResponseSpecError{
		Status:   status,
		Method:   op.Method,
		Template: op.Template,
		Declared: op.selectors,
	}
}

// Parameter returns the declared parameter for a (location, name) pair,
// or nil. Header parameter lookup is case-insensitive.
func (op *Operation) Parameter(in, name string) *ParameterSpec {
	for _, p := range op.Parameters {
		if p.In != in {
			continue
		}
		if p.Name == name || (in == "header" && strings.EqualFold(p.Name, name)) {
			return p
		}
	}
	return nil
}

// compilePaths walks the paths object and compiles one matcher per
// template.
func (r *resolver) compilePaths(tree map[string]any, rootSecurity []SecurityRequirement) ([]*pathMatcher, error) {
	raw, ok := tree["paths"]
	if !ok {
		r.cfg.logger.Warn("document declares no paths")
		return nil, nil
	}
	paths, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    "paths",
			Message: fmt.Sprintf("paths must be a mapping, got %T", raw),
		}
	}

	matchers := make([]*pathMatcher, 0, len(paths))
	for _, template := range sortedKeys(paths) {
		if httputil.IsExtensionKey(template) {
			continue
		}
		item, err := r.compilePathItem(template, paths[template], rootSecurity)
		if err != nil {
			return nil, err
		}
		matcher, err := newPathMatcher(template, item)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, matcher)
	}
	return matchers, nil
}

// compilePathItem compiles one path item: its path-level parameters and
// every operation under it.
func (r *resolver) compilePathItem(template string, raw any, rootSecurity []SecurityRequirement) (*PathItem, error) {
	where := "paths." + template
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("path item must be a mapping, got %T", raw),
		}
	}
	// Path items may themselves be references.
	if ref, ok := refOf(m); ok {
		target, _, _, err := r.derefMap(ref, where, 0)
		if err != nil {
			return nil, err
		}
		m = target
	}

	pathParams, err := r.compileParameterList(m["parameters"], where+".parameters")
	if err != nil {
		return nil, err
	}

	item := &PathItem{
		Template:   template,
		Operations: make(map[string]*Operation),
	}
	for _, key := range sortedKeys(m) {
		method, ok := httputil.CanonicalMethod(key)
		if !ok {
			continue
		}
		op, err := r.compileOperation(method, template, m[key], pathParams, rootSecurity, where+"."+key)
		if err != nil {
			return nil, err
		}
		item.Operations[method] = op
		item.Allowed = append(item.Allowed, method)
	}
	sort.Strings(item.Allowed)
	return item, nil
}

// compileOperation compiles one operation under a path item.
func (r *resolver) compileOperation(method, template string, raw any, pathParams []*ParameterSpec, rootSecurity []SecurityRequirement, where string) (*Operation, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("operation must be a mapping, got %T", raw),
		}
	}

	op := &Operation{Method: method, Template: template}

	var err error
	if op.OperationID, _, err = stringField(m, "operationId", where); err != nil {
		return nil, err
	}
	if op.Deprecated, _, err = boolField(m, "deprecated", where); err != nil {
		return nil, err
	}

	opParams, err := r.compileParameterList(m["parameters"], where+".parameters")
	if err != nil {
		return nil, err
	}
	op.Parameters = mergeParameters(pathParams, opParams)

	if raw, ok := m["requestBody"]; ok {
		if op.RequestBody, err = r.compileRequestBody(raw, where+".requestBody"); err != nil {
			return nil, err
		}
	}

	rawResponses, ok := m["responses"]
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: "operation declares no responses",
		}
	}
	if op.Responses, err = r.compileResponses(rawResponses, where+".responses"); err != nil {
		return nil, err
	}
	op.selectors = make([]string, 0, len(op.Responses))
	for sel := range op.Responses {
		op.selectors = append(op.selectors, sel)
	}
	sort.Strings(op.selectors)

	if rawSec, ok := m["security"]; ok {
		sec, err := r.compileSecurity(rawSec, where+".security")
		if err != nil {
			return nil, err
		}
		if sec == nil {
			sec = []SecurityRequirement{}
		}
		op.Security = sec
	} else {
		op.Security = rootSecurity
	}

	return op, nil
}

// compileParameterList compiles a parameters array, rejecting duplicate
// (name, location) pairs within the list.
func (r *resolver) compileParameterList(raw any, where string) ([]*ParameterSpec, error) {
	if raw == nil {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("parameters must be an array, got %T", raw),
		}
	}

	params := make([]*ParameterSpec, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		entryWhere := where + "." + strconv.Itoa(i)
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, &oaserrors.ResolutionError{
				Path:    entryWhere,
				Message: fmt.Sprintf("parameter must be a mapping, got %T", entry),
			}
		}

		var p *ParameterSpec
		var err error
		if ref, ok := refOf(m); ok {
			p, err = r.parameterForRef(ref, entryWhere)
		} else {
			p, err = r.compileParameterMap(m, entryWhere)
		}
		if err != nil {
			return nil, err
		}

		key := p.In + ":" + p.Name
		if seen[key] {
			return nil, &oaserrors.ResolutionError{
				Path:    entryWhere,
				Message: fmt.Sprintf("duplicate %s parameter %q", p.In, p.Name),
			}
		}
		seen[key] = true
		params = append(params, p)
	}
	return params, nil
}

// parameterForRef resolves a parameter reference, compiling and memoizing
// the component on first use.
func (r *resolver) parameterForRef(ref, where string) (*ParameterSpec, error) {
	if p, ok := r.params[ref]; ok {
		return p, nil
	}
	target, targetPath, chain, err := r.derefMap(ref, where, 0)
	if err != nil {
		return nil, err
	}
	p, err := r.compileParameterMap(target, targetPath)
	if err != nil {
		return nil, err
	}
	for _, c := range chain {
		r.params[c] = p
	}
	return p, nil
}

// compileParameterMap compiles one concrete parameter declaration.
func (r *resolver) compileParameterMap(m map[string]any, where string) (*ParameterSpec, error) {
	p := &ParameterSpec{}

	var err error
	var ok bool
	if p.Name, ok, err = stringField(m, "name", where); err != nil {
		return nil, err
	} else if !ok || p.Name == "" {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: "parameter declares no name",
		}
	}
	if p.In, ok, err = stringField(m, "in", where); err != nil {
		return nil, err
	} else if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: "parameter declares no location",
		}
	}
	switch p.In {
	case "path", "query", "header", "cookie":
	default:
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("invalid parameter location %q", p.In),
		}
	}

	if p.Required, _, err = boolField(m, "required", where); err != nil {
		return nil, err
	}
	if p.In == "path" && !p.Required {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("path parameter %q must be required", p.Name),
		}
	}
	if p.AllowEmptyValue, _, err = boolField(m, "allowEmptyValue", where); err != nil {
		return nil, err
	}
	if p.Deprecated, _, err = boolField(m, "deprecated", where); err != nil {
		return nil, err
	}

	style, declaredStyle, err := stringField(m, "style", where)
	if err != nil {
		return nil, err
	}
	if !declaredStyle {
		style = defaultStyle(p.In)
	} else if !validStyle(p.In, style) {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("style %q is not valid for %s parameters", style, p.In),
		}
	}
	p.Style = style

	explode, declaredExplode, err := boolField(m, "explode", where)
	if err != nil {
		return nil, err
	}
	if declaredExplode {
		p.Explode = explode
	} else {
		p.Explode = style == "form"
	}

	if raw, ok := m["schema"]; ok {
		if p.Schema, err = r.compileSchemaValue(raw, where+".schema", 0); err != nil {
			return nil, err
		}
	} else if _, ok := m["content"]; ok {
		// Media-typed parameters carry their own serialization; values
		// pass through unvalidated.
		r.cfg.logger.Warn("parameter uses content media types; its values are not validated",
			"parameter", p.Name, "in", p.In)
	}

	return p, nil
}

// defaultStyle returns the OpenAPI default serialization style for a
// parameter location.
func defaultStyle(in string) string {
	switch in {
	case "query", "cookie":
		return "form"
	default:
		return "simple"
	}
}

// validStyle reports whether a declared style is legal for a location.
func validStyle(in, style string) bool {
	switch in {
	case "path":
		return style == "simple" || style == "label" || style == "matrix"
	case "query":
		return style == "form" || style == "spaceDelimited" || style == "pipeDelimited" || style == "deepObject"
	case "header":
		return style == "simple"
	case "cookie":
		return style == "form"
	default:
		return false
	}
}

// mergeParameters merges path-level and operation-level parameter lists.
// Order is declaration order, path level first; an operation-level
// parameter replaces the path-level one with the same (name, location).
func mergeParameters(pathParams, opParams []*ParameterSpec) []*ParameterSpec {
	if len(pathParams) == 0 {
		return opParams
	}
	merged := make([]*ParameterSpec, len(pathParams), len(pathParams)+len(opParams))
	copy(merged, pathParams)

	for _, p := range opParams {
		replaced := false
		for i, existing := range merged {
			if existing.In == p.In && existing.Name == p.Name {
				merged[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, p)
		}
	}
	return merged
}

// compileRequestBody compiles a requestBody declaration or reference.
func (r *resolver) compileRequestBody(raw any, where string) (*RequestBodySpec, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("requestBody must be a mapping, got %T", raw),
		}
	}

	if ref, ok := refOf(m); ok {
		if body, ok := r.bodies[ref]; ok {
			return body, nil
		}
		target, targetPath, chain, err := r.derefMap(ref, where, 0)
		if err != nil {
			return nil, err
		}
		body, err := r.compileRequestBodyMap(target, targetPath)
		if err != nil {
			return nil, err
		}
		for _, c := range chain {
			r.bodies[c] = body
		}
		return body, nil
	}
	return r.compileRequestBodyMap(m, where)
}

func (r *resolver) compileRequestBodyMap(m map[string]any, where string) (*RequestBodySpec, error) {
	body := &RequestBodySpec{}

	var err error
	if body.Required, _, err = boolField(m, "required", where); err != nil {
		return nil, err
	}

	raw, ok := m["content"]
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: "requestBody declares no content",
		}
	}
	if body.Content, err = r.compileContent(raw, where+".content"); err != nil {
		return nil, err
	}
	return body, nil
}

// compileContent compiles a content mapping: media type to schema. Media
// type keys are normalized (lowercased, parameters stripped) so runtime
// lookup is an exact map hit.
func (r *resolver) compileContent(raw any, where string) (map[string]*SchemaNode, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("content must be a mapping, got %T", raw),
		}
	}

	content := make(map[string]*SchemaNode, len(m))
	for _, mt := range sortedKeys(m) {
		normalized, _, err := mime.ParseMediaType(mt)
		if err != nil {
			return nil, &oaserrors.ResolutionError{
				Path:    where + "." + mt,
				Message: "invalid media type",
				Cause:   err,
			}
		}

		entry, ok := m[mt].(map[string]any)
		if !ok {
			return nil, &oaserrors.ResolutionError{
				Path:    where + "." + mt,
				Message: fmt.Sprintf("media type entry must be a mapping, got %T", m[mt]),
			}
		}
		var schema *SchemaNode
		if rawSchema, ok := entry["schema"]; ok {
			if schema, err = r.compileSchemaValue(rawSchema, where+"."+mt+".schema", 0); err != nil {
				return nil, err
			}
		}
		content[normalized] = schema
	}
	return content, nil
}

// compileResponses compiles a responses mapping keyed by selector.
func (r *resolver) compileResponses(raw any, where string) (map[string]*ResponseSpec, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("responses must be a mapping, got %T", raw),
		}
	}

	responses := make(map[string]*ResponseSpec, len(m))
	for _, key := range sortedKeys(m) {
		if httputil.IsExtensionKey(key) {
			continue
		}
		selector, ok := httputil.NormalizeSelector(key)
		if !ok {
			return nil, &oaserrors.ResolutionError{
				Path:    where + "." + key,
				Message: fmt.Sprintf("invalid response selector %q", key),
			}
		}
		if _, dup := responses[selector]; dup {
			return nil, &oaserrors.ResolutionError{
				Path:    where + "." + key,
				Message: fmt.Sprintf("duplicate response selector %q", selector),
			}
		}
		rs, err := r.compileResponse(m[key], selector, where+"."+key)
		if err != nil {
			return nil, err
		}
		responses[selector] = rs
	}
	if len(responses) == 0 {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: "operation declares no responses",
		}
	}
	return responses, nil
}

// compileResponse compiles one response declaration or reference. Response
// components are re-materialized per use site because the selector they
// serve under is use-site state; their content schemas still share nodes
// through the schema memo.
func (r *resolver) compileResponse(raw any, selector, where string) (*ResponseSpec, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("response must be a mapping, got %T", raw),
		}
	}
	if ref, ok := refOf(m); ok {
		target, targetPath, _, err := r.derefMap(ref, where, 0)
		if err != nil {
			return nil, err
		}
		m = target
		where = targetPath
	}

	rs := &ResponseSpec{Selector: selector}

	var err error
	if raw, ok := m["content"]; ok {
		if rs.Content, err = r.compileContent(raw, where+".content"); err != nil {
			return nil, err
		}
	}
	if raw, ok := m["headers"]; ok {
		if rs.Headers, err = r.compileResponseHeaders(raw, where+".headers"); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// compileResponseHeaders compiles a response headers mapping. Names are
// canonicalized for case-insensitive runtime lookup; a declared
// Content-Type header is ignored per OpenAPI rules.
func (r *resolver) compileResponseHeaders(raw any, where string) (map[string]*HeaderSpec, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("headers must be a mapping, got %T", raw),
		}
	}

	headers := make(map[string]*HeaderSpec, len(m))
	for _, name := range sortedKeys(m) {
		if strings.EqualFold(name, "Content-Type") {
			r.cfg.logger.Debug("ignoring declared Content-Type response header", "path", where)
			continue
		}

		entry, ok := m[name].(map[string]any)
		if !ok {
			return nil, &oaserrors.ResolutionError{
				Path:    where + "." + name,
				Message: fmt.Sprintf("header must be a mapping, got %T", m[name]),
			}
		}

		var h *HeaderSpec
		var err error
		if ref, ok := refOf(entry); ok {
			h, err = r.headerForRef(ref, where+"."+name)
		} else {
			h, err = r.compileHeaderMap(entry, where+"."+name)
		}
		if err != nil {
			return nil, err
		}
		headers[http.CanonicalHeaderKey(name)] = h
	}
	return headers, nil
}

// headerForRef resolves a header component reference, compiling and
// memoizing it on first use.
func (r *resolver) headerForRef(ref, where string) (*HeaderSpec, error) {
	if h, ok := r.headers[ref]; ok {
		return h, nil
	}
	target, targetPath, chain, err := r.derefMap(ref, where, 0)
	if err != nil {
		return nil, err
	}
	h, err := r.compileHeaderMap(target, targetPath)
	if err != nil {
		return nil, err
	}
	for _, c := range chain {
		r.headers[c] = h
	}
	return h, nil
}

func (r *resolver) compileHeaderMap(m map[string]any, where string) (*HeaderSpec, error) {
	h := &HeaderSpec{}

	var err error
	if h.Required, _, err = boolField(m, "required", where); err != nil {
		return nil, err
	}
	if h.Explode, _, err = boolField(m, "explode", where); err != nil {
		return nil, err
	}
	if raw, ok := m["schema"]; ok {
		if h.Schema, err = r.compileSchemaValue(raw, where+".schema", 0); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// compileSecurity compiles a security requirement list. A nil return
// means the list was absent; an empty non-nil list was declared empty.
func (r *resolver) compileSecurity(raw any, where string) ([]SecurityRequirement, error) {
	if raw == nil {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("security must be an array, got %T", raw),
		}
	}

	reqs := make([]SecurityRequirement, 0, len(entries))
	for i, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, &oaserrors.ResolutionError{
				Path:    where + "." + strconv.Itoa(i),
				Message: fmt.Sprintf("security requirement must be a mapping, got %T", entry),
			}
		}
		req := make(SecurityRequirement, len(m))
		for _, scheme := range sortedKeys(m) {
			rawScopes, ok := m[scheme].([]any)
			if !ok {
				return nil, &oaserrors.ResolutionError{
					Path:    where + "." + strconv.Itoa(i) + "." + scheme,
					Message: fmt.Sprintf("security scopes must be an array, got %T", m[scheme]),
				}
			}
			scopes := make([]string, 0, len(rawScopes))
			for _, s := range rawScopes {
				scope, ok := s.(string)
				if !ok {
					return nil, &oaserrors.ResolutionError{
						Path:    where + "." + strconv.Itoa(i) + "." + scheme,
						Message: "security scopes must be strings",
					}
				}
				scopes = append(scopes, scope)
			}
			req[scheme] = scopes
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
