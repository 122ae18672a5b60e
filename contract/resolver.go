package contract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/erraggy/oasguard/oaserrors"
)

// DefaultMaxRefDepth is the maximum number of chained $ref hops followed
// during compilation. This prevents stack exhaustion from deeply nested
// (but non-circular) reference chains.
const DefaultMaxRefDepth = 100

// resolver carries the state of one Compile run: the raw document tree,
// the memoized component tables, and the compile configuration.
type resolver struct {
	root map[string]any
	cfg  *config

	// schemas memoizes compiled schema nodes by canonical ref. A node is
	// registered before its subschemas compile, so self-referential and
	// mutually referential schemas link back to the shared in-progress
	// node instead of recursing forever.
	schemas map[string]*SchemaNode

	// params, bodies and headers memoize the non-schema components that
	// carry no use-site state and can be shared between operations.
	params  map[string]*ParameterSpec
	bodies  map[string]*RequestBodySpec
	headers map[string]*HeaderSpec
}

func newResolver(root map[string]any, cfg *config) *resolver {
	return &resolver{
		root:    root,
		cfg:     cfg,
		schemas: make(map[string]*SchemaNode),
		params:  make(map[string]*ParameterSpec),
		bodies:  make(map[string]*RequestBodySpec),
		headers: make(map[string]*HeaderSpec),
	}
}

// resolveRef traverses the document tree to the node a local reference
// denotes, per RFC 6901 JSON Pointer semantics.
func (r *resolver) resolveRef(ref, where string) (any, error) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, &oaserrors.ResolutionError{
			Ref:     ref,
			Path:    where,
			Message: "only document-local references are supported",
		}
	}

	parts := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
	current := any(r.root)
	for i, part := range parts {
		part = unescapeJSONPointer(part)

		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return nil, &oaserrors.ResolutionError{
					Ref:     ref,
					Path:    where,
					Message: fmt.Sprintf("reference target does not exist (missing key %q)", part),
				}
			}
			current = next

		case []any:
			// Array indexing per RFC 6901.
			index, err := strconv.Atoi(part)
			if err != nil {
				return nil, &oaserrors.ResolutionError{
					Ref:     ref,
					Path:    where,
					Message: fmt.Sprintf("invalid array index %q in reference", part),
				}
			}
			if index < 0 || index >= len(v) {
				return nil, &oaserrors.ResolutionError{
					Ref:     ref,
					Path:    where,
					Message: fmt.Sprintf("array index %d out of bounds (length %d)", index, len(v)),
				}
			}
			current = v[index]

		default:
			return nil, &oaserrors.ResolutionError{
				Ref:     ref,
				Path:    where,
				Message: fmt.Sprintf("cannot traverse into %T at #/%s", v, strings.Join(parts[:i], "/")),
			}
		}
	}

	return current, nil
}

// derefMap follows ref, including chains of refs that point at further
// refs, to the concrete mapping it denotes. It returns the mapping, its
// document path, and every ref followed along the way (for memoization).
// A chain that revisits a ref never reaches a concrete mapping and is
// reported as circular.
func (r *resolver) derefMap(ref, where string, depth int) (map[string]any, string, []string, error) {
	var chain []string
	seen := make(map[string]bool)

	for {
		if depth > r.cfg.maxRefDepth {
			return nil, "", nil, &oaserrors.ResolutionError{
				Ref:     ref,
				Path:    where,
				Message: fmt.Sprintf("maximum reference depth %d exceeded", r.cfg.maxRefDepth),
			}
		}
		if seen[ref] {
			return nil, "", nil, &oaserrors.ResolutionError{
				Ref:        ref,
				Path:       where,
				IsCircular: true,
				Message:    "reference chain never reaches a concrete target",
			}
		}
		seen[ref] = true
		chain = append(chain, ref)

		target, err := r.resolveRef(ref, where)
		if err != nil {
			return nil, "", nil, err
		}
		m, ok := target.(map[string]any)
		if !ok {
			return nil, "", nil, &oaserrors.ResolutionError{
				Ref:     ref,
				Path:    where,
				Message: fmt.Sprintf("reference target must be a mapping, got %T", target),
			}
		}

		inner, ok := refOf(m)
		if !ok {
			return m, refDocPath(ref), chain, nil
		}
		where = refDocPath(ref)
		ref = inner
		depth++
	}
}

// schemaForRef resolves a schema reference to its shared node, compiling
// the target on first use. Every ref in an alias chain memoizes to the one
// node, so pointer identity holds across all spellings of a target.
func (r *resolver) schemaForRef(ref, where string, depth int) (*SchemaNode, error) {
	if node, ok := r.schemas[ref]; ok {
		return node, nil
	}

	target, targetPath, chain, err := r.derefMap(ref, where, depth)
	if err != nil {
		return nil, err
	}

	canonical := chain[len(chain)-1]
	if node, ok := r.schemas[canonical]; ok {
		for _, c := range chain {
			r.schemas[c] = node
		}
		return node, nil
	}

	node := &SchemaNode{Ref: canonical}
	// Register before filling: subschemas that point back at this ref
	// must find the in-progress node.
	for _, c := range chain {
		r.schemas[c] = node
	}
	if err := r.fillSchema(node, target, targetPath, depth+1); err != nil {
		return nil, err
	}
	r.cfg.logger.Debug("resolved schema reference", "ref", canonical)
	return node, nil
}

// compileSchemaValue compiles the schema found at a schema-valued position
// of the document: either an inline schema mapping or a $ref.
func (r *resolver) compileSchemaValue(raw any, where string, depth int) (*SchemaNode, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("schema must be a mapping, got %T", raw),
		}
	}
	if ref, ok := refOf(m); ok {
		return r.schemaForRef(ref, where, depth)
	}
	node := &SchemaNode{}
	if err := r.fillSchema(node, m, where, depth); err != nil {
		return nil, err
	}
	return node, nil
}

// fillSchema populates node from a concrete schema mapping.
func (r *resolver) fillSchema(node *SchemaNode, m map[string]any, where string, depth int) error {
	kind := KindAny
	hasType := false

	if rawType, ok := m["type"]; ok {
		switch t := rawType.(type) {
		case string:
			k, isNull, err := kindForType(t, where)
			if err != nil {
				return err
			}
			if isNull {
				node.Nullable = true
			} else {
				kind = k
				hasType = true
			}
		case []any:
			var kinds []Kind
			for _, entry := range t {
				s, ok := entry.(string)
				if !ok {
					return &oaserrors.ResolutionError{
						Path:    where,
						Message: "type entries must be strings",
					}
				}
				k, isNull, err := kindForType(s, where)
				if err != nil {
					return err
				}
				if isNull {
					node.Nullable = true
					continue
				}
				kinds = append(kinds, k)
			}
			switch len(kinds) {
			case 0:
			case 1:
				kind = kinds[0]
				hasType = true
			default:
				return &oaserrors.ResolutionError{
					Path:    where,
					Message: "multiple non-null types are not supported",
				}
			}
		default:
			return &oaserrors.ResolutionError{
				Path:    where,
				Message: fmt.Sprintf("type must be a string or array of strings, got %T", rawType),
			}
		}
	}

	nullable, _, err := boolField(m, "nullable", where)
	if err != nil {
		return err
	}
	node.Nullable = node.Nullable || nullable

	format, _, err := stringField(m, "format", where)
	if err != nil {
		return err
	}
	node.Format = format

	if raw, ok := m["enum"]; ok {
		entries, ok := raw.([]any)
		if !ok {
			return &oaserrors.ResolutionError{
				Path:    where,
				Message: fmt.Sprintf("enum must be an array, got %T", raw),
			}
		}
		node.Enum = append([]any(nil), entries...)
	}

	// Numeric constraints.
	if node.Minimum, err = floatField(m, "minimum", where); err != nil {
		return err
	}
	if node.Maximum, err = floatField(m, "maximum", where); err != nil {
		return err
	}
	if err := fillExclusiveBound(m, "exclusiveMinimum", where, &node.Minimum, &node.ExclusiveMinimum); err != nil {
		return err
	}
	if err := fillExclusiveBound(m, "exclusiveMaximum", where, &node.Maximum, &node.ExclusiveMaximum); err != nil {
		return err
	}
	if node.MultipleOf, err = floatField(m, "multipleOf", where); err != nil {
		return err
	}
	if node.MultipleOf != nil && *node.MultipleOf <= 0 {
		return &oaserrors.ResolutionError{
			Path:    where,
			Message: "multipleOf must be greater than zero",
		}
	}

	// String constraints.
	if node.MinLength, err = intField(m, "minLength", where); err != nil {
		return err
	}
	if node.MaxLength, err = intField(m, "maxLength", where); err != nil {
		return err
	}
	if node.Pattern, _, err = stringField(m, "pattern", where); err != nil {
		return err
	}

	// Array constraints.
	if raw, ok := m["items"]; ok {
		if node.Items, err = r.compileSchemaValue(raw, where+".items", depth); err != nil {
			return err
		}
	}
	if node.MinItems, err = intField(m, "minItems", where); err != nil {
		return err
	}
	if node.MaxItems, err = intField(m, "maxItems", where); err != nil {
		return err
	}
	if node.UniqueItems, _, err = boolField(m, "uniqueItems", where); err != nil {
		return err
	}

	// Object constraints.
	if raw, ok := m["properties"]; ok {
		props, ok := raw.(map[string]any)
		if !ok {
			return &oaserrors.ResolutionError{
				Path:    where,
				Message: fmt.Sprintf("properties must be a mapping, got %T", raw),
			}
		}
		node.Properties = make(map[string]*SchemaNode, len(props))
		for _, name := range sortedKeys(props) {
			sub, err := r.compileSchemaValue(props[name], where+".properties."+name, depth)
			if err != nil {
				return err
			}
			node.Properties[name] = sub
		}
	}
	if raw, ok := m["required"]; ok {
		entries, ok := raw.([]any)
		if !ok {
			return &oaserrors.ResolutionError{
				Path:    where,
				Message: fmt.Sprintf("required must be an array, got %T", raw),
			}
		}
		node.Required = make([]string, 0, len(entries))
		for _, entry := range entries {
			name, ok := entry.(string)
			if !ok {
				return &oaserrors.ResolutionError{
					Path:    where,
					Message: "required entries must be strings",
				}
			}
			node.Required = append(node.Required, name)
		}
	}
	if node.MinProperties, err = intField(m, "minProperties", where); err != nil {
		return err
	}
	if node.MaxProperties, err = intField(m, "maxProperties", where); err != nil {
		return err
	}

	if raw, ok := m["additionalProperties"]; ok {
		switch v := raw.(type) {
		case bool:
			if v {
				node.Additional = AdditionalPolicy{Mode: AdditionalAllow}
			} else {
				node.Additional = AdditionalPolicy{Mode: AdditionalForbid}
			}
		default:
			sub, err := r.compileSchemaValue(raw, where+".additionalProperties", depth)
			if err != nil {
				return err
			}
			node.Additional = AdditionalPolicy{Mode: AdditionalSchema, Schema: sub}
		}
	} else if r.cfg.additionalDefault {
		node.Additional = AdditionalPolicy{Mode: AdditionalAllow}
	} else {
		node.Additional = AdditionalPolicy{Mode: AdditionalForbid}
	}

	// Composition.
	if node.AllOf, err = r.compileSchemaList(m, "allOf", where, depth); err != nil {
		return err
	}
	if node.AnyOf, err = r.compileSchemaList(m, "anyOf", where, depth); err != nil {
		return err
	}
	if node.OneOf, err = r.compileSchemaList(m, "oneOf", where, depth); err != nil {
		return err
	}

	switch {
	case hasType:
		node.Kind = kind
	case node.HasAlternatives():
		node.Kind = KindUnion
	default:
		node.Kind = KindAny
	}
	return nil
}

// compileSchemaList compiles an allOf/anyOf/oneOf entry.
func (r *resolver) compileSchemaList(m map[string]any, key, where string, depth int) ([]*SchemaNode, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("%s must be an array, got %T", key, raw),
		}
	}
	nodes := make([]*SchemaNode, 0, len(entries))
	for i, entry := range entries {
		sub, err := r.compileSchemaValue(entry, where+"."+key+"."+strconv.Itoa(i), depth)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, sub)
	}
	return nodes, nil
}

// fillExclusiveBound handles the two historical shapes of
// exclusiveMinimum/exclusiveMaximum: a boolean qualifying minimum/maximum,
// or a standalone number that both sets the bound and makes it exclusive.
func fillExclusiveBound(m map[string]any, key, where string, bound **float64, exclusive *bool) error {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	if b, ok := raw.(bool); ok {
		*exclusive = b
		return nil
	}
	f, ok := toFloat64(raw)
	if !ok {
		return &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("%s must be a boolean or number, got %T", key, raw),
		}
	}
	*bound = &f
	*exclusive = true
	return nil
}

// kindForType maps an OpenAPI type name to its Kind. The second return is
// true for the 3.1-style "null" type.
func kindForType(t, where string) (Kind, bool, error) {
	switch t {
	case "string":
		return KindString, false, nil
	case "number":
		return KindNumber, false, nil
	case "integer":
		return KindInteger, false, nil
	case "boolean":
		return KindBoolean, false, nil
	case "array":
		return KindArray, false, nil
	case "object":
		return KindObject, false, nil
	case "null":
		return KindAny, true, nil
	default:
		return KindAny, false, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("unsupported type %q", t),
		}
	}
}

// unescapeJSONPointer unescapes JSON Pointer tokens.
// Per RFC 6901, ~1 represents / and ~0 represents ~.
func unescapeJSONPointer(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token
}

// refDocPath renders a local ref as a document path for error reporting:
// "#/components/schemas/Pet" becomes "components.schemas.Pet".
func refDocPath(ref string) string {
	parts := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
	for i, part := range parts {
		parts[i] = unescapeJSONPointer(part)
	}
	return strings.Join(parts, ".")
}

// refOf extracts the $ref value of a mapping, when present.
func refOf(m map[string]any) (string, bool) {
	raw, ok := m["$ref"]
	if !ok {
		return "", false
	}
	ref, ok := raw.(string)
	return ref, ok
}

// stringField returns m[key] as a string. Present but mistyped fields are
// compile errors.
func stringField(m map[string]any, key, where string) (string, bool, error) {
	raw, ok := m[key]
	if !ok {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", false, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("%s must be a string, got %T", key, raw),
		}
	}
	return s, true, nil
}

// boolField returns m[key] as a bool.
func boolField(m map[string]any, key, where string) (bool, bool, error) {
	raw, ok := m[key]
	if !ok {
		return false, false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, false, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("%s must be a boolean, got %T", key, raw),
		}
	}
	return b, true, nil
}

// floatField returns m[key] as a number, nil when absent.
func floatField(m map[string]any, key, where string) (*float64, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	f, ok := toFloat64(raw)
	if !ok {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("%s must be a number, got %T", key, raw),
		}
	}
	return &f, nil
}

// intField returns m[key] as a non-negative integer, nil when absent.
func intField(m map[string]any, key, where string) (*int, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	n, ok := toInt(raw)
	if !ok || n < 0 {
		return nil, &oaserrors.ResolutionError{
			Path:    where,
			Message: fmt.Sprintf("%s must be a non-negative integer", key),
		}
	}
	return &n, nil
}

// toFloat64 converts the numeric representations produced by YAML and JSON
// decoders to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toInt converts decoder numbers to int, rejecting fractional values.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// sortedKeys returns the keys of m sorted, for deterministic iteration.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
