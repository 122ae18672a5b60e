package httpvalidator

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/erraggy/oasguard/contract"
)

// Parameter deserialization per OpenAPI serialization styles. The codec
// never reports type errors itself: values that fail to coerce stay raw
// strings and the schema walk owns the mismatch. Its errors describe
// values whose serialized shape is broken (odd pair counts, missing
// style prefixes), which callers surface as malformed-value findings.
//
// Styles and their defaults, filled in at compile time:
//
//	| Location | Styles                                  | Default        |
//	|----------|-----------------------------------------|----------------|
//	| path     | simple, label, matrix                   | simple, false  |
//	| query    | form, spaceDelimited, pipeDelimited,    | form, true     |
//	|          | deepObject                              |                |
//	| header   | simple                                  | simple, false  |
//	| cookie   | form                                    | form, true     |
//
// Cookie syntax cannot repeat a key, so exploded cookies decode the same
// as unexploded ones.

// decodePathParam deserializes one raw path segment capture.
func decodePathParam(raw string, spec *contract.ParameterSpec) (any, error) {
	switch spec.Style {
	case "label":
		return decodeLabel(raw, spec)
	case "matrix":
		return decodeMatrix(raw, spec)
	default:
		return decodeSimple(raw, spec.Schema, spec.Explode)
	}
}

// decodeQueryParam deserializes one query parameter. The second return
// reports presence; absent optional parameters decode to nothing at all.
// Keys read from the query string are recorded in consumed, which strict
// mode uses to tell undeclared keys from exploded object properties.
func decodeQueryParam(query url.Values, spec *contract.ParameterSpec, consumed map[string]bool) (any, bool, error) {
	switch spec.Style {
	case "spaceDelimited":
		values, ok := query[spec.Name]
		if !ok {
			return nil, false, nil
		}
		consumed[spec.Name] = true
		return decodeDelimited(values, " ", spec.Schema), true, nil
	case "pipeDelimited":
		values, ok := query[spec.Name]
		if !ok {
			return nil, false, nil
		}
		consumed[spec.Name] = true
		return decodeDelimited(values, "|", spec.Schema), true, nil
	case "deepObject":
		obj, ok := decodeDeepObject(query, spec, consumed)
		if !ok {
			return nil, false, nil
		}
		return obj, true, nil
	default:
		return decodeForm(query, spec, consumed)
	}
}

// decodeHeaderParam deserializes a header value. Headers always use
// simple style.
func decodeHeaderParam(raw string, spec *contract.ParameterSpec) (any, error) {
	return decodeSimple(raw, spec.Schema, spec.Explode)
}

// decodeCookieParam deserializes a cookie value. Cookies use form style;
// a single cookie carries an array as comma-joined items and an object as
// alternating key,value segments.
func decodeCookieParam(raw string, spec *contract.ParameterSpec) (any, error) {
	node := spec.Schema
	if node == nil {
		return raw, nil
	}
	switch node.Kind {
	case contract.KindArray:
		return coerceSlice(strings.Split(raw, ","), node.Items), nil
	case contract.KindObject:
		return decodeAlternating(strings.Split(raw, ","), node)
	}
	return coerceValue(raw, node), nil
}

// decodeSimple handles the "simple" style: comma-separated items, and for
// objects either k=v pairs (explode) or alternating k,v segments.
func decodeSimple(raw string, node *contract.SchemaNode, explode bool) (any, error) {
	if node == nil {
		return raw, nil
	}
	switch node.Kind {
	case contract.KindArray:
		return coerceSlice(strings.Split(raw, ","), node.Items), nil
	case contract.KindObject:
		if explode {
			return decodePairList(strings.Split(raw, ","), node)
		}
		return decodeAlternating(strings.Split(raw, ","), node)
	}
	return coerceValue(raw, node), nil
}

// decodeLabel handles the "label" style: a leading dot, then
// dot-separated (explode) or comma-separated items.
func decodeLabel(raw string, spec *contract.ParameterSpec) (any, error) {
	value, ok := strings.CutPrefix(raw, ".")
	if !ok {
		return nil, fmt.Errorf("label-style value must start with '.'")
	}
	node := spec.Schema
	if node == nil {
		return value, nil
	}
	switch node.Kind {
	case contract.KindArray:
		sep := ","
		if spec.Explode {
			sep = "."
		}
		return coerceSlice(strings.Split(value, sep), node.Items), nil
	case contract.KindObject:
		if spec.Explode {
			return decodePairList(strings.Split(value, "."), node)
		}
		return decodeAlternating(strings.Split(value, ","), node)
	}
	return coerceValue(value, node), nil
}

// decodeMatrix handles the "matrix" style: a leading semicolon, then
// name=value groups.
func decodeMatrix(raw string, spec *contract.ParameterSpec) (any, error) {
	value, ok := strings.CutPrefix(raw, ";")
	if !ok {
		return nil, fmt.Errorf("matrix-style value must start with ';'")
	}
	node := spec.Schema
	prefix := spec.Name + "="
	if node == nil {
		return strings.TrimPrefix(value, prefix), nil
	}

	switch node.Kind {
	case contract.KindArray:
		if spec.Explode {
			// ;id=3;id=4;id=5
			var items []string
			for _, part := range strings.Split(value, ";") {
				if after, found := strings.CutPrefix(part, prefix); found {
					items = append(items, after)
				}
			}
			return coerceSlice(items, node.Items), nil
		}
		// ;id=3,4,5
		after, found := strings.CutPrefix(value, prefix)
		if !found {
			return nil, fmt.Errorf("matrix-style value missing %q", prefix)
		}
		return coerceSlice(strings.Split(after, ","), node.Items), nil

	case contract.KindObject:
		if spec.Explode {
			// ;role=admin;firstName=Alex
			return decodePairList(strings.Split(value, ";"), node)
		}
		// ;id=role,admin,firstName,Alex
		after, found := strings.CutPrefix(value, prefix)
		if !found {
			return nil, fmt.Errorf("matrix-style value missing %q", prefix)
		}
		return decodeAlternating(strings.Split(after, ","), node)
	}

	// Primitive: ;name=value, tolerating a bare value.
	if after, found := strings.CutPrefix(value, prefix); found {
		return coerceValue(after, node), nil
	}
	return coerceValue(value, node), nil
}

// decodeForm handles the "form" style, the query and cookie default.
func decodeForm(query url.Values, spec *contract.ParameterSpec, consumed map[string]bool) (any, bool, error) {
	node := spec.Schema

	// An exploded form object spreads across sibling keys named after the
	// object's properties: role=admin&firstName=Alex.
	if node != nil && node.Kind == contract.KindObject && spec.Explode {
		obj := make(map[string]any)
		for _, name := range sortedPropertyNames(node) {
			values, ok := query[name]
			if !ok || len(values) == 0 {
				continue
			}
			consumed[name] = true
			obj[name] = coerceValue(values[0], node.Properties[name])
		}
		if len(obj) == 0 {
			return nil, false, nil
		}
		return obj, true, nil
	}

	values, ok := query[spec.Name]
	if !ok {
		return nil, false, nil
	}
	consumed[spec.Name] = true

	if node != nil {
		switch node.Kind {
		case contract.KindArray:
			if spec.Explode {
				// id=3&id=4&id=5
				return coerceSlice(values, node.Items), true, nil
			}
			// id=3,4,5
			parts := strings.Split(strings.Join(values, ","), ",")
			return coerceSlice(parts, node.Items), true, nil
		case contract.KindObject:
			// id=role,admin,firstName,Alex
			obj, err := decodeAlternating(strings.Split(values[0], ","), node)
			return obj, true, err
		}
	}

	if len(values) > 1 {
		// A repeated scalar key; hand the repetition to the schema walk.
		return coerceSlice(values, node), true, nil
	}
	return coerceValue(values[0], node), true, nil
}

// decodeDeepObject gathers name[prop]=value keys into an object:
// filter[status]=active&filter[type]=user.
func decodeDeepObject(query url.Values, spec *contract.ParameterSpec, consumed map[string]bool) (map[string]any, bool) {
	prefix := spec.Name + "["
	var obj map[string]any
	for key, values := range query {
		rest, found := strings.CutPrefix(key, prefix)
		if !found {
			continue
		}
		prop, found := strings.CutSuffix(rest, "]")
		if !found || prop == "" || strings.ContainsAny(prop, "[]") {
			continue
		}
		consumed[key] = true
		if obj == nil {
			obj = make(map[string]any)
		}
		if len(values) > 0 {
			obj[prop] = coerceValue(values[0], propertySchema(spec.Schema, prop))
		}
	}
	return obj, obj != nil
}

// decodeDelimited handles spaceDelimited and pipeDelimited arrays.
func decodeDelimited(values []string, sep string, node *contract.SchemaNode) any {
	parts := strings.Split(strings.Join(values, sep), sep)
	if node != nil && node.Kind == contract.KindArray {
		return coerceSlice(parts, node.Items)
	}
	if len(parts) == 1 {
		return coerceValue(parts[0], node)
	}
	return coerceSlice(parts, nil)
}

// decodePairList decodes k=v segments into an object.
func decodePairList(parts []string, node *contract.SchemaNode) (map[string]any, error) {
	obj := make(map[string]any, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		key, val, found := strings.Cut(part, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("expected key=value pair, got %q", part)
		}
		obj[key] = coerceValue(val, propertySchema(node, key))
	}
	return obj, nil
}

// decodeAlternating decodes alternating k,v,k,v segments into an object.
func decodeAlternating(parts []string, node *contract.SchemaNode) (map[string]any, error) {
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("expected alternating key,value segments, got %d", len(parts))
	}
	obj := make(map[string]any, len(parts)/2)
	for i := 0; i+1 < len(parts); i += 2 {
		obj[parts[i]] = coerceValue(parts[i+1], propertySchema(node, parts[i]))
	}
	return obj, nil
}

// coerceValue converts a serialized string toward the schema's kind.
// Union and untyped schemas keep the raw string: guessing a type there
// would trade one spurious mismatch for another.
func coerceValue(raw string, node *contract.SchemaNode) any {
	if node == nil {
		return raw
	}
	switch node.Kind {
	case contract.KindInteger:
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i
		}
	case contract.KindNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case contract.KindBoolean:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}

// coerceSlice converts serialized items into a []any for the schema walk.
func coerceSlice(raw []string, items *contract.SchemaNode) []any {
	out := make([]any, len(raw))
	for i, v := range raw {
		out[i] = coerceValue(v, items)
	}
	return out
}

func propertySchema(node *contract.SchemaNode, name string) *contract.SchemaNode {
	if node == nil {
		return nil
	}
	return node.Properties[name]
}

func sortedPropertyNames(node *contract.SchemaNode) []string {
	names := make([]string, 0, len(node.Properties))
	for name := range node.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
