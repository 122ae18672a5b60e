package httpvalidator

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/contract"
)

func intSchema() *contract.SchemaNode {
	return &contract.SchemaNode{Kind: contract.KindInteger}
}

func intArraySchema() *contract.SchemaNode {
	return &contract.SchemaNode{Kind: contract.KindArray, Items: intSchema()}
}

func userObjectSchema() *contract.SchemaNode {
	return &contract.SchemaNode{
		Kind: contract.KindObject,
		Properties: map[string]*contract.SchemaNode{
			"role":      {Kind: contract.KindString},
			"firstName": {Kind: contract.KindString},
			"level":     {Kind: contract.KindInteger},
		},
	}
}

func TestDecodeSimple(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		node     *contract.SchemaNode
		explode  bool
		expected any
	}{
		{
			name:     "nil schema keeps raw string",
			raw:      "anything,goes",
			node:     nil,
			expected: "anything,goes",
		},
		{
			name:     "integer primitive coerces",
			raw:      "42",
			node:     intSchema(),
			expected: int64(42),
		},
		{
			name:     "string primitive stays raw",
			raw:      "42",
			node:     &contract.SchemaNode{Kind: contract.KindString},
			expected: "42",
		},
		{
			name:     "array splits on commas",
			raw:      "3,4,5",
			node:     intArraySchema(),
			expected: []any{int64(3), int64(4), int64(5)},
		},
		{
			name:     "exploded array splits the same way",
			raw:      "3,4,5",
			node:     intArraySchema(),
			explode:  true,
			expected: []any{int64(3), int64(4), int64(5)},
		},
		{
			name:     "object without explode uses alternating segments",
			raw:      "role,admin,level,7",
			node:     userObjectSchema(),
			expected: map[string]any{"role": "admin", "level": int64(7)},
		},
		{
			name:     "exploded object uses key=value pairs",
			raw:      "role=admin,level=7",
			node:     userObjectSchema(),
			explode:  true,
			expected: map[string]any{"role": "admin", "level": int64(7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeSimple(tt.raw, tt.node, tt.explode)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("exploded object rejects a bare segment", func(t *testing.T) {
		_, err := decodeSimple("role=admin,oops", userObjectSchema(), true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `expected key=value pair, got "oops"`)
	})

	t.Run("alternating object rejects an odd segment count", func(t *testing.T) {
		_, err := decodeSimple("role,admin,level", userObjectSchema(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected alternating key,value segments, got 3")
	})
}

func TestDecodeLabel(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		spec     *contract.ParameterSpec
		expected any
	}{
		{
			name:     "primitive",
			raw:      ".5",
			spec:     &contract.ParameterSpec{Name: "id", Schema: intSchema()},
			expected: int64(5),
		},
		{
			name:     "nil schema keeps the value after the dot",
			raw:      ".blue",
			spec:     &contract.ParameterSpec{Name: "color"},
			expected: "blue",
		},
		{
			name:     "array without explode splits on commas",
			raw:      ".3,4,5",
			spec:     &contract.ParameterSpec{Name: "id", Schema: intArraySchema()},
			expected: []any{int64(3), int64(4), int64(5)},
		},
		{
			name:     "exploded array splits on dots",
			raw:      ".3.4.5",
			spec:     &contract.ParameterSpec{Name: "id", Schema: intArraySchema(), Explode: true},
			expected: []any{int64(3), int64(4), int64(5)},
		},
		{
			name:     "object without explode uses alternating segments",
			raw:      ".role,admin,level,7",
			spec:     &contract.ParameterSpec{Name: "user", Schema: userObjectSchema()},
			expected: map[string]any{"role": "admin", "level": int64(7)},
		},
		{
			name:     "exploded object uses dot-separated pairs",
			raw:      ".role=admin.level=7",
			spec:     &contract.ParameterSpec{Name: "user", Schema: userObjectSchema(), Explode: true},
			expected: map[string]any{"role": "admin", "level": int64(7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeLabel(tt.raw, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("missing leading dot is malformed", func(t *testing.T) {
		_, err := decodeLabel("5", &contract.ParameterSpec{Name: "id", Schema: intSchema()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "label-style value must start with '.'")
	})
}

func TestDecodeMatrix(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		spec     *contract.ParameterSpec
		expected any
	}{
		{
			name:     "primitive with name prefix",
			raw:      ";id=5",
			spec:     &contract.ParameterSpec{Name: "id", Schema: intSchema()},
			expected: int64(5),
		},
		{
			name:     "primitive tolerates a bare value",
			raw:      ";5",
			spec:     &contract.ParameterSpec{Name: "id", Schema: intSchema()},
			expected: int64(5),
		},
		{
			name:     "nil schema strips the name prefix",
			raw:      ";color=blue",
			spec:     &contract.ParameterSpec{Name: "color"},
			expected: "blue",
		},
		{
			name:     "array without explode splits after the prefix",
			raw:      ";id=3,4,5",
			spec:     &contract.ParameterSpec{Name: "id", Schema: intArraySchema()},
			expected: []any{int64(3), int64(4), int64(5)},
		},
		{
			name:     "exploded array repeats the name",
			raw:      ";id=3;id=4;id=5",
			spec:     &contract.ParameterSpec{Name: "id", Schema: intArraySchema(), Explode: true},
			expected: []any{int64(3), int64(4), int64(5)},
		},
		{
			name:     "object without explode uses alternating segments",
			raw:      ";user=role,admin,level,7",
			spec:     &contract.ParameterSpec{Name: "user", Schema: userObjectSchema()},
			expected: map[string]any{"role": "admin", "level": int64(7)},
		},
		{
			name:     "exploded object uses name=value groups",
			raw:      ";role=admin;level=7",
			spec:     &contract.ParameterSpec{Name: "user", Schema: userObjectSchema(), Explode: true},
			expected: map[string]any{"role": "admin", "level": int64(7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeMatrix(tt.raw, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("missing leading semicolon is malformed", func(t *testing.T) {
		_, err := decodeMatrix("id=5", &contract.ParameterSpec{Name: "id", Schema: intSchema()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "matrix-style value must start with ';'")
	})

	t.Run("array missing the name prefix is malformed", func(t *testing.T) {
		_, err := decodeMatrix(";3,4,5", &contract.ParameterSpec{Name: "id", Schema: intArraySchema()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `matrix-style value missing "id="`)
	})
}

func TestDecodePathParam(t *testing.T) {
	t.Run("defaults to simple", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "id", Style: "simple", Schema: intSchema()}
		got, err := decodePathParam("7", spec)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got)
	})

	t.Run("dispatches label", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "id", Style: "label", Schema: intSchema()}
		got, err := decodePathParam(".7", spec)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got)
	})

	t.Run("dispatches matrix", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "id", Style: "matrix", Schema: intSchema()}
		got, err := decodePathParam(";id=7", spec)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got)
	})
}

func TestDecodeQueryParam_Form(t *testing.T) {
	t.Run("absent parameter reports not present", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "limit", Style: "form", Schema: intSchema()}
		_, present, err := decodeQueryParam(url.Values{}, spec, map[string]bool{})
		require.NoError(t, err)
		assert.False(t, present)
	})

	t.Run("scalar coerces and marks the key consumed", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "limit", Style: "form", Schema: intSchema()}
		consumed := map[string]bool{}
		got, present, err := decodeQueryParam(url.Values{"limit": {"25"}}, spec, consumed)
		require.NoError(t, err)
		assert.True(t, present)
		assert.Equal(t, int64(25), got)
		assert.True(t, consumed["limit"])
	})

	t.Run("exploded array gathers repeated keys", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "id", Style: "form", Explode: true, Schema: intArraySchema()}
		got, present, err := decodeQueryParam(url.Values{"id": {"3", "4", "5"}}, spec, map[string]bool{})
		require.NoError(t, err)
		assert.True(t, present)
		assert.Equal(t, []any{int64(3), int64(4), int64(5)}, got)
	})

	t.Run("unexploded array splits a single key on commas", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "id", Style: "form", Schema: intArraySchema()}
		got, _, err := decodeQueryParam(url.Values{"id": {"3,4,5"}}, spec, map[string]bool{})
		require.NoError(t, err)
		assert.Equal(t, []any{int64(3), int64(4), int64(5)}, got)
	})

	t.Run("unexploded object uses alternating segments", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "user", Style: "form", Schema: userObjectSchema()}
		got, _, err := decodeQueryParam(url.Values{"user": {"role,admin,level,7"}}, spec, map[string]bool{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"role": "admin", "level": int64(7)}, got)
	})

	t.Run("exploded object gathers sibling property keys", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "user", Style: "form", Explode: true, Schema: userObjectSchema()}
		consumed := map[string]bool{}
		query := url.Values{"role": {"admin"}, "level": {"7"}, "unrelated": {"x"}}
		got, present, err := decodeQueryParam(query, spec, consumed)
		require.NoError(t, err)
		assert.True(t, present)
		assert.Equal(t, map[string]any{"role": "admin", "level": int64(7)}, got)
		assert.True(t, consumed["role"])
		assert.True(t, consumed["level"])
		assert.False(t, consumed["unrelated"])
	})

	t.Run("exploded object with no property keys is absent", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "user", Style: "form", Explode: true, Schema: userObjectSchema()}
		_, present, err := decodeQueryParam(url.Values{"other": {"x"}}, spec, map[string]bool{})
		require.NoError(t, err)
		assert.False(t, present)
	})

	t.Run("repeated scalar key decodes to a slice", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "limit", Style: "form", Schema: intSchema()}
		got, _, err := decodeQueryParam(url.Values{"limit": {"1", "2"}}, spec, map[string]bool{})
		require.NoError(t, err)
		assert.Equal(t, []any{int64(1), int64(2)}, got)
	})
}

func TestDecodeQueryParam_Delimited(t *testing.T) {
	t.Run("spaceDelimited splits on spaces", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "tags", Style: "spaceDelimited", Schema: intArraySchema()}
		got, present, err := decodeQueryParam(url.Values{"tags": {"3 4 5"}}, spec, map[string]bool{})
		require.NoError(t, err)
		assert.True(t, present)
		assert.Equal(t, []any{int64(3), int64(4), int64(5)}, got)
	})

	t.Run("pipeDelimited splits on pipes", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "tags", Style: "pipeDelimited", Schema: intArraySchema()}
		got, _, err := decodeQueryParam(url.Values{"tags": {"3|4|5"}}, spec, map[string]bool{})
		require.NoError(t, err)
		assert.Equal(t, []any{int64(3), int64(4), int64(5)}, got)
	})

	t.Run("repeated keys join before splitting", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "tags", Style: "pipeDelimited", Schema: intArraySchema()}
		got, _, err := decodeQueryParam(url.Values{"tags": {"3|4", "5"}}, spec, map[string]bool{})
		require.NoError(t, err)
		assert.Equal(t, []any{int64(3), int64(4), int64(5)}, got)
	})

	t.Run("absent parameter reports not present", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "tags", Style: "spaceDelimited", Schema: intArraySchema()}
		_, present, err := decodeQueryParam(url.Values{}, spec, map[string]bool{})
		require.NoError(t, err)
		assert.False(t, present)
	})
}

func TestDecodeQueryParam_DeepObject(t *testing.T) {
	schema := &contract.SchemaNode{
		Kind: contract.KindObject,
		Properties: map[string]*contract.SchemaNode{
			"status": {Kind: contract.KindString},
			"limit":  {Kind: contract.KindInteger},
		},
	}

	t.Run("gathers bracketed keys", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "filter", Style: "deepObject", Explode: true, Schema: schema}
		consumed := map[string]bool{}
		query := url.Values{
			"filter[status]": {"active"},
			"filter[limit]":  {"10"},
			"other":          {"x"},
		}
		got, present, err := decodeQueryParam(query, spec, consumed)
		require.NoError(t, err)
		assert.True(t, present)
		assert.Equal(t, map[string]any{"status": "active", "limit": int64(10)}, got)
		assert.True(t, consumed["filter[status]"])
		assert.True(t, consumed["filter[limit]"])
		assert.False(t, consumed["other"])
	})

	t.Run("ignores nested brackets", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "filter", Style: "deepObject", Explode: true, Schema: schema}
		query := url.Values{"filter[a][b]": {"x"}}
		_, present, err := decodeQueryParam(query, spec, map[string]bool{})
		require.NoError(t, err)
		assert.False(t, present)
	})

	t.Run("no bracketed keys reports not present", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "filter", Style: "deepObject", Explode: true, Schema: schema}
		_, present, err := decodeQueryParam(url.Values{"filter": {"x"}}, spec, map[string]bool{})
		require.NoError(t, err)
		assert.False(t, present)
	})
}

func TestDecodeHeaderParam(t *testing.T) {
	t.Run("primitive", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "X-Rate-Limit", Schema: intSchema()}
		got, err := decodeHeaderParam("100", spec)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got)
	})

	t.Run("array splits on commas", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "X-Ids", Schema: intArraySchema()}
		got, err := decodeHeaderParam("3,4,5", spec)
		require.NoError(t, err)
		assert.Equal(t, []any{int64(3), int64(4), int64(5)}, got)
	})

	t.Run("exploded object uses key=value pairs", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "X-User", Explode: true, Schema: userObjectSchema()}
		got, err := decodeHeaderParam("role=admin,level=7", spec)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"role": "admin", "level": int64(7)}, got)
	})
}

func TestDecodeCookieParam(t *testing.T) {
	t.Run("nil schema keeps raw", func(t *testing.T) {
		got, err := decodeCookieParam("abc", &contract.ParameterSpec{Name: "session"})
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})

	t.Run("primitive coerces", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "count", Schema: intSchema()}
		got, err := decodeCookieParam("3", spec)
		require.NoError(t, err)
		assert.Equal(t, int64(3), got)
	})

	t.Run("array splits on commas", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "ids", Schema: intArraySchema()}
		got, err := decodeCookieParam("3,4,5", spec)
		require.NoError(t, err)
		assert.Equal(t, []any{int64(3), int64(4), int64(5)}, got)
	})

	t.Run("object uses alternating segments", func(t *testing.T) {
		spec := &contract.ParameterSpec{Name: "user", Schema: userObjectSchema()}
		got, err := decodeCookieParam("role,admin,level,7", spec)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"role": "admin", "level": int64(7)}, got)
	})
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		node     *contract.SchemaNode
		expected any
	}{
		{"nil schema", "42", nil, "42"},
		{"integer", "42", &contract.SchemaNode{Kind: contract.KindInteger}, int64(42)},
		{"unparsable integer stays raw", "forty-two", &contract.SchemaNode{Kind: contract.KindInteger}, "forty-two"},
		{"number", "3.14", &contract.SchemaNode{Kind: contract.KindNumber}, 3.14},
		{"unparsable number stays raw", "pi", &contract.SchemaNode{Kind: contract.KindNumber}, "pi"},
		{"boolean true", "true", &contract.SchemaNode{Kind: contract.KindBoolean}, true},
		{"boolean false", "false", &contract.SchemaNode{Kind: contract.KindBoolean}, false},
		{"boolean numeric form", "1", &contract.SchemaNode{Kind: contract.KindBoolean}, true},
		{"unparsable boolean stays raw", "yes", &contract.SchemaNode{Kind: contract.KindBoolean}, "yes"},
		{"string kind stays raw", "42", &contract.SchemaNode{Kind: contract.KindString}, "42"},
		{"union kind stays raw", "42", &contract.SchemaNode{Kind: contract.KindUnion}, "42"},
		{"untyped stays raw", "42", &contract.SchemaNode{Kind: contract.KindAny}, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coerceValue(tt.raw, tt.node))
		})
	}
}

func TestDecodeDelimited(t *testing.T) {
	t.Run("single part without array schema coerces the value", func(t *testing.T) {
		got := decodeDelimited([]string{"42"}, " ", intSchema())
		assert.Equal(t, int64(42), got)
	})

	t.Run("multiple parts without array schema become a slice", func(t *testing.T) {
		got := decodeDelimited([]string{"a b", "c d"}, " ", &contract.SchemaNode{Kind: contract.KindString})
		assert.Equal(t, []any{"a", "b", "c", "d"}, got)
	})
}

func TestPropertySchema(t *testing.T) {
	assert.Nil(t, propertySchema(nil, "name"))
	assert.Nil(t, propertySchema(&contract.SchemaNode{Kind: contract.KindObject}, "name"))

	node := userObjectSchema()
	got := propertySchema(node, "level")
	require.NotNil(t, got)
	assert.Equal(t, contract.KindInteger, got.Kind)
}
