package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasguard/oaserrors"
)

func mustMatcher(t *testing.T, template string) *pathMatcher {
	t.Helper()
	m, err := newPathMatcher(template, &PathItem{Template: template})
	require.NoError(t, err, "template should compile")
	return m
}

// =============================================================================
// Path matcher Tests
// =============================================================================

func TestNewPathMatcher(t *testing.T) {
	t.Run("literal template", func(t *testing.T) {
		m := mustMatcher(t, "/pets")
		assert.Empty(t, m.paramNames)
		assert.Equal(t, "/pets", m.structure)
		assert.Equal(t, 4, m.specificity)

		ok, params := m.match("/pets")
		assert.True(t, ok)
		assert.Empty(t, params)

		ok, _ = m.match("/pets/1")
		assert.False(t, ok, "a literal template matches nothing longer")
	})

	t.Run("placeholder captures one segment", func(t *testing.T) {
		m := mustMatcher(t, "/pets/{petId}")
		assert.Equal(t, []string{"petId"}, m.paramNames)
		assert.Equal(t, "/pets/{}", m.structure)
		assert.Equal(t, 3, m.specificity, "each placeholder costs one point")

		ok, params := m.match("/pets/42")
		assert.True(t, ok)
		assert.Equal(t, map[string]string{"petId": "42"}, params)

		ok, _ = m.match("/pets/42/toys")
		assert.False(t, ok, "a placeholder never spans a / separator")

		ok, _ = m.match("/pets/")
		assert.False(t, ok, "a placeholder requires at least one character")
	})

	t.Run("multiple placeholders", func(t *testing.T) {
		m := mustMatcher(t, "/users/{userId}/posts/{postId}")

		ok, params := m.match("/users/7/posts/19")
		assert.True(t, ok)
		assert.Equal(t, map[string]string{"userId": "7", "postId": "19"}, params)
	})

	t.Run("placeholder inside a segment", func(t *testing.T) {
		m := mustMatcher(t, "/files/{name}.json")

		ok, params := m.match("/files/report.json")
		assert.True(t, ok)
		assert.Equal(t, "report", params["name"], "the literal suffix is not part of the capture")

		ok, _ = m.match("/files/report.txt")
		assert.False(t, ok)
	})

	t.Run("literal regex metacharacters are escaped", func(t *testing.T) {
		m := mustMatcher(t, "/v1.0/pets")

		ok, _ := m.match("/v1.0/pets")
		assert.True(t, ok)

		ok, _ = m.match("/v1X0/pets")
		assert.False(t, ok, "a literal dot must not match any character")
	})
}

func TestNewPathMatcher_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantMsg  string
	}{
		{"empty template", "", "path template must begin with /"},
		{"missing leading slash", "pets", "path template must begin with /"},
		{"unclosed placeholder", "/pets/{petId", "unclosed path placeholder"},
		{"empty placeholder", "/pets/{}", "empty path placeholder"},
		{"duplicate placeholder", "/a/{x}/b/{x}", "duplicate path placeholder x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newPathMatcher(tt.template, nil)
			require.Error(t, err)

			var resErr *oaserrors.ResolutionError
			require.ErrorAs(t, err, &resErr)
			assert.Contains(t, resErr.Message, tt.wantMsg)
			assert.Equal(t, "paths."+tt.template, resErr.Path)
		})
	}
}

// =============================================================================
// Path index Tests
// =============================================================================

func TestNewPathIndex_Ordering(t *testing.T) {
	t.Run("literal templates beat placeholder templates", func(t *testing.T) {
		// Insertion order is deliberately the reverse of match preference.
		idx, err := newPathIndex([]*pathMatcher{
			mustMatcher(t, "/pets/{petId}"),
			mustMatcher(t, "/pets"),
			mustMatcher(t, "/pets/mine"),
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"/pets/mine", "/pets", "/pets/{petId}"}, idx.templates())
	})

	t.Run("longer template wins at equal specificity", func(t *testing.T) {
		idx, err := newPathIndex([]*pathMatcher{
			mustMatcher(t, "/ab"),
			mustMatcher(t, "/a/b"),
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"/a/b", "/ab"}, idx.templates())
	})

	t.Run("lexicographic last tie-break", func(t *testing.T) {
		idx, err := newPathIndex([]*pathMatcher{
			mustMatcher(t, "/ba"),
			mustMatcher(t, "/ab"),
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"/ab", "/ba"}, idx.templates())
	})
}

func TestNewPathIndex_StructuralDuplicate(t *testing.T) {
	_, err := newPathIndex([]*pathMatcher{
		mustMatcher(t, "/users/{a}"),
		mustMatcher(t, "/users/{b}"),
	})
	require.Error(t, err, "templates differing only in placeholder names are ambiguous")

	var resErr *oaserrors.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Contains(t, resErr.Message, "path template is structurally identical to /users/{a}")
	assert.Equal(t, "paths./users/{b}", resErr.Path)
}

func TestPathIndex_Match(t *testing.T) {
	literal := mustMatcher(t, "/pets/mine")
	capture := mustMatcher(t, "/pets/{petId}")
	idx, err := newPathIndex([]*pathMatcher{capture, literal})
	require.NoError(t, err)

	t.Run("first template in preference order wins", func(t *testing.T) {
		item, params, ok := idx.match("/pets/mine")
		require.True(t, ok)
		assert.Same(t, literal.item, item)
		assert.Empty(t, params)
	})

	t.Run("captures fall through to the placeholder template", func(t *testing.T) {
		item, params, ok := idx.match("/pets/42")
		require.True(t, ok)
		assert.Same(t, capture.item, item)
		assert.Equal(t, map[string]string{"petId": "42"}, params)
	})

	t.Run("no match", func(t *testing.T) {
		item, params, ok := idx.match("/orders/42")
		assert.False(t, ok)
		assert.Nil(t, item)
		assert.Nil(t, params)
	})
}
