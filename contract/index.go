package contract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/erraggy/oasguard/oaserrors"
)

// pathMatcher matches request paths against one compiled path template and
// extracts the raw values its placeholders capture.
type pathMatcher struct {
	// template is the original path template (e.g., "/pets/{petId}")
	template string

	// regex is the compiled pattern for matching
	regex *regexp.Regexp

	// paramNames are the placeholder names in order of appearance
	paramNames []string

	// specificity orders matchers (higher = more specific)
	specificity int

	// structure is the template with placeholder names erased, used to
	// reject templates that differ only in placeholder naming
	structure string

	// item is the compiled path item this template belongs to
	item *PathItem
}

// newPathMatcher compiles a path template. Placeholders capture exactly one
// path segment; everything else matches literally.
func newPathMatcher(template string, item *PathItem) (*pathMatcher, error) {
	if template == "" || template[0] != '/' {
		return nil, &oaserrors.ResolutionError{
			Path:    "paths." + template,
			Message: "path template must begin with /",
		}
	}

	var regexBuf strings.Builder
	var structureBuf strings.Builder
	regexBuf.WriteString("^")

	var paramNames []string
	specificity := 0

	i := 0
	for i < len(template) {
		if template[i] == '{' {
			end := strings.Index(template[i:], "}")
			if end == -1 {
				return nil, &oaserrors.ResolutionError{
					Path:    "paths." + template,
					Message: "unclosed path placeholder",
				}
			}

			paramName := template[i+1 : i+end]
			if paramName == "" {
				return nil, &oaserrors.ResolutionError{
					Path:    "paths." + template,
					Message: "empty path placeholder",
				}
			}

			for _, existing := range paramNames {
				if existing == paramName {
					return nil, &oaserrors.ResolutionError{
						Path:    "paths." + template,
						Message: "duplicate path placeholder " + paramName,
					}
				}
			}

			paramNames = append(paramNames, paramName)

			// One placeholder captures one path segment (RFC 3986 separates
			// segments with /).
			regexBuf.WriteString("([^/]+)")
			structureBuf.WriteString("{}")

			i += end + 1
			// Placeholders reduce specificity; literal templates win.
			specificity--
		} else {
			c := template[i]
			if strings.ContainsRune(`\.+*?()|[]{}^$`, rune(c)) {
				regexBuf.WriteByte('\\')
			}
			regexBuf.WriteByte(c)
			structureBuf.WriteByte(c)
			i++

			if c != '/' {
				specificity++
			}
		}
	}

	regexBuf.WriteString("$")

	regex, err := regexp.Compile(regexBuf.String())
	if err != nil {
		return nil, &oaserrors.ResolutionError{
			Path:    "paths." + template,
			Message: "cannot compile path template",
			Cause:   err,
		}
	}

	return &pathMatcher{
		template:    template,
		regex:       regex,
		paramNames:  paramNames,
		specificity: specificity,
		structure:   structureBuf.String(),
		item:        item,
	}, nil
}

// match reports whether path matches this template, and the raw captured
// placeholder values when it does.
func (pm *pathMatcher) match(path string) (bool, map[string]string) {
	matches := pm.regex.FindStringSubmatch(path)
	if matches == nil {
		return false, nil
	}

	params := make(map[string]string, len(pm.paramNames))
	for i, name := range pm.paramNames {
		params[name] = matches[i+1]
	}

	return true, params
}

// pathIndex is the ordered collection of compiled path matchers for a
// Document. It is built once at compile time and never mutated.
type pathIndex struct {
	matchers []*pathMatcher
}

// newPathIndex compiles and orders the given matchers. Templates that are
// structurally identical (differ only in placeholder names) make matching
// ambiguous and are rejected.
func newPathIndex(matchers []*pathMatcher) (*pathIndex, error) {
	byStructure := make(map[string]string, len(matchers))
	for _, m := range matchers {
		if prior, ok := byStructure[m.structure]; ok {
			return nil, &oaserrors.ResolutionError{
				Path:    "paths." + m.template,
				Message: "path template is structurally identical to " + prior,
			}
		}
		byStructure[m.structure] = m.template
	}

	// Sort by specificity (highest first), then by template length (longest
	// first), then lexicographically as the stable last tie-break. Literal
	// templates therefore win over placeholder templates: /users/me before
	// /users/{id}.
	sort.SliceStable(matchers, func(i, j int) bool {
		if matchers[i].specificity != matchers[j].specificity {
			return matchers[i].specificity > matchers[j].specificity
		}
		if len(matchers[i].template) != len(matchers[j].template) {
			return len(matchers[i].template) > len(matchers[j].template)
		}
		return matchers[i].template < matchers[j].template
	})

	return &pathIndex{matchers: matchers}, nil
}

// match finds the first matching template in preference order.
func (idx *pathIndex) match(path string) (*PathItem, map[string]string, bool) {
	for _, matcher := range idx.matchers {
		if ok, params := matcher.match(path); ok {
			return matcher.item, params, true
		}
	}
	return nil, nil, false
}

// templates returns every compiled template in match-preference order.
func (idx *pathIndex) templates() []string {
	templates := make([]string, len(idx.matchers))
	for i, m := range idx.matchers {
		templates[i] = m.template
	}
	return templates
}
