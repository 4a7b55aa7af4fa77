package analytics

import (
	"fmt"
	"regexp"
	"strings"
)

// RouteExclusions decides whether a page path is tracked at all. Patterns use
// glob syntax ("/admin/*") and are compiled to anchored regular expressions.
type RouteExclusions struct {
	patterns []*regexp.Regexp
}

// NewRouteExclusions compiles the given glob patterns. An invalid pattern
// fails compilation rather than silently tracking an excluded route.
func NewRouteExclusions(globs []string) (*RouteExclusions, error) {
	exclusions := &RouteExclusions{}
	for _, glob := range globs {
		compiled, err := compileGlob(glob)
		if err != nil {
			return nil, fmt.Errorf("invalid route exclusion %q: %w", glob, err)
		}
		exclusions.patterns = append(exclusions.patterns, compiled)
	}
	return exclusions, nil
}

// Excluded reports whether the path matches any exclusion pattern.
func (e *RouteExclusions) Excluded(path string) bool {
	for _, pattern := range e.patterns {
		if pattern.MatchString(path) {
			return true
		}
	}
	return false
}

// compileGlob converts a glob pattern to an anchored regexp. "*" matches any
// run of characters including "/", "?" matches a single character.
func compileGlob(glob string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}
