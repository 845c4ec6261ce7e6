// Package glob compiles asset glob patterns into anchored regular
// expressions and ranks them by structural specificity.
//
// Patterns are always absolute (leading separator) because matching is
// anchored at both ends: a pattern without a leading separator is a
// configuration error, not a relative match.
//
// Translation rules:
//
//	**  matches any sequence, including separators
//	*   matches any sequence, excluding separators
//	?   matches exactly one character, excluding separators
//
// Everything else is matched literally.
package glob

import (
	"regexp"
	"strings"

	"github.com/arthur-debert/pylon/pkg/errors"
)

// Pattern is an immutable compiled glob. Created once at rule
// registration time and read-only afterwards.
type Pattern struct {
	raw  string
	re   *regexp.Regexp
	spec Specificity
}

// Compile parses a glob string into an anchored Pattern
func Compile(pattern string) (*Pattern, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, errors.Newf(errors.ErrGlobNotAbsolute,
			"glob pattern %q must begin with a path separator", pattern)
	}

	re, err := regexp.Compile(translate(pattern))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrGlobInvalid,
			"failed to compile glob pattern %q", pattern)
	}

	return &Pattern{
		raw:  pattern,
		re:   re,
		spec: computeSpecificity(pattern),
	}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests
// and hard-coded patterns.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the raw glob string
func (p *Pattern) String() string {
	return p.raw
}

// Matches reports whether the given absolute path matches the pattern
func (p *Pattern) Matches(path string) bool {
	return p.re.MatchString(path)
}

// Specificity returns the pattern's structural specificity ranking
func (p *Pattern) Specificity() Specificity {
	return p.spec
}

// translate converts a glob string into an anchored regular expression
func translate(pattern string) string {
	var b strings.Builder
	b.WriteString("^")

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		}
	}

	b.WriteString("$")
	return b.String()
}
