package glob

import (
	"fmt"
	"strings"
)

// Specificity is a totally ordered ranking derived from pattern
// structure. When several rules match the same asset, the most specific
// pattern wins: more literal segments first, then fewer `**` segments,
// then fewer `*`/`?` segments. Registration order breaks exact ties at
// the registry level.
type Specificity struct {
	// Literals is the number of fully literal path segments
	Literals int
	// Globstars is the number of `**` segments
	Globstars int
	// Wildcards is the number of segments containing `*` or `?`
	Wildcards int
}

// Compare returns a positive value when s is more specific than other,
// a negative value when less specific, and zero when equal
func (s Specificity) Compare(other Specificity) int {
	if s.Literals != other.Literals {
		return s.Literals - other.Literals
	}
	if s.Globstars != other.Globstars {
		return other.Globstars - s.Globstars
	}
	if s.Wildcards != other.Wildcards {
		return other.Wildcards - s.Wildcards
	}
	return 0
}

// String renders the ranking as literals/globstars/wildcards
func (s Specificity) String() string {
	return fmt.Sprintf("%d/%d/%d", s.Literals, s.Globstars, s.Wildcards)
}

// computeSpecificity classifies each path segment of the raw pattern
func computeSpecificity(pattern string) Specificity {
	var spec Specificity
	for _, segment := range strings.Split(pattern, "/") {
		if segment == "" {
			continue
		}
		switch {
		case strings.Contains(segment, "**"):
			spec.Globstars++
		case strings.ContainsAny(segment, "*?"):
			spec.Wildcards++
		default:
			spec.Literals++
		}
	}
	return spec
}
