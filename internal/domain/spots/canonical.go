package spots

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/yanqian/surf-report/pkg/errors"
)

// Canonicalize trims the value, upper-cases its first letter and lower-cases the rest.
func Canonicalize(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(trimmed)
	return string(unicode.ToUpper(first)) + strings.ToLower(trimmed[size:])
}

// BuildFilter canonicalizes both preferences and rejects values outside the vocabularies.
func BuildFilter(direction, bottom string) (Filter, error) {
	f := Filter{
		Direction: Canonicalize(direction),
		Bottom:    Canonicalize(bottom),
	}
	if !contains(directions, f.Direction) {
		return Filter{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown wave direction %q", direction), nil)
	}
	if !contains(bottoms, f.Bottom) {
		return Filter{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown bottom type %q", bottom), nil)
	}
	return f, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
