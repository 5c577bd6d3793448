package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
)

// NormalizeTag lowercases a BCP 47 tag and joins its subtags with "-".
// It returns "" for blank input or subtags that are not purely alphabetic.
func NormalizeTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	fields := strings.FieldsFunc(trimmed, func(r rune) bool { return r == '-' || r == '_' })
	for _, field := range fields {
		if !isAlphaLower(field) {
			return ""
		}
	}
	return strings.Join(fields, "-")
}

// NormalizeCode reduces a tag to its canonical primary language, so "EN-us"
// becomes "en" and the deprecated "iw" becomes "he". Unknown or malformed
// tags yield "".
func NormalizeCode(raw string) string {
	tag := NormalizeTag(raw)
	if tag == "" {
		return ""
	}

	parsed, err := xlanguage.Parse(tag)
	if err != nil {
		return ""
	}
	// Anything weaker than Exact is inferred from a script or region.
	base, confidence := parsed.Base()
	if confidence != xlanguage.Exact {
		return ""
	}
	return base.String()
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
