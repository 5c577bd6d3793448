package language

import "strings"

// Code is a bare ISO 639-1 language code such as "el", "en" or "zh".
type Code string

const (
	// Auto asks the orchestrator to detect the source language from the text.
	Auto Code = "auto"

	Greek   Code = "el"
	English Code = "en"
	Chinese Code = "zh"

	// Hub is the single pivot language used to chain two backends.
	Hub = English
)

func (c Code) String() string {
	return string(c)
}

// ParseSource normalizes a declared source language. Only blank input and
// "auto" resolve to Auto; anything else that is not a language code yields "".
func ParseSource(raw string) Code {
	tag := NormalizeTag(raw)
	if strings.TrimSpace(raw) == "" || tag == string(Auto) {
		return Auto
	}
	return Code(NormalizeCode(raw))
}

// ParseTarget normalizes a target language. It returns "" when the value is
// blank or not a language code.
func ParseTarget(raw string) Code {
	return Code(NormalizeCode(raw))
}
