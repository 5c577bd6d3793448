package translation

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type LanguageOption struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Native string `json:"native,omitempty"`
}

// LanguageOptions lists the known language set of registry with display labels.
// Codes x/text has no name for fall back to their upper-cased form.
func LanguageOptions(registry *Registry) []LanguageOption {
	codes := registry.Languages()
	english := display.English.Languages()
	options := make([]LanguageOption, 0, len(codes))
	for _, code := range codes {
		option := LanguageOption{
			Code:  code.String(),
			Label: strings.ToUpper(code.String()),
		}
		tag, err := xlanguage.Parse(code.String())
		if err == nil {
			if label := english.Name(tag); label != "" {
				option.Label = label
			}
			option.Native = display.Self.Name(tag)
		}
		options = append(options, option)
	}
	return options
}
