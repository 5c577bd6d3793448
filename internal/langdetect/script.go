// Package langdetect guesses the language of a text from the Unicode blocks
// its characters fall in.
package langdetect

import (
	"unicode"

	"horse.fit/mtroute/internal/language"
)

// Greek and Coptic plus Greek Extended (polytonic).
var greekRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0370, Hi: 0x03FF, Stride: 1},
		{Lo: 0x1F00, Hi: 0x1FFF, Stride: 1},
	},
}

// CJK Unified Ideographs.
var cjkRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1},
	},
}

// rules are checked in order; the first rule with any matching rune wins.
var rules = []struct {
	code  language.Code
	table *unicode.RangeTable
}{
	{code: language.Greek, table: greekRanges},
	{code: language.Chinese, table: cjkRanges},
}

// Default is returned when no script rule matches.
const Default = language.English

// Detect returns the language code of text. It never fails.
func Detect(text string) language.Code {
	for _, rule := range rules {
		if containsAny(text, rule.table) {
			return rule.code
		}
	}
	return Default
}

func containsAny(text string, table *unicode.RangeTable) bool {
	for _, r := range text {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}
