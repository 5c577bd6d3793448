package language

import "testing"

func TestParseSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Code
	}{
		{raw: "", want: Auto},
		{raw: "  ", want: Auto},
		{raw: "AUTO", want: Auto},
		{raw: " El ", want: Greek},
		{raw: "zh-Hans", want: Chinese},
		{raw: "en_US", want: English},
		{raw: "x1", want: ""},
		{raw: "12", want: ""},
		{raw: "klingon", want: ""},
		{raw: "und", want: ""},
	}

	for _, tt := range tests {
		if got := ParseSource(tt.raw); got != tt.want {
			t.Fatalf("ParseSource(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseTarget(t *testing.T) {
	t.Parallel()

	if got := ParseTarget(" ZH "); got != Chinese {
		t.Fatalf("unexpected target: %q", got)
	}
	if got := ParseTarget(""); got != "" {
		t.Fatalf("expected empty target for blank input, got %q", got)
	}
	if got := ParseTarget("en-GB"); got != English {
		t.Fatalf("expected region subtag to be dropped, got %q", got)
	}
}
