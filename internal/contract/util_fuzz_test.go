package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText fuzzes TruncateText with random text and widths.
func FuzzTruncateText(f *testing.F) {
	seeds := []struct {
		text  string
		width int
	}{
		{"Groceries at the corner store", 10},
		{"short", 20},
		{"", 5},
		{"日本語のテキスト", 4},
		{"abc", 3},
	}
	for _, seed := range seeds {
		f.Add(seed.text, seed.width)
	}

	f.Fuzz(func(t *testing.T, text string, width int) {
		if !utf8.ValidString(text) {
			t.Skip()
		}
		got := TruncateText(text, width)
		if width > 3 && utf8.RuneCountInString(got) > width {
			t.Errorf("TruncateText(%q, %d) = %q exceeds width", text, width, got)
		}
	})
}

// FuzzParseBoolString fuzzes ParseBoolString with random inputs.
func FuzzParseBoolString(f *testing.F) {
	for _, seed := range []string{"yes", "NO", "true", "0", "", "maybe"} {
		f.Add(seed)
	}

	f.Fuzz(func(_ *testing.T, input string) {
		_, _ = ParseBoolString(input)
	})
}
