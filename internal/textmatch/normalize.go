package textmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// decorative lists the code point ranges treated as glyphs rather than text.
//
//nolint:gochecknoglobals // Fixed lookup table.
var decorative = []*unicode.RangeTable{
	unicode.So,
	unicode.Sk,
	unicode.Co,
	{R16: []unicode.Range16{
		{Lo: 0x200d, Hi: 0x200d, Stride: 1}, // zero width joiner
		{Lo: 0x2600, Hi: 0x26ff, Stride: 1}, // miscellaneous symbols
		{Lo: 0x2700, Hi: 0x27bf, Stride: 1}, // dingbats
		{Lo: 0xfe00, Hi: 0xfe0f, Stride: 1}, // variation selectors
	}},
}

// assigned covers every general category; anything outside it is unassigned.
//
//nolint:gochecknoglobals // Fixed lookup table.
var assigned = []*unicode.RangeTable{
	unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z,
	unicode.Cc, unicode.Cf, unicode.Co, unicode.Cs,
}

// Normalize removes decorative code points, collapses whitespace runs into a
// single space, trims and case folds the text. It never fails and
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	stripped := strings.Map(func(r rune) rune {
		if isDecorative(r) {
			return -1
		}

		return r
	}, norm.NFC.String(text))

	collapsed := strings.Join(strings.Fields(stripped), " ")

	// Caser keeps state between calls, so a fresh one is used every time.
	return norm.NFC.String(cases.Fold().String(collapsed))
}

// isDecorative reports whether r is a symbol, dingbat or private-use glyph.
func isDecorative(r rune) bool {
	if unicode.IsOneOf(decorative, r) {
		return true
	}

	return !unicode.IsOneOf(assigned, r)
}

// NormalizePhone keeps the digits of a phone number and drops the country
// prefix by keeping the last ten of them.
func NormalizePhone(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, number)

	if len(digits) > maxPhoneDigits {
		return digits[len(digits)-maxPhoneDigits:]
	}

	return digits
}
