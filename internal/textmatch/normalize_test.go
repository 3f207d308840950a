package textmatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNormalize checks glyph stripping, whitespace collapsing and case folding.
func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                          "",
		"   ":                       "",
		"Mom":                       "mom",
		"📞 Incoming Call":           "incoming call",
		"  Jane \t\n  Doe  ":        "jane doe",
		"❤️ Mom ❤️":                 "mom",
		"☎ Anruf ✆":                 "anruf",
		"Straße":                    "strasse",
		"ÉLODIE":                    "élodie",
		"Jane\u200d\ufe0f Doe":      "jane doe",
		"Private Glyph": "private glyph",
		"Appel vidéo":         "appel vidéo",
		"👩🏽 Maria":                  "maria",
	}
	for in, want := range cases {
		require.Equal(t, want, Normalize(in), "input %q", in)
	}
}

// TestNormalize_Idempotent asserts Normalize(Normalize(x)) == Normalize(x) on samples.
func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	samples := []string{
		"",
		"📞 Incoming Call from MOM",
		"e\ufe0f\u0301",
		"ǅungla ß ΣΊΣΥΦΟΣ",
		"İstanbul",
		"  mixed spaces here ",
		"Chamada de vídeo 👨‍👩‍👧",
	}
	for _, s := range samples {
		once := Normalize(s)
		require.Equal(t, once, Normalize(once), "input %q", s)
	}
}

// FuzzNormalize_Idempotent checks idempotence on arbitrary input.
func FuzzNormalize_Idempotent(f *testing.F) {
	f.Add("📞 Incoming Call")
	f.Add("Jane Doe")
	f.Add("e️́")

	f.Fuzz(func(t *testing.T, s string) {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}

// TestNormalizePhone strips formatting and keeps the last ten digits.
func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	require.Equal(t, "5550100123", NormalizePhone("+1 (555) 010-0123"))
	require.Equal(t, "5550100123", NormalizePhone("5550100123"))
	require.Equal(t, "0100", NormalizePhone("01-00"))
	require.Empty(t, NormalizePhone("no digits"))
}
