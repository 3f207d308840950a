package textmatch

import (
	"strings"
)

const (
	// maxPhoneDigits is how many trailing digits identify a number.
	maxPhoneDigits = 10
	// minPhoneDigits is the shortest number that may match text.
	minPhoneDigits = 7
)

// callPhrases are the normalized phrases that mark an incoming call.
// Bare "call" and "incoming" are kept on purpose: vendors decorate the text
// in many ways and a false alert is cheaper than a missed one.
//
//nolint:gochecknoglobals // Fixed phrase table.
var callPhrases = []string{
	// English.
	"incoming call",
	"voice call",
	"video call",
	"phone call",
	"incoming",
	"call",
	"ringing",
	// German.
	"eingehender anruf",
	"videoanruf",
	"anruf",
	// French.
	"appel entrant",
	"appel vocal",
	"appel vidéo",
	// Spanish.
	"llamada entrante",
	"llamada de voz",
	"videollamada",
	// Portuguese.
	"chamada recebida",
	"chamada de voz",
	"chamada de vídeo",
}

// CallPhrases returns a copy of the phrase table.
func CallPhrases() []string {
	return append([]string(nil), callPhrases...)
}

// IndicatesIncomingCall reports whether text contains an incoming-call phrase.
// Blank text never indicates a call.
func IndicatesIncomingCall(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	normalized := Normalize(text)
	for _, phrase := range callPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}

	return false
}

// Matches reports whether the trusted name and the candidate text contain one
// another after normalization. Either side normalizing to empty never matches.
//
// Both directions are checked: the notification may show the full name while
// the trusted entry is a nickname, or it may truncate a full trusted name.
func Matches(trustedName, candidateText string) bool {
	name := Normalize(trustedName)
	candidate := Normalize(candidateText)

	if name == "" || candidate == "" {
		return false
	}

	return strings.Contains(candidate, name) || strings.Contains(name, candidate)
}

// MatchesPhone reports whether the trusted number appears in the candidate
// text. Separators are ignored on both sides and short numbers never match.
func MatchesPhone(trustedNumber, candidateText string) bool {
	number := NormalizePhone(trustedNumber)
	if len(number) < minPhoneDigits {
		return false
	}

	for _, run := range digitRuns(candidateText) {
		if strings.Contains(run, number) {
			return true
		}
	}

	return false
}

// digitRuns splits text into digit sequences, treating common phone
// separators as part of the number.
func digitRuns(text string) []string {
	var (
		runs    []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			runs = append(runs, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			current.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')' || r == '+':
			// Separator inside a number.
		default:
			flush()
		}
	}

	flush()

	return runs
}
