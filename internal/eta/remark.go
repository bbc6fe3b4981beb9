package eta

import (
	"strings"

	"etaboard/internal/domain"
	"etaboard/internal/i18n"
)

// platformPattern describes how a language writes "platform <n>": a run of
// ASCII digits with a fixed text before and/or after it.
type platformPattern struct {
	prefix string
	suffix string
}

// platformPatterns is indexed by language. Supporting another language means
// adding an entry here.
var platformPatterns = map[domain.Language]platformPattern{
	domain.LangZH: {suffix: "號月台"},
	domain.LangEN: {prefix: "Platform "},
}

// find returns the digit runs of s that appear inside the pattern.
func (p platformPattern) find(s string) []string {
	var found []string
	for i := 0; i < len(s); {
		if !isDigit(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if strings.HasSuffix(s[:i], p.prefix) && strings.HasPrefix(s[j:], p.suffix) {
			found = append(found, s[i:j])
		}
		i = j
	}
	return found
}

func (p platformPattern) text(digit string) string {
	return p.prefix + digit + p.suffix
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// PlatformNumber extracts the platform from remark. It only succeeds when the
// remark mentions exactly one platform and its number is a single digit.
func PlatformNumber(remark string, lang domain.Language) (string, bool) {
	p, ok := platformPatterns[lang]
	if !ok {
		return "", false
	}
	found := p.find(remark)
	if len(found) != 1 || len(found[0]) != 1 {
		return "", false
	}
	return found[0], true
}

// PlatformSymbol renders a single platform digit in the requested mode.
func PlatformSymbol(digit string, lang domain.Language, mode domain.PlatformMode) string {
	if mode == domain.PlatformSymbol && len(digit) == 1 && isDigit(digit[0]) {
		if digit == "0" {
			return "⓪"
		}
		return string(rune('①' + rune(digit[0]-'1')))
	}
	return platformPatterns[lang].text(digit)
}

// deckMarkers must be applied in order: the two-character marker first so that
// it is never consumed as two single markers.
var deckMarkers = []struct {
	token string
	word  func(i18n.Phrases) string
}{
	{token: "▭▭", word: func(p i18n.Phrases) string { return p.DualDeck }},
	{token: "▭", word: func(p i18n.Phrases) string { return p.SingleDeck }},
}

// NormalizeRemark rewrites an operator remark for display. A nil remark is empty.
// A lone single-digit platform reference replaces the whole remark; deck markers
// are then replaced by localized words.
func NormalizeRemark(remark *string, lang domain.Language, mode domain.PlatformMode, p i18n.Phrases) string {
	if remark == nil {
		return ""
	}

	out := *remark
	if digit, ok := PlatformNumber(out, lang); ok {
		out = PlatformSymbol(digit, lang, mode)
	}

	for _, m := range deckMarkers {
		out = strings.ReplaceAll(out, m.token, m.word(p))
	}
	return out
}
