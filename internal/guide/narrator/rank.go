package narrator

import (
	"strings"

	"mlstudio/internal/domain/voice"

	"golang.org/x/text/language"
)

// Ranker scores a voice for automatic selection; higher is better.
type Ranker func(v voice.Voice) int

// DefaultQualityHints are name fragments of engines known to sound natural.
var DefaultQualityHints = []string{"google", "neural", "wave", "microsoft"}

// LocaleRanker prefers voices speaking locale whose name contains one of the
// quality hints, then any voice speaking locale, then everything else.
func LocaleRanker(locale string, hints []string) Ranker {
	matches := localeMatcher(locale)
	lowered := make([]string, 0, len(hints))
	for _, h := range hints {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			lowered = append(lowered, h)
		}
	}

	return func(v voice.Voice) int {
		if !matches(v.Language) {
			return 0
		}
		name := strings.ToLower(v.ID)
		for _, h := range lowered {
			if strings.Contains(name, h) {
				return 2
			}
		}
		return 1
	}
}

// localeMatcher compares base languages, so "es" matches "es-ES", "es_MX"
// and "es-419". Tags the language package cannot parse fall back to a prefix test.
func localeMatcher(locale string) func(tag string) bool {
	want, err := parseBase(locale)
	prefix := strings.ToLower(strings.TrimSpace(locale))
	if err != nil {
		return func(tag string) bool {
			return prefix != "" && strings.HasPrefix(strings.ToLower(tag), prefix)
		}
	}

	return func(tag string) bool {
		got, err := parseBase(tag)
		if err != nil {
			return strings.HasPrefix(strings.ToLower(tag), prefix)
		}
		return got == want
	}
}

func parseBase(tag string) (language.Base, error) {
	t, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if err != nil {
		return language.Base{}, err
	}
	base, _ := t.Base()
	return base, nil
}

// pick returns the best ranked voice, the earliest one on ties.
func pick(voices []voice.Voice, rank Ranker) (voice.Voice, bool) {
	if len(voices) == 0 {
		return voice.Voice{}, false
	}
	best, bestScore := voices[0], rank(voices[0])
	for _, v := range voices[1:] {
		if score := rank(v); score > bestScore {
			best, bestScore = v, score
		}
	}
	return best, true
}
