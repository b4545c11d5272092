package voice

// Voice is a named, language-tagged speaker exposed by a narration engine.
type Voice struct {
	ID       string `json:"id"`
	Language string `json:"language"`
}

// String renders the voice the way the picker lists it.
func (v Voice) String() string {
	if v.Language == "" {
		return v.ID
	}
	return v.ID + " (" + v.Language + ")"
}

// Find returns the voice with the given ID.
func Find(voices []Voice, id string) (Voice, bool) {
	for _, v := range voices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}

// Dedupe drops repeated IDs, keeping the first occurrence and the original order.
func Dedupe(voices []Voice) []Voice {
	seen := make(map[string]struct{}, len(voices))
	out := make([]Voice, 0, len(voices))
	for _, v := range voices {
		if v.ID == "" {
			continue
		}
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}
	return out
}
