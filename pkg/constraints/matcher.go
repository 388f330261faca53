package constraints

import "strings"

// payload strips at most one trailing line terminator ("\n" or "\r\n") and
// reports whether what remains is exactly the configured word length.
func (cs *ConstraintSet) payload(word string) (string, bool) {
	if w, ok := strings.CutSuffix(word, "\n"); ok {
		word = strings.TrimSuffix(w, "\r")
	}
	return word, len(word) == cs.wordLength
}

// Matches reports whether word satisfies every active constraint.
//
// Positions pinned by a pattern literal must equal that literal and are not
// considered for the excluded or required checks. Every other position must
// not hold an excluded character, and each required character must turn up
// in at least one of them.
func (cs *ConstraintSet) Matches(word string) bool {
	payload, ok := cs.payload(word)
	if !ok {
		return false
	}

	// Scratch copy; one per call so evaluations never share state.
	stillRequired := cs.Required()

	for i := range len(payload) {
		c := payload[i]
		if literal, pinned := cs.pattern.LiteralAt(i); pinned {
			if c != literal {
				return false
			}
			continue
		}
		if cs.excluded != nil && cs.excluded.Contains(c) {
			return false
		}
		if stillRequired != nil {
			stillRequired.Remove(c)
		}
	}

	return stillRequired == nil || stillRequired.IsEmpty()
}
