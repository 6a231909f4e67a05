package game

// History is an append-only, chronologically ordered log of scored guesses.
type History struct {
	entries []Guess
}

// Append adds g as the newest entry.
func (h *History) Append(g Guess) { h.entries = append(h.entries, g) }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of the log, oldest first.
func (h *History) Entries() []Guess {
	out := make([]Guess, len(h.entries))
	copy(out, h.entries)
	return out
}

// Last returns the newest entry, if any.
func (h *History) Last() (Guess, bool) {
	if len(h.entries) == 0 {
		return Guess{}, false
	}
	return h.entries[len(h.entries)-1], true
}
