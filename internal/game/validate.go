package game

import "strings"

// Kind classifies one line of player input.
type Kind int

const (
	KindQuit Kind = iota
	KindShowHistory
	KindMalformed
	KindCandidate
)

func (k Kind) String() string {
	switch k {
	case KindQuit:
		return "quit"
	case KindShowHistory:
		return "history"
	case KindMalformed:
		return "malformed"
	case KindCandidate:
		return "candidate"
	default:
		return "unknown"
	}
}

// Problem says why a line was Malformed.
type Problem int

const (
	ProblemNone Problem = iota
	ProblemWrongLength
	ProblemNotNumeric
)

func (p Problem) String() string {
	switch p {
	case ProblemWrongLength:
		return "wrong_length"
	case ProblemNotNumeric:
		return "not_numeric"
	default:
		return "none"
	}
}

// Classification is the result of Classify.
type Classification struct {
	Kind     Kind
	Problem  Problem // set when Kind is KindMalformed
	Observed int     // trimmed length, set for ProblemWrongLength
	Input    string  // trimmed input
	Digits   string  // set when Kind is KindCandidate
}

// Classify sorts raw input for a code of the given length.
//
// Digits outside the alphabet in play are accepted; they simply never score.
func Classify(raw string, length int) Classification {
	if raw == "" {
		return Classification{Kind: KindQuit}
	}
	if strings.EqualFold(raw, "h") {
		return Classification{Kind: KindShowHistory, Input: raw}
	}
	in := strings.TrimSpace(raw)
	if len(in) != length {
		return Classification{Kind: KindMalformed, Problem: ProblemWrongLength, Observed: len(in), Input: in}
	}
	if !isDigits(in) {
		return Classification{Kind: KindMalformed, Problem: ProblemNotNumeric, Input: in}
	}
	return Classification{Kind: KindCandidate, Input: in, Digits: in}
}

// isDigits reports whether s consists only of ASCII 0-9.
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
