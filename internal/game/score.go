package game

// Evaluate compares guess with secret and returns the exact/partial counts.
// Both must have the same length; Classify enforces that for user input.
//
// The comparison is a single left-to-right pass over one table of remaining
// digit counts, initialised from the secret:
//   - an exact match consumes one count of its digit; if none is left, an
//     earlier partial credit for that digit is retracted instead.
//   - any other guess digit with a count left earns a partial credit and
//     consumes one count.
func Evaluate(secret, guess string) Score {
	var remaining [256]int
	for i := 0; i < len(secret); i++ {
		remaining[secret[i]]++
	}

	var s Score
	for i := 0; i < len(guess); i++ {
		c := guess[i]
		switch {
		case i < len(secret) && secret[i] == c:
			s.Exact++
			if remaining[c] > 0 {
				remaining[c]--
			} else {
				s.Partial--
			}
		case remaining[c] > 0:
			s.Partial++
			remaining[c]--
		}
	}
	return s
}
