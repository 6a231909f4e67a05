package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LineReader shows prompt and returns the next line of input without its line
// terminator. It returns io.EOF once input is exhausted.
type LineReader func(prompt string) (string, error)

// NewLineReader reads lines from r, writing each prompt to w first.
func NewLineReader(r io.Reader, w io.Writer) LineReader {
	br := bufio.NewReader(r)
	return func(prompt string) (string, error) {
		if _, err := fmt.Fprint(w, prompt+"  "); err != nil {
			return "", err
		}
		line, err := br.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}

// maxConfigAttempts bounds every numeric configuration prompt.
const maxConfigAttempts = 3

// read returns the next line, or ok=false at end of input.
func (s *Session) read(ctx context.Context, prompt string) (line string, ok bool) {
	if ctx.Err() != nil {
		return "", false
	}
	line, err := s.in(prompt)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.log.Warn().Err(err).Msg("read input")
		}
		return "", false
	}
	return line, true
}

// askYes reports whether the answer to a (y/N) prompt was yes.
func (s *Session) askYes(ctx context.Context, prompt string) bool {
	line, _ := s.read(ctx, prompt)
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// askInt asks for an integer in [low, high]. An empty answer (or end of input)
// takes def. After maxConfigAttempts unusable answers it gives up and returns
// ok=false.
func (s *Session) askInt(ctx context.Context, prompt string, low, high, def int) (int, bool) {
	for attempt := 0; attempt < maxConfigAttempts; attempt++ {
		line, _ := s.read(ctx, prompt)
		if line == "" {
			return def, true
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			s.printf("I'm sorry but %q is not a number.\n", line)
			continue
		}
		if n < low || n > high {
			dir := "low"
			if n > high {
				dir = "high"
			}
			s.printf("I'm sorry but %d is too %s. It needs to be between %d and %d.\n", n, dir, low, high)
			continue
		}
		return n, true
	}
	s.printf("I'm sorry but you've used all %d tries and I can't ask any more.\n", maxConfigAttempts)
	return 0, false
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
