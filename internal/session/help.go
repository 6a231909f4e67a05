package session

import (
	"fmt"
	"io"
	"text/template"

	"github.com/robalobadob/mastermind/assets"
	"github.com/robalobadob/mastermind/internal/game"
)

// WriteHelp renders the player help to w.
func WriteHelp(w io.Writer) error {
	src, err := assets.HelpTemplate()
	if err != nil {
		return fmt.Errorf("load help: %w", err)
	}
	tmpl, err := template.New("help").Parse(src)
	if err != nil {
		return fmt.Errorf("parse help: %w", err)
	}
	return tmpl.Execute(w, struct {
		MaxGuesses, MinDigits, MaxDigits int
		Sample                           string
	}{
		MaxGuesses: game.MaxGuesses,
		MinDigits:  game.MinDigits,
		MaxDigits:  game.MaxDigits,
		Sample:     game.NewGuess("1324", "1254").String(),
	})
}
