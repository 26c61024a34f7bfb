package play

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/unoforbots/internal/uno"
)

// ErrBadInput is returned for input that is neither a draw nor a valid index.
var ErrBadInput = errors.New("enter a card number, or 0 / d to draw")

// ParseInput turns a typed choice into an action. "0", "d" and "draw" draw a
// card; n picks the nth entry of valid, counting from 1.
func ParseInput(input string, valid []uno.Card) (uno.Action, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "0", "d", "draw":
		return uno.DrawAction(), nil
	case "":
		return uno.Action{}, ErrBadInput
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return uno.Action{}, ErrBadInput
	}
	if len(valid) == 0 {
		return uno.Action{}, fmt.Errorf("%w: no playable cards", ErrBadInput)
	}
	if n < 1 || n > len(valid) {
		return uno.Action{}, fmt.Errorf("%w (1-%d)", ErrBadInput, len(valid))
	}
	return uno.PlayAction(valid[n-1]), nil
}

// NeedsColor reports whether a must be given a color before it is played.
func NeedsColor(a uno.Action) bool {
	return !a.Draw && a.Card.Colorless()
}
