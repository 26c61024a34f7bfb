package uno

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
)

// Outcome describes what one play or draw did to the table.
type Outcome struct {
	Player  int
	Action  Action // a play carries the resolved card
	Drawn   []Card // cards drawn by Player on a draw action
	Target  int    // player forced to draw by a penalty card, -1 if none
	Penalty int    // cards Target actually drew
	Advance int    // seats the turn moves
}

// StepResult is the outcome of Step together with the acting player's
// reward and the game status afterwards.
type StepResult struct {
	Outcome
	Reward float64
	Done   bool
	Winner int // -1 while the game is in progress
	Next   int // player to act next
}

// String summarises the turn for logs.
func (r StepResult) String() string {
	var b strings.Builder
	if r.Action.Draw {
		fmt.Fprintf(&b, "player %d draws %d", r.Player, len(r.Drawn))
	} else {
		fmt.Fprintf(&b, "player %d plays %s", r.Player, r.Action.Card)
	}
	if r.Target >= 0 {
		fmt.Fprintf(&b, ", player %d draws %d", r.Target, r.Penalty)
	}
	if r.Done {
		fmt.Fprintf(&b, ", player %d wins", r.Winner)
	}
	return b.String()
}

// RandomColorChooser picks a uniformly random color.
func RandomColorChooser(rng *rand.Rand) ColorChooser {
	return func(int, []Card) Color {
		return Colors[rng.IntN(len(Colors))]
	}
}

// MajorityColorChooser picks the color held most often in the hand, ties
// going to the earlier color in Colors. A hand without colored cards yields
// Red.
func MajorityColorChooser(_ int, hand []Card) Color {
	var counts [len(Colors)]int
	for _, c := range hand {
		if c.Color.Valid() {
			counts[c.Color]++
		}
	}
	best := Red
	for _, color := range Colors {
		if counts[color] > counts[best] {
			best = color
		}
	}
	return best
}
