// Package features turns table state and actions into the fixed-width vectors
// scored by a value estimator.
//
// A state vector has three 52-slot blocks: hand counts for the viewpoint
// player, a one-hot discard top, and counts over the whole discard pile. An
// action vector is a single 52-slot one-hot block, all zero for a draw.
package features

import "github.com/lox/unoforbots/internal/uno"

const (
	// CardSlots is the width of one card block.
	CardSlots = 52
	// StateSize is the length of an encoded state.
	StateSize = 3 * CardSlots
	// ActionSize is the length of an encoded action.
	ActionSize = CardSlots
	// InputSize is the length of a state-action pair.
	InputSize = StateSize + ActionSize

	handOffset    = 0
	topOffset     = CardSlots
	discardOffset = 2 * CardSlots

	wildSlot     = 48
	wildDrawSlot = 49
	ranksPerSlot = 12
)

// Vector is a dense feature vector.
type Vector []float64

// View is the table state an encoder reads. *uno.Table satisfies it.
type View interface {
	Hand(player int) []uno.Card
	Discard() []uno.Card
}

// CardIndex maps a card to its slot in a 52-slot block. Colored ranks occupy
// color*12 + rank; Wild and WildDrawFour take slots 48 and 49 whatever color
// they were resolved to. DrawTwo shares the slot of the next color's zero.
func CardIndex(c uno.Card) int {
	switch c.Rank {
	case uno.Wild:
		return wildSlot
	case uno.WildDrawFour:
		return wildDrawSlot
	}
	return int(c.Color)*ranksPerSlot + int(c.Rank)
}

// EncodeState encodes view from viewpoint's perspective.
func EncodeState(view View, viewpoint int) Vector {
	v := make(Vector, StateSize)
	for _, c := range view.Hand(viewpoint) {
		v[handOffset+CardIndex(c)]++
	}
	discard := view.Discard()
	if n := len(discard); n > 0 {
		v[topOffset+CardIndex(discard[n-1])] = 1
	}
	for _, c := range discard {
		v[discardOffset+CardIndex(c)]++
	}
	return v
}

// EncodeAction one-hot encodes a play. Draw actions encode as all zeros.
func EncodeAction(a uno.Action) Vector {
	v := make(Vector, ActionSize)
	if !a.Draw {
		v[CardIndex(a.Card)] = 1
	}
	return v
}

// Pair concatenates a state and an action encoding into one estimator input.
func Pair(state Vector, action uno.Action) Vector {
	v := make(Vector, 0, InputSize)
	v = append(v, state...)
	return append(v, EncodeAction(action)...)
}

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}
