package uno

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// Engine errors. Failed plays leave the table unchanged.
var (
	ErrInvalidPlayers = errors.New("uno: invalid number of players")
	ErrInvalidPlayer  = errors.New("uno: player index out of range")
	ErrCardNotInHand  = errors.New("uno: card not in hand")
	ErrInvalidColor   = errors.New("uno: wildcard needs a concrete color")
	ErrGameOver       = errors.New("uno: game is over")
	ErrConservation   = errors.New("uno: card conservation violated")
)

// DefaultHandSize is the number of cards dealt to each player.
const DefaultHandSize = 7

// Direction is the turn order: +1 clockwise, -1 counter-clockwise.
type Direction int

const (
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

// String returns the direction name
func (d Direction) String() string {
	if d == CounterClockwise {
		return "counter-clockwise"
	}
	return "clockwise"
}

// ColorChooser picks the color for a wildcard played by player holding hand.
type ColorChooser func(player int, hand []Card) Color

// TableConfig configures a table.
type TableConfig struct {
	Players  int
	HandSize int // 0 uses DefaultHandSize

	// ColorChooser resolves wildcards when a play does not supply its own
	// chooser. Nil picks a uniformly random color.
	ColorChooser ColorChooser
}

// Validate rejects player counts the deck cannot deal.
func (c TableConfig) Validate() error {
	handSize := c.HandSize
	if handSize == 0 {
		handSize = DefaultHandSize
	}
	if c.Players < 2 {
		return fmt.Errorf("%w: %d (need at least 2)", ErrInvalidPlayers, c.Players)
	}
	if handSize < 1 {
		return fmt.Errorf("%w: hand size %d", ErrInvalidPlayers, handSize)
	}
	if c.Players*handSize+1 > DeckSize {
		return fmt.Errorf("%w: %d players x %d cards exceeds the deck", ErrInvalidPlayers, c.Players, handSize)
	}
	return nil
}

// Table is the authoritative state of one game. It is not safe for concurrent
// use; callers serialize access per table.
type Table struct {
	handSize  int
	chooser   ColorChooser
	rng       *rand.Rand
	deck      *Deck
	hands     [][]CardID
	discard   DiscardPile
	current   int
	direction Direction
}

// NewTable validates cfg and deals a fresh game.
func NewTable(rng *rand.Rand, cfg TableConfig) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Table{
		handSize: cfg.HandSize,
		chooser:  cfg.ColorChooser,
		rng:      rng,
		hands:    make([][]CardID, cfg.Players),
	}
	if t.handSize == 0 {
		t.handSize = DefaultHandSize
	}
	if t.chooser == nil {
		t.chooser = RandomColorChooser(rng)
	}
	t.Reset()
	return t, nil
}

// Reset builds a new shuffled deck, deals round-robin, seeds the discard pile
// and gives the first turn to player 0 going clockwise. A wild seed card is
// resolved to a random color so the top is always colored.
func (t *Table) Reset() {
	t.deck = NewDeck(t.rng)
	for i := range t.hands {
		t.hands[i] = make([]CardID, 0, t.handSize)
	}
	t.discard = DiscardPile{}
	t.current = 0
	t.direction = Clockwise

	for range t.handSize {
		for p := range t.hands {
			if c, ok := t.deck.Draw(); ok {
				t.hands[p] = append(t.hands[p], c.ID)
			}
		}
	}

	if seed, ok := t.deck.Draw(); ok {
		if seed.Colorless() {
			seed = seed.Resolve(Colors[t.rng.IntN(len(Colors))])
		}
		t.discard.Push(seed)
	}
}

// Players returns the number of seats.
func (t *Table) Players() int {
	return len(t.hands)
}

// CurrentPlayer returns the seat whose turn it is.
func (t *Table) CurrentPlayer() int {
	return t.current
}

// Direction returns the current turn order.
func (t *Table) Direction() Direction {
	return t.direction
}

// Hand returns a copy of player's hand. It returns nil for an invalid seat.
func (t *Table) Hand(player int) []Card {
	if player < 0 || player >= len(t.hands) {
		return nil
	}
	out := make([]Card, len(t.hands[player]))
	for i, id := range t.hands[player] {
		out[i] = CardByID(id)
	}
	return out
}

// HandSize returns how many cards player holds.
func (t *Table) HandSize(player int) int {
	if player < 0 || player >= len(t.hands) {
		return 0
	}
	return len(t.hands[player])
}

// Top returns the discard top.
func (t *Table) Top() (Card, bool) {
	return t.discard.Top()
}

// Discard returns a copy of the discard pile, bottom first.
func (t *Table) Discard() []Card {
	return t.discard.Cards()
}

// DeckLen returns the number of cards left to draw.
func (t *Table) DeckLen() int {
	return t.deck.Len()
}

// CardCount returns deck + hands + discard. It is DeckSize for a sound table.
func (t *Table) CardCount() int {
	n := t.deck.Len() + t.discard.Len()
	for _, h := range t.hands {
		n += len(h)
	}
	return n
}

// ValidActions returns the cards in player's hand playable on the discard
// top, or the whole hand when the pile is empty.
func (t *Table) ValidActions(player int) []Card {
	hand := t.Hand(player)
	top, ok := t.discard.Top()
	if !ok {
		return hand
	}
	valid := make([]Card, 0, len(hand))
	for _, c := range hand {
		if c.PlayableOn(top) {
			valid = append(valid, c)
		}
	}
	return valid
}

// DrawCards draws up to n cards into player's hand. An empty deck triggers
// one reshuffle of the discard pile; if that yields nothing, fewer than n
// cards are returned.
func (t *Table) DrawCards(player, n int) []Card {
	if player < 0 || player >= len(t.hands) {
		return nil
	}
	drawn := make([]Card, 0, n)
	for range n {
		c, ok := t.deck.Draw()
		if !ok {
			t.deck.ReshuffleFromDiscard(&t.discard)
			if c, ok = t.deck.Draw(); !ok {
				break
			}
		}
		t.hands[player] = append(t.hands[player], c.ID)
		drawn = append(drawn, c)
	}
	return drawn
}

// PlayCard moves card id from player's hand onto the discard pile and applies
// its rank effect. Wildcards are resolved with choose, or the table's chooser
// when choose is nil, and the pile receives a resolved copy. The returned
// Outcome reports how many seats the turn should move; the turn itself only
// moves in Step.
func (t *Table) PlayCard(player int, id CardID, choose ColorChooser) (Outcome, error) {
	if player < 0 || player >= len(t.hands) {
		return Outcome{}, ErrInvalidPlayer
	}
	if !id.Known() {
		return Outcome{}, fmt.Errorf("%w: player %d, unknown card id %d", ErrCardNotInHand, player, id)
	}
	idx := indexOf(t.hands[player], id)
	if idx < 0 {
		return Outcome{}, fmt.Errorf("%w: player %d, %s", ErrCardNotInHand, player, CardByID(id))
	}

	card := CardByID(id)
	played := card
	if card.Colorless() {
		if choose == nil {
			choose = t.chooser
		}
		color := choose(player, t.Hand(player))
		if !color.Valid() {
			return Outcome{}, fmt.Errorf("%w: got %s", ErrInvalidColor, color)
		}
		played = card.Resolve(color)
	}

	hand := t.hands[player]
	t.hands[player] = append(hand[:idx], hand[idx+1:]...)
	t.discard.Push(played)

	out := Outcome{Player: player, Action: PlayAction(played), Target: -1}
	out.Advance = effectFor(card.Rank)(t, player, &out)
	return out, nil
}

// CheckWinner returns the first player whose hand is empty.
func (t *Table) CheckWinner() (int, bool) {
	for p, h := range t.hands {
		if len(h) == 0 {
			return p, true
		}
	}
	return -1, false
}

// Step applies one turn for the current player: draw one card, or play
// action.Card. A wildcard that already carries a color is played as that
// color; a colorless one goes through the table's chooser. The turn then
// moves exactly once, by the seats the action dictates. A failed play
// returns an error and leaves the table untouched.
func (t *Table) Step(action Action) (StepResult, error) {
	if _, won := t.CheckWinner(); won {
		return StepResult{}, ErrGameOver
	}

	player := t.current
	before := len(t.hands[player])

	var out Outcome
	if action.Draw {
		out = Outcome{Player: player, Action: action, Target: -1, Advance: 1}
		out.Drawn = t.DrawCards(player, 1)
	} else {
		var choose ColorChooser
		if c := action.Card; c.ID.Known() && CardByID(c.ID).Colorless() && c.Color.Valid() {
			choose = func(int, []Card) Color { return c.Color }
		}
		var err error
		if out, err = t.PlayCard(player, action.Card.ID, choose); err != nil {
			return StepResult{}, err
		}
	}

	after := len(t.hands[player])
	t.current = t.seat(player, out.Advance)

	res := StepResult{
		Outcome: out,
		Reward:  Reward(out.Action, before, after),
		Winner:  -1,
		Next:    t.current,
	}
	res.Winner, res.Done = t.CheckWinner()

	if n := t.CardCount(); n != DeckSize {
		return res, fmt.Errorf("%w: %d cards on table", ErrConservation, n)
	}
	return res, nil
}

// seat returns the player steps seats away from from in the current direction.
func (t *Table) seat(from, steps int) int {
	n := len(t.hands)
	return ((from+steps*int(t.direction))%n + n) % n
}

func indexOf(ids []CardID, id CardID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
