package uno

import rand "math/rand/v2"

// Deck is the drawable stock. It holds card ids; the top of the deck is the
// end of the slice.
type Deck struct {
	ids []CardID
	rng *rand.Rand
}

// NewDeck returns the full 108-card set, shuffled with rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		ids: make([]CardID, DeckSize),
		rng: rng,
	}
	for i := range d.ids {
		d.ids[i] = CardID(i)
	}
	d.Shuffle()
	return d
}

// Shuffle randomizes the order of the remaining cards using Fisher-Yates.
func (d *Deck) Shuffle() {
	for i := len(d.ids) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.ids[i], d.ids[j] = d.ids[j], d.ids[i]
	}
}

// Draw removes and returns the top card. ok is false when the deck is empty.
func (d *Deck) Draw() (card Card, ok bool) {
	n := len(d.ids)
	if n == 0 {
		return Card{}, false
	}
	id := d.ids[n-1]
	d.ids = d.ids[:n-1]
	return CardByID(id), true
}

// Len returns the number of cards left in the deck.
func (d *Deck) Len() int {
	return len(d.ids)
}

// ReshuffleFromDiscard moves every discard card except the top one back into
// the deck and shuffles. Resolved wildcards return to the deck colorless.
// It returns the number of cards moved; nothing happens when the pile holds
// one card or fewer.
func (d *Deck) ReshuffleFromDiscard(p *DiscardPile) int {
	if p.Len() <= 1 {
		return 0
	}
	top := p.cards[len(p.cards)-1]
	moved := p.cards[:len(p.cards)-1]
	for _, c := range moved {
		d.ids = append(d.ids, c.ID)
	}
	p.cards = append(p.cards[:0:0], top)
	d.Shuffle()
	return len(moved)
}

// DiscardPile is the stack of played cards. Its top defines what is playable.
type DiscardPile struct {
	cards []Card
}

// Push places c on top of the pile.
func (p *DiscardPile) Push(c Card) {
	p.cards = append(p.cards, c)
}

// Top returns the top card. ok is false on an empty pile.
func (p *DiscardPile) Top() (card Card, ok bool) {
	if len(p.cards) == 0 {
		return Card{}, false
	}
	return p.cards[len(p.cards)-1], true
}

// Len returns the number of cards on the pile.
func (p *DiscardPile) Len() int {
	return len(p.cards)
}

// Cards returns a copy of the pile, bottom first.
func (p *DiscardPile) Cards() []Card {
	out := make([]Card, len(p.cards))
	copy(out, p.cards)
	return out
}
