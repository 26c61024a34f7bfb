package uno

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unoforbots/internal/randutil"
)

func TestNewDeckHoldsEveryCardOnce(t *testing.T) {
	d := NewDeck(randutil.New(1))
	require.Equal(t, DeckSize, d.Len())

	seen := map[CardID]bool{}
	for {
		c, ok := d.Draw()
		if !ok {
			break
		}
		assert.False(t, seen[c.ID], "duplicate id %d", c.ID)
		seen[c.ID] = true
	}
	assert.Len(t, seen, DeckSize)
}

func TestDeckShuffleIsDeterministic(t *testing.T) {
	a := NewDeck(randutil.New(7))
	b := NewDeck(randutil.New(7))
	assert.Equal(t, a.ids, b.ids)

	c := NewDeck(randutil.New(8))
	assert.NotEqual(t, a.ids, c.ids)
}

func TestDrawFromEmptyDeck(t *testing.T) {
	d := &Deck{rng: randutil.New(1)}
	_, ok := d.Draw()
	assert.False(t, ok)
}

func TestReshuffleKeepsTop(t *testing.T) {
	d := &Deck{rng: randutil.New(3)}
	var pile DiscardPile
	pile.Push(CardByID(10))
	pile.Push(CardByID(100).Resolve(Green))
	pile.Push(CardByID(20))

	moved := d.ReshuffleFromDiscard(&pile)
	assert.Equal(t, 2, moved)
	assert.Equal(t, 2, d.Len())
	require.Equal(t, 1, pile.Len())

	top, ok := pile.Top()
	require.True(t, ok)
	assert.Equal(t, CardID(20), top.ID)

	// The resolved wild comes back colorless.
	for d.Len() > 0 {
		c, _ := d.Draw()
		if c.ID == 100 {
			assert.True(t, c.Colorless())
		}
	}
}

func TestReshuffleNeedsMoreThanTop(t *testing.T) {
	d := &Deck{rng: randutil.New(3)}
	var pile DiscardPile
	assert.Equal(t, 0, d.ReshuffleFromDiscard(&pile))

	pile.Push(CardByID(5))
	assert.Equal(t, 0, d.ReshuffleFromDiscard(&pile))
	assert.Equal(t, 1, pile.Len())
	assert.Equal(t, 0, d.Len())
}

func TestDiscardCardsIsCopy(t *testing.T) {
	var pile DiscardPile
	pile.Push(CardByID(1))
	cards := pile.Cards()
	cards[0] = CardByID(2)

	top, _ := pile.Top()
	assert.Equal(t, CardID(1), top.ID)
}
