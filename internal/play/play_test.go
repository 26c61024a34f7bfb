package play

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unoforbots/internal/agent"
	"github.com/lox/unoforbots/internal/randutil"
	"github.com/lox/unoforbots/internal/session"
	"github.com/lox/unoforbots/internal/uno"
)

func randomSeat(name string, seed int64) Seat {
	return Seat{Name: name, Player: agent.NewRandomPlayer(randutil.New(seed))}
}

func TestParseInput(t *testing.T) {
	valid := []uno.Card{uno.CardByID(4), uno.CardByID(100)}

	for _, in := range []string{"0", "d", "D", " draw "} {
		a, err := ParseInput(in, valid)
		require.NoError(t, err, in)
		assert.True(t, a.Draw, in)
	}

	a, err := ParseInput("2", valid)
	require.NoError(t, err)
	assert.Equal(t, uno.CardID(100), a.Card.ID)
	assert.True(t, NeedsColor(a))

	a, err = ParseInput("1", valid)
	require.NoError(t, err)
	assert.False(t, NeedsColor(a))

	for _, in := range []string{"", "3", "-1", "red"} {
		_, err := ParseInput(in, valid)
		assert.ErrorIs(t, err, ErrBadInput, in)
	}

	_, err = ParseInput("1", nil)
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestAllAIMatchRunsToCompletion(t *testing.T) {
	g, err := session.NewGame(3, 11)
	require.NoError(t, err)
	m, err := NewMatch(g, []Seat{randomSeat("a", 1), randomSeat("b", 2), randomSeat("c", 3)}, WithMaxTurns(5000))
	require.NoError(t, err)
	assert.Equal(t, -1, m.Human())

	events, err := m.AdvanceAI(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, events)

	winner, done := m.Done()
	require.True(t, done)
	last := events[len(events)-1]
	assert.True(t, last.Result.Done)
	assert.Equal(t, winner, last.Seat)
}

func TestAdvanceStopsForHuman(t *testing.T) {
	g, err := session.NewGame(2, 4)
	require.NoError(t, err)
	m, err := NewMatch(g, []Seat{{Name: "you"}, randomSeat("bot", 1)})
	require.NoError(t, err)
	require.Equal(t, 0, m.Human())
	require.True(t, m.HumanToAct())

	events, err := m.AdvanceAI(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events, "human seat 0 acts first")

	ev, err := m.PlayHuman(uno.DrawAction())
	require.NoError(t, err)
	assert.Equal(t, "you", ev.Name)
	assert.Contains(t, ev.String(), "you: player 0 draws")

	events, err = m.AdvanceAI(context.Background())
	require.NoError(t, err)
	if _, done := m.Done(); !done {
		assert.True(t, m.HumanToAct())
		for _, e := range events {
			assert.Equal(t, 1, e.Seat)
		}
	}
}

func TestPlayHumanRejectsUnresolvedWild(t *testing.T) {
	g, err := session.NewGame(2, 4)
	require.NoError(t, err)
	m, err := NewMatch(g, []Seat{{Name: "you"}, randomSeat("bot", 1)})
	require.NoError(t, err)

	_, err = m.PlayHuman(uno.PlayAction(uno.CardByID(100)))
	assert.ErrorIs(t, err, uno.ErrInvalidColor)
}

func TestTurnLimit(t *testing.T) {
	g, err := session.NewGame(2, 4)
	require.NoError(t, err)
	m, err := NewMatch(g, []Seat{randomSeat("a", 1), randomSeat("b", 2)}, WithMaxTurns(3))
	require.NoError(t, err)

	events, err := m.AdvanceAI(context.Background())
	assert.ErrorIs(t, err, ErrTurnLimit)
	assert.Len(t, events, 3)
}

func TestNewMatchValidatesSeats(t *testing.T) {
	g, err := session.NewGame(2, 4)
	require.NoError(t, err)

	_, err = NewMatch(g, []Seat{{Name: "solo"}})
	assert.Error(t, err)

	_, err = NewMatch(g, []Seat{{Name: "a"}, {Name: "b"}})
	assert.Error(t, err, "two humans")

	m, err := NewMatch(g, []Seat{randomSeat("a", 1), randomSeat("b", 2)})
	require.NoError(t, err)
	_, err = m.PlayHuman(uno.DrawAction())
	assert.ErrorIs(t, err, ErrNoHuman)
}
