package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unoforbots/internal/features"
	"github.com/lox/unoforbots/internal/randutil"
	"github.com/lox/unoforbots/internal/uno"
)

// slotEstimator scores a pair by a fixed value per action slot.
type slotEstimator struct {
	values map[int]float64
	calls  int
	err    error
}

func (e *slotEstimator) Score(_ context.Context, inputs []features.Vector) ([]float64, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([]float64, len(inputs))
	for i, in := range inputs {
		for slot := range features.ActionSize {
			if in[features.StateSize+slot] == 1 {
				out[i] = e.values[slot]
			}
		}
	}
	return out, nil
}

func (e *slotEstimator) Fit(context.Context, []Sample) error { return nil }

func (e *slotEstimator) Save(string) error { return nil }

func (e *slotEstimator) Load(string) error { return nil }

var (
	red3   = uno.Card{ID: 10, Color: uno.Red, Rank: uno.Three}
	red9   = uno.Card{ID: 20, Color: uno.Red, Rank: uno.Nine}
	blue9  = uno.Card{ID: 90, Color: uno.Blue, Rank: uno.Nine}
	wildDF = uno.CardByID(104)
)

func TestPolicyExploitsBestScore(t *testing.T) {
	est := &slotEstimator{values: map[int]float64{
		features.CardIndex(red3):  1,
		features.CardIndex(red9):  5,
		features.CardIndex(blue9): 2,
	}}
	p := NewPolicy(est, randutil.New(1))

	a, err := p.Act(context.Background(), make(features.Vector, features.StateSize), []uno.Card{red3, red9, blue9}, 0)
	require.NoError(t, err)
	assert.Equal(t, red9, a.Card)
	assert.Equal(t, 1, est.calls, "candidates are scored in one batch")
}

func TestPolicyTiesGoToFirst(t *testing.T) {
	est := &slotEstimator{values: map[int]float64{}}
	p := NewPolicy(est, randutil.New(1))

	a, err := p.Act(context.Background(), make(features.Vector, features.StateSize), []uno.Card{blue9, red3}, 0)
	require.NoError(t, err)
	assert.Equal(t, blue9, a.Card)
}

func TestPolicyDrawsWithoutValidCards(t *testing.T) {
	est := &slotEstimator{}
	p := NewPolicy(est, randutil.New(1))

	a, err := p.Act(context.Background(), nil, nil, 0)
	require.NoError(t, err)
	assert.True(t, a.Draw)
	assert.Zero(t, est.calls)
}

func TestPolicyExploresAtEpsilonOne(t *testing.T) {
	est := &slotEstimator{}
	p := NewPolicy(est, randutil.New(3))
	valid := []uno.Card{red3, red9, blue9}

	seen := map[uno.CardID]bool{}
	for range 200 {
		a, err := p.Act(context.Background(), nil, valid, 1)
		require.NoError(t, err)
		seen[a.Card.ID] = true
	}
	assert.Len(t, seen, 3)
	assert.Zero(t, est.calls, "exploration never consults the estimator")
}

func TestPolicyPropagatesEstimatorError(t *testing.T) {
	boom := errors.New("boom")
	p := NewPolicy(&slotEstimator{err: boom}, randutil.New(1))

	_, err := p.Act(context.Background(), make(features.Vector, features.StateSize), []uno.Card{red3}, 0)
	assert.ErrorIs(t, err, boom)
}

func TestScheduleIsMonotonic(t *testing.T) {
	s := Schedule{Epsilon: 1, Min: 0.01, Decay: 0.9}
	prev := s.Epsilon
	for range 200 {
		eps := s.Step()
		assert.LessOrEqual(t, eps, prev)
		assert.GreaterOrEqual(t, eps, 0.01)
		prev = eps
	}
	assert.Equal(t, 0.01, s.Epsilon)
}

func TestPolicyPlayerResolvesWild(t *testing.T) {
	est := &slotEstimator{values: map[int]float64{features.CardIndex(wildDF): 10}}
	player := NewPolicyPlayer(NewPolicy(est, randutil.New(1)), 0)

	obs := Observation{
		Hand:  []uno.Card{wildDF, blue9, {ID: 91, Color: uno.Blue, Rank: uno.Two}, red3},
		Valid: []uno.Card{red3, wildDF},
		State: make(features.Vector, features.StateSize),
	}
	a, err := player.Decide(context.Background(), obs)
	require.NoError(t, err)
	assert.Equal(t, uno.WildDrawFour, a.Card.Rank)
	assert.Equal(t, uno.Blue, a.Card.Color)
	assert.Equal(t, "policy", player.Name())
}

func TestRandomPlayerPlaysValidCards(t *testing.T) {
	player := NewRandomPlayer(randutil.New(4))
	obs := Observation{Valid: []uno.Card{red3, wildDF}}

	for range 50 {
		a, err := player.Decide(context.Background(), obs)
		require.NoError(t, err)
		require.False(t, a.Draw)
		assert.False(t, a.Card.Colorless(), "wilds come back resolved")
		assert.Contains(t, []uno.CardID{red3.ID, wildDF.ID}, a.Card.ID)
	}

	a, err := player.Decide(context.Background(), Observation{})
	require.NoError(t, err)
	assert.True(t, a.Draw)
}

func TestObserve(t *testing.T) {
	tbl, err := uno.NewTable(randutil.New(2), uno.TableConfig{Players: 2})
	require.NoError(t, err)

	obs := Observe(tbl, 1)
	assert.Equal(t, 1, obs.Seat)
	assert.Len(t, obs.Hand, 7)
	assert.Len(t, obs.State, features.StateSize)
	top, _ := tbl.Top()
	assert.Equal(t, top, obs.Top)
}
