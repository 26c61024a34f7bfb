package agent

import (
	"context"
	"fmt"
	"math"
	rand "math/rand/v2"

	"github.com/lox/unoforbots/internal/features"
	"github.com/lox/unoforbots/internal/uno"
)

// Policy picks actions epsilon-greedily over a ValueEstimator.
type Policy struct {
	est ValueEstimator
	rng *rand.Rand
}

// NewPolicy returns a policy backed by est. rng drives exploration.
func NewPolicy(est ValueEstimator, rng *rand.Rand) *Policy {
	return &Policy{est: est, rng: rng}
}

// Estimator returns the backing estimator.
func (p *Policy) Estimator() ValueEstimator {
	return p.est
}

// Act chooses among valid for the encoded state. With probability epsilon it
// explores uniformly; otherwise every candidate is scored in one batch and
// the best wins, ties going to the earliest. No valid cards means a draw.
func (p *Policy) Act(ctx context.Context, state features.Vector, valid []uno.Card, epsilon float64) (uno.Action, error) {
	if len(valid) == 0 {
		return uno.DrawAction(), nil
	}
	if p.rng.Float64() < epsilon {
		return uno.PlayAction(valid[p.rng.IntN(len(valid))]), nil
	}

	inputs := make([]features.Vector, len(valid))
	for i, c := range valid {
		inputs[i] = features.Pair(state, uno.PlayAction(c))
	}
	scores, err := p.est.Score(ctx, inputs)
	if err != nil {
		return uno.Action{}, fmt.Errorf("score actions: %w", err)
	}
	if len(scores) != len(inputs) {
		return uno.Action{}, fmt.Errorf("score actions: got %d scores for %d inputs", len(scores), len(inputs))
	}

	best, bestScore := 0, math.Inf(-1)
	for i, s := range scores {
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	return uno.PlayAction(valid[best]), nil
}

// Schedule is the exploration rate, decayed multiplicatively towards Min.
type Schedule struct {
	Epsilon float64
	Min     float64
	Decay   float64
}

// Step decays epsilon once and returns the new value. It never increases.
func (s *Schedule) Step() float64 {
	s.Epsilon = math.Max(s.Min, s.Epsilon*s.Decay)
	return s.Epsilon
}
