// Package agent holds the decision side of self-play: the value estimator
// contract, the epsilon-greedy policy over it, the exploration schedule and
// the players that sit at a table.
package agent

import (
	"context"

	"github.com/lox/unoforbots/internal/features"
)

// Sample is one supervised example for a value estimator: a state-action
// pair and the return it should predict.
type Sample struct {
	Input  features.Vector
	Target float64
}

// ValueEstimator scores state-action pairs; higher means a more favorable
// action. Implementations must accept features.InputSize-wide inputs.
type ValueEstimator interface {
	// Score returns one score per input, in order.
	Score(ctx context.Context, inputs []features.Vector) ([]float64, error)
	// Fit moves the estimator towards the batch targets.
	Fit(ctx context.Context, batch []Sample) error
	Save(path string) error
	Load(path string) error
}
