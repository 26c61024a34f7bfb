// Package estimator provides the default value estimator: a linear model over
// state-action features fitted by stochastic gradient descent on squared
// error. Scoring is lock-free so self-play and live games can share one model
// while training updates it.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/lox/unoforbots/internal/agent"
	"github.com/lox/unoforbots/internal/features"
	"github.com/lox/unoforbots/internal/fileutil"
)

const modelFileVersion = 1

// DefaultLearningRate is the SGD step size used when none is configured.
const DefaultLearningRate = 0.001

var (
	ErrInputSize = errors.New("estimator: input has wrong width")
	ErrDiverged  = errors.New("estimator: weights diverged")
)

type weights struct {
	W       []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Updates int64     `json:"updates"`
}

type modelFile struct {
	Version      int     `json:"version"`
	LearningRate float64 `json:"learning_rate"`
	weights
}

// Linear is a linear ValueEstimator.
type Linear struct {
	rate  float64
	mu    sync.Mutex // serialises Fit and Load
	model atomic.Pointer[weights]
}

var _ agent.ValueEstimator = (*Linear)(nil)

// NewLinear returns a zero-initialised model. A non-positive rate uses
// DefaultLearningRate.
func NewLinear(rate float64) *Linear {
	if rate <= 0 {
		rate = DefaultLearningRate
	}
	l := &Linear{rate: rate}
	l.model.Store(&weights{W: make([]float64, features.InputSize)})
	return l
}

// Score returns the model output for each input.
func (l *Linear) Score(ctx context.Context, inputs []features.Vector) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := l.model.Load()
	out := make([]float64, len(inputs))
	for i, in := range inputs {
		if len(in) != len(m.W) {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrInputSize, len(in), len(m.W))
		}
		out[i] = m.predict(in)
	}
	return out, nil
}

// Fit applies one SGD pass over batch. The update is published atomically,
// so concurrent Score calls see either the old or the new weights.
func (l *Linear) Fit(ctx context.Context, batch []agent.Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.model.Load()
	next := &weights{
		W:       append([]float64(nil), cur.W...),
		Bias:    cur.Bias,
		Updates: cur.Updates,
	}
	for _, s := range batch {
		if len(s.Input) != len(next.W) {
			return fmt.Errorf("%w: got %d, want %d", ErrInputSize, len(s.Input), len(next.W))
		}
		grad := next.predict(s.Input) - s.Target
		step := l.rate * grad
		for i, x := range s.Input {
			if x != 0 {
				next.W[i] -= step * x
			}
		}
		next.Bias -= step
		next.Updates++
	}
	if math.IsNaN(next.Bias) || math.IsInf(next.Bias, 0) {
		return ErrDiverged
	}
	l.model.Store(next)
	return nil
}

// Updates returns the number of samples fitted so far.
func (l *Linear) Updates() int64 {
	return l.model.Load().Updates
}

// LearningRate returns the SGD step size.
func (l *Linear) LearningRate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rate
}

// Save writes the model as JSON.
func (l *Linear) Save(path string) error {
	l.mu.Lock()
	rate := l.rate
	l.mu.Unlock()

	m := l.model.Load()
	return fileutil.WriteJSONAtomic(path, modelFile{
		Version:      modelFileVersion,
		LearningRate: rate,
		weights:      *m,
	})
}

// Load replaces the model with the one stored at path. A positive stored
// learning rate replaces the current one.
func (l *Linear) Load(path string) error {
	var f modelFile
	if err := fileutil.ReadJSON(path, &f); err != nil {
		return fmt.Errorf("read model: %w", err)
	}
	if f.Version != modelFileVersion {
		return fmt.Errorf("read model: unsupported version %d", f.Version)
	}
	if len(f.W) != features.InputSize {
		return fmt.Errorf("read model: %w: %d weights", ErrInputSize, len(f.W))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if f.LearningRate > 0 {
		l.rate = f.LearningRate
	}
	w := f.weights
	l.model.Store(&w)
	return nil
}

func (w *weights) predict(in features.Vector) float64 {
	sum := w.Bias
	for i, x := range in {
		if x != 0 {
			sum += w.W[i] * x
		}
	}
	return sum
}
