// Package trainer runs epsilon-greedy self-play against a shared value
// estimator, learning from replayed transitions with discounted targets.
package trainer

import (
	"context"
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/unoforbots/internal/agent"
	"github.com/lox/unoforbots/internal/features"
	"github.com/lox/unoforbots/internal/randutil"
	"github.com/lox/unoforbots/internal/replay"
	"github.com/lox/unoforbots/internal/uno"
)

// Progress is emitted after every finished episode.
type Progress struct {
	Episode   int
	Steps     int64
	Turns     int
	Reward    float64 // summed over every seat's turns
	Winner    int     // -1 when truncated
	Truncated bool
	Epsilon   float64
	Memory    int
	Elapsed   time.Duration
}

// Trainer orchestrates self-play episodes and replay updates.
type Trainer struct {
	cfg      Config
	est      agent.ValueEstimator
	policy   *agent.Policy
	memory   *replay.Memory
	schedule agent.Schedule
	seed     int64
	rng      *rand.Rand
	clock    quartz.Clock
	logger   *log.Logger

	episode        int
	steps          int64
	lastCheckpoint time.Time
}

// Option customises a Trainer.
type Option func(*Trainer)

// WithClock replaces the wall clock used for checkpoint intervals and timing.
func WithClock(c quartz.Clock) Option {
	return func(t *Trainer) { t.clock = c }
}

// WithLogger sets the logger; the trainer logs under the "trainer" prefix.
func WithLogger(l *log.Logger) Option {
	return func(t *Trainer) { t.logger = l }
}

// WithMemory supplies an existing replay memory, e.g. one loaded from disk.
func WithMemory(m *replay.Memory) Option {
	return func(t *Trainer) { t.memory = m }
}

// New validates cfg and builds a trainer around est.
func New(cfg Config, est agent.ValueEstimator, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if est == nil {
		return nil, fmt.Errorf("value estimator is required")
	}

	seed := randutil.Resolve(cfg.Seed)
	rng := randutil.New(seed)
	t := &Trainer{
		cfg:    cfg,
		est:    est,
		policy: agent.NewPolicy(est, rng),
		schedule: agent.Schedule{
			Epsilon: cfg.Epsilon,
			Min:     cfg.EpsilonMin,
			Decay:   cfg.EpsilonDecay,
		},
		seed: seed,
		rng:  rng,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		t.clock = quartz.NewReal()
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard)
	}
	t.logger = t.logger.WithPrefix("trainer")
	if t.memory == nil {
		t.memory = replay.NewMemory(cfg.MemoryCapacity, randutil.New(randutil.Derive(seed, 0)))
	}
	return t, nil
}

// Resume continues from a saved progress record.
func (t *Trainer) Resume(r Record) {
	t.episode = r.Episode
	t.steps = r.Steps
	t.schedule.Epsilon = max(t.cfg.EpsilonMin, r.Epsilon)
	t.logger.Info("resuming", "episode", r.Episode, "steps", r.Steps, "epsilon", t.schedule.Epsilon)
}

// Episode returns the number of finished episodes.
func (t *Trainer) Episode() int { return t.episode }

// Steps returns the number of environment steps taken.
func (t *Trainer) Steps() int64 { return t.steps }

// Epsilon returns the current exploration rate.
func (t *Trainer) Epsilon() float64 { return t.schedule.Epsilon }

// Memory returns the replay memory.
func (t *Trainer) Memory() *replay.Memory { return t.memory }

// Run plays episodes until cfg.Episodes have finished or ctx is cancelled.
// Cancellation is honoured between steps. An estimator failure aborts the
// run with the failing episode in the error. A final checkpoint is written
// whenever any artefact path is configured.
func (t *Trainer) Run(ctx context.Context, progress func(Progress)) error {
	t.lastCheckpoint = t.clock.Now()

	for t.episode < t.cfg.Episodes {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := t.clock.Now()
		p, err := t.playEpisode(ctx)
		if err != nil {
			return fmt.Errorf("episode %d: %w", t.episode+1, err)
		}
		t.episode++

		p.Episode = t.episode
		p.Steps = t.steps
		p.Epsilon = t.schedule.Epsilon
		p.Memory = t.memory.Len()
		p.Elapsed = t.clock.Since(start)

		t.logger.Debug("episode complete",
			"episode", p.Episode, "turns", p.Turns, "winner", p.Winner,
			"reward", p.Reward, "epsilon", p.Epsilon, "truncated", p.Truncated)
		if progress != nil {
			progress(p)
		}
	}

	if t.checkpointing() {
		return t.Checkpoint()
	}
	return nil
}

func (t *Trainer) playEpisode(ctx context.Context) (Progress, error) {
	p := Progress{Winner: -1}
	table, err := uno.NewTable(
		randutil.New(randutil.Derive(t.seed, uint64(t.episode)+1)),
		uno.TableConfig{Players: t.cfg.Players},
	)
	if err != nil {
		return p, err
	}

	for p.Turns < t.cfg.MaxStepsPerEpisode {
		if err := ctx.Err(); err != nil {
			return p, err
		}

		player := table.CurrentPlayer()
		state := features.EncodeState(table, player)
		action, err := t.policy.Act(ctx, state, table.ValidActions(player), t.schedule.Epsilon)
		if err != nil {
			return p, err
		}
		action = agent.ResolveWild(action, player, table.Hand(player), uno.MajorityColorChooser)

		res, err := table.Step(action)
		if err != nil {
			return p, err
		}
		t.memory.Push(replay.Transition{
			State:  state,
			Action: res.Action,
			Reward: res.Reward,
			Next:   features.EncodeState(table, player),
			Done:   res.Done,
		})
		t.steps++
		p.Turns++
		p.Reward += res.Reward

		if t.steps%int64(t.cfg.ReplayEvery) == 0 {
			if err := t.replay(ctx); err != nil {
				return p, err
			}
		}
		if t.checkpointDue() {
			if err := t.Checkpoint(); err != nil {
				return p, err
			}
		}

		if res.Done {
			p.Winner = res.Winner
			return p, nil
		}
	}

	p.Truncated = true
	t.logger.Warn("episode truncated", "episode", t.episode+1, "turns", p.Turns)
	return p, nil
}

// replay fits the estimator on one sampled batch. Targets are the reward for
// terminal transitions and reward + gamma * score(next, action) otherwise.
// Nothing happens, and epsilon is not decayed, until the memory holds a full
// batch.
func (t *Trainer) replay(ctx context.Context) error {
	if t.memory.Len() < t.cfg.BatchSize {
		return nil
	}
	batch, err := t.memory.Sample(t.cfg.BatchSize)
	if err != nil {
		return err
	}

	var (
		nextInputs []features.Vector
		nextIndex  = make([]int, len(batch))
	)
	for i, tr := range batch {
		nextIndex[i] = -1
		if !tr.Done {
			nextIndex[i] = len(nextInputs)
			nextInputs = append(nextInputs, features.Pair(tr.Next, tr.Action))
		}
	}

	var future []float64
	if len(nextInputs) > 0 {
		if future, err = t.est.Score(ctx, nextInputs); err != nil {
			return fmt.Errorf("score next states: %w", err)
		}
		if len(future) != len(nextInputs) {
			return fmt.Errorf("score next states: got %d scores for %d inputs", len(future), len(nextInputs))
		}
	}

	samples := make([]agent.Sample, len(batch))
	for i, tr := range batch {
		target := tr.Reward
		if j := nextIndex[i]; j >= 0 {
			target += t.cfg.Gamma * future[j]
		}
		samples[i] = agent.Sample{Input: features.Pair(tr.State, tr.Action), Target: target}
	}
	if err := t.est.Fit(ctx, samples); err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	t.schedule.Step()
	return nil
}

func (t *Trainer) checkpointing() bool {
	return t.cfg.ModelPath != "" || t.cfg.ProgressPath != "" || t.cfg.MemoryPath != ""
}

func (t *Trainer) checkpointDue() bool {
	if !t.checkpointing() {
		return false
	}
	if t.cfg.CheckpointEvery > 0 && t.steps%int64(t.cfg.CheckpointEvery) == 0 {
		return true
	}
	return t.cfg.CheckpointInterval > 0 && t.clock.Since(t.lastCheckpoint) >= t.cfg.CheckpointInterval
}

// Checkpoint saves the estimator, the progress record and the replay memory
// to whichever paths are configured.
func (t *Trainer) Checkpoint() error {
	if t.cfg.ModelPath != "" {
		if err := t.est.Save(t.cfg.ModelPath); err != nil {
			return fmt.Errorf("save model: %w", err)
		}
	}
	if t.cfg.MemoryPath != "" {
		if err := t.memory.Save(t.cfg.MemoryPath); err != nil {
			return fmt.Errorf("save replay memory: %w", err)
		}
	}
	now := t.clock.Now()
	if t.cfg.ProgressPath != "" {
		rec := Record{Epsilon: t.schedule.Epsilon, Episode: t.episode, Steps: t.steps, SavedAt: now.UTC()}
		if err := SaveRecord(t.cfg.ProgressPath, rec); err != nil {
			return err
		}
	}
	t.lastCheckpoint = now
	t.logger.Info("checkpoint saved", "episode", t.episode, "steps", t.steps, "epsilon", t.schedule.Epsilon)
	return nil
}
