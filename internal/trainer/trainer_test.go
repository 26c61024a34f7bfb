package trainer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unoforbots/internal/agent"
	"github.com/lox/unoforbots/internal/estimator"
	"github.com/lox/unoforbots/internal/features"
	"github.com/lox/unoforbots/internal/randutil"
	"github.com/lox/unoforbots/internal/replay"
	"github.com/lox/unoforbots/internal/uno"
)

type fakeEstimator struct {
	score      float64
	scoreErr   error
	scoreCalls int
	fits       [][]agent.Sample
	saved      []string
}

func (f *fakeEstimator) Score(_ context.Context, inputs []features.Vector) ([]float64, error) {
	f.scoreCalls++
	if f.scoreErr != nil {
		return nil, f.scoreErr
	}
	out := make([]float64, len(inputs))
	for i := range out {
		out[i] = f.score
	}
	return out, nil
}

func (f *fakeEstimator) Fit(_ context.Context, batch []agent.Sample) error {
	f.fits = append(f.fits, batch)
	return nil
}

func (f *fakeEstimator) Save(path string) error {
	f.saved = append(f.saved, path)
	return nil
}

func (f *fakeEstimator) Load(string) error { return nil }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Episodes = 3
	cfg.Seed = 42
	cfg.MemoryCapacity = 64
	cfg.BatchSize = 8
	cfg.MaxStepsPerEpisode = 500
	cfg.CheckpointEvery = 0
	return cfg
}

func TestRunPlaysEpisodes(t *testing.T) {
	est := &fakeEstimator{}
	tr, err := New(testConfig(), est)
	require.NoError(t, err)

	var seen []Progress
	require.NoError(t, tr.Run(context.Background(), func(p Progress) { seen = append(seen, p) }))

	require.Len(t, seen, 3)
	for i, p := range seen {
		assert.Equal(t, i+1, p.Episode)
		assert.Positive(t, p.Turns)
	}
	assert.Equal(t, 3, tr.Episode())
	assert.Equal(t, seen[2].Steps, tr.Steps())
	assert.NotEmpty(t, est.fits)
	assert.Less(t, tr.Epsilon(), 1.0)
	assert.GreaterOrEqual(t, tr.Epsilon(), 0.01)
	assert.Equal(t, min(64, int(tr.Steps())), tr.Memory().Len())
	assert.Empty(t, est.saved, "no paths, no checkpoints")
}

func TestRunIsDeterministic(t *testing.T) {
	run := func() (*Trainer, []Progress) {
		tr, err := New(testConfig(), &fakeEstimator{})
		require.NoError(t, err)
		var seen []Progress
		require.NoError(t, tr.Run(context.Background(), func(p Progress) {
			p.Elapsed = 0
			seen = append(seen, p)
		}))
		return tr, seen
	}

	a, pa := run()
	b, pb := run()
	assert.Equal(t, pa, pb)
	assert.Equal(t, a.Memory().Snapshot(), b.Memory().Snapshot())
}

func TestReplayDiscountsNonTerminalTargets(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 2
	cfg.Gamma = 0.5
	est := &fakeEstimator{score: 4}
	tr, err := New(cfg, est, WithMemory(replay.NewMemory(2, randutil.New(1))))
	require.NoError(t, err)

	state := make(features.Vector, features.StateSize)
	action := uno.PlayAction(uno.CardByID(30))
	tr.Memory().Push(replay.Transition{State: state, Action: action, Reward: 7, Next: state})
	tr.Memory().Push(replay.Transition{State: state, Action: action, Reward: 57, Next: state, Done: true})

	require.NoError(t, tr.replay(context.Background()))
	require.Len(t, est.fits, 1)

	var targets []float64
	for _, s := range est.fits[0] {
		assert.Len(t, s.Input, features.InputSize)
		targets = append(targets, s.Target)
	}
	assert.ElementsMatch(t, []float64{7 + 0.5*4, 57}, targets)
	assert.Equal(t, 1, est.scoreCalls, "next states are scored in one batch")
	assert.InDelta(t, 0.995, tr.Epsilon(), 1e-12)
}

func TestReplayWaitsForFullBatch(t *testing.T) {
	est := &fakeEstimator{}
	tr, err := New(testConfig(), est)
	require.NoError(t, err)

	tr.Memory().Push(replay.Transition{Reward: 1})
	require.NoError(t, tr.replay(context.Background()))
	assert.Empty(t, est.fits)
	assert.Equal(t, 1.0, tr.Epsilon())
}

func TestEstimatorFailureAbortsEpisode(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 1
	cfg.Epsilon, cfg.EpsilonMin = 0, 0
	boom := errors.New("estimator offline")
	tr, err := New(cfg, &fakeEstimator{scoreErr: boom})
	require.NoError(t, err)

	err = tr.Run(context.Background(), nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "episode 1")
	assert.Equal(t, 0, tr.Episode())
}

func TestMaxStepsTruncatesEpisode(t *testing.T) {
	cfg := testConfig()
	cfg.Episodes = 1
	cfg.MaxStepsPerEpisode = 5
	tr, err := New(cfg, &fakeEstimator{})
	require.NoError(t, err)

	var got Progress
	require.NoError(t, tr.Run(context.Background(), func(p Progress) { got = p }))
	assert.True(t, got.Truncated)
	assert.Equal(t, 5, got.Turns)
	assert.Equal(t, -1, got.Winner)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := New(testConfig(), &fakeEstimator{})
	require.NoError(t, err)
	assert.ErrorIs(t, tr.Run(ctx, nil), context.Canceled)
}

func TestCheckpointArtefacts(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.CheckpointEvery = 10
	cfg.ModelPath = filepath.Join(dir, "model.json")
	cfg.ProgressPath = filepath.Join(dir, "progress.json")
	cfg.MemoryPath = filepath.Join(dir, "memory.msgp")

	est := estimator.NewLinear(0.001)
	tr, err := New(cfg, est)
	require.NoError(t, err)
	require.NoError(t, tr.Run(context.Background(), nil))

	for _, p := range []string{cfg.ModelPath, cfg.ProgressPath, cfg.MemoryPath} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}

	rec, err := LoadRecord(cfg.ProgressPath)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Episode)
	assert.Equal(t, tr.Steps(), rec.Steps)
	assert.InDelta(t, tr.Epsilon(), rec.Epsilon, 1e-12)

	mem, err := replay.Load(cfg.MemoryPath, cfg.MemoryCapacity, randutil.New(1))
	require.NoError(t, err)
	assert.Equal(t, tr.Memory().Len(), mem.Len())

	restored := estimator.NewLinear(0.001)
	require.NoError(t, restored.Load(cfg.ModelPath))
	assert.Equal(t, est.Updates(), restored.Updates())
}

func TestCheckpointInterval(t *testing.T) {
	ctx := context.Background()
	mClock := quartz.NewMock(t)

	cfg := testConfig()
	cfg.CheckpointInterval = time.Minute
	cfg.ProgressPath = filepath.Join(t.TempDir(), "progress.json")
	tr, err := New(cfg, &fakeEstimator{}, WithClock(mClock))
	require.NoError(t, err)

	tr.lastCheckpoint = mClock.Now()
	tr.steps = 1
	assert.False(t, tr.checkpointDue())

	mClock.Advance(30 * time.Second).MustWait(ctx)
	assert.False(t, tr.checkpointDue())

	mClock.Advance(30 * time.Second).MustWait(ctx)
	assert.True(t, tr.checkpointDue())

	require.NoError(t, tr.Checkpoint())
	assert.False(t, tr.checkpointDue())

	rec, err := LoadRecord(cfg.ProgressPath)
	require.NoError(t, err)
	assert.True(t, rec.SavedAt.Equal(mClock.Now().UTC()))
}

func TestResume(t *testing.T) {
	cfg := testConfig()
	tr, err := New(cfg, &fakeEstimator{})
	require.NoError(t, err)
	tr.Resume(Record{Episode: 2, Steps: 100, Epsilon: 0.5})

	var seen []Progress
	require.NoError(t, tr.Run(context.Background(), func(p Progress) { seen = append(seen, p) }))
	require.Len(t, seen, 1)
	assert.Equal(t, 3, seen[0].Episode)
	assert.Greater(t, tr.Steps(), int64(100))
	assert.LessOrEqual(t, tr.Epsilon(), 0.5)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no episodes", func(c *Config) { c.Episodes = 0 }},
		{"one player", func(c *Config) { c.Players = 1 }},
		{"too many players", func(c *Config) { c.Players = 20 }},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }},
		{"batch exceeds memory", func(c *Config) { c.BatchSize = c.MemoryCapacity + 1 }},
		{"gamma above one", func(c *Config) { c.Gamma = 1.5 }},
		{"epsilon below min", func(c *Config) { c.Epsilon = 0.001 }},
		{"decay zero", func(c *Config) { c.EpsilonDecay = 0 }},
		{"replay every zero", func(c *Config) { c.ReplayEvery = 0 }},
		{"no step cap", func(c *Config) { c.MaxStepsPerEpisode = 0 }},
		{"negative interval", func(c *Config) { c.CheckpointInterval = -time.Second }},
	}
	require.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRecordRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	saved := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, SaveRecord(path, Record{Epsilon: 0.25, Episode: 12, Steps: 345, SavedAt: saved}))

	rec, err := LoadRecord(path)
	require.NoError(t, err)
	assert.Equal(t, Record{Version: recordFileVersion, Epsilon: 0.25, Episode: 12, Steps: 345, SavedAt: saved}, rec)

	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"epsilon":3,"episode":1}`), 0o644))
	_, err = LoadRecord(path)
	assert.Error(t, err)
}
