package trainer

import (
	"errors"
	"fmt"
	"time"

	"github.com/lox/unoforbots/internal/replay"
	"github.com/lox/unoforbots/internal/uno"
)

// Config aggregates the parameters of a self-play training run.
type Config struct {
	Episodes int
	Players  int
	Seed     int64

	MemoryCapacity int
	BatchSize      int
	ReplayEvery    int // steps between replay updates
	Gamma          float64

	Epsilon      float64
	EpsilonMin   float64
	EpsilonDecay float64

	MaxStepsPerEpisode int

	// CheckpointEvery saves every n steps; CheckpointInterval additionally
	// saves when that much wall-clock time has passed. Zero disables either.
	CheckpointEvery    int
	CheckpointInterval time.Duration

	// Empty paths skip the corresponding artefact.
	ModelPath    string
	ProgressPath string
	MemoryPath   string
}

// DefaultConfig returns the stock hyper-parameters.
func DefaultConfig() Config {
	return Config{
		Episodes:           1000,
		Players:            2,
		MemoryCapacity:     replay.DefaultCapacity,
		BatchSize:          32,
		ReplayEvery:        1,
		Gamma:              0.95,
		Epsilon:            1.0,
		EpsilonMin:         0.01,
		EpsilonDecay:       0.995,
		MaxStepsPerEpisode: 1000,
		CheckpointEvery:    100,
	}
}

// Validate ensures the training parameters are safe to use.
func (c Config) Validate() error {
	if c.Episodes <= 0 {
		return errors.New("episodes must be > 0")
	}
	if err := (uno.TableConfig{Players: c.Players}).Validate(); err != nil {
		return err
	}
	if c.MemoryCapacity <= 0 {
		return errors.New("memory capacity must be > 0")
	}
	if c.BatchSize <= 0 {
		return errors.New("batch size must be > 0")
	}
	if c.BatchSize > c.MemoryCapacity {
		return fmt.Errorf("batch size %d exceeds memory capacity %d", c.BatchSize, c.MemoryCapacity)
	}
	if c.ReplayEvery <= 0 {
		return errors.New("replay every must be > 0")
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return errors.New("gamma must be within [0, 1]")
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > 1 {
		return errors.New("epsilon min must be within [0, 1]")
	}
	if c.Epsilon < c.EpsilonMin || c.Epsilon > 1 {
		return errors.New("epsilon must be within [epsilon min, 1]")
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return errors.New("epsilon decay must be within (0, 1]")
	}
	if c.MaxStepsPerEpisode <= 0 {
		return errors.New("max steps per episode must be > 0")
	}
	if c.CheckpointEvery < 0 {
		return errors.New("checkpoint every cannot be negative")
	}
	if c.CheckpointInterval < 0 {
		return errors.New("checkpoint interval cannot be negative")
	}
	return nil
}
