package main

import (
	"context"
	"errors"
	"os"

	"github.com/lox/unoforbots/cmd/uno/shared"
	"github.com/lox/unoforbots/internal/randutil"
	"github.com/lox/unoforbots/internal/trainer"
)

// TrainCmd runs self-play training. Non-zero flags override the config file.
type TrainCmd struct {
	Episodes      int     `help:"Episodes to train (total, including resumed ones)" env:"UNO_EPISODES"`
	Players       int     `help:"Players per self-play game" env:"UNO_PLAYERS"`
	Seed          int64   `help:"Deterministic RNG seed (0 picks one)" env:"UNO_SEED"`
	Epsilon       float64 `help:"Initial exploration rate"`
	Model         string  `help:"Model file" env:"UNO_MODEL" type:"path"`
	Progress      string  `help:"Progress record file" env:"UNO_PROGRESS" type:"path"`
	Memory        string  `help:"Replay memory file" env:"UNO_MEMORY" type:"path"`
	Fresh         bool    `help:"Ignore saved model, progress and memory"`
	ProgressEvery int     `help:"Log progress every N episodes" default:"10"`
}

func (c *TrainCmd) Run(g *Globals) error {
	e, err := g.setup("")
	if err != nil {
		return err
	}
	defer e.close()
	logger := e.logger

	ts := &e.cfg.Training
	setIf(&ts.Episodes, c.Episodes)
	setIf(&ts.Players, c.Players)
	setIf(&ts.Epsilon, c.Epsilon)
	setIf(&e.cfg.Paths.Model, c.Model)
	setIf(&e.cfg.Paths.Progress, c.Progress)
	setIf(&e.cfg.Paths.Memory, c.Memory)
	seed := c.Seed
	if seed == 0 {
		seed = ts.Seed
	}
	ts.Seed = randutil.Resolve(seed)

	if err := e.cfg.Validate(); err != nil {
		return err
	}
	tc, err := e.cfg.TrainerConfig()
	if err != nil {
		return err
	}

	var opts []trainer.Option
	opts = append(opts, trainer.WithLogger(logger))

	modelPath, memoryPath := tc.ModelPath, tc.MemoryPath
	if c.Fresh {
		modelPath, memoryPath = "", ""
	}
	est, err := loadModel(modelPath, ts.LearningRate, logger)
	if err != nil {
		return err
	}
	opts = append(opts, trainer.WithMemory(loadMemory(memoryPath, tc.MemoryCapacity, tc.Seed, logger)))

	t, err := trainer.New(tc, est, opts...)
	if err != nil {
		return err
	}

	if !c.Fresh && tc.ProgressPath != "" {
		rec, err := trainer.LoadRecord(tc.ProgressPath)
		switch {
		case err == nil:
			t.Resume(rec)
		case errors.Is(err, os.ErrNotExist):
		default:
			logger.Warn("Ignoring unreadable progress record", "path", tc.ProgressPath, "error", err)
		}
	}

	logger.Info("Starting training",
		"episodes", tc.Episodes, "players", tc.Players, "seed", tc.Seed,
		"batch", tc.BatchSize, "gamma", tc.Gamma, "epsilon", t.Epsilon(), "memory", t.Memory().Len())

	ctx := shared.SetupSignalHandler(logger)
	every := max(c.ProgressEvery, 1)
	wins := make([]int, tc.Players)
	err = t.Run(ctx, func(p trainer.Progress) {
		if p.Winner >= 0 {
			wins[p.Winner]++
		}
		if p.Episode%every == 0 {
			logger.Info("progress",
				"episode", p.Episode, "steps", p.Steps, "turns", p.Turns,
				"reward", p.Reward, "epsilon", p.Epsilon, "memory", p.Memory,
				"elapsed", p.Elapsed, "wins", wins)
		}
	})
	if errors.Is(err, context.Canceled) {
		logger.Info("Training interrupted, saving checkpoint", "episode", t.Episode())
		return t.Checkpoint()
	}
	if err != nil {
		return err
	}

	logger.Info("Training complete", "episode", t.Episode(), "steps", t.Steps(), "epsilon", t.Epsilon())
	return nil
}

// setIf overwrites dst when v is non-zero.
func setIf[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
