package main

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/lox/unoforbots/cmd/uno/shared"
	"github.com/lox/unoforbots/internal/randutil"
	"github.com/lox/unoforbots/internal/simulator"
)

// SimulateCmd evaluates player kinds against each other.
type SimulateCmd struct {
	Games    int           `short:"n" help:"Games to play" default:"100"`
	Players  []string      `help:"Player kinds, one per seat (policy, random)" default:"policy,random"`
	Seed     int64         `help:"Deterministic RNG seed (0 picks one)" env:"UNO_SEED"`
	Parallel int           `help:"Concurrent games (0 uses all CPUs)" default:"0"`
	Timeout  time.Duration `help:"Per-game timeout" default:"30s"`
	MaxTurns int           `help:"Turn limit per game" default:"1000"`
	Epsilon  float64       `help:"Exploration rate for policy players" default:"0"`
	Watch    bool          `help:"Play a single game and log every turn"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	e, err := g.setup("")
	if err != nil {
		return err
	}
	defer e.close()
	logger := e.logger

	cfg := simulator.Config{
		Games:    c.Games,
		Players:  c.Players,
		Seed:     randutil.Resolve(c.Seed),
		Parallel: c.Parallel,
		Timeout:  c.Timeout,
		MaxTurns: c.MaxTurns,
		Epsilon:  c.Epsilon,
		Logger:   logger,
	}
	if c.Watch {
		cfg.Games = 1
	}
	if slices.Contains(c.Players, simulator.KindPolicy) {
		est, err := loadModel(e.cfg.Paths.Model, e.cfg.Training.LearningRate, logger)
		if err != nil {
			return err
		}
		cfg.Estimator = est
	}

	sim, err := simulator.New(cfg)
	if err != nil {
		return err
	}
	ctx := shared.SetupSignalHandler(logger)

	if c.Watch {
		result, err := sim.Watch(ctx)
		if err != nil {
			return err
		}
		if result.Truncated {
			fmt.Printf("Game truncated after %d turns (seed %d)\n", result.Turns, result.Seed)
		} else {
			fmt.Printf("Player %d (%s) won after %d turns (seed %d)\n",
				result.Winner, c.Players[result.Winner], result.Turns, result.Seed)
		}
		return nil
	}

	logger.Info("Starting simulation", "games", cfg.Games, "players", sim.Describe(), "seed", cfg.Seed)
	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Simulation complete", "games", stats.Games, "elapsed", time.Since(start))
	simulator.PrintSummary(os.Stdout, stats, c.Players)
	return nil
}
