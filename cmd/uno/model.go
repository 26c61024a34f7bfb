package main

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/unoforbots/internal/estimator"
	"github.com/lox/unoforbots/internal/randutil"
	"github.com/lox/unoforbots/internal/replay"
)

// loadModel returns a linear estimator, restored from path when that file
// exists. A missing model yields an untrained one.
func loadModel(path string, rate float64, logger *log.Logger) (*estimator.Linear, error) {
	est := estimator.NewLinear(rate)
	if path == "" {
		return est, nil
	}
	if err := est.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("No saved model, starting untrained", "path", path)
			return est, nil
		}
		return nil, err
	}
	logger.Info("Loaded model", "path", path, "updates", est.Updates())
	return est, nil
}

// loadMemory restores the replay memory at path. Failures are logged and an
// empty memory is used instead.
func loadMemory(path string, capacity int, seed int64, logger *log.Logger) *replay.Memory {
	rng := randutil.New(randutil.Derive(seed, 0))
	if path == "" {
		return replay.NewMemory(capacity, rng)
	}
	mem, err := replay.Load(path, capacity, rng)
	switch {
	case err == nil:
		logger.Info("Loaded replay memory", "path", path, "transitions", mem.Len())
	case replay.IsNotExist(err):
		logger.Debug("No saved replay memory", "path", path)
	default:
		logger.Warn("Ignoring unreadable replay memory", "path", path, "error", err)
	}
	return mem
}
