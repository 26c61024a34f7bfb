package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lox/unoforbots/internal/trainer"
)

// InspectCmd prints what a training run left on disk.
type InspectCmd struct {
	Model    string `help:"Model file" env:"UNO_MODEL" type:"path"`
	Progress string `help:"Progress record file" env:"UNO_PROGRESS" type:"path"`
	Memory   string `help:"Replay memory file" env:"UNO_MEMORY" type:"path"`
}

func (c *InspectCmd) Run(g *Globals) error {
	e, err := g.setup("")
	if err != nil {
		return err
	}
	defer e.close()

	paths := &e.cfg.Paths
	setIf(&paths.Model, c.Model)
	setIf(&paths.Progress, c.Progress)
	setIf(&paths.Memory, c.Memory)

	out := os.Stdout
	fmt.Fprintf(out, "=== PROGRESS (%s) ===\n", paths.Progress)
	if rec, err := trainer.LoadRecord(paths.Progress); err != nil {
		fmt.Fprintf(out, "unavailable: %v\n", err)
	} else {
		fmt.Fprintf(out, "Episode: %d\nSteps: %d\nEpsilon: %.4f\nSaved: %s\n",
			rec.Episode, rec.Steps, rec.Epsilon, rec.SavedAt.Local().Format(time.DateTime))
	}

	fmt.Fprintf(out, "\n=== MODEL (%s) ===\n", paths.Model)
	est, err := loadModel(paths.Model, e.cfg.Training.LearningRate, e.logger)
	if err != nil {
		fmt.Fprintf(out, "unavailable: %v\n", err)
	} else {
		fmt.Fprintf(out, "Updates: %d\n", est.Updates())
	}

	fmt.Fprintf(out, "\n=== REPLAY MEMORY (%s) ===\n", paths.Memory)
	stats := loadMemory(paths.Memory, e.cfg.Training.MemoryCapacity, 1, e.logger).Stats()
	fmt.Fprintf(out, "Transitions: %d / %d\nMean reward: %.3f\nTerminal: %.1f%%\n",
		stats.Len, stats.Capacity, stats.MeanReward, stats.DoneRatio*100)
	return nil
}
