// Package config loads the optional uno.hcl settings file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/unoforbots/internal/estimator"
	"github.com/lox/unoforbots/internal/trainer"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "uno.hcl"

// Config represents the complete configuration
type Config struct {
	Training TrainingSettings
	Paths    PathSettings
	Play     PlaySettings
	Log      LogSettings
}

// TrainingSettings holds the self-play hyper-parameters.
type TrainingSettings struct {
	Episodes           int
	Players            int
	Seed               int64
	MemoryCapacity     int
	BatchSize          int
	ReplayEvery        int
	Gamma              float64
	Epsilon            float64
	EpsilonMin         float64
	EpsilonDecay       float64
	LearningRate       float64
	MaxStepsPerEpisode int
	CheckpointEvery    int
	CheckpointInterval string
}

// PathSettings names the persisted artefacts
type PathSettings struct {
	Model    string `hcl:"model,optional"`
	Progress string `hcl:"progress,optional"`
	Memory   string `hcl:"memory,optional"`
}

// PlaySettings configures interactive games
type PlaySettings struct {
	Players     int
	Name        string
	Opponent    string
	Epsilon     float64
	MaxTurns    int
	HistoryFile string
	NoColor     bool
}

// LogSettings configures the root logger
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// fileConfig mirrors Config with every block optional.
type fileConfig struct {
	Training *fileTraining `hcl:"training,block"`
	Paths    *PathSettings `hcl:"paths,block"`
	Play     *filePlay     `hcl:"play,block"`
	Log      *LogSettings  `hcl:"log,block"`
}

// Numeric settings are pointers so an explicit zero is told apart from an
// absent attribute.
type fileTraining struct {
	Episodes           *int     `hcl:"episodes,optional"`
	Players            *int     `hcl:"players,optional"`
	Seed               *int64   `hcl:"seed,optional"`
	MemoryCapacity     *int     `hcl:"memory_capacity,optional"`
	BatchSize          *int     `hcl:"batch_size,optional"`
	ReplayEvery        *int     `hcl:"replay_every,optional"`
	Gamma              *float64 `hcl:"gamma,optional"`
	Epsilon            *float64 `hcl:"epsilon,optional"`
	EpsilonMin         *float64 `hcl:"epsilon_min,optional"`
	EpsilonDecay       *float64 `hcl:"epsilon_decay,optional"`
	LearningRate       *float64 `hcl:"learning_rate,optional"`
	MaxStepsPerEpisode *int     `hcl:"max_steps_per_episode,optional"`
	CheckpointEvery    *int     `hcl:"checkpoint_every,optional"`
	CheckpointInterval string   `hcl:"checkpoint_interval,optional"`
}

type filePlay struct {
	Players     *int     `hcl:"players,optional"`
	Name        string   `hcl:"name,optional"`
	Opponent    string   `hcl:"opponent,optional"`
	Epsilon     *float64 `hcl:"epsilon,optional"`
	MaxTurns    *int     `hcl:"max_turns,optional"`
	HistoryFile string   `hcl:"history_file,optional"`
	NoColor     *bool    `hcl:"no_color,optional"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	tc := trainer.DefaultConfig()
	return &Config{
		Training: TrainingSettings{
			Episodes:           tc.Episodes,
			Players:            tc.Players,
			MemoryCapacity:     tc.MemoryCapacity,
			BatchSize:          tc.BatchSize,
			ReplayEvery:        tc.ReplayEvery,
			Gamma:              tc.Gamma,
			Epsilon:            tc.Epsilon,
			EpsilonMin:         tc.EpsilonMin,
			EpsilonDecay:       tc.EpsilonDecay,
			LearningRate:       estimator.DefaultLearningRate,
			MaxStepsPerEpisode: tc.MaxStepsPerEpisode,
			CheckpointEvery:    tc.CheckpointEvery,
		},
		Paths: PathSettings{
			Model:    "uno_model.json",
			Progress: "uno_progress.json",
			Memory:   "uno_memory.msgp",
		},
		Play: PlaySettings{
			Players:     2,
			Name:        "you",
			Opponent:    "policy",
			MaxTurns:    1000,
			HistoryFile: ".uno_history",
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := DefaultConfig()
	if fc.Training != nil {
		config.Training.merge(*fc.Training)
	}
	if fc.Paths != nil {
		setString(&config.Paths.Model, fc.Paths.Model)
		setString(&config.Paths.Progress, fc.Paths.Progress)
		setString(&config.Paths.Memory, fc.Paths.Memory)
	}
	if fc.Play != nil {
		config.Play.merge(*fc.Play)
	}
	if fc.Log != nil {
		setString(&config.Log.Level, fc.Log.Level)
		setString(&config.Log.File, fc.Log.File)
	}
	return config, nil
}

func (t *TrainingSettings) merge(o fileTraining) {
	set(&t.Episodes, o.Episodes)
	set(&t.Players, o.Players)
	set(&t.Seed, o.Seed)
	set(&t.MemoryCapacity, o.MemoryCapacity)
	set(&t.BatchSize, o.BatchSize)
	set(&t.ReplayEvery, o.ReplayEvery)
	set(&t.Gamma, o.Gamma)
	set(&t.Epsilon, o.Epsilon)
	set(&t.EpsilonMin, o.EpsilonMin)
	set(&t.EpsilonDecay, o.EpsilonDecay)
	set(&t.LearningRate, o.LearningRate)
	set(&t.MaxStepsPerEpisode, o.MaxStepsPerEpisode)
	set(&t.CheckpointEvery, o.CheckpointEvery)
	setString(&t.CheckpointInterval, o.CheckpointInterval)
}

func (p *PlaySettings) merge(o filePlay) {
	set(&p.Players, o.Players)
	setString(&p.Name, o.Name)
	setString(&p.Opponent, o.Opponent)
	set(&p.Epsilon, o.Epsilon)
	set(&p.MaxTurns, o.MaxTurns)
	setString(&p.HistoryFile, o.HistoryFile)
	set(&p.NoColor, o.NoColor)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.TrainerConfig(); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("training: learning rate must be positive, got %v", c.Training.LearningRate)
	}
	if c.Play.Players < 2 {
		return fmt.Errorf("play: players must be at least 2, got %d", c.Play.Players)
	}
	if c.Play.MaxTurns <= 0 {
		return fmt.Errorf("play: max turns must be positive, got %d", c.Play.MaxTurns)
	}
	if c.Play.Epsilon < 0 || c.Play.Epsilon > 1 {
		return fmt.Errorf("play: epsilon must be within [0, 1], got %v", c.Play.Epsilon)
	}
	switch c.Play.Opponent {
	case "policy", "random":
	default:
		return fmt.Errorf("play: invalid opponent %q", c.Play.Opponent)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: invalid level %q", c.Log.Level)
	}
	return nil
}

// TrainerConfig converts the training and path settings into a validated
// trainer configuration.
func (c *Config) TrainerConfig() (trainer.Config, error) {
	t := c.Training
	var interval time.Duration
	if t.CheckpointInterval != "" {
		d, err := time.ParseDuration(t.CheckpointInterval)
		if err != nil {
			return trainer.Config{}, fmt.Errorf("checkpoint interval: %w", err)
		}
		interval = d
	}

	tc := trainer.Config{
		Episodes:           t.Episodes,
		Players:            t.Players,
		Seed:               t.Seed,
		MemoryCapacity:     t.MemoryCapacity,
		BatchSize:          t.BatchSize,
		ReplayEvery:        t.ReplayEvery,
		Gamma:              t.Gamma,
		Epsilon:            t.Epsilon,
		EpsilonMin:         t.EpsilonMin,
		EpsilonDecay:       t.EpsilonDecay,
		MaxStepsPerEpisode: t.MaxStepsPerEpisode,
		CheckpointEvery:    t.CheckpointEvery,
		CheckpointInterval: interval,
		ModelPath:          c.Paths.Model,
		ProgressPath:       c.Paths.Progress,
		MemoryPath:         c.Paths.Memory,
	}
	if err := tc.Validate(); err != nil {
		return trainer.Config{}, err
	}
	return tc, nil
}
