package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/unoforbots/cmd/uno/shared"
	"github.com/lox/unoforbots/internal/agent"
	"github.com/lox/unoforbots/internal/console"
	"github.com/lox/unoforbots/internal/play"
	"github.com/lox/unoforbots/internal/randutil"
	"github.com/lox/unoforbots/internal/session"
	"github.com/lox/unoforbots/internal/tui"
)

// PlayCmd starts a game between the user and AI opponents.
type PlayCmd struct {
	Players  int     `short:"p" help:"Number of players including you" env:"UNO_PLAY_PLAYERS"`
	Opponent string  `help:"Opponent kind (policy or random)"`
	Name     string  `help:"Your display name"`
	Epsilon  float64 `help:"Exploration rate for policy opponents"`
	Seed     int64   `help:"Deterministic RNG seed (0 picks one)" env:"UNO_SEED"`
	TUI      bool    `name:"tui" help:"Use the full-screen interface"`
	NoColor  bool    `help:"Disable colors in the text interface" env:"NO_COLOR"`
	NoRecord bool    `help:"Do not add this game to the replay memory"`
}

func (c *PlayCmd) Run(g *Globals) error {
	// The TUI owns the terminal, so logs go to a file.
	logFile := ""
	if c.TUI {
		logFile = "uno.log"
	}
	e, err := g.setup(logFile)
	if err != nil {
		return err
	}
	defer e.close()
	logger := e.logger

	ps := &e.cfg.Play
	setIf(&ps.Players, c.Players)
	setIf(&ps.Opponent, c.Opponent)
	setIf(&ps.Name, c.Name)
	setIf(&ps.Epsilon, c.Epsilon)
	ps.NoColor = ps.NoColor || c.NoColor
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	seed := randutil.Resolve(c.Seed)

	est, err := loadModel(e.cfg.Paths.Model, e.cfg.Training.LearningRate, logger)
	if err != nil {
		return err
	}

	var opts []session.ManagerOption
	opts = append(opts, session.WithSeed(seed))
	record := !c.NoRecord && e.cfg.Paths.Memory != ""
	mem := loadMemory(e.cfg.Paths.Memory, e.cfg.Training.MemoryCapacity, seed, logger)
	if record {
		opts = append(opts, session.WithRecorder(mem))
	}
	manager := session.NewManager(logger, opts...)

	game, err := manager.NewGame("local", ps.Players)
	if err != nil {
		return err
	}
	seats := make([]play.Seat, ps.Players)
	seats[0] = play.Seat{Name: ps.Name}
	for i := 1; i < ps.Players; i++ {
		rng := randutil.New(randutil.Derive(seed, uint64(i)))
		var p agent.Player
		if ps.Opponent == "random" {
			p = agent.NewRandomPlayer(rng)
		} else {
			p = agent.NewPolicyPlayer(agent.NewPolicy(est, rng), ps.Epsilon)
		}
		seats[i] = play.Seat{Name: fmt.Sprintf("%s-%d", p.Name(), i), Player: p}
	}
	match, err := play.NewMatch(game, seats, play.WithMaxTurns(ps.MaxTurns), play.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("Starting game", "id", game.ID, "players", ps.Players, "opponent", ps.Opponent, "seed", seed)

	ctx := shared.SetupSignalHandler(logger)
	if c.TUI {
		model := tui.NewTUIModel(ctx, match, logger)
		if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("run TUI: %w", err)
		}
	} else {
		rl, err := console.NewReadline(ps.HistoryFile)
		if err != nil {
			return fmt.Errorf("start prompt: %w", err)
		}
		defer rl.Close()
		if err := console.New(match, rl, os.Stdout, ps.NoColor).Run(ctx); err != nil {
			return err
		}
	}

	if record {
		if err := mem.Save(e.cfg.Paths.Memory); err != nil {
			return fmt.Errorf("save replay memory: %w", err)
		}
		logger.Info("Saved replay memory", "path", e.cfg.Paths.Memory, "transitions", mem.Len())
	}
	return nil
}
