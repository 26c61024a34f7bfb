// Package simulator evaluates players over many seeded all-AI games.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/unoforbots/internal/agent"
	"github.com/lox/unoforbots/internal/play"
	"github.com/lox/unoforbots/internal/randutil"
	"github.com/lox/unoforbots/internal/session"
	"github.com/lox/unoforbots/internal/statistics"
	"github.com/lox/unoforbots/internal/uno"
)

// Player kinds accepted in Config.Players.
const (
	KindPolicy = "policy"
	KindRandom = "random"
)

// Config holds configuration for running simulations
type Config struct {
	Games    int
	Players  []string // one kind per player slot
	Seed     int64
	Parallel int // concurrent games, 0 uses GOMAXPROCS
	Timeout  time.Duration
	MaxTurns int // 0 uses play.DefaultMaxTurns

	// Estimator backs policy players. Scoring must be safe for concurrent use.
	Estimator agent.ValueEstimator
	Epsilon   float64 // exploration rate for policy players

	Logger *log.Logger
}

// Validate checks the player kinds and limits.
func (c Config) Validate() error {
	if c.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	if len(c.Players) < 2 {
		return fmt.Errorf("need at least 2 players, got %d", len(c.Players))
	}
	for _, kind := range c.Players {
		switch kind {
		case KindRandom:
		case KindPolicy:
			if c.Estimator == nil {
				return errors.New("policy players need an estimator")
			}
		default:
			return fmt.Errorf("unknown player kind %q", kind)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0,1], got %v", c.Epsilon)
	}
	return nil
}

// Simulator runs Uno game simulations
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Parallel <= 0 {
		config.Parallel = runtime.GOMAXPROCS(0)
	}
	if config.MaxTurns <= 0 {
		config.MaxTurns = play.DefaultMaxTurns
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{config: config, logger: logger.WithPrefix("simulator")}, nil
}

// Describe returns the player line-up, e.g. "policy vs random".
func (s *Simulator) Describe() string {
	return strings.Join(s.config.Players, " vs ")
}

// Run plays every game on a bounded worker pool and returns the aggregated
// statistics. Games are added in index order so results do not depend on
// scheduling.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	results := make([]statistics.GameResult, s.config.Games)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)
	for i := range s.config.Games {
		g.Go(func() error {
			result, err := s.playGameWithTimeout(gctx, i)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// Watch plays a single game, logging every decision at info level.
func (s *Simulator) Watch(ctx context.Context) (statistics.GameResult, error) {
	return s.playGame(ctx, 0, true)
}

// playGameWithTimeout runs a single game with timeout protection
func (s *Simulator) playGameWithTimeout(ctx context.Context, index int) (statistics.GameResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	result, err := s.playGame(ctx, index, false)
	if errors.Is(err, context.DeadlineExceeded) {
		return result, fmt.Errorf("game %d timed out after %v (seed: %d)", index+1, s.config.Timeout, result.Seed)
	}
	if err != nil {
		return result, fmt.Errorf("game %d (seed: %d): %w", index+1, result.Seed, err)
	}
	return result, nil
}

// playGame plays game index to completion. Player slots rotate one seat per
// game so no slot always moves first.
func (s *Simulator) playGame(ctx context.Context, index int, watch bool) (statistics.GameResult, error) {
	n := len(s.config.Players)
	gameSeed := randutil.Derive(s.config.Seed, uint64(index))
	result := statistics.GameResult{
		Seed:    gameSeed,
		Winner:  -1,
		Rewards: make([]float64, n),
		Seats:   make([]int, n),
	}

	game, err := session.NewGame(n, gameSeed)
	if err != nil {
		return result, err
	}

	// slotAt[seat] is the player slot sitting there.
	slotAt := make([]int, n)
	seats := make([]play.Seat, n)
	for seat := range n {
		slot := (seat + index) % n
		slotAt[seat] = slot
		result.Seats[slot] = seat

		var p agent.Player = s.newPlayer(s.config.Players[slot], randutil.Derive(gameSeed, uint64(slot+1)))
		name := fmt.Sprintf("%s#%d", p.Name(), slot)
		if watch {
			p = &watchedPlayer{Player: p, name: name, logger: s.logger}
		}
		seats[seat] = play.Seat{Name: name, Player: p}
	}

	match, err := play.NewMatch(game, seats, play.WithMaxTurns(s.config.MaxTurns), play.WithLogger(s.logger))
	if err != nil {
		return result, err
	}

	events, err := match.AdvanceAI(ctx)
	for _, ev := range events {
		result.Rewards[slotAt[ev.Seat]] += ev.Result.Reward
		if watch {
			s.logger.Info("turn", "player", ev.Name, "action", ev.Result.Action, "reward", ev.Result.Reward)
		}
	}
	result.Turns = len(events)

	switch {
	case errors.Is(err, play.ErrTurnLimit):
		result.Truncated = true
		s.logger.Debug("game truncated", "game", index+1, "turns", result.Turns)
		return result, nil
	case err != nil:
		return result, err
	}

	winner, done := match.Done()
	if !done {
		return result, fmt.Errorf("game ended without a winner after %d turns", result.Turns)
	}
	result.Winner = slotAt[winner]
	if watch {
		s.logger.Info("game over", "winner", seats[winner].Name, "turns", result.Turns)
	}
	return result, nil
}

func (s *Simulator) newPlayer(kind string, seed int64) agent.Player {
	rng := randutil.New(seed)
	if kind == KindPolicy {
		return agent.NewPolicyPlayer(agent.NewPolicy(s.config.Estimator, rng), s.config.Epsilon)
	}
	return agent.NewRandomPlayer(rng)
}

// watchedPlayer logs what a seat saw and chose.
type watchedPlayer struct {
	agent.Player
	name   string
	logger *log.Logger
}

func (w *watchedPlayer) Decide(ctx context.Context, obs agent.Observation) (uno.Action, error) {
	action, err := w.Player.Decide(ctx, obs)
	if err != nil {
		return action, err
	}
	w.logger.Info("decide", "player", w.name, "top", obs.Top, "hand", fmt.Sprint(obs.Hand), "action", action)
	return action, nil
}

// PrintSummary writes a summary of simulation results to w
func PrintSummary(w io.Writer, stats *statistics.Statistics, players []string) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS: %s ===\n", strings.Join(players, " vs "))
	fmt.Fprintf(w, "Games played: %d (%d truncated)\n", stats.Games, stats.Truncated)

	fmt.Fprintf(w, "\n=== GAME LENGTH ===\n")
	fmt.Fprintf(w, "Mean: %.1f turns (95%% CI [%.1f, %.1f])\n", stats.Mean(), low, high)
	fmt.Fprintf(w, "Median: %.1f turns, Std Dev: %.1f\n", stats.Median(), stats.StdDev())
	fmt.Fprintf(w, "Percentiles: P5=%.0f, P25=%.0f, P75=%.0f, P95=%.0f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== PLAYERS ===\n")
	for i, ps := range stats.Players {
		kind := "?"
		if i < len(players) {
			kind = players[i]
		}
		wlow, whigh := stats.WinRateCI95(i)
		fmt.Fprintf(w, "Player %d (%s): %d wins, %.1f%% [%.1f%%, %.1f%%], mean reward %.1f\n",
			i, kind, ps.Wins, stats.WinRate(i)*100, wlow*100, whigh*100, stats.MeanReward(i))
	}
}
