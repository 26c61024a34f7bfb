// Package play drives a game between AI players and at most one human seat.
// Front ends call AdvanceAI to let the machines move, then PlayHuman with
// whatever the human entered.
package play

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/unoforbots/internal/agent"
	"github.com/lox/unoforbots/internal/session"
	"github.com/lox/unoforbots/internal/uno"
)

// DefaultMaxTurns bounds a match so a stalled game still ends.
const DefaultMaxTurns = 1000

var (
	ErrTurnLimit = errors.New("play: turn limit reached")
	ErrNoHuman   = errors.New("play: match has no human seat")
)

// Seat is one participant. A nil Player marks the human seat.
type Seat struct {
	Name   string
	Player agent.Player
}

// Event reports one applied turn.
type Event struct {
	Seat   int
	Name   string
	Result uno.StepResult
}

// String renders the event for logs and transcripts.
func (e Event) String() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Result)
}

// Match pairs a game with the players in its seats.
type Match struct {
	game     *session.Game
	seats    []Seat
	human    int
	maxTurns int
	logger   *log.Logger
}

// MatchOption customises a Match.
type MatchOption func(*Match)

// WithMaxTurns overrides DefaultMaxTurns.
func WithMaxTurns(n int) MatchOption {
	return func(m *Match) { m.maxTurns = n }
}

// WithLogger sets the logger; turns are logged at debug level.
func WithLogger(l *log.Logger) MatchOption {
	return func(m *Match) { m.logger = l }
}

// NewMatch seats players at game. seats must have one entry per player and
// at most one human.
func NewMatch(game *session.Game, seats []Seat, opts ...MatchOption) (*Match, error) {
	if len(seats) != game.Players() {
		return nil, fmt.Errorf("play: %d seats for a %d player game", len(seats), game.Players())
	}
	m := &Match{game: game, seats: seats, human: -1, maxTurns: DefaultMaxTurns}
	for i, s := range seats {
		if s.Player != nil {
			continue
		}
		if m.human >= 0 {
			return nil, errors.New("play: more than one human seat")
		}
		m.human = i
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	return m, nil
}

// Game returns the underlying game.
func (m *Match) Game() *session.Game { return m.game }

// Seats returns the seat list.
func (m *Match) Seats() []Seat { return m.seats }

// Human returns the human seat, or -1.
func (m *Match) Human() int { return m.human }

// Done reports the winner once the game is over.
func (m *Match) Done() (int, bool) { return m.game.CheckWinner() }

// HumanToAct reports whether the game waits on the human seat.
func (m *Match) HumanToAct() bool {
	if _, done := m.Done(); done {
		return false
	}
	return m.human >= 0 && m.game.CurrentPlayer() == m.human
}

// AdvanceAI lets AI seats act until the human is due or the game ends. It
// returns the turns applied, and ErrTurnLimit once the match ran too long.
func (m *Match) AdvanceAI(ctx context.Context) ([]Event, error) {
	var events []Event
	for {
		if _, done := m.Done(); done {
			return events, nil
		}
		if m.HumanToAct() {
			return events, nil
		}
		if m.game.View().Turns >= m.maxTurns {
			return events, ErrTurnLimit
		}
		if err := ctx.Err(); err != nil {
			return events, err
		}

		seat := m.game.CurrentPlayer()
		action, err := m.seats[seat].Player.Decide(ctx, m.game.Observe(seat))
		if err != nil {
			return events, fmt.Errorf("%s: %w", m.seats[seat].Name, err)
		}
		ev, err := m.apply(seat, action)
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}

// PlayHuman applies the human seat's action. A colorless wildcard must be
// resolved by the caller first.
func (m *Match) PlayHuman(action uno.Action) (Event, error) {
	if m.human < 0 {
		return Event{}, ErrNoHuman
	}
	if !action.Draw && action.Card.Colorless() {
		return Event{}, uno.ErrInvalidColor
	}
	return m.apply(m.human, action)
}

func (m *Match) apply(seat int, action uno.Action) (Event, error) {
	turn, err := m.game.StepAs(seat, action)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Seat: seat, Name: m.seats[seat].Name, Result: turn.Result}
	m.logger.Debug("turn", "seat", seat, "player", ev.Name, "action", turn.Result.Action, "reward", turn.Result.Reward)
	return ev, nil
}
