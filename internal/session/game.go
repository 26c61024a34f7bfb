// Package session hosts live games for an embedding front end such as a chat
// bot: one exclusively locked table per game, keyed by channel.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lox/unoforbots/internal/agent"
	"github.com/lox/unoforbots/internal/features"
	"github.com/lox/unoforbots/internal/randutil"
	"github.com/lox/unoforbots/internal/replay"
	"github.com/lox/unoforbots/internal/uno"
)

var (
	ErrGameExists   = errors.New("session: a game is already running")
	ErrGameNotFound = errors.New("session: no such game")
	ErrNotYourTurn  = errors.New("session: not your turn")
	ErrNotPlayable  = errors.New("session: card cannot be played on the discard top")
)

// Turn is the record of one applied step.
type Turn struct {
	Transition replay.Transition
	Result     uno.StepResult
}

// Game is a single live table. All methods are safe for concurrent use;
// calls are serialised on the game's own lock.
type Game struct {
	ID      string
	Key     string
	Created time.Time

	mu       sync.Mutex
	table    *uno.Table
	turns    int
	recorder *replay.Memory
	onFinish func(*Game)
}

// NewGame deals a standalone game for players seats.
func NewGame(players int, seed int64) (*Game, error) {
	table, err := uno.NewTable(randutil.New(seed), uno.TableConfig{
		Players:      players,
		ColorChooser: uno.MajorityColorChooser,
	})
	if err != nil {
		return nil, err
	}
	return &Game{
		ID:      uuid.NewString(),
		Created: time.Now(),
		table:   table,
	}, nil
}

// Players returns the number of seats.
func (g *Game) Players() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.table.Players()
}

// CurrentPlayer returns the seat due to act.
func (g *Game) CurrentPlayer() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.table.CurrentPlayer()
}

// Hand returns a copy of player's hand.
func (g *Game) Hand(player int) []uno.Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.table.Hand(player)
}

// ValidActions returns the cards player could play on the current top.
func (g *Game) ValidActions(player int) []uno.Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.table.ValidActions(player)
}

// Observe returns what seat sees when it is due to act.
func (g *Game) Observe(seat int) agent.Observation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return agent.Observe(g.table, seat)
}

// CheckWinner returns the winning seat once a hand is empty.
func (g *Game) CheckWinner() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.table.CheckWinner()
}

// View is a consistent snapshot of the public table state.
type View struct {
	ID        string
	Key       string
	Players   int
	Current   int
	Direction uno.Direction
	Top       uno.Card
	HandSizes []int
	DeckLen   int
	Turns     int
	Winner    int // -1 while in progress
}

// View returns the public state.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

func (g *Game) viewLocked() View {
	v := View{
		ID:        g.ID,
		Key:       g.Key,
		Players:   g.table.Players(),
		Current:   g.table.CurrentPlayer(),
		Direction: g.table.Direction(),
		HandSizes: make([]int, g.table.Players()),
		DeckLen:   g.table.DeckLen(),
		Turns:     g.turns,
	}
	v.Top, _ = g.table.Top()
	for p := range v.HandSizes {
		v.HandSizes[p] = g.table.HandSize(p)
	}
	v.Winner, _ = g.table.CheckWinner()
	return v
}

// Step applies action for the current player and returns the transition.
func (g *Game) Step(action uno.Action) (replay.Transition, error) {
	turn, err := g.step(-1, action)
	if err != nil {
		return replay.Transition{}, err
	}
	g.finished(turn)
	return turn.Transition, nil
}

// StepAs applies action on behalf of player, rejecting it when another seat
// is due.
func (g *Game) StepAs(player int, action uno.Action) (Turn, error) {
	if player < 0 {
		return Turn{}, uno.ErrInvalidPlayer
	}
	turn, err := g.step(player, action)
	if err != nil {
		return Turn{}, err
	}
	g.finished(turn)
	return turn, nil
}

// step runs one turn under the lock. A negative player means whoever is due.
func (g *Game) step(player int, action uno.Action) (Turn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	current := g.table.CurrentPlayer()
	if player >= 0 && player != current {
		return Turn{}, fmt.Errorf("%w: player %d is due", ErrNotYourTurn, current)
	}
	return g.stepLocked(current, action)
}

func (g *Game) stepLocked(player int, action uno.Action) (Turn, error) {
	if !action.Draw {
		id := action.Card.ID
		if !id.Known() {
			return Turn{}, fmt.Errorf("%w: unknown card id %d", uno.ErrCardNotInHand, id)
		}
		// Only the color of a wildcard is the caller's choice.
		card := uno.CardByID(id)
		if card.Colorless() && action.Card.Color.Valid() {
			card = card.Resolve(action.Card.Color)
		}
		top, ok := g.table.Top()
		if ok && !card.Rank.IsWild() && !card.PlayableOn(top) {
			return Turn{}, fmt.Errorf("%w: %s on %s", ErrNotPlayable, card, top)
		}
		action = uno.PlayAction(card)
	}

	state := features.EncodeState(g.table, player)
	res, err := g.table.Step(action)
	if err != nil {
		return Turn{}, err
	}
	g.turns++

	tr := replay.Transition{
		State:  state,
		Action: res.Action,
		Reward: res.Reward,
		Next:   features.EncodeState(g.table, player),
		Done:   res.Done,
	}
	if g.recorder != nil {
		g.recorder.Push(tr)
	}
	return Turn{Transition: tr, Result: res}, nil
}

func (g *Game) finished(turn Turn) {
	if turn.Result.Done && g.onFinish != nil {
		g.onFinish(g)
	}
}
