package session

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/lox/unoforbots/internal/randutil"
	"github.com/lox/unoforbots/internal/replay"
)

// Manager tracks live games, at most one per key.
type Manager struct {
	logger   *log.Logger
	recorder *replay.Memory
	seed     int64
	dealt    atomic.Uint64

	mu    sync.RWMutex
	games map[string]*Game
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithRecorder records every successful step of every game into mem.
func WithRecorder(mem *replay.Memory) ManagerOption {
	return func(m *Manager) { m.recorder = mem }
}

// WithSeed fixes the seed games are dealt from. Zero uses the clock.
func WithSeed(seed int64) ManagerOption {
	return func(m *Manager) { m.seed = seed }
}

// NewManager constructs an empty manager. A nil logger discards output.
func NewManager(logger *log.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Manager{
		logger: logger.WithPrefix("session"),
		games:  make(map[string]*Game),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.seed = randutil.Resolve(m.seed)
	return m
}

// NewGame deals a game for key. It fails with ErrGameExists while another
// game for key is running.
func (m *Manager) NewGame(key string, players int) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.games[key]; ok {
		return nil, fmt.Errorf("%w for %q (%s)", ErrGameExists, key, existing.ID)
	}

	g, err := NewGame(players, randutil.Derive(m.seed, m.dealt.Add(1)))
	if err != nil {
		return nil, err
	}
	g.Key = key
	g.recorder = m.recorder
	g.onFinish = m.release
	m.games[key] = g

	m.logger.Info("game started", "key", key, "game_id", g.ID, "players", players)
	return g, nil
}

// Get returns the running game for key.
func (m *Manager) Get(key string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[key]
	if !ok {
		return nil, fmt.Errorf("%w for %q", ErrGameNotFound, key)
	}
	return g, nil
}

// Lookup finds a running game by its ID.
func (m *Manager) Lookup(id string) (*Game, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.games {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// Stop abandons the game for key.
func (m *Manager) Stop(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[key]
	if !ok {
		return fmt.Errorf("%w for %q", ErrGameNotFound, key)
	}
	delete(m.games, key)
	m.logger.Info("game stopped", "key", key, "game_id", g.ID)
	return nil
}

// List returns a snapshot of the running games ordered by key.
func (m *Manager) List() []View {
	m.mu.RLock()
	games := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, g)
	}
	m.mu.RUnlock()

	// Game locks are taken after the manager lock is released; finishing
	// games take them in the opposite order.
	views := make([]View, len(games))
	for i, g := range games {
		views[i] = g.View()
	}
	slices.SortFunc(views, func(a, b View) int { return strings.Compare(a.Key, b.Key) })
	return views
}

// Len returns the number of running games.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// release drops a finished game unless key was reused meanwhile.
func (m *Manager) release(g *Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.games[g.Key]; ok && cur == g {
		delete(m.games, g.Key)
		m.logger.Info("game finished", "key", g.Key, "game_id", g.ID)
	}
}
