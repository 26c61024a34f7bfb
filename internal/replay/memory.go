// Package replay stores self-play transitions in a bounded FIFO memory and
// samples training batches from it.
package replay

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/lox/unoforbots/internal/features"
	"github.com/lox/unoforbots/internal/uno"
)

// DefaultCapacity is the memory size used when none is configured.
const DefaultCapacity = 2000

// ErrInsufficientSamples is returned by Sample when the memory holds fewer
// transitions than requested.
var ErrInsufficientSamples = errors.New("replay: not enough transitions")

// Transition is one recorded step. It is immutable once pushed; State and
// Next are both encoded from the acting player's viewpoint.
type Transition struct {
	State  features.Vector
	Action uno.Action
	Reward float64
	Next   features.Vector
	Done   bool
}

// Memory is a fixed-capacity ring of transitions. Pushing beyond capacity
// evicts the oldest entry. It is safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	rng   *rand.Rand
	buf   []Transition
	start int // index of the oldest transition
	size  int
}

// NewMemory returns an empty memory. A non-positive capacity uses
// DefaultCapacity.
func NewMemory(capacity int, rng *rand.Rand) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{
		rng: rng,
		buf: make([]Transition, capacity),
	}
}

// Push appends t, evicting the oldest transition when full.
func (m *Memory) Push(t Transition) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.size < len(m.buf) {
		m.buf[(m.start+m.size)%len(m.buf)] = t
		m.size++
		return
	}
	m.buf[m.start] = t
	m.start = (m.start + 1) % len(m.buf)
}

// Len returns the number of stored transitions.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Capacity returns the maximum number of stored transitions.
func (m *Memory) Capacity() int {
	return len(m.buf)
}

// Sample draws n distinct transitions uniformly at random.
func (m *Memory) Sample(n int) ([]Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 {
		return nil, nil
	}
	if m.size < n {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrInsufficientSamples, m.size, n)
	}

	// Partial Fisher-Yates over logical positions.
	idx := make([]int, m.size)
	for i := range idx {
		idx[i] = i
	}
	out := make([]Transition, n)
	for i := range n {
		j := i + m.rng.IntN(m.size-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = m.buf[(m.start+idx[i])%len(m.buf)]
	}
	return out, nil
}

// Snapshot returns the stored transitions, oldest first.
func (m *Memory) Snapshot() []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Transition, m.size)
	for i := range out {
		out[i] = m.buf[(m.start+i)%len(m.buf)]
	}
	return out
}

// Stats summarises the stored transitions.
type Stats struct {
	Len        int
	Capacity   int
	MeanReward float64
	DoneRatio  float64
}

// Stats returns summary statistics over the current contents.
func (m *Memory) Stats() Stats {
	snap := m.Snapshot()
	s := Stats{Len: len(snap), Capacity: m.Capacity()}
	if len(snap) == 0 {
		return s
	}
	var done int
	for _, t := range snap {
		s.MeanReward += t.Reward
		if t.Done {
			done++
		}
	}
	s.MeanReward /= float64(len(snap))
	s.DoneRatio = float64(done) / float64(len(snap))
	return s
}
