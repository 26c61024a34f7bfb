package replay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unoforbots/internal/randutil"
)

func tr(reward float64) Transition {
	return Transition{Reward: reward}
}

func rewards(ts []Transition) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = t.Reward
	}
	return out
}

func TestMemoryEvictsOldest(t *testing.T) {
	m := NewMemory(3, randutil.New(1))
	for i := 1; i <= 4; i++ {
		m.Push(tr(float64(i)))
	}

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []float64{2, 3, 4}, rewards(m.Snapshot()))
}

func TestMemoryWrapsManyTimes(t *testing.T) {
	m := NewMemory(4, randutil.New(1))
	for i := range 11 {
		m.Push(tr(float64(i)))
	}
	assert.Equal(t, []float64{7, 8, 9, 10}, rewards(m.Snapshot()))
}

func TestMemoryDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewMemory(0, randutil.New(1)).Capacity())
}

func TestSampleWithoutReplacement(t *testing.T) {
	m := NewMemory(10, randutil.New(5))
	for i := range 10 {
		m.Push(tr(float64(i)))
	}

	batch, err := m.Sample(10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, rewards(batch))

	batch, err = m.Sample(4)
	require.NoError(t, err)
	seen := map[float64]bool{}
	for _, r := range rewards(batch) {
		assert.False(t, seen[r], "duplicate sample %v", r)
		seen[r] = true
	}
}

func TestSampleInsufficient(t *testing.T) {
	m := NewMemory(10, randutil.New(5))
	m.Push(tr(1))

	_, err := m.Sample(2)
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestSampleIsUniform(t *testing.T) {
	m := NewMemory(5, randutil.New(11))
	for i := range 8 {
		m.Push(tr(float64(i)))
	}

	counts := map[float64]int{}
	for range 5000 {
		batch, err := m.Sample(1)
		require.NoError(t, err)
		counts[batch[0].Reward]++
	}
	require.Len(t, counts, 5, "only live entries are sampled")
	for r, c := range counts {
		assert.InDelta(t, 1000, c, 150, "reward %v", r)
	}
}

func TestMemoryConcurrentPush(t *testing.T) {
	m := NewMemory(100, randutil.New(1))
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				m.Push(tr(float64(g*100 + i)))
				if i%10 == 0 {
					_, _ = m.Sample(1)
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, m.Len())
}

func TestStats(t *testing.T) {
	m := NewMemory(4, randutil.New(1))
	assert.Equal(t, Stats{Capacity: 4}, m.Stats())

	m.Push(Transition{Reward: 2})
	m.Push(Transition{Reward: 4, Done: true})
	s := m.Stats()
	assert.Equal(t, 2, s.Len)
	assert.InDelta(t, 3.0, s.MeanReward, 1e-9)
	assert.InDelta(t, 0.5, s.DoneRatio, 1e-9)
}
