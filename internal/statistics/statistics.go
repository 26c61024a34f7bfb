package statistics

import (
	"fmt"
	"math"
	"sort"
)

// GameResult represents the outcome of a single simulated game. Per-player
// fields are indexed by player slot, not by table seat.
type GameResult struct {
	Seed      int64     // RNG seed for this game (for replay)
	Winner    int       // winning player slot, -1 when truncated
	Turns     int       // turns applied before the game ended
	Truncated bool      // stopped by the turn limit
	Rewards   []float64 // summed step rewards per player slot
	Seats     []int     // table seat each player slot sat in
}

// PlayerStats tracks results for one player slot
type PlayerStats struct {
	Games      int
	Wins       int
	SumReward  float64
	SumReward2 float64
	SeatWins   []int // wins by table seat
}

// Statistics tracks simulation statistics across games
type Statistics struct {
	Games     int
	Truncated int
	SumTurns  float64
	SumTurns2 float64   // Sum of squares for variance calculation
	Values    []float64 // Turn counts for median/percentile calculation

	Players []PlayerStats
}

// Add incorporates a new game result into the statistics
func (s *Statistics) Add(result GameResult) {
	turns := float64(result.Turns)
	s.Games++
	s.SumTurns += turns
	s.SumTurns2 += turns * turns
	s.Values = append(s.Values, turns)

	for len(s.Players) < len(result.Rewards) {
		s.Players = append(s.Players, PlayerStats{})
	}
	for i, r := range result.Rewards {
		ps := &s.Players[i]
		ps.Games++
		ps.SumReward += r
		ps.SumReward2 += r * r
	}

	if result.Truncated || result.Winner < 0 {
		s.Truncated++
		return
	}
	if result.Winner < len(s.Players) {
		ps := &s.Players[result.Winner]
		ps.Wins++
		if result.Winner < len(result.Seats) {
			seat := result.Seats[result.Winner]
			for len(ps.SeatWins) <= seat {
				ps.SeatWins = append(ps.SeatWins, 0)
			}
			ps.SeatWins[seat]++
		}
	}
}

// Mean returns the mean game length in turns
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumTurns / float64(s.Games)
}

// Variance returns the sample variance of game length
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumTurns2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// StdDev returns the sample standard deviation of game length
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median game length
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the game length at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// WinRate returns the share of all games won by player.
func (s *Statistics) WinRate(player int) float64 {
	if player < 0 || player >= len(s.Players) || s.Games == 0 {
		return 0
	}
	return float64(s.Players[player].Wins) / float64(s.Games)
}

// WinRateCI95 returns the normal-approximation 95% interval for WinRate,
// clamped to [0, 1].
func (s *Statistics) WinRateCI95(player int) (float64, float64) {
	if s.Games == 0 {
		return 0, 0
	}
	p := s.WinRate(player)
	margin := 1.96 * math.Sqrt(p*(1-p)/float64(s.Games))
	return math.Max(0, p-margin), math.Min(1, p+margin)
}

// MeanReward returns player's mean summed reward per game
func (s *Statistics) MeanReward(player int) float64 {
	if player < 0 || player >= len(s.Players) {
		return 0
	}
	ps := s.Players[player]
	if ps.Games == 0 {
		return 0
	}
	return ps.SumReward / float64(ps.Games)
}

// Validate performs consistency checks on the collected data
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}

	if len(s.Values) != s.Games {
		return fmt.Errorf("values array length (%d) does not match games count (%d)",
			len(s.Values), s.Games)
	}

	wins := 0
	for i, ps := range s.Players {
		if ps.Games != s.Games {
			return fmt.Errorf("player %d played %d of %d games", i, ps.Games, s.Games)
		}
		wins += ps.Wins
	}
	if wins+s.Truncated != s.Games {
		return fmt.Errorf("wins (%d) plus truncated (%d) does not match games (%d)",
			wins, s.Truncated, s.Games)
	}

	return nil
}
