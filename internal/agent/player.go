package agent

import (
	"context"
	rand "math/rand/v2"

	"github.com/lox/unoforbots/internal/features"
	"github.com/lox/unoforbots/internal/uno"
)

// Observation is what a seat sees when it is due to act.
type Observation struct {
	Seat  int
	Hand  []uno.Card
	Valid []uno.Card
	Top   uno.Card
	State features.Vector
}

// Observe builds the observation for seat.
func Observe(t *uno.Table, seat int) Observation {
	top, _ := t.Top()
	return Observation{
		Seat:  seat,
		Hand:  t.Hand(seat),
		Valid: t.ValidActions(seat),
		Top:   top,
		State: features.EncodeState(t, seat),
	}
}

// Player decides a seat's turn. Returned wildcards carry their chosen color.
type Player interface {
	Name() string
	Decide(ctx context.Context, obs Observation) (uno.Action, error)
}

// RandomPlayer plays a uniformly random valid card and draws when it has none.
type RandomPlayer struct {
	rng *rand.Rand
}

// NewRandomPlayer returns a random player.
func NewRandomPlayer(rng *rand.Rand) *RandomPlayer {
	return &RandomPlayer{rng: rng}
}

func (p *RandomPlayer) Name() string { return "random" }

func (p *RandomPlayer) Decide(_ context.Context, obs Observation) (uno.Action, error) {
	if len(obs.Valid) == 0 {
		return uno.DrawAction(), nil
	}
	c := obs.Valid[p.rng.IntN(len(obs.Valid))]
	if c.Colorless() {
		c = c.Resolve(uno.Colors[p.rng.IntN(len(uno.Colors))])
	}
	return uno.PlayAction(c), nil
}

// PolicyPlayer acts through a Policy at a fixed exploration rate and names
// wild colors after the color it holds most.
type PolicyPlayer struct {
	policy  *Policy
	epsilon float64
}

// NewPolicyPlayer returns a player driven by policy.
func NewPolicyPlayer(policy *Policy, epsilon float64) *PolicyPlayer {
	return &PolicyPlayer{policy: policy, epsilon: epsilon}
}

func (p *PolicyPlayer) Name() string { return "policy" }

func (p *PolicyPlayer) Decide(ctx context.Context, obs Observation) (uno.Action, error) {
	action, err := p.policy.Act(ctx, obs.State, obs.Valid, p.epsilon)
	if err != nil {
		return uno.Action{}, err
	}
	return ResolveWild(action, obs.Seat, obs.Hand, uno.MajorityColorChooser), nil
}

// ResolveWild fills in the color of a colorless wildcard play using choose.
// Other actions are returned unchanged.
func ResolveWild(a uno.Action, seat int, hand []uno.Card, choose uno.ColorChooser) uno.Action {
	if a.Draw || !a.Card.Colorless() {
		return a
	}
	return uno.PlayAction(a.Card.Resolve(choose(seat, hand)))
}
