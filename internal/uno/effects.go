package uno

// effect applies a rank's consequences after the card reached the discard
// pile and returns how many seats the turn moves.
type effect func(t *Table, player int, out *Outcome) int

// effectFor maps every rank to its effect. Number ranks and Wild only pass
// the turn.
func effectFor(r Rank) effect {
	switch r {
	case Skip:
		return skipEffect
	case Reverse:
		return reverseEffect
	case DrawTwo:
		return penaltyEffect(2)
	case WildDrawFour:
		return penaltyEffect(4)
	case Wild, Zero, One, Two, Three, Four, Five, Six, Seven, Eight, Nine:
		return passEffect
	}
	panic("uno: no effect for rank " + r.String())
}

func passEffect(*Table, int, *Outcome) int {
	return 1
}

func skipEffect(*Table, int, *Outcome) int {
	return 2
}

// reverseEffect flips the direction. With two players it doubles as a skip.
func reverseEffect(t *Table, _ int, _ *Outcome) int {
	t.direction = -t.direction
	if len(t.hands) == 2 {
		return 2
	}
	return 1
}

func penaltyEffect(n int) effect {
	return func(t *Table, player int, out *Outcome) int {
		victim := t.seat(player, 1)
		drawn := t.DrawCards(victim, n)
		out.Target = victim
		out.Penalty = len(drawn)
		return 1
	}
}
