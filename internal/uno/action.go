package uno

// Action is a single turn decision: draw a card, or play Card from the hand.
type Action struct {
	Draw bool
	Card Card
}

// DrawAction returns the action of drawing one card.
func DrawAction() Action {
	return Action{Draw: true}
}

// PlayAction returns the action of playing c.
func PlayAction(c Card) Action {
	return Action{Card: c}
}

// String returns "draw" or the played card.
func (a Action) String() string {
	if a.Draw {
		return "draw"
	}
	return a.Card.String()
}

// Reward scores one turn for the acting player from the action taken and the
// player's hand size before and after it.
func Reward(action Action, oldHandSize, newHandSize int) float64 {
	if action.Draw {
		return -1
	}

	reward := 5.0
	switch action.Card.Rank {
	case DrawTwo, WildDrawFour:
		reward += 3
	case Skip, Reverse:
		reward += 2
	}

	if shrink := oldHandSize - newHandSize; shrink > 0 {
		reward += float64(2 * shrink)
	}

	switch newHandSize {
	case 0:
		reward += 50
	case 1:
		reward += 10
	}
	return reward
}
