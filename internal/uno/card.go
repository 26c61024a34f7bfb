package uno

import "fmt"

// Color is the suit of a card. NoColor marks an unresolved wildcard.
type Color uint8

const (
	Red Color = iota
	Yellow
	Green
	Blue
	NoColor
)

// Colors lists the four playable colors in index order.
var Colors = [...]Color{Red, Yellow, Green, Blue}

// Valid reports whether c is one of the four concrete colors.
func (c Color) Valid() bool {
	return c < NoColor
}

// String returns the color name
func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	case Green:
		return "Green"
	case Blue:
		return "Blue"
	case NoColor:
		return "Wild"
	default:
		return "?"
	}
}

// ParseColor accepts a color name or its first letter, case-insensitively.
func ParseColor(s string) (Color, error) {
	switch s {
	case "red", "Red", "r", "R":
		return Red, nil
	case "yellow", "Yellow", "y", "Y":
		return Yellow, nil
	case "green", "Green", "g", "G":
		return Green, nil
	case "blue", "Blue", "b", "B":
		return Blue, nil
	}
	return NoColor, fmt.Errorf("unknown color %q", s)
}

// Rank is the face of a card: ten numbers, three actions and two wilds.
type Rank uint8

const (
	Zero Rank = iota
	One
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Skip
	Reverse
	DrawTwo
	Wild
	WildDrawFour
)

// RankCount is the number of distinct ranks.
const RankCount = int(WildDrawFour) + 1

// IsWild reports whether cards of this rank are colorless until played.
func (r Rank) IsWild() bool {
	return r == Wild || r == WildDrawFour
}

// IsAction reports whether the rank carries a turn effect.
func (r Rank) IsAction() bool {
	return r >= Skip
}

// String returns the rank label
func (r Rank) String() string {
	switch {
	case r <= Nine:
		return fmt.Sprintf("%d", r)
	case r == Skip:
		return "Skip"
	case r == Reverse:
		return "Reverse"
	case r == DrawTwo:
		return "+2"
	case r == Wild:
		return "Wild"
	case r == WildDrawFour:
		return "Wild+4"
	default:
		return "?"
	}
}

// CardID identifies one physical card of the 108-card set.
type CardID uint8

// DeckSize is the number of physical cards in a full set.
const DeckSize = 108

// Card is an immutable card value. Cards in a hand or the deck always carry
// their catalog color; a played wildcard is represented by a resolved copy
// produced with Resolve.
type Card struct {
	ID    CardID
	Color Color
	Rank  Rank
}

// Colorless reports whether the card has no effective color yet.
func (c Card) Colorless() bool {
	return c.Color == NoColor
}

// Resolve returns a copy of a wildcard carrying the chosen color. Colored
// cards are returned unchanged.
func (c Card) Resolve(color Color) Card {
	if !c.Rank.IsWild() {
		return c
	}
	return Card{ID: c.ID, Color: color, Rank: c.Rank}
}

// PlayableOn reports whether c may be played on top. Colorless cards match
// anything and anything matches a colorless top.
func (c Card) PlayableOn(top Card) bool {
	if c.Colorless() || top.Colorless() {
		return true
	}
	return c.Color == top.Color || c.Rank == top.Rank
}

// String returns e.g. "Red 7", "Wild" or "Blue Wild+4" for a resolved wild.
func (c Card) String() string {
	if c.Colorless() {
		return c.Rank.String()
	}
	return fmt.Sprintf("%s %s", c.Color, c.Rank)
}

var catalog = buildCatalog()

// buildCatalog lays out the canonical set: one zero per color, two of every
// other colored rank, four Wild and four WildDrawFour. IDs follow this order.
func buildCatalog() [DeckSize]Card {
	var cards [DeckSize]Card
	i := 0
	add := func(color Color, rank Rank) {
		cards[i] = Card{ID: CardID(i), Color: color, Rank: rank}
		i++
	}

	for _, color := range Colors {
		add(color, Zero)
	}
	for _, color := range Colors {
		for rank := One; rank <= DrawTwo; rank++ {
			add(color, rank)
			add(color, rank)
		}
	}
	for range 4 {
		add(NoColor, Wild)
	}
	for range 4 {
		add(NoColor, WildDrawFour)
	}
	return cards
}

// Known reports whether id names a catalog card.
func (id CardID) Known() bool {
	return int(id) < DeckSize
}

// CardByID resolves a card id to its catalog value. id must be Known.
func CardByID(id CardID) Card {
	return catalog[id]
}

// Catalog returns a copy of the full 108-card set in id order.
func Catalog() []Card {
	out := make([]Card, DeckSize)
	copy(out, catalog[:])
	return out
}
