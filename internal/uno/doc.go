// Package uno implements the Uno table engine used for play and self-play
// training.
//
// The main type is Table, which owns the deck, the hands, the discard pile,
// the current player and the turn direction for a single game.
//
// # Card Model
//
// The 108 physical cards live in a fixed catalog indexed by CardID. Hands and
// the deck hold ids, so duplicate-valued cards are never confused. A played
// wildcard is pushed onto the discard pile as a resolved copy carrying the
// chosen color; the catalog card stays colorless.
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	t, err := uno.NewTable(rng, uno.TableConfig{Players: 2})
//	if err != nil {
//	    return err
//	}
//	valid := t.ValidActions(t.CurrentPlayer())
//	action := uno.DrawAction()
//	if len(valid) > 0 {
//	    action = uno.PlayAction(valid[0])
//	}
//	res, err := t.Step(action)
//
// # Turn Order
//
// Every successful Step moves the turn exactly once. Skip, and Reverse with
// two players, move it two seats; everything else moves it one seat. Penalty
// cards make the next player draw, and that player then takes their turn.
//
// # Invariants
//
// After every operation deck + hands + discard hold exactly DeckSize cards.
// Step verifies this and returns ErrConservation if it is ever broken.
package uno
