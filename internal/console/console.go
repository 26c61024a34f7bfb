// Package console is the plain text front end: it prints the table each
// turn and reads the human's choice from a readline prompt.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lox/unoforbots/internal/play"
	"github.com/lox/unoforbots/internal/uno"
)

// LineReader is the subset of *readline.Instance the console uses.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// NewReadline returns a prompt with history and completion for the console
// commands.
func NewReadline(historyFile string) (*readline.Instance, error) {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("draw"),
		readline.PcItem("hand"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
		readline.PcItem("red"),
		readline.PcItem("yellow"),
		readline.PcItem("green"),
		readline.PcItem("blue"),
	)
	return readline.NewEx(&readline.Config{
		Prompt:          "uno> ",
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
}

// Console runs a match in a terminal.
type Console struct {
	match  *play.Match
	in     LineReader
	out    io.Writer
	styles *Styles
}

// New returns a console for match reading from in and writing to out.
func New(match *play.Match, in LineReader, out io.Writer, noColor bool) *Console {
	return &Console{
		match:  match,
		in:     in,
		out:    out,
		styles: NewStyles(out, noColor),
	}
}

// Run plays until the game ends, the human quits or input is exhausted.
func (c *Console) Run(ctx context.Context) error {
	for {
		events, err := c.match.AdvanceAI(ctx)
		for _, ev := range events {
			c.printEvent(ev)
		}
		if errors.Is(err, play.ErrTurnLimit) {
			fmt.Fprintln(c.out, c.styles.Info.Render("Turn limit reached, game abandoned."))
			return nil
		}
		if err != nil {
			return err
		}

		if winner, done := c.match.Done(); done {
			c.printWinner(winner)
			return nil
		}

		c.printTable()
		quit, err := c.humanTurn()
		if err != nil {
			return err
		}
		if quit {
			fmt.Fprintln(c.out, c.styles.Info.Render("Goodbye."))
			return nil
		}
	}
}

// humanTurn prompts until the human applied an action or asked to quit.
func (c *Console) humanTurn() (bool, error) {
	seat := c.match.Human()
	for {
		valid := c.match.Game().ValidActions(seat)
		c.in.SetPrompt(c.styles.Prompt.Render("uno> "))
		line, err := c.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(c.out, c.styles.Info.Render("Use 'quit' to exit"))
			continue
		}
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "q", "quit", "exit":
			return true, nil
		case "h", "hand":
			c.printHand(valid)
			continue
		case "?", "help":
			c.printHelp()
			continue
		}

		action, err := play.ParseInput(line, valid)
		if err != nil {
			fmt.Fprintln(c.out, c.styles.Error.Render(err.Error()))
			continue
		}
		if play.NeedsColor(action) {
			color, quit, err := c.promptColor()
			if err != nil || quit {
				return quit, err
			}
			action = uno.PlayAction(action.Card.Resolve(color))
		}

		ev, err := c.match.PlayHuman(action)
		if err != nil {
			fmt.Fprintln(c.out, c.styles.Error.Render(err.Error()))
			continue
		}
		c.printEvent(ev)
		return false, nil
	}
}

func (c *Console) promptColor() (uno.Color, bool, error) {
	for {
		c.in.SetPrompt(c.styles.Prompt.Render("color (r/y/g/b)> "))
		line, err := c.in.Readline()
		if errors.Is(err, io.EOF) {
			return uno.NoColor, true, nil
		}
		if err != nil && !errors.Is(err, readline.ErrInterrupt) {
			return uno.NoColor, false, err
		}
		color, err := uno.ParseColor(strings.TrimSpace(line))
		if err == nil {
			return color, false, nil
		}
		fmt.Fprintln(c.out, c.styles.Error.Render("choose red, yellow, green or blue"))
	}
}

func (c *Console) printTable() {
	v := c.match.Game().View()
	fmt.Fprintf(c.out, "\nTop: %s   Deck: %d   Direction: %s\n", c.styles.Card(v.Top), v.DeckLen, v.Direction)
	for i, seat := range c.match.Seats() {
		name := c.styles.Player.Render(seat.Name)
		if i == v.Current {
			name = c.styles.Active.Render("> " + seat.Name)
		}
		fmt.Fprintf(c.out, "  %s: %d cards\n", name, v.HandSizes[i])
	}
	c.printHand(c.match.Game().ValidActions(c.match.Human()))
}

func (c *Console) printHand(valid []uno.Card) {
	hand := c.match.Game().Hand(c.match.Human())
	parts := make([]string, len(hand))
	for i, card := range hand {
		parts[i] = c.styles.Card(card)
	}
	fmt.Fprintf(c.out, "Your hand: %s\n", strings.Join(parts, ", "))

	if len(valid) == 0 {
		fmt.Fprintln(c.out, c.styles.Info.Render("No playable cards, enter 0 to draw."))
		return
	}
	for i, card := range valid {
		fmt.Fprintf(c.out, "  %s %s\n", c.styles.Index.Render(fmt.Sprintf("%d.", i+1)), c.styles.Card(card))
	}
	fmt.Fprintln(c.out, c.styles.Info.Render("  0. draw"))
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, c.styles.Info.Render("Commands: <n> play card n, 0/d draw, hand, help, quit"))
}

func (c *Console) printEvent(ev play.Event) {
	fmt.Fprintln(c.out, c.styles.Info.Render(ev.String()))
}

func (c *Console) printWinner(winner int) {
	name := c.match.Seats()[winner].Name
	if winner == c.match.Human() {
		fmt.Fprintln(c.out, c.styles.Success.Render("You win!"))
		return
	}
	fmt.Fprintln(c.out, c.styles.Success.Render(name+" wins."))
}
