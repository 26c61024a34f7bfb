package replay

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"os"

	"github.com/tinylib/msgp/msgp"

	"github.com/lox/unoforbots/internal/features"
	"github.com/lox/unoforbots/internal/fileutil"
	"github.com/lox/unoforbots/internal/uno"
)

const fileVersion = 1

// EncodeMsg writes t as a msgpack map.
func (t *Transition) EncodeMsg(w *msgp.Writer) error {
	if err := w.WriteMapHeader(5); err != nil {
		return err
	}
	if err := w.WriteString("state"); err != nil {
		return err
	}
	if err := writeVector(w, t.State); err != nil {
		return err
	}
	if err := w.WriteString("action"); err != nil {
		return err
	}
	if err := writeAction(w, t.Action); err != nil {
		return err
	}
	if err := w.WriteString("reward"); err != nil {
		return err
	}
	if err := w.WriteFloat64(t.Reward); err != nil {
		return err
	}
	if err := w.WriteString("next"); err != nil {
		return err
	}
	if err := writeVector(w, t.Next); err != nil {
		return err
	}
	if err := w.WriteString("done"); err != nil {
		return err
	}
	return w.WriteBool(t.Done)
}

// DecodeMsg reads a transition written by EncodeMsg. Unknown keys are skipped.
func (t *Transition) DecodeMsg(r *msgp.Reader) error {
	n, err := r.ReadMapHeader()
	if err != nil {
		return err
	}
	for range n {
		key, err := r.ReadString()
		if err != nil {
			return err
		}
		switch key {
		case "state":
			t.State, err = readVector(r)
		case "action":
			t.Action, err = readAction(r)
		case "reward":
			t.Reward, err = r.ReadFloat64()
		case "next":
			t.Next, err = readVector(r)
		case "done":
			t.Done, err = r.ReadBool()
		default:
			err = r.Skip()
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	if len(t.State) != features.StateSize || len(t.Next) != features.StateSize {
		return fmt.Errorf("state widths %d/%d, want %d", len(t.State), len(t.Next), features.StateSize)
	}
	return nil
}

func writeVector(w *msgp.Writer, v features.Vector) error {
	if err := w.WriteArrayHeader(uint32(len(v))); err != nil {
		return err
	}
	for _, x := range v {
		if err := w.WriteFloat64(x); err != nil {
			return err
		}
	}
	return nil
}

func readVector(r *msgp.Reader) (features.Vector, error) {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	if n != features.StateSize {
		return nil, fmt.Errorf("vector has %d entries, want %d", n, features.StateSize)
	}
	v := make(features.Vector, n)
	for i := range v {
		if v[i], err = r.ReadFloat64(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Actions are stored as [draw, id, color, rank] so resolved wilds keep their
// color.
func writeAction(w *msgp.Writer, a uno.Action) error {
	if err := w.WriteArrayHeader(4); err != nil {
		return err
	}
	if err := w.WriteBool(a.Draw); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(a.Card.ID)); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(a.Card.Color)); err != nil {
		return err
	}
	return w.WriteUint8(uint8(a.Card.Rank))
}

func readAction(r *msgp.Reader) (uno.Action, error) {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return uno.Action{}, err
	}
	if n != 4 {
		return uno.Action{}, fmt.Errorf("action has %d fields, want 4", n)
	}
	var a uno.Action
	if a.Draw, err = r.ReadBool(); err != nil {
		return a, err
	}
	id, err := r.ReadUint8()
	if err != nil {
		return a, err
	}
	color, err := r.ReadUint8()
	if err != nil {
		return a, err
	}
	rank, err := r.ReadUint8()
	if err != nil {
		return a, err
	}
	if a.Draw {
		return a, nil
	}
	// Played cards are always resolved, so wilds carry their chosen color
	// and everything else its catalog color.
	cardID, c := uno.CardID(id), uno.Color(color)
	if !cardID.Known() || !c.Valid() {
		return a, fmt.Errorf("invalid card id=%d color=%d rank=%d", id, color, rank)
	}
	card := uno.CardByID(cardID)
	if uno.Rank(rank) != card.Rank || (!card.Colorless() && c != card.Color) {
		return a, fmt.Errorf("invalid card id=%d color=%d rank=%d", id, color, rank)
	}
	a.Card = card.Resolve(c)
	return a, nil
}

// Save writes the memory contents, oldest first, to path atomically.
func (m *Memory) Save(path string) error {
	snap := m.Snapshot()
	return fileutil.WriteAtomic(path, 0o644, func(out io.Writer) error {
		w := msgp.NewWriter(out)
		if err := w.WriteArrayHeader(2); err != nil {
			return err
		}
		if err := w.WriteInt(fileVersion); err != nil {
			return err
		}
		if err := w.WriteArrayHeader(uint32(len(snap))); err != nil {
			return err
		}
		for i := range snap {
			if err := snap[i].EncodeMsg(w); err != nil {
				return err
			}
		}
		return w.Flush()
	})
}

// Load reads a memory saved with Save. It always returns a usable memory: a
// missing or corrupt file yields an empty one together with the error, so
// callers can log and carry on. When the file holds more than capacity
// transitions the most recent ones are kept.
func Load(path string, capacity int, rng *rand.Rand) (*Memory, error) {
	m := NewMemory(capacity, rng)

	f, err := os.Open(path)
	if err != nil {
		return m, err
	}
	defer f.Close()

	transitions, err := decodeFile(msgp.NewReader(f))
	if err != nil {
		return m, fmt.Errorf("decode %s: %w", path, err)
	}
	for _, t := range transitions {
		m.Push(t)
	}
	return m, nil
}

// IsNotExist reports whether err from Load means there was no file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func decodeFile(r *msgp.Reader) ([]Transition, error) {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	if n != 2 {
		return nil, fmt.Errorf("header has %d fields, want 2", n)
	}
	version, err := r.ReadInt()
	if err != nil {
		return nil, err
	}
	if version != fileVersion {
		return nil, fmt.Errorf("unsupported version %d", version)
	}
	count, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	out := make([]Transition, 0, min(count, 1<<16))
	for range count {
		var t Transition
		if err := t.DecodeMsg(r); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
