package command

import (
	"math"
	"strconv"

	"github.com/mcoot/arenactl/internal/model"
)

// Float parses argument n as a finite number
func (inv *Invocation) Float(n int, name string) (float64, error) {
	raw := inv.Arg(n)
	if raw == "" {
		return 0, Argf(name, "missing %s argument!", name)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, Argf(name, "%s must be a number, got %q", name, raw)
	}
	return f, nil
}

// Int parses argument n as a whole number
func (inv *Invocation) Int(n int, name string) (int, error) {
	raw := inv.Arg(n)
	if raw == "" {
		return 0, Argf(name, "missing %s argument!", name)
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, Argf(name, "%s must be a whole number, got %q", name, raw)
	}
	return i, nil
}

// PlayerID parses argument n as a player id. ok is false when the argument
// is absent, which callers treat as "the caller itself".
func (inv *Invocation) PlayerID(n int) (id model.PlayerID, ok bool, err error) {
	raw := inv.Arg(n)
	if raw == "" {
		return model.NoPlayer, false, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return model.NoPlayer, false, Argf("id", "id must be a positive player id, got %q", raw)
	}
	return model.PlayerID(v), true, nil
}
