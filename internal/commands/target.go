package commands

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mcoot/arenactl/internal/command"
	"github.com/mcoot/arenactl/internal/model"
)

// resolveTarget returns the player named by argument n, or the caller's own
// player when the argument is absent
func resolveTarget(inv *command.Invocation, n int) (target model.PlayerInfo, self bool, err error) {
	id, given, err := inv.PlayerID(n)
	if err != nil {
		return model.PlayerInfo{}, false, err
	}
	if !given {
		info, ok := inv.World.Player(inv.Session.PlayerID())
		if !ok {
			return model.PlayerInfo{}, true, command.Reject("ERROR: you do not control a player, give an id")
		}
		return info, true, nil
	}
	info, ok := inv.World.Player(id)
	if !ok {
		return model.PlayerInfo{}, false, fmt.Errorf("id %d: %w", id, command.ErrTargetNotFound)
	}
	return info, id == inv.Session.PlayerID(), nil
}

// massArg parses a positive mass argument and returns the matching size
func massArg(inv *command.Invocation, n int) (float64, error) {
	mass, err := inv.Float(n, "mass")
	if err != nil {
		return 0, err
	}
	if mass <= 0 {
		return 0, command.Argf("mass", "mass must be greater than 0")
	}
	return model.SizeFromMass(mass), nil
}

// notify sends a direct server message to a player
func notify(inv *command.Invocation, target model.PlayerID, text string) {
	inv.World.SendChat(model.ChatMessage{Target: target, Text: text})
}

func formatMass(size float64) string {
	m := model.MassFromSize(size)
	return strconv.FormatFloat(math.Round(m*100)/100, 'f', -1, 64)
}
