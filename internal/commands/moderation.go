package commands

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/mcoot/arenactl/internal/command"
	"github.com/mcoot/arenactl/internal/model"
)

const statusRule = "~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~"

func broadcastCommand() command.Command {
	return command.Command{
		Name:        "bc",
		Usage:       "/bc <message>",
		Help:        "Broadcast a server message to everyone",
		Category:    command.CategoryModeration,
		Requirement: staff,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			text := inv.Rest(0)
			if text == "" {
				return command.Argf("message", "missing message argument!")
			}
			inv.World.SendChat(model.ChatMessage{Text: "BROADCAST: " + text})
			return nil
		},
	}
}

func killAllCommand(deps Deps) command.Command {
	return command.Command{
		Name:        "killall",
		Usage:       "/killall",
		Help:        "Remove every player's cells",
		Category:    command.CategoryModeration,
		Requirement: staff,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			count := 0
			for _, p := range inv.World.Players() {
				if p.IsBotLike() && !deps.Options.KillAllIncludesBots {
					continue
				}
				for {
					cells := inv.World.Cells(p.ID)
					if len(cells) == 0 {
						break
					}
					if _, ok := inv.World.RemoveCell(cells[0].ID); ok {
						count++
					}
				}
			}
			inv.Replyf("You killed everyone. (%d cells.)", count)
			return nil
		},
	}
}

func massCommand() command.Command {
	return command.Command{
		Name:        "mass",
		Usage:       "/mass <mass> [id]",
		Help:        "Set the mass of your cells or another player's",
		Category:    command.CategoryModeration,
		Requirement: staff,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			size, err := massArg(inv, 0)
			if err != nil {
				return err
			}
			target, self, err := resolveTarget(inv, 1)
			if err != nil {
				return err
			}
			if inv.Arg(1) == "" {
				inv.Reply("Warn: missing ID arguments. This will change your mass.")
			}

			for _, c := range inv.World.Cells(target.ID) {
				// cells removed since the listing are skipped
				_ = inv.World.ResizeCell(c.ID, size)
			}
			inv.Replyf("Set mass of %s to %s", target.Name, formatMass(size))
			if !self {
				notify(inv, target.ID, fmt.Sprintf("%s changed your mass to %s", inv.CallerName(), formatMass(size)))
			}
			return nil
		},
	}
}

func minionCommand() command.Command {
	return command.Command{
		Name:        "minion",
		Usage:       "/minion [count|remove] [id]",
		Help:        "Toggle minions for yourself or another player",
		Category:    command.CategoryModeration,
		Requirement: staff,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			mode := inv.Arg(0)
			count, err := strconv.Atoi(mode)
			if err != nil {
				count = 1
			}
			if count < 1 {
				return command.Argf("count", "count must be at least 1")
			}

			target, self, err := resolveTarget(inv, 1)
			if err != nil {
				return err
			}
			if inv.Arg(1) == "" {
				inv.Reply("Warn: missing ID arguments. This will give you minions.")
			}
			if target.IsMinion() {
				return command.Reject("You cannot give minions to a minion!")
			}

			if target.MinionControl {
				if _, err := inv.World.RemoveMinions(target.ID); err != nil {
					return err
				}
				inv.Reply("Successfully removed minions for " + target.Name)
				if !self {
					notify(inv, target.ID, inv.CallerName()+" removed all of your minions.")
				}
				return nil
			}
			if mode == "remove" {
				return command.Reject(target.Name + " has no minions to remove")
			}

			added, err := inv.World.AddMinions(target.ID, count)
			if err != nil {
				return err
			}
			inv.Replyf("Added %d minions for %s", added, target.Name)
			if !self {
				notify(inv, target.ID, fmt.Sprintf("%s gave you %d minions.", inv.CallerName(), added))
			}
			return nil
		},
	}
}

func statusCommand(deps Deps) command.Command {
	return command.Command{
		Name:        "status",
		Usage:       "/status",
		Help:        "Show server load and population",
		Category:    command.CategoryModeration,
		Requirement: staff,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			for _, line := range StatusLines(inv.World.Status(), deps) {
				inv.Reply(line)
			}
			return nil
		},
	}
}

// StatusLines renders the status report
func StatusLines(status model.ServerStatus, deps Deps) []string {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	bots := status.Bots
	population := fmt.Sprintf("Players: %d - Bots: %d", status.Humans, bots+status.Minions)
	if !deps.Options.StatusCountsMinionsAsBots {
		population = fmt.Sprintf("Players: %d - Bots: %d - Minions: %d", status.Humans, bots, status.Minions)
	}

	uptime := deps.Clock.Now().Sub(deps.Started)
	tickMs := float64(status.TickAverage) / 1e6

	return []string{
		statusRule,
		fmt.Sprintf("Connected players: %d/%d", status.Total(), status.MaxConnections),
		population,
		fmt.Sprintf("Server has been running for %d minutes", int(uptime.Minutes())),
		fmt.Sprintf("Current memory usage: %.1f/%.1f mb", float64(mem.HeapAlloc)/(1<<20), float64(mem.HeapSys)/(1<<20)),
		fmt.Sprintf("Current game mode: %s", status.GameMode),
		fmt.Sprintf("Current update time: %.3f [ms]  (%s)", tickMs, LagLabel(status.TickAverage)),
		statusRule,
	}
}
