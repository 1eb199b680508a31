package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/arenactl/internal/audit"
	"github.com/mcoot/arenactl/internal/command"
	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/settings"
)

// Color effect timing
const (
	RainbowDuration = 10 * time.Second
	RainbowInterval = 100 * time.Millisecond
)

func spawnMassCommand() command.Command {
	return command.Command{
		Name:        "spawnmass",
		Usage:       "/spawnmass <mass> [id]",
		Help:        "Set the respawn mass of yourself or another player",
		Category:    command.CategoryAdmin,
		Requirement: admin,
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
				inv.Reply("Warn: missing ID arguments. This will change your spawnmass.")
			}
			if err := inv.World.SetSpawnSize(target.ID, size); err != nil {
				return err
			}
			inv.Replyf("Set spawnmass of %s to %s", target.Name, formatMass(size))
			if !self {
				notify(inv, target.ID, fmt.Sprintf("%s changed your spawn mass to %s", inv.CallerName(), formatMass(size)))
			}
			return nil
		},
	}
}

func listPlayersCommand() command.Command {
	return command.Command{
		Name:        "pl",
		Usage:       "/pl",
		Help:        "List connected players",
		Category:    command.CategoryAdmin,
		Requirement: admin,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			listed := 0
			for _, p := range inv.World.Players() {
				if !p.Connected {
					continue
				}
				inv.Replyf("ID: %d - NICK: %s - IP: %s", p.ID, p.Name, playerAddress(p))
				listed++
			}
			if listed == 0 {
				inv.Reply("No players connected")
			}
			return nil
		},
	}
}

func playerAddress(p model.PlayerInfo) string {
	switch p.Kind {
	case model.KindMinion:
		return "[MINION]"
	case model.KindBot:
		return "BOT"
	default:
		return p.RemoteAddr
	}
}

func directMessageCommand() command.Command {
	return command.Command{
		Name:        "dm",
		Usage:       "/dm <id> <message>",
		Help:        "Send a private message to a player",
		Category:    command.CategoryAdmin,
		Requirement: admin,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			id, given, err := inv.PlayerID(0)
			if err != nil {
				return err
			}
			if !given {
				return command.Argf("id", "missing id argument!")
			}
			text := inv.Rest(1)
			if text == "" {
				return command.Argf("message", "missing message argument!")
			}
			target, ok := inv.World.Player(id)
			if !ok {
				return fmt.Errorf("id %d: %w", id, command.ErrTargetNotFound)
			}
			inv.World.SendChat(model.ChatMessage{
				From:     inv.Session.PlayerID(),
				FromName: inv.CallerName(),
				Target:   id,
				Text:     text,
			})
			inv.Replyf("Message sent to %s", target.Name)
			return nil
		},
	}
}

func addBotsCommand(deps Deps) command.Command {
	return command.Command{
		Name:        "addbot",
		Usage:       "/addbot <count>",
		Help:        "Add autonomous bots",
		Category:    command.CategoryAdmin,
		Requirement: admin,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			n, err := inv.Int(0, "count")
			if err != nil {
				return err
			}
			if n < 1 {
				return command.Argf("count", "count must be at least 1")
			}
			added := len(inv.World.AddBots(n))

			name, _ := inv.Session.AuthName()
			recordAudit(ctx, deps, audit.Entry{
				Action:    audit.ActionAddBots,
				SessionID: uint64(inv.Session.ID()),
				Address:   inv.Session.RemoteAddr(),
				Identity:  name,
				Role:      inv.Session.Role().String(),
				Detail:    fmt.Sprintf("ADDED %d BOTS", added),
			})
			inv.Replyf("Added %d Bots", added)
			return nil
		},
	}
}

func shutdownCommand(deps Deps) command.Command {
	return command.Command{
		Name:        "shutdown",
		Usage:       "/shutdown",
		Help:        "Stop the server",
		Category:    command.CategoryAdmin,
		Requirement: admin,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			name, _ := inv.Session.AuthName()
			deps.Logger.Warn(fmt.Sprintf("SHUTDOWN REQUEST FROM %s as %s", inv.Session.RemoteAddr(), name),
				slog.Uint64("session_id", uint64(inv.Session.ID())))

			recordAudit(ctx, deps, audit.Entry{
				Action:    audit.ActionShutdown,
				SessionID: uint64(inv.Session.ID()),
				Address:   inv.Session.RemoteAddr(),
				Identity:  name,
				Role:      inv.Session.Role().String(),
			})
			if err := deps.Audit.Flush(ctx); err != nil {
				deps.Logger.Error("audit flush before shutdown failed", slog.Any("error", err))
			}

			inv.Reply("Server is shutting down")
			if deps.RequestShutdown != nil {
				deps.RequestShutdown()
			}
			return nil
		},
	}
}

func speedCommand() command.Command {
	return command.Command{
		Name:        "speed",
		Usage:       "/speed [multiplier]",
		Help:        "Show or set the player speed multiplier",
		Category:    command.CategoryAdmin,
		Requirement: admin,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			store := inv.World.Settings()
			if inv.Arg(0) == "" {
				inv.Replyf("Current player speed: %g", store.Snapshot().PlayerSpeed)
				return nil
			}
			speed, err := SetSpeed(store, inv.Arg(0))
			if err != nil {
				return err
			}
			inv.Replyf("Set player speed to %g", speed)
			return nil
		},
	}
}

// SetSpeed sets the player speed multiplier. Console flags and the speed
// command share it.
func SetSpeed(store *settings.Store, raw string) (float64, error) {
	if err := store.Set(settings.FieldPlayerSpeed, raw); err != nil {
		return 0, command.Argf("multiplier", "%v", err)
	}
	return store.Snapshot().PlayerSpeed, nil
}

func mergeCommand() command.Command {
	return command.Command{
		Name:        "merge",
		Usage:       "/merge",
		Help:        "Force all your cells to merge",
		Category:    command.CategoryAdmin,
		Requirement: admin,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			id := inv.Session.PlayerID()
			if len(inv.World.Cells(id)) < 2 {
				return command.Reject("You need at least 2 cells to merge!")
			}
			if err := inv.World.SetMergeOverride(id, true); err != nil {
				return err
			}
			inv.Reply("All your cells are now merging!")
			return nil
		},
	}
}

func rainbowCommand() command.Command {
	return command.Command{
		Name:        "rainbow",
		Usage:       "/rainbow",
		Help:        "Cycle your cells through random colors for a while",
		Category:    command.CategoryAdmin,
		Requirement: admin,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			cells := inv.World.Cells(inv.Session.PlayerID())
			if len(cells) == 0 {
				return command.Reject("You need to have at least one cell to use this command!")
			}
			ids := make([]model.CellID, len(cells))
			for i, c := range cells {
				ids[i] = c.ID
			}

			sess := inv.Session
			inv.World.StartColorCycle(ids, RainbowDuration, RainbowInterval, func() {
				sess.Reply("Rainbow effect ended!")
			})
			inv.Replyf("Rainbow effect started! Your cells will change colors for %d seconds.", int(RainbowDuration.Seconds()))
			return nil
		},
	}
}

func configCommand() command.Command {
	return command.Command{
		Name:        "config",
		Usage:       "/config [field] [value]",
		Help:        "Show or change runtime settings",
		Category:    command.CategoryAdmin,
		Requirement: admin,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			store := inv.World.Settings()

			if inv.Arg(0) == "" {
				for _, f := range settings.Fields() {
					v, _ := store.Get(f)
					inv.Replyf("%s = %s", f, v)
				}
				return nil
			}

			field, err := settings.ParseField(inv.Arg(0))
			if err != nil {
				return command.Argf("field", "unknown field %q, type /config for the list", inv.Arg(0))
			}
			if inv.Arg(1) == "" {
				v, _ := store.Get(field)
				inv.Replyf("%s = %s", field, v)
				return nil
			}
			if err := store.Set(field, inv.Rest(1)); err != nil {
				if errors.Is(err, settings.ErrInvalidValue) {
					return command.Argf("value", "%v", err)
				}
				return err
			}
			v, _ := store.Get(field)
			inv.Replyf("Set %s to %s", field, v)
			return nil
		},
	}
}

func recordAudit(ctx context.Context, deps Deps, entry audit.Entry) {
	entry.At = deps.Clock.Now()
	if err := deps.Audit.Record(ctx, entry); err != nil {
		deps.Logger.Error("audit record failed",
			slog.String("action", string(entry.Action)),
			slog.Any("error", err))
	}
}
