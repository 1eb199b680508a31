package commands

import (
	"context"
	"strings"

	"github.com/mcoot/arenactl/internal/command"
	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/policy"
)

const (
	helpBanner  = "~~~~~~~~~~~~ COMMAND LIST ~~~~~~~~~~~~"
	helpFooter  = "~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~"
	helpPerRow  = 3
	helpDivider = "| "
)

var categoryOrder = []string{
	command.CategoryGeneral,
	command.CategoryAccount,
	command.CategoryModeration,
	command.CategoryAdmin,
}

func helpCommand(reg *command.Registry) command.Command {
	return command.Command{
		Name:        "help",
		Usage:       "/help [command]",
		Help:        "List the commands you can use, or describe one",
		Category:    command.CategoryGeneral,
		Requirement: policy.Anyone,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			visible := reg.Visible(inv.Session.Role())

			if name := inv.Arg(0); name != "" {
				name = strings.ToLower(strings.TrimPrefix(name, "/"))
				for _, cmd := range visible {
					if cmd.Name == name {
						inv.Replyf("%s - %s", cmd.Usage, cmd.Help)
						return nil
					}
				}
				return command.Fail(command.OutcomeNotFound, command.ReplyUnknown, nil)
			}

			inv.Reply(helpBanner)
			for _, category := range categoryOrder {
				var names []string
				for _, cmd := range visible {
					if cmd.Category == category {
						names = append(names, cmd.Name)
					}
				}
				if len(names) == 0 {
					continue
				}
				inv.Reply("[" + category + "]")
				for _, row := range helpRows(names) {
					inv.Reply(row)
				}
			}
			inv.Reply(helpFooter)
			return nil
		},
	}
}

// helpRows lays names out in padded columns
func helpRows(names []string) []string {
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}

	var rows []string
	var row strings.Builder
	for i, n := range names {
		row.WriteString("/" + n + strings.Repeat(" ", width-len(n)) + " " + helpDivider)
		if (i+1)%helpPerRow == 0 || i == len(names)-1 {
			rows = append(rows, strings.TrimSpace(row.String()))
			row.Reset()
		}
	}
	return rows
}

func idCommand() command.Command {
	return command.Command{
		Name:        "id",
		Usage:       "/id",
		Help:        "Show your player id",
		Category:    command.CategoryGeneral,
		Requirement: policy.Anyone,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			id := inv.Session.PlayerID()
			if id == model.NoPlayer {
				inv.Replyf("You control no player (session %d)", inv.Session.ID())
				return nil
			}
			inv.Replyf("Your PlayerID is %d", id)
			return nil
		},
	}
}

func skinCommand() command.Command {
	return command.Command{
		Name:        "skin",
		Usage:       "/skin [name]",
		Help:        "Set or clear your skin while not in game",
		Category:    command.CategoryGeneral,
		Requirement: policy.Anyone,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			id := inv.Session.PlayerID()
			if len(inv.World.Cells(id)) > 0 {
				return command.Reject("ERROR: Cannot change skin while player in game!")
			}
			skin := inv.Arg(0)
			if err := inv.World.SetSkin(id, skin); err != nil {
				return err
			}
			if skin == "" {
				inv.Reply("Your skin was removed")
			} else {
				inv.Reply("Your skin set to " + skin)
			}
			return nil
		},
	}
}

func commitDieCommand() command.Command {
	return command.Command{
		Name:        "commitdie",
		Usage:       "/commitdie",
		Help:        "Turn all your cells into food",
		Category:    command.CategoryGeneral,
		Requirement: policy.Anyone,
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			id := inv.Session.PlayerID()
			if len(inv.World.Cells(id)) == 0 {
				return command.Reject("You cannot kill yourself, because you're still not joined to the game!")
			}
			for {
				cells := inv.World.Cells(id)
				if len(cells) == 0 {
					break
				}
				removed, ok := inv.World.RemoveCell(cells[0].ID)
				if !ok {
					continue
				}
				inv.World.AddFood(removed.Position, removed.Size, removed.Color)
			}
			inv.Reply("You commited die...")
			inv.Reply("RIP you...")
			return nil
		},
	}
}
