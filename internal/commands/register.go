// Package commands contains the built-in commands of the arena server.
package commands

import (
	"log/slog"
	"time"

	"github.com/mcoot/arenactl/internal/audit"
	"github.com/mcoot/arenactl/internal/command"
	"github.com/mcoot/arenactl/internal/dependencies/clock"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/services/auth"
)

// Options are the behavior switches exposed through configuration
type Options struct {
	// KillAllIncludesBots makes killall clear bot and minion cells too
	KillAllIncludesBots bool
	// StatusCountsMinionsAsBots folds minions into the status bot count
	StatusCountsMinionsAsBots bool
}

// DefaultOptions returns the default behavior switches
func DefaultOptions() Options {
	return Options{
		KillAllIncludesBots:       true,
		StatusCountsMinionsAsBots: true,
	}
}

// Deps are the collaborators the built-in commands need besides the world
type Deps struct {
	Auth    *auth.Service
	Audit   audit.Sink
	Clock   clock.Clock
	Started time.Time
	Logger  *slog.Logger
	Options Options

	// RequestShutdown asks the process to stop. It must not block.
	RequestShutdown func()
}

var (
	staff = policy.AnyOf(policy.Moderator, policy.Admin)
	admin = policy.AtLeast(policy.Admin)
)

// Register adds every built-in command to reg
func Register(reg *command.Registry, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Logger = deps.Logger.With(slog.String("component", "commands"))

	reg.MustRegister(
		helpCommand(reg),
		idCommand(),
		skinCommand(),
		commitDieCommand(),

		loginCommand(deps),
		logoutCommand(deps),

		broadcastCommand(),
		killAllCommand(deps),
		massCommand(),
		minionCommand(),
		statusCommand(deps),

		spawnMassCommand(),
		listPlayersCommand(),
		directMessageCommand(),
		addBotsCommand(deps),
		shutdownCommand(deps),
		speedCommand(),
		mergeCommand(),
		rainbowCommand(),
		configCommand(),
	)
}
