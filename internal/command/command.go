// Package command holds the command registry and the dispatcher that parses,
// authorizes and executes command lines on behalf of a session.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/session"
	"github.com/mcoot/arenactl/internal/world"
)

// Handler executes one invocation of a command
type Handler func(ctx context.Context, inv *Invocation) error

// Command is a registered command. Requirement is declared here and is the
// only thing consulted when deciding who may run or see the command.
type Command struct {
	Name        string
	Usage       string
	Help        string
	Category    string
	Requirement policy.Requirement
	Handler     Handler
}

// Categories in help order
const (
	CategoryGeneral    = "general"
	CategoryAccount    = "account"
	CategoryModeration = "moderation"
	CategoryAdmin      = "admin"
)

// Invocation is what a handler sees: the caller, the world and the arguments.
// Nothing in it survives past the call.
type Invocation struct {
	Session *session.Session
	World   world.Bridge
	Name    string
	Args    []string
}

// Reply sends a line to the caller only
func (inv *Invocation) Reply(text string) {
	inv.Session.Reply(text)
}

// Replyf formats and sends a line to the caller only
func (inv *Invocation) Replyf(format string, args ...any) {
	inv.Session.Reply(fmt.Sprintf(format, args...))
}

// Arg returns the nth positional argument, or "" if absent
func (inv *Invocation) Arg(n int) string {
	if n < 0 || n >= len(inv.Args) {
		return ""
	}
	return inv.Args[n]
}

// Rest joins the arguments from n onwards with single spaces
func (inv *Invocation) Rest(n int) string {
	if n >= len(inv.Args) {
		return ""
	}
	return strings.Join(inv.Args[n:], " ")
}

// CallerName is the caller's player name, or its session label when it
// controls no player
func (inv *Invocation) CallerName() string {
	if p, ok := inv.World.Player(inv.Session.PlayerID()); ok {
		return p.Name
	}
	return inv.Session.Label()
}
