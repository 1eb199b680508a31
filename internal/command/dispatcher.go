package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/mcoot/arenactl/internal/metrics"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/session"
	"github.com/mcoot/arenactl/internal/world"
)

// Replies for dispatcher-level failures
const (
	ReplyUnknown       = "ERROR: Unknown command, type /help for command list"
	ReplyAccessDenied  = "ERROR: access denied!"
	ReplyInternalError = "ERROR: internal error while running command"
)

// Dispatcher turns raw lines into command executions. It holds no
// per-session state; the caller's role is read from the session each time.
type Dispatcher struct {
	registry *Registry
	world    world.Bridge
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher and freezes registry
func NewDispatcher(registry *Registry, w world.Bridge, logger *slog.Logger) *Dispatcher {
	registry.Freeze()
	return &Dispatcher{
		registry: registry,
		world:    w,
		logger:   logger.With(slog.String("component", "dispatcher")),
	}
}

// Registry returns the frozen registry
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Execute parses, authorizes and runs one line for sess. Every failure is
// reported to sess only; nothing escapes as a panic.
func (d *Dispatcher) Execute(ctx context.Context, sess *session.Session, line string) Outcome {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return OutcomeEmpty
	}
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))

	cmd, ok := d.registry.Resolve(name)
	if !ok {
		sess.Reply(ReplyUnknown)
		d.finish(sess, "unknown", OutcomeNotFound, 0)
		return OutcomeNotFound
	}

	role := sess.Role()
	if !policy.Satisfies(role, cmd.Requirement) {
		sess.Reply(ReplyAccessDenied)
		d.finish(sess, cmd.Name, OutcomeAccessDenied, 0)
		return OutcomeAccessDenied
	}

	inv := &Invocation{
		Session: sess,
		World:   d.world,
		Name:    cmd.Name,
		Args:    fields[1:],
	}

	start := time.Now()
	outcome := d.run(ctx, cmd, inv)
	elapsed := time.Since(start)
	metrics.CommandDuration.WithLabelValues(cmd.Name).Observe(elapsed.Seconds())
	d.finish(sess, cmd.Name, outcome, elapsed)
	return outcome
}

func (d *Dispatcher) run(ctx context.Context, cmd Command, inv *Invocation) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command panicked",
				slog.String("command", cmd.Name),
				slog.Uint64("session_id", uint64(inv.Session.ID())),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			inv.Reply(ReplyInternalError)
			outcome = OutcomePanic
		}
	}()

	err := cmd.Handler(ctx, inv)
	if err == nil {
		return OutcomeOK
	}
	return d.report(inv, err)
}

// report maps a handler error onto a reply and an outcome
func (d *Dispatcher) report(inv *Invocation, err error) Outcome {
	var argErr *ArgError
	var failure *Failure
	switch {
	case errors.As(err, &argErr):
		inv.Reply("ERROR: " + argErr.Msg)
		return OutcomeParseError
	case errors.As(err, &failure):
		inv.Reply(failure.Reply)
		return failure.Outcome
	case errors.Is(err, ErrTargetNotFound):
		inv.Reply("ERROR: " + err.Error())
		return OutcomeNotFound
	default:
		d.logger.Warn("command failed",
			slog.String("command", inv.Name),
			slog.Uint64("session_id", uint64(inv.Session.ID())),
			slog.Any("error", err))
		inv.Reply(fmt.Sprintf("ERROR: %v", err))
		return OutcomeError
	}
}

func (d *Dispatcher) finish(sess *session.Session, name string, outcome Outcome, elapsed time.Duration) {
	metrics.CommandsTotal.WithLabelValues(name, string(outcome)).Inc()
	d.logger.Debug("command dispatched",
		slog.Uint64("session_id", uint64(sess.ID())),
		slog.String("command", name),
		slog.String("outcome", string(outcome)),
		slog.String("role", sess.Role().String()),
		slog.Duration("duration", elapsed))
}
