package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/session"
)

// ConsolePrompt is written before every console read
const ConsolePrompt = "> "

// consoleSink writes replies and chat to the operator's terminal
type consoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *consoleSink) Deliver(msg model.ChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	switch {
	case msg.IsServer() || msg.Target != model.NoPlayer:
		_, err = fmt.Fprintln(c.w, msg.Text)
	default:
		_, err = fmt.Fprintf(c.w, "[chat] %s: %s\n", msg.FromName, msg.Text)
	}
	return err
}

func (c *consoleSink) prompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.w, ConsolePrompt)
}

// Console reads operator command lines and runs them through the
// multiplexer as a single console session
type Console struct {
	mux      *Multiplexer
	sessions *session.Registry
	in       io.Reader
	out      *consoleSink
	role     policy.Role
	logger   *slog.Logger
}

// NewConsole creates a console reading from in and writing to out. Every
// console line runs with role.
func NewConsole(mux *Multiplexer, sessions *session.Registry, in io.Reader, out io.Writer, role policy.Role, logger *slog.Logger) *Console {
	return &Console{
		mux:      mux,
		sessions: sessions,
		in:       in,
		out:      &consoleSink{w: out},
		role:     role,
		logger:   logger.With(slog.String("component", "console")),
	}
}

// Run reads lines until in is exhausted, ctx is cancelled or the
// multiplexer closes
func (c *Console) Run(ctx context.Context) error {
	sess := c.sessions.Open(session.Config{
		Label:     "console",
		Transport: session.TransportConsole,
		Role:      c.role,
		Sink:      c.out,
	})
	defer c.sessions.Close(sess.ID())

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	c.out.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("read console: %w", err)
			}
			return nil
		case line := <-lines:
			c.logger.Info("console input", slog.String("line", line))
			_, err := c.mux.Execute(ctx, sess, line)
			if errors.Is(err, ErrClosed) {
				return nil
			}
			if err != nil && ctx.Err() == nil {
				c.logger.Warn("console command not executed", slog.Any("error", err))
			}
			c.out.prompt()
		}
	}
}
