// Package transport feeds the console and websocket sessions into a single
// command executor and routes replies back out.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/mcoot/arenactl/internal/command"
	"github.com/mcoot/arenactl/internal/metrics"
	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/session"
	"github.com/mcoot/arenactl/internal/world"
)

// ErrClosed is returned when input arrives after shutdown began
var ErrClosed = errors.New("multiplexer is closed")

// DefaultQueueSize bounds inputs waiting for the executor
const DefaultQueueSize = 256

type job struct {
	session *session.Session
	label   string
	run     func(ctx context.Context) command.Outcome
	done    chan command.Outcome
}

// Multiplexer serializes inputs from every session onto one executor.
// Each input runs to completion before the next one starts, so inputs
// interleave only at message granularity.
type Multiplexer struct {
	dispatcher *command.Dispatcher
	world      world.Bridge
	logger     *slog.Logger

	queue   chan job
	stopped chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewMultiplexer creates a multiplexer. Call Run to start executing.
func NewMultiplexer(dispatcher *command.Dispatcher, w world.Bridge, queueSize int, logger *slog.Logger) *Multiplexer {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Multiplexer{
		dispatcher: dispatcher,
		world:      w,
		logger:     logger.With(slog.String("component", "multiplexer")),
		queue:      make(chan job, queueSize),
		stopped:    make(chan struct{}),
	}
}

// Run executes queued inputs until Shutdown drains the queue or ctx is
// cancelled
func (m *Multiplexer) Run(ctx context.Context) {
	defer close(m.stopped)
	m.logger.Info("executor started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("executor stopped", slog.String("reason", "context cancelled"))
			return
		case j, ok := <-m.queue:
			if !ok {
				m.logger.Info("executor stopped", slog.String("reason", "drained"))
				return
			}
			metrics.QueueDepth.Set(float64(len(m.queue)))
			outcome := m.execute(ctx, j)
			if j.done != nil {
				j.done <- outcome
			}
		}
	}
}

func (m *Multiplexer) execute(ctx context.Context, j job) (outcome command.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("input panicked",
				slog.String("input", j.label),
				slog.Uint64("session_id", uint64(j.session.ID())),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			outcome = command.OutcomePanic
		}
	}()
	return j.run(ctx)
}

// Submit queues a command line for sess without waiting for it to run
func (m *Multiplexer) Submit(ctx context.Context, sess *session.Session, line string) error {
	return m.enqueue(ctx, m.commandJob(sess, line, nil))
}

// Execute queues a command line and waits for its outcome
func (m *Multiplexer) Execute(ctx context.Context, sess *session.Session, line string) (command.Outcome, error) {
	done := make(chan command.Outcome, 1)
	if err := m.enqueue(ctx, m.commandJob(sess, line, done)); err != nil {
		return "", err
	}
	select {
	case outcome := <-done:
		return outcome, nil
	case <-m.stopped:
		select {
		case outcome := <-done:
			return outcome, nil
		default:
			return "", ErrClosed
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// SubmitChat queues a chat line from sess for broadcast
func (m *Multiplexer) SubmitChat(ctx context.Context, sess *session.Session, text string) error {
	return m.enqueue(ctx, job{
		session: sess,
		label:   "chat",
		run: func(ctx context.Context) command.Outcome {
			name := sess.Label()
			if p, ok := m.world.Player(sess.PlayerID()); ok {
				name = p.Name
			}
			m.world.SendChat(model.ChatMessage{
				From:     sess.PlayerID(),
				FromName: name,
				Text:     text,
			})
			return command.OutcomeOK
		},
	})
}

// SubmitFunc queues an arbitrary world action for sess
func (m *Multiplexer) SubmitFunc(ctx context.Context, sess *session.Session, label string, fn func(ctx context.Context)) error {
	return m.enqueue(ctx, job{
		session: sess,
		label:   label,
		run: func(ctx context.Context) command.Outcome {
			fn(ctx)
			return command.OutcomeOK
		},
	})
}

func (m *Multiplexer) commandJob(sess *session.Session, line string, done chan command.Outcome) job {
	return job{
		session: sess,
		label:   "command",
		done:    done,
		run: func(ctx context.Context) command.Outcome {
			return m.dispatcher.Execute(ctx, sess, line)
		},
	}
}

func (m *Multiplexer) enqueue(ctx context.Context, j job) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	select {
	case m.queue <- j:
		metrics.QueueDepth.Set(float64(len(m.queue)))
		return nil
	case <-m.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting input and waits for queued inputs to finish
func (m *Multiplexer) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()

	select {
	case <-m.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Closed reports whether Shutdown has been called
func (m *Multiplexer) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
