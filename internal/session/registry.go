package session

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/mcoot/arenactl/internal/dependencies/clock"
	"github.com/mcoot/arenactl/internal/metrics"
	"github.com/mcoot/arenactl/internal/model"
)

// Registry tracks live sessions and routes chat to them
type Registry struct {
	clock  clock.Clock
	logger *slog.Logger
	nextID atomic.Uint64

	mu       sync.RWMutex
	sessions map[ID]*Session
	byPlayer map[model.PlayerID]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry(clk clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		clock:    clk,
		logger:   logger.With(slog.String("component", "sessions")),
		sessions: make(map[ID]*Session),
		byPlayer: make(map[model.PlayerID]*Session),
	}
}

// Open creates and registers a new session
func (r *Registry) Open(cfg Config) *Session {
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = r.clock.Now()
	}
	s := New(ID(r.nextID.Add(1)), cfg)

	r.mu.Lock()
	r.sessions[s.id] = s
	if s.playerID != model.NoPlayer {
		r.byPlayer[s.playerID] = s
	}
	count := len(r.sessions)
	r.mu.Unlock()

	metrics.SessionsActive.WithLabelValues(string(s.transport)).Inc()
	r.logger.Info("session opened",
		slog.Uint64("session_id", uint64(s.id)),
		slog.String("transport", string(s.transport)),
		slog.String("remote_addr", s.remoteAddr),
		slog.Int("total_sessions", count))
	return s
}

// Close removes a session. Closing an unknown session is a no-op.
func (r *Registry) Close(id ID) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		if cur, found := r.byPlayer[s.playerID]; found && cur == s {
			delete(r.byPlayer, s.playerID)
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if ok {
		metrics.SessionsActive.WithLabelValues(string(s.transport)).Dec()
		r.logger.Info("session closed",
			slog.Uint64("session_id", uint64(id)),
			slog.Duration("connection_duration", r.clock.Now().Sub(s.createdAt)),
			slog.Int("total_sessions", count))
	}
}

// Get returns the session with the given ID
func (r *Registry) Get(id ID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// ByPlayer returns the session controlling a player, if it is still connected
func (r *Registry) ByPlayer(id model.PlayerID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byPlayer[id]
	return s, ok
}

// All returns the live sessions ordered by ID
func (r *Registry) All() []*Session {
	r.mu.RLock()
	result := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		result = append(result, s)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].id < result[j].id })
	return result
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// DeliverChat routes a message to its target session, or to every session
// when it is a broadcast. Messages to players without a session are dropped.
func (r *Registry) DeliverChat(msg model.ChatMessage) {
	if !msg.IsBroadcast() {
		if s, ok := r.ByPlayer(msg.Target); ok {
			s.Deliver(msg)
		}
		return
	}
	for _, s := range r.All() {
		s.Deliver(msg)
	}
}
