package session

import (
	"sync"
	"time"

	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/policy"
)

// ID uniquely identifies a session for the lifetime of the process
type ID uint64

// Transport identifies where a session's input comes from
type Transport string

const (
	TransportConsole   Transport = "console"
	TransportWebsocket Transport = "websocket"
)

// Sink delivers chat messages to whoever sits behind a session.
// Implementations must be safe for concurrent use.
type Sink interface {
	Deliver(msg model.ChatMessage) error
}

// Session is one caller of the command pipeline
type Session struct {
	id         ID
	label      string
	transport  Transport
	remoteAddr string
	playerID   model.PlayerID
	sink       Sink
	createdAt  time.Time

	mu       sync.RWMutex
	role     policy.Role
	authName string
}

// Config holds the fields a session is created with
type Config struct {
	Label      string
	Transport  Transport
	RemoteAddr string
	PlayerID   model.PlayerID
	Role       policy.Role
	Sink       Sink
	CreatedAt  time.Time
}

// New creates a session. Network sessions normally start as Guest.
func New(id ID, cfg Config) *Session {
	return &Session{
		id:         id,
		label:      cfg.Label,
		transport:  cfg.Transport,
		remoteAddr: cfg.RemoteAddr,
		playerID:   cfg.PlayerID,
		sink:       cfg.Sink,
		role:       cfg.Role,
		createdAt:  cfg.CreatedAt,
	}
}

func (s *Session) ID() ID { return s.id }
func (s *Session) Label() string { return s.label }
func (s *Session) Transport() Transport { return s.transport }
func (s *Session) RemoteAddr() string { return s.remoteAddr }
func (s *Session) PlayerID() model.PlayerID { return s.playerID }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) IsConsole() bool { return s.transport == TransportConsole }

// Role returns the session's current role
func (s *Session) Role() policy.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// AuthName returns the authenticated account name, if any
func (s *Session) AuthName() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authName, s.authName != ""
}

// Elevate records a successful login
func (s *Session) Elevate(role policy.Role, accountName string) {
	s.mu.Lock()
	s.role = role
	s.authName = accountName
	s.mu.Unlock()
}

// Reset drops the session back to Guest with no authenticated name
func (s *Session) Reset() {
	s.mu.Lock()
	s.role = policy.Guest
	s.authName = ""
	s.mu.Unlock()
}

// Reply sends a server line to this session only
func (s *Session) Reply(text string) {
	s.Deliver(model.ChatMessage{Target: s.playerID, Text: text})
}

// Deliver hands a message to the session's sink. Delivery failures are
// dropped; chat has no acknowledgement.
func (s *Session) Deliver(msg model.ChatMessage) {
	if s.sink == nil {
		return
	}
	_ = s.sink.Deliver(msg)
}
