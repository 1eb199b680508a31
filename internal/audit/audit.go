// Package audit records security-relevant operator actions: logins,
// logouts, shutdown requests and bot additions.
package audit

import (
	"context"
	"errors"
	"time"
)

// Action names an audited operation
type Action string

const (
	ActionLogin       Action = "login"
	ActionLoginFailed Action = "login_failed"
	ActionLogout      Action = "logout"
	ActionShutdown    Action = "shutdown"
	ActionAddBots     Action = "add_bots"
)

// Entry is one audit line
type Entry struct {
	Action    Action    `json:"action"`
	At        time.Time `json:"at"`
	SessionID uint64    `json:"session_id"`
	Address   string    `json:"address"`
	Identity  string    `json:"identity,omitempty"` // authenticated account name
	Role      string    `json:"role,omitempty"`     // role after the action
	Detail    string    `json:"detail,omitempty"`
}

// Sink receives audit entries. Flush must persist anything buffered; it is
// called before the process exits.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
	Flush(ctx context.Context) error
}

// multiSink fans entries out to several sinks
type multiSink struct {
	sinks []Sink
}

// Multi returns a sink that records to every given sink, in order.
// Errors from individual sinks are joined.
func Multi(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) Record(ctx context.Context, entry Entry) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiSink) Flush(ctx context.Context) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
