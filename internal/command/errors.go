package command

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrDuplicateCommand = errors.New("command already registered")
	ErrInvalidCommand   = errors.New("invalid command definition")
	ErrRegistryFrozen   = errors.New("command registry is frozen")
	ErrTargetNotFound   = errors.New("no player matched that id")
)

// Outcome classifies how a dispatched line ended
type Outcome string

const (
	OutcomeEmpty        Outcome = "empty"
	OutcomeOK           Outcome = "ok"
	OutcomeParseError   Outcome = "parse_error"
	OutcomeAccessDenied Outcome = "access_denied"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeLoginFailed  Outcome = "login_failed"
	OutcomeRejected     Outcome = "rejected"
	OutcomeError        Outcome = "error"
	OutcomePanic        Outcome = "panic"
)

// ArgError reports a missing or malformed argument. No state was changed.
type ArgError struct {
	Arg string
	Msg string
}

func (e *ArgError) Error() string {
	return e.Msg
}

// Argf builds an ArgError for the named argument
func Argf(arg, format string, args ...any) *ArgError {
	return &ArgError{Arg: arg, Msg: fmt.Sprintf(format, args...)}
}

// Failure is a handler error with the exact line shown to the caller
type Failure struct {
	Outcome Outcome
	Reply   string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Reply + ": " + f.Err.Error()
	}
	return f.Reply
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Reject reports that the caller's current state does not allow the command
func Reject(reply string) error {
	return &Failure{Outcome: OutcomeRejected, Reply: reply}
}

// Fail reports a failure with an explicit outcome and cause
func Fail(outcome Outcome, reply string, err error) error {
	return &Failure{Outcome: outcome, Reply: reply, Err: err}
}
