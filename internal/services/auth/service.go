package auth

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/arenactl/internal/audit"
	"github.com/mcoot/arenactl/internal/dependencies/clock"
	"github.com/mcoot/arenactl/internal/metrics"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/session"
)

// Errors
var (
	ErrMissingPassword = errors.New("missing password argument")
	ErrLoginFailed     = errors.New("login failed")
	ErrNotLoggedIn     = errors.New("not logged in")
)

// AnyIP is the ip restriction that admits every address
const AnyIP = "*"

// Account is a privileged identity loaded at startup
type Account struct {
	Name     string      `yaml:"name"`
	Password string      `yaml:"password"` // plain text or a bcrypt hash ($2a$/$2b$/$2y$)
	IP       string      `yaml:"ip"`       // empty or "*" admits any address
	Role     policy.Role `yaml:"role"`
}

// hashed returns true if the stored password is a bcrypt hash
func (a Account) hashed() bool {
	return strings.HasPrefix(a.Password, "$2a$") ||
		strings.HasPrefix(a.Password, "$2b$") ||
		strings.HasPrefix(a.Password, "$2y$")
}

func (a Account) passwordMatches(password string) bool {
	if a.hashed() {
		return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password)) == nil
	}
	return a.Password == password
}

func (a Account) admits(addr string) bool {
	return a.IP == "" || a.IP == AnyIP || a.IP == addr
}

// Service elevates sessions by matching passwords against the account list
type Service struct {
	accounts []Account
	audit    audit.Sink
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a login Service. The account list is copied and never
// modified afterwards; its order decides which account wins a match.
func New(accounts []Account, sink audit.Sink, clk clock.Clock, logger *slog.Logger) *Service {
	list := make([]Account, len(accounts))
	copy(list, accounts)
	return &Service{
		accounts: list,
		audit:    sink,
		clock:    clk,
		logger:   logger.With(slog.String("component", "auth")),
	}
}

// AccountCount returns the number of configured accounts
func (s *Service) AccountCount() int {
	return len(s.accounts)
}

// Match returns the first account whose password equals password and whose
// ip restriction admits addr. Blank passwords never match.
func (s *Service) Match(addr, password string) (Account, bool) {
	password = strings.TrimSpace(password)
	if password == "" {
		return Account{}, false
	}
	addr = hostOnly(addr)
	for _, acc := range s.accounts {
		if !acc.passwordMatches(password) {
			continue
		}
		if !acc.admits(addr) {
			continue
		}
		return acc, true
	}
	return Account{}, false
}

// Login elevates sess to the matched account's role. On failure nothing
// changes and ErrLoginFailed is returned regardless of which check failed.
func (s *Service) Login(ctx context.Context, sess *session.Session, password string) (Account, error) {
	if strings.TrimSpace(password) == "" {
		return Account{}, ErrMissingPassword
	}

	acc, ok := s.Match(sess.RemoteAddr(), password)
	if !ok {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		s.logger.Info("login rejected",
			slog.Uint64("session_id", uint64(sess.ID())),
			slog.String("address", sess.RemoteAddr()))
		// Address only, no account detail
		s.record(ctx, audit.Entry{
			Action:    audit.ActionLoginFailed,
			SessionID: uint64(sess.ID()),
			Address:   sess.RemoteAddr(),
			Role:      sess.Role().String(),
		})
		return Account{}, ErrLoginFailed
	}

	sess.Elevate(acc.Role, acc.Name)
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	s.record(ctx, audit.Entry{
		Action:    audit.ActionLogin,
		SessionID: uint64(sess.ID()),
		Address:   sess.RemoteAddr(),
		Identity:  acc.Name,
		Role:      acc.Role.String(),
	})
	return acc, nil
}

// Logout drops sess back to Guest. It returns the name the session was
// logged in as.
func (s *Service) Logout(ctx context.Context, sess *session.Session) (string, error) {
	if sess.Role() == policy.Guest {
		return "", ErrNotLoggedIn
	}

	name, _ := sess.AuthName()
	sess.Reset()

	s.record(ctx, audit.Entry{
		Action:    audit.ActionLogout,
		SessionID: uint64(sess.ID()),
		Address:   sess.RemoteAddr(),
		Identity:  name,
		Role:      policy.Guest.String(),
	})
	return name, nil
}

func (s *Service) record(ctx context.Context, entry audit.Entry) {
	entry.At = s.clock.Now()
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Error("audit record failed",
			slog.String("action", string(entry.Action)),
			slog.Any("error", err))
	}
}

// hostOnly strips a port from addr if present
func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
