package factory

import (
	"io"
	"strings"
	"time"

	auditmemory "github.com/mcoot/arenactl/internal/audit/memory"
	"github.com/mcoot/arenactl/internal/config"
	"github.com/mcoot/arenactl/internal/dependencies/mocks"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/services/auth"
	"github.com/mcoot/arenactl/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	AuditLog   *auditmemory.Sink
}

// TestConfig returns a config with a root admin (password "abc"), a
// moderator (password "m0d"), an ephemeral port and no console
func TestConfig() config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Console.Enabled = false
	cfg.Accounts = []auth.Account{
		{Name: "root", Password: "abc", IP: auth.AnyIP, Role: policy.Admin},
		{Name: "mod", Password: "m0d", IP: auth.AnyIP, Role: policy.Moderator},
	}
	return cfg
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// A non-empty console script enables the console and feeds it those lines.
func NewTestApp(cfg config.Config, consoleScript string, consoleOut io.Writer) (*TestApp, error) {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	sink := auditmemory.New()

	opts := Options{ConsoleOut: consoleOut}
	if consoleScript != "" {
		cfg.Console.Enabled = true
		opts.ConsoleIn = strings.NewReader(consoleScript)
	}
	if opts.ConsoleOut == nil {
		opts.ConsoleOut = io.Discard
	}

	app, err := newWithDependencies(cfg, opts, mockClock, mockRandom, sink, testutil.NopLogger())
	if err != nil {
		return nil, err
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		AuditLog:   sink,
	}, nil
}
