package transport

import (
	"context"
	"sync"
	"time"

	auditmemory "github.com/mcoot/arenactl/internal/audit/memory"
	"github.com/mcoot/arenactl/internal/command"
	"github.com/mcoot/arenactl/internal/commands"
	"github.com/mcoot/arenactl/internal/dependencies/mocks"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/services/auth"
	"github.com/mcoot/arenactl/internal/session"
	"github.com/mcoot/arenactl/internal/settings"
	"github.com/mcoot/arenactl/internal/testutil"
	"github.com/mcoot/arenactl/internal/world/memory"
)

// fixture wires a multiplexer over the real built-in commands
type fixture struct {
	clock    *mocks.MockClock
	sessions *session.Registry
	world    *memory.World
	registry *command.Registry
	mux      *Multiplexer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newFixture(extra ...command.Command) *fixture {
	f := &fixture{
		clock: mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.sessions = session.NewRegistry(f.clock, testutil.NopLogger())
	f.world = memory.New(memory.DefaultConfig(), settings.NewStore(settings.Defaults()),
		f.sessions.DeliverChat, f.clock, mocks.NewMockRandom(), testutil.NopLogger())

	sink := auditmemory.New()
	f.registry = command.NewRegistry()
	commands.Register(f.registry, commands.Deps{
		Auth: auth.New([]auth.Account{
			{Name: "root", Password: "abc", IP: "*", Role: policy.Admin},
		}, sink, f.clock, testutil.NopLogger()),
		Audit:   sink,
		Clock:   f.clock,
		Started: f.clock.Now(),
		Logger:  testutil.NopLogger(),
		Options: commands.DefaultOptions(),
	})
	f.registry.MustRegister(extra...)

	dispatcher := command.NewDispatcher(f.registry, f.world, testutil.NopLogger())
	f.mux = NewMultiplexer(dispatcher, f.world, 16, testutil.NopLogger())
	return f
}

func (f *fixture) start() {
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.mux.Run(ctx)
	}()
}

func (f *fixture) stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.wg.Wait()
}
