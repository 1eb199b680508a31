package commands

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arenactl/internal/audit"
	auditmemory "github.com/mcoot/arenactl/internal/audit/memory"
	"github.com/mcoot/arenactl/internal/command"
	"github.com/mcoot/arenactl/internal/dependencies/mocks"
	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/services/auth"
	"github.com/mcoot/arenactl/internal/session"
	"github.com/mcoot/arenactl/internal/settings"
	"github.com/mcoot/arenactl/internal/testutil"
	"github.com/mcoot/arenactl/internal/world/memory"
)

type CommandsSuite struct {
	suite.Suite
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	sessions   *session.Registry
	world      *memory.World
	audit      *auditmemory.Sink
	registry   *command.Registry
	dispatcher *command.Dispatcher
	shutdowns  int
	options    Options
	ctx        context.Context
}

func TestCommandsSuite(t *testing.T) {
	suite.Run(t, new(CommandsSuite))
}

func (s *CommandsSuite) SetupTest() {
	s.options = DefaultOptions()
	s.build()
}

func (s *CommandsSuite) build() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.sessions = session.NewRegistry(s.clock, testutil.NopLogger())
	s.world = memory.New(memory.DefaultConfig(), settings.NewStore(settings.Defaults()),
		s.sessions.DeliverChat, s.clock, s.random, testutil.NopLogger())
	s.audit = auditmemory.New()
	s.shutdowns = 0
	s.ctx = context.Background()

	authService := auth.New([]auth.Account{
		{Name: "root", Password: "abc", IP: "*", Role: policy.Admin},
		{Name: "mod", Password: "m0d", Role: policy.Moderator},
	}, s.audit, s.clock, testutil.NopLogger())

	s.registry = command.NewRegistry()
	Register(s.registry, Deps{
		Auth:            authService,
		Audit:           s.audit,
		Clock:           s.clock,
		Started:         s.clock.Now(),
		Logger:          testutil.NopLogger(),
		Options:         s.options,
		RequestShutdown: func() { s.shutdowns++ },
	})
	s.dispatcher = command.NewDispatcher(s.registry, s.world, testutil.NopLogger())
}

// player joins a human with a session of the given role and n cells
func (s *CommandsSuite) player(name string, role policy.Role, cells int) (*session.Session, *testutil.RecordingSink) {
	id := s.world.Join(name, "10.0.0.1")
	sink := testutil.NewRecordingSink()
	sess := s.sessions.Open(session.Config{
		Label:      name,
		Transport:  session.TransportWebsocket,
		RemoteAddr: "10.0.0.1",
		PlayerID:   id,
		Role:       role,
		Sink:       sink,
	})
	if cells > 0 {
		s.Require().NoError(s.world.Spawn(id))
		for i := 1; i < cells; i++ {
			_, err := s.world.Split(id)
			s.Require().NoError(err)
		}
	}
	return sess, sink
}

func (s *CommandsSuite) run(sess *session.Session, line string) command.Outcome {
	return s.dispatcher.Execute(s.ctx, sess, line)
}

func (s *CommandsSuite) console(role policy.Role) (*session.Session, *testutil.RecordingSink) {
	sink := testutil.NewRecordingSink()
	sess := s.sessions.Open(session.Config{
		Label:     "console",
		Transport: session.TransportConsole,
		Role:      role,
		Sink:      sink,
	})
	return sess, sink
}

// help

func (s *CommandsSuite) TestHelpGuestSeesOnlyGuestCommands() {
	guest, sink := s.player("guest", policy.Guest, 0)

	s.Equal(command.OutcomeOK, s.run(guest, "help"))
	out := sink.Joined()

	for _, cmd := range s.registry.All() {
		visible := policy.Satisfies(policy.Guest, cmd.Requirement)
		s.Equal(visible, strings.Contains(out, "/"+cmd.Name+" "), cmd.Name)
	}
}

func (s *CommandsSuite) TestHelpAdminIsSuperset() {
	guest, guestSink := s.player("guest", policy.Guest, 0)
	admin, adminSink := s.player("admin", policy.Admin, 0)

	s.run(guest, "help")
	s.run(admin, "help")

	s.Greater(len(adminSink.Joined()), len(guestSink.Joined()))
	for _, cmd := range s.registry.Visible(policy.Guest) {
		s.Contains(adminSink.Joined(), "/"+cmd.Name)
	}
	s.Contains(adminSink.Joined(), "/shutdown")
	s.NotContains(guestSink.Joined(), "/shutdown")
}

func (s *CommandsSuite) TestHelpSingleCommand() {
	admin, sink := s.player("admin", policy.Admin, 0)

	s.Equal(command.OutcomeOK, s.run(admin, "help mass"))
	s.Equal("/mass <mass> [id] - Set the mass of your cells or another player's", sink.Last())

	guest, guestSink := s.player("guest", policy.Guest, 0)
	s.Equal(command.OutcomeNotFound, s.run(guest, "help mass"))
	s.Equal(command.ReplyUnknown, guestSink.Last())
}

func (s *CommandsSuite) TestHelpRows() {
	rows := helpRows([]string{"a", "bbb", "cc", "d"})
	s.Equal([]string{"/a   | /bbb | /cc  |", "/d   |"}, rows)
}

// id, skin

func (s *CommandsSuite) TestID() {
	sess, sink := s.player("alice", policy.Guest, 0)
	s.run(sess, "id")
	s.Equal("Your PlayerID is 1", sink.Last())

	con, conSink := s.console(policy.Admin)
	s.run(con, "id")
	s.Contains(conSink.Last(), "You control no player")
}

func (s *CommandsSuite) TestSkinOnlyOutOfGame() {
	sess, sink := s.player("alice", policy.Guest, 0)

	s.Equal(command.OutcomeOK, s.run(sess, "skin doge"))
	s.Equal("Your skin set to doge", sink.Last())
	info, _ := s.world.Player(sess.PlayerID())
	s.Equal("doge", info.Skin)

	s.run(sess, "skin")
	s.Equal("Your skin was removed", sink.Last())

	s.Require().NoError(s.world.Spawn(sess.PlayerID()))
	s.Equal(command.OutcomeRejected, s.run(sess, "skin cat"))
	s.Equal("ERROR: Cannot change skin while player in game!", sink.Last())
	info, _ = s.world.Player(sess.PlayerID())
	s.Equal("", info.Skin)
}

// commitdie

func (s *CommandsSuite) TestCommitDieWithoutCells() {
	sess, _ := s.player("alice", policy.Guest, 0)

	s.Equal(command.OutcomeRejected, s.run(sess, "commitdie"))
	s.Equal(0, s.world.FoodCount())
}

func (s *CommandsSuite) TestCommitDieReplacesCellsWithFood() {
	sess, sink := s.player("alice", policy.Guest, 3)
	cells := s.world.Cells(sess.PlayerID())
	s.Require().Len(cells, 3)

	s.Equal(command.OutcomeOK, s.run(sess, "commitdie"))

	s.Empty(s.world.Cells(sess.PlayerID()))
	foods := s.world.Foods()
	s.Require().Len(foods, 3)
	for i, food := range foods {
		s.Equal(cells[i].Color, food.Color)
		s.Equal(cells[i].Size, food.Size)
		s.Equal(cells[i].Position, food.Position)
	}
	s.Equal([]string{"You commited die...", "RIP you..."}, sink.Lines())
}

// login / logout

func (s *CommandsSuite) TestLoginScenario() {
	first, firstSink := s.player("first", policy.Guest, 0)
	second, secondSink := s.player("second", policy.Guest, 0)

	s.Equal(command.OutcomeOK, s.run(first, "login abc"))
	s.Equal(policy.Admin, first.Role())
	s.Equal("Login done as root", firstSink.Last())

	s.Equal(command.OutcomeLoginFailed, s.run(second, "login wrong"))
	s.Equal(policy.Guest, second.Role())
	s.Equal("ERROR: login failed!", secondSink.Last())
}

func (s *CommandsSuite) TestLoginMissingPassword() {
	sess, sink := s.player("alice", policy.Guest, 0)

	s.Equal(command.OutcomeParseError, s.run(sess, "login"))
	s.Equal("ERROR: missing password argument!", sink.Last())
}

func (s *CommandsSuite) TestLoginLogoutRestoresGuest() {
	sess, sink := s.player("alice", policy.Guest, 0)

	s.run(sess, "login nope")
	s.run(sess, "login again")
	s.run(sess, "login m0d")
	s.Equal(policy.Moderator, sess.Role())

	s.Equal(command.OutcomeOK, s.run(sess, "logout"))
	s.Equal("Logout done", sink.Last())
	s.Equal(policy.Guest, sess.Role())
	_, ok := sess.AuthName()
	s.False(ok)

	s.Equal(command.OutcomeRejected, s.run(sess, "logout"))
	s.Equal("ERROR: not logged in", sink.Last())

	s.Len(s.audit.ByAction(audit.ActionLogin), 1)
	s.Len(s.audit.ByAction(audit.ActionLogout), 1)
}

// broadcast, dm

func (s *CommandsSuite) TestBroadcastReachesEveryone() {
	mod, modSink := s.player("mod", policy.Moderator, 0)
	_, otherSink := s.player("other", policy.Guest, 0)

	s.Equal(command.OutcomeOK, s.run(mod, "bc hello   all of you"))
	s.Equal("BROADCAST: hello all of you", otherSink.Last())
	s.Equal("BROADCAST: hello all of you", modSink.Last())
}

func (s *CommandsSuite) TestBroadcastNeedsText() {
	mod, _ := s.player("mod", policy.Moderator, 0)
	s.Equal(command.OutcomeParseError, s.run(mod, "bc"))
}

func (s *CommandsSuite) TestBroadcastDeniedForUser() {
	user, sink := s.player("user", policy.User, 0)
	_, otherSink := s.player("other", policy.Guest, 0)

	s.Equal(command.OutcomeAccessDenied, s.run(user, "bc hi"))
	s.Equal([]string{command.ReplyAccessDenied}, sink.Lines())
	s.Empty(otherSink.Lines())
}

func (s *CommandsSuite) TestDirectMessage() {
	admin, adminSink := s.player("admin", policy.Admin, 0)
	target, targetSink := s.player("bob", policy.Guest, 0)
	_, bystanderSink := s.player("carol", policy.Guest, 0)

	s.Equal(command.OutcomeOK, s.run(admin, "dm 2 psst hey there"))

	msgs := targetSink.Messages()
	s.Require().Len(msgs, 1)
	s.Equal("psst hey there", msgs[0].Text)
	s.Equal("admin", msgs[0].FromName)
	s.Equal(target.PlayerID(), msgs[0].Target)
	s.Empty(bystanderSink.Lines())
	s.Equal("Message sent to bob", adminSink.Last())
}

func (s *CommandsSuite) TestDirectMessageErrors() {
	admin, sink := s.player("admin", policy.Admin, 0)

	s.Equal(command.OutcomeParseError, s.run(admin, "dm"))
	s.Equal("ERROR: missing id argument!", sink.Last())

	s.Equal(command.OutcomeParseError, s.run(admin, "dm 1"))
	s.Equal("ERROR: missing message argument!", sink.Last())

	s.Equal(command.OutcomeParseError, s.run(admin, "dm bob hi"))
	s.Equal(command.OutcomeNotFound, s.run(admin, "dm 77 hi"))
}

// killall

func (s *CommandsSuite) TestKillAllCountsEveryRemovedCell() {
	mod, sink := s.player("mod", policy.Moderator, 1)
	s.player("a", policy.Guest, 3)
	s.player("b", policy.Guest, 0)
	s.world.AddBots(2)
	_, err := s.world.AddMinions(mod.PlayerID(), 1)
	s.Require().NoError(err)

	s.Equal(command.OutcomeOK, s.run(mod, "killall"))
	s.Equal("You killed everyone. (7 cells.)", sink.Last())
	for _, p := range s.world.Players() {
		s.Zero(p.CellCount, p.Name)
	}
}

func (s *CommandsSuite) TestKillAllCanSkipBots() {
	s.options.KillAllIncludesBots = false
	s.build()

	mod, sink := s.player("mod", policy.Moderator, 1)
	bots := s.world.AddBots(2)

	s.run(mod, "killall")
	s.Equal("You killed everyone. (1 cells.)", sink.Last())
	for _, id := range bots {
		s.Len(s.world.Cells(id), 1)
	}
}

// mass, spawnmass

func (s *CommandsSuite) TestMassSelf() {
	mod, sink := s.player("mod", policy.Moderator, 1)

	s.Equal(command.OutcomeOK, s.run(mod, "mass 400"))
	s.Equal(200.0, s.world.Cells(mod.PlayerID())[0].Size)
	s.Equal([]string{
		"Warn: missing ID arguments. This will change your mass.",
		"Set mass of mod to 400",
	}, sink.Lines())
}

func (s *CommandsSuite) TestMassTargetNotifies() {
	mod, sink := s.player("mod", policy.Moderator, 0)
	target, targetSink := s.player("bob", policy.Guest, 1)

	s.Equal(command.OutcomeOK, s.run(mod, "mass 25 2"))
	s.Equal(50.0, s.world.Cells(target.PlayerID())[0].Size)
	s.Equal("Set mass of bob to 25", sink.Last())
	s.Equal("mod changed your mass to 25", targetSink.Last())
}

func (s *CommandsSuite) TestMassRejectsBadInputWithoutMutation() {
	mod, sink := s.player("mod", policy.Moderator, 1)
	before := s.world.Cells(mod.PlayerID())[0].Size

	for _, line := range []string{"mass", "mass heavy", "mass -4", "mass NaN"} {
		s.Equal(command.OutcomeParseError, s.run(mod, line), line)
	}
	s.Equal(command.OutcomeNotFound, s.run(mod, "mass 100 42"))
	s.Contains(sink.Last(), "no player matched")

	s.Equal(before, s.world.Cells(mod.PlayerID())[0].Size)
}

func (s *CommandsSuite) TestSpawnMass() {
	admin, sink := s.player("admin", policy.Admin, 0)
	target, targetSink := s.player("bob", policy.Guest, 0)

	s.Equal(command.OutcomeOK, s.run(admin, "spawnmass 100 2"))
	info, _ := s.world.Player(target.PlayerID())
	s.Equal(100.0, info.SpawnSize)
	s.Equal("Set spawnmass of bob to 100", sink.Last())
	s.Equal("admin changed your spawn mass to 100", targetSink.Last())

	s.Equal(command.OutcomeParseError, s.run(admin, "spawnmass big"))
}

func (s *CommandsSuite) TestSpawnMassRequiresAdmin() {
	mod, _ := s.player("mod", policy.Moderator, 0)
	s.Equal(command.OutcomeAccessDenied, s.run(mod, "spawnmass 100"))
}

// pl

func (s *CommandsSuite) TestListPlayers() {
	admin, sink := s.player("admin", policy.Admin, 0)
	gone, _ := s.player("gone", policy.Guest, 0)
	s.world.Leave(gone.PlayerID())
	s.world.AddBots(1)
	_, err := s.world.AddMinions(admin.PlayerID(), 1)
	s.Require().NoError(err)
	sink.Reset()

	s.Equal(command.OutcomeOK, s.run(admin, "pl"))
	s.Equal([]string{
		"ID: 1 - NICK: admin - IP: 10.0.0.1",
		"ID: 3 - NICK: " + botNameAt(s.world, 3) + " - IP: BOT",
		"ID: 4 - NICK: admin - IP: [MINION]",
	}, sink.Lines())
}

func botNameAt(w *memory.World, id model.PlayerID) string {
	info, _ := w.Player(id)
	return info.Name
}

// minion

func (s *CommandsSuite) TestMinionToggleForTarget() {
	mod, sink := s.player("mod", policy.Moderator, 0)
	target, targetSink := s.player("bob", policy.Guest, 0)

	s.Equal(command.OutcomeOK, s.run(mod, "minion 3 2"))
	s.Equal("Added 3 minions for bob", sink.Last())
	s.Equal("mod gave you 3 minions.", targetSink.Last())
	info, _ := s.world.Player(target.PlayerID())
	s.True(info.MinionControl)
	s.Equal(3, info.MinionCount)

	s.Equal(command.OutcomeOK, s.run(mod, "minion 3 2"))
	s.Equal("Successfully removed minions for bob", sink.Last())
	s.Equal("mod removed all of your minions.", targetSink.Last())
	info, _ = s.world.Player(target.PlayerID())
	s.False(info.MinionControl)
	s.Zero(info.MinionCount)
}

func (s *CommandsSuite) TestMinionSelfDefaultsToOne() {
	mod, sink := s.player("mod", policy.Moderator, 0)

	s.Equal(command.OutcomeOK, s.run(mod, "minion lots"))
	s.Equal("Added 1 minions for mod", sink.Last())

	s.Equal(command.OutcomeOK, s.run(mod, "minion remove"))
	s.Equal("Successfully removed minions for mod", sink.Last())

	s.Equal(command.OutcomeRejected, s.run(mod, "minion remove"))
}

func (s *CommandsSuite) TestMinionCannotTargetMinion() {
	mod, sink := s.player("mod", policy.Moderator, 0)
	_, err := s.world.AddMinions(mod.PlayerID(), 1)
	s.Require().NoError(err)

	s.Equal(command.OutcomeRejected, s.run(mod, "minion 2 2"))
	s.Equal("You cannot give minions to a minion!", sink.Last())
}

// addbot

func (s *CommandsSuite) TestAddBotsAudits() {
	admin, sink := s.player("admin", policy.Admin, 0)
	admin.Elevate(policy.Admin, "root")

	s.Equal(command.OutcomeOK, s.run(admin, "addbot 3"))
	s.Equal("Added 3 Bots", sink.Last())
	s.Equal(3, s.world.Status().Bots)

	entries := s.audit.ByAction(audit.ActionAddBots)
	s.Require().Len(entries, 1)
	s.Equal("10.0.0.1", entries[0].Address)
	s.Equal("root", entries[0].Identity)
	s.Equal("ADDED 3 BOTS", entries[0].Detail)

	s.Equal(command.OutcomeParseError, s.run(admin, "addbot"))
	s.Equal(command.OutcomeParseError, s.run(admin, "addbot 0"))
}

// status

func (s *CommandsSuite) TestStatus() {
	mod, sink := s.player("mod", policy.Moderator, 0)
	s.world.AddBots(2)
	_, _ = s.world.AddMinions(mod.PlayerID(), 1)
	s.world.ObserveTick(60 * time.Millisecond)
	s.clock.Advance(5*time.Minute + 10*time.Second)

	s.Equal(command.OutcomeOK, s.run(mod, "status"))
	lines := sink.Lines()
	s.Require().Len(lines, 8)
	s.Equal("Connected players: 4/64", lines[1])
	s.Equal("Players: 1 - Bots: 3", lines[2])
	s.Equal("Server has been running for 5 minutes", lines[3])
	s.Contains(lines[4], "Current memory usage: ")
	s.Equal("Current game mode: ffa", lines[5])
	s.Equal("Current update time: 30.000 [ms]  (good)", lines[6])
}

func (s *CommandsSuite) TestStatusSeparatesMinions() {
	s.options.StatusCountsMinionsAsBots = false
	s.build()

	mod, sink := s.player("mod", policy.Moderator, 0)
	s.world.AddBots(2)
	_, _ = s.world.AddMinions(mod.PlayerID(), 1)

	s.run(mod, "status")
	s.Equal("Players: 1 - Bots: 2 - Minions: 1", sink.Lines()[2])
}

func (s *CommandsSuite) TestLagLabel() {
	tests := []struct {
		avg  time.Duration
		want string
	}{
		{0, "perfectly smooth"},
		{19 * time.Millisecond, "perfectly smooth"},
		{20 * time.Millisecond, "good"},
		{36 * time.Millisecond, "tiny lag"},
		{45 * time.Millisecond, "lag"},
		{50 * time.Millisecond, "extremely high lag"},
	}
	for _, tt := range tests {
		s.Equal(tt.want, LagLabel(tt.avg), tt.avg.String())
	}
}

// shutdown

func (s *CommandsSuite) TestShutdownAuditsAndFlushesFirst() {
	admin, sink := s.player("admin", policy.Admin, 0)
	admin.Elevate(policy.Admin, "root")

	s.Equal(command.OutcomeOK, s.run(admin, "shutdown"))

	s.Len(s.audit.ByAction(audit.ActionShutdown), 1)
	s.Equal(1, s.audit.Flushes())
	s.Equal(1, s.shutdowns)
	s.Equal("Server is shutting down", sink.Last())
}

func (s *CommandsSuite) TestShutdownDeniedForModerator() {
	mod, _ := s.player("mod", policy.Moderator, 0)

	s.Equal(command.OutcomeAccessDenied, s.run(mod, "shutdown"))
	s.Zero(s.shutdowns)
	s.Empty(s.audit.Entries())
}

// speed, config

func (s *CommandsSuite) TestSpeedSameFromConsoleAndSession() {
	admin, sink := s.player("admin", policy.Admin, 0)
	con, conSink := s.console(policy.Admin)

	s.Equal(command.OutcomeOK, s.run(admin, "speed 2.5"))
	s.Equal("Set player speed to 2.5", sink.Last())

	s.Equal(command.OutcomeOK, s.run(con, "speed"))
	s.Equal("Current player speed: 2.5", conSink.Last())

	s.Equal(command.OutcomeParseError, s.run(con, "speed zoom"))
	s.Equal(2.5, s.world.Settings().Snapshot().PlayerSpeed)
}

func (s *CommandsSuite) TestConfig() {
	con, sink := s.console(policy.Admin)

	s.Equal(command.OutcomeOK, s.run(con, "config"))
	s.Len(sink.Lines(), len(settings.Fields()))

	s.Equal(command.OutcomeOK, s.run(con, "config server_name The Big Arena"))
	s.Equal("Set server_name to The Big Arena", sink.Last())

	s.Equal(command.OutcomeOK, s.run(con, "config max_connections"))
	s.Equal("max_connections = 64", sink.Last())

	s.Equal(command.OutcomeParseError, s.run(con, "config max_connections -1"))
	s.Equal(command.OutcomeParseError, s.run(con, "config require('child_process') 1"))
	s.Equal(64, s.world.Settings().Snapshot().MaxConnections)
}

// merge, rainbow

func (s *CommandsSuite) TestMergeNeedsTwoCells() {
	admin, sink := s.player("admin", policy.Admin, 1)

	s.Equal(command.OutcomeRejected, s.run(admin, "merge"))
	s.Equal("You need at least 2 cells to merge!", sink.Last())
	info, _ := s.world.Player(admin.PlayerID())
	s.False(info.MergeOverride)
}

func (s *CommandsSuite) TestMerge() {
	admin, sink := s.player("admin", policy.Admin, 2)

	s.Equal(command.OutcomeOK, s.run(admin, "merge"))
	s.Equal("All your cells are now merging!", sink.Last())
	info, _ := s.world.Player(admin.PlayerID())
	s.True(info.MergeOverride)
}

func (s *CommandsSuite) TestRainbowRunsAndEnds() {
	admin, sink := s.player("admin", policy.Admin, 1)
	cell := s.world.Cells(admin.PlayerID())[0]

	s.Equal(command.OutcomeOK, s.run(admin, "rainbow"))
	s.Equal("Rainbow effect started! Your cells will change colors for 10 seconds.", sink.Last())

	s.random.QueueIntn(1, 2, 3)
	s.clock.Advance(RainbowInterval)
	s.world.Step(s.clock.Now())
	s.Equal(model.Color{R: 1, G: 2, B: 3}, s.world.Cells(admin.PlayerID())[0].Color)

	// removing the cell mid-effect must not break the effect
	_, ok := s.world.RemoveCell(cell.ID)
	s.Require().True(ok)

	s.clock.Advance(RainbowDuration)
	s.NotPanics(func() { s.world.Step(s.clock.Now()) })
	s.Equal("Rainbow effect ended!", sink.Last())
}

func (s *CommandsSuite) TestRainbowNeedsCells() {
	admin, _ := s.player("admin", policy.Admin, 0)
	s.Equal(command.OutcomeRejected, s.run(admin, "rainbow"))
}

func TestRegisterBuildsBuiltinSet(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	reg := command.NewRegistry()

	require.NotPanics(t, func() {
		Register(reg, Deps{
			Auth:            auth.New(nil, auditmemory.New(), clk, testutil.NopLogger()),
			Audit:           auditmemory.New(),
			Clock:           clk,
			Started:         clk.Now(),
			Logger:          testutil.NopLogger(),
			Options:         DefaultOptions(),
			RequestShutdown: func() {},
		})
	})
	assert.Equal(t, 20, reg.Len())

	tests := []struct {
		name        string
		requirement policy.Requirement
	}{
		{"help", policy.Anyone},
		{"login", policy.Anyone},
		{"status", staff},
		{"shutdown", admin},
		{"config", admin},
	}
	for _, tt := range tests {
		cmd, ok := reg.Resolve(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.requirement, cmd.Requirement, tt.name)
		assert.True(t, cmd.Requirement.Declared(), tt.name)
	}
}
