package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arenactl/internal/dependencies/mocks"
	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/session"
	"github.com/mcoot/arenactl/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	registry *session.Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = session.NewRegistry(s.clock, testutil.NopLogger())
}

func (s *RegistrySuite) open(pid model.PlayerID) (*session.Session, *testutil.RecordingSink) {
	sink := testutil.NewRecordingSink()
	sess := s.registry.Open(session.Config{
		Transport:  session.TransportWebsocket,
		RemoteAddr: "1.2.3.4",
		PlayerID:   pid,
		Sink:       sink,
	})
	return sess, sink
}

func (s *RegistrySuite) TestOpenAssignsIncreasingIDs() {
	a, _ := s.open(1)
	b, _ := s.open(2)

	s.Less(uint64(a.ID()), uint64(b.ID()))
	s.Equal(2, s.registry.Count())
	s.Equal(s.clock.Now(), a.CreatedAt())
}

func (s *RegistrySuite) TestNewSessionStartsAsGuest() {
	sess, _ := s.open(1)

	s.Equal(policy.Guest, sess.Role())
	_, ok := sess.AuthName()
	s.False(ok)
}

func (s *RegistrySuite) TestElevateAndReset() {
	sess, _ := s.open(1)

	sess.Elevate(policy.Admin, "root")
	s.Equal(policy.Admin, sess.Role())
	name, ok := sess.AuthName()
	s.True(ok)
	s.Equal("root", name)

	sess.Reset()
	s.Equal(policy.Guest, sess.Role())
	_, ok = sess.AuthName()
	s.False(ok)
}

func (s *RegistrySuite) TestByPlayer() {
	sess, _ := s.open(7)

	found, ok := s.registry.ByPlayer(7)
	s.True(ok)
	s.Equal(sess.ID(), found.ID())

	_, ok = s.registry.ByPlayer(8)
	s.False(ok)
}

func (s *RegistrySuite) TestCloseRemovesSession() {
	sess, _ := s.open(7)

	s.registry.Close(sess.ID())

	_, ok := s.registry.Get(sess.ID())
	s.False(ok)
	_, ok = s.registry.ByPlayer(7)
	s.False(ok)
	s.Equal(0, s.registry.Count())
}

func (s *RegistrySuite) TestCloseUnknownIsNoop() {
	s.registry.Close(999)
	s.Equal(0, s.registry.Count())
}

func (s *RegistrySuite) TestDeliverChatBroadcast() {
	_, sinkA := s.open(1)
	_, sinkB := s.open(2)

	s.registry.DeliverChat(model.ChatMessage{Text: "hello all"})

	s.Equal([]string{"hello all"}, sinkA.Lines())
	s.Equal([]string{"hello all"}, sinkB.Lines())
}

func (s *RegistrySuite) TestDeliverChatDirect() {
	_, sinkA := s.open(1)
	_, sinkB := s.open(2)

	s.registry.DeliverChat(model.ChatMessage{Target: 2, Text: "psst"})

	s.Empty(sinkA.Lines())
	s.Equal([]string{"psst"}, sinkB.Lines())
}

func (s *RegistrySuite) TestDeliverChatToUnknownPlayerIsDropped() {
	_, sinkA := s.open(1)

	s.registry.DeliverChat(model.ChatMessage{Target: 99, Text: "nobody"})

	s.Empty(sinkA.Lines())
}

func (s *RegistrySuite) TestReplyGoesOnlyToSession() {
	a, sinkA := s.open(1)
	_, sinkB := s.open(2)

	a.Reply("just you")

	s.Equal("just you", sinkA.Last())
	s.Empty(sinkB.Lines())
}
