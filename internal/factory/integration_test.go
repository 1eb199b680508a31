package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/arenactl/internal/api/response"
	"github.com/mcoot/arenactl/internal/audit"
	"github.com/mcoot/arenactl/internal/config"
	"github.com/mcoot/arenactl/internal/protocol"
)

// lockedBuffer is written by the console goroutine and read by the test
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type IntegrationSuite struct {
	suite.Suite
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

// start runs app in the background and waits until it is listening
func (s *IntegrationSuite) start(app *TestApp) (context.CancelFunc, <-chan error) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	s.Require().Eventually(func() bool {
		return app.Server.Addr() != "127.0.0.1:0"
	}, 2*time.Second, 5*time.Millisecond)
	return cancel, done
}

func (s *IntegrationSuite) wait(done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		s.FailNow("app did not stop")
		return nil
	}
}

func (s *IntegrationSuite) TestConsoleDisabledInTestConfig() {
	app, err := NewTestApp(TestConfig(), "", nil)
	s.Require().NoError(err)
	s.Nil(app.Console)
	s.Equal(2, app.AuthService.AccountCount())
}

func (s *IntegrationSuite) TestInvalidConfigRejected() {
	cfg := TestConfig()
	cfg.Server.MaxConnections = 0

	_, err := New(cfg, Options{})
	s.ErrorIs(err, config.ErrInvalid)
}

func (s *IntegrationSuite) TestConfigSeedsSettings() {
	cfg := TestConfig()
	cfg.Server.Name = "seeded"
	cfg.Server.GameMode = "teams"

	app, err := NewTestApp(cfg, "", nil)
	s.Require().NoError(err)

	values := app.Settings.Snapshot()
	s.Equal("seeded", values.ServerName)
	s.Equal("teams", app.World.Status().GameMode)
}

func (s *IntegrationSuite) TestShutdownCommandFromConsole() {
	out := &lockedBuffer{}
	app, err := NewTestApp(TestConfig(), "addbot 2\nshutdown\n", out)
	s.Require().NoError(err)

	cancel, done := s.start(app)
	defer cancel()

	s.Require().NoError(s.wait(done))

	s.Contains(out.String(), "Added 2 Bots")
	s.Contains(out.String(), "Server is shutting down")
	s.Len(app.AuditLog.ByAction(audit.ActionShutdown), 1)
	s.Len(app.AuditLog.ByAction(audit.ActionAddBots), 1)
	s.GreaterOrEqual(app.AuditLog.Flushes(), 1)
	s.True(app.Multiplexer.Closed())
}

func (s *IntegrationSuite) TestWebsocketSessionAndHTTPStatus() {
	app, err := NewTestApp(TestConfig(), "", nil)
	s.Require().NoError(err)

	cancel, done := s.start(app)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+app.Server.Addr()+"/ws?name=alice", nil)
	s.Require().NoError(err)
	defer conn.Close()

	read := func() protocol.ServerMessage {
		s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
		var msg protocol.ServerMessage
		s.Require().NoError(conn.ReadJSON(&msg))
		return msg
	}

	s.Equal(protocol.TypeWelcome, read().Type)
	s.Require().NoError(conn.WriteJSON(protocol.ClientMessage{Type: protocol.TypeCommand, Text: "login m0d"}))
	s.Equal("Login done as mod", read().Text)

	resp, err := http.Get("http://" + app.Server.Addr() + "/api/v1/status")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var status response.Status
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&status))
	s.Equal(1, status.Humans)
	s.Equal(1, status.Sessions)

	cancel()
	s.Require().NoError(s.wait(done))

	// the client is disconnected on shutdown
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var msg protocol.ServerMessage
	s.Error(conn.ReadJSON(&msg))
	s.Eventually(func() bool {
		return app.Sessions.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
