package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arenactl/internal/api"
	"github.com/mcoot/arenactl/internal/api/apierr"
	"github.com/mcoot/arenactl/internal/api/response"
	auditmemory "github.com/mcoot/arenactl/internal/audit/memory"
	"github.com/mcoot/arenactl/internal/dependencies/mocks"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/services/auth"
	"github.com/mcoot/arenactl/internal/session"
	"github.com/mcoot/arenactl/internal/settings"
	"github.com/mcoot/arenactl/internal/testutil"
	"github.com/mcoot/arenactl/internal/world/memory"
)

type testServer struct {
	handler http.Handler
	world   *memory.World
	clock   *mocks.MockClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	sessions := session.NewRegistry(clk, testutil.NopLogger())
	w := memory.New(memory.DefaultConfig(), settings.NewStore(settings.Defaults()),
		sessions.DeliverChat, clk, mocks.NewMockRandom(), testutil.NopLogger())
	authService := auth.New([]auth.Account{
		{Name: "root", Password: "abc", IP: auth.AnyIP, Role: policy.Admin},
		{Name: "mod", Password: "m0d", IP: auth.AnyIP, Role: policy.Moderator},
	}, auditmemory.New(), clk, testutil.NopLogger())

	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		World:       w,
		Sessions:    sessions,
		AuthService: authService,
		Clock:       clk,
		Started:     clk.Now(),
	})

	return &testServer{handler: router, world: w, clock: clk}
}

func (ts *testServer) request(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rr)["status"])
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.world.Join("alice", "10.0.0.1")
	ts.world.AddBots(2)
	ts.world.ObserveTick(40 * time.Millisecond)
	ts.clock.Advance(90 * time.Second)

	rr := ts.request(http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rr.Code)

	status := decode[response.Status](t, rr)
	assert.Equal(t, "arena", status.ServerName)
	assert.Equal(t, "ffa", status.GameMode)
	assert.Equal(t, 1, status.Humans)
	assert.Equal(t, 2, status.Bots)
	assert.Equal(t, 3, status.Total)
	assert.Equal(t, 64, status.MaxConnections)
	assert.InDelta(t, 20.0, status.TickAverageMS, 0.001)
	assert.Equal(t, "good", status.Lag)
	assert.Equal(t, int64(90), status.UptimeSeconds)
	assert.Equal(t, 0, status.Sessions)
}

func TestSettings(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.world.Settings().SetByName("server_name", "my arena")
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, rr.Code)
	values := decode[settings.Values](t, rr)
	assert.Equal(t, "my arena", values.ServerName)
	assert.Equal(t, 64, values.MaxConnections)

	rr = ts.request(http.MethodGet, "/api/v1/settings/MAX_CONNECTIONS", "")
	require.Equal(t, http.StatusOK, rr.Code)
	setting := decode[response.Setting](t, rr)
	assert.Equal(t, "max_connections", setting.Field)
	assert.Equal(t, "64", setting.Value)
}

func TestUnknownSetting(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/settings/gravity", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeUnknownField, decode[apierr.ErrorResponse](t, rr).Error.Code)
}

func TestPlayersRequireAdmin(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		token  string
		status int
		code   string
	}{
		{"no token", "", http.StatusUnauthorized, apierr.CodeUnauthorized},
		{"wrong password", "nope", http.StatusUnauthorized, apierr.CodeInvalidCredentials},
		{"moderator", "m0d", http.StatusForbidden, apierr.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodGet, "/api/v1/players", tt.token)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, decode[apierr.ErrorResponse](t, rr).Error.Code)
		})
	}
}

func TestPlayersListConnected(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.world.Join("alice", "10.0.0.1")
	gone := ts.world.Join("bob", "10.0.0.2")
	ts.world.Leave(gone)
	require.NoError(t, ts.world.Spawn(alice))

	rr := ts.request(http.MethodGet, "/api/v1/players", "abc")
	require.Equal(t, http.StatusOK, rr.Code)

	players := decode[[]response.Player](t, rr)
	require.Len(t, players, 1)
	assert.Equal(t, uint32(alice), players[0].ID)
	assert.Equal(t, "alice", players[0].Name)
	assert.Equal(t, "human", players[0].Kind)
	assert.Equal(t, "10.0.0.1", players[0].RemoteAddr)
	assert.Equal(t, 1, players[0].Cells)
}

func TestPlayerByID(t *testing.T) {
	ts := newTestServer(t)
	id := ts.world.Join("alice", "10.0.0.1")

	rr := ts.request(http.MethodGet, "/api/v1/players/1", "abc")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, uint32(id), decode[response.Player](t, rr).ID)

	rr = ts.request(http.MethodGet, "/api/v1/players/99", "abc")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/abc", "abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodGet, "/api/v1/health", "")

	rr := ts.request(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "arena_http_requests_total")
}
