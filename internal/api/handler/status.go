package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/arenactl/internal/api/response"
	"github.com/mcoot/arenactl/internal/commands"
	"github.com/mcoot/arenactl/internal/dependencies/clock"
	"github.com/mcoot/arenactl/internal/session"
	"github.com/mcoot/arenactl/internal/settings"
	"github.com/mcoot/arenactl/internal/world"
)

// StatusHandler serves read-only server state
type StatusHandler struct {
	world    world.Bridge
	sessions *session.Registry
	clock    clock.Clock
	started  time.Time
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(w world.Bridge, sessions *session.Registry, clk clock.Clock, started time.Time) *StatusHandler {
	return &StatusHandler{
		world:    w,
		sessions: sessions,
		clock:    clk,
		started:  started,
	}
}

// Health handles GET /api/v1/health
func (h *StatusHandler) Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status handles GET /api/v1/status
func (h *StatusHandler) Status(w http.ResponseWriter, _ *http.Request) {
	status := h.world.Status()
	response.JSON(w, http.StatusOK, response.StatusFromModel(
		status,
		h.world.Settings().Snapshot().ServerName,
		commands.LagLabel(status.TickAverage),
		h.clock.Now().Sub(h.started),
		h.sessions.Count(),
	))
}

// Settings handles GET /api/v1/settings
func (h *StatusHandler) Settings(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, h.world.Settings().Snapshot())
}

// Setting handles GET /api/v1/settings/{field}
func (h *StatusHandler) Setting(w http.ResponseWriter, r *http.Request) {
	field, err := settings.ParseField(mux.Vars(r)["field"])
	if err != nil {
		WriteError(w, err)
		return
	}
	value, err := h.world.Settings().Get(field)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Setting{Field: string(field), Value: value})
}
