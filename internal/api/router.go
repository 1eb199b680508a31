package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/arenactl/internal/api/handler"
	"github.com/mcoot/arenactl/internal/api/middleware"
	"github.com/mcoot/arenactl/internal/dependencies/clock"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/services/auth"
	"github.com/mcoot/arenactl/internal/session"
	"github.com/mcoot/arenactl/internal/world"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	World       world.Bridge
	Sessions    *session.Registry
	AuthService *auth.Service
	Clock       clock.Clock
	Started     time.Time

	// Websocket serves the command and chat channel on /ws
	Websocket http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	statusHandler := handler.NewStatusHandler(cfg.World, cfg.Sessions, cfg.Clock, cfg.Started)
	playerHandler := handler.NewPlayerHandler(cfg.World)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	adminMiddleware := middleware.Auth(cfg.AuthService, policy.AtLeast(policy.Admin))

	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	if cfg.Websocket != nil {
		r.Handle("/ws", cfg.Websocket).Methods(http.MethodGet)
	}
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", statusHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/status", statusHandler.Status).Methods(http.MethodGet)
	api.HandleFunc("/settings", statusHandler.Settings).Methods(http.MethodGet)
	api.HandleFunc("/settings/{field}", statusHandler.Setting).Methods(http.MethodGet)

	// Player listings expose addresses, same as the pl command
	players := api.PathPrefix("/players").Subrouter()
	players.Use(adminMiddleware)
	players.HandleFunc("", playerHandler.List).Methods(http.MethodGet)
	players.HandleFunc("/{id}", playerHandler.Get).Methods(http.MethodGet)

	return r
}
