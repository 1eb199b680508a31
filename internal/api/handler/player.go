package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/arenactl/internal/api/apierr"
	"github.com/mcoot/arenactl/internal/api/response"
	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/world"
)

// PlayerHandler handles player-related endpoints. Routes are mounted
// behind the admin auth middleware because they expose addresses.
type PlayerHandler struct {
	players world.Players
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(players world.Players) *PlayerHandler {
	return &PlayerHandler{players: players}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, _ *http.Request) {
	players := h.players.Players()
	out := make([]response.Player, 0, len(players))
	for _, p := range players {
		if !p.Connected {
			continue
		}
		out = append(out, response.PlayerFromModel(p))
	}
	response.JSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		WriteError(w, apierr.NewInvalidRequestError("player id must be a number"))
		return
	}
	info, ok := h.players.Player(model.PlayerID(id))
	if !ok {
		WriteError(w, model.ErrPlayerNotFound)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(info))
}
