package response

import (
	"time"

	"github.com/mcoot/arenactl/internal/model"
)

// Status is the aggregate server status
type Status struct {
	ServerName     string  `json:"server_name"`
	GameMode       string  `json:"game_mode"`
	Humans         int     `json:"humans"`
	Bots           int     `json:"bots"`
	Minions        int     `json:"minions"`
	Total          int     `json:"total"`
	MaxConnections int     `json:"max_connections"`
	TickAverageMS  float64 `json:"tick_average_ms"`
	Lag            string  `json:"lag"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	Sessions       int     `json:"sessions"`
}

// StatusFromModel converts model.ServerStatus
func StatusFromModel(s model.ServerStatus, serverName, lag string, uptime time.Duration, sessions int) Status {
	return Status{
		ServerName:     serverName,
		GameMode:       s.GameMode,
		Humans:         s.Humans,
		Bots:           s.Bots,
		Minions:        s.Minions,
		Total:          s.Total(),
		MaxConnections: s.MaxConnections,
		TickAverageMS:  float64(s.TickAverage) / float64(time.Millisecond),
		Lag:            lag,
		UptimeSeconds:  int64(uptime / time.Second),
		Sessions:       sessions,
	}
}

// Player represents a player tracker in API responses
type Player struct {
	ID          uint32 `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	RemoteAddr  string `json:"remote_addr,omitempty"`
	Cells       int    `json:"cells"`
	MinionOwner uint32 `json:"minion_owner,omitempty"`
}

// PlayerFromModel converts model.PlayerInfo
func PlayerFromModel(p model.PlayerInfo) Player {
	return Player{
		ID:          uint32(p.ID),
		Name:        p.Name,
		Kind:        string(p.Kind),
		RemoteAddr:  p.RemoteAddr,
		Cells:       p.CellCount,
		MinionOwner: uint32(p.MinionOwner),
	}
}

// Setting is a single runtime setting
type Setting struct {
	Field string `json:"field"`
	Value string `json:"value"`
}
