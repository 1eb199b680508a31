package model

import "time"

// PlayerID uniquely identifies a player tracker in the world.
// Network sessions, bots and minions each get one; the console has none (0).
type PlayerID uint32

// NoPlayer is the zero PlayerID, used by callers that control no entities
const NoPlayer PlayerID = 0

// PlayerKind classifies who drives a player tracker
type PlayerKind string

const (
	KindHuman  PlayerKind = "human"
	KindBot    PlayerKind = "bot"
	KindMinion PlayerKind = "minion"
)

// PlayerInfo is a point-in-time snapshot of a player tracker.
// Callers must not hold on to it across commands; re-resolve by ID instead.
type PlayerInfo struct {
	ID         PlayerID
	Name       string
	Kind       PlayerKind
	RemoteAddr string // empty for bots and minions
	Connected  bool   // false once a human has left but is not yet reaped

	CellCount     int
	Skin          string
	SpawnSize     float64 // 0 means the server default
	MergeOverride bool

	// Minion control
	MinionControl bool
	MinionCount   int
	MinionOwner   PlayerID // set for minions only

	JoinedAt time.Time
}

// IsMinion returns true if the player is a minion bound to another player
func (p PlayerInfo) IsMinion() bool {
	return p.Kind == KindMinion
}

// IsBotLike returns true for players without a network transport
func (p PlayerInfo) IsBotLike() bool {
	return p.Kind == KindBot || p.Kind == KindMinion
}
