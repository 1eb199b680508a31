// Package world defines the contract through which commands read and mutate
// shared game state. Implementations guarantee their own consistency;
// callers never hold a lock and never cache entity pointers between calls.
package world

import (
	"time"

	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/settings"
)

// Bridge is the World collaborator as seen from the command layer
type Bridge interface {
	Players
	Cells
	Population
	Effects

	// SendChat delivers a chat message to one player or to everyone
	SendChat(msg model.ChatMessage)

	// Status returns aggregate counts, mode and rolling tick time
	Status() model.ServerStatus

	// Settings returns the live runtime-settable fields
	Settings() *settings.Store
}

// Players enumerates and updates player trackers
type Players interface {
	// Join registers a human player for a network connection
	Join(name, remoteAddr string) model.PlayerID

	// Leave marks a human as disconnected. The tracker is reaped on a
	// later tick together with its cells.
	Leave(id model.PlayerID)

	// Spawn gives a player with no cells a single cell at its spawn size.
	// Returns model.ErrInGame if the player already has cells.
	Spawn(id model.PlayerID) error

	// Player returns a snapshot of one player
	Player(id model.PlayerID) (model.PlayerInfo, bool)

	// Players returns snapshots of every tracker sorted by ascending ID
	Players() []model.PlayerInfo

	SetSkin(id model.PlayerID, skin string) error
	SetSpawnSize(id model.PlayerID, size float64) error
	SetMergeOverride(id model.PlayerID, on bool) error
}

// Cells manipulates individual entities
type Cells interface {
	// Cells returns the cells owned by a player, oldest first
	Cells(owner model.PlayerID) []model.Cell

	// RemoveCell removes a cell and returns its last state. Any running
	// effect stops touching the cell.
	RemoveCell(id model.CellID) (model.Cell, bool)

	// AddFood adds a consumable cell
	AddFood(pos model.Position, size float64, color model.Color) model.CellID

	// ResizeCell sets a cell's size
	ResizeCell(id model.CellID, size float64) error
}

// Population controls bots and minions
type Population interface {
	// AddBots adds n autonomous bots and returns their IDs
	AddBots(n int) []model.PlayerID

	// AddMinions binds n new minions to owner and enables minion control.
	// Returns model.ErrMinionOwner if owner is itself a minion.
	AddMinions(owner model.PlayerID, n int) (int, error)

	// RemoveMinions disables minion control for owner and removes its
	// minions, returning how many were removed
	RemoveMinions(owner model.PlayerID) (int, error)
}

// Effects runs timed cosmetic effects
type Effects interface {
	// StartColorCycle recolors the given cells every interval until
	// duration has elapsed. Cells removed meanwhile are dropped from the
	// effect. onEnd runs once when the effect finishes, outside any lock.
	StartColorCycle(cells []model.CellID, duration, interval time.Duration, onEnd func()) EffectID

	// CancelEffect stops an effect early without calling onEnd
	CancelEffect(id EffectID) bool
}

// EffectID identifies a running effect
type EffectID uint64
