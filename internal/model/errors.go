package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrNotInGame      = errors.New("player is not in game")
	ErrInGame         = errors.New("player is in game")

	// Cell errors
	ErrCellNotFound = errors.New("cell not found")
	ErrCellLimit    = errors.New("cell limit reached")

	// Minion errors
	ErrMinionOwner = errors.New("minions cannot control minions")

	// Lifecycle errors
	ErrWorldStopped = errors.New("world is stopped")
)
