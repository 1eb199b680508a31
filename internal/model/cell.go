package model

import "math"

// CellID uniquely identifies a cell (a player cell or a food pellet)
type CellID uint32

// CellKind distinguishes controlled cells from consumables
type CellKind string

const (
	CellPlayer CellKind = "player"
	CellFood   CellKind = "food"
)

// Position is a point in the arena
type Position struct {
	X float64
	Y float64
}

// Color is an RGB cell color
type Color struct {
	R uint8
	G uint8
	B uint8
}

// Cell is a snapshot of one entity in the world
type Cell struct {
	ID       CellID
	Kind     CellKind
	Owner    PlayerID // NoPlayer for food
	Position Position
	Size     float64
	Color    Color
}

// Mass returns the mass represented by the cell's size
func (c Cell) Mass() float64 {
	return MassFromSize(c.Size)
}

// SizeFromMass converts a mass value into a cell size (radius)
func SizeFromMass(mass float64) float64 {
	return math.Sqrt(mass * 100)
}

// MassFromSize converts a cell size back into mass
func MassFromSize(size float64) float64 {
	return size * size / 100
}
