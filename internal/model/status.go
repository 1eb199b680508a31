package model

import "time"

// ServerStatus is the aggregate view reported by the status command
type ServerStatus struct {
	Humans         int
	Bots           int
	Minions        int
	MaxConnections int
	GameMode       string
	TickAverage    time.Duration // rolling average of the simulation tick
}

// Total returns the total number of connected player trackers
func (s ServerStatus) Total() int {
	return s.Humans + s.Bots + s.Minions
}
