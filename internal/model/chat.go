package model

import "time"

// ChatMessage is an ephemeral chat line. A zero Target broadcasts to everyone.
// Delivery is fire-and-forget.
type ChatMessage struct {
	From     PlayerID // NoPlayer for server messages
	FromName string
	Target   PlayerID
	Text     string
	SentAt   time.Time
}

// IsBroadcast returns true if the message is not addressed to a single player
func (m ChatMessage) IsBroadcast() bool {
	return m.Target == NoPlayer
}

// IsServer returns true if the message has no player sender
func (m ChatMessage) IsServer() bool {
	return m.From == NoPlayer && m.FromName == ""
}
