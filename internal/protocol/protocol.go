// Package protocol defines the JSON envelopes exchanged on the websocket
// command and chat channel. Game-state snapshots are not carried here.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

const Version = "1"

// Client message types
const (
	TypeJoin    = "join"
	TypeChat    = "chat"
	TypeCommand = "command"
	TypeSplit   = "split"
)

// Server message types
const (
	TypeWelcome = "welcome"
	TypeMessage = "message"
	TypeError   = "error"
)

// Error codes
const (
	ErrBadRequest = "E_BAD_REQUEST"
	ErrUnknown    = "E_UNKNOWN_TYPE"
	ErrBusy       = "E_BUSY"
	ErrState      = "E_STATE"
)

// ErrEmptyType is returned for envelopes without a type
var ErrEmptyType = errors.New("message has no type")

// ClientMessage is anything a client sends
type ClientMessage struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"` // join
	Text string `json:"text,omitempty"` // chat, command
}

// ServerMessage is anything the server sends
type ServerMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`

	// welcome
	PlayerID   uint32 `json:"player_id,omitempty"`
	SessionID  uint64 `json:"session_id,omitempty"`
	ServerName string `json:"server_name,omitempty"`

	// message
	From   string `json:"from,omitempty"`
	FromID uint32 `json:"from_id,omitempty"`
	Text   string `json:"text,omitempty"`
	Direct bool   `json:"direct,omitempty"`

	// error
	Code string `json:"code,omitempty"`
}

// DecodeClient parses a client envelope
func DecodeClient(b []byte) (ClientMessage, error) {
	var m ClientMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	if m.Type == "" {
		return ClientMessage{}, ErrEmptyType
	}
	return m, nil
}

// DecodeServer parses a server envelope
func DecodeServer(b []byte) (ServerMessage, error) {
	var m ServerMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return ServerMessage{}, fmt.Errorf("decode server message: %w", err)
	}
	return m, nil
}

// Welcome builds the first message on a new connection
func Welcome(playerID uint32, sessionID uint64, serverName string) ServerMessage {
	return ServerMessage{
		Type:            TypeWelcome,
		ProtocolVersion: Version,
		PlayerID:        playerID,
		SessionID:       sessionID,
		ServerName:      serverName,
	}
}

// Error builds an error envelope
func Error(code, text string) ServerMessage {
	return ServerMessage{Type: TypeError, Code: code, Text: text}
}
