package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/arenactl/internal/protocol"
)

// Remote is a websocket session against a running server
type Remote struct {
	conn    *websocket.Conn
	welcome protocol.ServerMessage
	timeout time.Duration
}

// Reply is everything the server sent back for one command line
type Reply struct {
	Command  string                   `json:"command"`
	Messages []protocol.ServerMessage `json:"messages"`
}

// websocketURL turns the HTTP server URL into the /ws endpoint
func websocketURL(serverURL, name string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path += "/ws"
	q := u.Query()
	if name != "" {
		q.Set("name", name)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial connects and waits for the welcome envelope
func Dial(ctx context.Context, serverURL, name string, timeout time.Duration) (*Remote, error) {
	wsURL, err := websocketURL(serverURL, name)
	if err != nil {
		return nil, err
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connection failed: HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("connection failed: %w", err)
	}

	r := &Remote{conn: conn, timeout: timeout}
	msg, err := r.Next()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if msg.Type != protocol.TypeWelcome {
		_ = conn.Close()
		return nil, fmt.Errorf("expected welcome, got %q", msg.Type)
	}
	r.welcome = msg
	return r, nil
}

// Welcome returns the server's greeting
func (r *Remote) Welcome() protocol.ServerMessage {
	return r.welcome
}

// Close disconnects
func (r *Remote) Close() error {
	_ = r.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return r.conn.Close()
}

// Send writes one client envelope
func (r *Remote) Send(msg protocol.ClientMessage) error {
	var deadline time.Time
	if r.timeout > 0 {
		deadline = time.Now().Add(r.timeout)
	}
	_ = r.conn.SetWriteDeadline(deadline)
	return r.conn.WriteJSON(msg)
}

// Next reads one server envelope. A zero timeout waits forever.
func (r *Remote) Next() (protocol.ServerMessage, error) {
	var deadline time.Time
	if r.timeout > 0 {
		deadline = time.Now().Add(r.timeout)
	}
	_ = r.conn.SetReadDeadline(deadline)

	var msg protocol.ServerMessage
	if err := r.conn.ReadJSON(&msg); err != nil {
		return msg, fmt.Errorf("read: %w", err)
	}
	return msg, nil
}

// Run sends a command line and collects the direct replies and errors it
// produced. Commands run in submission order, so an id command queued
// behind the line marks the end of its output. Broadcast chat arriving
// meanwhile is skipped.
func (r *Remote) Run(line string) (Reply, error) {
	line = strings.TrimSpace(line)
	reply := Reply{Command: line}
	if line == "" {
		return reply, nil
	}

	fence := fmt.Sprintf("Your PlayerID is %d", r.welcome.PlayerID)
	selfFenced := commandName(line) == "id"

	if err := r.Send(protocol.ClientMessage{Type: protocol.TypeCommand, Text: line}); err != nil {
		return reply, err
	}
	if !selfFenced {
		if err := r.Send(protocol.ClientMessage{Type: protocol.TypeCommand, Text: "id"}); err != nil {
			return reply, err
		}
	}

	for {
		msg, err := r.Next()
		if err != nil {
			return reply, err
		}
		switch {
		case msg.Type == protocol.TypeError:
			reply.Messages = append(reply.Messages, msg)
			if msg.Code == protocol.ErrBusy {
				return reply, errors.New(msg.Text)
			}
		case msg.Type == protocol.TypeMessage && msg.Direct:
			if msg.Text == fence {
				if selfFenced {
					reply.Messages = append(reply.Messages, msg)
				}
				return reply, nil
			}
			reply.Messages = append(reply.Messages, msg)
		}
	}
}

// Login runs the login command and fails unless it succeeded
func (r *Remote) Login(password string) (Reply, error) {
	reply, err := r.Run("login " + password)
	reply.Command = "login"
	if err != nil {
		return reply, err
	}
	for _, m := range reply.Messages {
		if strings.HasPrefix(m.Text, "Login done as ") {
			return reply, nil
		}
	}
	return reply, errors.New("login failed")
}

func commandName(line string) string {
	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
