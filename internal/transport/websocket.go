package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/arenactl/internal/model"
	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/protocol"
	"github.com/mcoot/arenactl/internal/session"
	"github.com/mcoot/arenactl/internal/settings"
)

// Arena is what the websocket transport needs from the world besides the
// command bridge
type Arena interface {
	Join(name, remoteAddr string) model.PlayerID
	Leave(id model.PlayerID)
	Spawn(id model.PlayerID) error
	Split(id model.PlayerID) (model.CellID, error)
	Settings() *settings.Store
}

// WebsocketConfig holds connection tuning
type WebsocketConfig struct {
	WriteTimeout   time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

// DefaultWebsocketConfig returns sensible defaults
func DefaultWebsocketConfig() WebsocketConfig {
	return WebsocketConfig{
		WriteTimeout:   5 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     50 * time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     64,
	}
}

// WebsocketHandler upgrades connections into player sessions
type WebsocketHandler struct {
	mux      *Multiplexer
	sessions *session.Registry
	arena    Arena
	cfg      WebsocketConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	conns   map[*websocket.Conn]struct{}
	slots   int // reserved before upgrade, released when the handler returns
	closing bool
}

// NewWebsocketHandler creates the network session transport
func NewWebsocketHandler(mux *Multiplexer, sessions *session.Registry, arena Arena, cfg WebsocketConfig, logger *slog.Logger) *WebsocketHandler {
	return &WebsocketHandler{
		mux:      mux,
		sessions: sessions,
		arena:    arena,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "websocket")),
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// CloseAll disconnects every client and refuses new upgrades. Each
// connection's cleanup still runs, so players leave through the queue.
func (h *WebsocketHandler) CloseAll() {
	h.mu.Lock()
	h.closing = true
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = c.Close()
	}
}

// errFull and errClosing are the reasons reserve refuses a connection
var (
	errFull    = errors.New("server is full")
	errClosing = errors.New("server is shutting down")
)

// reserve claims one of limit connection slots
func (h *WebsocketHandler) reserve(limit int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return errClosing
	}
	if h.slots >= limit {
		return errFull
	}
	h.slots++
	return nil
}

func (h *WebsocketHandler) release() {
	h.mu.Lock()
	h.slots--
	h.mu.Unlock()
}

func (h *WebsocketHandler) track(c *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.conns[c] = struct{}{}
	return true
}

func (h *WebsocketHandler) untrack(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

// wsClient is the outbound half of one connection. Deliver never blocks;
// messages are dropped when the buffer is full.
type wsClient struct {
	send   chan []byte
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

func (c *wsClient) Deliver(msg model.ChatMessage) error {
	return c.push(protocol.ServerMessage{
		Type:   protocol.TypeMessage,
		From:   msg.FromName,
		FromID: uint32(msg.From),
		Text:   msg.Text,
		Direct: !msg.IsBroadcast(),
	})
}

func (c *wsClient) push(m protocol.ServerMessage) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		c.logger.Warn("websocket message dropped - client buffer full")
		return errors.New("client buffer full")
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ServeHTTP handles one websocket connection for its whole life
func (h *WebsocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.reserve(h.arena.Settings().Snapshot().MaxConnections); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer h.release()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()
	if !h.track(conn) {
		return
	}
	defer h.untrack(conn)

	addr := remoteHost(r)
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	playerID := h.arena.Join(name, addr)

	client := &wsClient{
		send:   make(chan []byte, h.cfg.SendBuffer),
		logger: h.logger.With(slog.Uint64("player_id", uint64(playerID))),
	}
	label := name
	if label == "" {
		label = "player"
	}
	sess := h.sessions.Open(session.Config{
		Label:      label,
		Transport:  session.TransportWebsocket,
		RemoteAddr: addr,
		PlayerID:   playerID,
		Role:       policy.Guest,
		Sink:       client,
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writerDone := make(chan struct{})
	go h.writeLoop(ctx, cancel, conn, client, writerDone)

	_ = client.push(protocol.Welcome(uint32(playerID), uint64(sess.ID()), h.arena.Settings().Snapshot().ServerName))

	h.readLoop(ctx, conn, sess, client)

	// cleanup
	h.sessions.Close(sess.ID())
	client.close()
	cancel()
	<-writerDone

	leave := func(context.Context) { h.arena.Leave(playerID) }
	if err := h.mux.SubmitFunc(context.Background(), sess, "leave", leave); err != nil {
		h.arena.Leave(playerID)
	}
}

func (h *WebsocketHandler) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, client *wsClient, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-client.send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				cancel()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cancel()
				return
			}
		}
	}
}

func (h *WebsocketHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *session.Session, client *wsClient) {
	conn.SetReadLimit(h.cfg.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Info("websocket read failed",
					slog.Uint64("session_id", uint64(sess.ID())),
					slog.Any("error", err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))

		msg, err := protocol.DecodeClient(data)
		if err != nil {
			_ = client.push(protocol.Error(protocol.ErrBadRequest, err.Error()))
			continue
		}
		if err := h.route(ctx, sess, client, msg); err != nil {
			if errors.Is(err, ErrClosed) {
				_ = client.push(protocol.Error(protocol.ErrBusy, "server is shutting down"))
				return
			}
			if ctx.Err() != nil {
				return
			}
			_ = client.push(protocol.Error(protocol.ErrBusy, err.Error()))
		}
	}
}

// route turns one client envelope into queued work
func (h *WebsocketHandler) route(ctx context.Context, sess *session.Session, client *wsClient, msg protocol.ClientMessage) error {
	switch msg.Type {
	case protocol.TypeCommand:
		return h.mux.Submit(ctx, sess, msg.Text)
	case protocol.TypeChat:
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return nil
		}
		if strings.HasPrefix(text, "/") {
			return h.mux.Submit(ctx, sess, text[1:])
		}
		return h.mux.SubmitChat(ctx, sess, text)
	case protocol.TypeJoin:
		return h.mux.SubmitFunc(ctx, sess, "join", func(context.Context) {
			if err := h.arena.Spawn(sess.PlayerID()); err != nil && !errors.Is(err, model.ErrInGame) {
				_ = client.push(protocol.Error(protocol.ErrState, err.Error()))
			}
		})
	case protocol.TypeSplit:
		return h.mux.SubmitFunc(ctx, sess, "split", func(context.Context) {
			if _, err := h.arena.Split(sess.PlayerID()); err != nil {
				_ = client.push(protocol.Error(protocol.ErrState, err.Error()))
			}
		})
	default:
		_ = client.push(protocol.Error(protocol.ErrUnknown, "unknown message type "+msg.Type))
		return nil
	}
}

// remoteHost returns the peer address without its port
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
