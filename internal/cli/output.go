package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/mcoot/arenactl/internal/api/response"
	"github.com/mcoot/arenactl/internal/protocol"
	"github.com/mcoot/arenactl/internal/settings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errOut, string(data))
	} else {
		fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.out, string(data))
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

// PrintChat outputs one streamed message; JSON output is one line each
func (o *Output) PrintChat(msg protocol.ServerMessage) {
	if o.format == "json" {
		data, _ := json.Marshal(msg)
		fmt.Fprintln(o.out, string(data))
		return
	}
	o.printServerMessage(msg)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Reply:
		o.printReply(v)
	case response.Status:
		o.printStatus(v)
	case []response.Player:
		o.printPlayers(v)
	case settings.Values:
		o.printSettings(v)
	case response.Setting:
		fmt.Fprintf(o.out, "%s = %s\n", v.Field, v.Value)
	case HealthResult:
		fmt.Fprintf(o.out, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printReply(r Reply) {
	for _, m := range r.Messages {
		o.printServerMessage(m)
	}
}

func (o *Output) printServerMessage(m protocol.ServerMessage) {
	switch {
	case m.Type == protocol.TypeError:
		fmt.Fprintf(o.out, "[%s] %s\n", m.Code, m.Text)
	case m.From != "" && !m.Direct:
		fmt.Fprintf(o.out, "%s: %s\n", m.From, m.Text)
	default:
		fmt.Fprintln(o.out, m.Text)
	}
}

func (o *Output) printStatus(s response.Status) {
	fmt.Fprintf(o.out, "Server: %s (%s)\n", s.ServerName, s.GameMode)
	fmt.Fprintf(o.out, "Players: %d/%d (humans %d, bots %d, minions %d)\n",
		s.Total, s.MaxConnections, s.Humans, s.Bots, s.Minions)
	fmt.Fprintf(o.out, "Sessions: %d\n", s.Sessions)
	fmt.Fprintf(o.out, "Tick: %.1fms (%s)\n", s.TickAverageMS, s.Lag)
	fmt.Fprintf(o.out, "Uptime: %ds\n", s.UptimeSeconds)
}

func (o *Output) printPlayers(players []response.Player) {
	if len(players) == 0 {
		fmt.Fprintln(o.out, "No players connected")
		return
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	for _, p := range players {
		addr := p.RemoteAddr
		if addr == "" {
			addr = "-"
		}
		fmt.Fprintf(o.out, "%4d  %-7s %-20s %-15s cells=%d\n", p.ID, p.Kind, p.Name, addr, p.Cells)
	}
}

func (o *Output) printSettings(v settings.Values) {
	fmt.Fprintf(o.out, "server_name = %s\n", v.ServerName)
	fmt.Fprintf(o.out, "game_mode = %s\n", v.GameMode)
	fmt.Fprintf(o.out, "max_connections = %d\n", v.MaxConnections)
	fmt.Fprintf(o.out, "player_speed = %g\n", v.PlayerSpeed)
	fmt.Fprintf(o.out, "spawn_mass = %g\n", v.SpawnMass)
}
