// Package settings holds the runtime-settable server fields. Every field
// has a fixed name and its own parser, so values are never assembled into
// code and evaluated.
package settings

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Errors
var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// Field names a settable value
type Field string

const (
	FieldServerName     Field = "server_name"
	FieldGameMode       Field = "game_mode"
	FieldMaxConnections Field = "max_connections"
	FieldPlayerSpeed    Field = "player_speed"
	FieldSpawnMass      Field = "spawn_mass"
)

// Values is a snapshot of all settable fields
type Values struct {
	ServerName     string  `json:"server_name"`
	GameMode       string  `json:"game_mode"`
	MaxConnections int     `json:"max_connections"`
	PlayerSpeed    float64 `json:"player_speed"`
	SpawnMass      float64 `json:"spawn_mass"`
}

// Defaults returns the values used when nothing is configured
func Defaults() Values {
	return Values{
		ServerName:     "arena",
		GameMode:       "ffa",
		MaxConnections: 64,
		PlayerSpeed:    1,
		SpawnMass:      10,
	}
}

type fieldDef struct {
	get func(v *Values) string
	set func(v *Values, raw string) error
}

var fields = map[Field]fieldDef{
	FieldServerName: {
		get: func(v *Values) string { return v.ServerName },
		set: func(v *Values, raw string) error {
			if raw == "" {
				return fmt.Errorf("%w: server name must not be empty", ErrInvalidValue)
			}
			v.ServerName = raw
			return nil
		},
	},
	FieldGameMode: {
		get: func(v *Values) string { return v.GameMode },
		set: func(v *Values, raw string) error {
			if raw == "" {
				return fmt.Errorf("%w: game mode must not be empty", ErrInvalidValue)
			}
			v.GameMode = raw
			return nil
		},
	},
	FieldMaxConnections: {
		get: func(v *Values) string { return strconv.Itoa(v.MaxConnections) },
		set: func(v *Values, raw string) error {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return fmt.Errorf("%w: max connections must be a whole number of at least 1", ErrInvalidValue)
			}
			v.MaxConnections = n
			return nil
		},
	},
	FieldPlayerSpeed: {
		get: func(v *Values) string { return formatFloat(v.PlayerSpeed) },
		set: func(v *Values, raw string) error {
			f, err := parsePositive(raw)
			if err != nil {
				return fmt.Errorf("%w: player speed %v", ErrInvalidValue, err)
			}
			v.PlayerSpeed = f
			return nil
		},
	},
	FieldSpawnMass: {
		get: func(v *Values) string { return formatFloat(v.SpawnMass) },
		set: func(v *Values, raw string) error {
			f, err := parsePositive(raw)
			if err != nil {
				return fmt.Errorf("%w: spawn mass %v", ErrInvalidValue, err)
			}
			v.SpawnMass = f
			return nil
		},
	},
}

// Fields returns every settable field in name order
func Fields() []Field {
	result := make([]Field, 0, len(fields))
	for f := range fields {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// ParseField resolves a field name case-insensitively
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := fields[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Store guards the live values
type Store struct {
	mu     sync.RWMutex
	values Values
}

// NewStore creates a store holding initial
func NewStore(initial Values) *Store {
	return &Store{values: initial}
}

// Snapshot returns a copy of the current values
func (s *Store) Snapshot() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

// Get returns the formatted value of field
func (s *Store) Get(field Field) (string, error) {
	def, ok := fields[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return def.get(&s.values), nil
}

// Set parses raw and assigns it to field. The store is unchanged on error.
func (s *Store) Set(field Field, raw string) error {
	def, ok := fields[field]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	raw = strings.TrimSpace(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.values
	if err := def.set(&next, raw); err != nil {
		return err
	}
	s.values = next
	return nil
}

// SetByName is Set with the field given by name
func (s *Store) SetByName(name, raw string) (Field, error) {
	field, err := ParseField(name)
	if err != nil {
		return "", err
	}
	return field, s.Set(field, raw)
}

func parsePositive(raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, errors.New("must be greater than 0")
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
