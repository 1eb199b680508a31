// Package config loads the server configuration from an optional YAML file
// and ARENA_* environment variables. Environment values win.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/arenactl/internal/policy"
	"github.com/mcoot/arenactl/internal/services/auth"
	"github.com/mcoot/arenactl/internal/settings"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "ARENA_"

// Audit sink types
const (
	AuditSinkLog   = "log"
	AuditSinkRedis = "redis"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config is the full server configuration
type Config struct {
	LogLevel string         `yaml:"log_level" env:"LOG_LEVEL"`
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Console  ConsoleConfig  `yaml:"console" envPrefix:"CONSOLE_"`
	Accounts []auth.Account `yaml:"accounts"`
	Audit    AuditConfig    `yaml:"audit" envPrefix:"AUDIT_"`
	Commands CommandsConfig `yaml:"commands" envPrefix:"COMMANDS_"`
}

// ServerConfig covers the listener and the initial runtime settings
type ServerConfig struct {
	Host           string        `yaml:"host" env:"HOST"`
	Port           int           `yaml:"port" env:"PORT"`
	Name           string        `yaml:"name" env:"NAME"`
	GameMode       string        `yaml:"game_mode" env:"GAME_MODE"`
	MaxConnections int           `yaml:"max_connections" env:"MAX_CONNECTIONS"`
	PlayerSpeed    float64       `yaml:"player_speed" env:"PLAYER_SPEED"`
	SpawnMass      float64       `yaml:"spawn_mass" env:"SPAWN_MASS"`
	TickRate       time.Duration `yaml:"tick_rate" env:"TICK_RATE"`
	QueueSize      int           `yaml:"queue_size" env:"QUEUE_SIZE"`
}

// ConsoleConfig controls the operator console on stdin
type ConsoleConfig struct {
	Enabled bool        `yaml:"enabled" env:"ENABLED"`
	Role    policy.Role `yaml:"role" env:"ROLE"`
}

// AuditConfig selects where audit entries go. The log sink is always on;
// redis adds a stream.
type AuditConfig struct {
	Sink      string `yaml:"sink" env:"SINK"`
	RedisURL  string `yaml:"redis_url" env:"REDIS_URL"`
	Stream    string `yaml:"stream" env:"STREAM"`
	BatchSize int    `yaml:"batch_size" env:"BATCH_SIZE"`
}

// CommandsConfig holds behavior switches for built-in commands
type CommandsConfig struct {
	KillAllIncludesBots       bool `yaml:"kill_all_includes_bots" env:"KILL_ALL_INCLUDES_BOTS"`
	StatusCountsMinionsAsBots bool `yaml:"status_counts_minions_as_bots" env:"STATUS_COUNTS_MINIONS_AS_BOTS"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	values := settings.Defaults()
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:           8080,
			Name:           values.ServerName,
			GameMode:       values.GameMode,
			MaxConnections: values.MaxConnections,
			PlayerSpeed:    values.PlayerSpeed,
			SpawnMass:      values.SpawnMass,
			TickRate:       40 * time.Millisecond,
			QueueSize:      256,
		},
		Console: ConsoleConfig{
			Enabled: true,
			Role:    policy.Admin,
		},
		Audit: AuditConfig{
			Sink:      AuditSinkLog,
			Stream:    "audit",
			BatchSize: 16,
		},
		Commands: CommandsConfig{
			KillAllIncludesBots:       true,
			StatusCountsMinionsAsBots: true,
		},
	}
}

// Load reads path (if non-empty), applies environment overrides and
// validates the result
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseEnv overlays ARENA_* environment variables onto cfg
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks everything that would otherwise fail at startup
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalid, c.Server.Port)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	if c.Server.TickRate <= 0 {
		return fmt.Errorf("%w: server.tick_rate must be positive", ErrInvalid)
	}
	if c.Server.QueueSize <= 0 {
		return fmt.Errorf("%w: server.queue_size must be positive", ErrInvalid)
	}
	if err := c.ApplySettings(settings.NewStore(settings.Defaults())); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !c.Console.Role.Valid() {
		return fmt.Errorf("%w: console.role %v", ErrInvalid, c.Console.Role)
	}

	passwords := make(map[string]string, len(c.Accounts))
	for i, a := range c.Accounts {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("%w: accounts[%d] has no name", ErrInvalid, i)
		}
		if strings.TrimSpace(a.Password) == "" {
			return fmt.Errorf("%w: account %q has no password", ErrInvalid, a.Name)
		}
		if !a.Role.Valid() || a.Role == policy.Guest {
			return fmt.Errorf("%w: account %q must have a role above GUEST", ErrInvalid, a.Name)
		}
		// the first matching account wins, so a repeated password would
		// silently shadow the later account
		if other, dup := passwords[a.Password]; dup {
			return fmt.Errorf("%w: accounts %q and %q share a password", ErrInvalid, other, a.Name)
		}
		passwords[a.Password] = a.Name
	}

	switch c.Audit.Sink {
	case AuditSinkLog:
	case AuditSinkRedis:
		if c.Audit.RedisURL == "" {
			return fmt.Errorf("%w: audit.redis_url is required for the redis sink", ErrInvalid)
		}
		if c.Audit.BatchSize <= 0 {
			return fmt.Errorf("%w: audit.batch_size must be positive", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: audit.sink must be %q or %q", ErrInvalid, AuditSinkLog, AuditSinkRedis)
	}
	return nil
}

// ApplySettings writes the configured runtime settings into store through
// the same typed setters the config command uses
func (c Config) ApplySettings(store *settings.Store) error {
	pairs := []struct {
		field settings.Field
		raw   string
	}{
		{settings.FieldServerName, c.Server.Name},
		{settings.FieldGameMode, c.Server.GameMode},
		{settings.FieldMaxConnections, strconv.Itoa(c.Server.MaxConnections)},
		{settings.FieldPlayerSpeed, strconv.FormatFloat(c.Server.PlayerSpeed, 'g', -1, 64)},
		{settings.FieldSpawnMass, strconv.FormatFloat(c.Server.SpawnMass, 'g', -1, 64)},
	}
	for _, p := range pairs {
		if err := store.Set(p.field, p.raw); err != nil {
			return err
		}
	}
	return nil
}

// Level parses LogLevel; empty means info
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(c.LogLevel) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
