package cli

import (
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/arenactl/internal/config"
	"github.com/mcoot/arenactl/internal/factory"
	"github.com/mcoot/arenactl/internal/settings"
)

// settingFlags maps serve flags onto runtime settings. Their raw values go
// through the same typed setters as the config command.
var settingFlags = []struct {
	flag  string
	field settings.Field
	usage string
}{
	{"name", settings.FieldServerName, "Server name"},
	{"gamemode", settings.FieldGameMode, "Game mode"},
	{"connections", settings.FieldMaxConnections, "Maximum websocket connections"},
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		noConsole  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the arena server",
		Long: `Run the arena server: the websocket command and chat endpoint, the
HTTP status API, /metrics and, unless disabled, the operator console on
stdin.

Configuration comes from --config (YAML) and ARENA_* environment
variables; flags override both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				host, port, err := splitAddr(addr)
				if err != nil {
					return err
				}
				appCfg.Server.Host, appCfg.Server.Port = host, port
			}
			if noConsole {
				appCfg.Console.Enabled = false
			}

			level, err := appCfg.Level()
			if err != nil {
				return err
			}
			// stdout belongs to the console
			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)

			app, err := factory.New(appCfg, factory.Options{
				Logger:     logger,
				ConsoleIn:  cmd.InOrStdin(),
				ConsoleOut: cmd.OutOrStdout(),
			})
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}

			if err := applySettingFlags(cmd, app.Settings); err != nil {
				_ = app.Audit.Flush(cmd.Context())
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address (host:port)")
	cmd.Flags().BoolVar(&noConsole, "no-console", false, "Disable the stdin operator console")
	for _, f := range settingFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}

	return cmd
}

func applySettingFlags(cmd *cobra.Command, store *settings.Store) error {
	for _, f := range settingFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		raw, err := cmd.Flags().GetString(f.flag)
		if err != nil {
			return err
		}
		if err := store.Set(f.field, raw); err != nil {
			return fmt.Errorf("--%s: %w", f.flag, err)
		}
	}
	return nil
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("--addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("--addr: invalid port %q", portStr)
	}
	return host, port, nil
}
