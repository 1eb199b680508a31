package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/arenactl/internal/config"
)

func newCheckConfigCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate the server configuration without starting it",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			out := output(cmd)
			if cfg.Output == "json" {
				out.Print(map[string]any{
					"valid":    true,
					"accounts": len(appCfg.Accounts),
					"audit":    appCfg.Audit.Sink,
					"console":  appCfg.Console.Enabled,
					"port":     appCfg.Server.Port,
				})
				return nil
			}

			out.PrintMessage("Config OK")
			out.PrintMessage(fmt.Sprintf("Listen: %s:%d", appCfg.Server.Host, appCfg.Server.Port))
			out.PrintMessage(fmt.Sprintf("Accounts: %d", len(appCfg.Accounts)))
			out.PrintMessage(fmt.Sprintf("Audit sink: %s", appCfg.Audit.Sink))
			if appCfg.Console.Enabled {
				out.PrintMessage(fmt.Sprintf("Console: enabled as %s", appCfg.Console.Role))
			} else {
				out.PrintMessage("Console: disabled")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	return cmd
}
