package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/arenactl/internal/api/response"
	"github.com/mcoot/arenactl/internal/settings"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show aggregate server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Status
			if err := client.Get(cmd.Context(), "/api/v1/status", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List connected players (requires an admin password as --token)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Player
			if err := client.Get(cmd.Context(), "/api/v1/players", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings [field]",
		Short: "Show runtime settings",
		Long: `Show all runtime settings, or one of them.

Settings are changed with the config command, e.g.
  arenad exec --login <password> "config max_connections 100"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				var result response.Setting
				if err := client.Get(cmd.Context(), "/api/v1/settings/"+args[0], &result); err != nil {
					return err
				}
				output(cmd).Print(result)
				return nil
			}

			var result settings.Values
			if err := client.Get(cmd.Context(), "/api/v1/settings", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}
