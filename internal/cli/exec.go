package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newExecCmd() *cobra.Command {
	var (
		password string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "exec [command line]...",
		Short: "Run chat commands on a running server",
		Long: `Connect to the server's websocket endpoint as a player, optionally log
in, and run each argument as a command line. Without arguments, command
lines are read from stdin, one per line.

Examples:
  arenad exec status
  arenad exec --login secret "addbot 5" pl
  echo "killall" | arenad exec --login secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output(cmd)

			remote, err := Dial(cmd.Context(), cfg.ServerURL, name, cfg.Timeout)
			if err != nil {
				return err
			}
			defer func() { _ = remote.Close() }()

			if cfg.Verbose {
				w := remote.Welcome()
				out.PrintMessage(fmt.Sprintf("Connected to %s as player %d", w.ServerName, w.PlayerID))
			}

			if password != "" {
				reply, err := remote.Login(password)
				if err != nil {
					out.Print(reply)
					return err
				}
				if cfg.Verbose {
					out.Print(reply)
				}
			}

			lines := args
			if len(lines) == 0 {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					lines = append(lines, scanner.Text())
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}

			for _, line := range lines {
				if strings.TrimSpace(line) == "" {
					continue
				}
				reply, err := remote.Run(line)
				if err != nil {
					return err
				}
				out.Print(reply)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "login", "", "Account password to log in with before running commands")
	cmd.Flags().StringVar(&name, "name", "arenad-exec", "Player name for the session")

	return cmd
}
