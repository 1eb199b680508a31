package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream chat and server messages",
		Long: `Connect to the server as a player and print every chat message,
broadcast and direct message as it arrives.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch(ctx, cmd, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "watcher", "Player name for the session")

	return cmd
}

func watch(ctx context.Context, cmd *cobra.Command, name string) error {
	out := output(cmd)

	// no read deadline while streaming
	remote, err := Dial(ctx, cfg.ServerURL, name, 0)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		_ = remote.Close()
	}()

	if cfg.Output != "json" {
		out.PrintMessage(fmt.Sprintf("Connected to %s", remote.Welcome().ServerName))
	}

	for {
		msg, err := remote.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				if cfg.Output != "json" {
					out.PrintMessage("Disconnected")
				}
				return nil
			}
			return err
		}
		out.PrintChat(msg)
	}
}
