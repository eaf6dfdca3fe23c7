package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/suranjanamuahaha/BlinkEd/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive explainer chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		console := chat.NewConsole(a.NewSurface(), a.Session, cmd.InOrStdin(), cmd.OutOrStdout())
		return console.Run(ctx)
	},
}
