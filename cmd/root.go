package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suranjanamuahaha/BlinkEd/internal/app"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "blinked",
	Short:         "blinked CLI: AI explainer videos from the terminal",
	Version:       app.BuildVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $BLINKED_CONFIG or ~/.blinked/config.yaml)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
}

// loadApp wires the client and restores the stored session.
func loadApp(cmd *cobra.Command) (*app.App, error) {
	a, err := app.New(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	a.Session.Restore(cmd.Context())
	return a, nil
}
