package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear local credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if !a.Session.IsLoggedIn() {
			fmt.Fprintln(out, "Not currently logged in.")
			return nil
		}

		// Tokens are only dropped locally; there is no server-side revoke.
		if err := a.Session.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("clearing credentials: %w", err)
		}

		fmt.Fprintln(out, "Logged out successfully.")
		return nil
	},
}
