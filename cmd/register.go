package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	registerUsername string
	registerEmail    string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account (does not log in)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		password := registerPassword
		if password == "" {
			if password, err = readPassword(cmd, "Password: "); err != nil {
				return err
			}
		}

		if _, err := a.Session.Register(cmd.Context(), registerUsername, registerEmail, password); err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Registration successful! Please log in.")
		fmt.Fprintf(cmd.OutOrStdout(), "Run 'blinked login -u %s'.\n", registerUsername)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "account username")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "account password (read from stdin when omitted)")
	_ = registerCmd.MarkFlagRequired("username")
}
