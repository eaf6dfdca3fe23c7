package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with username and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if st := a.Session.State(); st.LoggedIn() {
			fmt.Fprintf(out, "Already logged in as %s. Use 'blinked logout' first.\n", st.User.DisplayName())
			return nil
		}

		password := loginPassword
		if password == "" {
			if password, err = readPassword(cmd, "Password: "); err != nil {
				return err
			}
		}

		profile, err := a.Session.Login(cmd.Context(), loginUsername, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Fprintf(out, "Logged in as %s\n", profile.DisplayName())
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (read from stdin when omitted)")
	_ = loginCmd.MarkFlagRequired("username")
}

// readLine prints prompt and reads one line from the command's input.
func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", fmt.Errorf("reading input: no input")
	}
	return strings.TrimRight(sc.Text(), "\r"), nil
}

// readPassword is readLine without echo when input is a terminal. Piped
// input goes through readLine.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return readLine(cmd, prompt)
	}

	fmt.Fprint(cmd.OutOrStdout(), prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}
