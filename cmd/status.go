package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/suranjanamuahaha/BlinkEd/internal/app"
	"github.com/suranjanamuahaha/BlinkEd/internal/auth"
	"github.com/suranjanamuahaha/BlinkEd/internal/credstore"
	"github.com/suranjanamuahaha/BlinkEd/internal/watcher"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the logged-in user, credential storage and token expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		printStatus(cmd.Context(), out, a)

		if !statusWatch {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Restore emits several updates per run; report only identity changes.
		var mu sync.Mutex
		last := identity(a.Session.State())
		unsubscribe := a.Session.Subscribe(func(st auth.State) {
			if st.Loading {
				return
			}
			mu.Lock()
			changed := identity(st) != last
			last = identity(st)
			mu.Unlock()
			if changed {
				fmt.Fprintln(out, "\n--- session changed ---")
				printStatus(ctx, out, a)
			}
		})
		defer unsubscribe()

		w, err := watcher.New(a.Store.Path(), 0, a.Logger, func(string) {
			a.Session.Restore(ctx)
		})
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer w.Close()

		fmt.Fprintln(out, "\nWatching for login changes... Press Ctrl+C to stop.")
		<-ctx.Done()
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "keep running and report login changes from other processes")
}

// identity is "" when anonymous and non-empty for any logged-in profile.
func identity(st auth.State) string {
	return st.User.DisplayName()
}

func printStatus(ctx context.Context, out io.Writer, a *app.App) {
	st := a.Session.State()

	fmt.Fprintln(out, "=== Session ===")
	if st.LoggedIn() {
		fmt.Fprintf(out, "  Logged in as: %s\n", st.User.DisplayName())
		if st.User.Email != "" {
			fmt.Fprintf(out, "  Email: %s\n", st.User.Email)
		}
	} else {
		fmt.Fprintln(out, "  Not logged in. Run 'blinked login -u NAME' to authenticate.")
	}
	fmt.Fprintf(out, "  Server: %s\n", a.Config.ServerURL)

	fmt.Fprintln(out, "\n=== Credentials ===")
	fmt.Fprintf(out, "  Storage: %s (%s)\n", a.Store.Path(), a.Config.Storage.Backend)

	token, err := a.Store.AccessToken(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(out, "  Could not read credentials: %v\n", err)
	case token == "":
		fmt.Fprintln(out, "  No access token stored.")
	default:
		if exp, ok := credstore.TokenExpiry(token); ok {
			fmt.Fprintf(out, "  Token expires: %s\n", exp.Local().Format("2006-01-02 15:04"))
		} else {
			fmt.Fprintln(out, "  Token expiry: unknown")
		}
	}
}
