package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const helpText = `Type a topic to get an explainer video.
Commands: /new  /login  /signup  /logout  /whoami  /help  /quit`

// Console is a line-oriented terminal front-end for a Surface.
type Console struct {
	surface *Surface
	session Session
	in      io.Reader
	out     io.Writer

	lines   chan string
	done    chan struct{}
	scanErr error
}

func NewConsole(surface *Surface, session Session, in io.Reader, out io.Writer) *Console {
	return &Console{
		surface: surface,
		session: session,
		in:      in,
		out:     out,
	}
}

// Run reads lines until /quit, end of input or ctx is done. Cancelling ctx
// returns promptly even while waiting for input.
func (c *Console) Run(ctx context.Context) error {
	c.lines = make(chan string)
	c.done = make(chan struct{})
	defer close(c.done)
	go c.scan()

	fmt.Fprintln(c.out, "BlinkEd - AI Explainer")
	c.printStatus()
	fmt.Fprintln(c.out, helpText)

	for {
		line, ok := c.readLine(ctx, "> ")
		if !ok {
			if ctx.Err() != nil {
				fmt.Fprintln(c.out)
				return nil
			}
			return c.scanErr
		}

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(c.out, helpText)
		case "/new":
			c.surface.NewVideo()
			fmt.Fprintln(c.out, "Started a new video.")
		case "/login":
			c.surface.OpenAuth()
			c.runAuth(ctx)
		case "/signup":
			form := c.surface.OpenAuth()
			if form.Mode != ModeSignup {
				form.ToggleMode()
			}
			c.runAuth(ctx)
		case "/logout":
			if err := c.session.Logout(ctx); err != nil {
				fmt.Fprintf(c.out, "Warning: could not clear stored credentials: %v\n", err)
			}
			fmt.Fprintln(c.out, "Logged out.")
		case "/whoami":
			c.printStatus()
		default:
			c.send(ctx, line)
		}
	}
}

func (c *Console) send(ctx context.Context, line string) {
	c.surface.SetPrompt(line)

	result, err := c.surface.Send(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	switch result {
	case SendAccepted:
		transcript := c.surface.Transcript()
		c.printMessage(transcript[len(transcript)-1])
	case SendGated:
		fmt.Fprintln(c.out, "Please Sign In")
		fmt.Fprintln(c.out, "You've reached the free limit. Sign in to continue using BlinkEd.")
		answer, ok := c.readLine(ctx, "Sign in now? [y/N] ")
		if ok && strings.EqualFold(strings.TrimSpace(answer), "y") {
			c.surface.AcceptSignIn()
			c.runAuth(ctx)
		} else {
			c.surface.DismissSignIn()
		}
	}
}

// scan feeds input lines to readLine. A goroutine blocked in Scan when Run
// returns is left behind; it exits at the next line or end of input.
func (c *Console) scan() {
	defer close(c.lines)

	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		select {
		case c.lines <- sc.Text():
		case <-c.done:
			return
		}
	}
	c.scanErr = sc.Err()
}

// runAuth drives the auth popup until it closes. A blank username cancels.
func (c *Console) runAuth(ctx context.Context) {
	for {
		form := c.surface.AuthPopup()
		if form == nil {
			return
		}

		fmt.Fprintf(c.out, "--- %s --- (blank username cancels, /toggle switches mode)\n", form.Mode)

		username, ok := c.readLine(ctx, "Username: ")
		username = strings.TrimSpace(username)
		if !ok || username == "" {
			c.surface.CloseAuth()
			return
		}
		if username == "/toggle" {
			form.ToggleMode()
			continue
		}
		form.Username = username

		if form.Mode == ModeSignup {
			email, ok := c.readLine(ctx, "Email: ")
			if !ok {
				c.surface.CloseAuth()
				return
			}
			form.Email = strings.TrimSpace(email)
		}

		password, ok := c.readLine(ctx, "Password: ")
		if !ok {
			c.surface.CloseAuth()
			return
		}
		form.Password = password

		notice, err := c.surface.SubmitAuth(ctx)
		if err != nil {
			fmt.Fprintf(c.out, "[alert] %v\n", err)
			continue
		}
		fmt.Fprintln(c.out, notice)
	}
}

func (c *Console) readLine(ctx context.Context, prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	select {
	case line, ok := <-c.lines:
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

func (c *Console) printMessage(m Message) {
	if m.Role == RoleUser {
		fmt.Fprintf(c.out, "You: %s\n", m.Text)
		return
	}
	fmt.Fprintln(c.out, "Generated Video:")
	fmt.Fprintf(c.out, "  %s\n", m.VideoURL)
	if len(m.Links) > 0 {
		fmt.Fprintln(c.out, "Sources:")
		for _, link := range m.Links {
			fmt.Fprintf(c.out, "  - %s\n", link)
		}
	}
}

func (c *Console) printStatus() {
	st := c.session.State()
	if st.LoggedIn() {
		fmt.Fprintf(c.out, "Logged in as %s.\n", st.User.DisplayName())
		return
	}
	remaining := c.surface.Limit() - c.surface.PromptCount()
	if remaining < 0 {
		remaining = 0
	}
	fmt.Fprintf(c.out, "Not logged in. %d free prompt(s) left in this video.\n", remaining)
}
