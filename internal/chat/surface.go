package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/suranjanamuahaha/BlinkEd/internal/api"
	"github.com/suranjanamuahaha/BlinkEd/internal/auth"
)

// DefaultPromptLimit is how many prompts an anonymous user may send per
// video session.
const DefaultPromptLimit = 3

// Session is what the surface needs from the session store.
type Session interface {
	IsLoggedIn() bool
	State() auth.State
	Login(ctx context.Context, username, password string) (*api.Profile, error)
	Register(ctx context.Context, username, email, password string) (*api.Profile, error)
	Logout(ctx context.Context) error
}

// SendResult says what Send did.
type SendResult int

const (
	// SendIgnored: the prompt was blank.
	SendIgnored SendResult = iota
	// SendGated: the anonymous quota is used up; the sign-in prompt is open.
	SendGated
	// SendAccepted: a user and an AI message were appended.
	SendAccepted
)

// Surface holds the chat view state: prompt, transcript, anonymous prompt
// counter and which popup is open. It is not safe for concurrent use.
type Surface struct {
	session   Session
	responder Responder
	limit     int
	log       *slog.Logger

	videoID     uuid.UUID
	messages    []Message
	prompt      string
	promptCount int

	signInOpen bool
	authForm   *AuthForm
}

func NewSurface(session Session, responder Responder, limit int, logger *slog.Logger) *Surface {
	return &Surface{
		session:   session,
		responder: responder,
		limit:     limit,
		log:       logger.With("component", "chat"),
		videoID:   uuid.New(),
	}
}

func (s *Surface) SetPrompt(text string) { s.prompt = text }
func (s *Surface) Prompt() string        { return s.prompt }
func (s *Surface) PromptCount() int      { return s.promptCount }
func (s *Surface) Limit() int            { return s.limit }

// VideoID identifies the current video session.
func (s *Surface) VideoID() uuid.UUID { return s.videoID }

// Transcript returns a copy of the messages so far.
func (s *Surface) Transcript() []Message {
	return append([]Message(nil), s.messages...)
}

// Send submits the current prompt. An anonymous user at the limit gets the
// sign-in prompt instead; in that case nothing else changes.
func (s *Surface) Send(ctx context.Context) (SendResult, error) {
	text := s.prompt
	if strings.TrimSpace(text) == "" {
		return SendIgnored, nil
	}

	if !s.session.IsLoggedIn() && s.promptCount >= s.limit {
		s.signInOpen = true
		s.log.DebugContext(ctx, "anonymous prompt limit reached",
			slog.String("video_id", s.videoID.String()),
			slog.Int("count", s.promptCount),
		)
		return SendGated, nil
	}

	reply, err := s.responder.Respond(ctx, text)
	if err != nil {
		return SendIgnored, fmt.Errorf("generating response: %w", err)
	}
	reply.Role = RoleAI

	s.messages = append(s.messages, Message{Role: RoleUser, Text: text}, reply)
	s.promptCount++
	s.prompt = ""
	return SendAccepted, nil
}

// NewVideo starts over: empty transcript, prompt and counter.
func (s *Surface) NewVideo() {
	s.messages = nil
	s.prompt = ""
	s.promptCount = 0
	s.videoID = uuid.New()
}

// SignInPromptOpen reports whether the quota prompt is showing.
func (s *Surface) SignInPromptOpen() bool { return s.signInOpen }

// AcceptSignIn closes the quota prompt and opens the auth popup.
func (s *Surface) AcceptSignIn() *AuthForm {
	s.signInOpen = false
	return s.OpenAuth()
}

// DismissSignIn closes the quota prompt.
func (s *Surface) DismissSignIn() { s.signInOpen = false }

// OpenAuth opens the auth popup in login mode, or returns the open one.
func (s *Surface) OpenAuth() *AuthForm {
	if s.authForm == nil {
		s.authForm = &AuthForm{Mode: ModeLogin}
	}
	return s.authForm
}

// AuthPopup returns the open popup, or nil.
func (s *Surface) AuthPopup() *AuthForm { return s.authForm }

// CloseAuth closes the popup and drops whatever was typed.
func (s *Surface) CloseAuth() { s.authForm = nil }

// SubmitAuth hands the popup's fields to the session store. The popup
// closes only after a successful login. A successful registration switches
// the popup to login mode and returns a notice to show.
func (s *Surface) SubmitAuth(ctx context.Context) (string, error) {
	form := s.authForm
	if form == nil {
		return "", fmt.Errorf("auth popup is not open")
	}

	switch form.Mode {
	case ModeSignup:
		if _, err := s.session.Register(ctx, form.Username, form.Email, form.Password); err != nil {
			return "", err
		}
		form.ToggleMode()
		return "Registration successful! Please log in.", nil
	default:
		profile, err := s.session.Login(ctx, form.Username, form.Password)
		if err != nil {
			return "", err
		}
		s.CloseAuth()
		return "Login successful! Welcome, " + profile.DisplayName() + ".", nil
	}
}
