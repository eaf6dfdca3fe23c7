package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/suranjanamuahaha/BlinkEd/internal/api"
	"github.com/suranjanamuahaha/BlinkEd/internal/credstore"
)

const (
	loginFallback    = "Login failed"
	registerFallback = "Registration failed"
)

// Gateway is the subset of api.Client the session needs.
type Gateway interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.Profile, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenPair, error)
	Profile(ctx context.Context) (*api.Profile, error)
}

// Service is the single authority for who is logged in. Construct one per
// process and pass it to whatever needs identity.
type Service struct {
	gw    Gateway
	store credstore.Store
	log   *slog.Logger

	mu        sync.Mutex
	state     State
	closed    bool
	listeners map[int]func(State)
	nextID    int
}

// NewService returns a Service in the loading state. Call Restore next.
func NewService(gw Gateway, store credstore.Store, logger *slog.Logger) *Service {
	return &Service{
		gw:        gw,
		store:     store,
		log:       logger.With("component", "session"),
		state:     State{Loading: true},
		listeners: make(map[int]func(State)),
	}
}

// State returns a snapshot.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsLoggedIn reports whether a profile is loaded.
func (s *Service) IsLoggedIn() bool {
	return s.State().LoggedIn()
}

// Subscribe registers fn to receive every state change. The returned func
// removes it.
func (s *Service) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Close stops the service from applying results of calls still in flight.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = make(map[int]func(State))
}

// update applies fn to the state unless the service is closed, then
// notifies listeners. It reports whether the change was applied.
func (s *Service) update(fn func(*State)) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	fn(&s.state)
	snapshot := s.state
	listeners := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return true
}

func (s *Service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Restore rebuilds the session from stored credentials. Any failure means
// "not logged in": the stored tokens are dropped and no error is reported.
// Loading is cleared on every path.
func (s *Service) Restore(ctx context.Context) {
	anonymous := func(st *State) {
		st.User = nil
		st.Error = ""
		st.Phase = PhaseAnonymous
	}
	defer s.update(func(st *State) { st.Loading = false })

	token, err := s.store.AccessToken(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "reading stored credentials", slog.String("error", err.Error()))
		s.update(anonymous)
		return
	}
	if token == "" {
		s.update(anonymous)
		return
	}

	profile, err := s.gw.Profile(ctx)
	if s.isClosed() {
		return
	}
	if err != nil {
		s.log.WarnContext(ctx, "session restore failed, clearing credentials",
			slog.String("kind", api.KindOf(err).String()),
			slog.String("error", err.Error()),
		)
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			s.log.ErrorContext(ctx, "clearing credentials", slog.String("error", clearErr.Error()))
		}
		s.update(anonymous)
		return
	}

	s.update(func(st *State) {
		st.User = profile
		st.Error = ""
		st.Phase = PhaseAuthenticated
	})
	s.log.DebugContext(ctx, "session restored", slog.String("username", profile.DisplayName()))
}

// Login authenticates and then fetches the profile. The two steps are not
// atomic; see Authenticate and CompleteLogin.
func (s *Service) Login(ctx context.Context, username, password string) (*api.Profile, error) {
	if err := s.Authenticate(ctx, username, password); err != nil {
		return nil, err
	}
	return s.CompleteLogin(ctx)
}

// Authenticate is the first login phase: exchange the password for tokens
// and persist both. On success the session is PhaseProfilePending. On
// failure the stored tokens are untouched.
func (s *Service) Authenticate(ctx context.Context, username, password string) error {
	pair, err := s.gw.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return s.fail(ctx, "login", loginFallback, err)
	}

	if err := s.store.Save(ctx, credstore.Credentials{AccessToken: pair.Access, RefreshToken: pair.Refresh}); err != nil {
		return s.fail(ctx, "login", loginFallback, err)
	}

	s.update(func(st *State) {
		st.User = nil
		st.Phase = PhaseProfilePending
	})
	return nil
}

// CompleteLogin is the second login phase: fetch the profile with the stored
// token. On failure the session stays PhaseProfilePending.
func (s *Service) CompleteLogin(ctx context.Context) (*api.Profile, error) {
	token, err := s.store.AccessToken(ctx)
	if err != nil {
		return nil, s.fail(ctx, "login", loginFallback, err)
	}
	if token == "" {
		return nil, s.fail(ctx, "login", loginFallback, ErrNotLoggedIn)
	}

	profile, err := s.gw.Profile(ctx)
	if err != nil {
		return nil, s.fail(ctx, "login", loginFallback, err)
	}

	s.update(func(st *State) {
		st.User = profile
		st.Error = ""
		st.Phase = PhaseAuthenticated
	})
	s.log.InfoContext(ctx, "logged in", slog.String("username", profile.DisplayName()))
	return profile, nil
}

// Register creates an account. It does not log in.
func (s *Service) Register(ctx context.Context, username, email, password string) (*api.Profile, error) {
	acct, err := s.gw.Register(ctx, api.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, s.fail(ctx, "register", registerFallback, err)
	}

	s.update(func(st *State) { st.Error = "" })
	s.log.InfoContext(ctx, "registered", slog.String("username", username))
	return acct, nil
}

// Logout drops both stored tokens and resets the session. No network call
// is made. The state is reset even when clearing storage fails.
func (s *Service) Logout(ctx context.Context) error {
	err := s.store.Clear(ctx)
	s.update(func(st *State) {
		st.User = nil
		st.Error = ""
		st.Phase = PhaseAnonymous
	})
	if err != nil {
		s.log.ErrorContext(ctx, "clearing credentials", slog.String("error", err.Error()))
	}
	return err
}

func (s *Service) fail(ctx context.Context, op, fallback string, err error) error {
	msg := api.MessageOf(err, fallback)
	s.update(func(st *State) { st.Error = msg })
	s.log.WarnContext(ctx, op+" failed",
		slog.String("kind", api.KindOf(err).String()),
		slog.String("error", err.Error()),
	)
	return &Error{Op: op, Message: msg, Err: err}
}
