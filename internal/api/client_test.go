package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suranjanamuahaha/BlinkEd/internal/authtest"
	"github.com/suranjanamuahaha/BlinkEd/internal/credstore"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(url string, tokens TokenSource) *Client {
	return NewClient(url, 5*time.Second, tokens, newTestLogger())
}

func TestClient_Register(t *testing.T) {
	srv := authtest.NewServer()
	defer srv.Close()

	c := newTestClient(srv.URL, credstore.NewMemoryStore(credstore.Credentials{}))
	acct, err := c.Register(context.Background(), RegisterRequest{Username: "alice", Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "alice", acct.Username)
	assert.Equal(t, "a@example.com", acct.Email)
	assert.Contains(t, string(acct.Raw), `"id":1`, "raw payload passed through")
	assert.Equal(t, 1, srv.Calls(authtest.RouteRegister))
}

func TestClient_Register_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, credstore.NewMemoryStore(credstore.Credentials{}))
	acct, err := c.Register(context.Background(), RegisterRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.Empty(t, acct.Username)
}

func TestClient_EmptyBodyStillMalformedForLoginAndProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, credstore.NewMemoryStore(credstore.Credentials{AccessToken: "tok"}))

	_, err := c.Login(context.Background(), LoginRequest{Username: "a", Password: "b"})
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = c.Profile(context.Background())
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestClient_Register_ValidationError(t *testing.T) {
	srv := authtest.NewServer()
	defer srv.Close()
	srv.AddUser("alice", "a@example.com", "secret")

	c := newTestClient(srv.URL, credstore.NewMemoryStore(credstore.Credentials{}))
	_, err := c.Register(context.Background(), RegisterRequest{Username: "alice", Password: ""})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, []string{"A user with that username already exists."}, apiErr.Fields["username"])
	assert.Equal(t, []string{"This field may not be blank."}, apiErr.Fields["password"])
	assert.Equal(t,
		"password: This field may not be blank.; username: A user with that username already exists.",
		apiErr.Message())
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestClient_Login(t *testing.T) {
	srv := authtest.NewServer()
	defer srv.Close()
	srv.AddUser("alice", "a@example.com", "secret")

	c := newTestClient(srv.URL, credstore.NewMemoryStore(credstore.Credentials{}))
	pair, err := c.Login(context.Background(), LoginRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
}

func TestClient_Login_BadCredentials(t *testing.T) {
	srv := authtest.NewServer()
	defer srv.Close()

	c := newTestClient(srv.URL, credstore.NewMemoryStore(credstore.Credentials{}))
	_, err := c.Login(context.Background(), LoginRequest{Username: "bob", Password: "nope"})
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, KindUnauthorized, KindOf(err))
	assert.Equal(t, "No active account found with the given credentials", MessageOf(err, "Login failed"))
}

func TestClient_Login_DoesNotSendBearer(t *testing.T) {
	srv := authtest.NewServer()
	defer srv.Close()
	srv.AddUser("alice", "", "secret")

	c := newTestClient(srv.URL, credstore.NewMemoryStore(credstore.Credentials{AccessToken: "stale"}))
	_, err := c.Login(context.Background(), LoginRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, []string{""}, srv.AuthHeaders())
}

func TestClient_Login_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"refresh":"r"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, credstore.NewMemoryStore(credstore.Credentials{}))
	_, err := c.Login(context.Background(), LoginRequest{Username: "a", Password: "b"})
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestClient_Profile_ReadsTokenOnEveryCall(t *testing.T) {
	srv := authtest.NewServer()
	defer srv.Close()
	srv.AddUser("alice", "a@example.com", "secret")

	store := credstore.NewMemoryStore(credstore.Credentials{})
	c := newTestClient(srv.URL, store)
	ctx := context.Background()

	// No token: no header, 401.
	_, err := c.Profile(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	// Token written behind the client's back is used on the next call.
	tok := srv.IssueToken("alice")
	require.NoError(t, store.Save(ctx, credstore.Credentials{AccessToken: tok, RefreshToken: "r"}))

	p, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)

	// Cleared externally: header disappears again.
	require.NoError(t, store.Clear(ctx))
	_, err = c.Profile(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, []string{"", "Bearer " + tok, ""}, srv.AuthHeaders())
}

func TestClient_Profile_ExpiredTokenSurfacedVerbatim(t *testing.T) {
	srv := authtest.NewServer()
	defer srv.Close()
	srv.AddUser("alice", "", "secret")

	tok := srv.IssueToken("alice")
	srv.RevokeAll()

	c := newTestClient(srv.URL, credstore.NewMemoryStore(credstore.Credentials{AccessToken: tok}))
	_, err := c.Profile(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Given token not valid for any token type", apiErr.Detail)
	assert.Equal(t, 1, srv.Calls(authtest.RouteProfile), "no retry")
}

func TestClient_Profile_Malformed(t *testing.T) {
	for name, body := range map[string]string{
		"not json": `<html>oops</html>`,
		"null":     `null`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := authtest.NewServer()
			defer srv.Close()
			srv.AddUser("alice", "", "secret")
			srv.SetProfileBody(body)

			tok := srv.IssueToken("alice")
			c := newTestClient(srv.URL, credstore.NewMemoryStore(credstore.Credentials{AccessToken: tok}))
			_, err := c.Profile(context.Background())
			require.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(url, credstore.NewMemoryStore(credstore.Credentials{}))
	_, err := c.Login(context.Background(), LoginRequest{Username: "a", Password: "b"})
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, "Login failed", MessageOf(err, "Login failed"))
}

func TestClient_TokenSourceFailure(t *testing.T) {
	srv := authtest.NewServer()
	defer srv.Close()

	store := credstore.NewMemoryStore(credstore.Credentials{})
	store.LoadErr = errors.New("disk on fire")

	c := newTestClient(srv.URL, store)
	_, err := c.Profile(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, 0, srv.TotalCalls())
}

func TestClient_ServerError(t *testing.T) {
	srv := authtest.NewServer()
	defer srv.Close()
	srv.FailLogin(http.StatusBadGateway)

	c := newTestClient(srv.URL, credstore.NewMemoryStore(credstore.Credentials{}))
	_, err := c.Login(context.Background(), LoginRequest{Username: "a", Password: "b"})
	assert.Equal(t, KindServer, KindOf(err))
	assert.Equal(t, 1, srv.Calls(authtest.RouteLogin))
}
