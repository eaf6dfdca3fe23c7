package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	registerPath = "/api/auth/register/"
	loginPath    = "/api/auth/login/"
	profilePath  = "/api/auth/me/"
)

// Client is the gateway to the BlinkEd auth service. It never retries: every
// failure is returned to the caller as is.
type Client struct {
	plain     *http.Client
	authed    *http.Client
	serverURL string
	log       *slog.Logger
}

// NewClient builds a Client for serverURL. Requests that need a credential
// go through a BearerTransport backed by tokens.
func NewClient(serverURL string, timeout time.Duration, tokens TokenSource, logger *slog.Logger) *Client {
	return NewClientWithTransport(serverURL, timeout, http.DefaultTransport, tokens, logger)
}

// NewClientWithTransport is NewClient with an explicit base transport.
func NewClientWithTransport(serverURL string, timeout time.Duration, base http.RoundTripper, tokens TokenSource, logger *slog.Logger) *Client {
	return &Client{
		plain: &http.Client{Timeout: timeout, Transport: base},
		authed: &http.Client{
			Timeout:   timeout,
			Transport: &BearerTransport{Base: base, Tokens: tokens},
		},
		serverURL: serverURL,
		log:       logger.With("component", "api"),
	}
}

// ServerURL is the fixed base address.
func (c *Client) ServerURL() string { return c.serverURL }

func (c *Client) doJSON(ctx context.Context, hc *http.Client, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "request failed", slog.String("method", method), slog.String("path", path), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "request done",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}

	if resp.StatusCode >= 400 {
		return newError(resp.StatusCode, respBody)
	}

	// An empty success body leaves result zero; callers decide if that is
	// malformed.
	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: decoding %s: %w", ErrMalformedResponse, path, err)
		}
	}
	return nil
}

// Register creates an account. It does not log in. A success response with
// no body yields an empty Profile.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Profile, error) {
	var resp Profile
	if err := c.doJSON(ctx, c.plain, http.MethodPost, registerPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges a username and password for a token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	var resp TokenPair
	if err := c.doJSON(ctx, c.plain, http.MethodPost, loginPath, req, &resp); err != nil {
		return nil, err
	}
	if resp.Access == "" {
		return nil, fmt.Errorf("%w: login response has no access token", ErrMalformedResponse)
	}
	return &resp, nil
}

// Profile returns the user the stored access token belongs to. A rejected
// token surfaces as an *Error matching ErrUnauthorized.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var resp Profile
	if err := c.doJSON(ctx, c.authed, http.MethodGet, profilePath, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Empty() {
		return nil, fmt.Errorf("%w: empty profile", ErrMalformedResponse)
	}
	return &resp, nil
}
