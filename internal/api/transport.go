package api

import (
	"context"
	"fmt"
	"net/http"
)

// TokenSource yields the current access token. It is consulted on every
// request; an empty token means no Authorization header.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// BearerTransport decorates a RoundTripper with an Authorization header read
// from Tokens at send time.
type BearerTransport struct {
	Base   http.RoundTripper
	Tokens TokenSource
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.Tokens.AccessToken(req.Context())
	if err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, fmt.Errorf("reading access token: %w", err)
	}

	if token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base().RoundTrip(req)
}

func (t *BearerTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
