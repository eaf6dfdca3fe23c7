package api

import (
	"bytes"
	"encoding/json"
)

// UnnamedUser stands in for a profile that carries neither username nor email.
const UnnamedUser = "(logged in)"

// LoginRequest is the payload for POST /api/auth/login/
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for POST /api/auth/register/
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is returned from POST /api/auth/login/
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Profile is returned from GET /api/auth/me/ and, for a new account, from
// POST /api/auth/register/. The body is passed through untouched in Raw;
// Username and Email are decoded when present.
type Profile struct {
	Username string          `json:"username,omitempty"`
	Email    string          `json:"email,omitempty"`
	Raw      json.RawMessage `json:"-"`
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	type known Profile
	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}
	*p = Profile(k)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the original body when there is one.
func (p Profile) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	type known Profile
	return json.Marshal(known(p))
}

// Empty reports whether the profile carries no data at all.
func (p *Profile) Empty() bool {
	if p == nil {
		return true
	}
	raw := bytes.TrimSpace(p.Raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// DisplayName is what to show for the user: the username, else the email,
// else a fixed marker. The profile is opaque, so neither field is required.
func (p *Profile) DisplayName() string {
	switch {
	case p == nil:
		return ""
	case p.Username != "":
		return p.Username
	case p.Email != "":
		return p.Email
	default:
		return UnnamedUser
	}
}
