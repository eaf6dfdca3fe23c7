package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrTransport wraps network failures: the request never got a response.
	ErrTransport = errors.New("transport failure")
	// ErrUnauthorized matches an *Error with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedResponse wraps bodies that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// Kind classifies a gateway failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindValidation
	KindUnauthorized
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is a non-2xx response from the auth service.
type Error struct {
	StatusCode int
	// Detail is the service's "detail" (or "error") message, if any.
	Detail string
	// Fields holds per-field validation messages.
	Fields map[string][]string
	Body   []byte
}

func (e *Error) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Message is the human-readable text the service sent: the detail when
// present, otherwise the field errors as "field: msg; field: msg".
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) == 0 {
		return ""
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], " "))
	}
	return strings.Join(parts, "; ")
}

func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Body: body}

	var raw map[string]json.RawMessage
	if json.Unmarshal(body, &raw) != nil {
		return e
	}

	for key, val := range raw {
		switch key {
		case "detail", "error":
			var s string
			if json.Unmarshal(val, &s) == nil && e.Detail == "" {
				e.Detail = s
			}
			continue
		case "code":
			continue
		}

		var list []string
		if json.Unmarshal(val, &list) == nil {
			addField(e, key, list...)
			continue
		}
		var s string
		if json.Unmarshal(val, &s) == nil {
			addField(e, key, s)
		}
	}
	return e
}

func addField(e *Error, key string, msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[key] = append(e.Fields[key], msgs...)
}

// KindOf classifies err. Unrecognized errors are KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrTransport) {
		return KindTransport
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return KindUnknown
	}
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return KindUnauthorized
	case apiErr.StatusCode >= 500:
		return KindServer
	case apiErr.StatusCode >= 400:
		return KindValidation
	}
	return KindUnknown
}

// MessageOf extracts the service-provided message from err, or returns
// fallback when there is none.
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	return fallback
}
