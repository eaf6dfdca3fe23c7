package chat

import (
	"context"
)

type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Message is one transcript entry. User messages carry Text; AI messages
// carry the generated video and its sources.
type Message struct {
	Role     Role
	Text     string
	VideoURL string
	Links    []string
}

// Responder produces the AI reply for a prompt.
type Responder interface {
	Respond(ctx context.Context, prompt string) (Message, error)
}

// DemoResponder answers every prompt with the same video and links.
type DemoResponder struct {
	VideoURL string
	Links    []string
}

func (d DemoResponder) Respond(ctx context.Context, prompt string) (Message, error) {
	return Message{
		Role:     RoleAI,
		VideoURL: d.VideoURL,
		Links:    append([]string(nil), d.Links...),
	}, nil
}
