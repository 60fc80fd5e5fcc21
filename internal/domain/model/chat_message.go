package model

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	MaxMessages       = 50
	MaxMessageContent = 4000
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one turn of conversation history as sent by the website widget.
// Content length is counted in runes.
type ChatMessage struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"max=4000"`
}

// ChatRequest is the body of POST /chatbot. Messages are oldest first.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,max=50,dive"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator used for inbound payloads.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the request against the message count and content bounds.
func (r *ChatRequest) Validate() error {
	return Validator().Struct(r)
}

// LastUserMessage returns the content of the most recent user message, or "".
func (r *ChatRequest) LastUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}
