//go:build !integration

package model

import (
	"strings"
	"testing"
)

func userMsgs(n int) []ChatMessage {
	out := make([]ChatMessage, n)
	for i := range out {
		out[i] = ChatMessage{Role: RoleUser, Content: "hi"}
	}
	return out
}

func TestChatRequestValidate(t *testing.T) {
	t.Run("within bounds", func(t *testing.T) {
		for _, n := range []int{1, 2, 49, 50} {
			req := ChatRequest{Messages: userMsgs(n)}
			if err := req.Validate(); err != nil {
				t.Fatalf("n=%d: expected valid, got %v", n, err)
			}
		}
	})

	t.Run("too many messages", func(t *testing.T) {
		req := ChatRequest{Messages: userMsgs(MaxMessages + 1)}
		if err := req.Validate(); err == nil {
			t.Fatal("expected error for 51 messages")
		}
	})

	t.Run("empty list", func(t *testing.T) {
		req := ChatRequest{}
		if err := req.Validate(); err == nil {
			t.Fatal("expected error for empty message list")
		}
	})

	t.Run("content at the cap counts runes", func(t *testing.T) {
		// 4000 two-byte runes is 8000 bytes but still within bounds.
		req := ChatRequest{Messages: []ChatMessage{{Role: RoleUser, Content: strings.Repeat("é", MaxMessageContent)}}}
		if err := req.Validate(); err != nil {
			t.Fatalf("expected valid, got %v", err)
		}
	})

	t.Run("content over the cap", func(t *testing.T) {
		req := ChatRequest{Messages: []ChatMessage{{Role: RoleUser, Content: strings.Repeat("a", MaxMessageContent+1)}}}
		if err := req.Validate(); err == nil {
			t.Fatal("expected error for 4001 chars")
		}
	})

	t.Run("bad role", func(t *testing.T) {
		for _, role := range []Role{"", "tool", "User"} {
			req := ChatRequest{Messages: []ChatMessage{{Role: role, Content: "x"}}}
			if err := req.Validate(); err == nil {
				t.Fatalf("role %q: expected error", role)
			}
		}
	})

	t.Run("all roles accepted", func(t *testing.T) {
		req := ChatRequest{Messages: []ChatMessage{
			{Role: RoleSystem, Content: "s"},
			{Role: RoleUser, Content: "u"},
			{Role: RoleAssistant, Content: "a"},
		}}
		if err := req.Validate(); err != nil {
			t.Fatalf("expected valid, got %v", err)
		}
	})
}

func TestLastUserMessage(t *testing.T) {
	req := ChatRequest{Messages: []ChatMessage{
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "reply"},
		{Role: RoleUser, Content: "second"},
		{Role: RoleAssistant, Content: "reply 2"},
	}}
	if got := req.LastUserMessage(); got != "second" {
		t.Errorf("expected 'second', got %q", got)
	}

	none := ChatRequest{Messages: []ChatMessage{{Role: RoleAssistant, Content: "x"}}}
	if got := none.LastUserMessage(); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestContactSubmissionValidate(t *testing.T) {
	ok := ContactSubmission{
		FormType:  FormDemo,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if ok.FullName() != "Ada Lovelace" {
		t.Errorf("unexpected full name %q", ok.FullName())
	}
	if !ok.IsDemo() {
		t.Error("expected demo form")
	}

	bad := ok
	bad.Email = "not-an-email"
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid email to fail")
	}

	bad = ok
	bad.FormType = "newsletter"
	if err := bad.Validate(); err == nil {
		t.Error("expected unknown form type to fail")
	}
}
