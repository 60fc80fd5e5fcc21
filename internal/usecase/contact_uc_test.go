package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"smartrunai-edge/internal/domain"
	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/domain/ports/adapter"
	"smartrunai-edge/internal/usecase"
)

func demoSubmission() *model.ContactSubmission {
	return &model.ContactSubmission{
		FormType:    model.FormDemo,
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		CompanyName: "Analytical <Engines>",
	}
}

func TestContactUseCase(t *testing.T) {
	ctx := context.Background()
	to := []string{"info@smartrunai.com"}

	t.Run("demo request is emailed with reply-to and alerted", func(t *testing.T) {
		// --- Arrange ---
		mailer := &MockMailer{}
		alerts := &MockLeadNotifier{}
		uc := usecase.NewContactUseCase(mailer, alerts, "SmartRunAI <onboarding@resend.dev>", to, false, newTestLogger())

		// --- Act ---
		resp, err := uc.Submit(ctx, demoSubmission())

		// --- Assert ---
		if err != nil {
			t.Fatal(err)
		}
		if resp["id"] != "email-1" {
			t.Errorf("unexpected provider response %v", resp)
		}
		if len(mailer.sent) != 1 {
			t.Fatalf("expected one email, got %d", len(mailer.sent))
		}
		e := mailer.sent[0]
		if e.Subject != "New Demo Request from Ada Lovelace" {
			t.Errorf("unexpected subject %q", e.Subject)
		}
		if e.ReplyTo != "ada@example.com" || e.To[0] != "info@smartrunai.com" {
			t.Errorf("unexpected addressing %+v", e)
		}
		if !strings.Contains(e.HTML, "<h1>New Demo Request</h1>") {
			t.Error("expected demo heading")
		}
		if !strings.Contains(e.HTML, "Analytical &lt;Engines&gt;") {
			t.Error("expected submitted values to be escaped")
		}
		if !strings.Contains(e.HTML, "<strong>Phone:</strong> Not provided") {
			t.Error("expected Not provided for empty phone")
		}
		if len(alerts.texts) != 1 || !strings.Contains(alerts.texts[0], "Demo request from Ada Lovelace") {
			t.Errorf("unexpected alerts %v", alerts.texts)
		}
	})

	t.Run("contact form uses its own subject and message block", func(t *testing.T) {
		mailer := &MockMailer{}
		uc := usecase.NewContactUseCase(mailer, nil, "from", to, false, newTestLogger())
		sub := demoSubmission()
		sub.FormType = model.FormContact
		sub.Message = "Can you automate invoices?"

		if _, err := uc.Submit(ctx, sub); err != nil {
			t.Fatal(err)
		}
		e := mailer.sent[0]
		if e.Subject != "New Contact Form Submission from Ada Lovelace" {
			t.Errorf("unexpected subject %q", e.Subject)
		}
		if !strings.Contains(e.HTML, "<h2>Message</h2>\n<p>Can you automate invoices?</p>") {
			t.Errorf("message block missing:\n%s", e.HTML)
		}
		if strings.Contains(e.HTML, "Company Details") {
			t.Error("contact form should not render company details")
		}
	})

	t.Run("invalid submission is rejected before sending", func(t *testing.T) {
		mailer := &MockMailer{}
		uc := usecase.NewContactUseCase(mailer, nil, "from", to, false, newTestLogger())
		sub := demoSubmission()
		sub.Email = "nope"

		if _, err := uc.Submit(ctx, sub); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if len(mailer.sent) != 0 {
			t.Fatal("nothing should be sent")
		}
	})

	t.Run("mail failure is returned, alert failure is not", func(t *testing.T) {
		failing := &MockMailer{SendFunc: func(context.Context, adapter.Email) (map[string]any, error) {
			return nil, domain.ErrNotifyFailed
		}}
		uc := usecase.NewContactUseCase(failing, nil, "from", to, false, newTestLogger())
		if _, err := uc.Submit(ctx, demoSubmission()); !errors.Is(err, domain.ErrNotifyFailed) {
			t.Fatalf("expected ErrNotifyFailed, got %v", err)
		}

		alerts := &MockLeadNotifier{NotifyFunc: func(context.Context, string) error { return errors.New("telegram down") }}
		uc = usecase.NewContactUseCase(&MockMailer{}, alerts, "from", to, false, newTestLogger())
		if _, err := uc.Submit(ctx, demoSubmission()); err != nil {
			t.Fatalf("alert failure should not fail the submission: %v", err)
		}
	})
}
