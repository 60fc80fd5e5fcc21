package adapter

import "context"

// Email is an outbound message built from a website form.
type Email struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Mailer sends transactional email. The returned map is the provider's JSON response.
type Mailer interface {
	Send(ctx context.Context, e Email) (map[string]any, error)
}

// LeadNotifier posts a short plain-text alert about a new lead.
type LeadNotifier interface {
	Notify(ctx context.Context, text string) error
}
