package model

import "strings"

type FormType string

const (
	FormDemo    FormType = "demo"
	FormContact FormType = "contact"
)

// ContactSubmission is a demo-request or contact form posted from the website.
// Optional fields are empty strings when the visitor skipped them.
type ContactSubmission struct {
	FormType           FormType `json:"formType" validate:"required,oneof=demo contact"`
	FirstName          string   `json:"firstName" validate:"required,max=100"`
	LastName           string   `json:"lastName" validate:"required,max=100"`
	Email              string   `json:"email" validate:"required,email,max=255"`
	Phone              string   `json:"phone" validate:"max=50"`
	Industry           string   `json:"industry,omitempty" validate:"max=100"`
	Budget             string   `json:"budget,omitempty" validate:"max=100"`
	Source             string   `json:"source,omitempty" validate:"max=100"`
	Message            string   `json:"message,omitempty" validate:"max=5000"`
	CompanyName        string   `json:"companyName,omitempty" validate:"max=200"`
	CompanySize        string   `json:"companySize,omitempty" validate:"max=100"`
	ProjectDescription string   `json:"projectDescription,omitempty" validate:"max=5000"`
}

func (s *ContactSubmission) Validate() error {
	return Validator().Struct(s)
}

func (s *ContactSubmission) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func (s *ContactSubmission) IsDemo() bool { return s.FormType == FormDemo }
