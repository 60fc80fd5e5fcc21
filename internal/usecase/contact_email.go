package usecase

import (
	"bytes"
	"fmt"
	"html/template"

	"smartrunai-edge/internal/domain/model"
)

const notProvided = "Not provided"

var contactEmailTmpl = template.Must(template.New("contact").Funcs(template.FuncMap{
	"orNA": func(s string) string {
		if s == "" {
			return notProvided
		}
		return s
	},
}).Parse(`{{if .IsDemo}}<h1>New Demo Request</h1>{{else}}<h1>New Contact Form Submission</h1>{{end}}
<h2>Contact Information</h2>
<ul>
  <li><strong>Name:</strong> {{.FirstName}} {{.LastName}}</li>
  <li><strong>Email:</strong> {{.Email}}</li>
  <li><strong>Phone:</strong> {{orNA .Phone}}</li>
</ul>
{{if .IsDemo}}
<h2>Company Details</h2>
<ul>
  <li><strong>Company Name:</strong> {{orNA .CompanyName}}</li>
  <li><strong>Company Size:</strong> {{orNA .CompanySize}}</li>
  <li><strong>Industry:</strong> {{orNA .Industry}}</li>
</ul>
<h2>Project Information</h2>
<ul>
  <li><strong>Budget Range:</strong> {{orNA .Budget}}</li>
  <li><strong>How they heard about us:</strong> {{orNA .Source}}</li>
</ul>
<h2>Project Description</h2>
<p>{{orNA .ProjectDescription}}</p>
{{else}}
<h2>Additional Details</h2>
<ul>
  <li><strong>Industry:</strong> {{orNA .Industry}}</li>
  <li><strong>Budget Range:</strong> {{orNA .Budget}}</li>
  <li><strong>How they heard about us:</strong> {{orNA .Source}}</li>
</ul>
<h2>Message</h2>
<p>{{orNA .Message}}</p>
{{end}}`))

func contactSubject(s *model.ContactSubmission) string {
	if s.IsDemo() {
		return fmt.Sprintf("New Demo Request from %s %s", s.FirstName, s.LastName)
	}
	return fmt.Sprintf("New Contact Form Submission from %s %s", s.FirstName, s.LastName)
}

func contactHTML(s *model.ContactSubmission) (string, error) {
	var buf bytes.Buffer
	if err := contactEmailTmpl.Execute(&buf, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// leadAlert is the short plain-text version posted to the team chat.
func leadAlert(s *model.ContactSubmission) string {
	kind := "Contact form"
	if s.IsDemo() {
		kind = "Demo request"
	}
	text := fmt.Sprintf("%s from %s <%s>", kind, s.FullName(), s.Email)
	if s.CompanyName != "" {
		text += "\nCompany: " + s.CompanyName
	}
	if s.Phone != "" {
		text += "\nPhone: " + s.Phone
	}
	return text
}
