package mail

import (
	"bytes"
	htmltemplate "html/template"
	"regexp"
	"strings"
	texttemplate "text/template"

	"github.com/alexraskin/schoolsite/internal/models"
)

const defaultSubject = "General enquiry"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Contact is the body of POST /api/contact.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Website string `json:"website"`
}

// Admissions is the body of POST /api/admissions.
type Admissions struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	StudentName string `json:"studentName"`
	Grade       string `json:"grade"`
	Message     string `json:"message"`
	Website     string `json:"website"`
}

// Enquiry is a form submission that can become an email.
type Enquiry interface {
	Honeypot() bool
	Validate() error
	Compose(to string) (Message, error)
}

func (c Contact) Honeypot() bool { return strings.TrimSpace(c.Website) != "" }

func (c Contact) Validate() error {
	if err := required(map[string]string{"name": c.Name, "email": c.Email, "message": c.Message}, "name", "email", "message"); err != nil {
		return err
	}
	return validEmail(c.Email)
}

func (c Contact) Compose(to string) (Message, error) {
	c = Contact{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Subject: strings.TrimSpace(c.Subject),
		Message: strings.TrimSpace(c.Message),
	}
	if c.Subject == "" {
		c.Subject = defaultSubject
	}
	return build(to, c.Email, "Website enquiry: "+c.Subject, "contact", c)
}

func (a Admissions) Honeypot() bool { return strings.TrimSpace(a.Website) != "" }

func (a Admissions) Validate() error {
	if err := required(map[string]string{"name": a.Name, "email": a.Email, "studentName": a.StudentName}, "name", "email", "studentName"); err != nil {
		return err
	}
	return validEmail(a.Email)
}

func (a Admissions) Compose(to string) (Message, error) {
	a = Admissions{
		Name:        strings.TrimSpace(a.Name),
		Email:       strings.TrimSpace(a.Email),
		Phone:       strings.TrimSpace(a.Phone),
		StudentName: strings.TrimSpace(a.StudentName),
		Grade:       strings.TrimSpace(a.Grade),
		Message:     strings.TrimSpace(a.Message),
	}
	return build(to, a.Email, "Admissions enquiry: "+a.StudentName, "admissions", a)
}

func required(values map[string]string, order ...string) error {
	for _, field := range order {
		if strings.TrimSpace(values[field]) == "" {
			return &models.ValidationError{Field: field, Reason: "is required"}
		}
	}
	return nil
}

func validEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return &models.ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}

var (
	htmlBodies = htmltemplate.Must(htmltemplate.New("").Parse(`
{{define "contact"}}<h2>{{.Subject}}</h2>
<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
<p style="white-space:pre-wrap">{{.Message}}</p>{{end}}
{{define "admissions"}}<h2>Admissions enquiry</h2>
<p><strong>Parent/guardian:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
<p><strong>Student:</strong> {{.StudentName}}{{if .Grade}} (grade {{.Grade}}){{end}}</p>
{{if .Message}}<p style="white-space:pre-wrap">{{.Message}}</p>{{end}}{{end}}`))

	textBodies = texttemplate.Must(texttemplate.New("").Parse(`
{{define "contact"}}{{.Subject}}
From: {{.Name}} <{{.Email}}>

{{.Message}}
{{end}}
{{define "admissions"}}Admissions enquiry
Parent/guardian: {{.Name}} <{{.Email}}>
{{if .Phone}}Phone: {{.Phone}}
{{end}}Student: {{.StudentName}}{{if .Grade}} (grade {{.Grade}}){{end}}
{{if .Message}}
{{.Message}}
{{end}}{{end}}`))
)

func build(to, replyTo, subject, name string, data any) (Message, error) {
	var html, text bytes.Buffer
	if err := htmlBodies.ExecuteTemplate(&html, name, data); err != nil {
		return Message{}, err
	}
	if err := textBodies.ExecuteTemplate(&text, name, data); err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{to},
		Subject: subject,
		HTML:    strings.TrimSpace(html.String()),
		Text:    strings.TrimSpace(text.String()),
		ReplyTo: replyTo,
	}, nil
}
