package mailer

import (
	"fmt"
	"strings"

	mailtpl "github.com/oksasatya/go-clean-starter/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Html is optional; Text is recommended as fallback.
// You can also use a template by specifying Template and Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome" or "profile_updated"
	Data     map[string]any `json:"data,omitempty"`
}

// Content is a rendered message ready for sending.
type Content struct {
	Subject string
	Text    string
	HTML    string
}

// ensureRecipient fills Email and RecipientEmail in Data from To when absent.
func (j *EmailJob) ensureRecipient() {
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	for _, k := range []string{"Email", "RecipientEmail"} {
		if v, ok := j.Data[k]; !ok || fmt.Sprintf("%v", v) == "" {
			j.Data[k] = j.To
		}
	}
}

// Render resolves the job into a subject and bodies. Templated jobs are
// rendered from the embedded templates, the rest are sent as given.
func (j EmailJob) Render() (Content, error) {
	if strings.TrimSpace(j.To) == "" {
		return Content{}, fmt.Errorf("email job without recipient")
	}
	if j.Template == "" {
		if j.Text == "" && j.HTML == "" {
			return Content{}, fmt.Errorf("email job without body")
		}
		return Content{Subject: j.Subject, Text: j.Text, HTML: j.HTML}, nil
	}
	j.ensureRecipient()
	s, t, h, err := mailtpl.Render(strings.ToLower(j.Template), j.Data)
	if err != nil {
		return Content{}, err
	}
	if j.Subject != "" {
		s = j.Subject
	}
	return Content{Subject: strings.TrimSpace(s), Text: t, HTML: h}, nil
}
