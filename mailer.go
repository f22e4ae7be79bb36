package accounts

import (
	"context"
	"fmt"
	"strings"
)

// MailTemplate names a message body and knows how to render it around a
// confirmation code.
type MailTemplate struct {
	Subject string
	Body    string
}

// RegistrationEmail is the template for the initial confirmation message
// and for resends. The {{code}} marker is replaced with the live code.
var RegistrationEmail = MailTemplate{
	Subject: "Finish your registration",
	Body:    "<h1>Thanks for signing up</h1><p>To finish registration please follow the link: <a href='https://example.com/confirm-email?code={{code}}'>complete registration</a></p>",
}

// Render substitutes the code into the template body.
func (t MailTemplate) Render(code string) string {
	return strings.ReplaceAll(t.Body, "{{code}}", code)
}

// LogSender writes outgoing mail to the logger instead of a transport. Not
// for production: it logs addresses and live confirmation codes.
type LogSender struct {
	logger Logger
}

func NewLogSender(logger Logger) *LogSender {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, code string, template MailTemplate) error {
	s.logger.Info("send email", "to", to, "subject", template.Subject, "body", template.Render(code))
	return nil
}

// SentMail is one captured delivery.
type SentMail struct {
	To       string
	Code     string
	Template MailTemplate
}

// MemorySender captures deliveries for tests. FailWith forces every send
// to fail, which is how delivery-failure paths are exercised.
type MemorySender struct {
	Emails   []SentMail
	FailWith error
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, to, code string, template MailTemplate) error {
	if s.FailWith != nil {
		return s.FailWith
	}

	s.Emails = append(s.Emails, SentMail{
		To:       to,
		Code:     code,
		Template: template,
	})
	return nil
}

// Last returns the most recent captured delivery.
func (s *MemorySender) Last() (SentMail, error) {
	if len(s.Emails) == 0 {
		return SentMail{}, fmt.Errorf("no emails captured")
	}
	return s.Emails[len(s.Emails)-1], nil
}

var (
	_ MailSender = (*LogSender)(nil)
	_ MailSender = (*MemorySender)(nil)
)
