package notify

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// MailSender sends prepared messages. *gomail.Dialer satisfies it.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mails each notification to a fixed recipient
type EmailNotifier struct {
	sender MailSender
	from   string
	to     string
}

// NewEmailNotifier creates a notifier that dials the SMTP server for every message
func NewEmailNotifier(smtpHost string, smtpPort int, smtpUser, smtpPassword, from, to string) *EmailNotifier {
	return NewEmailNotifierWithSender(gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword), from, to)
}

// NewEmailNotifierWithSender creates a notifier over an existing sender
func NewEmailNotifierWithSender(sender MailSender, from, to string) *EmailNotifier {
	return &EmailNotifier{sender: sender, from: from, to: to}
}

// Notify implements Notifier
func (n *EmailNotifier) Notify(ctx context.Context, title, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", title)
	m.SetBody("text/plain", body)
	m.AddAlternative("text/html", fmt.Sprintf("<h3>%s</h3><p>%s</p>", html.EscapeString(title), html.EscapeString(body)))

	if err := sendWithContext(ctx, func() error { return n.sender.DialAndSend(m) }); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}
	return nil
}
