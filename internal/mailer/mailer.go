package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Mailer dispatches outbound notification email. Implementations must
// not block beyond the request's context.
type Mailer interface {
	SendEmailChangeConfirmation(ctx context.Context, oldEmail, newEmail, verifyURL string) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendEmailChangeConfirmation mails the verification link for a
// pending email change to the requested new address.
func (m *SMTPMailer) SendEmailChangeConfirmation(ctx context.Context, oldEmail, newEmail, verifyURL string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(newEmail); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject("[TodoApp] Confirm your email address change")
	msg.SetBodyString(mail.TypeTextHTML, emailChangeBody(oldEmail, newEmail, verifyURL))

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send confirmation mail: %w", err)
	}
	return nil
}

func emailChangeBody(oldEmail, newEmail, verifyURL string) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>[TodoApp] Confirm your email address change</h2>
  <p>We received a request to change the email address on your account:</p>
  <div style="background-color: #f3f4f6; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>Current address:</strong> %s</p>
    <p><strong>New address:</strong> %s</p>
  </div>
  <p>If you made this request, click the link below to complete the change:</p>
  <p><a href="%s">Confirm email address change</a></p>
  <p>This link expires in 24 hours.</p>
  <p>If you did not request this change, you can ignore this message. Your account is unaffected.</p>
</div>`, oldEmail, newEmail, verifyURL)
}
