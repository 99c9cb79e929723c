// Package mail delivers the password-reset email over SMTP.
package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendPasswordReset emails the reset link. Delivery is synchronous; the
// caller decides what a failure means for the request.
func (m *Mailer) SendPasswordReset(to, resetURL string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password Reset Request")
	msg.SetBody("text/plain", resetBody(resetURL))
	return m.dialer.DialAndSend(msg)
}

func resetBody(resetURL string) string {
	return fmt.Sprintf(`To reset your password visit the following link:
%s

If you did not make this request simply ignore this email.
`, resetURL)
}
