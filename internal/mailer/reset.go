package mailer

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
)

// ResetNotice describes a password reset email to be delivered.
type ResetNotice struct {
	Email     string
	FullName  string
	Link      string
	ExpiresAt time.Time
}

// Notifier hands a reset notice to some delivery mechanism: directly to a
// Sender or through the message queue.
type Notifier interface {
	NotifyPasswordReset(ctx context.Context, n ResetNotice) error
}

// Direct delivers notices synchronously through a Sender.
type Direct struct {
	Sender  Sender
	AppName string
}

// NotifyPasswordReset implements Notifier.
func (d Direct) NotifyPasswordReset(ctx context.Context, n ResetNotice) error {
	return d.Sender.Send(ctx, PasswordResetMessage(d.AppName, n))
}

// PasswordResetMessage renders the reset email for n.
func PasswordResetMessage(appName string, n ResetNotice) Message {
	if appName == "" {
		appName = "PublicVoice"
	}
	name := strings.TrimSpace(n.FullName)
	if name == "" {
		name = "there"
	}
	validity := "for 1 hour"
	if !n.ExpiresAt.IsZero() {
		validity = "until " + n.ExpiresAt.UTC().Format("2006-01-02 15:04 MST")
	}

	text := fmt.Sprintf(`Hello %s,

You requested a password reset for your %s account.
Open the link below to choose a new password. It is valid %s.

%s

If you did not request this, you can ignore this email.
`, name, appName, validity, n.Link)

	htmlBody := fmt.Sprintf(`<p>Hello %s,</p>
<p>You requested a password reset for your %s account.</p>
<p><a href="%s">Reset your password</a></p>
<p>This link is valid %s. If you did not request this, you can ignore this email.</p>
`, html.EscapeString(name), html.EscapeString(appName), html.EscapeString(n.Link), html.EscapeString(validity))

	return Message{
		To:      n.Email,
		Subject: appName + " password reset",
		Text:    text,
		HTML:    htmlBody,
	}
}
