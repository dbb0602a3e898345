// Package queue carries password reset emails through RabbitMQ so that the
// API never waits on an SMTP relay.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/publicvoice/internal/mailer"
)

// PasswordResetEvent is published when a user requests a password reset.
// It holds everything the mail worker needs; the worker never queries the
// database.
type PasswordResetEvent struct {
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	ResetLink   string `json:"reset_link"`
	ExpiresAt   string `json:"expires_at"` // RFC 3339, UTC
	RequestedAt string `json:"requested_at"`
}

func eventFromNotice(n mailer.ResetNotice, now time.Time) PasswordResetEvent {
	ev := PasswordResetEvent{
		Email:       n.Email,
		FullName:    n.FullName,
		ResetLink:   n.Link,
		RequestedAt: now.UTC().Format(time.RFC3339),
	}
	if !n.ExpiresAt.IsZero() {
		ev.ExpiresAt = n.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return ev
}

func decodeEvent(body []byte) (mailer.ResetNotice, error) {
	var ev PasswordResetEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return mailer.ResetNotice{}, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Email == "" || ev.ResetLink == "" {
		return mailer.ResetNotice{}, fmt.Errorf("event missing email or reset link")
	}
	n := mailer.ResetNotice{Email: ev.Email, FullName: ev.FullName, Link: ev.ResetLink}
	if ev.ExpiresAt != "" {
		exp, err := time.Parse(time.RFC3339, ev.ExpiresAt)
		if err != nil {
			return mailer.ResetNotice{}, fmt.Errorf("expires_at: %w", err)
		}
		n.ExpiresAt = exp
	}
	return n, nil
}
