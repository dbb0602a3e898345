// Package mailer builds and delivers transactional email.
package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Message is a single outgoing email with a plain-text body and an
// optional HTML alternative.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// LogSender records that a message was due instead of sending it.  It is
// used when no SMTP server is configured.  Bodies carry live reset tokens,
// so only the recipient and subject are logged.
type LogSender struct {
	Log *zap.Logger
}

// Send implements Sender.
func (s LogSender) Send(_ context.Context, m Message) error {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("email not sent: SMTP not configured",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
	)
	return nil
}
