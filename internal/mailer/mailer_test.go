package mailer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, m Message) error {
	r.sent = append(r.sent, m)
	return r.err
}

func TestPasswordResetMessage(t *testing.T) {
	exp := time.Date(2026, 5, 4, 13, 30, 0, 0, time.UTC)
	m := PasswordResetMessage("PublicVoice", ResetNotice{
		Email:     "amina@example.com",
		FullName:  "Amina <b>K</b>",
		Link:      "http://localhost:5173/reset-password?token=abc&x=1",
		ExpiresAt: exp,
	})

	require.Equal(t, "amina@example.com", m.To)
	require.Equal(t, "PublicVoice password reset", m.Subject)
	require.Contains(t, m.Text, "http://localhost:5173/reset-password?token=abc&x=1")
	require.Contains(t, m.Text, "until 2026-05-04 13:30 UTC")
	require.Contains(t, m.HTML, "token=abc&amp;x=1")
	require.Contains(t, m.HTML, "Amina &lt;b&gt;K&lt;/b&gt;")
}

func TestPasswordResetMessage_Defaults(t *testing.T) {
	m := PasswordResetMessage("", ResetNotice{Email: "a@b.co", Link: "l"})
	require.Contains(t, m.Text, "Hello there,")
	require.Contains(t, m.Text, "valid for 1 hour")
}

func TestDirect_NotifyPasswordReset(t *testing.T) {
	rec := &recordingSender{}
	d := Direct{Sender: rec, AppName: "PV"}

	require.NoError(t, d.NotifyPasswordReset(context.Background(), ResetNotice{Email: "a@b.co", Link: "l"}))
	require.Len(t, rec.sent, 1)
	require.Equal(t, "PV password reset", rec.sent[0].Subject)

	rec.err = errors.New("relay down")
	require.Error(t, d.NotifyPasswordReset(context.Background(), ResetNotice{Email: "a@b.co"}))
}

func TestLogSender(t *testing.T) {
	require.NoError(t, LogSender{Log: zap.NewNop()}.Send(context.Background(), Message{To: "a@b.co"}))
	require.NoError(t, LogSender{}.Send(context.Background(), Message{To: "a@b.co"}))
}

func TestLogSender_NeverLogsResetLink(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	link := "http://localhost:5173/reset-password?token=s3cr3t-token"
	msg := PasswordResetMessage("PublicVoice", ResetNotice{Email: "a@b.co", Link: link})
	require.Contains(t, msg.Text, "s3cr3t-token")

	require.NoError(t, LogSender{Log: zap.New(core)}.Send(context.Background(), msg))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	require.Equal(t, "a@b.co", entry.ContextMap()["to"])
	for _, v := range entry.ContextMap() {
		require.NotContains(t, fmt.Sprint(v), "s3cr3t-token")
	}
	require.NotContains(t, entry.Message, "s3cr3t-token")
}

func TestSMTPSender_Config(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{From: "x@y.z"})
	require.Error(t, err)
	_, err = NewSMTPSender(SMTPConfig{Host: "smtp.local"})
	require.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.local", From: "no-reply@publicvoice.local"})
	require.NoError(t, err)
	require.Equal(t, 587, s.cfg.Port)

	msg, err := s.message(Message{To: "a@b.co", Subject: "hi", Text: "body", HTML: "<p>body</p>"})
	require.NoError(t, err)
	require.Equal(t, []string{"hi"}, msg.GetGenHeader("Subject"))

	_, err = s.message(Message{To: "not an address"})
	require.Error(t, err)
}

func TestNewSender(t *testing.T) {
	s, err := NewSender(SMTPConfig{}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, LogSender{}, s)

	s, err = NewSender(SMTPConfig{Host: "smtp.local", From: "a@b.co"}, nil)
	require.NoError(t, err)
	require.IsType(t, &SMTPSender{}, s)
}
