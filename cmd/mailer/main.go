// Command mailer consumes password reset events from RabbitMQ and sends
// the emails over SMTP.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iliyamo/publicvoice/internal/config"
	"github.com/iliyamo/publicvoice/internal/mailer"
	"github.com/iliyamo/publicvoice/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.RabbitURL == "" {
		log.Fatal("RABBITMQ_URL is required for the mail worker")
	}

	sender, err := mailer.NewSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		UseTLS:   cfg.SMTPUseTLS,
	}, log.Named("mail"))
	if err != nil {
		log.Fatal("smtp", zap.Error(err))
	}
	if cfg.SMTPHost == "" {
		if cfg.IsProduction() {
			log.Fatal("SMTP_HOST is required for the mail worker in production")
		}
		log.Warn("SMTP_HOST not set; reset emails will only be logged")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{
		URL:      cfg.RabbitURL,
		Queue:    cfg.MailQueue,
		Notifier: mailer.Direct{Sender: sender, AppName: cfg.AppName},
		Log:      log.Named("consumer"),
	}
	log.Info("mail worker started", zap.String("queue", cfg.MailQueue))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("mail worker stopped", zap.Error(err))
		return
	}
	log.Info("mail worker stopped")
}
