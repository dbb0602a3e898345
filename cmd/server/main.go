// Command server starts the PublicVoice HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/publicvoice/internal/config"
	"github.com/iliyamo/publicvoice/internal/credential"
	"github.com/iliyamo/publicvoice/internal/database"
	"github.com/iliyamo/publicvoice/internal/enrich"
	"github.com/iliyamo/publicvoice/internal/handler"
	"github.com/iliyamo/publicvoice/internal/mailer"
	"github.com/iliyamo/publicvoice/internal/middleware"
	"github.com/iliyamo/publicvoice/internal/queue"
	"github.com/iliyamo/publicvoice/internal/repository"
	"github.com/iliyamo/publicvoice/internal/router"
	"github.com/iliyamo/publicvoice/internal/service"
	"github.com/iliyamo/publicvoice/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger depends on config; report on stderr and bail out.
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	creds, err := credential.New(credential.Options{
		Secret:     cfg.JWTSecret,
		Algorithm:  cfg.JWTAlgorithm,
		AccessTTL:  cfg.AccessTTL(),
		BcryptCost: cfg.BcryptCost,
	})
	if err != nil {
		log.Fatal("credentials", zap.Error(err))
	}

	avatars, err := storage.NewAvatarStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatal("upload dir", zap.Error(err))
	}

	notifier, closeNotifier, err := newNotifier(cfg, log)
	if err != nil {
		log.Fatal("mailer", zap.Error(err))
	}
	defer closeNotifier()

	enricher := enrich.New(enrich.OpenAIOptions{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBase,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.AITimeout,
	}, log.Named("enrich"))

	users := repository.NewUserRepo(db)
	reports := repository.NewReportRepo(db)

	authSvc := service.NewAuthService(service.AuthDeps{
		Users:       users,
		Credentials: creds,
		Notifier:    notifier,
		Avatars:     avatars,
		FrontendURL: cfg.FrontendURL,
		Log:         log.Named("auth"),
	})
	reportSvc := service.NewReportService(reports, enricher, cfg.AITimeout, log.Named("reports"))
	userSvc := service.NewUserService(users)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log.Named("http")))
	e.Use(middleware.Recover(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowCredentials: true,
	}))

	var limiter echo.MiddlewareFunc
	if rdb := config.NewRedisClient(ctx, cfg.Redis, log); rdb != nil {
		defer rdb.Close()
		limiter = middleware.NewTokenBucket(cfg.RateLimit, rdb, log.Named("ratelimit"))
	}
	guards := router.Guards{
		Auth:      middleware.JWTAuth(creds, users, log.Named("auth")),
		RateLimit: limiter,
	}

	router.RegisterRoutes(e, cfg.AppName, cfg.AppVersion)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, log, cfg.MaxUploadBytes), guards)
	router.RegisterReports(e, handler.NewReportHandler(reportSvc, log, cfg.AITimeout), guards)
	router.RegisterUsers(e, handler.NewUserHandler(userSvc, log), guards)
	router.RegisterUploads(e, cfg.UploadDir)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", addr),
			zap.String("env", cfg.Env),
			zap.Bool("enrichment", cfg.EnrichmentEnabled()),
		)
		errCh <- e.Start(addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
		}
	}
	authSvc.Wait()
	log.Info("shutdown complete")
}

// newNotifier picks how reset emails leave the API: through RabbitMQ when
// RABBITMQ_URL is set, otherwise straight to SMTP (or the log when SMTP is
// not configured either).
func newNotifier(cfg config.Config, log *zap.Logger) (mailer.Notifier, func(), error) {
	if cfg.RabbitURL != "" {
		p := queue.NewPublisher(cfg.RabbitURL, cfg.MailQueue, log.Named("queue"))
		return p, func() { _ = p.Close() }, nil
	}
	sender, err := mailer.NewSender(smtpConfig(cfg), log.Named("mail"))
	if err != nil {
		return nil, nil, err
	}
	return mailer.Direct{Sender: sender, AppName: cfg.AppName}, func() {}, nil
}

func smtpConfig(cfg config.Config) mailer.SMTPConfig {
	return mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		UseTLS:   cfg.SMTPUseTLS,
	}
}
