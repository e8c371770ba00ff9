package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload" // load .env before config is read

	"github.com/iliyamo/photoshare-api/internal/config"
	"github.com/iliyamo/photoshare-api/internal/database"
	"github.com/iliyamo/photoshare-api/internal/handler"
	"github.com/iliyamo/photoshare-api/internal/logger"
	"github.com/iliyamo/photoshare-api/internal/mailer"
	"github.com/iliyamo/photoshare-api/internal/queue"
	"github.com/iliyamo/photoshare-api/internal/repository"
	"github.com/iliyamo/photoshare-api/internal/router"
	"github.com/iliyamo/photoshare-api/internal/service"
	"github.com/iliyamo/photoshare-api/internal/telemetry"
	"github.com/iliyamo/photoshare-api/internal/utils"
)

func main() {
	if err := run(); err != nil {
		logger.Log.Error("application startup failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Initialize(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reporter, err := telemetry.InitSentry(cfg.SentryDSN, cfg.Env)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	defer reporter.Close()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Redis is optional: without it the session cache, response cache and
	// rate limiter are disabled.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	var sessions service.SessionCache = service.NoopSessionCache{}
	if rdb != nil {
		defer rdb.Close()
		sessions = service.NewRedisSessionCache(rdb, cfg.SessionCacheTTL, cfg.SessionCachePrefix)
	}

	codec, err := utils.NewTokenCodec(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	users := repository.NewUserRepo(db)
	images := repository.NewImageRepo(db)

	auth := service.NewAuthenticator(users, codec, utils.NewHasher(cfg.BcryptCost), sessions, service.AuthPolicy{
		AccessTTL:             cfg.AccessTTL,
		RefreshTTL:            cfg.RefreshTTL,
		EmailTTL:              cfg.EmailTTL,
		RequireConfirmedLogin: cfg.RequireConfirmedLogin,
	})
	if err := auth.Bootstrap(ctx); err != nil {
		return err
	}

	host, err := service.NewCloudinaryHost(cfg.CloudinaryName, cfg.CloudinaryKey, cfg.CloudinarySecret, cfg.CloudinaryFolder)
	if err != nil {
		return err
	}
	imageSvc := service.NewImageService(images, host)

	var transport mailer.Transport = mailer.LogTransport{}
	if cfg.SMTPHost != "" {
		client, err := mailer.NewSMTPTransport(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			SSL:      cfg.SMTPSSL,
			Timeout:  cfg.SMTPTimeout,
		})
		if err != nil {
			return fmt.Errorf("smtp: %w", err)
		}
		transport = client
	} else {
		logger.Log.Warn("SMTP_HOST not set, confirmation emails are only logged")
	}
	confirmations := mailer.NewConfirmationMailer(auth, mailer.NewSender(transport, cfg.MailFrom, cfg.MailFromName))

	var wg sync.WaitGroup

	// With a broker, signup events go through RabbitMQ and are consumed
	// here; otherwise they are handled on a goroutine in-process.
	var notifier queue.Notifier = queue.InProcess{Handler: confirmations}
	if cfg.AMQPURL != "" {
		notifier = queue.NewPublisher(cfg.AMQPURL)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := queue.StartSignupConsumer(ctx, cfg.AMQPURL, confirmations); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Error("signup consumer stopped", "error", err)
			}
		}()
	}

	e := router.New(router.Deps{
		Auth:      handler.NewAuthHandler(auth, notifier, cfg.HostURL),
		Users:     handler.NewUserHandler(auth, imageSvc, users, images),
		Images:    handler.NewImageHandler(imageSvc, users),
		Comments:  handler.NewCommentHandler(repository.NewCommentRepo(db), imageSvc),
		Tags:      handler.NewTagHandler(repository.NewTagRepo(db)),
		Resolver:  auth,
		DB:        db,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Sentry:    reporter,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		IdleTimeout:  time.Minute,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Log.Info("listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("listen and serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	wg.Wait()
	logger.Log.Info("shutdown complete")
	return nil
}
