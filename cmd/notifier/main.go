package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/orbitlive/transit-notifier/internal/analytics"
	"github.com/orbitlive/transit-notifier/internal/api"
	"github.com/orbitlive/transit-notifier/internal/booking"
	"github.com/orbitlive/transit-notifier/internal/config"
	"github.com/orbitlive/transit-notifier/internal/db"
	"github.com/orbitlive/transit-notifier/internal/email"
	"github.com/orbitlive/transit-notifier/internal/metrics"
	"github.com/orbitlive/transit-notifier/internal/observ"
	"github.com/orbitlive/transit-notifier/internal/promo"
	"github.com/orbitlive/transit-notifier/internal/push"
	"github.com/orbitlive/transit-notifier/internal/redis"
	"github.com/orbitlive/transit-notifier/internal/sms"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting orbit transit notifier",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
	)

	ctx := context.Background()
	database, err := db.New(ctx, db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	repo := db.NewRepository(database, logger)

	// Redis backs API rate limiting only; the service degrades without it.
	var rateLimiter *redis.RateLimiter
	redisClient, err := redis.New(ctx, redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Warn("redis unavailable, rate limiting disabled",
			zap.Error(err),
			zap.String("host", cfg.RedisHost),
		)
	} else {
		rateLimiter = redis.NewRateLimiter(redisClient, logger, redis.RateLimitConfig{
			Limit:  100,
			Window: 1 * time.Minute,
		})
		defer redisClient.Close()
	}

	pushSender := buildPushSender(ctx, cfg, logger)
	emailSender, err := buildEmailSender(ctx, cfg, logger)
	if err != nil {
		return err
	}
	smsSender, err := buildSMSSender(ctx, cfg, logger)
	if err != nil {
		return err
	}

	recorder := analytics.NewRecorder(repo, logger)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	bookingNotifier := booking.New(repo, smsSender, emailSender, booking.Config{
		PollInterval: cfg.BookingPollInterval,
		BatchSize:    cfg.BookingBatchSize,
	}, logger)
	go bookingNotifier.Start(workerCtx)

	loc, err := time.LoadLocation(cfg.PromoTimezone)
	if err != nil {
		return fmt.Errorf("failed to load promo timezone: %w", err)
	}

	dispatcher := promo.New(repo, pushSender, recorder, promo.Config{
		Interval:        cfg.PromoInterval,
		WindowStartHour: cfg.PromoWindowStartHour,
		WindowEndHour:   cfg.PromoWindowEndHour,
		Location:        loc,
		BatchSize:       cfg.PromoBatchSize,
		BatchPause:      cfg.PromoBatchPause,
		DailyCap:        cfg.PromoDailyCap,
		SendProbability: cfg.PromoSendProbability,
	}, logger)
	go dispatcher.Start(workerCtx)

	logger.Info("background workers started")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// Custom logging middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration_ms", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	})

	handler := api.NewHandler(logger, recorder)
	r.Route("/v1", func(r chi.Router) {
		r.Use(api.RateLimitMiddleware(rateLimiter, logger, api.IPKeyFunc))

		r.Post("/notifications/open", handler.TrackOpen)
		r.Get("/analytics", handler.GetAnalytics)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		logger.Info("server stopped gracefully")
	}

	return nil
}

// buildPushSender returns the FCM sender when credentials are
// configured, falling back to a log-only sender for local work.
func buildPushSender(ctx context.Context, cfg *config.Config, logger *zap.Logger) push.Sender {
	if cfg.FCMProjectID == "" || cfg.FCMCredentialsFile == "" {
		logger.Warn("fcm not configured, push notifications will be logged only")
		return push.NewLogSender(logger)
	}

	sender, err := push.NewFCMSender(ctx, push.FCMConfig{
		ProjectID:       cfg.FCMProjectID,
		CredentialsFile: cfg.FCMCredentialsFile,
	}, logger)
	if err != nil {
		logger.Warn("fcm sender unavailable, push notifications will be logged only",
			zap.Error(err),
		)
		return push.NewLogSender(logger)
	}
	return sender
}

func buildEmailSender(ctx context.Context, cfg *config.Config, logger *zap.Logger) (email.Sender, error) {
	switch cfg.EmailProvider {
	case "resend":
		return email.NewResendSender(email.ResendConfig{
			APIURL: cfg.ResendAPIURL,
			APIKey: cfg.ResendAPIKey,
			From:   cfg.EmailFrom,
		}, logger)
	case "ses":
		return email.NewSESSender(ctx, email.SESConfig{
			Region: cfg.AWSRegion,
			From:   cfg.EmailFrom,
		}, logger)
	default:
		return email.NewLogSender(logger), nil
	}
}

func buildSMSSender(ctx context.Context, cfg *config.Config, logger *zap.Logger) (sms.Sender, error) {
	if cfg.SMSProvider == "sns" {
		return sms.NewSNSSender(ctx, sms.SNSConfig{Region: cfg.SNSRegion}, logger)
	}
	return sms.NewLogSender(logger), nil
}
