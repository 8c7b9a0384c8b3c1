package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"hrcrm/internal/domain/audit"
	"hrcrm/internal/domain/auth"
	"hrcrm/internal/domain/documents"
	"hrcrm/internal/domain/notifications"
	"hrcrm/internal/domain/org"
	"hrcrm/internal/domain/payroll"
	"hrcrm/internal/domain/pipeline"
	"hrcrm/internal/domain/timesheet"
	"hrcrm/internal/platform/config"
	cryptoutil "hrcrm/internal/platform/crypto"
	"hrcrm/internal/platform/db"
	"hrcrm/internal/platform/email"
	"hrcrm/internal/platform/jobs"
	"hrcrm/internal/platform/metrics"
	audithandler "hrcrm/internal/transport/http/handlers/audit"
	authhandler "hrcrm/internal/transport/http/handlers/auth"
	documentshandler "hrcrm/internal/transport/http/handlers/documents"
	notificationshandler "hrcrm/internal/transport/http/handlers/notifications"
	orghandler "hrcrm/internal/transport/http/handlers/org"
	payrollhandler "hrcrm/internal/transport/http/handlers/payroll"
	pipelinehandler "hrcrm/internal/transport/http/handlers/pipeline"
	timesheethandler "hrcrm/internal/transport/http/handlers/timesheet"
	"hrcrm/internal/transport/http/middleware"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		slog.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			slog.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			slog.Error("seed failed", "err", err)
			os.Exit(1)
		}
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		slog.Error("invalid data encryption key", "err", err)
		os.Exit(1)
	}

	mailer := email.New(cfg)
	notifySvc := notifications.NewService(notifications.NewStore(pool), mailer, cfg.EmailFrom)

	authStore := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	orgSvc := org.NewService(org.NewStore(pool, cryptoSvc))
	timesheetSvc := timesheet.NewService(timesheet.NewStore(pool))
	payrollSvc := payroll.NewService(payroll.NewStore(pool), orgSvc, timesheetSvc)
	pipelineSvc := pipeline.NewService(pipeline.NewStore(pool))
	documentsSvc := documents.NewService(pool, cfg.StorageDir)

	reminders := jobs.New(pool, cfg, notifySvc)
	reminders.Start(ctx)

	isProd := cfg.Environment == "production"

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(isProd))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.Handle("/metrics", metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, auditSvc, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		orghandler.NewHandler(orgSvc, auditSvc, authStore).RegisterRoutes(r)
		timesheethandler.NewHandler(timesheetSvc, orgSvc, auditSvc, notifySvc, authStore).RegisterRoutes(r)
		payrollhandler.NewHandler(pool, payrollSvc, orgSvc, auditSvc, notifySvc, authStore, cfg).RegisterRoutes(r)
		pipelinehandler.NewHandler(pipelineSvc, auditSvc, notifySvc, authStore).RegisterRoutes(r)
		documentshandler.NewHandler(documentsSvc, orgSvc, auditSvc, notifySvc, authStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, authStore).RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "err", err)
		}
	}()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
