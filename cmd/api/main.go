package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrisdamba/tacticalbooking/internal/api"
	"github.com/chrisdamba/tacticalbooking/internal/catalog"
	"github.com/chrisdamba/tacticalbooking/internal/client/checkout"
	"github.com/chrisdamba/tacticalbooking/internal/client/storage"
	"github.com/chrisdamba/tacticalbooking/internal/dashboard"
	"github.com/chrisdamba/tacticalbooking/internal/flow"
	"github.com/chrisdamba/tacticalbooking/internal/ports"
	"github.com/chrisdamba/tacticalbooking/internal/repository"
	"github.com/chrisdamba/tacticalbooking/internal/service"
	"github.com/chrisdamba/tacticalbooking/internal/utils"
	"github.com/chrisdamba/tacticalbooking/internal/validator"
	"github.com/chrisdamba/tacticalbooking/pkg/auth"
	"github.com/chrisdamba/tacticalbooking/pkg/config"
	"github.com/chrisdamba/tacticalbooking/pkg/health"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

type App struct {
	config  *config.Config
	log     *logrus.Logger
	server  *http.Server
	db      *pgxpool.Pool
	catalog *catalog.Catalog
}

func NewApp(cfg *config.Config, log *logrus.Logger) *App {
	return &App{
		config: cfg,
		log:    log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("catalog load failed: %w", err)
	}
	a.catalog = cat

	if err := a.setupDatabase(ctx); err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}

	if err := a.setupServer(); err != nil {
		return fmt.Errorf("server setup failed: %w", err)
	}

	return nil
}

func (a *App) setupDatabase(ctx context.Context) error {
	config, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	return nil
}

func (a *App) setupServer() error {
	services, err := a.setupServices()
	if err != nil {
		return err
	}
	router := a.setupRouter(services)

	a.server = &http.Server{
		Addr:         a.config.Server.Address,
		Handler:      utils.RequestLogger(a.log, router),
		WriteTimeout: a.config.Server.WriteTimeout,
		ReadTimeout:  a.config.Server.ReadTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	return nil
}

type Services struct {
	BookingService ports.BookingService
	PaymentService ports.PaymentService
}

func (a *App) setupServices() (Services, error) {
	repo := repository.NewBookingRepository(a.db)
	slots := repository.NewSlotRepository(a.db)

	store, err := storage.NewStoreFromConfig(a.config.Storage)
	if err != nil {
		return Services{}, fmt.Errorf("document storage: %w", err)
	}

	opts := []checkout.Option{
		checkout.WithSecretKey(a.config.Payment.StripeSecretKey),
		checkout.WithDashboardURL(a.config.Payment.DashboardURL),
	}
	if a.config.Payment.StripeBaseURL != "" {
		opts = append(opts, checkout.WithBaseURL(a.config.Payment.StripeBaseURL))
	}
	checkoutClient := checkout.NewClient(opts...)

	docs := service.DocumentSettings{
		MaxBytes: a.config.Storage.MaxUploadBytes,
		URLTTL:   a.config.Storage.SignedURLTTL,
	}

	return Services{
		BookingService: service.NewBookingService(a.log, repo, slots, store, a.catalog, docs),
		PaymentService: service.NewPaymentService(a.log, repo, checkoutClient),
	}, nil
}

func (a *App) setupRouter(services Services) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("/v1/health", utils.AllowedMethods(health.HealthGet(version, a.db), http.MethodGet))
	router.Handle("GET /metrics", promhttp.Handler())

	handlers := &api.Handlers{
		Log:            a.log,
		Catalog:        a.catalog,
		Flows:          flow.NewRegistry(a.catalog, flow.WithTTL(a.config.Flow.TTL)),
		Bookings:       services.BookingService,
		Payments:       services.PaymentService,
		Dashboard:      dashboard.NewOrchestrator(a.log, services.PaymentService, services.BookingService, a.catalog),
		Validator:      validator.NewCustomValidator(a.catalog),
		MaxUploadBytes: a.config.Storage.MaxUploadBytes,
		Location:       a.config.Flow.Location,
	}

	verifier := auth.NewVerifier(a.config.Auth.JWTSecret)
	handlers.Register(router, func(next http.HandlerFunc) http.HandlerFunc {
		return verifier.Authenticate(next, api.RenderAuthError)
	})

	return router
}

func (a *App) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		a.log.WithField("address", a.server.Addr).Info("starting server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-shutdown:
		a.log.Info("starting graceful shutdown")
		return a.Shutdown(ctx)
	case <-ctx.Done():
		return a.Shutdown(ctx)
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if a.db != nil {
		a.db.Close()
	}

	return nil
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		log.WithError(err).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func main() {
	ctx := context.Background()

	if err := config.LoadEnvFile(".env"); err != nil {
		logrus.WithError(err).Fatal("failed to load .env")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := newLogger(cfg.Log)

	app := NewApp(cfg, log)
	if err := app.Initialize(ctx); err != nil {
		log.WithError(err).Fatal("failed to initialize application")
	}

	if err := app.Run(ctx); err != nil {
		log.WithError(err).Fatal("application error")
	}
}
