package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	httpapi "github.com/egovle/sevasetu/internal/api/http"
	"github.com/egovle/sevasetu/internal/application/auth"
	appCamp "github.com/egovle/sevasetu/internal/application/camp"
	"github.com/egovle/sevasetu/internal/application/lifecycle"
	"github.com/egovle/sevasetu/internal/application/notify"
	appPayment "github.com/egovle/sevasetu/internal/application/payment"
	appUser "github.com/egovle/sevasetu/internal/application/user"
	"github.com/egovle/sevasetu/internal/config"
	"github.com/egovle/sevasetu/internal/domain/catalog"
	"github.com/egovle/sevasetu/internal/domain/store"
	"github.com/egovle/sevasetu/internal/domain/user"
	"github.com/egovle/sevasetu/internal/infrastructure/blob"
	"github.com/egovle/sevasetu/internal/infrastructure/memory"
	"github.com/egovle/sevasetu/internal/infrastructure/postgres"
	"github.com/egovle/sevasetu/internal/infrastructure/sse"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	var memoryStore bool

	root := &cobra.Command{
		Use:           "sevasetu",
		Short:         "SevaSetu citizen services backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(logger, memoryStore)
		},
	}
	serve.Flags().BoolVar(&memoryStore, "memory", false, "use the in-memory store instead of Postgres")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(logger)
		},
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial admin account and sample catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(logger)
		},
	}

	root.AddCommand(serve, migrate, seed)

	if err := root.Execute(); err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
}

func runMigrate(logger zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		return err
	}
	logger.Info().Msg("migrations applied")
	return nil
}

func runSeed(logger zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		return err
	}
	st := postgres.NewStore(pool)

	username := getenvDefault("SEED_ADMIN_USERNAME", "admin")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		return errors.New("SEED_ADMIN_PASSWORD is required")
	}

	existing, err := st.Users().GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing == nil {
		userSvc := appUser.NewService(st, logger)
		if _, err := userSvc.Register(ctx, appUser.RegisterInput{
			Username: username,
			Password: password,
			Name:     "Administrator",
			Role:     user.RoleAdmin,
		}); err != nil {
			return err
		}
		logger.Info().Str("username", username).Msg("admin account created")
	}

	services, err := st.Catalog().List(ctx, 1, 0)
	if err != nil {
		return err
	}
	if len(services) > 0 {
		return nil
	}
	now := time.Now().UTC()
	expr := "base + pages * 50"
	entries := []*catalog.Service{
		{ServiceID: uuid.New(), Name: "Income Certificate", CustomerRate: 15000, VLERate: 10000, GovernmentFee: 2500, CreatedAt: now},
		{ServiceID: uuid.New(), Name: "Residence Certificate", CustomerRate: 12000, VLERate: 8000, GovernmentFee: 2000, CreatedAt: now},
		{ServiceID: uuid.New(), Name: "Document Attestation", IsVariable: true, PriceExpression: &expr, GovernmentFee: 1000, CreatedAt: now},
	}
	for _, svc := range entries {
		if err := st.Catalog().Create(ctx, svc); err != nil {
			return err
		}
	}
	logger.Info().Int("services", len(entries)).Msg("catalog seeded")
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func runServe(logger zerolog.Logger, useMemory bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	var st store.Store
	if useMemory {
		logger.Warn().Msg("using in-memory store, all data is lost on exit")
		st = memory.NewStore()
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
			return err
		}
		st = postgres.NewStore(pool)
	}

	blobs, err := blob.NewLocalStore(cfg.BlobDir)
	if err != nil {
		return err
	}

	sseHub := sse.NewHub()

	notifySvc := notify.NewService(st, sseHub, logger)
	authSvc := auth.NewService(st, cfg.SessionTTL, logger)
	userSvc := appUser.NewService(st, logger)
	lifecycleSvc := lifecycle.NewService(st, notifySvc, logger)
	paymentSvc := appPayment.NewService(st, notifySvc, logger)
	campSvc := appCamp.NewService(st, notifySvc, logger)

	apiServer := httpapi.NewServer(
		lifecycleSvc,
		paymentSvc,
		campSvc,
		notifySvc,
		authSvc,
		userSvc,
		blobs,
		sseHub,
		cfg.SessionCookieName,
		cfg.SessionCookieSecure,
		logger,
	)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// background loops
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if n, err := authSvc.CleanupExpired(context.Background()); err != nil {
					logger.Warn().Err(err).Msg("session cleanup failed")
				} else if n > 0 {
					logger.Info().Int("sessions", n).Msg("expired sessions removed")
				}
			}
		}
	}()

	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)

	// let in-flight notification dispatches finish before tearing down SSE
	notifySvc.Wait()
	sseHub.Stop()
	return nil
}
