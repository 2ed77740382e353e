package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/scis/scis/internal/config"
	"github.com/scis/scis/internal/domain/consent"
	"github.com/scis/scis/internal/domain/datarequest"
	"github.com/scis/scis/internal/domain/endpoint"
	"github.com/scis/scis/internal/domain/feedback"
	"github.com/scis/scis/internal/domain/hospital"
	"github.com/scis/scis/internal/domain/identity"
	"github.com/scis/scis/internal/platform/auth"
	"github.com/scis/scis/internal/platform/db"
	"github.com/scis/scis/internal/platform/fhir"
	"github.com/scis/scis/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scis-server",
		Short: "Smart Care Insight System API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with demo hospitals, users and patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			hospitals, _ := cmd.Flags().GetInt("hospitals")
			patients, _ := cmd.Flags().GetInt("patients")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			return runSeed(ctx, pool, hospitals, patients)
		},
	}
	cmd.Flags().Int("hospitals", 3, "Number of hospitals to create")
	cmd.Flags().Int("patients", 20, "Number of patients per hospital")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.JWTSecret),
		}))
	}

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Outbound FHIR client shared by the endpoint registry and the request
	// workflow.
	fhirClient := fhir.NewClient(time.Duration(cfg.FHIRTimeoutSecs) * time.Second)

	// -- Register Domain Handlers --

	// Hospital domain
	hospitalRepo := hospital.NewRepoPG(pool)
	hospitalSvc := hospital.NewService(hospitalRepo)
	hospitalHandler := hospital.NewHandler(hospitalSvc)
	hospitalHandler.RegisterRoutes(apiV1)

	// Identity domain
	patientRepo := identity.NewPatientRepoPG(pool)
	userRepo := identity.NewUserRepoPG(pool)
	identitySvc := identity.NewService(patientRepo, userRepo)
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterRoutes(apiV1)

	// Peer-facing FHIR surface, fetched by partner hospitals.
	fhirGroup := e.Group("/fhir")
	fhirGroup.Use(middleware.RateLimit(rateLimitCfg))
	identityFHIR := identity.NewFHIRHandler(identitySvc)
	identityFHIR.RegisterRoutes(fhirGroup)

	// Consent domain
	consentRepo := consent.NewRepoPG(pool)
	consentSvc := consent.NewService(consentRepo)
	consentHandler := consent.NewHandler(consentSvc)
	consentHandler.RegisterRoutes(apiV1)

	// Endpoint registry
	endpointRepo := endpoint.NewRepoPG(pool)
	endpointSvc := endpoint.NewService(endpointRepo, fhirClient)
	endpointHandler := endpoint.NewHandler(endpointSvc)
	endpointHandler.RegisterRoutes(apiV1)

	// Data request workflow
	requestRepo := datarequest.NewRepoPG(pool)
	requestSvc := datarequest.NewService(requestRepo, identitySvc, identitySvc, consentSvc, endpointSvc, fhirClient)
	requestHandler := datarequest.NewHandler(requestSvc)
	requestHandler.RegisterRoutes(apiV1)

	// Feedback domain
	feedbackRepo := feedback.NewRepoPG(pool)
	feedbackSvc := feedback.NewService(feedbackRepo, feedback.NewLexiconAnalyzer())
	feedbackHandler := feedback.NewHandler(feedbackSvc)
	feedbackHandler.RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
