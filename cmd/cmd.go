package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventboard-backend/internal/config"
	"eventboard-backend/internal/handlers"
	"eventboard-backend/internal/middleware"
	"eventboard-backend/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "config.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "eventboard",
	Short:         "Events and users REST backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default config.yaml when present)")
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

// Execute runs the command line and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// loadConfig reads --config, or config.yaml when it exists, then the environment.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Store
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.close()
	log.Info().Str("backend", st.backend).Msg("Store connection established")

	// Image pipeline
	stager, err := newStager(ctx, cfg)
	if err != nil {
		return err
	}
	images := services.NewImageService(stager, cfg.Images.CleanupStaged)

	displayLoc, err := cfg.DisplayLocation()
	if err != nil {
		return err
	}

	// Services
	hub := services.NewWSHub()
	userService := services.NewUserService(st.users, images, hub)
	eventService := services.NewEventService(st.events, st.users, images, hub, displayLoc)

	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret)
	if auth == nil {
		log.Warn().Msg("JWT secret not set, write routes are unauthenticated")
	}

	// Handlers
	var staticDir string
	if cfg.Images.Stager == config.StagerDisk {
		staticDir = cfg.Server.UploadsDir
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		Users:     handlers.NewUserHandler(userService, cfg.MaxBodyBytes()),
		Events:    handlers.NewEventHandler(eventService, cfg.MaxBodyBytes()),
		WebSocket: handlers.NewWebSocketHandler(hub, auth),
		Health:    handlers.NewHealthHandler(st.pinger),
		Auth:      auth,
		Logger:    log.Logger,
		StaticDir: staticDir,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		hub.Close()
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked websocket connections are not closed by Shutdown.
	hub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

// newStager builds the staging backend for uploaded images
func newStager(ctx context.Context, cfg *config.Config) (services.Stager, error) {
	switch cfg.Images.Stager {
	case config.StagerS3:
		client, err := services.NewS3Client(ctx, services.S3Options{
			Region:    cfg.AWS.Region,
			Bucket:    cfg.AWS.S3Bucket,
			Prefix:    cfg.AWS.S3Prefix,
			Endpoint:  cfg.AWS.Endpoint,
			AccessKey: cfg.AWS.AccessKey,
			SecretKey: cfg.AWS.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", cfg.AWS.S3Bucket).Msg("Staging uploads in S3")
		return services.NewS3Stager(client, cfg.AWS.S3Bucket, cfg.AWS.S3Prefix), nil
	default:
		stager, err := services.NewDiskStager(cfg.Server.UploadsDir)
		if err != nil {
			return nil, err
		}
		log.Info().Str("dir", stager.Dir()).Msg("Staging uploads on disk")
		return stager, nil
	}
}

// setupLogger configures zerolog logger
func setupLogger(level, format string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
