package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/canpog/realestate-app-sub000/internal/config"
	"github.com/canpog/realestate-app-sub000/internal/db"
	"github.com/canpog/realestate-app-sub000/internal/export"
	"github.com/canpog/realestate-app-sub000/internal/matching"
	"github.com/canpog/realestate-app-sub000/internal/obs"
	"github.com/canpog/realestate-app-sub000/internal/server"
	"github.com/canpog/realestate-app-sub000/internal/server/ratelimit"
	"github.com/canpog/realestate-app-sub000/internal/session"
	"github.com/canpog/realestate-app-sub000/internal/storage"
	"github.com/canpog/realestate-app-sub000/internal/valuation"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the CRM REST API.

Requires DATABASE_URL and JWT_SECRET. Without GEMINI_API_KEY the matching and
valuation endpoints answer 503; without S3_* settings image uploads and PDF
exports do. REDIS_URL shares logout revocations between instances.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	logger := obs.NewLogger(cfg.Env)
	if cfg.Verbose {
		logger = obs.NewVerboseLogger(cfg.Env)
	}
	slog.SetDefault(logger)

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	passwordCfg, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		return err
	}

	metrics := obs.NewMetrics()
	deps := server.Deps{
		Store:     database,
		Metrics:   metrics,
		Logger:    logger,
		JWT:       jwtCfg,
		Passwords: passwordCfg,
		RateLimit: ratelimit.LoadConfig(),
	}

	if cfg.APIKey != "" {
		client, err := newModelClient(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		deps.Matcher = matching.NewMatcher(client, logger, metrics)
		deps.Valuator = valuation.NewValuator(client, logger, metrics)
	} else {
		logger.Warn("GEMINI_API_KEY not set; matching and valuation are disabled")
	}

	deps.Uploader = storage.NoopUploader{}
	if cfg.StorageEnabled() {
		uploader, err := storage.NewMinioUploader(storage.MinioConfig{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			return err
		}
		deps.Uploader = uploader
	} else {
		logger.Warn("object storage not configured; image uploads and PDF exports are disabled")
	}
	renderer := &export.ChromeRenderer{ExecPath: cfg.ChromeBin, Timeout: export.DefaultRenderTimeout}
	deps.Exporter = export.NewService(renderer, deps.Uploader, database, logger)

	if cfg.RedisURL != "" {
		sessions, err := session.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer sessions.Close()
		deps.Sessions = sessions
	} else {
		deps.Sessions = session.NewMemoryStore()
	}

	srv, err := server.New(server.Config{Port: cfg.Port}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}
