package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/photo-diary/backend/internal/api"
	"github.com/photo-diary/backend/internal/auth"
	"github.com/photo-diary/backend/internal/config"
	"github.com/photo-diary/backend/internal/logging"
	"github.com/photo-diary/backend/internal/storage"
	"github.com/photo-diary/backend/internal/web"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, *configFlag)
		},
	}
}

func runServe(cmd *cobra.Command, configFlag string) error {
	cfg, configPath, err := loadConfig(configFlag, true)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	e, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(cmd.OutOrStdout(), cfg, configPath)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.StartServer(s)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newServer wires the stores, guard and routes for cfg.
func newServer(cfg *config.AppConfig, logger *slog.Logger) (*echo.Echo, error) {
	records, err := storage.NewJSONRecordStore(cfg.GetRecordsPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize record store: %w", err)
	}

	images, err := storage.NewImageStore(cfg.GetUploadDir())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}

	guard := auth.NewGuard(cfg.Security.AdminSecret)
	if cfg.Upload.Enabled {
		if !guard.Configured() {
			logger.Warn("admin secret not set; guarded upload routes will answer 500")
		}
		if !cfg.Upload.PublicRequiresAuth {
			logger.Warn("public upload route is open to anyone", slog.String("route", "POST /upload"))
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareOptions{
		Logger:         logger,
		RequestLogging: cfg.Server.EnableRequestLogging,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.GetAllowOrigins(),
	})

	deps := &api.Dependencies{
		Records:                  records,
		Images:                   images,
		Guard:                    guard,
		Logger:                   logger,
		Version:                  Version,
		UploadEnabled:            cfg.Upload.Enabled,
		MaxUploadSize:            cfg.Upload.MaxUploadSize,
		PublicUploadRequiresAuth: cfg.Upload.PublicRequiresAuth,
	}
	api.RegisterRoutes(e, api.NewHandlers(deps), deps)
	web.RegisterPhotoRoutes(e, images.Dir())

	if dir := cfg.Storage.StaticDirectory; dir != "" {
		if err := web.RegisterStaticRoutes(e, dir); err != nil {
			logger.Warn("failed to register static routes", slog.String("dir", dir), slog.String("error", err.Error()))
		} else {
			logger.Info("serving front-end", slog.String("dir", dir))
		}
	}

	return e, nil
}

func printBanner(w io.Writer, cfg *config.AppConfig, configPath string) {
	uploads := "disabled"
	if cfg.Upload.Enabled {
		public := "guarded"
		if !cfg.Upload.PublicRequiresAuth {
			public = "open"
		}
		uploads = fmt.Sprintf("max %s, public %s", humanize.IBytes(uint64(cfg.Upload.MaxUploadSize)), public)
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║           Photo Diary Server                              ║\n")
	fmt.Fprintf(w, "╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║  Version:    %-45s║\n", Version)
	fmt.Fprintf(w, "║  Build Time: %-45s║\n", BuildTime)
	fmt.Fprintf(w, "╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║  Config:    %-46s║\n", configPath)
	fmt.Fprintf(w, "║  Listen:    http://%-39s║\n", cfg.GetServerAddr())
	fmt.Fprintf(w, "║  Records:   %-46s║\n", cfg.GetRecordsPath())
	fmt.Fprintf(w, "║  Uploads:   %-46s║\n", cfg.GetUploadDir())
	fmt.Fprintf(w, "║  Limit:     %-46s║\n", uploads)
	fmt.Fprintf(w, "╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Fprintf(w, "\n")
}
