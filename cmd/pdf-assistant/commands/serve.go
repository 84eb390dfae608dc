package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-assistant/internal/pdf"
	"github.com/spherical/pdf-assistant/internal/server"
	"github.com/spherical/pdf-assistant/internal/session"
)

const pruneInterval = 10 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface and JSON API",
	Long: `Serve the single-page upload form at / and the session API under /api/v1.
Each browser session holds at most one document; a new upload replaces it.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := newAssistant()
	if err != nil {
		return err
	}

	store, err := session.NewStore(cfg.Session)
	if err != nil {
		return err
	}
	defer store.Close()

	manager, err := session.NewManager(store, a, pdf.NewValidator(cfg.PDF.MaxFileSize), cfg.Session.UploadDir, logger)
	if err != nil {
		return err
	}

	router := server.NewRouter(manager, logger, server.Options{
		Service:        cfg.Observability.ServiceName,
		Model:          cfg.LLM.Model,
		RequestTimeout: cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	addr := cfg.ListenAddr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info().
		Str("addr", addr).
		Str("llm_backend", cfg.LLM.Backend).
		Str("llm_url", cfg.LLM.BaseURL).
		Str("model", cfg.LLM.Model).
		Str("session_store", cfg.Session.Store).
		Msg("Starting PDF assistant")

	go pruneLoop(ctx, manager)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server error")
			return err
		}
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
	return nil
}

// pruneLoop removes uploads left behind by expired sessions until ctx ends.
func pruneLoop(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := manager.Prune(ctx); err != nil {
				logger.Warn().Err(err).Msg("Pruning stale uploads failed")
			}
		}
	}
}
