package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"image-steganography/config"
	"image-steganography/handlers"
)

func newServeCmd(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the steganography HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, a.cfg.Server, a.logger)
		},
	}

	flags := serveCmd.Flags()
	flags.String("port", config.DefaultPort, "port to listen on")
	flags.StringSlice("allow-origin", config.DefaultAllowOrigins, "CORS allowed origins")
	flags.Int64("max-upload-bytes", config.DefaultMaxUploadBytes, "maximum accepted image size")
	flags.Int64("max-pixels", config.DefaultMaxPixels, "maximum accepted image width times height")
	flags.Duration("shutdown-timeout", config.DefaultShutdownTimeout, "graceful shutdown timeout")
	return serveCmd
}

// runServer serves the API until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:    net.JoinHostPort("", cfg.Port),
		Handler: handlers.NewRouter(cfg, logger),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.Strings("routes", []string{
				"GET  /api/v1/health",
				"POST /api/v1/stego/insert",
				"POST /api/v1/stego/extract",
				"POST /api/v1/stego/capacity",
			}),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
