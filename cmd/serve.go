package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/glyph/internal/server"
	"github.com/conneroisu/glyph/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve icons over HTTP",
	Long: `Start the icon server. Icons are served as standalone SVG documents at
/icons/{identifier}.svg, a gallery is available at / and registry changes are
pushed to websocket clients on /ws.

With --watch the definition packs are reloaded whenever they change.

Examples:
  glyph serve                      # Serve on localhost:8080
  glyph serve -p 3000 --watch      # Reload packs on change
  glyph serve --host 0.0.0.0       # Listen on all interfaces`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload definition packs when they change")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("icons.watch", serveCmd.Flags().Lookup("watch"))

	AddFlagValidation(serveCmd, "port", ValidatePort)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx, cfg, logger, cfg.Icons.Paths)
	if err != nil {
		return err
	}

	if cfg.Icons.Watch {
		paths := existingPaths(ctx, logger, cfg.Icons.Paths)
		reloader, err := watcher.NewPackReloader(paths, svc, watcher.DefaultDebounce, logger)
		if err != nil {
			return fmt.Errorf("failed to watch icon paths: %w", err)
		}
		defer reloader.Stop()
		if err := reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to watch icon paths: %w", err)
		}
		logger.Info(ctx, "Watching icon paths", "paths", paths)
	}

	srv := server.New(cfg, svc, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, err, "Error during server shutdown")
		}
	}()

	fmt.Fprintf(os.Stderr, "Serving %d icons at http://%s\n", svc.Stats().Definitions, cfg.Address())

	return srv.Start(ctx)
}
