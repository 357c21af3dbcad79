package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sprintlens/internal/infrastructure/config"
	"github.com/felixgeelhaar/sprintlens/internal/infrastructure/dashboard"
	"github.com/felixgeelhaar/sprintlens/internal/infrastructure/watch"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analytics dashboard over HTTP",
	Long: `Serve starts an HTTP server exposing every chart as a JSON endpoint
plus a WebSocket channel that notifies clients when upstream data
changes. With the file provider, payload files are watched and the
cache is invalidated on change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := buildServices()
		if err != nil {
			return MapError(err)
		}
		defer services.Close()

		addr := serveAddr
		if addr == "" {
			addr = services.Config.DashboardAddr
		}

		hub := dashboard.NewHub(services.Logger)
		server, err := dashboard.NewServer(addr, services.Analytics, hub, services.Logger)
		if err != nil {
			return MapError(err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go hub.Run(ctx)

		if services.Config.Provider == config.ProviderFile {
			watcher, err := watch.NewPayloadWatcher(services.Config.PayloadDir, 0, func(e watch.ChangeEvent) {
				services.Analytics.ClearCache()
				hub.NotifyInvalidated(e.Path)
			}, services.Logger)
			if err != nil {
				return MapError(err)
			}
			go func() { _ = watcher.Run(ctx) }()
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()

		return server.Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from sprintlens.yaml, falling back to :8090)")
	RootCmd.AddCommand(serveCmd)
}
