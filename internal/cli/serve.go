package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docindexer/internal/api"
)

// NewServeCmd builds the serve command: expose the structure and
// chunking operations over HTTP.
func NewServeCmd(a *app) *cobra.Command {
	s := a.mgr.Settings()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validateArgs("serve", changedArgs(cmd)); err != nil {
				return err
			}

			srv := api.NewServer(*s, a.log)
			httpServer := &http.Server{
				Addr:         s.ListenAddr,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				select {
				case <-sigCh:
				case <-cmd.Context().Done():
				}
				a.log.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			a.log.Info("starting docindexer api", "addr", s.ListenAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&s.ListenAddr, "listen-addr", s.ListenAddr, "address to listen on")
	f.StringVar(&s.APIToken, "api-token", s.APIToken, "bearer token required for API requests")
	return cmd
}
