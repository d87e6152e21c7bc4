package healthguard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local JSON API for the browser front-end",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(svc *services) error {
			addr := svc.cfg.API.Addr
			if serveAddr != "" {
				addr = serveAddr
			}
			srv := api.NewServer(api.Deps{
				Store:    svc.store,
				Profiles: svc.profiles,
				History:  svc.history,
				Chat:     svc.chat,
				Auth:     svc.auth,
				Flows:    svc.flows(),
				Window:   svc.window(),
				Log:      svc.log,
			})
			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(svc.cfg.API.AllowedOrigins),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			errCh := make(chan error, 1)
			go func() {
				errCh <- httpSrv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "Serving healthguard API on http://%s/api/v1\n", addr)
			svc.log.WithField("addr", addr).Info("API server started")

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve api: %w", err)
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown api: %w", err)
			}
			svc.log.Info("API server stopped")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from api.addr)")
}
