package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/conorfennell/studymate/internal/domain"
	"github.com/conorfennell/studymate/internal/notify"
	"github.com/conorfennell/studymate/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const inboxSize = 10

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI with in-page reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			inbox := notify.NewInbox(domain.ParsePermission(c.cfg.Notifications.Permission), inboxSize)
			s, err := c.open(ctx, inbox)
			if err != nil {
				return err
			}
			defer s.Close()

			handler, err := web.NewServer(s.app, inbox, c.cfg.Web.PollInterval, c.logger)
			if err != nil {
				return err
			}
			s.app.Start()

			srv := &http.Server{
				Addr:              c.cfg.Web.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				c.logger.Info("Starting server", zap.String("addr", srv.Addr))
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", srv.Addr)

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			c.logger.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8080)")
	return cmd
}
