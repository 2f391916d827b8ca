package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/conorfennell/studymate/internal/domain"
	"github.com/conorfennell/studymate/internal/notify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Print study reminders in this terminal until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			console := notify.NewConsole(cmd.OutOrStdout(), domain.ParsePermission(c.cfg.Notifications.Permission))
			s, err := c.open(ctx, console)
			if err != nil {
				return err
			}
			defer s.Close()

			minutes := s.lib().NotificationInterval()
			if minutes == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Reminders are off; set one with: studymate settings --interval N")
				return nil
			}
			s.app.Start()
			if console.Permission() == domain.PermissionDenied {
				fmt.Fprintln(cmd.OutOrStdout(), "Reminders are denied by configuration (notifications.permission).")
			}
			c.logger.Info("Waiting for reminders", zap.Int("interval_minutes", minutes))
			fmt.Fprintf(cmd.OutOrStdout(), "Reminding every %d minutes. Press Ctrl+C to stop.\n", minutes)

			<-ctx.Done()
			return nil
		},
	}
}
