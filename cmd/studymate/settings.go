package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) settingsCmd() *cobra.Command {
	var interval int

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the reminder interval",
		Long: `Shows the reminder interval in minutes. With --interval, saves a new one;
0 turns reminders off.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			if cmd.Flags().Changed("interval") {
				if err := s.app.SaveSettings(cmd.Context(), interval); err != nil {
					return err
				}
			}
			minutes := s.lib().NotificationInterval()
			if minutes == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Reminders: off")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminders: every %d minutes\n", minutes)
			return nil
		},
	}
	cmd.Flags().IntVarP(&interval, "interval", "i", 0, "Reminder interval in minutes, 0 to disable")
	return cmd
}
