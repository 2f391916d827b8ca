package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (c *cli) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show review statistics per card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			w := cmd.OutOrStdout()
			stats := s.lib().Stats()
			if len(stats) == 0 {
				fmt.Fprintln(w, "No reviews yet.")
				return nil
			}
			t := newTable("CARD", "STACK", "REVIEWS", "CORRECT", "ACCURACY", "LAST REVIEWED")
			for _, st := range stats {
				front := st.Front
				if st.Dangling {
					front = "(deleted " + st.CardID + ")"
				}
				t.Row(front, st.StackName,
					strconv.Itoa(st.Reviews), strconv.Itoa(st.Correct),
					fmt.Sprintf("%.0f%%", st.Accuracy()*100),
					st.LastReviewed.Local().Format("2006-01-02 15:04"))
			}
			fmt.Fprintln(w, t.Render())
			fmt.Fprintf(w, "%d reviews in total.\n", len(s.lib().Records()))
			return nil
		},
	}
}
