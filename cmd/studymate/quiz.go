package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/conorfennell/studymate/internal/tui"
	"github.com/spf13/cobra"
)

func (c *cli) quizCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quiz",
		Short: "Quiz yourself on the cards of all active stacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			p := tea.NewProgram(tui.New(cmd.Context(), s.app.NewQuiz()),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("quiz failed: %w", err)
			}
			if m, ok := final.(tui.Model); ok {
				right, wrong := m.Tally()
				fmt.Fprintf(cmd.OutOrStdout(), "Session: %d right, %d wrong.\n", right, wrong)
			}
			return nil
		},
	}
}
