package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) cardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage the cards of a stack",
	}

	add := &cobra.Command{
		Use:   "add STACK FRONT BACK",
		Short: "Add a card to a stack",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			stack, err := resolveStack(s.lib(), args[0])
			if err != nil {
				return err
			}
			card, err := s.lib().AddCard(cmd.Context(), stack.ID, args[1], args[2])
			if err != nil {
				return err
			}
			if card == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Front and back are both required; nothing added.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added card %s to %q\n", card.ID, stack.Name)
			return nil
		},
	}

	del := &cobra.Command{
		Use:     "delete STACK CARD",
		Aliases: []string{"rm"},
		Short:   "Delete a card by id or position",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			stack, err := resolveStack(s.lib(), args[0])
			if err != nil {
				return err
			}
			card, err := resolveCard(s.lib(), stack, args[1])
			if err != nil {
				return err
			}
			if err := s.lib().DeleteCard(cmd.Context(), stack.ID, card.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted card %q from %q\n", card.Front, stack.Name)
			return nil
		},
	}

	cmd.AddCommand(add, del)
	return cmd
}
