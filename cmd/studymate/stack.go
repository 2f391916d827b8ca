package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/conorfennell/studymate/internal/domain"
	"github.com/conorfennell/studymate/internal/study"
	"github.com/spf13/cobra"
)

// resolveStack finds a stack by id, 1-based position or case-insensitive name.
// A number with no stack at that position is tried as a name.
func resolveStack(lib *study.Library, ref string) (domain.Stack, error) {
	if s, err := lib.Stack(ref); err == nil {
		return s, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if s, err := lib.StackAt(n - 1); err == nil {
			return s, nil
		}
	}
	if s, ok := lib.FindStackByName(ref); ok {
		return s, nil
	}
	return domain.Stack{}, fmt.Errorf("%w: %q", study.ErrStackNotFound, ref)
}

// resolveCard finds a card of s by id or 1-based position.
func resolveCard(lib *study.Library, s domain.Stack, ref string) (domain.Card, error) {
	for _, c := range s.Cards {
		if c.ID == ref {
			return c, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if c, err := lib.CardAt(s.ID, n-1); err == nil {
			return c, nil
		}
	}
	return domain.Card{}, fmt.Errorf("%w: %q in stack %q", study.ErrCardNotFound, ref, s.Name)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...)
}

func activeLabel(active bool) string {
	if active {
		return "yes"
	}
	return "no"
}

func printStacks(w io.Writer, stacks []domain.Stack) {
	if len(stacks) == 0 {
		fmt.Fprintln(w, "No stacks yet.")
		return
	}
	t := newTable("#", "ID", "NAME", "CARDS", "ACTIVE")
	for i, s := range stacks {
		t.Row(strconv.Itoa(i+1), s.ID, s.Name, strconv.Itoa(len(s.Cards)), activeLabel(s.IsActive))
	}
	fmt.Fprintln(w, t.Render())
}

func (c *cli) stackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Manage flashcard stacks",
	}

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a stack",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			stack, err := s.lib().AddStack(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if stack == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Stack name is blank; nothing added.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added stack %q (%s)\n", stack.Name, stack.ID)
			return nil
		},
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stacks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()
			printStacks(cmd.OutOrStdout(), s.lib().Stacks())
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show STACK",
		Short: "Show the cards of a stack",
		Args:  cobra.ExactArgs(1),
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
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%s) active: %s\n", stack.Name, stack.ID, activeLabel(stack.IsActive))
			if len(stack.Cards) == 0 {
				fmt.Fprintln(w, "No cards yet.")
				return nil
			}
			t := newTable("#", "ID", "FRONT", "BACK")
			for i, card := range stack.Cards {
				t.Row(strconv.Itoa(i+1), card.ID, card.Front, card.Back)
			}
			fmt.Fprintln(w, t.Render())
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename STACK NAME",
		Short: "Rename a stack",
		Args:  cobra.MinimumNArgs(2),
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
			name := strings.Join(args[1:], " ")
			if err := s.lib().RenameStack(cmd.Context(), stack.ID, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed stack %s\n", stack.ID)
			return nil
		},
	}

	del := &cobra.Command{
		Use:     "delete STACK",
		Aliases: []string{"rm"},
		Short:   "Delete a stack and its cards",
		Args:    cobra.ExactArgs(1),
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
			if err := s.lib().DeleteStack(cmd.Context(), stack.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted stack %q\n", stack.Name)
			return nil
		},
	}

	cmd.AddCommand(add, list, show, rename, del,
		c.setActiveCmd("activate", "Include stacks in the quiz", true),
		c.setActiveCmd("deactivate", "Exclude stacks from the quiz", false),
	)
	return cmd
}

func (c *cli) setActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " STACK...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			// Resolve every reference first so positions refer to one listing.
			stacks := make([]domain.Stack, 0, len(args))
			for _, ref := range args {
				stack, err := resolveStack(s.lib(), ref)
				if err != nil {
					return err
				}
				stacks = append(stacks, stack)
			}
			var errs []error
			for _, stack := range stacks {
				if err := s.lib().SetStackActive(cmd.Context(), stack.ID, active); err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: active %s\n", stack.Name, activeLabel(active))
			}
			return errors.Join(errs...)
		},
	}
}
