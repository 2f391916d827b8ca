package main

import (
	"fmt"
	"io"

	"github.com/conorfennell/studymate/internal/importer"
	"github.com/spf13/cobra"
)

func (c *cli) importCmd() *cobra.Command {
	var stackName string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "import SOURCE",
		Short: "Import Q:/A: cards from markdown files or a git repository",
		Long: `Imports cards written in markdown:

  Q: front of the card
  A: back of the card
  C: optional context appended to the back
  ---

SOURCE is a .md file, a directory searched recursively, or a git URL that is
cloned (or pulled) into the repos directory. Cards already in the stack with
the same content are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			var progress io.Writer = cmd.ErrOrStderr()
			if quiet {
				progress = nil
			}
			res, err := importer.New(s.lib(), c.logger).Import(cmd.Context(), importer.Options{
				Source:    args[0],
				StackName: stackName,
				ReposDir:  c.cfg.Import.ReposDir,
				Progress:  progress,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Found %d cards: %d added, %d skipped, %d errors.\n",
				res.Parsed, res.Added, res.Skipped, len(res.Errors))
			for _, e := range res.Errors {
				fmt.Fprintf(w, "- %s\n", e)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&stackName, "stack", "s", "", "Target stack name, created when missing (required)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide git progress output")
	cmd.Flags().String("repos-dir", "", "Where git sources are checked out (default ~/.studymate/repos)")
	_ = cmd.MarkFlagRequired("stack")
	return cmd
}
