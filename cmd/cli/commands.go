package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pep299/american-standard/internal/model"
)

var errNotFound = errors.New("not found")

func (c *cli) generateCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate today's edition",
		Long: `Generate today's edition. An existing edition is left alone unless
--force is given.

Examples:
  edition generate
  edition generate --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := c.app.Editions.Generate(cmd.Context(), force)
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("generation failed: %s", result.Error)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate even if today's edition exists")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [date]",
		Short: "Print an edition as JSON (default: today, falling back to latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edition *model.Edition
			if len(args) == 0 {
				edition = c.app.Repository.GetTodayEdition(cmd.Context())
			} else {
				edition = c.app.Repository.GetEdition(cmd.Context(), args[0])
			}
			if edition == nil {
				return fmt.Errorf("edition %w", errNotFound)
			}
			return printJSON(cmd.OutOrStdout(), edition)
		},
	}
}

func (c *cli) articleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "article DATE ARTICLE_ID",
		Short: "Print one article as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			edition, article := c.app.Repository.GetArticle(cmd.Context(), args[0], args[1])
			if edition == nil {
				return fmt.Errorf("edition %s %w", args[0], errNotFound)
			}
			if article == nil {
				return fmt.Errorf("article %s %w", args[1], errNotFound)
			}
			return printJSON(cmd.OutOrStdout(), article)
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete DATE [ARTICLE_ID]",
		Short: "Delete an edition, or one article from it",
		Long: `Delete a whole edition, or a single article. Deleting the lead story
promotes the first remaining article.

Examples:
  edition delete 2025-06-01
  edition delete 2025-06-01 article-1748761200000-3`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			date := args[0]
			out := cmd.OutOrStdout()

			if len(args) == 2 {
				if !c.app.Repository.DeleteArticle(ctx, date, args[1]) {
					return fmt.Errorf("article %s %w or failed to delete", args[1], errNotFound)
				}
				fmt.Fprintf(out, "Article %s deleted from %s\n", args[1], date)
				return nil
			}

			if !c.app.Repository.EditionExists(ctx, date) || !c.app.Repository.DeleteEdition(ctx, date) {
				return fmt.Errorf("edition %s %w or failed to delete", date, errNotFound)
			}
			fmt.Fprintf(out, "Edition %s deleted\n", date)
			return nil
		},
	}
}

func (c *cli) archiveCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "List archived editions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			index := c.app.Repository.GetEditionsSummary(cmd.Context())
			if asJSON {
				return printJSON(cmd.OutOrStdout(), index)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tARTICLES\tLEAD")
			for _, s := range index {
				fmt.Fprintf(w, "%s\t%d\t%s\n", s.Date, s.ArticleCount, s.LeadHeadline)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (c *cli) reactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reactions [date]",
		Short: "Refresh the X reactions of an edition (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var date string
			if len(args) == 1 {
				date = args[0]
			}
			result, err := c.app.Editions.RegenerateReactions(cmd.Context(), date)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
