package bookcmd

import (
	"github.com/lehigh-university-libraries/bookrec/internal/query"
	"github.com/spf13/cobra"
)

const maxSuggestions = 3

// NewRecommendCmd creates the recommend command
func NewRecommendCmd() *cobra.Command {
	var src SourceFlags
	var mode string
	var value string
	var pages string
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend books by author or genre",
		Long: `Recommend books from the merged catalog, ranked by Bayesian average rating.

Books are matched either by a case-insensitive substring of the author field or by
an exact genre, then narrowed to a page-count range. An empty author or genre
returns no books.`,
		Example: `  # Top 5 short books by Terry Pratchett
  bookrec recommend --by author --value pratchett --pages "<300" --limit 5

  # Long humor books as JSON
  bookrec recommend --by genre --value Humor --pages 500+ --format json

  # Use a prebuilt snapshot instead of the CSV sources
  bookrec recommend --snapshot books.parquet --by genre --value Fiction --pages 300-499`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reject bad input before paying for the pipeline
			req, err := query.ParseRequest(mode, value, pages, limit)
			if err != nil {
				return err
			}
			if err := checkFormat(format, formatText, formatJSON, formatCSV, formatYAML); err != nil {
				return err
			}

			cat, err := src.Load()
			if err != nil {
				return err
			}

			engine := query.NewEngine(cat)
			books := engine.Recommend(req)

			var suggestions []string
			if len(books) == 0 && req.Mode == query.ModeGenre {
				suggestions = engine.SuggestGenres(req.Value, maxSuggestions)
			}
			return writeBooks(cmd.OutOrStdout(), format, req, books, suggestions)
		},
	}

	src.Register(cmd)
	cmd.Flags().StringVar(&mode, "by", "", "Recommend by author or genre (required)")
	cmd.Flags().StringVar(&value, "value", "", "Author substring or exact genre")
	cmd.Flags().StringVar(&pages, "pages", string(query.PagesUnder300), "Page range: <300, 300-499 or 500+")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of recommendations (0-1000)")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format (text, json, csv, yaml)")

	_ = cmd.MarkFlagRequired("by")

	return cmd
}
