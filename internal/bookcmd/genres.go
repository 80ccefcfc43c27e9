package bookcmd

import (
	"github.com/spf13/cobra"
)

// NewGenresCmd creates the genres command
func NewGenresCmd() *cobra.Command {
	var src SourceFlags
	var format string

	cmd := &cobra.Command{
		Use:   "genres",
		Short: "List the genres available for recommendations",
		Long: `List every genre that survives normalization and the frequency filter,
in alphabetical order, with the number of books in each.`,
		Example: `  bookrec genres
  bookrec genres --min-genre-count 10 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatCSV, formatYAML); err != nil {
				return err
			}

			cat, err := src.Load()
			if err != nil {
				return err
			}
			return writeGenres(cmd.OutOrStdout(), format, cat.GenreCounts())
		},
	}

	src.Register(cmd)
	cmd.Flags().StringVar(&format, "format", formatText, "Output format (text, json, csv, yaml)")

	return cmd
}
