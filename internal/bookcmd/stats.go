package bookcmd

import (
	"github.com/lehigh-university-libraries/bookrec/internal/catalog"
	"github.com/spf13/cobra"
)

// Summary collects the build diagnostics of a catalog.
type Summary struct {
	Books  int                  `json:"books" yaml:"books"`
	Genres int                  `json:"genres" yaml:"genres"`
	Stats  catalog.Stats        `json:"stats" yaml:"stats"`
	Merge  *catalog.MergeReport `json:"merge,omitempty" yaml:"merge,omitempty"`
	Filter catalog.FilterReport `json:"filter" yaml:"filter"`
}

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	var src SourceFlags
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show merge, filter and scoring diagnostics",
		Long: `Build the catalog and report how many rows each pipeline stage kept,
why rows were excluded, and the ranking constants C (25th percentile of ratings
counts) and m (mean rating).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatText, formatJSON, formatYAML); err != nil {
				return err
			}

			cat, err := src.Load()
			if err != nil {
				return err
			}

			summary := Summary{
				Books:  cat.Len(),
				Genres: len(cat.Genres()),
				Stats:  cat.Stats(),
				Merge:  cat.MergeReport(),
				Filter: cat.FilterReport(),
			}
			return writeSummary(cmd.OutOrStdout(), format, summary)
		},
	}

	src.Register(cmd)
	cmd.Flags().StringVar(&format, "format", formatText, "Output format (text, json, yaml)")

	return cmd
}
