package bookcmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lehigh-university-libraries/bookrec/internal/dataset"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var src SourceFlags
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the built catalog to a Parquet or JSON lines snapshot",
		Long: `Run the merge, normalization, filter and scoring pipeline once and save the
result. Pass the file to --snapshot on any other command to skip the CSV sources.`,
		Example: `  bookrec export --output books.parquet
  bookrec export --output books.jsonl --genre-map genres.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}

			cat, err := src.Load()
			if err != nil {
				return err
			}

			if err := dataset.WriteSnapshot(output, cat.Books()); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}

			absPath, _ := filepath.Abs(output)
			slog.Info("Snapshot saved", "path", absPath, "books", cat.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d books to %s\n", cat.Len(), absPath)
			return nil
		},
	}

	src.Register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Snapshot path ending in .parquet or .jsonl (required)")

	_ = cmd.MarkFlagRequired("output")

	return cmd
}
