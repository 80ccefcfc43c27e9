package bookcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lehigh-university-libraries/bookrec/internal/catalog"
	"github.com/lehigh-university-libraries/bookrec/internal/dataset"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var datasetPath string
	var limit int
	var interactive bool
	var columns []string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect raw rows of a source CSV",
		Long: `Inspect rows from one of the source CSV files before they are merged.

This command is useful for checking header names against the expected schema
and for spotting values that will fail to parse.`,
		Example: `  # Inspect first 5 rows interactively
  bookrec inspect --dataset goodreads_books.csv --limit 5 --interactive

  # Show only a few columns
  bookrec inspect --dataset categories_books.csv --columns isbn10,categories

  # Inspect all rows (no limit)
  bookrec inspect --dataset goodreads_books.csv --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				return fmt.Errorf("--dataset is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return executeInspect(ctx, cmd.OutOrStdout(), cmd.InOrStdin(), datasetPath, limit, interactive, columns)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to a CSV source file (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of rows to inspect (0 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause after each row (press Enter to continue)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Only show these columns")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func executeInspect(ctx context.Context, w io.Writer, in io.Reader, datasetPath string, limit int, interactive bool, columns []string) error {
	loader := dataset.NewLoader(datasetPath)

	var table *dataset.Table
	var err error
	if limit > 0 {
		table, err = loader.LoadSample(limit)
	} else {
		table, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if len(columns) == 0 {
		columns = table.Header
	}
	for _, col := range columns {
		if !table.Has(col) {
			return fmt.Errorf("unknown column %q (have %s)", col, strings.Join(table.Header, ", "))
		}
	}

	fmt.Fprintf(w, "Loaded %d rows from %s\n", table.Len(), datasetPath)
	fmt.Fprintf(w, "Columns: %s\n", strings.Join(table.Header, ", "))
	printSchemaCheck(w, table)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)

	width := 0
	for _, col := range columns {
		width = max(width, len(col))
	}

	reader := bufio.NewReader(in)

	for i, row := range table.Rows {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nInspection interrupted.")
			return nil
		default:
		}

		fmt.Fprintf(w, "ROW %d/%d\n", i+1, table.Len())
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for _, col := range columns {
			fmt.Fprintf(w, "%-*s  %s\n", width+1, col+":", truncate(table.Value(row, col), descriptionWidth))
		}
		fmt.Fprintln(w)

		if !interactive {
			continue
		}

		fmt.Fprint(w, "Press Enter to continue to next row (or Ctrl+C to quit)...")

		inputCh := make(chan struct{})
		go func() {
			_, _ = reader.ReadString('\n')
			close(inputCh)
		}()

		select {
		case <-ctx.Done():
			fmt.Fprintln(w, "\nInspection interrupted.")
			return nil
		case <-inputCh:
			fmt.Fprintln(w)
		}
	}

	return nil
}

// printSchemaCheck reports which source of the default schema the table looks
// like and any columns that source requires but the file lacks.
func printSchemaCheck(w io.Writer, table *dataset.Table) {
	schema := catalog.DefaultSchema()

	check := func(name string, required []string) {
		var missing []string
		for _, col := range required {
			if !table.Has(col) {
				missing = append(missing, col)
			}
		}
		if len(missing) == 0 {
			fmt.Fprintf(w, "Schema:  matches the %s source\n", name)
			return
		}
		fmt.Fprintf(w, "Schema:  %s source is missing %s\n", name, strings.Join(missing, ", "))
	}

	switch {
	case table.Has(schema.PrimaryKey):
		check("books", schema.PrimaryColumns())
	case table.Has(schema.SecondaryKey):
		check("categories", schema.SecondaryColumns())
	default:
		fmt.Fprintf(w, "Schema:  no %s or %s key column\n", schema.PrimaryKey, schema.SecondaryKey)
	}
}
