package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
)

var (
	scanPart    bool
	scanContext int
)

var scanCmd = &cobra.Command{
	Use:   "scan [term]",
	Short: "Scan stored pages for a literal term",
	Long: `Scans the stored page text for a term without touching embeddings.
Useful when similarity search cannot surface an exact token such as a
part number or an error code.

By default the term is matched as a literal substring. With --part the
term is treated as a part number: digit groups joined by spaces, dashes
or dots in the manuals still match, and a digits-only comparison
catches formatting the pattern misses.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVarP(&scanPart, "part", "p", false, "Treat the term as a part number")
	scanCmd.Flags().IntVar(&scanContext, "context", 0, "Snippet context in characters (default 50)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := ensureIndex(cmd.Context()); err != nil {
		return err
	}

	matches, err := libraryService.Scan(cmd.Context(), driving.ScanOptions{
		Term:       args[0],
		PartNumber: scanPart,
		Context:    scanContext,
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(matches) == 0 {
		cmd.Println("No matches.")
		return nil
	}

	for _, m := range matches {
		cmd.Printf("%s (Pg %d)\n", m.Source, m.Page)
		cmd.Printf("  %s\n", m.Snippet)
	}
	cmd.Printf("\n%d match(es).\n", len(matches))
	return nil
}
