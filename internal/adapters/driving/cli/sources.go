package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List indexed manuals",
	Long:  `Lists every manual in the index with its chunk count.`,
	RunE:  runSources,
}

var sourcesDeleteCmd = &cobra.Command{
	Use:   "delete [file]",
	Short: "Remove one manual from the index",
	Long: `Removes every chunk of the named manual from the index. The file on
disk is untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runSourcesDelete,
}

func init() {
	sourcesCmd.AddCommand(sourcesDeleteCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if err := ensureIndex(cmd.Context()); err != nil {
		return err
	}

	sources, err := libraryService.Sources(cmd.Context())
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No manuals indexed yet. Run 'wrench ingest' to add some.")
		return nil
	}

	total := 0
	cmd.Println("Indexed manuals:")
	for _, source := range sources {
		cmd.Printf("  %-44s %6d chunks\n", source.Name, source.Chunks)
		total += source.Chunks
	}
	cmd.Printf("\n%d manual(s), %d chunks.\n", len(sources), total)
	return nil
}

func runSourcesDelete(cmd *cobra.Command, args []string) error {
	if err := ensureIndex(cmd.Context()); err != nil {
		return err
	}

	if err := libraryService.DeleteSource(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	cmd.Printf("Removed %s from the index.\n", args[0])
	return nil
}
