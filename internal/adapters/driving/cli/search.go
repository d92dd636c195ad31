package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
)

// snippetRunes bounds the text preview shown per result in table mode.
const snippetRunes = 160

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the index directly",
	Long: `Runs similarity search against the vector store and prints the
matching chunks with their raw distances. This is the retrieval
diagnostic: it shows exactly what the assistant would be grounded on
for a query, without generating an answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "k", 5, "Number of chunks to return")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureAssistant(cmd.Context()); err != nil {
		return err
	}

	results, err := askService.Retrieve(cmd.Context(), args[0], searchLimit)
	if errors.Is(err, domain.ErrIndexEmpty) {
		cmd.Println("The index is empty. Run 'wrench ingest' first.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printSearchJSON(cmd, results)
	}
	printSearchTable(cmd, results)
	return nil
}

func printSearchJSON(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	type searchResult struct {
		ID       string  `json:"id"`
		Source   string  `json:"source"`
		Page     int     `json:"page"`
		Text     string  `json:"text"`
		Distance float64 `json:"distance"`
	}

	out := make([]searchResult, 0, len(results))
	for _, r := range results {
		out = append(out, searchResult{
			ID:       r.ID,
			Source:   r.Source,
			Page:     r.Page,
			Text:     r.Text,
			Distance: r.Distance,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printSearchTable(cmd *cobra.Command, results []domain.RetrievedChunk) {
	if len(results) == 0 {
		cmd.Println("No matches.")
		return
	}
	for i, r := range results {
		cmd.Printf("[%d] %s  distance=%.4f\n", i+1, r.Label(), r.Distance)
		cmd.Printf("    %s\n", snippet(r.Text, snippetRunes))
	}
}

// snippet flattens newlines and truncates to at most limit runes.
func snippet(text string, limit int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= limit {
		return flat
	}
	return string(runes[:limit]) + "..."
}
