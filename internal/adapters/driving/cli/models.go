package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models offered by the LLM provider",
	Long: `Queries the configured LLM provider for its model list. When the
provider cannot be reached, a stock list of known models is shown
instead so the settings flow still has something to offer.`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	if err := ensureAssistant(cmd.Context()); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	listing := askService.ListModels(cmd.Context())
	if listing.Live {
		cmd.Printf("Models offered by %s:\n", settings.LLM.Provider)
	} else {
		cmd.Printf("Provider listing unavailable (%v); known models:\n", listing.Err)
	}

	for _, model := range listing.Models {
		marker := " "
		if model.Name == settings.LLM.Model {
			marker = "*"
		}
		cmd.Printf("  %s %s\n", marker, model.Name)
	}
	if len(listing.Models) == 0 {
		cmd.Println("  (none)")
	}
	return nil
}
