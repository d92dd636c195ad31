package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
	"github.com/torque-labs/wrench-cli/internal/logger"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question",
	Long: `Answers a single question grounded in the indexed manuals. The
answer streams as it is generated, followed by the source pages it drew
on and follow-up suggestions.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureAssistant(cmd.Context()); err != nil {
		return err
	}

	// The answer hook delivers the whole answer-so-far on every call;
	// printed tracks how much of it is already on screen.
	printed := 0
	hooks := driving.AskHooks{
		OnActivity: func(label string) {
			logger.Info("Activity: %s", label)
		},
		OnAnswer: func(answer string) {
			if len(answer) > printed {
				cmd.Print(answer[printed:])
				printed = len(answer)
			}
		},
	}

	result, err := askService.Ask(cmd.Context(), args[0], nil, hooks)
	if err != nil {
		if printed > 0 {
			cmd.Println()
			cmd.Println("(stream interrupted; partial answer shown)")
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	// A provider that buffers the whole generation delivers nothing
	// through the hook; print the final text in that case.
	if printed == 0 {
		cmd.Print(result.Answer.Text)
	}
	cmd.Println()

	switch result.Retrieval {
	case driving.RetrievalEmptyIndex:
		cmd.Println("\nNote: nothing is indexed yet, so this answer is not grounded in your manuals. Run 'wrench ingest' first.")
	case driving.RetrievalDegraded:
		cmd.Println("\nNote: manual lookup was unavailable, so this answer is not grounded in your manuals.")
	case driving.RetrievalOK:
	}

	if len(result.Answer.Contexts) > 0 {
		cmd.Println("\nSources:")
		seen := make(map[string]bool)
		for _, chunk := range result.Answer.Contexts {
			label := chunk.Label()
			if seen[label] {
				continue
			}
			seen[label] = true
			cmd.Printf("  %s\n", label)
		}
	}

	if len(result.Answer.Suggestions) > 0 {
		cmd.Println("\nFollow-ups:")
		for i, suggestion := range result.Answer.Suggestions {
			cmd.Printf("  %d. %s\n", i+1, suggestion)
		}
	}
	return nil
}
