package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/torque-labs/wrench-cli/internal/adapters/driving/tui"
	"github.com/torque-labs/wrench-cli/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Starts a terminal chat session with the assistant. Answers stream in
as they generate, with the source pages listed under each one.

Keys:
  enter       send
  1-3         take a follow-up suggestion
  ctrl+c      quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	if err := ensureAssistant(cmd.Context()); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// A panic inside the TUI leaves the terminal in the alternate
	// screen; recover so the error is readable.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Chat session panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("chat session crashed: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Assistant:     askService,
		HistoryWindow: settings.Chat.HistoryWindow,
	})
	if err != nil {
		return fmt.Errorf("start chat: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("chat session: %w", err)
	}
	return nil
}
