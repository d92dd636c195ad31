package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driven"
	"github.com/torque-labs/wrench-cli/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure providers, storage and chat behaviour.

Without a subcommand the current configuration is shown. Use the
wizard for first-time setup, the provider subcommands to change one
thing, or get/set/list for raw config keys.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one raw config value",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one raw config value",
	Long: `Writes a raw config key. Values parse as int, then float, then bool,
then string. See 'wrench settings list' for the keys wrench reads.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all config keys",
	RunE:  runSettingsList,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM provider",
	RunE:  runSettingsLLM,
}

var settingsStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Configure the vector store backend",
	RunE:  runSettingsStore,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Run the interactive setup wizard",
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsStoreCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	cmd.Println("Embedding")
	cmd.Println("---------")
	cmd.Printf("  Provider:    %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model:       %s\n", settings.Embedding.Model)
	cmd.Printf("  Dimensions:  %d\n", settings.Embedding.Dimensions)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL:    %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API key:     %s\n", maskAPIKey(settings.Embedding.APIKey))
	}
	if settings.Embedding.RateLimit > 0 {
		cmd.Printf("  Rate limit:  %.1f req/s\n", settings.Embedding.RateLimit)
	}

	cmd.Println()
	cmd.Println("LLM")
	cmd.Println("---")
	cmd.Printf("  Provider:    %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model:       %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL:    %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API key:     %s\n", maskAPIKey(settings.LLM.APIKey))
	}

	cmd.Println()
	cmd.Println("Store")
	cmd.Println("-----")
	cmd.Printf("  Backend:     %s\n", settings.Store.Backend.Description())
	cmd.Printf("  Collection:  %s\n", settings.Store.Collection)
	if settings.Store.Backend == domain.StoreBackendPostgres {
		cmd.Printf("  DSN:         %s\n", settings.Store.DSN)
	}

	cmd.Println()
	cmd.Println("Ingest")
	cmd.Println("------")
	cmd.Printf("  Source dir:  %s\n", settings.Ingest.SourceDir)
	cmd.Printf("  Chunk size:  %d\n", settings.Ingest.ChunkSize)
	cmd.Printf("  Overlap:     %d\n", settings.Ingest.Overlap)
	cmd.Printf("  Batch size:  %d\n", settings.Ingest.BatchSize)

	cmd.Println()
	cmd.Println("Chat")
	cmd.Println("----")
	cmd.Printf("  History window:  %d turns\n", settings.Chat.HistoryWindow)
	cmd.Printf("  Retrieval k:     %d chunks\n", settings.Chat.RetrievalK)

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("\nWarning: %v\n", err)
		cmd.Println("Run 'wrench settings wizard' to fix.")
	} else {
		cmd.Println("\nConfiguration is valid.")
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	store, err := rawConfigStore()
	if err != nil {
		return err
	}
	val, ok := store.Get(args[0])
	if !ok {
		cmd.Printf("%s is not set\n", args[0])
		return nil
	}
	cmd.Printf("%s = %s\n", args[0], displayValue(args[0], val))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	store, err := rawConfigStore()
	if err != nil {
		return err
	}
	key := args[0]
	if !slices.Contains(services.ConfigKeys(), key) {
		cmd.Printf("Warning: %s is not a key wrench reads.\n", key)
	}
	val := parseConfigValue(args[1])
	if err := store.Set(key, val); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	cmd.Printf("%s = %s\n", key, displayValue(key, val))
	return nil
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	store, err := rawConfigStore()
	if err != nil {
		return err
	}
	for _, key := range services.ConfigKeys() {
		val, ok := store.Get(key)
		if !ok {
			cmd.Printf("  %-24s (unset)\n", key)
			continue
		}
		cmd.Printf("  %-24s = %s\n", key, displayValue(key, val))
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}
	return configureEmbedding(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}
	return configureLLM(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsStore(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}
	return configureStore(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Wrench setup")
	cmd.Println("============")
	cmd.Println()

	cmd.Println("Step 1 of 3")
	if err := configureEmbedding(cmd, reader); err != nil {
		return err
	}
	cmd.Println()

	cmd.Println("Step 2 of 3")
	if err := configureLLM(cmd, reader); err != nil {
		return err
	}
	cmd.Println()

	cmd.Println("Step 3 of 3")
	if err := configureStore(cmd, reader); err != nil {
		return err
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Configuration saved with warnings: %v\n", err)
		return nil
	}
	cmd.Println("All settings saved and valid.")
	return nil
}

func configureEmbedding(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Embedding provider")
	cmd.Println("------------------")
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("Enter choice [1]: ")
	provider := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	defaults := domain.DefaultEmbeddingModels()
	cmd.Printf("Model [%s]: ", defaults[provider])
	model := readLine(reader)

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("save embedding settings: %w", err)
	}

	cmd.Print("Validating embedding configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
	} else {
		cmd.Println("OK")
	}
	return nil
}

func configureLLM(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("LLM provider")
	cmd.Println("------------")
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("Enter choice [1]: ")
	provider := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	defaults := domain.DefaultLLMModels()
	cmd.Printf("Model [%s]: ", defaults[provider])
	model := readLine(reader)

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("save llm settings: %w", err)
	}

	cmd.Print("Validating LLM configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
	} else {
		cmd.Println("OK")
	}
	return nil
}

func configureStore(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Vector store backend")
	cmd.Println("--------------------")
	backends := domain.AllStoreBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("Enter choice [1]: ")
	backend := backends[parseChoice(readLine(reader), len(backends), 1)-1]

	var dsn string
	if backend == domain.StoreBackendPostgres {
		cmd.Print("Connection string (postgres://...): ")
		dsn = readLine(reader)
	}

	if err := settingsService.SetStoreBackend(backend, dsn); err != nil {
		return fmt.Errorf("save store settings: %w", err)
	}
	cmd.Printf("Store backend set to %s.\n", backend)
	return nil
}

// rawConfigStore exposes the config store for the raw key commands.
func rawConfigStore() (driven.ConfigStore, error) {
	if err := ensureSettings(); err != nil {
		return nil, err
	}
	if configStore == nil {
		return nil, errors.New("config store not configured")
	}
	return configStore, nil
}

// parseConfigValue parses a raw value as int, float, bool, then string.
func parseConfigValue(raw string) any {
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// displayValue renders a config value for output, masking credentials.
func displayValue(key string, val any) string {
	if strings.HasSuffix(key, "api_key") {
		if s, ok := val.(string); ok {
			return maskAPIKey(s)
		}
	}
	return fmt.Sprintf("%v", val)
}

// readLine reads one line and trims surrounding whitespace. Returns
// empty on EOF.
func readLine(reader *bufio.Reader) string {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

// parseChoice parses a 1-based menu choice, falling back to defaultVal
// on empty or invalid input.
func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > maxVal {
		return defaultVal
	}
	return n
}

// readPassword reads without echo when stdin is a terminal, falling
// back to a plain line read otherwise (pipes, tests).
func readPassword(reader *bufio.Reader) string {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if b, err := term.ReadPassword(fd); err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	return readLine(reader)
}

// maskAPIKey hides all but the edges of a key for display.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
