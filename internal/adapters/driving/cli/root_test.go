package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/torque-labs/wrench-cli/internal/adapters/driven/storage/memory"
	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
)

// Interface guards for the command test doubles.
var (
	_ driving.SettingsService = (*mockSettingsService)(nil)
	_ driving.Assistant       = (*mockAssistant)(nil)
	_ driving.Ingestor        = (*mockIngestor)(nil)
	_ driving.Library         = (*mockLibrary)(nil)
)

type mockSettingsService struct {
	settings    domain.AppSettings
	getErr      error
	validateErr error
	pingErr     error

	savedEmbedding domain.AIProvider
	savedLLM       domain.AIProvider
	savedBackend   domain.StoreBackend
	savedDSN       string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	settings := m.settings
	return &settings, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.savedEmbedding = provider
	m.settings.Embedding.Provider = provider
	if model != "" {
		m.settings.Embedding.Model = model
	}
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.savedLLM = provider
	m.settings.LLM.Provider = provider
	if model != "" {
		m.settings.LLM.Model = model
	}
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetStoreBackend(backend domain.StoreBackend, dsn string) error {
	m.savedBackend = backend
	m.savedDSN = dsn
	m.settings.Store.Backend = backend
	m.settings.Store.DSN = dsn
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

type mockAssistant struct {
	result      *driving.AskResult
	askErr      error
	streamed    []string
	retrieved   []domain.RetrievedChunk
	retrieveErr error
	listing     *domain.ModelListing

	lastQuestion string
	lastK        int
}

func (m *mockAssistant) Ask(_ context.Context, question string, _ []domain.Turn, hooks driving.AskHooks) (*driving.AskResult, error) {
	m.lastQuestion = question
	for _, partial := range m.streamed {
		if hooks.OnAnswer != nil {
			hooks.OnAnswer(partial)
		}
	}
	if m.askErr != nil {
		return m.result, m.askErr
	}
	if m.result == nil {
		return &driving.AskResult{Retrieval: driving.RetrievalOK}, nil
	}
	return m.result, nil
}

func (m *mockAssistant) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	m.lastQuestion = query
	m.lastK = k
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	return m.retrieved, nil
}

func (m *mockAssistant) ListModels(_ context.Context) *domain.ModelListing {
	if m.listing == nil {
		return &domain.ModelListing{}
	}
	return m.listing
}

type mockIngestor struct {
	report *domain.IngestReport
	err    error
	files  []string
}

func (m *mockIngestor) Ingest(_ context.Context, progress func(domain.IngestProgress)) (*domain.IngestReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if progress != nil {
		progress(domain.IngestProgress{Source: "FS55.pdf", Processed: 4, Total: 4})
	}
	return m.report, nil
}

func (m *mockIngestor) IngestFile(_ context.Context, path string, _ func(domain.IngestProgress)) (*domain.IngestReport, error) {
	m.files = append(m.files, path)
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

type mockLibrary struct {
	sources    []domain.SourceInfo
	sourcesErr error
	matches    []domain.ScanMatch
	scanErr    error
	deleteErr  error
	resetErr   error

	deleted  []string
	resets   int
	lastScan driving.ScanOptions
}

func (m *mockLibrary) Sources(_ context.Context) ([]domain.SourceInfo, error) {
	return m.sources, m.sourcesErr
}

func (m *mockLibrary) Reset(_ context.Context) error {
	m.resets++
	return m.resetErr
}

func (m *mockLibrary) DeleteSource(_ context.Context, source string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, source)
	return nil
}

func (m *mockLibrary) Scan(_ context.Context, opts driving.ScanOptions) ([]domain.ScanMatch, error) {
	m.lastScan = opts
	return m.matches, m.scanErr
}

// newTestSettings returns settings that keep wiring inert in tests:
// the store backend is in-memory and both providers are cloud without
// a key, so any ensure path that reaches the AI layer fails fast
// without dialling anything.
func newTestSettings() domain.AppSettings {
	settings := domain.DefaultAppSettings()
	settings.Store.Backend = domain.StoreBackendMemory
	settings.Embedding.Provider = domain.AIProviderOpenAI
	settings.Embedding.APIKey = ""
	settings.LLM.Provider = domain.AIProviderOpenAI
	settings.LLM.APIKey = ""
	return settings
}

// setupTestServices swaps every wired service for a test double and
// returns the restore func.
func setupTestServices() func() {
	prevSettings := settingsService
	prevIngest := ingestService
	prevAsk := askService
	prevLibrary := libraryService
	prevStore := configStore

	settingsService = &mockSettingsService{settings: newTestSettings()}
	ingestService = &mockIngestor{report: &domain.IngestReport{Files: 1, Chunks: 4, Indexed: 4}}
	askService = &mockAssistant{}
	libraryService = &mockLibrary{}
	configStore = memory.NewConfigStore()

	return func() {
		settingsService = prevSettings
		ingestService = prevIngest
		askService = prevAsk
		libraryService = prevLibrary
		configStore = prevStore
	}
}

// runCommand executes the root command with args and captures output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCommandInput(t, "", args...)
}

// runCommandInput is runCommand with stdin content, for commands that
// prompt.
func runCommandInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "wrench", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	verboseFlag := rootCmd.PersistentFlags().Lookup("verbose")
	if assert.NotNil(t, verboseFlag) {
		assert.Equal(t, "v", verboseFlag.Shorthand)
		assert.Equal(t, "false", verboseFlag.DefValue)
	}

	configFlag := rootCmd.PersistentFlags().Lookup("config")
	if assert.NotNil(t, configFlag) {
		assert.Equal(t, "", configFlag.DefValue)
	}
}

func TestRootCmd_HasCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"ingest", "ask", "chat", "search", "scan",
		"sources", "models", "reset", "settings", "version", "mcp",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
