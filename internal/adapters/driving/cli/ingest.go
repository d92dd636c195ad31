package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/torque-labs/wrench-cli/internal/core/domain"
	"github.com/torque-labs/wrench-cli/internal/logger"
)

// watchSettleDelay coalesces the burst of filesystem events an editor
// or a copy emits per file before re-indexing it.
const watchSettleDelay = 500 * time.Millisecond

var (
	ingestDir   string
	ingestWatch bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index manuals into the vector store",
	Long: `Walks the manuals folder, extracts page text, cuts overlapping
chunks, embeds them and writes them to the vector store. Re-running is
safe: chunk ids are deterministic, so unchanged files overwrite
themselves.

Supported formats: PDF, DOCX, Markdown, plain text. Files that cannot
be read are skipped and counted in the report.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestDir, "dir", "d", "", "Manuals directory (default from config)")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "Stay running and re-index files as they change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if err := ensureIngestor(cmd.Context()); err != nil {
		return err
	}

	report, err := ingestService.Ingest(cmd.Context(), progressPrinter(cmd))
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printIngestReport(cmd, report)

	if !ingestWatch {
		return nil
	}
	return watchAndReingest(cmd)
}

// progressPrinter redraws a single progress line in place after each
// committed batch, with a newline once a file completes.
func progressPrinter(cmd *cobra.Command) func(domain.IngestProgress) {
	return func(p domain.IngestProgress) {
		cmd.Printf("\r%-44s %3d%%", p.Source, int(p.Fraction()*100))
		if p.Fraction() >= 1 {
			cmd.Println()
		}
	}
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Println("Ingest complete.")
	cmd.Printf("  Files indexed:   %d\n", report.Files)
	if report.FilesFailed > 0 {
		cmd.Printf("  Files failed:    %d\n", report.FilesFailed)
	}
	if report.PagesSkipped > 0 {
		cmd.Printf("  Pages skipped:   %d\n", report.PagesSkipped)
	}
	cmd.Printf("  Chunks indexed:  %d\n", report.Indexed)
	if report.EmbeddingFallbacks > 0 {
		cmd.Printf("  Embedding fallbacks: %d (stored without usable vectors)\n", report.EmbeddingFallbacks)
	}
	cmd.Printf("  Took %s\n", report.Duration.Round(time.Millisecond))
}

// watchAndReingest blocks watching the manuals folder, re-indexing
// files on create/write and dropping deleted files from the index.
func watchAndReingest(cmd *cobra.Command) error {
	ctx := cmd.Context()

	dir, err := resolveSourceDir()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	cmd.Printf("Watching %s for changes (ctrl+c to stop)\n", dir)

	pending := make(map[string]struct{})
	settle := time.NewTimer(watchSettleDelay)
	if !settle.Stop() {
		<-settle.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
				pending[event.Name] = struct{}{}
				settle.Reset(watchSettleDelay)
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				// The old name is gone; its chunks go too. A rename
				// within the folder re-arrives as a Create.
				delete(pending, event.Name)
				source := filepath.Base(event.Name)
				if err := libraryService.DeleteSource(ctx, source); err != nil {
					logger.Warn("Drop %s from index: %v", source, err)
				} else {
					cmd.Printf("Removed %s from the index\n", source)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-settle.C:
			for path := range pending {
				delete(pending, path)
				report, err := ingestService.IngestFile(ctx, path, nil)
				if err != nil {
					if errors.Is(err, domain.ErrUnsupportedType) {
						continue
					}
					logger.Warn("Re-index %s: %v", filepath.Base(path), err)
					continue
				}
				cmd.Printf("Re-indexed %s (%d chunks)\n", filepath.Base(path), report.Indexed)
			}
		}
	}
}

func resolveSourceDir() (string, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}
	if ingestDir != "" {
		return ingestDir, nil
	}
	return settings.Ingest.SourceDir, nil
}
