package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spherical/pdf-assistant/cmd/pdf-assistant/ui"
	"github.com/spherical/pdf-assistant/internal/assistant"
	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/language"
	"github.com/spherical/pdf-assistant/internal/llm"
	"github.com/spherical/pdf-assistant/internal/pdf"
	"github.com/spherical/pdf-assistant/internal/prompt"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newAssistant wires the pipeline from the loaded configuration.
func newAssistant() (*assistant.Assistant, error) {
	loader, err := pdf.NewLoader(cfg.PDF.Loader)
	if err != nil {
		return nil, err
	}
	extractor := pdf.NewExtractor(loader, pdf.NewValidator(cfg.PDF.MaxFileSize), logger)
	classifier := language.NewClassifier(language.NewLinguaDetector(), cfg.Language.SampleSize, logger)

	model, err := llm.NewFromConfig(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	return assistant.New(extractor, classifier, model, logger), nil
}

// ingest extracts and classifies path with a page progress bar.
func ingest(ctx context.Context, a *assistant.Assistant, path string) (*domain.Document, error) {
	onPage, finish := ui.PageProgress("Extracting text")
	doc, err := a.Ingest(ctx, path, onPage)
	finish()
	if err != nil {
		return nil, err
	}

	ui.Success("Extracted %d of %d pages from %s", doc.Text.PagesWithText, doc.Text.TotalPages, doc.Name)
	ui.KeyValue("Detected Language", doc.Language.DisplayName())
	return doc, nil
}

// generate runs one summary or answer request. With streaming enabled, output
// is printed as it arrives; otherwise a spinner runs until the reply is complete.
func generate(ctx context.Context, a *assistant.Assistant, doc *domain.Document, task domain.TaskKind, vars prompt.Vars) error {
	if cfg.LLM.Stream {
		_, err := a.Stream(ctx, doc, task, vars, ui.Chunk)
		ui.Newline()
		return err
	}

	spin := ui.NewSpinner("Waiting for " + cfg.LLM.Model + "...")
	spin.Start()
	out, err := a.Stream(ctx, doc, task, vars, nil)
	spin.Stop()
	if err != nil {
		return err
	}

	ui.Text(out)
	return nil
}
