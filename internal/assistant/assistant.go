// Package assistant runs the extract, classify, prompt and infer pipeline for one document.
package assistant

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/language"
	"github.com/spherical/pdf-assistant/internal/llm"
	"github.com/spherical/pdf-assistant/internal/observability"
	"github.com/spherical/pdf-assistant/internal/pdf"
	"github.com/spherical/pdf-assistant/internal/prompt"
)

// Assistant ties the pipeline stages together. It holds no per-document state,
// so one instance serves every session.
type Assistant struct {
	extractor  *pdf.Extractor
	classifier *language.Classifier
	model      llm.ChatModel
	logger     *observability.Logger
}

// New creates an assistant from its collaborators.
func New(extractor *pdf.Extractor, classifier *language.Classifier, model llm.ChatModel, logger *observability.Logger) *Assistant {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Assistant{
		extractor:  extractor,
		classifier: classifier,
		model:      model,
		logger:     logger,
	}
}

// Ingest extracts the text of the PDF at path and detects its language once.
// Extraction failures halt before classification.
func (a *Assistant) Ingest(ctx context.Context, path string, onPage func(done, total int)) (*domain.Document, error) {
	text, err := a.extractor.Extract(ctx, path, onPage)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		Name:       filepath.Base(path),
		FilePath:   path,
		Text:       text,
		Language:   a.classifier.Classify(text.Content),
		IngestedAt: time.Now().UTC(),
	}

	a.logger.Info().
		Str("document", doc.Name).
		Int("pages", text.TotalPages).
		Int("pages_with_text", text.PagesWithText).
		Str("language", doc.Language.DisplayName()).
		Msg("Document ingested")

	return doc, nil
}

// Summarize asks the model for a summary of roughly words words.
func (a *Assistant) Summarize(ctx context.Context, doc *domain.Document, words int) (string, error) {
	return a.run(ctx, doc, domain.TaskSummarize, prompt.Vars{Words: words}, nil)
}

// Answer asks the model a question grounded in the document text.
func (a *Assistant) Answer(ctx context.Context, doc *domain.Document, question string) (string, error) {
	return a.run(ctx, doc, domain.TaskAnswer, prompt.Vars{Question: question}, nil)
}

// Stream behaves like Summarize or Answer but forwards partial output to onChunk
// when the model supports streaming. Other models deliver the whole reply in one chunk.
func (a *Assistant) Stream(ctx context.Context, doc *domain.Document, task domain.TaskKind, vars prompt.Vars, onChunk func(string)) (string, error) {
	return a.run(ctx, doc, task, vars, onChunk)
}

func (a *Assistant) run(ctx context.Context, doc *domain.Document, task domain.TaskKind, vars prompt.Vars, onChunk func(string)) (string, error) {
	if doc == nil {
		return "", domain.ValidationError("no document has been uploaded", nil)
	}
	vars.Context = doc.Text.Content

	rendered, err := prompt.Render(doc.Language, task, vars)
	if err != nil {
		a.logger.Warn().Err(err).Str("task", string(task)).Msg("Rejected request")
		return "", err
	}

	start := time.Now()
	var out string
	if streamer, ok := a.model.(llm.StreamingChatModel); ok && onChunk != nil {
		out, err = streamer.CompleteStream(ctx, rendered.Messages, onChunk)
	} else {
		out, err = a.model.Complete(ctx, rendered.Messages)
		if err == nil && onChunk != nil {
			onChunk(out)
		}
	}
	if err != nil {
		a.logger.Error().Err(err).Str("task", string(task)).Msg("Inference failed")
		return "", err
	}

	a.logger.Info().
		Str("task", string(task)).
		Str("language", string(doc.Language)).
		Int("chars", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("Generated response")

	return out, nil
}
