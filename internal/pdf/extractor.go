// Package pdf turns an uploaded PDF into the text the assistant reasons over.
package pdf

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/observability"
)

// PageSeparator joins the text of consecutive non-blank pages.
const PageSeparator = "\n\n"

// Extractor validates a PDF, loads its pages and collapses them into one text.
type Extractor struct {
	loader    PageLoader
	validator *Validator
	logger    *observability.Logger
}

// NewExtractor creates an extractor over the given page loader.
func NewExtractor(loader PageLoader, validator *Validator, logger *observability.Logger) *Extractor {
	if validator == nil {
		validator = NewValidator(0)
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Extractor{
		loader:    loader,
		validator: validator,
		logger:    logger.WithOperation("extract"),
	}
}

// Extract returns the document text. A PDF whose pages are all blank yields an
// EmptyDocumentError rather than an empty string.
func (e *Extractor) Extract(ctx context.Context, path string, onPage func(done, total int)) (domain.ExtractedText, error) {
	start := time.Now()

	if err := e.validator.ValidatePDFPath(path); err != nil {
		return domain.ExtractedText{}, err
	}

	pages, err := e.loader.LoadPages(ctx, path, onPage)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.ExtractedText{}, err
		}
		e.logger.Error().Err(err).Str("path", path).Msg("Failed to load PDF pages")
		return domain.ExtractedText{}, domain.ExtractionError("could not read the PDF document", err)
	}

	text := JoinPages(pages)
	if text.PagesWithText == 0 {
		e.logger.Warn().Str("path", path).Int("pages", len(pages)).Msg("PDF has no extractable text")
		return text, domain.EmptyDocumentError("no text could be extracted from the PDF")
	}

	e.logger.Debug().
		Int("pages", text.TotalPages).
		Int("pages_with_text", text.PagesWithText).
		Int("chars", len(text.Content)).
		Dur("elapsed", time.Since(start)).
		Msg("Extracted PDF text")

	return text, nil
}

// JoinPages drops pages whose trimmed text is empty and joins the rest, in order,
// with a blank line between them. Surviving pages are kept verbatim.
func JoinPages(pages []string) domain.ExtractedText {
	kept := make([]string, 0, len(pages))
	for _, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		kept = append(kept, page)
	}

	return domain.ExtractedText{
		Content:       strings.Join(kept, PageSeparator),
		TotalPages:    len(pages),
		PagesWithText: len(kept),
	}
}
