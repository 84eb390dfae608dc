package assistant

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-assistant/internal/config"
	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/language"
	"github.com/spherical/pdf-assistant/internal/llm"
	"github.com/spherical/pdf-assistant/internal/pdf"
	"github.com/spherical/pdf-assistant/internal/pdf/pdftest"
)

var reportPages = []string{
	"The company reported total revenue of four point two billion dollars for the fiscal year, an increase of twelve percent.",
	"",
	"Operating margin improved to eighteen percent while net income reached six hundred million dollars.",
}

func newPipeline(t *testing.T, model llm.ChatModel) *Assistant {
	t.Helper()
	extractor := pdf.NewExtractor(pdf.PlainLoader{}, pdf.NewValidator(0), nil)
	classifier := language.NewClassifier(language.NewLinguaDetector(), language.DefaultSampleSize, nil)
	return New(extractor, classifier, model, nil)
}

// TestPipeline_RealPDF runs extraction and language detection on a generated PDF.
func TestPipeline_RealPDF(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping language model load in short mode")
	}

	model := &fakeModel{reply: "Revenue rose 12% to $4.2B with better margins."}
	a := newPipeline(t, model)

	var progress []int
	doc, err := a.Ingest(context.Background(), pdftest.Write(t, reportPages), func(done, total int) {
		progress = append(progress, done)
		assert.Equal(t, 3, total)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, progress)
	assert.Equal(t, 2, doc.Text.PagesWithText)
	assert.Equal(t, 1, strings.Count(doc.Text.Content, pdf.PageSeparator))
	assert.Less(t, strings.Index(doc.Text.Content, "total revenue"), strings.Index(doc.Text.Content, "Operating margin"))
	assert.Equal(t, domain.LanguageEnglish, doc.Language)

	summary, err := a.Summarize(context.Background(), doc, 50)
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
}

// TestPipeline_LiveOllama talks to a real model. Set OLLAMA_INTEGRATION=1 with
// Ollama running and llama3.2:3b pulled.
func TestPipeline_LiveOllama(t *testing.T) {
	if os.Getenv("OLLAMA_INTEGRATION") == "" {
		t.Skip("OLLAMA_INTEGRATION not set")
	}

	cfg := config.DefaultConfig().LLM
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	cfg.Timeout = 5 * time.Minute

	a := newPipeline(t, llm.NewOllamaClient(cfg, nil))
	ctx := context.Background()

	doc, err := a.Ingest(ctx, pdftest.Write(t, reportPages), nil)
	require.NoError(t, err)

	summary, err := a.Summarize(ctx, doc, 50)
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
	t.Logf("summary: %s", summary)

	answer, err := a.Answer(ctx, doc, "What is the total revenue?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	t.Logf("answer: %s", answer)
}
