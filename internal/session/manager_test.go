package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/pdf"
)

var pdfBody = []byte("%PDF-1.4\n%test document\n")

type fakePipeline struct {
	mu          sync.Mutex
	ingestErr   error
	reply       string
	inferErr    error
	ingested    []string
	summaries   int
	answers     int
	inFlight    int
	maxInFlight int
}

func (f *fakePipeline) Ingest(_ context.Context, path string, _ func(done, total int)) (*domain.Document, error) {
	f.mu.Lock()
	f.ingested = append(f.ingested, path)
	err := f.ingestErr
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	data, rerr := os.ReadFile(path)
	if rerr != nil {
		return nil, rerr
	}
	return &domain.Document{
		FilePath: path,
		Text:     domain.ExtractedText{Content: string(data), TotalPages: 1, PagesWithText: 1},
		Language: domain.LanguageEnglish,
	}, nil
}

func (f *fakePipeline) Summarize(_ context.Context, doc *domain.Document, words int) (string, error) {
	if err := (domain.SummaryRequest{Words: words}).Validate(); err != nil {
		return "", err
	}
	f.track(func() { f.summaries++ })
	return f.reply, f.inferErr
}

func (f *fakePipeline) Answer(_ context.Context, doc *domain.Document, question string) (string, error) {
	if err := (domain.QuestionRequest{Question: question}).Validate(); err != nil {
		return "", err
	}
	f.track(func() { f.answers++ })
	return f.reply, f.inferErr
}

func (f *fakePipeline) track(count func()) {
	f.mu.Lock()
	count()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func newTestManager(t *testing.T, pipeline *fakePipeline) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m, err := NewManager(NewMemoryStore(time.Hour), pipeline, pdf.NewValidator(1024), dir, nil)
	require.NoError(t, err)
	return m, dir
}

func TestManager_CreateAndGet(t *testing.T) {
	m, _ := newTestManager(t, &fakePipeline{})
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, s.State)
	assert.False(t, s.Ready())

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = m.Get(ctx, "../../etc")
	assert.True(t, domain.IsType(err, domain.ErrorTypeNotFound))

	_, err = m.Get(ctx, "8d5e7a6c-0b1f-4f3a-9c2d-7e6f5a4b3c2d")
	assert.True(t, domain.IsType(err, domain.ErrorTypeNotFound))
}

func TestManager_UploadAndActions(t *testing.T) {
	pipeline := &fakePipeline{reply: "Revenue grew."}
	m, dir := newTestManager(t, pipeline)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)

	s, err = m.Upload(ctx, s.ID, "Q4 Report.PDF", bytes.NewReader(pdfBody))
	require.NoError(t, err)
	assert.Equal(t, StateLanguageKnown, s.State)
	assert.True(t, s.Ready())
	assert.Equal(t, "Q4 Report.PDF", s.FileName)
	assert.Equal(t, "Q4 Report.PDF", s.Document.Name)
	assert.Equal(t, filepath.Join(dir, s.ID, UploadFileName), pipeline.ingested[0])

	s, err = m.Summarize(ctx, s.ID, 50)
	require.NoError(t, err)
	require.NotNil(t, s.Summary)
	assert.Equal(t, "Revenue grew.", s.Summary.Output)
	assert.Equal(t, 50, s.Summary.Words)

	s, err = m.Answer(ctx, s.ID, "What is the total revenue?")
	require.NoError(t, err)
	require.NotNil(t, s.Answer)
	assert.Equal(t, "What is the total revenue?", s.Answer.Question)
	require.NotNil(t, s.Summary, "answering keeps the last summary")

	// re-running an action overwrites only its own result
	pipeline.reply = "Revenue grew 12%."
	s, err = m.Summarize(ctx, s.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 12%.", s.Summary.Output)
	assert.Equal(t, "Revenue grew.", s.Answer.Output)
}

func TestManager_ActionsRequireDocument(t *testing.T) {
	pipeline := &fakePipeline{reply: "x"}
	m, _ := newTestManager(t, pipeline)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Summarize(ctx, s.ID, 50)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
	_, err = m.Answer(ctx, s.ID, "Why?")
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
	assert.Zero(t, pipeline.summaries+pipeline.answers)
}

func TestManager_ExtractionFailureUntilNextUpload(t *testing.T) {
	pipeline := &fakePipeline{ingestErr: domain.EmptyDocumentError("no text could be extracted from the PDF"), reply: "ok"}
	m, _ := newTestManager(t, pipeline)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)

	s, err = m.Upload(ctx, s.ID, "scan.pdf", bytes.NewReader(pdfBody))
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeEmptyDocument))
	assert.Equal(t, StateExtractionFailed, s.State)
	assert.Equal(t, "no text could be extracted from the PDF", s.LastError)

	stored, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StateExtractionFailed, stored.State)

	_, err = m.Summarize(ctx, s.ID, 50)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))

	pipeline.ingestErr = nil
	s, err = m.Upload(ctx, s.ID, "report.pdf", bytes.NewReader(pdfBody))
	require.NoError(t, err)
	assert.Equal(t, StateLanguageKnown, s.State)
	assert.Empty(t, s.LastError)
}

func TestManager_NewUploadReplacesDocument(t *testing.T) {
	pipeline := &fakePipeline{reply: "ok"}
	m, dir := newTestManager(t, pipeline)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Upload(ctx, s.ID, "first.pdf", bytes.NewReader(pdfBody))
	require.NoError(t, err)
	_, err = m.Summarize(ctx, s.ID, 50)
	require.NoError(t, err)

	second := append([]byte{}, pdfBody...)
	second = append(second, []byte("second upload")...)
	s, err = m.Upload(ctx, s.ID, "second.pdf", bytes.NewReader(second))
	require.NoError(t, err)
	assert.Nil(t, s.Summary, "results belong to the previous document")
	assert.Contains(t, s.Document.Text.Content, "second upload")

	entries, err := os.ReadDir(filepath.Join(dir, s.ID))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, UploadFileName, entries[0].Name())
}

func TestManager_RejectedUploads(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     []byte
	}{
		{"not a pdf", "notes.txt", pdfBody},
		{"empty", "empty.pdf", nil},
		{"too large", "big.pdf", bytes.Repeat([]byte("x"), 2048)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := &fakePipeline{reply: "ok"}
			m, dir := newTestManager(t, pipeline)
			ctx := context.Background()

			s, err := m.Create(ctx)
			require.NoError(t, err)
			_, err = m.Upload(ctx, s.ID, "good.pdf", bytes.NewReader(pdfBody))
			require.NoError(t, err)

			s, err = m.Upload(ctx, s.ID, tt.filename, bytes.NewReader(tt.body))
			require.Error(t, err)
			assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))

			// the previous document is untouched
			assert.Equal(t, StateLanguageKnown, s.State)
			data, err := os.ReadFile(filepath.Join(dir, s.ID, UploadFileName))
			require.NoError(t, err)
			assert.Equal(t, pdfBody, data)
			assert.Len(t, pipeline.ingested, 1)
		})
	}
}

func TestManager_InferenceFailureIsRecorded(t *testing.T) {
	pipeline := &fakePipeline{inferErr: domain.InferenceError("could not reach the language model", errors.New("refused"))}
	m, _ := newTestManager(t, pipeline)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Upload(ctx, s.ID, "report.pdf", bytes.NewReader(pdfBody))
	require.NoError(t, err)

	s, err = m.Answer(ctx, s.ID, "What is the total revenue?")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeInference))
	assert.True(t, s.Answer.Failed())
	assert.Equal(t, "could not reach the language model", s.Answer.Error)
	assert.Empty(t, s.Answer.Output)
	assert.Equal(t, StateLanguageKnown, s.State, "the session survives inference errors")

	pipeline.inferErr = nil
	pipeline.reply = "I don't know."
	s, err = m.Answer(ctx, s.ID, "What is the total revenue?")
	require.NoError(t, err)
	assert.False(t, s.Answer.Failed())
}

func TestManager_ValidationFailureIsRecorded(t *testing.T) {
	pipeline := &fakePipeline{reply: "ok"}
	m, _ := newTestManager(t, pipeline)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Upload(ctx, s.ID, "report.pdf", bytes.NewReader(pdfBody))
	require.NoError(t, err)

	s, err = m.Answer(ctx, s.ID, "  ")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeValidation))
	assert.Equal(t, "question cannot be empty", s.Answer.Error)
	assert.Zero(t, pipeline.answers)
}

func TestManager_SerializesActionsPerSession(t *testing.T) {
	pipeline := &fakePipeline{reply: "ok"}
	m, _ := newTestManager(t, pipeline)
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Upload(ctx, s.ID, "report.pdf", bytes.NewReader(pdfBody))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = m.Summarize(ctx, s.ID, 50)
			} else {
				_, _ = m.Answer(ctx, s.ID, "Why?")
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, pipeline.summaries)
	assert.Equal(t, 4, pipeline.answers)
	assert.Equal(t, 1, pipeline.maxInFlight)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	pipeline := &fakePipeline{reply: "ok"}
	m, _ := newTestManager(t, pipeline)
	ctx := context.Background()

	a, err := m.Create(ctx)
	require.NoError(t, err)
	b, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Upload(ctx, a.ID, "a.pdf", strings.NewReader(string(pdfBody)+"alpha"))
	require.NoError(t, err)
	_, err = m.Upload(ctx, b.ID, "b.pdf", strings.NewReader(string(pdfBody)+"beta"))
	require.NoError(t, err)

	gotA, err := m.Get(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := m.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Contains(t, gotA.Document.Text.Content, "alpha")
	assert.Contains(t, gotB.Document.Text.Content, "beta")
}

func TestManager_DeleteRemovesUpload(t *testing.T) {
	m, dir := newTestManager(t, &fakePipeline{reply: "ok"})
	ctx := context.Background()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Upload(ctx, s.ID, "report.pdf", bytes.NewReader(pdfBody))
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, s.ID))
	_, err = os.Stat(filepath.Join(dir, s.ID))
	assert.True(t, os.IsNotExist(err))

	_, err = m.Get(ctx, s.ID)
	assert.True(t, domain.IsType(err, domain.ErrorTypeNotFound))
}

func TestManager_Prune(t *testing.T) {
	m, dir := newTestManager(t, &fakePipeline{reply: "ok"})
	ctx := context.Background()

	live, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Upload(ctx, live.ID, "report.pdf", bytes.NewReader(pdfBody))
	require.NoError(t, err)

	stale := "0b9d3c1e-2f4a-4e5b-8c6d-7a8b9c0d1e2f"
	require.NoError(t, os.MkdirAll(filepath.Join(dir, stale), 0o700))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "not-a-session"), 0o700))

	removed, err := m.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(dir, stale))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, live.ID, UploadFileName))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "not-a-session"))
	assert.NoError(t, err)
}
