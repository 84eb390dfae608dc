package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/observability"
	"github.com/spherical/pdf-assistant/internal/pdf"
)

// Pipeline is the document workflow a session drives.
type Pipeline interface {
	Ingest(ctx context.Context, path string, onPage func(done, total int)) (*domain.Document, error)
	Summarize(ctx context.Context, doc *domain.Document, words int) (string, error)
	Answer(ctx context.Context, doc *domain.Document, question string) (string, error)
}

// Manager runs session actions. Actions on one session are serialized; different
// sessions proceed independently.
type Manager struct {
	store     Store
	pipeline  Pipeline
	validator *pdf.Validator
	uploadDir string
	logger    *observability.Logger

	locks sync.Map // session id -> *sync.Mutex
	now   func() time.Time
}

// NewManager creates a manager. Uploads are written below uploadDir, one
// directory per session; an empty uploadDir uses the system temp directory.
func NewManager(store Store, pipeline Pipeline, validator *pdf.Validator, uploadDir string, logger *observability.Logger) (*Manager, error) {
	if uploadDir == "" {
		uploadDir = filepath.Join(os.TempDir(), "pdf-assistant")
	}
	if err := os.MkdirAll(uploadDir, 0o700); err != nil {
		return nil, domain.IOError(fmt.Sprintf("cannot create upload directory %s", uploadDir), err)
	}
	if validator == nil {
		validator = pdf.NewValidator(0)
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	return &Manager{
		store:     store,
		pipeline:  pipeline,
		validator: validator,
		uploadDir: uploadDir,
		logger:    logger.WithOperation("session"),
		now:       time.Now,
	}, nil
}

// Create starts a new idle session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	now := m.now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, domain.IOError("failed to save session", err)
	}

	m.logger.WithSession(s.ID).Debug().Msg("Session created")
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFoundError(fmt.Sprintf("session %q not found", id))
	}

	s, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, domain.NotFoundError(fmt.Sprintf("session %q not found", id))
	}
	if err != nil {
		return nil, domain.IOError("failed to load session", err)
	}
	return s, nil
}

// Upload saves a new document for the session, replacing any previous one, and
// ingests it. The returned session reflects the outcome even when err is set:
// a failed extraction leaves the session in StateExtractionFailed until the next upload.
func (m *Manager) Upload(ctx context.Context, id, filename string, r io.Reader) (*Session, error) {
	unlock := m.lock(id)
	defer unlock()

	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	logger := m.logger.WithContext(ctx).WithSession(id)

	// Name checks only; the size is known once the body is written.
	if err := m.validator.ValidateUpload(filename, -1); err != nil {
		return s, err
	}

	path, size, err := m.saveUpload(id, r)
	if err != nil {
		return s, err
	}
	logger.Info().Str("file", filename).Int64("bytes", size).Msg("Document uploaded")

	s.FileName = filepath.Base(filename)
	s.State = StateFileUploaded
	s.Document = nil
	s.Summary = nil
	s.Answer = nil
	s.LastError = ""
	if err := m.save(ctx, s); err != nil {
		return s, err
	}

	doc, err := m.pipeline.Ingest(ctx, path, nil)
	if err != nil {
		logger.Warn().Err(err).Str("state", string(StateExtractionFailed)).Msg("Extraction failed")
		s.State = StateExtractionFailed
		s.LastError = domain.UserMessage(err)
		if saveErr := m.save(ctx, s); saveErr != nil {
			logger.Error().Err(saveErr).Msg("Failed to record extraction failure")
		}
		return s, err
	}
	doc.Name = s.FileName

	// Classification never fails, so TextExtracted is only ever transient.
	s.Document = doc
	s.State = StateLanguageKnown
	if err := m.save(ctx, s); err != nil {
		return s, err
	}

	logger.Info().Str("state", string(s.State)).Str("language", doc.Language.DisplayName()).Msg("Document ready")
	return s, nil
}

// Summarize requests a summary of about words words and records the result.
func (m *Manager) Summarize(ctx context.Context, id string, words int) (*Session, error) {
	return m.act(ctx, id, func(s *Session) (*Result, error) {
		out, err := m.pipeline.Summarize(ctx, s.Document, words)
		return &Result{Output: out, Words: words}, err
	}, func(s *Session, r *Result) { s.Summary = r })
}

// Answer asks a question about the session's document and records the result.
func (m *Manager) Answer(ctx context.Context, id, question string) (*Session, error) {
	return m.act(ctx, id, func(s *Session) (*Result, error) {
		out, err := m.pipeline.Answer(ctx, s.Document, question)
		return &Result{Output: out, Question: question}, err
	}, func(s *Session, r *Result) { s.Answer = r })
}

// act runs one summary or answer cycle. Only the slot written by set changes,
// so a new answer never clears the last summary and vice versa.
func (m *Manager) act(ctx context.Context, id string, run func(*Session) (*Result, error), set func(*Session, *Result)) (*Session, error) {
	unlock := m.lock(id)
	defer unlock()

	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Ready() {
		return s, domain.ValidationError("upload a PDF document first", nil)
	}

	result, err := run(s)
	result.At = m.now().UTC()
	if err != nil {
		result.Output = ""
		result.Error = domain.UserMessage(err)
	}
	set(s, result)

	if saveErr := m.save(ctx, s); saveErr != nil {
		return s, saveErr
	}
	return s, err
}

// Delete ends a session and removes its uploaded file.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NotFoundError(fmt.Sprintf("session %q not found", id))
	}

	unlock := m.lock(id)
	defer func() {
		unlock()
		m.locks.Delete(id)
	}()

	if err := m.store.Delete(ctx, id); err != nil {
		return domain.IOError("failed to delete session", err)
	}
	if err := os.RemoveAll(m.sessionDir(id)); err != nil {
		return domain.IOError("failed to remove uploaded file", err)
	}

	m.logger.WithSession(id).Debug().Msg("Session deleted")
	return nil
}

// Prune removes upload directories whose session no longer exists, such as
// sessions that expired in the store. It returns the number removed.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(m.uploadDir)
	if err != nil {
		return 0, domain.IOError("failed to list upload directory", err)
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		if _, err := m.store.Get(ctx, e.Name()); !errors.Is(err, ErrNotFound) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.uploadDir, e.Name())); err != nil {
			return removed, domain.IOError("failed to remove stale upload", err)
		}
		removed++
	}

	if removed > 0 {
		m.logger.Info().Int("removed", removed).Msg("Pruned stale uploads")
	}
	return removed, nil
}

func (m *Manager) sessionDir(id string) string {
	return filepath.Join(m.uploadDir, id)
}

// saveUpload writes r to a temporary file and renames it over the session's
// upload, so a rejected upload never clobbers the previous file.
func (m *Manager) saveUpload(id string, r io.Reader) (string, int64, error) {
	dir := m.sessionDir(id)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", 0, domain.IOError("cannot create session directory", err)
	}

	tmp, err := os.CreateTemp(dir, "upload-*.tmp")
	if err != nil {
		return "", 0, domain.IOError("cannot create upload file", err)
	}
	defer os.Remove(tmp.Name())

	src := r
	if limit := m.validator.MaxSize(); limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	size, err := io.Copy(tmp, src)
	closeErr := tmp.Close()
	if err != nil {
		return "", 0, domain.IOError("failed to save upload", err)
	}
	if closeErr != nil {
		return "", 0, domain.IOError("failed to save upload", closeErr)
	}

	if err := m.validator.ValidateUpload(UploadFileName, size); err != nil {
		return "", 0, err
	}

	path := filepath.Join(dir, UploadFileName)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, domain.IOError("failed to save upload", err)
	}
	return path, size, nil
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	s.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, s); err != nil {
		return domain.IOError("failed to save session", err)
	}
	return nil
}

func (m *Manager) lock(id string) func() {
	v, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
