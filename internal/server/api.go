package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/observability"
	"github.com/spherical/pdf-assistant/internal/session"
)

// multipartOverhead is allowed on top of the file size limit for form fields and boundaries.
const multipartOverhead = 1 << 20

type handler struct {
	manager        *session.Manager
	logger         *observability.Logger
	model          string
	maxUploadBytes int64
}

// SummaryRequestDTO is the body of POST /api/v1/sessions/{id}/summary.
// Words defaults to 50 when omitted.
type SummaryRequestDTO struct {
	Words *int `json:"words"`
}

// AnswerRequestDTO is the body of POST /api/v1/sessions/{id}/answer.
type AnswerRequestDTO struct {
	Question string `json:"question"`
}

// createSession handles POST /api/v1/sessions.
func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Create(r.Context())
	if err != nil {
		h.fail(w, r, "", err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(s))
}

// getSession handles GET /api/v1/sessions/{sessionId}.
func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	s, err := h.manager.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, id, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

// deleteSession handles DELETE /api/v1/sessions/{sessionId}.
func (h *handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	if err := h.manager.Delete(r.Context(), id); err != nil {
		h.fail(w, r, id, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadDocument handles POST /api/v1/sessions/{sessionId}/document with a
// multipart "file" field.
func (h *handler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")

	file, filename, err := h.formFile(w, r)
	if err != nil {
		h.fail(w, r, id, err, nil)
		return
	}
	defer file.Close()

	s, err := h.manager.Upload(r.Context(), id, filename, file)
	if err != nil {
		h.fail(w, r, id, err, s)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

// summarize handles POST /api/v1/sessions/{sessionId}/summary.
func (h *handler) summarize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")

	var req SummaryRequestDTO
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, id, err, nil)
		return
	}
	words := domain.DefaultSummaryWords
	if req.Words != nil {
		words = *req.Words
	}

	s, err := h.manager.Summarize(r.Context(), id, words)
	if err != nil {
		h.fail(w, r, id, err, s)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

// answer handles POST /api/v1/sessions/{sessionId}/answer.
func (h *handler) answer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")

	var req AnswerRequestDTO
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, id, err, nil)
		return
	}

	s, err := h.manager.Answer(r.Context(), id, req.Question)
	if err != nil {
		h.fail(w, r, id, err, s)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

// formFile returns the uploaded "file" part and its client-side name.
func (h *handler) formFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", err
		}
		return nil, "", domain.ValidationError("a PDF file is required in the \"file\" field", err)
	}
	return file, header.Filename, nil
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return domain.ValidationError("invalid request body", err)
	}
	return nil
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, id string, err error, s *session.Session) {
	h.logError(r, id, err)
	writeError(w, err, newSessionView(s))
}

func (h *handler) logError(r *http.Request, id string, err error) {
	logger := h.logger.WithContext(r.Context())
	if id != "" {
		logger = logger.WithSession(id)
	}

	status := statusFor(err)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("Request failed")
}
