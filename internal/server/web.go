package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/session"
)

// SessionCookie holds the session id of the HTML workflow.
const SessionCookie = "pdfa_session"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").ParseFS(templateFS, "templates/index.html"))

// pageData is everything the page template renders.
type pageData struct {
	Session   *SessionView
	Model     string
	Error     string
	Words     int
	MinWords  int
	MaxWords  int
	WordsStep int
	Question  string
}

// page handles GET /.
func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	s, err := h.cookieSession(w, r)
	if err != nil {
		h.renderPage(w, r, nil, err, "", 0)
		return
	}
	h.renderPage(w, r, s, nil, "", 0)
}

// pageUpload handles POST /upload.
func (h *handler) pageUpload(w http.ResponseWriter, r *http.Request) {
	s, err := h.cookieSession(w, r)
	if err != nil {
		h.renderPage(w, r, nil, err, "", 0)
		return
	}

	file, filename, err := h.formFile(w, r)
	if err != nil {
		h.logError(r, s.ID, err)
		h.renderPage(w, r, s, err, "", 0)
		return
	}
	defer file.Close()

	updated, err := h.manager.Upload(r.Context(), s.ID, filename, file)
	if updated != nil {
		s = updated
	}
	if err != nil {
		h.logError(r, s.ID, err)
	}
	h.renderPage(w, r, s, err, "", 0)
}

// pageSummary handles POST /summary.
func (h *handler) pageSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.cookieSession(w, r)
	if err != nil {
		h.renderPage(w, r, nil, err, "", 0)
		return
	}

	words, err := strconv.Atoi(strings.TrimSpace(r.FormValue("words")))
	if err != nil {
		err = domain.ValidationError("summary length must be a whole number of words", err)
		h.renderPage(w, r, s, err, "", 0)
		return
	}

	updated, err := h.manager.Summarize(r.Context(), s.ID, words)
	if updated != nil {
		s = updated
	}
	if err != nil {
		h.logError(r, s.ID, err)
	}
	h.renderPage(w, r, s, err, "", words)
}

// pageAnswer handles POST /answer.
func (h *handler) pageAnswer(w http.ResponseWriter, r *http.Request) {
	s, err := h.cookieSession(w, r)
	if err != nil {
		h.renderPage(w, r, nil, err, "", 0)
		return
	}

	question := r.FormValue("question")
	updated, err := h.manager.Answer(r.Context(), s.ID, question)
	if updated != nil {
		s = updated
	}
	if err != nil {
		h.logError(r, s.ID, err)
	}
	h.renderPage(w, r, s, err, question, 0)
}

// cookieSession returns the session named by the cookie, starting a new one
// when the cookie is missing or its session has expired.
func (h *handler) cookieSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s, err := h.manager.Get(r.Context(), c.Value)
		if err == nil {
			return s, nil
		}
		if !domain.IsType(err, domain.ErrorTypeNotFound) {
			return nil, err
		}
	}

	return h.startSession(r.Context(), w)
}

func (h *handler) startSession(ctx context.Context, w http.ResponseWriter) (*session.Session, error) {
	s, err := h.manager.Create(ctx)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

func (h *handler) renderPage(w http.ResponseWriter, r *http.Request, s *session.Session, err error, question string, words int) {
	if words == 0 {
		words = domain.DefaultSummaryWords
		if s != nil && s.Summary != nil && s.Summary.Words > 0 {
			words = s.Summary.Words
		}
	}

	data := pageData{
		Session:   newSessionView(s),
		Model:     h.model,
		Words:     words,
		MinWords:  domain.MinSummaryWords,
		MaxWords:  domain.MaxSummaryWords,
		WordsStep: domain.SummaryWordsStep,
		Question:  question,
	}

	status := http.StatusOK
	if err != nil {
		data.Error = userMessage(err)
		status = statusFor(err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to render page")
	}
}
