package server

import (
	"time"

	"github.com/spherical/pdf-assistant/internal/prompt"
	"github.com/spherical/pdf-assistant/internal/session"
)

// SessionView is the client-facing shape of a session. Server-side paths are omitted.
type SessionView struct {
	ID            string          `json:"id"`
	State         session.State   `json:"state"`
	FileName      string          `json:"file_name,omitempty"`
	Language      string          `json:"language,omitempty"`
	LanguageName  string          `json:"language_name,omitempty"`
	QuestionLabel string          `json:"question_label,omitempty"`
	Text          string          `json:"text,omitempty"`
	TotalPages    int             `json:"total_pages,omitempty"`
	PagesWithText int             `json:"pages_with_text,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
	Summary       *session.Result `json:"summary,omitempty"`
	Answer        *session.Result `json:"answer,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func newSessionView(s *session.Session) *SessionView {
	if s == nil {
		return nil
	}

	v := &SessionView{
		ID:        s.ID,
		State:     s.State,
		FileName:  s.FileName,
		LastError: s.LastError,
		Summary:   s.Summary,
		Answer:    s.Answer,
		UpdatedAt: s.UpdatedAt,
	}
	if doc := s.Document; doc != nil {
		v.Language = string(doc.Language)
		v.LanguageName = doc.Language.DisplayName()
		v.QuestionLabel = prompt.QuestionLabel(doc.Language)
		v.Text = doc.Text.Content
		v.TotalPages = doc.Text.TotalPages
		v.PagesWithText = doc.Text.PagesWithText
	}
	return v
}
