// Package session tracks one user's document and results across requests.
package session

import (
	"time"

	"github.com/spherical/pdf-assistant/internal/domain"
)

// State is where a session is in the upload workflow.
type State string

const (
	StateIdle             State = "idle"
	StateFileUploaded     State = "file_uploaded"
	StateTextExtracted    State = "text_extracted"
	StateLanguageKnown    State = "language_known"
	StateExtractionFailed State = "extraction_failed"
)

// UploadFileName is the name every upload is saved under inside its session directory.
const UploadFileName = "uploaded_file.pdf"

// Result is the outcome of the most recent summary or answer request.
// Exactly one of Output and Error is set.
type Result struct {
	Output   string    `json:"output,omitempty"`
	Error    string    `json:"error,omitempty"`
	Words    int       `json:"words,omitempty"`
	Question string    `json:"question,omitempty"`
	At       time.Time `json:"at"`
}

// Failed reports whether the request ended in an error.
func (r *Result) Failed() bool {
	return r != nil && r.Error != ""
}

// Session is the per-user view of the workflow: at most one document, its
// language, and the last summary and answer.
type Session struct {
	ID        string           `json:"id"`
	State     State            `json:"state"`
	FileName  string           `json:"file_name,omitempty"`
	Document  *domain.Document `json:"document,omitempty"`
	LastError string           `json:"last_error,omitempty"`
	Summary   *Result          `json:"summary,omitempty"`
	Answer    *Result          `json:"answer,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Ready reports whether summaries and answers can be requested.
func (s *Session) Ready() bool {
	return s.State == StateLanguageKnown && s.Document != nil
}

// Clone returns a copy that shares no pointers with s.
func (s *Session) Clone() *Session {
	out := *s
	if s.Document != nil {
		doc := *s.Document
		out.Document = &doc
	}
	if s.Summary != nil {
		r := *s.Summary
		out.Summary = &r
	}
	if s.Answer != nil {
		r := *s.Answer
		out.Answer = &r
	}
	return &out
}
