package domain

import (
	"fmt"
	"strings"
	"time"
)

// Summary word-count bounds, matching the numeric control on the page.
const (
	MinSummaryWords     = 10
	MaxSummaryWords     = 500
	SummaryWordsStep    = 10
	DefaultSummaryWords = 50
)

// LanguageTag is the document language as far as prompt selection cares.
type LanguageTag string

const (
	LanguageEnglish LanguageTag = "en"
	LanguageArabic  LanguageTag = "ar"
	LanguageOther   LanguageTag = "other"
	LanguageUnknown LanguageTag = "unknown"
)

// DisplayName returns the label shown next to "Detected Language".
func (l LanguageTag) DisplayName() string {
	switch l {
	case LanguageEnglish:
		return "English"
	case LanguageArabic:
		return "Arabic"
	case LanguageOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// TagFromCode maps a detector language code onto a LanguageTag.
func TagFromCode(code string) LanguageTag {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "en":
		return LanguageEnglish
	case "ar":
		return LanguageArabic
	default:
		return LanguageOther
	}
}

// TaskKind selects which prompt pair a request uses.
type TaskKind string

const (
	TaskSummarize TaskKind = "summarize"
	TaskAnswer    TaskKind = "answer"
)

// ExtractedText is the concatenated text of every non-blank page.
type ExtractedText struct {
	Content       string `json:"content"`
	TotalPages    int    `json:"total_pages"`
	PagesWithText int    `json:"pages_with_text"`
}

// Document is the per-session view of one uploaded PDF after ingestion.
type Document struct {
	Name       string        `json:"name"`
	FilePath   string        `json:"file_path"`
	Text       ExtractedText `json:"text"`
	Language   LanguageTag   `json:"language"`
	IngestedAt time.Time     `json:"ingested_at"`
}

// SummaryRequest asks for a word-bounded financial summary.
type SummaryRequest struct {
	Words int `json:"words"`
}

// Validate checks the word count against the allowed range.
func (r SummaryRequest) Validate() error {
	if r.Words < MinSummaryWords || r.Words > MaxSummaryWords {
		return ValidationError(fmt.Sprintf("summary length must be between %d and %d words, got %d",
			MinSummaryWords, MaxSummaryWords, r.Words), nil)
	}
	return nil
}

// QuestionRequest asks a free-form question about the document.
type QuestionRequest struct {
	Question string `json:"question"`
}

// Validate rejects blank questions.
func (r QuestionRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return ValidationError("question cannot be empty", nil)
	}
	return nil
}
