// Package prompt holds the fixed prompt pairs and renders them for a document.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/spherical/pdf-assistant/internal/domain"
)

// Message roles understood by every chat backend.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Pair is a system instruction plus a user instruction template.
type Pair struct {
	System string
	User   *template.Template
}

// Vars are the values substituted into a user template.
type Vars struct {
	Context  string
	Words    int
	Question string
}

// Message is one rendered, role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Rendered is a prompt ready for inference.
type Rendered struct {
	Language domain.LanguageTag `json:"language"`
	Task     domain.TaskKind    `json:"task"`
	Messages []Message          `json:"messages"`
}

// System returns the system instruction text.
func (r Rendered) System() string {
	return r.Messages[0].Content
}

// User returns the user instruction text.
func (r Rendered) User() string {
	return r.Messages[1].Content
}

const (
	englishSummarySystem = `You are a financial analyst assistant specializing in summarizing financial documents.
Provide key insights, trends, and metrics from the context provided.`

	englishSummaryUser = `Summarize the following document for financial insights in {{.Words}} words:
### Context:
{{.Context}}

### Financial Summary:`

	arabicSummarySystem = `أنت مساعد مالي متخصص يلخص المستندات المالية.
قدم رؤى رئيسية واتجاهات ومقاييس من النص المعطى.`

	arabicSummaryUser = `لخص المستند التالي لرؤى مالية في {{.Words}} كلمة:
### النص:
{{.Context}}

### الملخص المالي:`

	englishAnswerSystem = `You are a financial assistant answering questions based on the provided document context.
If the answer is not in the context, say 'I don't know'.`

	englishAnswerUser = `Answer the following question based on the context:
### Context:
{{.Context}}

### Question:
{{.Question}}

### Answer:`

	arabicAnswerSystem = `أنت مساعد مالي يجيب على الأسئلة بناءً على النص المتوفر.
إذا لم تكن الإجابة موجودة في النص، فقل 'لا أعرف'.`

	arabicAnswerUser = `أجب على السؤال التالي بناءً على النص:
### النص:
{{.Context}}

### السؤال:
{{.Question}}

### الإجابة:`
)

type pairKey struct {
	arabic bool
	task   domain.TaskKind
}

var pairs = map[pairKey]Pair{
	{false, domain.TaskSummarize}: newPair("en-summarize", englishSummarySystem, englishSummaryUser),
	{true, domain.TaskSummarize}:  newPair("ar-summarize", arabicSummarySystem, arabicSummaryUser),
	{false, domain.TaskAnswer}:    newPair("en-answer", englishAnswerSystem, englishAnswerUser),
	{true, domain.TaskAnswer}:     newPair("ar-answer", arabicAnswerSystem, arabicAnswerUser),
}

func newPair(name, system, user string) Pair {
	return Pair{
		System: system,
		User:   template.Must(template.New(name).Option("missingkey=error").Parse(user)),
	}
}

// Select returns the prompt pair for a language and task. Only Arabic documents
// get the Arabic pair; English, Other and Unknown all use English.
func Select(lang domain.LanguageTag, task domain.TaskKind) (Pair, error) {
	p, ok := pairs[pairKey{arabic: lang == domain.LanguageArabic, task: task}]
	if !ok {
		return Pair{}, domain.ValidationError(fmt.Sprintf("unknown task %q", task), nil)
	}
	return p, nil
}

// Render validates vars for the task and returns the system and user messages.
// The same inputs always render the same messages.
func Render(lang domain.LanguageTag, task domain.TaskKind, vars Vars) (Rendered, error) {
	if err := validate(task, vars); err != nil {
		return Rendered{}, err
	}

	pair, err := Select(lang, task)
	if err != nil {
		return Rendered{}, err
	}

	var user bytes.Buffer
	if err := pair.User.Execute(&user, vars); err != nil {
		return Rendered{}, fmt.Errorf("render %s prompt: %w", task, err)
	}

	return Rendered{
		Language: lang,
		Task:     task,
		Messages: []Message{
			{Role: RoleSystem, Content: pair.System},
			{Role: RoleUser, Content: user.String()},
		},
	}, nil
}

func validate(task domain.TaskKind, vars Vars) error {
	if strings.TrimSpace(vars.Context) == "" {
		return domain.ValidationError("document text is empty; upload a PDF first", nil)
	}

	switch task {
	case domain.TaskSummarize:
		return domain.SummaryRequest{Words: vars.Words}.Validate()
	case domain.TaskAnswer:
		return domain.QuestionRequest{Question: vars.Question}.Validate()
	default:
		return domain.ValidationError(fmt.Sprintf("unknown task %q", task), nil)
	}
}

// QuestionLabel is the caption of the question input for a document language.
func QuestionLabel(lang domain.LanguageTag) string {
	if lang == domain.LanguageArabic {
		return "أدخل سؤالك:"
	}
	return "Enter your question:"
}
