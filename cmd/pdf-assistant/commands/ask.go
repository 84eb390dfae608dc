package commands

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-assistant/cmd/pdf-assistant/ui"
	"github.com/spherical/pdf-assistant/internal/assistant"
	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/prompt"
)

var askQuestion string

var askCmd = &cobra.Command{
	Use:   "ask <pdf>",
	Short: "Ask questions about a PDF",
	Long: `Ask a single question with --question, or omit it to enter an interactive
loop. Type 'exit' or 'quit' to leave the loop.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask (interactive mode if omitted)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("question") {
		if err := (domain.QuestionRequest{Question: askQuestion}).Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()

	a, err := newAssistant()
	if err != nil {
		return err
	}

	doc, err := ingest(ctx, a, args[0])
	if err != nil {
		return err
	}

	if askQuestion != "" {
		ui.Section("Answer")
		return generate(ctx, a, doc, domain.TaskAnswer, prompt.Vars{Question: askQuestion})
	}

	return askLoop(ctx, a, doc)
}

// askLoop answers questions until the user quits or input ends. Errors are
// reported per question and never end the loop.
func askLoop(ctx context.Context, a *assistant.Assistant, doc *domain.Document) error {
	label := prompt.QuestionLabel(doc.Language)
	ui.Info("Type 'exit' or 'quit' to finish.")

	for {
		question, err := ui.Prompt(label)
		if errors.Is(err, io.EOF) {
			ui.Newline()
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(question) {
		case "exit", "quit":
			return nil
		}

		if err := (domain.QuestionRequest{Question: question}).Validate(); err != nil {
			ui.Error("%s", domain.UserMessage(err))
			continue
		}

		ui.Section("Answer")
		if err := generate(ctx, a, doc, domain.TaskAnswer, prompt.Vars{Question: question}); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ui.Error("%s", domain.UserMessage(err))
		}
		ui.Newline()
	}
}
