package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-assistant/cmd/pdf-assistant/ui"
	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/prompt"
)

var summaryWords int

var summarizeCmd = &cobra.Command{
	Use:   "summarize <pdf>",
	Short: "Summarize a PDF in about --words words",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().IntVarP(&summaryWords, "words", "w", domain.DefaultSummaryWords,
		fmt.Sprintf("summary length in words (%d-%d)", domain.MinSummaryWords, domain.MaxSummaryWords))
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	// Reject a bad length before spending time on extraction.
	if err := (domain.SummaryRequest{Words: summaryWords}).Validate(); err != nil {
		return err
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

	ui.Section("Summary")
	return generate(ctx, a, doc, domain.TaskSummarize, prompt.Vars{Words: summaryWords})
}
