package commands

import (
	"github.com/spf13/cobra"

	"github.com/spherical/pdf-assistant/cmd/pdf-assistant/ui"
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Print the extracted text and detected language of a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
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

	ui.Section("Extracted Text")
	ui.Text(doc.Text.Content)
	return nil
}
