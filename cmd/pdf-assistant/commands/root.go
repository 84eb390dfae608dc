// Package commands implements the pdf-assistant CLI.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf-assistant/cmd/pdf-assistant/ui"
	"github.com/spherical/pdf-assistant/internal/config"
	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/observability"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pdf-assistant",
	Short: "Summarize and question PDF documents with a local language model",
	Long: `pdf-assistant extracts the text of a PDF, detects whether it is English or Arabic,
and asks a locally hosted language model (Ollama by default) for a word-bounded
financial summary or for answers grounded in the document.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.InitUI(noColor, verbose)

		path := cfgFile
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}

		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return domain.ConfigError(err.Error(), err)
		}

		level := cfg.Observability.LogLevel
		if verbose {
			level = "debug"
		}
		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      cfg.Observability.LogFormat,
			ServiceName: cfg.Observability.ServiceName,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command and reports any error to the user.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		ui.ErrorBox(errorTitle(err), domain.UserMessage(err))
	}
	return err
}

func errorTitle(err error) string {
	switch domain.TypeOf(err) {
	case domain.ErrorTypeValidation:
		return "Invalid input"
	case domain.ErrorTypeExtraction:
		return "Could not read PDF"
	case domain.ErrorTypeEmptyDocument:
		return "No text found"
	case domain.ErrorTypeInference:
		return "Language model request failed"
	case domain.ErrorTypeConfig:
		return "Configuration error"
	default:
		return "Error"
	}
}
