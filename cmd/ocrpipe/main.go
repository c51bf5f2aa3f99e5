// Package main provides the ocrpipe CLI application entry point.
// ocrpipe converts a PDF, DJVU, or image input into extracted text by driving
// external rasterization and recognition tools page by page.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ocrpipe/internal/config"
	"ocrpipe/internal/convert"
	"ocrpipe/internal/logger"
	"ocrpipe/internal/runner"
	"ocrpipe/internal/version"
	"ocrpipe/pkg/ocrtypes"
)

var (
	logLevel   string
	logFile    string
	outputPath string
	pagesSpec  string
	engineName string
	ocrCommand string
	psm        int
	dpi        int
	toStdout   bool

	// warnExit distinguishes an empty-result run for shell callers: the
	// output is still produced but the process exits 2 instead of 0.
	warnExit bool
)

// rootCmd converts one document; conversion is the default and only action.
var rootCmd = &cobra.Command{
	Use:   "ocrpipe <input-file>",
	Short: "ocrpipe - document to text conversion through external OCR tools",
	Long: `ocrpipe converts a document (PDF, DJVU, or a single raster image) into
extracted text by rasterizing each selected page and running an external
recognition engine on it. Plain-text inputs pass through verbatim.

Page selection supports ranges, reversed ranges, and repetition: "1,3,99999-4"
selects page 1, page 3, then the document backwards from its last page down
to page 4.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

// versionCmd reports build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of ocrpipe.`,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.GetFormattedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if warnExit {
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output text file (must end in .txt) [default: output.txt]")
	rootCmd.Flags().StringVarP(&pagesSpec, "pages", "p", "", `Pages to convert, e.g. "1,3,99999-4" [default: all pages]`)
	rootCmd.Flags().StringVar(&engineName, "engine", "", "Recognition engine from the catalog [default: tesseract]")
	rootCmd.Flags().StringVar(&ocrCommand, "ocr-command", "", "Raw recognition command override (wins over --engine)")
	rootCmd.Flags().IntVar(&psm, "psm", 0, "Tesseract page segmentation mode [default: engine default]")
	rootCmd.Flags().IntVar(&dpi, "dpi", 0, "PDF rasterization resolution [default: 300]")
	rootCmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the text to stdout instead of writing a file")

	for _, flag := range []string{"log-level", "log-file"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}
	for _, flag := range []string{"engine", "ocr-command", "psm", "dpi"} {
		if err := viper.BindPFlag(flag, rootCmd.Flags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(versionCmd)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := logger.Configure(logLevel, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	// Suppress cobra's usage dump on conversion failures; they are runtime
	// errors, not flag mistakes.
	cmd.SilenceUsage = true

	settings := config.Load()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := ocrtypes.Options{
		InputPath:  args[0],
		OutputPath: outputPath,
		Pages:      pagesSpec,
		Engine:     settings.Engine,
		Command:    settings.Command,
		PSM:        settings.PSM,
		DPI:        settings.DPI,
	}
	if !toStdout && opts.OutputPath == "" {
		opts.OutputPath = convert.DefaultOutputPath
	}

	logger.Info("Starting conversion", "version", version.GetVersion(), "input", opts.InputPath)

	converter, err := convert.New(runner.NewExecRunner())
	if err != nil {
		return err
	}

	result, err := converter.Convert(ctx, opts)
	if err != nil {
		return err
	}

	if result.Status == ocrtypes.StatusWarning {
		logger.Warn("Conversion produced empty or whitespace-only text; the output is likely not useful")
		warnExit = true
	}
	if toStdout {
		fmt.Print(result.Text)
	} else {
		logger.Info("Text written", "output", result.OutputPath, "pages", result.Pages)
	}

	return nil
}
