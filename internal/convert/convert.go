// Package convert implements the conversion orchestrator: the pipeline
// controller that turns one input document into extracted text.
//
// One conversion is a short state machine: resolve the format, short-circuit
// text inputs, count pages for container formats, resolve the page
// specification, then rasterize and recognize each selected page in the exact
// order requested, concatenate, and validate the result. Any per-page failure
// aborts the whole job; there is no partial-success mode. Empty extracted
// text is a warning, not a failure.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"ocrpipe/internal/engine"
	"ocrpipe/internal/format"
	"ocrpipe/internal/logger"
	"ocrpipe/internal/pages"
	"ocrpipe/internal/pagespec"
	"ocrpipe/internal/raster"
	"ocrpipe/internal/recognize"
	"ocrpipe/internal/runner"
	"ocrpipe/pkg/ocrtypes"
)

// DefaultOutputPath is where the text lands when the caller asks for file
// output without naming a path.
const DefaultOutputPath = "output.txt"

// Converter drives conversion jobs. It holds no per-job state; each Convert
// call builds a self-contained job, so a Converter is safe to reuse.
type Converter struct {
	runner  runner.Runner
	catalog *engine.Catalog
	logger  *log.Logger
}

// New creates a Converter that invokes external tools through run.
func New(run runner.Runner) (*Converter, error) {
	catalog, err := engine.LoadCatalog()
	if err != nil {
		return nil, err
	}
	return &Converter{
		runner:  run,
		catalog: catalog,
		logger:  logger.NewStyledLogger("Convert"),
	}, nil
}

// job is the working state of one conversion invocation. It is created at the
// start of Convert and discarded at the end; nothing persists across calls.
type job struct {
	id         string
	opts       ocrtypes.Options
	format     ocrtypes.Format
	pageCount  int
	pageOrder  []int
	recognizer *recognize.Recognizer
	rasterizer *raster.Rasterizer
}

// Convert runs one conversion. On success or warning the text is written to
// opts.OutputPath (when set) or returned in Result.Text. On a fatal error no
// output file is created and an existing one is left untouched.
func (c *Converter) Convert(ctx context.Context, opts ocrtypes.Options) (ocrtypes.Result, error) {
	j := &job{
		id:     uuid.New().String(),
		opts:   opts,
		format: format.Detect(opts.InputPath),
	}

	c.logger.Debug("Starting conversion", "job", j.id, "input", opts.InputPath, "format", j.format)

	if err := c.validate(j); err != nil {
		return ocrtypes.Result{Status: ocrtypes.StatusError}, err
	}

	// Text inputs short-circuit the whole pipeline: the file contents are the
	// result, with zero external tool invocations.
	if j.format == ocrtypes.FormatText {
		text, err := os.ReadFile(opts.InputPath)
		if err != nil {
			return ocrtypes.Result{Status: ocrtypes.StatusError},
				fmt.Errorf("failed to read text input: %w", err)
		}
		c.logger.Debug("Input is already text, skipping recognition", "job", j.id)
		return c.finish(j, string(text), 0)
	}

	if err := c.prepareRecognizer(j); err != nil {
		return ocrtypes.Result{Status: ocrtypes.StatusError}, err
	}

	var (
		text  string
		count int
		err   error
	)
	if j.format == ocrtypes.FormatImage {
		text, count, err = c.convertImage(ctx, j)
	} else {
		text, count, err = c.convertPaged(ctx, j)
	}
	if err != nil {
		c.logger.Error("Conversion failed", "job", j.id, "error", err)
		return ocrtypes.Result{Status: ocrtypes.StatusError}, err
	}

	return c.finish(j, text, count)
}

// validate checks the job's format and output path before any work happens.
func (c *Converter) validate(j *job) error {
	if j.format == ocrtypes.FormatUnsupported {
		return fmt.Errorf("%w: %s", ocrtypes.ErrUnsupportedFormat, j.opts.InputPath)
	}

	if _, err := os.Stat(j.opts.InputPath); err != nil {
		return fmt.Errorf("cannot access input file: %w", err)
	}

	if out := j.opts.OutputPath; out != "" {
		if filepath.Ext(out) != ".txt" {
			return fmt.Errorf("output file must have a .txt extension, got %q", out)
		}
		if _, err := os.Stat(out); err == nil {
			c.logger.Warn("Output file already exists and will be overwritten", "job", j.id, "output", out)
		}
	}

	return nil
}

// prepareRecognizer resolves the recognition engine for the job and fails
// before any rasterization work if its binary is absent.
func (c *Converter) prepareRecognizer(j *job) error {
	var (
		e   engine.Engine
		err error
	)
	switch {
	case j.opts.Command != "":
		e, err = engine.FromCommand(j.opts.Command)
	case j.opts.Engine != "":
		e, err = c.catalog.Lookup(j.opts.Engine)
	default:
		e = c.catalog.Default()
	}
	if err != nil {
		return err
	}

	j.recognizer = recognize.NewRecognizer(c.runner, e, j.opts.PSM)
	j.rasterizer = raster.NewRasterizer(c.runner, j.opts.DPI)

	if !j.recognizer.Available() {
		return fmt.Errorf("%w: engine binary %q not found on PATH", ocrtypes.ErrRecognitionFailed, e.Binary)
	}

	return nil
}

// convertImage recognizes a raster input directly; page counting and the
// page specification are skipped entirely.
func (c *Converter) convertImage(ctx context.Context, j *job) (string, int, error) {
	if j.opts.Pages != "" {
		c.logger.Debug("Ignoring page specification for an image input", "job", j.id, "pages", j.opts.Pages)
	}

	text, err := c.withScratchDir(j, func(dir string) (string, error) {
		return j.recognizer.Recognize(ctx, j.opts.InputPath, dir)
	})
	if err != nil {
		return "", 0, err
	}
	return text, 1, nil
}

// convertPaged runs the full container pipeline: page count, page-spec
// resolution, then rasterize and recognize each selected page in order.
func (c *Converter) convertPaged(ctx context.Context, j *job) (string, int, error) {
	counter := pages.NewCounter(c.runner)
	count, err := counter.Count(ctx, j.opts.InputPath, j.format)
	if err != nil {
		return "", 0, err
	}
	j.pageCount = count
	c.logger.Debug("Resolved page count", "job", j.id, "pages", count)

	spec, err := pagespec.Parse(j.opts.Pages)
	if err != nil {
		return "", 0, err
	}
	j.pageOrder = spec.Resolve(count)
	c.logger.Debug("Resolved page selection", "job", j.id, "spec", spec.String(), "selected", j.pageOrder)

	texts := make([]string, 0, len(j.pageOrder))
	for i, page := range j.pageOrder {
		c.logger.Debug("Processing page", "job", j.id, "page", page, "position", i+1, "of", len(j.pageOrder))

		text, err := c.convertPage(ctx, j, page)
		if err != nil {
			return "", 0, err
		}
		texts = append(texts, text)
	}

	return strings.Join(texts, "\n"), len(j.pageOrder), nil
}

// convertPage rasterizes and recognizes one page inside a scoped scratch
// directory that is removed on every exit path.
func (c *Converter) convertPage(ctx context.Context, j *job, page int) (string, error) {
	return c.withScratchDir(j, func(dir string) (string, error) {
		rasterPath, err := j.rasterizer.RasterizePage(ctx, j.opts.InputPath, j.format, page, dir)
		if err != nil {
			return "", err
		}
		return j.recognizer.Recognize(ctx, rasterPath, dir)
	})
}

// withScratchDir runs fn with a fresh temporary directory and guarantees its
// removal. The scratch directory's lifetime is exactly one page's processing,
// which bounds disk usage over multi-hundred-page documents.
func (c *Converter) withScratchDir(j *job, fn func(dir string) (string, error)) (string, error) {
	dir, err := os.MkdirTemp("", "ocrpipe-*")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if rerr := os.RemoveAll(dir); rerr != nil {
			c.logger.Error("Failed to remove scratch directory", "job", j.id, "dir", dir, "error", rerr)
		}
	}()

	return fn(dir)
}

// finish validates the concatenated text, writes or returns it, and decides
// the final status. Empty or whitespace-only text downgrades the run to a
// warning but still produces output: blank pages legitimately recognize to
// nothing.
func (c *Converter) finish(j *job, text string, pageN int) (ocrtypes.Result, error) {
	result := ocrtypes.Result{
		Status: ocrtypes.StatusOK,
		Pages:  pageN,
	}

	if !containsAlnum(text) {
		c.logger.Warn("Extracted text is empty or whitespace-only; recognition likely failed", "job", j.id)
		result.Status = ocrtypes.StatusWarning
	}

	if j.opts.OutputPath != "" {
		if err := os.WriteFile(j.opts.OutputPath, []byte(text), 0644); err != nil {
			return ocrtypes.Result{Status: ocrtypes.StatusError},
				fmt.Errorf("failed to write output file: %w", err)
		}
		result.OutputPath = j.opts.OutputPath
		c.logger.Info("Conversion finished", "job", j.id, "status", result.Status, "output", j.opts.OutputPath)
		return result, nil
	}

	result.Text = text
	c.logger.Info("Conversion finished", "job", j.id, "status", result.Status)
	return result, nil
}

// containsAlnum reports whether the text holds at least one letter or digit.
// This is the "non-trivial text" check behind the EmptyResult warning.
func containsAlnum(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
