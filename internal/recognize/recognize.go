// Package recognize runs the external text-recognition engine on a single
// raster image and returns the extracted text.
//
// The engine's stdout is not the product: the engine writes a text file next
// to the requested output basename and that file is read back as the page
// text. A single failure here is fatal to the page; retries, if any, are the
// orchestrator's decision (the current design performs none).
package recognize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"ocrpipe/internal/engine"
	"ocrpipe/internal/logger"
	"ocrpipe/internal/runner"
	"ocrpipe/pkg/ocrtypes"
)

// Recognizer invokes one recognition engine through the external command
// boundary.
type Recognizer struct {
	runner runner.Runner
	engine engine.Engine
	psm    int
	logger *log.Logger
}

// NewRecognizer creates a Recognizer for the given engine. psm is passed
// through to engines that support it; zero means the engine default.
func NewRecognizer(run runner.Runner, e engine.Engine, psm int) *Recognizer {
	return &Recognizer{
		runner: run,
		engine: e,
		psm:    psm,
		logger: logger.NewStyledLogger("Recognize"),
	}
}

// Engine returns the engine this recognizer drives.
func (r *Recognizer) Engine() engine.Engine {
	return r.engine
}

// Available reports whether the engine's binary resolves on PATH. The
// orchestrator checks this once before the per-page loop so a missing engine
// fails before any rasterization work.
func (r *Recognizer) Available() bool {
	return r.runner.LookPath(r.engine.Binary)
}

// Recognize runs the engine on imagePath, using dir for the engine's output
// file, and returns the recognized text. The caller owns dir and its cleanup.
func (r *Recognizer) Recognize(ctx context.Context, imagePath string, dir string) (string, error) {
	outputBase := filepath.Join(dir, "recognized")
	args := r.engine.BuildArgs(imagePath, outputBase, r.psm)

	result, err := r.runner.Run(ctx, r.engine.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ocrtypes.ErrRecognitionFailed, r.engine.Binary, err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("%w: %s exited %d: %s",
			ocrtypes.ErrRecognitionFailed, r.engine.Binary, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	text, err := os.ReadFile(r.engine.OutputFile(outputBase))
	if err != nil {
		return "", fmt.Errorf("%w: cannot read engine output: %v", ocrtypes.ErrRecognitionFailed, err)
	}

	r.logger.Debug("Recognized image", "image", imagePath, "bytes", len(text))
	return string(text), nil
}
