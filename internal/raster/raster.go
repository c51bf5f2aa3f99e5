// Package raster converts one page of a container document into a standalone
// raster image by invoking the format's external rasterizer.
//
// PDF pages go through ghostscript and come back as PNG; DJVU pages go
// through ddjvu and come back as TIF. Page indices are 1-based, matching the
// resolved page specification directly.
package raster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"ocrpipe/internal/logger"
	"ocrpipe/internal/runner"
	"ocrpipe/pkg/ocrtypes"
)

// DefaultDPI is the ghostscript rasterization resolution used when the caller
// does not override it. 300dpi is the conventional floor for OCR input.
const DefaultDPI = 300

// Rasterizer produces single-page raster images through external tools.
type Rasterizer struct {
	runner runner.Runner
	dpi    int
	logger *log.Logger
}

// NewRasterizer creates a Rasterizer that invokes tools through run. A dpi of
// zero selects DefaultDPI.
func NewRasterizer(run runner.Runner, dpi int) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{
		runner: run,
		dpi:    dpi,
		logger: logger.NewStyledLogger("Raster"),
	}
}

// RasterizePage renders the given 1-based page of the document into dir and
// returns the path of the produced image. The caller owns dir and its
// cleanup; the rasterizer only writes into it.
func (r *Rasterizer) RasterizePage(ctx context.Context, path string, f ocrtypes.Format, page int, dir string) (string, error) {
	switch f {
	case ocrtypes.FormatPdf:
		return r.rasterizePdf(ctx, path, page, dir)
	case ocrtypes.FormatDjvu:
		return r.rasterizeDjvu(ctx, path, page, dir)
	default:
		return "", fmt.Errorf("%w: format %s has no rasterizer", ocrtypes.ErrRasterizationFailed, f)
	}
}

// rasterizePdf renders a single PDF page to PNG with ghostscript, constrained
// to the target page via -dFirstPage/-dLastPage.
func (r *Rasterizer) rasterizePdf(ctx context.Context, path string, page int, dir string) (string, error) {
	out := filepath.Join(dir, fmt.Sprintf("page-%d.png", page))

	args := []string{
		"-dSAFER",
		"-q",
		fmt.Sprintf("-r%d", r.dpi),
		fmt.Sprintf("-dFirstPage=%d", page),
		fmt.Sprintf("-dLastPage=%d", page),
		"-dNOPAUSE",
		"-dINTERPOLATE",
		"-sDEVICE=png16m",
		fmt.Sprintf("-sOutputFile=%s", out),
		path,
		"-c", "quit",
	}

	result, err := r.runner.Run(ctx, "gs", args...)
	if err != nil {
		return "", fmt.Errorf("%w: gs: %v", ocrtypes.ErrRasterizationFailed, err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("%w: gs exited %d on page %d: %s",
			ocrtypes.ErrRasterizationFailed, result.ExitCode, page, strings.TrimSpace(result.Stderr))
	}

	return verifyOutput(out, page)
}

// rasterizeDjvu renders a single DJVU page to TIF with ddjvu.
func (r *Rasterizer) rasterizeDjvu(ctx context.Context, path string, page int, dir string) (string, error) {
	out := filepath.Join(dir, fmt.Sprintf("page-%d.tif", page))

	args := []string{
		fmt.Sprintf("-page=%d", page),
		"-format=tif",
		path,
		out,
	}

	result, err := r.runner.Run(ctx, "ddjvu", args...)
	if err != nil {
		return "", fmt.Errorf("%w: ddjvu: %v", ocrtypes.ErrRasterizationFailed, err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("%w: ddjvu exited %d on page %d: %s",
			ocrtypes.ErrRasterizationFailed, result.ExitCode, page, strings.TrimSpace(result.Stderr))
	}

	return verifyOutput(out, page)
}

// verifyOutput confirms the tool actually wrote the raster file. Some tools
// exit zero without producing output for out-of-range pages.
func verifyOutput(out string, page int) (string, error) {
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("%w: no raster produced for page %d: %v", ocrtypes.ErrRasterizationFailed, page, err)
	}
	return out, nil
}
