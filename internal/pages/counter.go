// Package pages determines the total page count of a container document by
// invoking format-specific introspection tools.
//
// For PDF the metadata tool mdls is tried first (it is cheap where available)
// and pdfinfo is the fallback; for DJVU djvused is the only method. Every tool
// failure is caught and escalated to the next fallback, or to
// ocrtypes.ErrPageCountUnavailable when none remain.
package pages

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"ocrpipe/internal/logger"
	"ocrpipe/internal/runner"
	"ocrpipe/pkg/ocrtypes"
)

// pdfinfoPages matches the "Pages: N" line of pdfinfo output.
var pdfinfoPages = regexp.MustCompile(`(?m)^Pages:\s+([0-9]+)`)

// Counter resolves document page counts through external tools.
type Counter struct {
	runner runner.Runner
	logger *log.Logger
}

// NewCounter creates a Counter that invokes tools through run.
func NewCounter(run runner.Runner) *Counter {
	return &Counter{
		runner: run,
		logger: logger.NewStyledLogger("Counter"),
	}
}

// Count returns the number of pages in the document at path. It is computed
// fresh on every call; nothing is cached across conversion jobs.
func (c *Counter) Count(ctx context.Context, path string, f ocrtypes.Format) (int, error) {
	switch f {
	case ocrtypes.FormatPdf:
		return c.countPdf(ctx, path)
	case ocrtypes.FormatDjvu:
		return c.countDjvu(ctx, path)
	default:
		return 0, fmt.Errorf("%w: format %s has no page count", ocrtypes.ErrPageCountUnavailable, f)
	}
}

// countPdf tries mdls first and falls back to pdfinfo. mdls prints "(null)"
// for files without the page-count metadata key, which also triggers the
// fallback.
func (c *Counter) countPdf(ctx context.Context, path string) (int, error) {
	if c.runner.LookPath("mdls") {
		result, err := c.runner.Run(ctx, "mdls", "-raw", "-name", "kMDItemNumberOfPages", path)
		if err == nil && result.ExitCode == 0 && !strings.Contains(result.Stdout, "(null)") {
			if n, perr := parseCount(result.Stdout); perr == nil {
				return n, nil
			}
		}
		c.logger.Debug("mdls could not resolve the page count, falling back to pdfinfo", "path", path)
	}

	result, err := c.runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		return 0, fmt.Errorf("%w: pdfinfo: %v", ocrtypes.ErrPageCountUnavailable, err)
	}
	if result.ExitCode != 0 {
		return 0, fmt.Errorf("%w: pdfinfo exited %d: %s",
			ocrtypes.ErrPageCountUnavailable, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	m := pdfinfoPages.FindStringSubmatch(result.Stdout)
	if m == nil {
		return 0, fmt.Errorf("%w: no Pages line in pdfinfo output", ocrtypes.ErrPageCountUnavailable)
	}
	return parseCountError(m[1])
}

// countDjvu asks djvused for the page count; there is no fallback tool.
func (c *Counter) countDjvu(ctx context.Context, path string) (int, error) {
	result, err := c.runner.Run(ctx, "djvused", "-e", "n", path)
	if err != nil {
		return 0, fmt.Errorf("%w: djvused: %v", ocrtypes.ErrPageCountUnavailable, err)
	}
	if result.ExitCode != 0 {
		return 0, fmt.Errorf("%w: djvused exited %d: %s",
			ocrtypes.ErrPageCountUnavailable, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return parseCountError(result.Stdout)
}

// parseCount parses a bare integer page count from tool stdout.
func parseCount(stdout string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(stdout))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("non-positive page count %d", n)
	}
	return n, nil
}

// parseCountError is parseCount with the failure classed as unavailable.
func parseCountError(stdout string) (int, error) {
	n, err := parseCount(stdout)
	if err != nil {
		return 0, fmt.Errorf("%w: unparsable page count %q", ocrtypes.ErrPageCountUnavailable, strings.TrimSpace(stdout))
	}
	return n, nil
}
