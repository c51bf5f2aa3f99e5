// Package ocr is the public library entry point for ocrpipe.
// It wraps the conversion pipeline for embedding: callers get the extracted
// text back directly instead of a written file unless they ask for one.
package ocr

import (
	"context"

	"ocrpipe/internal/convert"
	"ocrpipe/internal/runner"
	"ocrpipe/pkg/ocrtypes"
)

// Client runs document conversions. A Client holds no per-job state and is
// safe to reuse across calls; each conversion is self-contained.
type Client struct {
	converter *convert.Converter
}

// NewClient creates a Client that drives the real external tools.
func NewClient() (*Client, error) {
	converter, err := convert.New(runner.NewExecRunner())
	if err != nil {
		return nil, err
	}
	return &Client{converter: converter}, nil
}

// Convert runs one conversion. With an empty opts.OutputPath the extracted
// text is returned in Result.Text; otherwise it is written to the file and
// Result.Text stays empty. Result.Status distinguishes a clean run from one
// whose text is empty or whitespace-only.
func (c *Client) Convert(ctx context.Context, opts ocrtypes.Options) (ocrtypes.Result, error) {
	return c.converter.Convert(ctx, opts)
}

// ConvertFile is a convenience wrapper that converts input and returns the
// extracted text, using all pages and the default engine.
func (c *Client) ConvertFile(ctx context.Context, input string) (string, error) {
	result, err := c.converter.Convert(ctx, ocrtypes.Options{InputPath: input})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}
