// Package ocrtypes provides the shared type definitions for ocrpipe.
// It defines the document formats, conversion options, result statuses, and
// error taxonomy used across the conversion pipeline and by library callers.
package ocrtypes

// Format identifies the kind of input document, derived purely from the file
// extension. It is a closed set: adding or rejecting a format is a one-place
// change in the format package.
type Format int

const (
	// FormatUnsupported marks an input the pipeline refuses to process.
	FormatUnsupported Format = iota
	// FormatText marks an input that is already plain text.
	FormatText
	// FormatImage marks a single raster image input.
	FormatImage
	// FormatDjvu marks a DJVU container document.
	FormatDjvu
	// FormatPdf marks a PDF container document.
	FormatPdf
)

// String returns the lowercase name of the format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatImage:
		return "image"
	case FormatDjvu:
		return "djvu"
	case FormatPdf:
		return "pdf"
	default:
		return "unsupported"
	}
}

// Paged reports whether the format is a container with addressable pages.
// Only paged formats go through page counting and page-spec resolution.
func (f Format) Paged() bool {
	return f == FormatDjvu || f == FormatPdf
}

// Status classifies the outcome of a conversion run. Callers must be able to
// distinguish a clean run, a run that produced suspicious (empty) text, and a
// fatal failure without parsing log output.
type Status int

const (
	// StatusOK means the conversion succeeded and produced non-trivial text.
	StatusOK Status = iota
	// StatusWarning means the conversion ran to completion but the extracted
	// text is empty or whitespace-only; output is still produced.
	StatusWarning
	// StatusError means the conversion failed and no output was produced.
	StatusError
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	default:
		return "error"
	}
}

// Options describes one conversion request. The zero value plus InputPath is a
// valid request: all pages, default engine, text returned to the caller.
type Options struct {
	// InputPath is the document or image to convert.
	InputPath string
	// OutputPath, when set, receives the concatenated text and must end in
	// ".txt". When empty the text is returned in Result.Text instead.
	OutputPath string
	// Pages is the textual page specification (e.g. "1,3,99999-4"). Empty
	// means every page in ascending order.
	Pages string
	// Engine selects a recognition engine from the catalog by name. Empty
	// selects the default engine.
	Engine string
	// Command overrides the recognition invocation entirely. It takes
	// precedence over Engine.
	Command string
	// PSM is the tesseract page segmentation mode. Zero means the engine
	// default.
	PSM int
	// DPI is the rasterization resolution for PDF pages. Zero means 300.
	DPI int
}

// Result is the outcome of one conversion run.
type Result struct {
	// Text holds the concatenated page text when no output path was given.
	Text string
	// Status is StatusOK, StatusWarning, or StatusError.
	Status Status
	// Pages is the number of pages that were processed, in loop order.
	Pages int
	// OutputPath echoes the file the text was written to, if any.
	OutputPath string
}
