package ocrtypes

import "errors"

// Conversion failure taxonomy. Layers wrap these sentinels with call-site
// context via fmt.Errorf("...: %w", err); callers match with errors.Is.
var (
	// ErrUnsupportedFormat is returned for inputs whose extension maps to no
	// known format. Fatal, no output is produced.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrInvalidPageSpec is returned when the page specification grammar is
	// violated: a token that is not an integer or a dash-separated pair, or
	// any integer that is not positive.
	ErrInvalidPageSpec = errors.New("invalid page specification")

	// ErrPageCountUnavailable is returned when every page-count introspection
	// tool for the document's format failed or is absent.
	ErrPageCountUnavailable = errors.New("page count unavailable")

	// ErrRasterizationFailed is returned when the external rasterizer exited
	// non-zero or did not produce the expected output file.
	ErrRasterizationFailed = errors.New("page rasterization failed")

	// ErrRecognitionFailed is returned when the recognition engine exited
	// non-zero or its output file could not be read back.
	ErrRecognitionFailed = errors.New("text recognition failed")
)
