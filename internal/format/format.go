// Package format resolves the document format of an input file.
// Resolution is purely extension-based; file contents are never inspected.
package format

import (
	"path/filepath"
	"strings"

	"ocrpipe/pkg/ocrtypes"
)

// extensions is the closed map from lowercase file extension to format.
// Adding or rejecting a format is a change to this table only.
var extensions = map[string]ocrtypes.Format{
	".txt":  ocrtypes.FormatText,
	".png":  ocrtypes.FormatImage,
	".jpg":  ocrtypes.FormatImage,
	".jpeg": ocrtypes.FormatImage,
	".tif":  ocrtypes.FormatImage,
	".tiff": ocrtypes.FormatImage,
	".bmp":  ocrtypes.FormatImage,
	".gif":  ocrtypes.FormatImage,
	".webp": ocrtypes.FormatImage,
	".pnm":  ocrtypes.FormatImage,
	".djvu": ocrtypes.FormatDjvu,
	".djv":  ocrtypes.FormatDjvu,
	".pdf":  ocrtypes.FormatPdf,
}

// Detect returns the format for the given path. Unknown or missing extensions
// resolve to FormatUnsupported, which is terminal for the pipeline.
func Detect(path string) ocrtypes.Format {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f
	}
	return ocrtypes.FormatUnsupported
}
