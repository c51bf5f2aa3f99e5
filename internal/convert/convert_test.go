package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrpipe/internal/testutils"
	"ocrpipe/pkg/ocrtypes"
)

// writeInput creates a dummy input file with the given name in a fresh
// directory and returns its path. Only the extension matters to the pipeline.
func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// scriptGs makes every gs call write the PNG named by its -sOutputFile arg.
func scriptGs(f *testutils.FakeRunner) {
	f.Script("gs", testutils.Response{OnRun: func(args []string) error {
		for _, a := range args {
			if out, ok := strings.CutPrefix(a, "-sOutputFile="); ok {
				return os.WriteFile(out, []byte("png"), 0600)
			}
		}
		return errors.New("gs invoked without -sOutputFile")
	}})
}

// scriptDdjvu makes every ddjvu call write the TIF named by its last arg.
func scriptDdjvu(f *testutils.FakeRunner) {
	f.Script("ddjvu", testutils.Response{OnRun: func(args []string) error {
		return os.WriteFile(args[len(args)-1], []byte("tif"), 0600)
	}})
}

// scriptTesseract makes every tesseract call write per-page text derived from
// the raster file name, so ordering is observable in the final output.
func scriptTesseract(f *testutils.FakeRunner) {
	f.Script("tesseract", testutils.Response{OnRun: func(args []string) error {
		input, outBase := args[0], args[1]
		page := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(input), "page-"), filepath.Ext(input))
		return os.WriteFile(outBase+".txt", []byte(fmt.Sprintf("text of page %s", page)), 0600)
	}})
}

// scriptTesseractFixed makes every tesseract call write the same text.
func scriptTesseractFixed(f *testutils.FakeRunner, text string) {
	f.Script("tesseract", testutils.Response{OnRun: func(args []string) error {
		return os.WriteFile(args[1]+".txt", []byte(text), 0600)
	}})
}

func newConverter(t *testing.T, fake *testutils.FakeRunner) *Converter {
	t.Helper()
	c, err := New(fake)
	require.NoError(t, err)
	return c
}

func TestConvert_PdfSelectedPagesInOrder(t *testing.T) {
	input := writeInput(t, "book.pdf", "%PDF")

	fake := testutils.NewFakeRunner()
	fake.ScriptStdout("mdls", "3\n")
	scriptGs(fake)
	scriptTesseract(fake)

	c := newConverter(t, fake)
	result, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath: input,
		Pages:     "1,3",
	})
	require.NoError(t, err)

	want := "text of page 1\ntext of page 3"
	assert.Equal(t, want, result.Text, testutils.TextDiff(want, result.Text))
	assert.Equal(t, ocrtypes.StatusOK, result.Status)
	assert.Equal(t, 2, result.Pages)

	// One gs and one tesseract invocation per selected page, nothing more.
	assert.Len(t, fake.CallsTo("gs"), 2)
	assert.Len(t, fake.CallsTo("tesseract"), 2)
}

func TestConvert_ReversedSpecCollapsesAndCountsDown(t *testing.T) {
	input := writeInput(t, "book.pdf", "%PDF")

	fake := testutils.NewFakeRunner()
	fake.ScriptStdout("mdls", "5\n")
	scriptGs(fake)
	scriptTesseract(fake)

	c := newConverter(t, fake)
	result, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath: input,
		Pages:     "99999-3",
	})
	require.NoError(t, err)

	want := "text of page 5\ntext of page 4\ntext of page 3"
	assert.Equal(t, want, result.Text, testutils.TextDiff(want, result.Text))
}

func TestConvert_EmptySpecSelectsAllPages(t *testing.T) {
	input := writeInput(t, "scan.djvu", "AT&T")

	fake := testutils.NewFakeRunner()
	fake.ScriptStdout("djvused", "2\n")
	scriptDdjvu(fake)
	scriptTesseract(fake)

	c := newConverter(t, fake)
	result, err := c.Convert(context.Background(), ocrtypes.Options{InputPath: input})
	require.NoError(t, err)

	assert.Equal(t, "text of page 1\ntext of page 2", result.Text)
	assert.Equal(t, 2, result.Pages)
}

func TestConvert_RepeatedConversionIsByteIdentical(t *testing.T) {
	input := writeInput(t, "book.pdf", "%PDF")

	fake := testutils.NewFakeRunner()
	fake.ScriptStdout("mdls", "4\n")
	scriptGs(fake)
	scriptTesseract(fake)

	c := newConverter(t, fake)
	opts := ocrtypes.Options{InputPath: input, Pages: "2,2,4-1"}

	first, err := c.Convert(context.Background(), opts)
	require.NoError(t, err)

	fake.ScriptStdout("mdls", "4\n")
	second, err := c.Convert(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
}

func TestConvert_TextInputShortCircuits(t *testing.T) {
	const contents = "already plain text\nwith two lines\n"
	input := writeInput(t, "notes.txt", contents)

	fake := testutils.NewFakeRunner()
	c := newConverter(t, fake)

	result, err := c.Convert(context.Background(), ocrtypes.Options{InputPath: input})
	require.NoError(t, err)

	assert.Equal(t, contents, result.Text)
	assert.Equal(t, ocrtypes.StatusOK, result.Status)
	assert.Empty(t, fake.Calls(), "text input must trigger zero external tool invocations")
}

func TestConvert_ImageInputIgnoresPageSpec(t *testing.T) {
	input := writeInput(t, "photo.png", "png")

	run := func(pagesSpec string) ocrtypes.Result {
		fake := testutils.NewFakeRunner()
		scriptTesseractFixed(fake, "image text")

		c := newConverter(t, fake)
		result, err := c.Convert(context.Background(), ocrtypes.Options{
			InputPath: input,
			Pages:     pagesSpec,
		})
		require.NoError(t, err)

		// Direct recognition only: no page counting, no rasterization.
		assert.Empty(t, fake.CallsTo("mdls"))
		assert.Empty(t, fake.CallsTo("pdfinfo"))
		assert.Empty(t, fake.CallsTo("gs"))
		require.Len(t, fake.CallsTo("tesseract"), 1)
		assert.Equal(t, input, fake.CallsTo("tesseract")[0].Args[0])

		return result
	}

	withSpec := run("1-999")
	withoutSpec := run("")
	assert.Equal(t, withoutSpec.Text, withSpec.Text)
	assert.Equal(t, 1, withSpec.Pages)
}

func TestConvert_UnsupportedFormat(t *testing.T) {
	input := writeInput(t, "report.docx", "zip")
	output := filepath.Join(t.TempDir(), "out.txt")

	fake := testutils.NewFakeRunner()
	c := newConverter(t, fake)

	result, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath:  input,
		OutputPath: output,
	})
	assert.ErrorIs(t, err, ocrtypes.ErrUnsupportedFormat)
	assert.Equal(t, ocrtypes.StatusError, result.Status)
	assert.Empty(t, fake.Calls())
	assert.NoFileExists(t, output)
}

func TestConvert_PageCountFailureIsFatal(t *testing.T) {
	input := writeInput(t, "book.pdf", "%PDF")

	fake := testutils.NewFakeRunner()
	fake.MarkMissing("mdls")
	fake.ScriptExit("pdfinfo", 1, "broken")

	c := newConverter(t, fake)
	_, err := c.Convert(context.Background(), ocrtypes.Options{InputPath: input})
	assert.ErrorIs(t, err, ocrtypes.ErrPageCountUnavailable)
	assert.Empty(t, fake.CallsTo("gs"), "no rasterization without a page count")
}

func TestConvert_InvalidPageSpecIsFatal(t *testing.T) {
	input := writeInput(t, "book.pdf", "%PDF")

	fake := testutils.NewFakeRunner()
	fake.ScriptStdout("mdls", "10\n")

	c := newConverter(t, fake)
	_, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath: input,
		Pages:     "0-5",
	})
	assert.ErrorIs(t, err, ocrtypes.ErrInvalidPageSpec)
}

func TestConvert_PageFailureAbortsWholeJob(t *testing.T) {
	input := writeInput(t, "book.pdf", "%PDF")
	output := filepath.Join(t.TempDir(), "out.txt")

	fake := testutils.NewFakeRunner()
	fake.ScriptStdout("mdls", "3\n")
	// First page rasterizes fine, second page fails.
	fake.Script("gs", testutils.Response{OnRun: func(args []string) error {
		for _, a := range args {
			if out, ok := strings.CutPrefix(a, "-sOutputFile="); ok {
				return os.WriteFile(out, []byte("png"), 0600)
			}
		}
		return nil
	}})
	fake.ScriptExit("gs", 1, "Unrecoverable error")
	scriptTesseract(fake)

	c := newConverter(t, fake)
	result, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath:  input,
		OutputPath: output,
	})

	assert.ErrorIs(t, err, ocrtypes.ErrRasterizationFailed)
	assert.Equal(t, ocrtypes.StatusError, result.Status)
	assert.NoFileExists(t, output, "fatal errors must not produce an output file")
	assert.Len(t, fake.CallsTo("tesseract"), 1, "pages after the failure must not be processed")
}

func TestConvert_MissingEngineFailsBeforeRasterizing(t *testing.T) {
	input := writeInput(t, "book.pdf", "%PDF")

	fake := testutils.NewFakeRunner()
	fake.MarkMissing("tesseract")
	fake.ScriptStdout("mdls", "100\n")

	c := newConverter(t, fake)
	_, err := c.Convert(context.Background(), ocrtypes.Options{InputPath: input})

	assert.ErrorIs(t, err, ocrtypes.ErrRecognitionFailed)
	assert.Empty(t, fake.CallsTo("gs"))
}

func TestConvert_WhitespaceResultIsWarning(t *testing.T) {
	input := writeInput(t, "book.pdf", "%PDF")
	output := filepath.Join(t.TempDir(), "out.txt")

	fake := testutils.NewFakeRunner()
	fake.ScriptStdout("mdls", "2\n")
	scriptGs(fake)
	scriptTesseractFixed(fake, "   \n")

	c := newConverter(t, fake)
	result, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath:  input,
		OutputPath: output,
	})
	require.NoError(t, err)

	assert.Equal(t, ocrtypes.StatusWarning, result.Status)
	require.FileExists(t, output, "warning runs still produce output")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "   \n\n   \n", string(data))
}

func TestConvert_OutputFileWritten(t *testing.T) {
	input := writeInput(t, "book.pdf", "%PDF")
	output := filepath.Join(t.TempDir(), "book.txt")

	fake := testutils.NewFakeRunner()
	fake.ScriptStdout("mdls", "1\n")
	scriptGs(fake)
	scriptTesseract(fake)

	c := newConverter(t, fake)
	result, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath:  input,
		OutputPath: output,
	})
	require.NoError(t, err)

	assert.Equal(t, output, result.OutputPath)
	assert.Empty(t, result.Text, "file mode does not also return the text")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "text of page 1", string(data))
}

func TestConvert_OutputPathMustBeTxt(t *testing.T) {
	input := writeInput(t, "notes.txt", "text")

	c := newConverter(t, testutils.NewFakeRunner())
	_, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath:  input,
		OutputPath: "out.pdf",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), ".txt")
}

func TestConvert_MissingInputFile(t *testing.T) {
	c := newConverter(t, testutils.NewFakeRunner())
	_, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath: filepath.Join(t.TempDir(), "nope.pdf"),
	})
	assert.Error(t, err)
}

func TestConvert_UnknownEngineName(t *testing.T) {
	input := writeInput(t, "page.png", "png")

	c := newConverter(t, testutils.NewFakeRunner())
	_, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath: input,
		Engine:    "no-such-engine",
	})
	assert.Error(t, err)
}

func TestConvert_CustomCommandOverride(t *testing.T) {
	input := writeInput(t, "page.png", "png")

	fake := testutils.NewFakeRunner()
	fake.Script("myocr", testutils.Response{OnRun: func(args []string) error {
		return os.WriteFile(args[len(args)-1]+".txt", []byte("custom engine text"), 0600)
	}})

	c := newConverter(t, fake)
	result, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath: input,
		Command:   "myocr -l deu",
	})
	require.NoError(t, err)

	assert.Equal(t, "custom engine text", result.Text)
	calls := fake.CallsTo("myocr")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-l", "deu"}, calls[0].Args[:2])
	assert.Empty(t, fake.CallsTo("tesseract"))
}

func TestConvert_AllPagesDroppedYieldsWarning(t *testing.T) {
	input := writeInput(t, "book.pdf", "%PDF")

	fake := testutils.NewFakeRunner()
	fake.ScriptStdout("mdls", "5\n")

	c := newConverter(t, fake)
	result, err := c.Convert(context.Background(), ocrtypes.Options{
		InputPath: input,
		Pages:     "99", // single page beyond the document, dropped silently
	})
	require.NoError(t, err)

	assert.Equal(t, ocrtypes.StatusWarning, result.Status)
	assert.Equal(t, 0, result.Pages)
	assert.Empty(t, result.Text)
	assert.Empty(t, fake.CallsTo("gs"))
}
