package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/kgschema/internal/diff"
)

// Output formats
const (
	FormatSQL      = "sql"
	FormatMarkdown = "markdown"
)

// Formatter renders a diff result
type Formatter interface {
	Format(r *diff.Result) error
}

// New returns the formatter for format writing to w
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatSQL, "":
		return NewTextFormatter(w), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s, %s)", format, FormatSQL, FormatMarkdown)
	}
}

// SQL joins the statements of r in execution order, separated by blank lines
func SQL(r *diff.Result) string {
	return strings.Join(r.Statements(), "\n\n")
}

// TextFormatter writes the statements as plain SQL
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the statements of r, or a notice if there are none
func (f *TextFormatter) Format(r *diff.Result) error {
	if r.IsEmpty() {
		_, err := fmt.Fprintln(f.writer, "-- No changes detected.")
		return err
	}
	_, err := fmt.Fprintln(f.writer, SQL(r))
	return err
}
