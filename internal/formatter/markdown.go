package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/kgschema/internal/diff"
)

// MarkdownFormatter writes a reviewable migration plan
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes one section per non-empty bucket, in execution order
func (f *MarkdownFormatter) Format(r *diff.Result) error {
	_, _ = fmt.Fprintln(f.writer, "# Migration Plan")
	_, _ = fmt.Fprintln(f.writer)

	if r.IsEmpty() {
		_, err := fmt.Fprintln(f.writer, "No changes detected.")
		return err
	}

	_, _ = fmt.Fprintf(f.writer, "%d statement(s)\n\n", r.Len())

	for _, b := range r.Buckets() {
		if len(b.Statements) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(f.writer, "## %s (%d)\n\n", b.Name, len(b.Statements))
		_, _ = fmt.Fprintln(f.writer, "```sql")
		for _, stmt := range b.Statements {
			_, _ = fmt.Fprintln(f.writer, stmt)
		}
		_, _ = fmt.Fprintln(f.writer, "```")
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}
