package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/kgschema/internal/knowledge"
	"github.com/tordrt/kgschema/internal/schema"
)

// MultiFileFormatter writes generated knowledge to a directory: one JSON-LD
// file per table plus an overview
type MultiFileFormatter struct {
	OutputDir string
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir string) *MultiFileFormatter {
	return &MultiFileFormatter{OutputDir: outputDir}
}

// Format writes docs, generated from s, and returns the written paths
func (f *MultiFileFormatter) Format(s *schema.Schema, docs []knowledge.Document) ([]string, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, doc := range docs {
		path := filepath.Join(f.OutputDir, doc.FileName)
		if err := os.WriteFile(path, doc.Data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write knowledge file for %s: %w", doc.Table, err)
		}
		written = append(written, path)
	}

	path, err := f.writeOverview(s)
	if err != nil {
		return nil, fmt.Errorf("failed to write overview: %w", err)
	}
	return append(written, path), nil
}

// writeOverview lists the tables alphabetically with the tables they reference
func (f *MultiFileFormatter) writeOverview(s *schema.Schema) (string, error) {
	filename := filepath.Join(f.OutputDir, "_overview.md")

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintf(file, "# Knowledge Overview\n\n")
	_, _ = fmt.Fprintf(file, "Each table has a corresponding file: `<table_name>.jsonld`\n\n")
	_, _ = fmt.Fprintf(file, "## Tables\n\n")

	// Sort tables alphabetically
	sortedTables := make([]*schema.Table, len(s.Tables))
	copy(sortedTables, s.Tables)
	sort.Slice(sortedTables, func(i, j int) bool {
		return sortedTables[i].Name < sortedTables[j].Name
	})

	for _, table := range sortedTables {
		_, _ = fmt.Fprintf(file, "- **%s**", table.Name)

		// Show outgoing relationships
		var targets []string
		for _, col := range table.Columns() {
			if col.Constraint != nil {
				targets = append(targets, col.Constraint.ReferencedTable)
			}
		}
		if len(targets) > 0 {
			_, _ = fmt.Fprintf(file, " (references: %s)", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintf(file, "\n")
	}

	return filename, nil
}
