package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tordrt/kgschema/internal/diff"
)

const migrationLayout = "2006-01-02-15-04-05"

// MigrationWriter writes diff results to timestamped .sql files
type MigrationWriter struct {
	Folder string
	Now    func() time.Time
}

// NewMigrationWriter creates a writer for folder using the wall clock
func NewMigrationWriter(folder string) *MigrationWriter {
	return &MigrationWriter{Folder: folder, Now: time.Now}
}

// MigrationFileName returns the file name for a migration created at t
func MigrationFileName(t time.Time) string {
	return "sql-migration-" + t.Format(migrationLayout) + ".sql"
}

// Write stores r and returns the file path. An empty result writes nothing
// and returns ""
func (w *MigrationWriter) Write(r *diff.Result) (string, error) {
	if r.IsEmpty() {
		return "", nil
	}

	if err := os.MkdirAll(w.Folder, 0755); err != nil {
		return "", fmt.Errorf("failed to create migrations folder: %w", err)
	}

	path := filepath.Join(w.Folder, MigrationFileName(w.Now()))
	if err := os.WriteFile(path, []byte(SQL(r)), 0644); err != nil {
		return "", fmt.Errorf("failed to write migration file: %w", err)
	}
	return path, nil
}
