package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"single table", "users", []string{"users"}},
		{"multiple tables", "users,posts,comments", []string{"users", "posts", "comments"}},
		{"tables with spaces", " users , posts , comments ", []string{"users", "posts", "comments"}},
		{"empty entries", "users,,posts,", []string{"users", "posts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTableList(tt.input))
		})
	}
}

// writeProject creates a config file whose knowledge is the library fixture.
func writeProject(t *testing.T) string {
	t.Helper()

	merged, err := filepath.Abs(filepath.Join("..", "..", "testdata", "library.jsonld"))
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "kgschema.yaml")
	content := `version: 1
database:
  url: mysql://root@tcp(localhost:3306)/library
knowledge:
  merged_file: ` + merged + `
  namespaces:
    lib: https://library.example.org/
logging:
  level: error
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSyncDryRun(t *testing.T) {
	path := writeProject(t)

	out, err := execute(t, "sync", "--config", path, "--no-introspect", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE `Book` (")
	assert.Contains(t, out, "ALTER TABLE Book ADD PRIMARY KEY(id);")

	out, err = execute(t, "sync", "--config", path, "--no-introspect", "--dry-run", "--format", "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Migration Plan"))

	out, err = execute(t, "sync", "--config", path, "--no-introspect", "--dry-run", "--exclude", "Book")
	require.NoError(t, err)
	assert.Equal(t, "-- No changes detected.\n", out)

	_, err = execute(t, "sync", "--config", path, "--no-introspect", "--dry-run", "--format", "yaml")
	require.Error(t, err)

	_, err = os.Stat(filepath.Join(filepath.Dir(path), "migrations"))
	assert.True(t, os.IsNotExist(err))
}

func TestSyncBootstrapAndHistory(t *testing.T) {
	path := writeProject(t)
	dir := filepath.Dir(path)

	out, err := execute(t, "history", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "No migrations recorded.\n", out)

	out, err = execute(t, "sync", "--config", path, "--no-introspect")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "migrations", "sql-migration-"))
	assert.Contains(t, out, "(2 statements)")

	files, err := filepath.Glob(filepath.Join(dir, "migrations", "*.sql"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	out, err = execute(t, "history", "--config", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], files[0])
	assert.Contains(t, lines[0], "\t2\t")
}

func TestMissingConfig(t *testing.T) {
	_, err := execute(t, "sync", "--config", filepath.Join(t.TempDir(), "kgschema.yaml"), "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestKnowledgeNeedsPrefix(t *testing.T) {
	_, err := execute(t, "knowledge", "--config", writeProject(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knowledge.prefix")
}
