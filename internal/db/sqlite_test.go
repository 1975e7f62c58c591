package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteClient(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	client, err := NewSQLiteClient(ctx, path)
	require.NoError(t, err)
	defer client.Close()

	ddl := "CREATE TABLE IF NOT EXISTS notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL)"
	require.NoError(t, client.EnsureSchema(ctx, ddl, ddl))

	_, err = client.GetDB().ExecContext(ctx, "INSERT INTO notes (body) VALUES (?)", "hello")
	require.NoError(t, err)

	var body string
	require.NoError(t, client.GetDB().QueryRowContext(ctx, "SELECT body FROM notes").Scan(&body))
	assert.Equal(t, "hello", body)

	err = client.EnsureSchema(ctx, "CREATE TABLE broken (")
	require.Error(t, err)
}
