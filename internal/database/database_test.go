package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"zone_polygons", "ancestry"} {
		n, err := TableRows(ctx, db, table)
		require.NoError(t, err)
		assert.Equal(t, 0, n, table)
	}

	// Schema creation is idempotent.
	require.NoError(t, EnsureSchema(ctx, db))
}

func TestTableRowsMissingTable(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	n, err := TableRows(ctx, db, "does_not_exist")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = db.ExecContext(ctx, `INSERT INTO ancestry (suburb, total_population, ancestries) VALUES ('Carlton', 1, '[]')`)
	require.NoError(t, err)
	n, err = TableRows(ctx, db, "ancestry")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
