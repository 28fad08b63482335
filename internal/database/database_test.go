package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('equipments','pages','blocks','admin_users','attachments')",
	).Scan(&n))
	assert.Equal(t, 5, n)
}

func TestConstraintHelpers(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	_, err = db.Exec("INSERT INTO equipments (name) VALUES ('JC450')")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO equipments (name) VALUES ('JC450')")
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))

	_, err = db.Exec("INSERT INTO pages (title, slug, equipment_id) VALUES ('t', 's', 999)")
	assert.True(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(nil))
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "a.db?_foreign_keys=on", withForeignKeys("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_foreign_keys=on", withForeignKeys("file:a.db?mode=rwc"))
	assert.Equal(t, "a.db?_foreign_keys=off", withForeignKeys("a.db?_foreign_keys=off"))
}
