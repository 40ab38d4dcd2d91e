package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSQLStatements(t *testing.T) {
	sql := `-- header comment
CREATE INDEX a ON t (x);

CREATE INDEX b ON t (y);
`
	assert.Equal(t, []string{"CREATE INDEX a ON t (x)", "CREATE INDEX b ON t (y)"}, splitSQLStatements(sql))
}

func TestSplitSQLStatements_DollarQuotedBody(t *testing.T) {
	sql := `CREATE FUNCTION f() RETURNS trigger AS $$
BEGIN
    DELETE FROM t;
    RETURN NULL;
END;
$$ LANGUAGE plpgsql;
DROP TRIGGER IF EXISTS g ON t;`

	statements := splitSQLStatements(sql)
	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], "DELETE FROM t;")
	assert.Contains(t, statements[0], "LANGUAGE plpgsql")
	assert.Equal(t, "DROP TRIGGER IF EXISTS g ON t", statements[1])
}

func TestListSQLFiles_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := listSQLFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, files)
}

func TestListSQLFiles_MissingDir(t *testing.T) {
	_, err := listSQLFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRepositoryMigrationsParse(t *testing.T) {
	files, err := listSQLFiles("../../migrations")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		content, err := os.ReadFile(filepath.Join("../../migrations", name))
		require.NoError(t, err)
		assert.NotEmpty(t, splitSQLStatements(string(content)), name)
	}
}
