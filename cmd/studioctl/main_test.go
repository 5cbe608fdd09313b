package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emberhaus/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yml")))
	err := cmd.Execute()
	return out.String(), err
}

func useDatabase(t *testing.T, path string) {
	t.Helper()
	t.Setenv("ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
}

func TestSeedBackupRestore(t *testing.T) {
	dir := t.TempDir()
	useDatabase(t, filepath.Join(dir, "source.db"))

	out, err := execute(t, "", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded")

	out, err = execute(t, "", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")

	snapshotPath := filepath.Join(dir, "backup.json")
	_, err = execute(t, "", "backup", "--out", snapshotPath)
	require.NoError(t, err)

	f, err := os.Open(snapshotPath)
	require.NoError(t, err)
	snap, err := transfer.ReadSnapshot(f)
	f.Close()
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Events)

	useDatabase(t, filepath.Join(dir, "restored.db"))
	out, err = execute(t, "", "restore", "--in", snapshotPath)
	require.NoError(t, err)
	assert.Contains(t, out, "restored")
}

func TestRestoreRequiresInput(t *testing.T) {
	useDatabase(t, filepath.Join(t.TempDir(), "site.db"))
	_, err := execute(t, "", "restore")
	require.Error(t, err)
}

func TestImportLegacyReportsEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	useDatabase(t, filepath.Join(dir, "site.db"))

	out, err := execute(t, "", "import-legacy", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "no legacy files found")
}

func TestMigrateDBCopiesIntoSqlite(t *testing.T) {
	dir := t.TempDir()
	useDatabase(t, filepath.Join(dir, "source.db"))
	_, err := execute(t, "", "seed")
	require.NoError(t, err)

	out, err := execute(t, "", "migrate-db", "--to-driver", "sqlite", "--to-dsn", filepath.Join(dir, "target.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "copied")
	assert.FileExists(t, filepath.Join(dir, "target.db"))
}

func TestTargetDSN(t *testing.T) {
	dsn, err := targetDSN("mysql", "studio:secret@tcp(db:3306)/emberhaus")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	_, err = targetDSN("mysql", "not a dsn")
	assert.Error(t, err)

	_, err = targetDSN("postgres", "whatever")
	assert.Error(t, err)
}

func TestHashPasswordFromStdin(t *testing.T) {
	out, err := execute(t, "birch-and-steam\n", "hash-password", "--cost", "4")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("birch-and-steam")))

	_, err = execute(t, "", "hash-password")
	assert.Error(t, err)
}
