package migration

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"testing/fstest"

	"github.com/lexdesk/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoice reminders", "add_invoice_reminders"},
		{"Add-Case-Notes", "add_case_notes"},
		{"add__client__tags", "add_client_tags"},
		{"   spaces   ", "spaces"},
		{"special!@#chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersAfterExisting(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"000001_firms.up.sql", "000001_firms.down.sql", "000007_cases.up.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("--"), 0o644))
	}

	mf, err := CreateMigration(dir, "Add invoice reminders", "")
	require.NoError(t, err)

	assert.Equal(t, "000008", mf.Version)
	assert.Equal(t, filepath.Join(dir, "000008_add_invoice_reminders.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "000008_add_invoice_reminders.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- add invoice reminders")
	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback: add invoice reminders")
}

func TestCreateMigration_EmptyDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(dir, "init", "initial schema")
	require.NoError(t, err)

	assert.Equal(t, "000001", mf.Version)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_InvalidName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_payments.up.sql":   {Data: []byte("--")},
		"000002_payments.down.sql": {Data: []byte("--")},
		"000001_firms.up.sql":      {Data: []byte("--")},
		"000001_firms.down.sql":    {Data: []byte("--")},
		"README.md":                {Data: []byte("#")},
		"nested/000009_x.up.sql":   {Data: []byte("--")},
	}

	got, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_firms", "000002_payments"}, got)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	got, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	ups, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for i, base := range ups {
		_, err := migrations.FS.Open(base + ".down.sql")
		assert.NoError(t, err, "missing down migration for %s", base)
		assert.Equal(t, i+1, mustVersion(t, base), "versions must be contiguous")
	}
}

func mustVersion(t *testing.T, base string) int {
	t.Helper()
	v, err := strconv.Atoi(base[:6])
	require.NoError(t, err)
	return v
}
