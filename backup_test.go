package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyDirRecursive(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "snapshot")

	require.NoError(t, os.WriteFile(filepath.Join(src, "a.jpg"), []byte("top"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "b.png"), []byte("deep"), 0644))

	require.NoError(t, copyDir(src, dest))

	top, err := os.ReadFile(filepath.Join(dest, "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "top", string(top))

	deep, err := os.ReadFile(filepath.Join(dest, "nested", "b.png"))
	require.NoError(t, err)
	assert.Equal(t, "deep", string(deep))
}

func TestPruneOldBackups(t *testing.T) {
	backupDir := t.TempDir()

	old := filepath.Join(backupDir, "2026-01-01_02-00-00")
	fresh := filepath.Join(backupDir, "2026-08-28_02-00-00")
	require.NoError(t, os.MkdirAll(old, 0755))
	require.NoError(t, os.MkdirAll(fresh, 0755))

	stale := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))

	pruneOldBackups(backupDir, 4*24*time.Hour)

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}
