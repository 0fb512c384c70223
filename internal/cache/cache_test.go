package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestFreshManifestIsAlwaysStale(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.tova", "shared { type Id = String }")

	m, err := Open(filepath.Join(dir, "cache.json"))
	require.NoError(t, err)

	upToDate, err := m.IsUpToDate("app", []string{src}, dir)
	require.NoError(t, err)
	assert.False(t, upToDate)
}

func TestSetThenIsUpToDateAfterMatchingArtifact(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.tova", "shared { type Id = String }")
	artifact := writeFile(t, dir, "app.shared.js", "export const Id = 1;")

	m, err := Open(filepath.Join(dir, "cache.json"))
	require.NoError(t, err)

	require.NoError(t, m.Set("app", []string{src}, []string{filepath.Base(artifact)}))

	upToDate, err := m.IsUpToDate("app", []string{src}, dir)
	require.NoError(t, err)
	assert.True(t, upToDate)
}

func TestEditingSourceInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.tova", "shared { type Id = String }")
	artifact := writeFile(t, dir, "app.shared.js", "export const Id = 1;")

	m, err := Open(filepath.Join(dir, "cache.json"))
	require.NoError(t, err)
	require.NoError(t, m.Set("app", []string{src}, []string{filepath.Base(artifact)}))

	writeFile(t, dir, "a.tova", "shared { type Id = Int }")

	upToDate, err := m.IsUpToDate("app", []string{src}, dir)
	require.NoError(t, err)
	assert.False(t, upToDate)
}

func TestMissingArtifactInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.tova", "shared { type Id = String }")

	m, err := Open(filepath.Join(dir, "cache.json"))
	require.NoError(t, err)
	require.NoError(t, m.Set("app", []string{src}, []string{"app.shared.js"}))

	upToDate, err := m.IsUpToDate("app", []string{src}, dir)
	require.NoError(t, err)
	assert.False(t, upToDate, "artifact was never written to disk")
}

func TestSaveAndReopenRoundTrips(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.tova", "shared { type Id = String }")
	artifact := writeFile(t, dir, "app.shared.js", "export const Id = 1;")

	manifestPath := filepath.Join(dir, "cache.json")
	m, err := Open(manifestPath)
	require.NoError(t, err)
	require.NoError(t, m.Set("app", []string{src}, []string{filepath.Base(artifact)}))
	require.NoError(t, m.Save())

	reopened, err := Open(manifestPath)
	require.NoError(t, err)
	upToDate, err := reopened.IsUpToDate("app", []string{src}, dir)
	require.NoError(t, err)
	assert.True(t, upToDate)
}

func TestPruneDropsEntriesNotInLiveSet(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.tova", "shared { type Id = String }")

	m, err := Open(filepath.Join(dir, "cache.json"))
	require.NoError(t, err)
	require.NoError(t, m.Set("app", []string{src}, nil))
	require.NoError(t, m.Set("stale", []string{src}, nil))

	m.Prune(map[string]bool{"app": true})

	_, ok := m.Entries["stale"]
	assert.False(t, ok)
	_, ok = m.Entries["app"]
	assert.True(t, ok)
}

func TestAcquireThenAcquireAgainFails(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "build.lock")

	l, err := Acquire(lockPath)
	require.NoError(t, err)

	_, err = Acquire(lockPath)
	assert.Error(t, err)

	require.NoError(t, l.Release())

	l2, err := Acquire(lockPath)
	require.NoError(t, err)
	require.NoError(t, l2.Release())
}
