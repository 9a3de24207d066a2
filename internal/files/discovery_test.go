package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("a,b\n1,2\n"), 0644))
	}
}

func TestFindFilesByPatternSortedByName(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "cluster_3.csv", "cluster_1.csv", "cluster_10.csv", "other.csv")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "cluster_dir.csv"), 0755))

	d := NewDiscovery(dir)
	found, err := d.FindFilesByPattern("", "cluster_*.csv")
	require.NoError(t, err)

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"cluster_1.csv", "cluster_10.csv", "cluster_3.csv"}, names)
	assert.Equal(t, filepath.Join(dir, "cluster_1.csv"), found[0].Path)
	assert.Equal(t, int64(8), found[0].Size)
}

func TestFindFilesByPatternRelativeAndAbsolute(t *testing.T) {
	base := t.TempDir()
	sub := filepath.Join(base, "shards")
	require.NoError(t, os.Mkdir(sub, 0755))
	writeFiles(t, sub, "cluster_a.csv")

	d := NewDiscovery(base)

	rel, err := d.FindFilesByPattern("shards", "cluster_*.csv")
	require.NoError(t, err)
	assert.Len(t, rel, 1)

	abs, err := d.FindFilesByPattern(sub, "cluster_*.csv")
	require.NoError(t, err)
	assert.Equal(t, rel, abs)
}

func TestFindFilesByPatternNoMatches(t *testing.T) {
	d := NewDiscovery(t.TempDir())
	found, err := d.FindFilesByPattern("", "cluster_*.csv")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFindFilesByPatternInvalid(t *testing.T) {
	d := NewDiscovery(t.TempDir())
	_, err := d.FindFilesByPattern("", "[")
	assert.Error(t, err)
}

func TestFindFilesByPatternSeveralPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "cluster_2.xlsx", "cluster_1.csv", "notes.txt")

	found, err := NewDiscovery(dir).FindFilesByPattern("", "cluster_*.csv", " cluster_*.xlsx", "cluster_1*")
	require.NoError(t, err)
	require.Len(t, found, 2, "a file matched twice is listed once")
	assert.Equal(t, "cluster_1.csv", found[0].Name)
	assert.Equal(t, "cluster_2.xlsx", found[1].Name)
	assert.Equal(t, int64(16), TotalSize(found))
}
