package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmartens-dev/bulletin-harvester/constants"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestEnumerateDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"))
	touch(t, filepath.Join(root, "a.txt"))
	touch(t, filepath.Join(root, "sub", "c.PDF"))
	touch(t, filepath.Join(root, "notes.docx"))      // unsupported, skipped
	touch(t, filepath.Join(root, ".hidden.pdf"))     // hidden file, skipped
	touch(t, filepath.Join(root, ".stash", "d.pdf")) // hidden dir, skipped

	docs, err := EnumerateDirectory(root)
	require.NoError(t, err)

	var names []string
	for _, d := range docs {
		names = append(names, d.Name)
	}
	// Lexical walk order.
	assert.Equal(t, []string{"a.txt", "b.pdf", "c.PDF"}, names)
	assert.Equal(t, constants.TXT, docs[0].Format)
	assert.Equal(t, constants.PDF, docs[2].Format)
}

func TestEnumerateDirectory_EmptyRoot(t *testing.T) {
	_, err := EnumerateDirectory("  ")
	assert.Error(t, err)
}

func TestFromPaths(t *testing.T) {
	docs, err := FromPaths([]string{"/in/z.pdf", "/in/a.txt"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// Caller order preserved, no sorting.
	assert.Equal(t, "z.pdf", docs[0].Name)
	assert.Equal(t, "a.txt", docs[1].Name)
}

func TestFromPaths_RejectsUnsupported(t *testing.T) {
	_, err := FromPaths([]string{"/in/a.pdf", "/in/b.docx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.docx")
}

func TestEnumerateReviewDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "one.txt"))
	touch(t, filepath.Join(dir, "two.txt"))
	touch(t, filepath.Join(dir, "ignored.pdf"))

	docs, err := EnumerateReviewDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, constants.TXT, d.Format)
	}
}
