package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyTreeSkipsDotFiles(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, WriteFile(filepath.Join(src, "motorway.ico"), []byte("ico")))
	require.NoError(t, WriteFile(filepath.Join(src, "img", "logo.svg"), []byte("<svg/>")))
	require.NoError(t, WriteFile(filepath.Join(src, ".DS_Store"), []byte("x")))
	require.NoError(t, WriteFile(filepath.Join(src, ".cache", "blob"), []byte("x")))

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, CopyTree(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "img", "logo.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
	assert.FileExists(t, filepath.Join(dst, "motorway.ico"))
	assert.NoFileExists(t, filepath.Join(dst, ".DS_Store"))
	assert.NoDirExists(t, filepath.Join(dst, ".cache"))
}

func TestCopyFileMissingSource(t *testing.T) {
	err := CopyFile(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "dst"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReplaceDir(t *testing.T) {
	root := t.TempDir()
	final := filepath.Join(root, "dist")

	first := filepath.Join(root, "stage1")
	require.NoError(t, WriteFile(filepath.Join(first, "index.html"), []byte("v1")))
	require.NoError(t, ReplaceDir(first, final))

	second := filepath.Join(root, "stage2")
	require.NoError(t, WriteFile(filepath.Join(second, "index.html"), []byte("v2")))
	require.NoError(t, ReplaceDir(second, final))

	data, err := os.ReadFile(filepath.Join(final, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
	assert.NoDirExists(t, final+".old")
	assert.NoDirExists(t, second)
}

func TestReplaceDirRestoresOnFailure(t *testing.T) {
	root := t.TempDir()
	final := filepath.Join(root, "dist")
	require.NoError(t, WriteFile(filepath.Join(final, "index.html"), []byte("v1")))

	err := ReplaceDir(filepath.Join(root, "missing"), final)
	require.Error(t, err)

	data, err := os.ReadFile(filepath.Join(final, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}
