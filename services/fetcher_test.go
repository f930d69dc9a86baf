package services

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FredHutch/docker-eggnog-mapper/config"
	"github.com/FredHutch/docker-eggnog-mapper/storage"
)

func testFetcher() *ReferenceFetcher {
	return NewReferenceFetcher(&config.Config{}, zap.NewNop())
}

// writeTarGz baut ein tar.gz-Archiv aus name→content-Paaren.
func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func TestEnsureReferenceExtractsArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "eggnog.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"eggnog.db":                  "db-content",
		"data/eggnog_proteins.dmnd": "dmnd-content",
	})
	dest := filepath.Join(t.TempDir(), "db")

	err := testFetcher().EnsureReference(context.Background(), archive, dest)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dest, "eggnog.db"))
	require.NoError(t, err)
	assert.Equal(t, "db-content", string(got))
	assert.FileExists(t, filepath.Join(dest, "data", "eggnog_proteins.dmnd"))
}

func TestEnsureReferenceCopiesPlainFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "eggnog.db")
	require.NoError(t, os.WriteFile(src, []byte("db-content"), 0o644))
	dest := filepath.Join(t.TempDir(), "db")

	err := testFetcher().EnsureReference(context.Background(), src, dest)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dest, "eggnog.db"))
	require.NoError(t, err)
	assert.Equal(t, "db-content", string(got))
}

func TestEnsureReferenceMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.tar.gz")
	dest := filepath.Join(t.TempDir(), "db")

	err := testFetcher().EnsureReference(context.Background(), missing, dest)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

func TestEnsureReferenceSkipsWhenPresent(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "eggnog.db"), []byte("x"), 0o644))

	// Location existiert nicht, darf aber gar nicht erst angefasst werden.
	err := testFetcher().EnsureReference(context.Background(), "/does/not/exist.tar.gz", dest)
	assert.NoError(t, err)
}

func TestEnsureReferenceRejectsPathTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil.tar.gz")
	writeTarGz(t, archive, map[string]string{"../escape.txt": "nope"})
	dest := filepath.Join(t.TempDir(), "db")

	err := testFetcher().EnsureReference(context.Background(), archive, dest)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "escape.txt"))
}
