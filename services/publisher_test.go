package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FredHutch/docker-eggnog-mapper/config"
)

func testPublisher() *ResultPublisher {
	return NewResultPublisher(&config.Config{}, zap.NewNop())
}

func TestPublishCopiesFiles(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	a := filepath.Join(src, "sample.emapper.annotations")
	b := filepath.Join(src, "sample.emapper.seed_orthologs")
	require.NoError(t, os.WriteFile(a, []byte("#query_name\tKEGG_KOs\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("query_1\n"), 0o644))

	err := testPublisher().Publish(context.Background(), []string{a, b}, dest)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dest, "sample.emapper.annotations"))
	require.NoError(t, err)
	assert.Equal(t, "#query_name\tKEGG_KOs\n", string(got))
	assert.FileExists(t, filepath.Join(dest, "sample.emapper.seed_orthologs"))
}

func TestPublishMissingSource(t *testing.T) {
	dest := t.TempDir()
	missing := filepath.Join(t.TempDir(), "gone.emapper.annotations")

	err := testPublisher().Publish(context.Background(), []string{missing}, dest)
	require.Error(t, err)

	var pubErr *PublishError
	require.True(t, errors.As(err, &pubErr))
	assert.NoFileExists(t, filepath.Join(dest, "gone.emapper.annotations"))
}

func TestPublishCreatesDestinationDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "out.emapper.annotations")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))
	dest := filepath.Join(t.TempDir(), "nested", "results")

	err := testPublisher().Publish(context.Background(), []string{src}, dest)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "out.emapper.annotations"))
}
