package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsS3(t *testing.T) {
	assert.True(t, IsS3("s3://bucket/key"))
	assert.False(t, IsS3("/local/path"))
	assert.False(t, IsS3("relative/path"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "s3://bucket/prefix/file.txt", Join("s3://bucket/prefix", "file.txt"))
	assert.Equal(t, "s3://bucket/prefix/file.txt", Join("s3://bucket/prefix/", "file.txt"))
	assert.Equal(t, filepath.Join("/data", "file.txt"), Join("/data", "file.txt"))
}

func TestSplitS3Location(t *testing.T) {
	bucket, key, err := splitS3Location("s3://my-bucket/path/to/object.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "path/to/object.tar.gz", key)

	_, _, err = splitS3Location("s3://bucket-only")
	assert.Error(t, err)

	_, _, err = splitS3Location("s3:///no-bucket")
	assert.Error(t, err)
}
