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

// writeScript legt ein ausführbares Shell-Skript an, das als
// emapper-Ersatz dient.
func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-emapper.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+content), 0o755))
	return path
}

func testRunner(bin string) *AnnotationRunner {
	cfg := &config.Config{EmapperBin: bin, EmapperMode: "diamond"}
	return NewAnnotationRunner(cfg, zap.NewNop())
}

const emitOutputs = `prefix=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--output" ]; then prefix="$2"; fi
  shift
done
touch "$prefix.emapper.annotations"
touch "$prefix.emapper.seed_orthologs"
`

func TestRunCollectsOutputs(t *testing.T) {
	scratch := t.TempDir()
	runner := testRunner(writeScript(t, emitOutputs))

	outputs, err := runner.Run(context.Background(), RunOptions{
		Input:        "input.fasta",
		DataDir:      scratch,
		OutputPrefix: filepath.Join(scratch, "sample"),
		CPUs:         2,
		ScratchDir:   scratch,
	})
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	assert.Equal(t, filepath.Join(scratch, "sample")+AnnotationsSuffix, outputs[0])
	assert.Equal(t, filepath.Join(scratch, "sample")+SeedOrthologsSuffix, outputs[1])
}

func TestRunReportsExitCodeAndStderr(t *testing.T) {
	runner := testRunner(writeScript(t, `echo "Fatal: eggNOG database not found" >&2
exit 2
`))

	_, err := runner.Run(context.Background(), RunOptions{
		Input:        "input.fasta",
		OutputPrefix: filepath.Join(t.TempDir(), "sample"),
		CPUs:         1,
	})
	require.Error(t, err)

	var annErr *AnnotationError
	require.True(t, errors.As(err, &annErr))
	assert.Equal(t, 2, annErr.ExitCode)
	assert.Contains(t, annErr.Stderr, "eggNOG database not found")
}

func TestRunFailsWhenAnnotationsMissing(t *testing.T) {
	// Exit 0, aber keine Ausgabedatei.
	runner := testRunner(writeScript(t, "exit 0\n"))

	_, err := runner.Run(context.Background(), RunOptions{
		Input:        "input.fasta",
		OutputPrefix: filepath.Join(t.TempDir(), "sample"),
		CPUs:         1,
	})
	var annErr *AnnotationError
	require.True(t, errors.As(err, &annErr))
	assert.Equal(t, 0, annErr.ExitCode)
}

func TestRunMissingBinary(t *testing.T) {
	runner := testRunner(filepath.Join(t.TempDir(), "no-such-binary"))

	_, err := runner.Run(context.Background(), RunOptions{
		Input:        "input.fasta",
		OutputPrefix: filepath.Join(t.TempDir(), "sample"),
		CPUs:         1,
	})
	var annErr *AnnotationError
	require.True(t, errors.As(err, &annErr))
	assert.Equal(t, -1, annErr.ExitCode)
}
