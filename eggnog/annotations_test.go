package eggnog

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const annotationsSample = `# emapper version: emapper-2.1.12
# command: emapper.py -i input.fasta --output sample -m diamond
#query_name	seed_eggNOG_ortholog	seed_ortholog_evalue	KEGG_KOs
query_1	1148.slr0611	1.2e-100	K00844,K12407
query_2	1148.slr0612	3.4e-80	K00844
query_3	1148.slr0613	5.6e-60
query_4	1148.slr0614	7.8e-40	K01810
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadOrthologSet(t *testing.T) {
	path := writeTemp(t, "sample.emapper.annotations", annotationsSample)
	ids, err := ReadOrthologSet(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"K00844", "K01810", "K12407"}, ids)
}

func TestReadOrthologSetGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.emapper.annotations.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(annotationsSample))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	ids, err := ReadOrthologSet(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"K00844", "K01810", "K12407"}, ids)
}

func TestReadOrthologSetEmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.emapper.annotations", "")
	ids, err := ReadOrthologSet(path)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReadOrthologSetNoAssignments(t *testing.T) {
	content := "#query_name\tseed_eggNOG_ortholog\tKEGG_KOs\nquery_1\t1148.slr0611\t\n"
	path := writeTemp(t, "none.emapper.annotations", content)
	ids, err := ReadOrthologSet(path)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReadOrthologSetMissingFile(t *testing.T) {
	_, err := ReadOrthologSet(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestParseOrthologSetMissingHeader(t *testing.T) {
	_, err := parseOrthologSet(strings.NewReader("query_1\tfoo\tK00844\n"))
	assert.Error(t, err)
}

func TestParseOrthologSetMissingKOColumn(t *testing.T) {
	_, err := parseOrthologSet(strings.NewReader("#query_name\tseed_eggNOG_ortholog\nquery_1\tfoo\n"))
	assert.Error(t, err)
}

func TestParseOrthologSetSkipsShortRows(t *testing.T) {
	content := "#query_name\tseed\tKEGG_KOs\nquery_1\tfoo\nquery_2\tbar\tK00001\n"
	ids, err := parseOrthologSet(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, []string{"K00001"}, ids)
}
