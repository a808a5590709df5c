package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyFixture(t *testing.T, src, dst string) {
	t.Helper()

	content, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))
	require.NoError(t, os.WriteFile(dst, content, 0644))
}

func TestParsePerfResults(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, "converters/ntttcp/testdata/ntttcp-sender-p64.log", filepath.Join(dir, "ntttcp-sender-p64.log"))
	copyFixture(t, "converters/fio/testdata/fio-4k-randrw.log", filepath.Join(dir, "fio", "fio-4k-randrw.log"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a perf log"), 0644))

	report, err := ParsePerfResults(dir, log.NewLogger())
	require.NoError(t, err)

	require.Len(t, report.Records, 11)
	// sorted by source
	assert.Equal(t, "fio-4k-randrw.log", report.Records[0].Source)
	assert.Equal(t, "read_bw", report.Records[0].Metric)
	assert.Equal(t, "ntttcp-sender-p64.log", report.Records[10].Source)
	assert.Equal(t, "throughput", report.Records[10].Metric)
}

func TestParsePerfResults_Empty(t *testing.T) {
	report, err := ParsePerfResults(t.TempDir(), log.NewLogger())
	require.NoError(t, err)
	assert.Empty(t, report.Records)
}

func TestParsePerfResults_MissingDir(t *testing.T) {
	_, err := ParsePerfResults(filepath.Join(t.TempDir(), "missing"), log.NewLogger())
	require.Error(t, err)
}
