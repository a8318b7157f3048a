package flatten

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIngestPreservesInputOrder(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 64; i++ {
		path := filepath.Join(dir, fmt.Sprintf("file%02d.txt", i))
		// Sizes vary wildly so completion order differs from input order.
		content := strings.Repeat("x", 1+(i%7)*4096)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		files = append(files, path)
	}

	records := Ingest(files, testSet(), 0, 8, zap.NewNop())
	require.Len(t, records, len(files))
	for i, r := range records {
		assert.Equal(t, files[i], r.Path)
		assert.Equal(t, OutcomeContent, r.Outcome)
	}
}

func TestIngestOutcomes(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.txt")
	big := filepath.Join(dir, "big.txt")
	binary := filepath.Join(dir, "tool.exe")
	missing := filepath.Join(dir, "missing.txt")
	require.NoError(t, os.WriteFile(small, []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("b", 100)), 0o644))
	require.NoError(t, os.WriteFile(binary, []byte{0x00, 0x01}, 0o644))

	records := Ingest([]string{small, big, binary, missing}, testSet(), 50, 2, zap.NewNop())
	require.Len(t, records, 4)

	assert.Equal(t, OutcomeContent, records[0].Outcome)
	assert.Equal(t, "hello", records[0].Content)
	assert.EqualValues(t, 5, records[0].Size)

	assert.Equal(t, OutcomeTooLarge, records[1].Outcome)
	assert.EqualValues(t, 100, records[1].Size)
	assert.Empty(t, records[1].Content)

	assert.Equal(t, OutcomeSkipped, records[2].Outcome)
	assert.Equal(t, "tool.exe", records[2].Reason)

	assert.Equal(t, OutcomeReadError, records[3].Outcome)
	assert.NotEmpty(t, records[3].Reason)
}

func TestIngestZeroCapMeansNoLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("a", 4096)), 0o644))

	records := Ingest([]string{path}, testSet(), 0, 1, zap.NewNop())
	assert.Equal(t, OutcomeContent, records[0].Outcome)
}

func TestIngestInvalidEncodingIsLossy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latin1.txt")
	require.NoError(t, os.WriteFile(path, []byte{'h', 'i', 0xff, 0xfe, '!'}, 0o644))

	records := Ingest([]string{path}, testSet(), 0, 1, zap.NewNop())
	require.Equal(t, OutcomeContent, records[0].Outcome)
	assert.True(t, utf8.ValidString(records[0].Content))
	assert.Contains(t, records[0].Content, "hi")
	assert.Contains(t, records[0].Content, string(utf8.RuneError))
}

func TestIngestEmptyInput(t *testing.T) {
	records := Ingest(nil, testSet(), 0, 0, zap.NewNop())
	assert.Empty(t, records)
}
