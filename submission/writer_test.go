package submission

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submission.csv")

	ids := []string{"1", "2", "3"}
	labels := []string{"functional", "non functional", "functional"}
	require.NoError(t, Write(path, ids, labels))

	records := readCSV(t, path)
	require.Len(t, records, 4, "header plus one row per prediction")
	assert.Equal(t, []string{"id", "status_group"}, records[0])
	assert.Equal(t, []string{"1", "functional"}, records[1])
	assert.Equal(t, []string{"2", "non functional"}, records[2])
	assert.Equal(t, []string{"3", "functional"}, records[3])
}

func TestWriteOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submission.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content\nstale row\nstale row\n"), 0o644))

	require.NoError(t, Write(path, []string{"7"}, []string{"functional"}))

	records := readCSV(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"7", "functional"}, records[1])
}

func TestWriteLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submission.csv")
	err := Write(path, []string{"1", "2"}, []string{"functional"})
	assert.Error(t, err)
}

func TestWriteEmptyPredictions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submission.csv")
	require.NoError(t, Write(path, nil, nil))

	records := readCSV(t, path)
	require.Len(t, records, 1, "header only")
	assert.Equal(t, []string{"id", "status_group"}, records[0])
}
