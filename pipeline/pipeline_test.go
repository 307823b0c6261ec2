package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aquamodel/watertable/boosting"
	"github.com/aquamodel/watertable/ensemble"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fixtureRun builds a small but separable dataset: the source column
// alone determines the label, with amount as numeric noise.
func fixtureRun(t *testing.T, dir string) Config {
	t.Helper()

	var train, labels strings.Builder
	train.WriteString("id,source,amount\n")
	labels.WriteString("id,status_group\n")
	for i := 0; i < 30; i++ {
		source, label := "spring", "functional"
		if i%2 == 1 {
			source, label = "well", "non functional"
		}
		fmt.Fprintf(&train, "%d,%s,%d\n", i, source, 10+i)
		fmt.Fprintf(&labels, "%d,%s\n", i, label)
	}

	test := "id,source,amount\n" +
		"100,spring,12\n" +
		"101,well,14\n" +
		"102,spring,16\n"

	return Config{
		TrainPath:       writeFile(t, dir, "train.csv", train.String()),
		LabelsPath:      writeFile(t, dir, "labels.csv", labels.String()),
		TestPath:        writeFile(t, dir, "test.csv", test),
		OutputPath:      filepath.Join(dir, "submission.csv"),
		NumIterations:   5,
		LearningRate:    0.5,
		MaxDepth:        -1,
		NumLeaves:       8,
		MinChildSamples: 2,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := fixtureRun(t, dir)

	result, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.TrainAccuracy, "separable data fits perfectly")
	assert.Equal(t, 1, result.NumMembers)
	assert.Equal(t, 3, result.RowsWritten)

	records := readCSV(t, cfg.OutputPath)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"id", "status_group"}, records[0])
	assert.Equal(t, []string{"100", "functional"}, records[1])
	assert.Equal(t, []string{"101", "non functional"}, records[2])
	assert.Equal(t, []string{"102", "functional"}, records[3])
}

func TestRunWithArchive(t *testing.T) {
	dir := t.TempDir()
	cfg := fixtureRun(t, dir)

	// A pretrained member over the same transformed feature space: the
	// categorical block (source) first, then the numeric block (amount).
	rows := 20
	X := mat.NewDense(rows, 2, nil)
	y := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		code := i % 2
		X.Set(i, 0, float64(code))
		X.Set(i, 1, float64(i))
		y.Set(i, 0, float64(code))
	}
	pretrained := boosting.NewClassifier().
		WithNumIterations(5).
		WithLearningRate(0.5).
		WithMinChildSamples(2).
		WithCategoricalFeatures([]int{0})
	require.NoError(t, pretrained.Fit(X, y))

	cfg.ArchivePath = filepath.Join(dir, "models.zst")
	require.NoError(t, ensemble.SaveArchive(cfg.ArchivePath, map[string]*boosting.Classifier{
		"pretrained": pretrained,
	}))

	result, err := Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, result.NumMembers)
	assert.Equal(t, 3, result.RowsWritten)

	records := readCSV(t, cfg.OutputPath)
	require.Len(t, records, 4)
}

func TestRunWithLossCurve(t *testing.T) {
	dir := t.TempDir()
	cfg := fixtureRun(t, dir)
	cfg.LossCurvePath = filepath.Join(dir, "loss.png")

	_, err := Run(cfg)
	require.NoError(t, err)

	info, err := os.Stat(cfg.LossCurvePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunRowCountMismatch(t *testing.T) {
	dir := t.TempDir()
	cfg := fixtureRun(t, dir)
	cfg.LabelsPath = writeFile(t, dir, "short_labels.csv",
		"id,status_group\n0,functional\n1,non functional\n")

	_, err := Run(cfg)
	assert.Error(t, err)
}

func TestRunIDMismatch(t *testing.T) {
	dir := t.TempDir()
	cfg := fixtureRun(t, dir)

	records := readCSV(t, cfg.LabelsPath)
	records[1][0] = "999"
	var out strings.Builder
	w := csv.NewWriter(&out)
	require.NoError(t, w.WriteAll(records))
	cfg.LabelsPath = writeFile(t, dir, "shuffled_labels.csv", out.String())

	_, err := Run(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id")
}

func TestRunHeaderOnlyTestTable(t *testing.T) {
	dir := t.TempDir()
	cfg := fixtureRun(t, dir)
	cfg.TestPath = writeFile(t, dir, "empty_test.csv", "id,source,amount\n")

	_, err := Run(cfg)
	require.Error(t, err, "a rowless inference table aborts the run with an error")
}

func TestRunTestTableMissingColumn(t *testing.T) {
	dir := t.TempDir()
	cfg := fixtureRun(t, dir)
	cfg.TestPath = writeFile(t, dir, "bad_test.csv", "id,amount\n100,12\n")

	_, err := Run(cfg)
	assert.Error(t, err)
}

func TestRunTestTableMissingID(t *testing.T) {
	dir := t.TempDir()
	cfg := fixtureRun(t, dir)
	cfg.TestPath = writeFile(t, dir, "noid_test.csv", "source,amount\nspring,12\n")

	_, err := Run(cfg)
	assert.Error(t, err)
}
