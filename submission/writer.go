// Package submission formats predictions into the two-column result file
// the competition expects.
package submission

import (
	"encoding/csv"
	"os"

	"github.com/aquamodel/watertable/pkg/errors"
	"github.com/aquamodel/watertable/pkg/log"
)

// Header names of the output columns.
const (
	IDColumn    = "id"
	LabelColumn = "status_group"
)

// Write emits a two-column table (id, predicted label) aligned by row
// order, with a header row and no index column. An existing destination is
// overwritten.
func Write(path string, ids, labels []string) error {
	if len(ids) != len(labels) {
		return errors.NewDimensionError("submission.Write", len(ids), len(labels), 0)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "submission.Write: create %s", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{IDColumn, LabelColumn}); err != nil {
		return errors.Wrap(err, "submission.Write: header")
	}
	for i := range ids {
		if err := writer.Write([]string{ids[i], labels[i]}); err != nil {
			return errors.Wrapf(err, "submission.Write: row %d", i)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "submission.Write: flush")
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "submission.Write: close %s", path)
	}

	logger := log.GetLoggerWithName("submission")
	logger.Info("submission written", "path", path, "rows", len(ids))
	return nil
}
