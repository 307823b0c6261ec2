package dataset

import (
	"encoding/csv"
	"os"

	"github.com/aquamodel/watertable/pkg/errors"
	"github.com/aquamodel/watertable/pkg/log"
)

// Load reads a UTF-8 delimited file with a required header row into a
// Table. A missing file or malformed record is terminal.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.Load: open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.Load: parse %s", path)
	}
	if len(records) == 0 {
		return nil, errors.NewValueError("dataset.Load", "missing header row in "+path)
	}

	table, err := FromRecords(records[0], records[1:])
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("dataset")
	logger.Debug("table loaded",
		"path", path,
		log.SamplesKey, table.NumRows(),
		log.FeaturesKey, len(table.names))
	return table, nil
}

// LoadLabels reads a label file whose first column is the row identifier
// and whose second column is the label. Row order is the alignment key
// with the feature table; no join is performed.
func LoadLabels(path string) (ids []string, labels []string, err error) {
	table, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	if len(table.names) < 2 {
		return nil, nil, errors.NewValueError("dataset.LoadLabels", "label file needs an identifier column and a label column")
	}
	ids = append([]string(nil), table.cols[0]...)
	labels = append([]string(nil), table.cols[1]...)
	return ids, labels, nil
}
