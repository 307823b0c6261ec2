package ensemble

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/aquamodel/watertable/boosting"
	"github.com/aquamodel/watertable/pkg/errors"
	"github.com/aquamodel/watertable/pkg/log"
)

// archiveVersion guards the on-disk format.
const archiveVersion = 1

type archiveFile struct {
	Version int                        `json:"version"`
	Models  map[string]json.RawMessage `json:"models"`
}

// SaveArchive writes fitted classifiers to a zstd-compressed JSON archive
// keyed by model name. The destination is truncated if it exists.
func SaveArchive(path string, models map[string]*boosting.Classifier) error {
	if len(models) == 0 {
		return errors.NewValueError("ensemble.SaveArchive", "no models to save")
	}

	arch := archiveFile{
		Version: archiveVersion,
		Models:  make(map[string]json.RawMessage, len(models)),
	}
	for name, clf := range models {
		data, err := clf.Bytes()
		if err != nil {
			return errors.Wrapf(err, "ensemble.SaveArchive: serialize %s", name)
		}
		arch.Models[name] = data
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "ensemble.SaveArchive: create %s", path)
	}
	defer file.Close()

	writer, err := zstd.NewWriter(file)
	if err != nil {
		return errors.Wrap(err, "ensemble.SaveArchive: zstd writer")
	}
	if err := json.NewEncoder(writer).Encode(&arch); err != nil {
		writer.Close()
		return errors.Wrap(err, "ensemble.SaveArchive: encode archive")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "ensemble.SaveArchive: flush archive")
	}
	return file.Close()
}

// LoadArchive reads a model archive back into fitted classifiers. The
// returned models are independent artifacts; mutating one does not touch
// the archive.
func LoadArchive(path string) (map[string]*boosting.Classifier, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "ensemble.LoadArchive: open %s", path)
	}
	defer file.Close()

	reader, err := zstd.NewReader(file)
	if err != nil {
		return nil, errors.Wrap(err, "ensemble.LoadArchive: zstd reader")
	}
	defer reader.Close()

	var arch archiveFile
	if err := json.NewDecoder(reader).Decode(&arch); err != nil {
		return nil, errors.Wrapf(err, "ensemble.LoadArchive: decode %s", path)
	}
	if arch.Version != archiveVersion {
		return nil, errors.Newf("ensemble.LoadArchive: unsupported archive version %d", arch.Version)
	}

	models := make(map[string]*boosting.Classifier, len(arch.Models))
	names := make([]string, 0, len(arch.Models))
	for name, data := range arch.Models {
		clf := boosting.NewClassifier()
		if err := clf.LoadBytes(data); err != nil {
			return nil, errors.Wrapf(err, "ensemble.LoadArchive: model %s", name)
		}
		models[name] = clf
		names = append(names, name)
	}
	sort.Strings(names)

	logger := log.GetLoggerWithName("ensemble")
	logger.Info("model archive loaded", "path", path, "models", names)
	return models, nil
}
