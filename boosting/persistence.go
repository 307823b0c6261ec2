package boosting

import (
	"encoding/json"
	"os"

	"github.com/aquamodel/watertable/pkg/errors"
)

// Save writes the fitted model to a JSON file.
func (c *Classifier) Save(path string) error {
	if !c.IsFitted() {
		return errors.NewNotFittedError("Classifier", "Save")
	}

	data, err := json.Marshal(c.Model)
	if err != nil {
		return errors.Wrap(err, "Classifier.Save: marshal model")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "Classifier.Save: write %s", path)
	}
	return nil
}

// Load restores a fitted model from a JSON file produced by Save.
func (c *Classifier) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Classifier.Load: read %s", path)
	}
	return c.LoadBytes(data)
}

// LoadBytes restores a fitted model from serialized JSON.
func (c *Classifier) LoadBytes(data []byte) error {
	m := NewModel()
	if err := json.Unmarshal(data, m); err != nil {
		return errors.Wrap(err, "Classifier.LoadBytes: unmarshal model")
	}
	if m.NumClass < 2 || len(m.ClassValues) != m.NumClass {
		return errors.NewValueError("Classifier.LoadBytes", "model has an invalid class set")
	}

	c.Model = m
	c.Predictor = NewPredictor(m)
	if c.NumThreads > 0 {
		c.Predictor.SetNumThreads(c.NumThreads)
	}
	c.nFeatures_ = m.NumFeatures
	c.classes_ = append([]int(nil), m.ClassValues...)
	c.nClasses_ = m.NumClass
	c.SetFitted()
	return nil
}

// Bytes serializes the fitted model to JSON.
func (c *Classifier) Bytes() ([]byte, error) {
	if !c.IsFitted() {
		return nil, errors.NewNotFittedError("Classifier", "Bytes")
	}
	data, err := json.Marshal(c.Model)
	if err != nil {
		return nil, errors.Wrap(err, "Classifier.Bytes: marshal model")
	}
	return data, nil
}
