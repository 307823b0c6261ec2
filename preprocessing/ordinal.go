package preprocessing

import (
	"math"
	"sort"

	"github.com/aquamodel/watertable/core/model"
	"github.com/aquamodel/watertable/pkg/errors"
)

// MissingCategory is the sentinel code given to a category not seen at fit
// time. Downstream tree learners treat NaN as a missing value rather than
// a real category, so inference never fails on unseen values.
var MissingCategory = math.NaN()

// OrdinalEncoder maps each distinct categorical value of a column to an
// integer code. Codes are assigned in lexicographic category order, so
// encoding is deterministic across fits on the same data.
type OrdinalEncoder struct {
	model.BaseEstimator

	// Categories holds, per column, the sorted distinct values seen at
	// fit time. The code of a value is its position in this list.
	Categories [][]string

	codes []map[string]float64
}

// NewOrdinalEncoder creates an unfitted OrdinalEncoder.
func NewOrdinalEncoder() *OrdinalEncoder {
	return &OrdinalEncoder{}
}

// Fit learns the category set of each column. Columns are passed
// column-major: cols[j][i] is the cell at row i of column j.
func (e *OrdinalEncoder) Fit(cols [][]string) error {
	if len(cols) == 0 {
		return errors.NewModelError("OrdinalEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	e.Categories = make([][]string, len(cols))
	e.codes = make([]map[string]float64, len(cols))
	for j, col := range cols {
		seen := make(map[string]bool, len(col))
		for _, v := range col {
			seen[v] = true
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)

		e.Categories[j] = cats
		e.codes[j] = make(map[string]float64, len(cats))
		for code, v := range cats {
			e.codes[j][v] = float64(code)
		}
	}

	e.SetFitted()
	return nil
}

// Transform encodes columns with the fitted codes. A value unseen at fit
// time encodes to MissingCategory instead of raising.
func (e *OrdinalEncoder) Transform(cols [][]string) ([][]float64, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OrdinalEncoder", "Transform")
	}
	if len(cols) != len(e.codes) {
		return nil, errors.NewDimensionError("OrdinalEncoder.Transform", len(e.codes), len(cols), 1)
	}

	out := make([][]float64, len(cols))
	for j, col := range cols {
		enc := make([]float64, len(col))
		for i, v := range col {
			if code, ok := e.codes[j][v]; ok {
				enc[i] = code
			} else {
				enc[i] = MissingCategory
			}
		}
		out[j] = enc
	}
	return out, nil
}

// FitTransform fits on cols and encodes the same data.
func (e *OrdinalEncoder) FitTransform(cols [][]string) ([][]float64, error) {
	if err := e.Fit(cols); err != nil {
		return nil, err
	}
	return e.Transform(cols)
}

// LabelEncoder maps string class labels to integer codes and back. The
// boosted-tree classifier consumes integer targets, so label encoding is
// an explicit pipeline step rather than an implicit library behavior.
type LabelEncoder struct {
	model.BaseEstimator

	// Classes holds the sorted distinct labels; the code of a label is
	// its position in this list.
	Classes []string

	codes map[string]int
}

// NewLabelEncoder creates an unfitted LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit learns the label set.
func (e *LabelEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	seen := make(map[string]bool, len(labels))
	for _, v := range labels {
		seen[v] = true
	}
	e.Classes = make([]string, 0, len(seen))
	for v := range seen {
		e.Classes = append(e.Classes, v)
	}
	sort.Strings(e.Classes)

	e.codes = make(map[string]int, len(e.Classes))
	for code, v := range e.Classes {
		e.codes[v] = code
	}

	e.SetFitted()
	return nil
}

// Transform encodes labels to integer codes. An unseen label is an error:
// unlike feature categories, a target value outside the fitted set has no
// meaningful sentinel.
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	out := make([]int, len(labels))
	for i, v := range labels {
		code, ok := e.codes[v]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform", "unseen label "+v)
		}
		out[i] = code
	}
	return out, nil
}

// FitTransform fits on labels and encodes the same data.
func (e *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	if err := e.Fit(labels); err != nil {
		return nil, err
	}
	return e.Transform(labels)
}

// InverseTransform decodes integer codes back to label strings.
func (e *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	out := make([]string, len(codes))
	for i, code := range codes {
		if code < 0 || code >= len(e.Classes) {
			return nil, errors.Newf("LabelEncoder.InverseTransform: code %d out of range [0, %d)", code, len(e.Classes))
		}
		out[i] = e.Classes[code]
	}
	return out, nil
}
