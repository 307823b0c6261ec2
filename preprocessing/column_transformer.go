package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/aquamodel/watertable/core/model"
	"github.com/aquamodel/watertable/dataset"
	"github.com/aquamodel/watertable/pkg/errors"
	"github.com/aquamodel/watertable/pkg/log"
)

// ColumnTransformer applies an OrdinalEncoder to the categorical partition
// and a StandardScaler to the numeric partition of a feature table, and
// forwards columns in neither partition unchanged (parsed as numbers, NaN
// where unparseable).
//
// Output column layout is [categorical block][numeric block][passthrough
// block] regardless of the original column order. This reordering is a
// contract of Transform, not an accident: every consumer doing index math
// over the output must count from this layout.
type ColumnTransformer struct {
	model.BaseEstimator

	partition   dataset.ColumnPartition
	passthrough []string

	encoder *OrdinalEncoder
	scaler  *StandardScaler
}

// NewColumnTransformer creates a transformer for the given partition. The
// partition must come from the training table; reusing it for inference
// tables is what keeps the output layout, and therefore CategoricalIndices,
// stable.
func NewColumnTransformer(partition dataset.ColumnPartition) *ColumnTransformer {
	return &ColumnTransformer{
		partition: partition,
		encoder:   NewOrdinalEncoder(),
		scaler:    NewStandardScaler(),
	}
}

// CategoricalIndices returns the positions of the categorical block within
// the transformed matrix: [0, 1, ..., |categorical|-1].
//
// This is correct only because Transform emits the categorical block
// first. The original column positions of the categorical features are
// deliberately not used; after reordering they would be silently wrong.
func (ct *ColumnTransformer) CategoricalIndices() []int {
	indices := make([]int, len(ct.partition.Categorical))
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// NumOutputColumns returns the width of the transformed matrix once
// fitted: |categorical| + |numeric| + |passthrough|.
func (ct *ColumnTransformer) NumOutputColumns() int {
	return len(ct.partition.Categorical) + len(ct.partition.Numeric) + len(ct.passthrough)
}

// Fit learns the encoder categories and scaler statistics from the
// training table. Table columns outside both partitions are recorded as
// passthrough columns in table order.
func (ct *ColumnTransformer) Fit(t *dataset.Table) error {
	if t.NumRows() == 0 {
		return errors.NewModelError("ColumnTransformer.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := ct.checkSchema("ColumnTransformer.Fit", t); err != nil {
		return err
	}

	inPartition := make(map[string]bool, len(ct.partition.Categorical)+len(ct.partition.Numeric))
	for _, name := range ct.partition.Categorical {
		inPartition[name] = true
	}
	for _, name := range ct.partition.Numeric {
		inPartition[name] = true
	}
	ct.passthrough = nil
	for _, name := range t.Names() {
		if !inPartition[name] {
			ct.passthrough = append(ct.passthrough, name)
		}
	}

	if len(ct.partition.Categorical) > 0 {
		cols, err := ct.categoricalColumns(t)
		if err != nil {
			return err
		}
		if err := ct.encoder.Fit(cols); err != nil {
			return err
		}
	}

	if len(ct.partition.Numeric) > 0 {
		numeric, err := ct.numericMatrix(t)
		if err != nil {
			return err
		}
		if err := ct.scaler.Fit(numeric); err != nil {
			return err
		}
	}

	ct.SetFitted()

	logger := log.GetLoggerWithName("preprocessing")
	logger.Debug("column transformer fitted",
		"categorical", len(ct.partition.Categorical),
		"numeric", len(ct.partition.Numeric),
		"passthrough", len(ct.passthrough))
	return nil
}

// Transform produces the combined matrix for a table. The table must carry
// every fitted column; a missing column is an error rather than a silent
// index misalignment.
func (ct *ColumnTransformer) Transform(t *dataset.Table) (*mat.Dense, error) {
	if !ct.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "Transform")
	}
	if err := ct.checkSchema("ColumnTransformer.Transform", t); err != nil {
		return nil, err
	}
	if t.NumRows() == 0 {
		return nil, errors.NewModelError("ColumnTransformer.Transform", "empty data", errors.ErrEmptyData)
	}

	rows := t.NumRows()
	out := mat.NewDense(rows, ct.NumOutputColumns(), nil)
	offset := 0

	if len(ct.partition.Categorical) > 0 {
		cols, err := ct.categoricalColumns(t)
		if err != nil {
			return nil, err
		}
		encoded, err := ct.encoder.Transform(cols)
		if err != nil {
			return nil, err
		}
		for j, col := range encoded {
			for i, v := range col {
				out.Set(i, offset+j, v)
			}
		}
		offset += len(ct.partition.Categorical)
	}

	if len(ct.partition.Numeric) > 0 {
		numeric, err := ct.numericMatrix(t)
		if err != nil {
			return nil, err
		}
		scaled, err := ct.scaler.Transform(numeric)
		if err != nil {
			return nil, err
		}
		for j := range ct.partition.Numeric {
			for i := 0; i < rows; i++ {
				out.Set(i, offset+j, scaled.At(i, j))
			}
		}
		offset += len(ct.partition.Numeric)
	}

	for j, name := range ct.passthrough {
		col, err := t.Floats(name)
		if err != nil {
			return nil, err
		}
		for i, v := range col {
			out.Set(i, offset+j, v)
		}
	}

	return out, nil
}

// FitTransform fits on the table and transforms the same table.
func (ct *ColumnTransformer) FitTransform(t *dataset.Table) (*mat.Dense, error) {
	if err := ct.Fit(t); err != nil {
		return nil, err
	}
	return ct.Transform(t)
}

func (ct *ColumnTransformer) checkSchema(op string, t *dataset.Table) error {
	for _, name := range ct.partition.Categorical {
		if !t.Has(name) {
			return errors.NewSchemaError(op, name, "categorical column missing from table")
		}
	}
	for _, name := range ct.partition.Numeric {
		if !t.Has(name) {
			return errors.NewSchemaError(op, name, "numeric column missing from table")
		}
	}
	for _, name := range ct.passthrough {
		if !t.Has(name) {
			return errors.NewSchemaError(op, name, "passthrough column missing from table")
		}
	}
	return nil
}

func (ct *ColumnTransformer) categoricalColumns(t *dataset.Table) ([][]string, error) {
	cols := make([][]string, len(ct.partition.Categorical))
	for j, name := range ct.partition.Categorical {
		col, err := t.Strings(name)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	return cols, nil
}

func (ct *ColumnTransformer) numericMatrix(t *dataset.Table) (*mat.Dense, error) {
	rows := t.NumRows()
	m := mat.NewDense(rows, len(ct.partition.Numeric), nil)
	for j, name := range ct.partition.Numeric {
		col, err := t.Floats(name)
		if err != nil {
			return nil, err
		}
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m, nil
}
