// Package preprocessing provides the transformers the pipeline fits on the
// training table: standard scaling for numeric columns, ordinal encoding
// for categorical columns and labels, and the column transformer that
// combines them into one matrix with a categorical-block-first layout.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aquamodel/watertable/core/model"
	"github.com/aquamodel/watertable/pkg/errors"
)

var _ model.Transformer = (*StandardScaler)(nil)

// StandardScaler transforms data to zero mean and unit variance per
// feature.
type StandardScaler struct {
	model.BaseEstimator

	// Mean holds the per-feature mean learned at fit time.
	Mean []float64

	// Scale holds the per-feature standard deviation. Near-constant
	// features get scale 1 to avoid division by zero.
	Scale []float64

	// NFeatures is the number of features seen at fit time.
	NFeatures int
}

// NewStandardScaler creates an unfitted StandardScaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes per-feature mean and standard deviation from training data.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	// Statistics ignore NaN cells; a NaN input stays NaN after Transform
	// and is handled downstream as a missing value.
	for j := 0; j < c; j++ {
		sum := 0.0
		n := 0
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
		if n > 0 {
			s.Mean[j] = sum / float64(n)
		}
	}

	for j := 0; j < c; j++ {
		sumSquares := 0.0
		n := 0
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			diff := v - s.Mean[j]
			sumSquares += diff * diff
			n++
		}
		if n > 0 {
			s.Scale[j] = math.Sqrt(sumSquares / float64(n))
		}
		if math.Abs(s.Scale[j]) < 1e-8 {
			s.Scale[j] = 1.0
		}
	}

	s.SetFitted()
	return nil
}

// Transform standardizes data using the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return result, nil
}

// FitTransform fits on X and transforms the same data.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// String returns a short description of the scaler.
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return "StandardScaler()"
	}
	return fmt.Sprintf("StandardScaler(n_features=%d)", s.NFeatures)
}
