package boosting

import (
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/aquamodel/watertable/pkg/errors"
)

// Predictor scores samples against a trained Model. Rows are independent,
// so batches are predicted in parallel; the parallelism is internal and
// not observable in the output.
type Predictor struct {
	model      *Model
	numThreads int
}

// NewPredictor creates a predictor for the given model.
func NewPredictor(model *Model) *Predictor {
	return &Predictor{
		model:      model,
		numThreads: runtime.NumCPU(),
	}
}

// SetNumThreads caps the number of worker goroutines used per batch.
func (p *Predictor) SetNumThreads(n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p.numThreads = n
}

// Proba returns the per-class probability matrix for a batch, one column
// per class in the model's class order.
func (p *Predictor) Proba(X mat.Matrix) (*mat.Dense, error) {
	rows, cols := X.Dims()
	if cols != p.model.NumFeatures {
		return nil, errors.NewDimensionError("Predictor.Proba", p.model.NumFeatures, cols, 1)
	}
	if rows == 0 {
		return nil, errors.NewModelError("Predictor.Proba", "empty data", errors.ErrEmptyData)
	}

	xDense := toDense(X)
	probabilities := mat.NewDense(rows, p.model.NumClass, nil)

	numWorkers := p.numThreads
	if numWorkers > rows {
		numWorkers = rows
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	chunkSize := (rows + numWorkers - 1) / numWorkers

	var g errgroup.Group
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > rows {
			end = rows
		}
		if start >= end {
			break
		}

		g.Go(func() error {
			for i := start; i < end; i++ {
				probabilities.SetRow(i, p.probaSingle(xDense.RawRowView(i)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return probabilities, nil
}

// probaSingle accumulates the per-class raw scores of one sample and
// applies softmax.
func (p *Predictor) probaSingle(features []float64) []float64 {
	rawScores := make([]float64, p.model.NumClass)
	for i := range p.model.Trees {
		tree := &p.model.Trees[i]
		rawScores[tree.ClassIndex] += tree.Predict(features)
	}
	return stableSoftmax(rawScores)
}

func toDense(X mat.Matrix) *mat.Dense {
	if d, ok := X.(*mat.Dense); ok {
		return d
	}
	rows, cols := X.Dims()
	d := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d.Set(i, j, X.At(i, j))
		}
	}
	return d
}
