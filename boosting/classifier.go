package boosting

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/aquamodel/watertable/core/model"
	"github.com/aquamodel/watertable/metrics"
	wterrors "github.com/aquamodel/watertable/pkg/errors"
	"github.com/aquamodel/watertable/pkg/log"
)

// Classifier satisfies the shared estimator capability interfaces.
var (
	_ model.Classifier  = (*Classifier)(nil)
	_ model.Persistable = (*Classifier)(nil)
)

// Classifier is a histogram gradient-boosted tree classifier with a
// scikit-learn-shaped API. Targets are integer class codes; probability
// columns are ordered by ascending class code.
type Classifier struct {
	model.BaseEstimator

	// Model and Predictor are populated by Fit or Load.
	Model     *Model
	Predictor *Predictor

	// Hyperparameters
	NumLeaves       int
	MaxDepth        int
	LearningRate    float64
	NumIterations   int
	MinChildSamples int
	RegLambda       float64
	MaxBin          int
	NumThreads      int
	Verbosity       int

	// CategoricalFeatures lists the column positions to treat as
	// categorical when building split points. Positions refer to the
	// matrix passed to Fit, after any preprocessing reordering.
	CategoricalFeatures []int

	nFeatures_ int
	classes_   []int
	nClasses_  int
}

// NewClassifier creates a classifier with default hyperparameters.
func NewClassifier() *Classifier {
	return &Classifier{
		NumLeaves:       31,
		MaxDepth:        -1,
		LearningRate:    0.1,
		NumIterations:   100,
		MinChildSamples: 20,
		RegLambda:       0.0,
		MaxBin:          255,
		NumThreads:      -1,
		Verbosity:       -1,
	}
}

// WithNumIterations sets the number of boosting iterations.
func (c *Classifier) WithNumIterations(n int) *Classifier {
	c.NumIterations = n
	return c
}

// WithLearningRate sets the boosting learning rate.
func (c *Classifier) WithLearningRate(lr float64) *Classifier {
	c.LearningRate = lr
	return c
}

// WithMaxDepth sets the maximum tree depth.
func (c *Classifier) WithMaxDepth(d int) *Classifier {
	c.MaxDepth = d
	return c
}

// WithNumLeaves sets the maximum number of leaves per tree.
func (c *Classifier) WithNumLeaves(n int) *Classifier {
	c.NumLeaves = n
	return c
}

// WithMinChildSamples sets the minimum number of samples per leaf.
func (c *Classifier) WithMinChildSamples(n int) *Classifier {
	c.MinChildSamples = n
	return c
}

// WithCategoricalFeatures sets the categorical column positions.
func (c *Classifier) WithCategoricalFeatures(indices []int) *Classifier {
	c.CategoricalFeatures = append([]int(nil), indices...)
	return c
}

// Fit trains the classifier. y is an n×1 matrix of integer class codes.
func (c *Classifier) Fit(X, y mat.Matrix) (err error) {
	defer wterrors.Recover(&err, "Classifier.Fit")

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows != yRows {
		return wterrors.NewDimensionError("Classifier.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return wterrors.NewDimensionError("Classifier.Fit", 1, yCols, 1)
	}

	c.nFeatures_ = cols

	// Extract the class set and map codes to contiguous indices.
	seen := make(map[int]bool)
	targets := make([]int, rows)
	for i := 0; i < rows; i++ {
		v := y.At(i, 0)
		code := int(math.Round(v))
		if math.IsNaN(v) || float64(code) != v {
			return wterrors.NewValueError("Classifier.Fit", "targets must be integer class codes")
		}
		targets[i] = code
		seen[code] = true
	}
	c.classes_ = make([]int, 0, len(seen))
	for code := range seen {
		c.classes_ = append(c.classes_, code)
	}
	sort.Ints(c.classes_)
	c.nClasses_ = len(c.classes_)
	if c.nClasses_ < 2 {
		return wterrors.NewValueError("Classifier.Fit", "need at least 2 classes")
	}

	classIndex := make(map[int]int, c.nClasses_)
	for idx, code := range c.classes_ {
		classIndex[code] = idx
	}
	for i := range targets {
		targets[i] = classIndex[targets[i]]
	}

	logger := log.GetLoggerWithName("boosting.classifier")
	logger.Info("training classifier",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		"classes", c.nClasses_,
		"categorical_features", len(c.CategoricalFeatures))

	trainer := NewTrainer(TrainingParams{
		NumIterations:       c.NumIterations,
		LearningRate:        c.LearningRate,
		NumLeaves:           c.NumLeaves,
		MaxDepth:            c.MaxDepth,
		MinDataInLeaf:       c.MinChildSamples,
		Lambda:              c.RegLambda,
		MaxBin:              c.MaxBin,
		NumClass:            c.nClasses_,
		CategoricalFeatures: c.CategoricalFeatures,
		Verbosity:           c.Verbosity,
	})
	if err := trainer.Fit(toDense(X), targets); err != nil {
		return wterrors.Wrap(err, "training failed")
	}

	c.Model = trainer.GetModel()
	c.Model.ClassValues = append([]int(nil), c.classes_...)
	c.Predictor = NewPredictor(c.Model)
	if c.NumThreads > 0 {
		c.Predictor.SetNumThreads(c.NumThreads)
	}

	c.SetFitted()
	return nil
}

// Predict returns the argmax class code for each row as an n×1 matrix.
func (c *Classifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !c.IsFitted() {
		return nil, wterrors.NewNotFittedError("Classifier", "Predict")
	}

	proba, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}

	rows, _ := proba.Dims()
	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		bestIdx := 0
		bestProb := proba.At(i, 0)
		for k := 1; k < c.nClasses_; k++ {
			if proba.At(i, k) > bestProb {
				bestProb = proba.At(i, k)
				bestIdx = k
			}
		}
		predictions.Set(i, 0, float64(c.classes_[bestIdx]))
	}
	return predictions, nil
}

// PredictProba returns per-class probabilities, one column per class in
// ascending class code order.
func (c *Classifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !c.IsFitted() {
		return nil, wterrors.NewNotFittedError("Classifier", "PredictProba")
	}

	_, cols := X.Dims()
	if cols != c.nFeatures_ {
		return nil, wterrors.NewDimensionError("Classifier.PredictProba", c.nFeatures_, cols, 1)
	}

	return c.Predictor.Proba(X)
}

// Score returns the accuracy on the provided data. When called with the
// training matrix this is a training-set score, not a held-out estimate.
func (c *Classifier) Score(X, y mat.Matrix) (float64, error) {
	if !c.IsFitted() {
		return 0, wterrors.NewNotFittedError("Classifier", "Score")
	}

	predictions, err := c.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Classes returns the class codes seen during fitting, ascending.
func (c *Classifier) Classes() []int {
	return append([]int(nil), c.classes_...)
}

// LossHistory returns the per-iteration training loss recorded by Fit.
func (c *Classifier) LossHistory() []float64 {
	if c.Model == nil {
		return nil
	}
	return append([]float64(nil), c.Model.LossHistory...)
}
