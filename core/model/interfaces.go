package model

import (
	"gonum.org/v1/gonum/mat"
)

// Transformer is the interface for fitted preprocessing steps.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Predictor is the interface for models that produce predictions.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute a score on
// provided data.
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Classifier combines the capabilities of a fitted classification model.
// PredictProba returns one column per class, ordered by ascending class
// code as reported by Classes.
type Classifier interface {
	Predictor
	Scorer

	PredictProba(X mat.Matrix) (mat.Matrix, error)
	Classes() []int
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	Save(path string) error
	Load(path string) error
}
