// Package model defines the estimator base type and the fit/transform/predict
// interfaces shared by preprocessing and boosting components.
package model

// EstimatorState tracks whether an estimator has been fitted.
type EstimatorState int

const (
	// NotFitted is the initial state of every estimator.
	NotFitted EstimatorState = iota
	// Fitted means Fit has completed successfully.
	Fitted
)

// BaseEstimator is embedded by every estimator to carry fitted state.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to the unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
