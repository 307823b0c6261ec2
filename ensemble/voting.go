// Package ensemble combines fitted classifiers by soft voting and manages
// the archive of pretrained models the pipeline consumes.
package ensemble

import (
	"gonum.org/v1/gonum/mat"

	"github.com/aquamodel/watertable/pkg/errors"
	"github.com/aquamodel/watertable/pkg/log"
)

// ProbabilityClassifier is the capability a voting member must provide:
// per-class probabilities for a batch, with columns ordered by ascending
// class code as reported by Classes.
type ProbabilityClassifier interface {
	PredictProba(X mat.Matrix) (mat.Matrix, error)
	Classes() []int
}

// SoftVoting averages member class probabilities with equal weight and
// predicts the class with the highest mean probability. Ties go to the
// lowest class code, the first maximum found.
type SoftVoting struct {
	members []ProbabilityClassifier
	classes []int
}

// NewSoftVoting builds a soft-voting combiner. Members must agree exactly
// on the class label set and its ordering; a mismatch would silently
// average probabilities of different classes, so it is rejected here.
func NewSoftVoting(members ...ProbabilityClassifier) (*SoftVoting, error) {
	if len(members) == 0 {
		return nil, errors.NewValueError("NewSoftVoting", "need at least one member")
	}

	classes := members[0].Classes()
	if len(classes) < 2 {
		return nil, errors.NewValueError("NewSoftVoting", "members must be fitted with at least 2 classes")
	}
	for _, member := range members[1:] {
		other := member.Classes()
		if len(other) != len(classes) {
			return nil, errors.Wrap(errors.ErrClassMismatch, "NewSoftVoting")
		}
		for i := range classes {
			if other[i] != classes[i] {
				return nil, errors.Wrap(errors.ErrClassMismatch, "NewSoftVoting")
			}
		}
	}

	return &SoftVoting{
		members: members,
		classes: classes,
	}, nil
}

// PredictProba returns the equal-weight arithmetic mean of the member
// probability matrices.
func (v *SoftVoting) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	var sum *mat.Dense
	for _, member := range v.members {
		proba, err := member.PredictProba(X)
		if err != nil {
			return nil, err
		}
		if sum == nil {
			rows, cols := proba.Dims()
			sum = mat.NewDense(rows, cols, nil)
		}
		sum.Add(sum, proba)
	}
	sum.Scale(1.0/float64(len(v.members)), sum)
	return sum, nil
}

// Predict returns the argmax class code of the averaged probabilities as
// an n×1 matrix.
func (v *SoftVoting) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := v.PredictProba(X)
	if err != nil {
		return nil, err
	}

	rows, cols := proba.Dims()
	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		bestIdx := 0
		bestProb := proba.At(i, 0)
		for k := 1; k < cols; k++ {
			if proba.At(i, k) > bestProb {
				bestProb = proba.At(i, k)
				bestIdx = k
			}
		}
		predictions.Set(i, 0, float64(v.classes[bestIdx]))
	}

	logger := log.GetLoggerWithName("ensemble")
	logger.Debug("soft vote complete",
		log.SamplesKey, rows,
		"members", len(v.members))
	return predictions, nil
}

// Classes returns the shared class codes of the members, ascending.
func (v *SoftVoting) Classes() []int {
	return append([]int(nil), v.classes...)
}

// NumMembers returns the number of voting members.
func (v *SoftVoting) NumMembers() int {
	return len(v.members)
}
