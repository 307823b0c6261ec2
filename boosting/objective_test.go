package boosting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStableSoftmax(t *testing.T) {
	probs := stableSoftmax([]float64{0, 0, 0})
	for _, p := range probs {
		assert.InDelta(t, 1.0/3.0, p, 1e-12)
	}

	// Large logits must not overflow.
	probs = stableSoftmax([]float64{1000, 999, 998})
	sum := 0.0
	for _, p := range probs {
		assert.False(t, math.IsNaN(p))
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Greater(t, probs[0], probs[1])
}

func TestGradientsSumToZeroPerSample(t *testing.T) {
	obj := newMulticlassLogLoss(3)
	gradients, hessians := obj.gradientsAndHessians(
		[]int{0, 2},
		[]float64{0.5, -0.2, 0.1, 1.0, 0.0, -1.0},
	)

	// Softmax probabilities sum to one, so per-sample gradients over the
	// classes sum to zero.
	for i := 0; i < 2; i++ {
		sum := 0.0
		for k := 0; k < 3; k++ {
			sum += gradients[i*3+k]
		}
		assert.InDelta(t, 0.0, sum, 1e-12, "sample %d", i)
	}

	// The true-class gradient is negative, the rest positive.
	assert.Less(t, gradients[0], 0.0)
	assert.Greater(t, gradients[1], 0.0)
	assert.Less(t, gradients[5], 0.0)

	for _, h := range hessians {
		assert.Greater(t, h, 0.0)
	}
}

func TestLossAtUniformScores(t *testing.T) {
	obj := newMulticlassLogLoss(3)
	loss := obj.loss([]int{0, 1, 2}, make([]float64, 9))
	assert.InDelta(t, math.Log(3), loss, 1e-12)
}

func TestLossDropsWithConfidence(t *testing.T) {
	obj := newMulticlassLogLoss(2)
	uniform := obj.loss([]int{0}, []float64{0, 0})
	confident := obj.loss([]int{0}, []float64{5, -5})
	assert.Less(t, confident, uniform)
}
