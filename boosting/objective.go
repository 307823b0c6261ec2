package boosting

import "math"

// multiclassLogLoss implements softmax cross-entropy gradients and the
// diagonal hessian approximation used by LightGBM-style boosting.
type multiclassLogLoss struct {
	numClasses int
}

func newMulticlassLogLoss(numClasses int) *multiclassLogLoss {
	return &multiclassLogLoss{numClasses: numClasses}
}

// stableSoftmax computes softmax with the max-subtraction trick.
func stableSoftmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, logit := range logits[1:] {
		if logit > maxLogit {
			maxLogit = logit
		}
	}

	expSum := 0.0
	probabilities := make([]float64, len(logits))
	for i, logit := range logits {
		probabilities[i] = math.Exp(logit - maxLogit)
		expSum += probabilities[i]
	}
	if expSum > 0 {
		for i := range probabilities {
			probabilities[i] /= expSum
		}
	}
	return probabilities
}

// gradientsAndHessians computes per-class gradients and hessians for every
// sample. yTrue holds class indices; rawScores is row-major with
// numClasses logits per sample. Outputs use the same layout.
func (m *multiclassLogLoss) gradientsAndHessians(yTrue []int, rawScores []float64) (gradients, hessians []float64) {
	numSamples := len(yTrue)
	gradients = make([]float64, numSamples*m.numClasses)
	hessians = make([]float64, numSamples*m.numClasses)

	for i := 0; i < numSamples; i++ {
		probabilities := stableSoftmax(rawScores[i*m.numClasses : (i+1)*m.numClasses])

		trueClass := yTrue[i]
		for k := 0; k < m.numClasses; k++ {
			prob := probabilities[k]

			// Gradient: p_k - y_k, y_k being the one-hot target.
			if k == trueClass {
				gradients[i*m.numClasses+k] = prob - 1.0
			} else {
				gradients[i*m.numClasses+k] = prob
			}

			// Hessian: p_k * (1 - p_k), diagonal approximation.
			hessian := prob * (1.0 - prob)
			if hessian < 1e-16 {
				hessian = 1e-16
			}
			hessians[i*m.numClasses+k] = hessian
		}
	}
	return gradients, hessians
}

// loss computes the mean cross-entropy over all samples.
func (m *multiclassLogLoss) loss(yTrue []int, rawScores []float64) float64 {
	numSamples := len(yTrue)
	totalLoss := 0.0

	for i := 0; i < numSamples; i++ {
		logits := rawScores[i*m.numClasses : (i+1)*m.numClasses]

		maxLogit := logits[0]
		for _, logit := range logits[1:] {
			if logit > maxLogit {
				maxLogit = logit
			}
		}
		logSumExp := 0.0
		for _, logit := range logits {
			logSumExp += math.Exp(logit - maxLogit)
		}
		logSumExp = math.Log(logSumExp) + maxLogit

		totalLoss += -(logits[yTrue[i]] - logSumExp)
	}
	return totalLoss / float64(numSamples)
}
