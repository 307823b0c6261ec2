package boosting

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/aquamodel/watertable/pkg/errors"
	"github.com/aquamodel/watertable/pkg/log"
)

// TrainingParams holds the training hyperparameters.
type TrainingParams struct {
	NumIterations  int     `json:"num_iterations"`
	LearningRate   float64 `json:"learning_rate"`
	NumLeaves      int     `json:"num_leaves"`
	MaxDepth       int     `json:"max_depth"`
	MinDataInLeaf  int     `json:"min_data_in_leaf"`
	Lambda         float64 `json:"lambda_l2"`
	MinGainToSplit float64 `json:"min_gain_to_split"`
	MaxBin         int     `json:"max_bin"`

	NumClass int `json:"num_class"`

	// CategoricalFeatures lists the column positions, within the training
	// matrix, to split by category membership rather than ordering.
	CategoricalFeatures []int `json:"categorical_features"`

	Verbosity int `json:"verbosity"`
}

// histogramBin accumulates gradient statistics for one bin of one feature.
type histogramBin struct {
	Count   int
	SumGrad float64
	SumHess float64
}

// splitCandidate describes a potential split of a node.
type splitCandidate struct {
	Feature    int
	Threshold  float64
	Categories []int // set for categorical splits
	Gain       float64
	LeftCount  int
	RightCount int
}

// Trainer grows the boosted ensemble. One Trainer instance serves a single
// Fit call and is not safe for concurrent use.
type Trainer struct {
	params TrainingParams

	X *mat.Dense
	y []int

	// Histogram structures, built once per Fit.
	binUpper [][]float64 // per numerical feature: upper bound per bin
	binIndex [][]int     // per feature: bin index per row, -1 for NaN
	catSet   map[int]bool

	objective *multiclassLogLoss
	rawScores []float64 // row-major, NumClass logits per sample

	// Gradient slices for the class whose tree is currently growing.
	gradients []float64
	hessians  []float64

	trees       []Tree
	lossHistory []float64
	iteration   int
}

// NewTrainer creates a trainer, filling in defaults for zero params.
func NewTrainer(params TrainingParams) *Trainer {
	if params.NumIterations == 0 {
		params.NumIterations = 100
	}
	if params.LearningRate == 0 {
		params.LearningRate = 0.1
	}
	if params.NumLeaves == 0 {
		params.NumLeaves = 31
	}
	if params.MaxBin == 0 {
		params.MaxBin = 255
	}
	if params.MinDataInLeaf == 0 {
		params.MinDataInLeaf = 20
	}
	if params.MinGainToSplit == 0 {
		params.MinGainToSplit = 1e-7
	}

	catSet := make(map[int]bool, len(params.CategoricalFeatures))
	for _, j := range params.CategoricalFeatures {
		catSet[j] = true
	}

	return &Trainer{
		params: params,
		catSet: catSet,
	}
}

// Fit trains the ensemble on X and integer class targets y.
func (t *Trainer) Fit(X *mat.Dense, y []int) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("Trainer.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != rows {
		return errors.NewDimensionError("Trainer.Fit", rows, len(y), 0)
	}
	if t.params.NumClass < 2 {
		return errors.NewValueError("Trainer.Fit", "NumClass must be at least 2")
	}
	for _, j := range t.params.CategoricalFeatures {
		if j < 0 || j >= cols {
			return errors.Newf("Trainer.Fit: categorical feature index %d out of range [0, %d)", j, cols)
		}
	}

	t.X = X
	t.y = y
	t.objective = newMulticlassLogLoss(t.params.NumClass)
	t.rawScores = make([]float64, rows*t.params.NumClass)
	t.gradients = make([]float64, rows)
	t.hessians = make([]float64, rows)

	t.buildHistogramBins()

	logger := log.GetLoggerWithName("boosting.trainer")
	for iter := 0; iter < t.params.NumIterations; iter++ {
		t.iteration = iter

		gradients, hessians := t.objective.gradientsAndHessians(t.y, t.rawScores)

		for k := 0; k < t.params.NumClass; k++ {
			for i := 0; i < rows; i++ {
				t.gradients[i] = gradients[i*t.params.NumClass+k]
				t.hessians[i] = hessians[i*t.params.NumClass+k]
			}

			tree := t.buildTree(k)
			t.trees = append(t.trees, tree)

			for i := 0; i < rows; i++ {
				t.rawScores[i*t.params.NumClass+k] += tree.Predict(t.rowFeatures(i))
			}
		}

		loss := t.objective.loss(t.y, t.rawScores)
		t.lossHistory = append(t.lossHistory, loss)

		if t.params.Verbosity > 0 && iter%10 == 0 {
			logger.Debug("training progress", "iteration", iter, "loss", loss)
		}
	}

	return nil
}

// buildHistogramBins finds equal-frequency bin boundaries for every
// numerical feature and precomputes per-row bin indices.
func (t *Trainer) buildHistogramBins() {
	rows, cols := t.X.Dims()

	t.binUpper = make([][]float64, cols)
	t.binIndex = make([][]int, cols)

	for j := 0; j < cols; j++ {
		if t.catSet[j] {
			continue
		}

		values := make([]float64, 0, rows)
		for i := 0; i < rows; i++ {
			v := t.X.At(i, j)
			if !math.IsNaN(v) {
				values = append(values, v)
			}
		}
		upper := t.findBinUpperBounds(values)
		t.binUpper[j] = upper

		index := make([]int, rows)
		for i := 0; i < rows; i++ {
			v := t.X.At(i, j)
			if math.IsNaN(v) {
				index[i] = -1
				continue
			}
			index[i] = sort.SearchFloat64s(upper, v)
			if index[i] >= len(upper) {
				index[i] = len(upper) - 1
			}
		}
		t.binIndex[j] = index
	}
}

// findBinUpperBounds returns the ascending upper bound of each bin. With
// fewer unique values than MaxBin every value gets its own bin; otherwise
// bins hold roughly equal numbers of unique values.
func (t *Trainer) findBinUpperBounds(values []float64) []float64 {
	if len(values) == 0 {
		return []float64{0}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	unique := []float64{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			unique = append(unique, sorted[i])
		}
	}

	if len(unique) <= t.params.MaxBin {
		return unique
	}

	binSize := len(unique) / t.params.MaxBin
	var upper []float64
	for i := binSize; i < len(unique); i += binSize {
		upper = append(upper, (unique[i-1]+unique[i])/2)
	}
	upper = append(upper, unique[len(unique)-1])
	return upper
}

// rowFeatures extracts one row of the training matrix.
func (t *Trainer) rowFeatures(i int) []float64 {
	return t.X.RawRowView(i)
}

// buildTree grows one tree for the given class on the current gradients.
func (t *Trainer) buildTree(classIndex int) Tree {
	tree := Tree{
		TreeIndex:     t.iteration,
		ClassIndex:    classIndex,
		ShrinkageRate: t.params.LearningRate,
		Nodes:         []Node{},
	}

	rows, _ := t.X.Dims()
	rootIndices := make([]int, rows)
	for i := 0; i < rows; i++ {
		rootIndices[i] = i
	}

	t.buildNode(&tree, rootIndices, -1, 0)
	tree.NumLeaves = countLeaves(&tree)
	return tree
}

// buildNode recursively grows tree nodes, returning the new node's index.
func (t *Trainer) buildNode(tree *Tree, indices []int, parentIdx, depth int) int {
	nodeIdx := len(tree.Nodes)

	numLeaves := countLeaves(tree)
	if (t.params.MaxDepth > 0 && depth >= t.params.MaxDepth) ||
		len(indices) < 2*t.params.MinDataInLeaf ||
		(t.params.NumLeaves > 0 && numLeaves >= t.params.NumLeaves-1) {
		return t.appendLeaf(tree, indices, parentIdx)
	}

	best := t.findBestSplit(indices)
	if best.Gain < t.params.MinGainToSplit {
		return t.appendLeaf(tree, indices, parentIdx)
	}

	nodeType := NumericalNode
	if t.catSet[best.Feature] {
		nodeType = CategoricalNode
	}
	tree.Nodes = append(tree.Nodes, Node{
		NodeID:       nodeIdx,
		ParentID:     parentIdx,
		NodeType:     nodeType,
		SplitFeature: best.Feature,
		Threshold:    best.Threshold,
		Categories:   best.Categories,
		Gain:         best.Gain,
		LeftChild:    -1,
		RightChild:   -1,
	})

	leftIndices, rightIndices := t.splitData(indices, best)

	leftChild := t.buildNode(tree, leftIndices, nodeIdx, depth+1)
	rightChild := t.buildNode(tree, rightIndices, nodeIdx, depth+1)
	tree.Nodes[nodeIdx].LeftChild = leftChild
	tree.Nodes[nodeIdx].RightChild = rightChild
	return nodeIdx
}

func (t *Trainer) appendLeaf(tree *Tree, indices []int, parentIdx int) int {
	nodeIdx := len(tree.Nodes)
	tree.Nodes = append(tree.Nodes, Node{
		NodeID:     nodeIdx,
		ParentID:   parentIdx,
		NodeType:   LeafNode,
		LeafValue:  t.calculateLeafValue(indices),
		LeafCount:  len(indices),
		LeftChild:  -1,
		RightChild: -1,
	})
	return nodeIdx
}

// findBestSplit evaluates every feature and returns the highest-gain
// candidate for the node.
func (t *Trainer) findBestSplit(indices []int) splitCandidate {
	_, cols := t.X.Dims()
	best := splitCandidate{Gain: -math.MaxFloat64}

	for j := 0; j < cols; j++ {
		var split splitCandidate
		if t.catSet[j] {
			split = t.findBestCategoricalSplit(indices, j)
		} else {
			split = t.findBestHistogramSplit(indices, j)
		}
		if split.Gain > best.Gain {
			best = split
		}
	}
	return best
}

// findBestHistogramSplit accumulates gradient statistics per histogram bin
// and scans bin boundaries as candidate thresholds. Samples with a missing
// value carry no bin and implicitly route right at the split.
func (t *Trainer) findBestHistogramSplit(indices []int, feature int) splitCandidate {
	upper := t.binUpper[feature]
	binIdx := t.binIndex[feature]

	bins := make([]histogramBin, len(upper))
	totalGrad := 0.0
	totalHess := 0.0
	for _, idx := range indices {
		totalGrad += t.gradients[idx]
		totalHess += t.hessians[idx]
		b := binIdx[idx]
		if b < 0 {
			continue
		}
		bins[b].Count++
		bins[b].SumGrad += t.gradients[idx]
		bins[b].SumHess += t.hessians[idx]
	}

	best := splitCandidate{Feature: feature, Gain: -math.MaxFloat64}

	leftGrad := 0.0
	leftHess := 0.0
	leftCount := 0
	for b := 0; b < len(bins)-1; b++ {
		if bins[b].Count == 0 {
			continue
		}
		leftGrad += bins[b].SumGrad
		leftHess += bins[b].SumHess
		leftCount += bins[b].Count

		rightCount := len(indices) - leftCount
		if leftCount < t.params.MinDataInLeaf || rightCount < t.params.MinDataInLeaf {
			continue
		}

		rightGrad := totalGrad - leftGrad
		rightHess := totalHess - leftHess
		gain := t.calculateSplitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess)
		if gain > best.Gain {
			best.Gain = gain
			best.Threshold = upper[b]
			best.LeftCount = leftCount
			best.RightCount = rightCount
		}
	}
	return best
}

// findBestCategoricalSplit orders categories by their gradient-to-hessian
// ratio and scans prefixes of that ordering as candidate left sets. This is
// the LightGBM many-vs-many categorical strategy.
func (t *Trainer) findBestCategoricalSplit(indices []int, feature int) splitCandidate {
	type catStats struct {
		category int
		count    int
		sumGrad  float64
		sumHess  float64
	}

	stats := make(map[int]*catStats)
	totalGrad := 0.0
	totalHess := 0.0
	for _, idx := range indices {
		totalGrad += t.gradients[idx]
		totalHess += t.hessians[idx]

		v := t.X.At(idx, feature)
		if math.IsNaN(v) {
			continue // missing values route right, like numerical splits
		}
		category := int(math.Round(v))
		s, ok := stats[category]
		if !ok {
			s = &catStats{category: category}
			stats[category] = s
		}
		s.count++
		s.sumGrad += t.gradients[idx]
		s.sumHess += t.hessians[idx]
	}

	ordered := make([]*catStats, 0, len(stats))
	for _, s := range stats {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(a, b int) bool {
		ratioA := ordered[a].sumGrad / (ordered[a].sumHess + t.params.Lambda)
		ratioB := ordered[b].sumGrad / (ordered[b].sumHess + t.params.Lambda)
		if ratioA == ratioB {
			return ordered[a].category < ordered[b].category
		}
		return ratioA < ratioB
	})

	best := splitCandidate{Feature: feature, Gain: -math.MaxFloat64}

	leftGrad := 0.0
	leftHess := 0.0
	leftCount := 0
	for i := 0; i < len(ordered)-1; i++ {
		leftGrad += ordered[i].sumGrad
		leftHess += ordered[i].sumHess
		leftCount += ordered[i].count

		rightCount := len(indices) - leftCount
		if leftCount < t.params.MinDataInLeaf || rightCount < t.params.MinDataInLeaf {
			continue
		}

		rightGrad := totalGrad - leftGrad
		rightHess := totalHess - leftHess
		gain := t.calculateSplitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess)
		if gain > best.Gain {
			categories := make([]int, i+1)
			for c := 0; c <= i; c++ {
				categories[c] = ordered[c].category
			}
			sort.Ints(categories)

			best.Gain = gain
			best.Categories = categories
			best.LeftCount = leftCount
			best.RightCount = rightCount
		}
	}
	return best
}

// calculateSplitGain applies the LightGBM split gain formula with L2
// regularization.
func (t *Trainer) calculateSplitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	lambda := t.params.Lambda

	leftScore := (leftGrad * leftGrad) / (leftHess + lambda)
	rightScore := (rightGrad * rightGrad) / (rightHess + lambda)
	totalScore := (totalGrad * totalGrad) / (totalHess + lambda)

	return 0.5 * (leftScore + rightScore - totalScore)
}

// splitData partitions node samples by the chosen split. NaN comparisons
// are false, so missing values land on the right side for both split
// types, matching Tree.Predict's default direction.
func (t *Trainer) splitData(indices []int, split splitCandidate) ([]int, []int) {
	var leftIndices, rightIndices []int

	if split.Categories != nil {
		leftCats := make(map[int]bool, len(split.Categories))
		for _, cat := range split.Categories {
			leftCats[cat] = true
		}
		for _, idx := range indices {
			v := t.X.At(idx, split.Feature)
			if !math.IsNaN(v) && leftCats[int(math.Round(v))] {
				leftIndices = append(leftIndices, idx)
			} else {
				rightIndices = append(rightIndices, idx)
			}
		}
		return leftIndices, rightIndices
	}

	for _, idx := range indices {
		if t.X.At(idx, split.Feature) <= split.Threshold {
			leftIndices = append(leftIndices, idx)
		} else {
			rightIndices = append(rightIndices, idx)
		}
	}
	return leftIndices, rightIndices
}

// calculateLeafValue computes the regularized optimal leaf value.
func (t *Trainer) calculateLeafValue(indices []int) float64 {
	sumGrad := 0.0
	sumHess := 0.0
	for _, idx := range indices {
		sumGrad += t.gradients[idx]
		sumHess += t.hessians[idx]
	}

	epsilon := 1e-10
	if math.Abs(sumHess) < epsilon {
		sumHess = epsilon
	}
	return -sumGrad / (sumHess + t.params.Lambda + epsilon)
}

func countLeaves(tree *Tree) int {
	count := 0
	for _, node := range tree.Nodes {
		if node.NodeType == LeafNode {
			count++
		}
	}
	return count
}

// GetModel returns the trained ensemble.
func (t *Trainer) GetModel() *Model {
	model := NewModel()
	model.Trees = t.trees
	model.NumIteration = len(t.lossHistory)
	model.NumClass = t.params.NumClass
	model.NumFeatures = t.X.RawMatrix().Cols
	model.LearningRate = t.params.LearningRate
	model.CategoricalFeatures = append([]int(nil), t.params.CategoricalFeatures...)
	model.LossHistory = append([]float64(nil), t.lossHistory...)
	return model
}
