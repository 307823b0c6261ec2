package boosting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stumpTree builds a single-split tree: node 0 splits, nodes 1 and 2 are
// leaves with values -1 and +1.
func stumpTree(split Node) Tree {
	split.NodeID = 0
	split.ParentID = -1
	split.LeftChild = 1
	split.RightChild = 2
	return Tree{
		NumLeaves:     2,
		ShrinkageRate: 0.5,
		Nodes: []Node{
			split,
			{NodeID: 1, ParentID: 0, LeftChild: -1, RightChild: -1, NodeType: LeafNode, LeafValue: -1},
			{NodeID: 2, ParentID: 0, LeftChild: -1, RightChild: -1, NodeType: LeafNode, LeafValue: 1},
		},
	}
}

func TestTreePredictNumericalSplit(t *testing.T) {
	tree := stumpTree(Node{NodeType: NumericalNode, SplitFeature: 0, Threshold: 5})

	// Leaf values are scaled by the shrinkage rate.
	assert.Equal(t, -0.5, tree.Predict([]float64{3}))
	assert.Equal(t, -0.5, tree.Predict([]float64{5}), "threshold itself routes left")
	assert.Equal(t, 0.5, tree.Predict([]float64{7}))
}

func TestTreePredictCategoricalSplit(t *testing.T) {
	tree := stumpTree(Node{NodeType: CategoricalNode, SplitFeature: 0, Categories: []int{0, 2}})

	assert.Equal(t, -0.5, tree.Predict([]float64{0}))
	assert.Equal(t, 0.5, tree.Predict([]float64{1}))
	assert.Equal(t, -0.5, tree.Predict([]float64{2}))
}

func TestTreePredictMissingValueDefaults(t *testing.T) {
	right := stumpTree(Node{NodeType: NumericalNode, SplitFeature: 0, Threshold: 5})
	assert.Equal(t, 0.5, right.Predict([]float64{math.NaN()}), "missing goes right by default")

	left := stumpTree(Node{NodeType: NumericalNode, SplitFeature: 0, Threshold: 5, DefaultLeft: true})
	assert.Equal(t, -0.5, left.Predict([]float64{math.NaN()}))

	cat := stumpTree(Node{NodeType: CategoricalNode, SplitFeature: 0, Categories: []int{0}})
	assert.Equal(t, 0.5, cat.Predict([]float64{math.NaN()}), "missing category goes right")
}

func TestTreePredictSingleLeaf(t *testing.T) {
	tree := Tree{
		NumLeaves:     1,
		ShrinkageRate: 1,
		Nodes: []Node{
			{NodeID: 0, ParentID: -1, LeftChild: -1, RightChild: -1, NodeType: LeafNode, LeafValue: 0.25},
		},
	}
	assert.Equal(t, 0.25, tree.Predict([]float64{42}))
}
