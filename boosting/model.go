// Package boosting implements a histogram-based gradient-boosted tree
// classifier. Trees grow on softmax cross-entropy gradients, one tree per
// class per boosting iteration, with split points found on histogram bins.
// Features can be declared categorical by transformed-matrix position, in
// which case trees split on category-set membership instead of thresholds.
package boosting

import "math"

// NodeType represents the type of a tree node.
type NodeType int

const (
	// LeafNode is a terminal node with a value.
	LeafNode NodeType = iota
	// NumericalNode splits on a threshold comparison.
	NumericalNode
	// CategoricalNode splits on category-set membership.
	CategoricalNode
)

// Node is a single node in a decision tree.
type Node struct {
	NodeID     int      `json:"node_id"`
	ParentID   int      `json:"parent_id"`
	LeftChild  int      `json:"left_child"`  // -1 if leaf
	RightChild int      `json:"right_child"` // -1 if leaf
	NodeType   NodeType `json:"node_type"`

	// Split information (non-leaf nodes)
	SplitFeature int     `json:"split_feature"`
	Threshold    float64 `json:"threshold"`
	Categories   []int   `json:"categories,omitempty"` // categories routed left
	DefaultLeft  bool    `json:"default_left"`         // direction for missing values
	Gain         float64 `json:"gain"`

	// Leaf information
	LeafValue float64 `json:"leaf_value"`
	LeafCount int     `json:"leaf_count"`
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// Tree is a single decision tree in the ensemble.
type Tree struct {
	TreeIndex     int     `json:"tree_index"`
	ClassIndex    int     `json:"class_index"` // which class this tree scores
	NumLeaves     int     `json:"num_leaves"`
	ShrinkageRate float64 `json:"shrinkage_rate"`
	Nodes         []Node  `json:"nodes"`
}

// Predict routes a sample through the tree and returns the shrunk leaf
// value. A NaN feature value follows the node's default direction.
func (t *Tree) Predict(features []float64) float64 {
	nodeID := 0
	for nodeID >= 0 && nodeID < len(t.Nodes) {
		node := &t.Nodes[nodeID]

		if node.IsLeaf() {
			return node.LeafValue * t.ShrinkageRate
		}

		featureValue := features[node.SplitFeature]
		if math.IsNaN(featureValue) {
			if node.DefaultLeft {
				nodeID = node.LeftChild
			} else {
				nodeID = node.RightChild
			}
			continue
		}

		switch node.NodeType {
		case NumericalNode:
			if featureValue <= node.Threshold {
				nodeID = node.LeftChild
			} else {
				nodeID = node.RightChild
			}
		case CategoricalNode:
			inCategories := false
			intValue := int(math.Round(featureValue))
			for _, cat := range node.Categories {
				if intValue == cat {
					inCategories = true
					break
				}
			}
			if inCategories {
				nodeID = node.LeftChild
			} else {
				nodeID = node.RightChild
			}
		default:
			return 0.0
		}
	}
	return 0.0
}

// Model is a trained boosted-tree ensemble. Trees are stored iteration by
// iteration, one tree per class within each iteration.
type Model struct {
	NumClass            int       `json:"num_class"`
	NumIteration        int       `json:"num_iteration"`
	NumFeatures         int       `json:"num_features"`
	LearningRate        float64   `json:"learning_rate"`
	ClassValues         []int     `json:"class_values"` // ascending class codes
	CategoricalFeatures []int     `json:"categorical_features,omitempty"`
	Trees               []Tree    `json:"trees"`
	LossHistory         []float64 `json:"loss_history,omitempty"`
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		Trees: make([]Tree, 0),
	}
}
