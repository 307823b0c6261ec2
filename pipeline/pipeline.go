// Package pipeline wires the stages of a run into one explicit sequence:
// load, partition, transform, fit, score, vote, write. Each stage is a
// blocking call on the caller's goroutine; any error aborts the run.
package pipeline

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/aquamodel/watertable/boosting"
	"github.com/aquamodel/watertable/dataset"
	"github.com/aquamodel/watertable/ensemble"
	"github.com/aquamodel/watertable/pkg/errors"
	"github.com/aquamodel/watertable/pkg/log"
	"github.com/aquamodel/watertable/preprocessing"
	"github.com/aquamodel/watertable/report"
	"github.com/aquamodel/watertable/submission"
)

// Config holds the inputs and hyperparameters of one run.
type Config struct {
	TrainPath   string // training feature table
	LabelsPath  string // identifier + label table, row-aligned with TrainPath
	TestPath    string // inference feature table, must carry an id column
	ArchivePath string // optional archive of pretrained classifiers
	OutputPath  string // submission destination, overwritten

	LossCurvePath string // optional PNG of training loss, empty to skip

	NumIterations   int
	LearningRate    float64
	MaxDepth        int
	NumLeaves       int
	MinChildSamples int
}

// Result summarizes a completed run.
type Result struct {
	TrainAccuracy float64
	NumMembers    int
	RowsWritten   int
}

// Run executes the pipeline once. The fitted transformer and classifier
// live for the duration of the call and are owned by this goroutine.
func Run(cfg Config) (*Result, error) {
	logger := log.GetLoggerWithName("pipeline")

	trainTable, err := dataset.Load(cfg.TrainPath)
	if err != nil {
		return nil, err
	}
	labelIDs, labels, err := dataset.LoadLabels(cfg.LabelsPath)
	if err != nil {
		return nil, err
	}
	if len(labels) != trainTable.NumRows() {
		return nil, errors.NewDimensionError("pipeline.Run", trainTable.NumRows(), len(labels), 0)
	}

	// Labels align with features by row order, not by join. When the
	// feature table carries the identifier column too, verify the order
	// actually matches before trusting it.
	if trainTable.Has(submission.IDColumn) {
		trainIDs, err := trainTable.Strings(submission.IDColumn)
		if err != nil {
			return nil, err
		}
		for i := range trainIDs {
			if trainIDs[i] != labelIDs[i] {
				return nil, errors.Newf("pipeline.Run: feature row %d has id %s but label row has id %s", i, trainIDs[i], labelIDs[i])
			}
		}
	}

	features := trainTable.Drop(submission.IDColumn)

	// The partition is derived once, from the training table only. The
	// inference table is never re-partitioned: its inferred types may
	// differ, which would silently shift the categorical block.
	partition := features.Partition()
	logger.Info("columns partitioned",
		"categorical", len(partition.Categorical),
		"numeric", len(partition.Numeric))

	transformer := preprocessing.NewColumnTransformer(partition)
	xTrain, err := transformer.FitTransform(features)
	if err != nil {
		return nil, err
	}
	categoricalIndices := transformer.CategoricalIndices()

	labelEncoder := preprocessing.NewLabelEncoder()
	codes, err := labelEncoder.FitTransform(labels)
	if err != nil {
		return nil, err
	}
	yTrain := mat.NewDense(len(codes), 1, nil)
	for i, code := range codes {
		yTrain.Set(i, 0, float64(code))
	}

	classifier := boosting.NewClassifier().
		WithNumIterations(cfg.NumIterations).
		WithLearningRate(cfg.LearningRate).
		WithMaxDepth(cfg.MaxDepth).
		WithNumLeaves(cfg.NumLeaves).
		WithMinChildSamples(cfg.MinChildSamples).
		WithCategoricalFeatures(categoricalIndices)
	if err := classifier.Fit(xTrain, yTrain); err != nil {
		return nil, err
	}

	// Accuracy on the data the model was fit on. A sanity check, not a
	// generalization estimate.
	trainAccuracy, err := classifier.Score(xTrain, yTrain)
	if err != nil {
		return nil, err
	}
	logger.Info("classifier trained",
		log.AccuracyKey, trainAccuracy,
		"scored_on", "training data")

	members := []ensemble.ProbabilityClassifier{classifier}
	if cfg.ArchivePath != "" {
		archived, err := ensemble.LoadArchive(cfg.ArchivePath)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(archived))
		for name := range archived {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			members = append(members, archived[name])
		}
	}

	voter, err := ensemble.NewSoftVoting(members...)
	if err != nil {
		return nil, err
	}

	testTable, err := dataset.Load(cfg.TestPath)
	if err != nil {
		return nil, err
	}
	if !testTable.Has(submission.IDColumn) {
		return nil, errors.NewSchemaError("pipeline.Run", submission.IDColumn, "inference table has no identifier column")
	}
	testIDs, err := testTable.Strings(submission.IDColumn)
	if err != nil {
		return nil, err
	}

	xTest, err := transformer.Transform(testTable.Drop(submission.IDColumn))
	if err != nil {
		return nil, err
	}

	predictions, err := voter.Predict(xTest)
	if err != nil {
		return nil, err
	}
	rows, _ := predictions.Dims()
	predictedCodes := make([]int, rows)
	for i := 0; i < rows; i++ {
		predictedCodes[i] = int(predictions.At(i, 0))
	}
	predictedLabels, err := labelEncoder.InverseTransform(predictedCodes)
	if err != nil {
		return nil, err
	}

	if err := submission.Write(cfg.OutputPath, testIDs, predictedLabels); err != nil {
		return nil, err
	}

	if cfg.LossCurvePath != "" {
		if err := report.LossCurve(classifier.LossHistory(), cfg.LossCurvePath); err != nil {
			return nil, err
		}
	}

	return &Result{
		TrainAccuracy: trainAccuracy,
		NumMembers:    voter.NumMembers(),
		RowsWritten:   rows,
	}, nil
}
