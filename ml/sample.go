package ml

import (
	"fmt"
	"os"
)

// Sample load types, in encoder order.
var SampleClasses = []string{"Light_Load", "Maximum_Load", "Medium_Load"}

// SampleArtifacts returns a small hand-written bundle with the production
// schema. It lets the dashboard run without the training pipeline's exports.
func SampleArtifacts() (reg, cls PipelineArtifact, classes []string) {
	names := FeatureNames()
	pre := Preprocess{
		Categorical: []OneHotEncoding{
			{Name: "Day_of_week_str", Categories: []string{"0", "1", "2", "3", "4", "5", "6"}},
			{Name: "WeekStatus", Categories: []string{WeekStatusWeekday, WeekStatusWeekend}},
		},
	}
	for _, name := range names[:16] {
		pre.Numeric = append(pre.Numeric, NumericScaling{Name: name, Scale: 1})
	}

	coef := make([]float64, 16+7+2)
	coef[0] = 0.9   // lagging kVarh
	coef[1] = 0.1   // leading kVarh
	coef[2] = 20    // CO2
	coef[3] = 10    // lagging PF
	coef[4] = 2     // leading PF
	coef[5] = 0.001 // NSM

	reg = PipelineArtifact{
		Kind:         KindRegression,
		FeatureNames: names,
		Preprocess:   pre,
		Estimator:    EstimatorSpec{Type: EstimatorLinear, Coefficients: coef, Intercept: 1.5},
	}
	cls = PipelineArtifact{
		Kind:         KindClassification,
		FeatureNames: names,
		Preprocess:   pre,
		Estimator: EstimatorSpec{
			Type: EstimatorDecisionTree,
			Nodes: []TreeNode{
				{FeatureIdx: 11, Threshold: 0.5, LeftChild: 1, RightChild: 2},
				{IsLeaf: true, ClassLabel: 0},
				{FeatureIdx: 0, Threshold: 20, LeftChild: 3, RightChild: 4},
				{IsLeaf: true, ClassLabel: 2},
				{IsLeaf: true, ClassLabel: 1},
			},
		},
	}
	return reg, cls, append([]string(nil), SampleClasses...)
}

// WriteSampleBundle writes the sample artifacts under dir with the default
// names.
func WriteSampleBundle(dir string) (ArtifactPaths, error) {
	paths := DefaultArtifactPaths(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return paths, err
	}
	reg, cls, classes := SampleArtifacts()
	files := paths.Files()
	if err := SavePipeline(files[ArtifactRegression], reg); err != nil {
		return paths, fmt.Errorf("write regression: %w", err)
	}
	if err := SavePipeline(files[ArtifactClassification], cls); err != nil {
		return paths, fmt.Errorf("write classification: %w", err)
	}
	enc, err := NewLabelEncoder(classes)
	if err != nil {
		return paths, err
	}
	if err := enc.Save(files[ArtifactLabelEncoder]); err != nil {
		return paths, fmt.Errorf("write label encoder: %w", err)
	}
	return paths, nil
}
