package ml

import (
	"errors"
	"testing"
)

func sampleTree(t *testing.T) *DecisionTree {
	t.Helper()
	tree, err := NewDecisionTree([]TreeNode{
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, ClassLabel: 0, Value: 1.5},
		{FeatureIdx: 1, Threshold: 10, LeftChild: 3, RightChild: 4},
		{IsLeaf: true, ClassLabel: 2, Value: 20},
		{IsLeaf: true, ClassLabel: 1, Value: 40},
	}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tree
}

func TestDecisionTreePredict(t *testing.T) {
	tree := sampleTree(t)
	cases := []struct {
		x     []float64
		class int
		value float64
	}{
		{[]float64{0, 100}, 0, 1.5},
		{[]float64{1, 10}, 2, 20},
		{[]float64{1, 11}, 1, 40},
	}
	for _, tc := range cases {
		class, err := tree.class(tc.x)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		value, _ := tree.value(tc.x)
		if class != tc.class || value != tc.value {
			t.Fatalf("x=%v: got class %d value %v, want %d %v", tc.x, class, value, tc.class, tc.value)
		}
	}
}

func TestDecisionTreeShortInput(t *testing.T) {
	tree := sampleTree(t)
	_, err := tree.class([]float64{1})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestNewDecisionTreeRejectsBadNodes(t *testing.T) {
	cases := map[string][]TreeNode{
		"empty":         nil,
		"feature range": {{FeatureIdx: 5, LeftChild: 1, RightChild: 2}, {IsLeaf: true}, {IsLeaf: true}},
		"backward edge": {{FeatureIdx: 0, LeftChild: 0, RightChild: 1}, {IsLeaf: true}},
		"child range":   {{FeatureIdx: 0, LeftChild: 1, RightChild: 9}, {IsLeaf: true}},
	}
	for name, nodes := range cases {
		if _, err := NewDecisionTree(nodes, 2); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestForestVote(t *testing.T) {
	leaf := func(label int, value float64) []TreeNode {
		return []TreeNode{{IsLeaf: true, ClassLabel: label, Value: value}}
	}
	est, err := buildEstimator(EstimatorSpec{
		Type:  EstimatorForest,
		Trees: [][]TreeNode{leaf(2, 1), leaf(1, 2), leaf(2, 3), leaf(1, 6)},
	}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	class, err := est.class([]float64{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if class != 1 {
		t.Fatalf("tie should go to lowest token, got %d", class)
	}
	value, _ := est.value([]float64{0})
	if value != 3 {
		t.Fatalf("expected mean 3, got %v", value)
	}
}

func TestLinearModel(t *testing.T) {
	est, err := buildEstimator(EstimatorSpec{Type: EstimatorLinear, Coefficients: []float64{2, -1}, Intercept: 0.5}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := est.value([]float64{3, 4})
	if err != nil || v != 2.5 {
		t.Fatalf("expected 2.5, got %v (%v)", v, err)
	}
	if est.supportsClass() {
		t.Fatal("linear model must not classify")
	}
	if _, err := buildEstimator(EstimatorSpec{Type: EstimatorLinear, Coefficients: []float64{1}}, 2); err == nil {
		t.Fatal("expected width error")
	}
	if _, err := buildEstimator(EstimatorSpec{Type: "svm"}, 2); err == nil {
		t.Fatal("expected unsupported type error")
	}
}
