package ml

import (
	"errors"
	"fmt"
)

// Estimator types understood by the pipeline loader.
const (
	EstimatorLinear       = "linear"
	EstimatorDecisionTree = "decision_tree"
	EstimatorForest       = "forest"
)

// estimator scores an already transformed input vector.
type estimator interface {
	value(x []float64) (float64, error)
	class(x []float64) (int, error)
	supportsClass() bool
}

// EstimatorSpec is the serialized form of an estimator.
type EstimatorSpec struct {
	Type         string       `json:"type"`
	Coefficients []float64    `json:"coefficients,omitempty"`
	Intercept    float64      `json:"intercept,omitempty"`
	Nodes        []TreeNode   `json:"nodes,omitempty"`
	Trees        [][]TreeNode `json:"trees,omitempty"`
}

func buildEstimator(spec EstimatorSpec, width int) (estimator, error) {
	switch spec.Type {
	case EstimatorLinear:
		if len(spec.Coefficients) != width {
			return nil, fmt.Errorf("linear model has %d coefficients, input width is %d", len(spec.Coefficients), width)
		}
		return &linearModel{coefficients: spec.Coefficients, intercept: spec.Intercept}, nil
	case EstimatorDecisionTree:
		return NewDecisionTree(spec.Nodes, width)
	case EstimatorForest:
		if len(spec.Trees) == 0 {
			return nil, errors.New("forest has no trees")
		}
		f := &forest{trees: make([]*DecisionTree, 0, len(spec.Trees))}
		for i, nodes := range spec.Trees {
			tree, err := NewDecisionTree(nodes, width)
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
			f.trees = append(f.trees, tree)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported estimator type %q", spec.Type)
	}
}

type linearModel struct {
	coefficients []float64
	intercept    float64
}

func (m *linearModel) value(x []float64) (float64, error) {
	if len(x) != len(m.coefficients) {
		return 0, schemaMismatch("linear model expects %d inputs, got %d", len(m.coefficients), len(x))
	}
	score := m.intercept
	for i, coef := range m.coefficients {
		score += coef * x[i]
	}
	return score, nil
}

func (m *linearModel) class([]float64) (int, error) {
	return 0, errors.New("linear model cannot classify")
}

func (m *linearModel) supportsClass() bool { return false }

func (dt *DecisionTree) supportsClass() bool { return true }

type forest struct {
	trees []*DecisionTree
}

func (f *forest) value(x []float64) (float64, error) {
	sum := 0.0
	for _, tree := range f.trees {
		v, err := tree.value(x)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / float64(len(f.trees)), nil
}

// class is a majority vote; ties go to the lowest token.
func (f *forest) class(x []float64) (int, error) {
	votes := make(map[int]int)
	for _, tree := range f.trees {
		label, err := tree.class(x)
		if err != nil {
			return 0, err
		}
		votes[label]++
	}
	best, bestCount := 0, -1
	for label, count := range votes {
		if count > bestCount || (count == bestCount && label < best) {
			best, bestCount = label, count
		}
	}
	return best, nil
}

func (f *forest) supportsClass() bool { return true }
