package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Pipeline kinds.
const (
	KindRegression     = "regression"
	KindClassification = "classification"
)

// PipelineArtifact is the on-disk form of a fitted pipeline.
type PipelineArtifact struct {
	Kind         string        `json:"kind"`
	FeatureNames []string      `json:"feature_names"`
	Preprocess   Preprocess    `json:"preprocess"`
	Estimator    EstimatorSpec `json:"estimator"`
}

// Pipeline is a fitted preprocessing step followed by an estimator. It
// implements both Regressor and Classifier; the loader checks Kind.
type Pipeline struct {
	kind         string
	featureNames []string
	pre          *DataPreprocessor
	est          estimator
}

// NewPipeline validates an artifact and builds the runnable pipeline.
func NewPipeline(a PipelineArtifact) (*Pipeline, error) {
	switch a.Kind {
	case KindRegression, KindClassification:
	default:
		return nil, fmt.Errorf("unknown pipeline kind %q", a.Kind)
	}
	if len(a.FeatureNames) == 0 {
		return nil, errors.New("pipeline has no feature_names")
	}
	pre, err := NewDataPreprocessor(a.Preprocess, a.FeatureNames)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	est, err := buildEstimator(a.Estimator, pre.Width())
	if err != nil {
		return nil, fmt.Errorf("estimator: %w", err)
	}
	if a.Kind == KindClassification && !est.supportsClass() {
		return nil, fmt.Errorf("estimator %q cannot back a classification pipeline", a.Estimator.Type)
	}
	return &Pipeline{
		kind:         a.Kind,
		featureNames: append([]string(nil), a.FeatureNames...),
		pre:          pre,
		est:          est,
	}, nil
}

func (p *Pipeline) Kind() string { return p.kind }

// FeatureNames returns the training-time schema.
func (p *Pipeline) FeatureNames() []string {
	return append([]string(nil), p.featureNames...)
}

func (p *Pipeline) PredictValue(rec FeatureRecord) (float64, error) {
	x, err := p.transform(rec)
	if err != nil {
		return 0, err
	}
	return p.est.value(x)
}

func (p *Pipeline) PredictClass(rec FeatureRecord) (int, error) {
	x, err := p.transform(rec)
	if err != nil {
		return 0, err
	}
	return p.est.class(x)
}

func (p *Pipeline) transform(rec FeatureRecord) ([]float64, error) {
	cols := rec.Columns()
	if err := checkSchema(cols, p.featureNames); err != nil {
		return nil, err
	}
	return p.pre.Transform(cols)
}

// checkSchema requires the record's fields to match the training names
// exactly, in order.
func checkSchema(cols []Column, names []string) error {
	if len(cols) != len(names) {
		return schemaMismatch("record has %d fields, model was trained on %d", len(cols), len(names))
	}
	for i, c := range cols {
		if c.Name != names[i] {
			return schemaMismatch("field %d is %q, model expects %q", i, c.Name, names[i])
		}
	}
	return nil
}

// LoadPipeline reads a pipeline artifact from path.
func LoadPipeline(path string) (*Pipeline, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a PipelineArtifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, corrupt("decode pipeline: %v", err)
	}
	p, err := NewPipeline(a)
	if err != nil {
		return nil, corrupt("%v", err)
	}
	return p, nil
}

// SavePipeline writes a pipeline artifact to path.
func SavePipeline(path string, a PipelineArtifact) error {
	payload, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
