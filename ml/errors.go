package ml

import (
	"errors"
	"fmt"
)

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrArtifactCorrupt  = errors.New("artifact corrupt")

	ErrSchemaMismatch  = errors.New("feature schema mismatch")
	ErrUnknownCategory = errors.New("unknown category")
	ErrOutOfVocabulary = errors.New("label token out of vocabulary")
)

// ArtifactLoadError reports a model artifact that could not be loaded at
// startup. No prediction is possible without all three artifacts.
type ArtifactLoadError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load %s artifact %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

// Inference stages.
const (
	StageRegression     = "regression"
	StageClassification = "classification"
	StageDecode         = "decode"
)

// InferenceError is a failed prediction. It is recoverable: the operator can
// retry with different inputs.
type InferenceError struct {
	Stage string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s inference failed: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

func corrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrArtifactCorrupt, fmt.Sprintf(format, args...))
}

func schemaMismatch(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, fmt.Sprintf(format, args...))
}
