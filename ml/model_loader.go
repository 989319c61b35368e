package ml

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Artifact names as they appear in errors and logs.
const (
	ArtifactRegression     = "regression"
	ArtifactClassification = "classification"
	ArtifactLabelEncoder   = "label_encoder"
)

// ArtifactPaths locates the three model artifacts.
type ArtifactPaths struct {
	Dir            string
	Regression     string
	Classification string
	LabelEncoder   string
}

// DefaultArtifactPaths returns the standard artifact names under dir.
func DefaultArtifactPaths(dir string) ArtifactPaths {
	return ArtifactPaths{
		Dir:            dir,
		Regression:     "regression_pipeline.json",
		Classification: "classification_pipeline.json",
		LabelEncoder:   "label_encoder.json",
	}
}

func (p ArtifactPaths) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.Dir, name)
}

// Files returns the resolved artifact paths keyed by artifact name.
func (p ArtifactPaths) Files() map[string]string {
	return map[string]string{
		ArtifactRegression:     p.path(p.Regression),
		ArtifactClassification: p.path(p.Classification),
		ArtifactLabelEncoder:   p.path(p.LabelEncoder),
	}
}

// Loader reads the bundle on the first Load and returns the same result on
// every later call. The composition root owns the Loader.
type Loader struct {
	paths  ArtifactPaths
	logger *zap.Logger

	once   sync.Once
	bundle *ModelBundle
	err    error
	loaded atomic.Bool
}

func NewLoader(paths ArtifactPaths, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{paths: paths, logger: logger}
}

// Load returns the cached bundle, reading storage only on the first call.
func (l *Loader) Load() (*ModelBundle, error) {
	l.once.Do(func() {
		start := time.Now()
		l.bundle, l.err = LoadBundle(l.paths)
		if l.err != nil {
			l.logger.Error("model artifacts failed to load", zap.Error(l.err))
			return
		}
		l.loaded.Store(true)
		l.logger.Info("model artifacts loaded",
			zap.String("dir", l.paths.Dir),
			zap.Duration("elapsed", time.Since(start)))
	})
	return l.bundle, l.err
}

// Loaded reports whether a bundle is available.
func (l *Loader) Loaded() bool {
	return l.loaded.Load()
}

// LoadBundle reads all three artifacts without caching.
func LoadBundle(paths ArtifactPaths) (*ModelBundle, error) {
	files := paths.Files()

	reg, err := loadPipelineArtifact(ArtifactRegression, files[ArtifactRegression], KindRegression)
	if err != nil {
		return nil, err
	}
	cls, err := loadPipelineArtifact(ArtifactClassification, files[ArtifactClassification], KindClassification)
	if err != nil {
		return nil, err
	}
	enc, err := LoadLabelEncoder(files[ArtifactLabelEncoder])
	if err != nil {
		return nil, artifactError(ArtifactLabelEncoder, files[ArtifactLabelEncoder], err)
	}
	return &ModelBundle{Regressor: reg, Classifier: cls, Labels: enc}, nil
}

func loadPipelineArtifact(name, path, kind string) (*Pipeline, error) {
	p, err := LoadPipeline(path)
	if err != nil {
		return nil, artifactError(name, path, err)
	}
	if p.Kind() != kind {
		return nil, artifactError(name, path, corrupt("pipeline kind is %q, want %q", p.Kind(), kind))
	}
	return p, nil
}

func artifactError(name, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = fmt.Errorf("%w: %v", ErrArtifactNotFound, err)
	case !errors.Is(err, ErrArtifactCorrupt):
		err = fmt.Errorf("%w: unreadable: %v", ErrArtifactCorrupt, err)
	}
	return &ArtifactLoadError{Artifact: name, Path: path, Err: err}
}
