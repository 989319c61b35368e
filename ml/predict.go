package ml

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Service runs predictions against a loaded bundle.
type Service struct {
	bundle *ModelBundle
	cache  *lru.Cache[FeatureRecord, PredictionResult]
	logger *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service) error

// WithCache memoizes up to size results. Predictions are deterministic for a
// given record, so a hit is indistinguishable from a fresh call.
func WithCache(size int) ServiceOption {
	return func(s *Service) error {
		if size <= 0 {
			return nil
		}
		c, err := lru.New[FeatureRecord, PredictionResult](size)
		if err != nil {
			return err
		}
		s.cache = c
		return nil
	}
}

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

func NewService(bundle *ModelBundle, opts ...ServiceOption) (*Service, error) {
	if bundle == nil || bundle.Regressor == nil || bundle.Classifier == nil || bundle.Labels == nil {
		return nil, errors.New("incomplete model bundle")
	}
	s := &Service{bundle: bundle, logger: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// PredictRaw builds the feature record from operator input and predicts.
func (s *Service) PredictRaw(ctx context.Context, in RawInput) (PredictionResult, FeatureRecord, error) {
	rec := BuildFeatures(in)
	res, err := s.Predict(ctx, rec)
	return res, rec, err
}

// Predict returns the usage estimate and decoded load type for rec. Model
// failures come back as *InferenceError.
func (s *Service) Predict(ctx context.Context, rec FeatureRecord) (PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return PredictionResult{}, err
	}
	if s.cache != nil {
		if res, ok := s.cache.Get(rec); ok {
			return res, nil
		}
	}

	usage, err := s.bundle.Regressor.PredictValue(rec)
	if err != nil {
		return PredictionResult{}, s.fail(StageRegression, err)
	}
	token, err := s.bundle.Classifier.PredictClass(rec)
	if err != nil {
		return PredictionResult{}, s.fail(StageClassification, err)
	}
	label, err := s.bundle.Labels.Inverse(token)
	if err != nil {
		return PredictionResult{}, s.fail(StageDecode, err)
	}

	res := PredictionResult{Usage: usage, LoadType: label}
	if s.cache != nil {
		s.cache.Add(rec, res)
	}
	return res, nil
}

func (s *Service) fail(stage string, err error) error {
	s.logger.Warn("prediction failed", zap.String("stage", stage), zap.Error(err))
	return &InferenceError{Stage: stage, Err: err}
}

// CacheLen reports how many results are memoized.
func (s *Service) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}
