package ml

// Regressor predicts a single decimal from a record.
type Regressor interface {
	PredictValue(rec FeatureRecord) (float64, error)
}

// Classifier predicts a single encoded category token from a record.
type Classifier interface {
	PredictClass(rec FeatureRecord) (int, error)
}

// LabelDecoder maps an encoded token back to its class name.
type LabelDecoder interface {
	Inverse(token int) (string, error)
}

// ModelBundle holds the three fitted artifacts. It is loaded once and shared
// read-only by every prediction.
type ModelBundle struct {
	Regressor  Regressor
	Classifier Classifier
	Labels     LabelDecoder
}

// PredictionResult is the outcome of one prediction request.
type PredictionResult struct {
	Usage    float64 `json:"usage"`
	LoadType string  `json:"load_type"`
}
