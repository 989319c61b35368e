package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// LabelEncoder maps class names to their index in Classes.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// NewLabelEncoder rejects empty and duplicate classes.
func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, errors.New("label encoder has no classes")
	}
	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		if seen[c] {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		seen[c] = true
	}
	return &LabelEncoder{Classes: append([]string(nil), classes...)}, nil
}

func (e *LabelEncoder) Inverse(token int) (string, error) {
	if token < 0 || token >= len(e.Classes) {
		return "", fmt.Errorf("%w: token %d, %d classes known", ErrOutOfVocabulary, token, len(e.Classes))
	}
	return e.Classes[token], nil
}

// Transform is the forward mapping.
func (e *LabelEncoder) Transform(class string) (int, error) {
	for i, c := range e.Classes {
		if c == class {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: class %q", ErrOutOfVocabulary, class)
}

func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw LabelEncoder
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, corrupt("decode label encoder: %v", err)
	}
	enc, err := NewLabelEncoder(raw.Classes)
	if err != nil {
		return nil, corrupt("%v", err)
	}
	return enc, nil
}

func (e *LabelEncoder) Save(path string) error {
	payload, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
