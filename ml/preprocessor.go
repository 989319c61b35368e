package ml

import (
	"errors"
	"fmt"
	"strconv"
)

// Unknown-category policies for one-hot encoding.
const (
	HandleUnknownError  = "error"
	HandleUnknownIgnore = "ignore"
)

// NumericScaling standardizes one numeric column.
type NumericScaling struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// OneHotEncoding expands one categorical column into len(Categories) slots.
type OneHotEncoding struct {
	Name          string   `json:"name"`
	Categories    []string `json:"categories"`
	HandleUnknown string   `json:"handle_unknown,omitempty"`
}

// Preprocess is the fitted column transformer. The output vector holds the
// scaled numerics in order followed by each one-hot block in order.
type Preprocess struct {
	Numeric     []NumericScaling `json:"numeric"`
	Categorical []OneHotEncoding `json:"categorical"`
}

// DataPreprocessor applies a fitted Preprocess to records.
type DataPreprocessor struct {
	numeric     []numericStep
	categorical []oneHotStep
	width       int
}

type numericStep struct {
	name  string
	col   int
	mean  float64
	scale float64
}

type oneHotStep struct {
	name      string
	col       int
	index     map[string]int
	size      int
	ignoreNew bool
}

// NewDataPreprocessor resolves the transformer's columns against the
// training-time feature names.
func NewDataPreprocessor(p Preprocess, featureNames []string) (*DataPreprocessor, error) {
	if len(p.Numeric) == 0 && len(p.Categorical) == 0 {
		return nil, errors.New("preprocess selects no columns")
	}
	pos := make(map[string]int, len(featureNames))
	for i, name := range featureNames {
		if _, dup := pos[name]; dup {
			return nil, fmt.Errorf("duplicate feature name %q", name)
		}
		pos[name] = i
	}

	dp := &DataPreprocessor{}
	used := make(map[string]bool)
	claim := func(name string) (int, error) {
		col, ok := pos[name]
		if !ok {
			return 0, fmt.Errorf("column %q not in feature_names", name)
		}
		if used[name] {
			return 0, fmt.Errorf("column %q transformed twice", name)
		}
		used[name] = true
		return col, nil
	}

	for _, n := range p.Numeric {
		col, err := claim(n.Name)
		if err != nil {
			return nil, err
		}
		scale := n.Scale
		if scale == 0 {
			scale = 1
		}
		dp.numeric = append(dp.numeric, numericStep{name: n.Name, col: col, mean: n.Mean, scale: scale})
	}
	dp.width = len(dp.numeric)

	for _, c := range p.Categorical {
		col, err := claim(c.Name)
		if err != nil {
			return nil, err
		}
		if len(c.Categories) == 0 {
			return nil, fmt.Errorf("column %q has no categories", c.Name)
		}
		step := oneHotStep{name: c.Name, col: col, index: make(map[string]int, len(c.Categories)), size: len(c.Categories)}
		switch c.HandleUnknown {
		case "", HandleUnknownError:
		case HandleUnknownIgnore:
			step.ignoreNew = true
		default:
			return nil, fmt.Errorf("column %q: unknown handle_unknown %q", c.Name, c.HandleUnknown)
		}
		for i, cat := range c.Categories {
			if _, dup := step.index[cat]; dup {
				return nil, fmt.Errorf("column %q: duplicate category %q", c.Name, cat)
			}
			step.index[cat] = i
		}
		dp.categorical = append(dp.categorical, step)
		dp.width += step.size
	}
	return dp, nil
}

// Width is the length of the transformed vector.
func (dp *DataPreprocessor) Width() int { return dp.width }

// Transform turns columns already checked against the schema into the
// estimator's input vector.
func (dp *DataPreprocessor) Transform(cols []Column) ([]float64, error) {
	out := make([]float64, dp.width)
	for i, step := range dp.numeric {
		c := cols[step.col]
		if c.Categorical {
			return nil, schemaMismatch("column %q is categorical, scaler expects a number", step.name)
		}
		out[i] = (c.Number - step.mean) / step.scale
	}

	offset := len(dp.numeric)
	for _, step := range dp.categorical {
		c := cols[step.col]
		text := c.Text
		if !c.Categorical {
			text = strconv.FormatFloat(c.Number, 'f', -1, 64)
		}
		idx, ok := step.index[text]
		switch {
		case ok:
			out[offset+idx] = 1
		case !step.ignoreNew:
			return nil, fmt.Errorf("%w: %q for column %q", ErrUnknownCategory, text, step.name)
		}
		offset += step.size
	}
	return out, nil
}
