package http

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"steelforecast/ml"
)

// Widget kinds.
const (
	WidgetNumber = "number"
	WidgetSelect = "select"
)

// Widget describes one dashboard input. Bounds are enforced here so the
// feature builder can trust its input.
type Widget struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    string   `json:"kind"`
	Default string   `json:"default"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Integer bool     `json:"integer,omitempty"`
	Options []string `json:"options,omitempty"`
}

func bound(v float64) *float64 { return &v }

// Widgets lists the dashboard inputs in display order.
var Widgets = []Widget{
	{Name: "lag_kvarh", Label: "Lagging Reactive Power (kVarh)", Kind: WidgetNumber, Default: "200.0", Min: bound(0)},
	{Name: "leading_kvarh", Label: "Leading Reactive Power (kVarh)", Kind: WidgetNumber, Default: "100.0", Min: bound(0)},
	{Name: "co2", Label: "CO2 Emission (tCO2)", Kind: WidgetNumber, Default: "0.5", Min: bound(0)},
	{Name: "lag_pf", Label: "Lagging Power Factor", Kind: WidgetNumber, Default: "0.85", Min: bound(0), Max: bound(1)},
	{Name: "lead_pf", Label: "Leading Power Factor", Kind: WidgetNumber, Default: "0.10", Min: bound(0), Max: bound(1)},
	{Name: "nsm", Label: "NSM (Minutes in Day)", Kind: WidgetNumber, Default: "780", Min: bound(0), Integer: true},
	{Name: "hour", Label: "Hour of Day (0-23)", Kind: WidgetNumber, Default: "14", Min: bound(0), Max: bound(23), Integer: true},
	{Name: "day", Label: "Day of Month (1-31)", Kind: WidgetNumber, Default: "10", Min: bound(1), Max: bound(31), Integer: true},
	{Name: "month", Label: "Month (1-12)", Kind: WidgetNumber, Default: "5", Min: bound(1), Max: bound(12), Integer: true},
	{Name: "week", Label: "Week Number (1-52)", Kind: WidgetNumber, Default: "20", Min: bound(1), Max: bound(52), Integer: true},
	{Name: "day_of_week", Label: "Day of Week", Kind: WidgetSelect, Default: "0", Options: []string{"0", "1", "2", "3", "4", "5", "6"}},
	{Name: "week_status", Label: "Week Status", Kind: WidgetSelect, Default: ml.WeekStatusWeekend, Options: []string{ml.WeekStatusWeekend, ml.WeekStatusWeekday}},
}

// ValidationError is an operator input rejected at the dashboard boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// parseInput reads every widget through get, substituting defaults for
// missing or blank values.
func parseInput(get func(name string) (string, bool)) (ml.RawInput, map[string]string, error) {
	values := make(map[string]string, len(Widgets))
	var in ml.RawInput
	for _, w := range Widgets {
		raw, ok := get(w.Name)
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			raw = w.Default
		}
		values[w.Name] = raw

		if w.Kind == WidgetSelect {
			v, err := w.choose(raw)
			if err != nil {
				return in, values, err
			}
			values[w.Name] = v
			assignText(&in, w.Name, v)
			continue
		}

		if w.Integer {
			n, err := w.integer(raw)
			if err != nil {
				return in, values, err
			}
			assignInteger(&in, w.Name, n)
			continue
		}
		v, err := w.number(raw)
		if err != nil {
			return in, values, err
		}
		assignNumber(&in, w.Name, v)
	}
	return in, values, nil
}

func (w Widget) number(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: w.Name, Reason: fmt.Sprintf("%q is not a number", raw)}
	}
	if w.Min != nil && v < *w.Min {
		return 0, &ValidationError{Field: w.Name, Reason: fmt.Sprintf("must be at least %v", *w.Min)}
	}
	if w.Max != nil && v > *w.Max {
		return 0, &ValidationError{Field: w.Name, Reason: fmt.Sprintf("must be at most %v", *w.Max)}
	}
	return v, nil
}

// integer parses a whole-number widget. Bounds are compared as ints so the
// value reaches the feature builder exactly as validated.
func (w Widget) integer(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: w.Name, Reason: fmt.Sprintf("%q is not a whole number", raw)}
	}
	if w.Min != nil && n < int(*w.Min) {
		return 0, &ValidationError{Field: w.Name, Reason: fmt.Sprintf("must be at least %d", int(*w.Min))}
	}
	if w.Max != nil && n > int(*w.Max) {
		return 0, &ValidationError{Field: w.Name, Reason: fmt.Sprintf("must be at most %d", int(*w.Max))}
	}
	return n, nil
}

// choose matches raw against the options under Unicode case folding and
// returns the canonical option text.
func (w Widget) choose(raw string) (string, error) {
	fold := cases.Fold()
	want := fold.String(raw)
	for _, opt := range w.Options {
		if fold.String(opt) == want {
			return opt, nil
		}
	}
	return "", &ValidationError{Field: w.Name, Reason: fmt.Sprintf("%q is not one of %s", raw, strings.Join(w.Options, ", "))}
}

func assignNumber(in *ml.RawInput, name string, v float64) {
	switch name {
	case "lag_kvarh":
		in.LagKVarh = v
	case "leading_kvarh":
		in.LeadingKVarh = v
	case "co2":
		in.CO2 = v
	case "lag_pf":
		in.LagPF = v
	case "lead_pf":
		in.LeadPF = v
	}
}

func assignInteger(in *ml.RawInput, name string, n int) {
	switch name {
	case "nsm":
		in.NSM = n
	case "hour":
		in.Hour = n
	case "day":
		in.Day = n
	case "month":
		in.Month = n
	case "week":
		in.Week = n
	}
}

func assignText(in *ml.RawInput, name, v string) {
	switch name {
	case "day_of_week":
		in.DayOfWeek = v
	case "week_status":
		in.WeekStatus = v
	}
}

// jsonGetter adapts a decoded JSON object to parseInput. Numbers and strings
// are both accepted for every field.
func jsonGetter(obj map[string]interface{}) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := obj[name]
		if !ok || v == nil {
			return "", false
		}
		switch t := v.(type) {
		case string:
			return t, true
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), true
		case bool:
			return strconv.FormatBool(t), true
		default:
			return fmt.Sprint(t), true
		}
	}
}

// FormatUsage renders a usage prediction with two decimals.
func FormatUsage(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatBound renders a widget bound for HTML attributes.
func FormatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
