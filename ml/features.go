package ml

// Week status options offered to the operator.
const (
	WeekStatusWeekend = "Weekend"
	WeekStatusWeekday = "Weekday"
)

// RawInput is one set of operator readings. Ranges are enforced by the input
// widgets, not here.
type RawInput struct {
	LagKVarh     float64 `json:"lag_kvarh"`
	LeadingKVarh float64 `json:"leading_kvarh"`
	CO2          float64 `json:"co2"`
	LagPF        float64 `json:"lag_pf"`
	LeadPF       float64 `json:"lead_pf"`
	NSM          int     `json:"nsm"`
	Hour         int     `json:"hour"`
	Day          int     `json:"day"`
	Month        int     `json:"month"`
	Week         int     `json:"week"`
	DayOfWeek    string  `json:"day_of_week"`
	WeekStatus   string  `json:"week_status"`
}

// FeatureRecord is the single row fed to both models. Fields are unexported so
// a record cannot change after BuildFeatures returns it; it is comparable and
// used directly as a cache key.
type FeatureRecord struct {
	lagKVarh      float64
	leadingKVarh  float64
	co2           float64
	lagPF         float64
	leadPF        float64
	nsm           int
	hour          int
	day           int
	month         int
	week          int
	isWeekend     int
	isPeakHour    int
	totalReactive float64
	netReactive   float64
	pfDifference  float64
	energyIntens  float64
	dayOfWeek     string
	weekStatus    string
}

// BuildFeatures derives the engineered features from the raw readings.
//
// IsWeekend is computed from DayOfWeek alone and may disagree with WeekStatus;
// the models were trained on that pair as-is.
func BuildFeatures(in RawInput) FeatureRecord {
	rec := FeatureRecord{
		lagKVarh:      in.LagKVarh,
		leadingKVarh:  in.LeadingKVarh,
		co2:           in.CO2,
		lagPF:         in.LagPF,
		leadPF:        in.LeadPF,
		nsm:           in.NSM,
		hour:          in.Hour,
		day:           in.Day,
		month:         in.Month,
		week:          in.Week,
		totalReactive: in.LagKVarh + in.LeadingKVarh,
		netReactive:   in.LagKVarh - in.LeadingKVarh,
		pfDifference:  in.LagPF - in.LeadPF,
		dayOfWeek:     in.DayOfWeek,
		weekStatus:    in.WeekStatus,
	}
	if in.DayOfWeek == "5" || in.DayOfWeek == "6" {
		rec.isWeekend = 1
	}
	if in.Hour >= 8 && in.Hour <= 20 {
		rec.isPeakHour = 1
	}
	if in.NSM != 0 {
		rec.energyIntens = in.LagKVarh / float64(in.NSM)
	}
	return rec
}

func (r FeatureRecord) IsWeekend() int { return r.isWeekend }
func (r FeatureRecord) IsPeakHour() int { return r.isPeakHour }
func (r FeatureRecord) TotalReactive() float64 { return r.totalReactive }
func (r FeatureRecord) NetReactive() float64 { return r.netReactive }
func (r FeatureRecord) PFDifference() float64 { return r.pfDifference }
func (r FeatureRecord) EnergyIntensity() float64 { return r.energyIntens }
func (r FeatureRecord) DayOfWeek() string { return r.dayOfWeek }
func (r FeatureRecord) WeekStatus() string { return r.weekStatus }

// Column is one named field of a FeatureRecord.
type Column struct {
	Name        string
	Number      float64
	Text        string
	Categorical bool
}

// Columns returns the record's fields in training order.
func (r FeatureRecord) Columns() []Column {
	return []Column{
		{Name: "Lagging_Current_Reactive.Power_kVarh", Number: r.lagKVarh},
		{Name: "Leading_Current_Reactive_Power_kVarh", Number: r.leadingKVarh},
		{Name: "CO2(tCO2)", Number: r.co2},
		{Name: "Lagging_Current_Power_Factor", Number: r.lagPF},
		{Name: "Leading_Current_Power_Factor", Number: r.leadPF},
		{Name: "NSM", Number: float64(r.nsm)},
		{Name: "Hour", Number: float64(r.hour)},
		{Name: "Day", Number: float64(r.day)},
		{Name: "Month", Number: float64(r.month)},
		{Name: "Week", Number: float64(r.week)},
		{Name: "Is_Weekend", Number: float64(r.isWeekend)},
		{Name: "Is_Peak_Hour", Number: float64(r.isPeakHour)},
		{Name: "Total_Reactive_Power_kVarh", Number: r.totalReactive},
		{Name: "Net_Reactive_Power", Number: r.netReactive},
		{Name: "PF_Difference", Number: r.pfDifference},
		{Name: "Energy_Intensity", Number: r.energyIntens},
		{Name: "Day_of_week_str", Text: r.dayOfWeek, Categorical: true},
		{Name: "WeekStatus", Text: r.weekStatus, Categorical: true},
	}
}

// Map returns the record keyed by feature name, numbers as float64 and
// categoricals as string.
func (r FeatureRecord) Map() map[string]interface{} {
	cols := r.Columns()
	out := make(map[string]interface{}, len(cols))
	for _, c := range cols {
		if c.Categorical {
			out[c.Name] = c.Text
		} else {
			out[c.Name] = c.Number
		}
	}
	return out
}

// FeatureNames lists the training-time field names in order.
func FeatureNames() []string {
	cols := FeatureRecord{}.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
