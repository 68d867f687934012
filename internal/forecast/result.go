package forecast

// Method identifies which forecasting tier produced a Result.
const (
	MethodAdvanced         = "advanced"
	MethodTrendAnalysis    = "trend_analysis"
	MethodStatistical      = "statistical"
	MethodBasic            = "basic"
	MethodEstimated        = "estimated"
	MethodRatingBased      = "rating_based_estimate"
	MethodHotelNightsBased = "hotel_nights_based"
	MethodEnhancedTrend    = "enhanced_trend"
)

// ErrMsgInsufficientData is the Err value carried by a failed Result when
// none of the tiers could produce a forecast.
const ErrMsgInsufficientData = "insufficient data for forecasting"

// Interval holds per-day confidence bounds. Only the advanced tier
// produces one.
type Interval struct {
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// Result is the uniform output of every forecasting method. A Result is
// either a success (Values and Dates populated, Err empty) or a failure
// (Err set, everything else zero). Callers branch on Failed().
type Result struct {
	Method            string    `json:"method"`
	Values            []float64 `json:"values,omitempty"`
	Dates             []string  `json:"dates,omitempty"`
	TotalPredicted    float64   `json:"total_predicted"`
	AverageDaily      float64   `json:"average_daily"`
	HistoricalAverage float64   `json:"historical_average"`
	TrendSlope        float64   `json:"trend_slope,omitempty"`
	Confidence        *Interval `json:"confidence,omitempty"`

	Err string `json:"error,omitempty"`
}

// Failed reports whether the forecast attempt produced no usable values.
func (r Result) Failed() bool {
	return r.Err != ""
}

func failure(msg string) Result {
	return Result{Err: msg}
}

// finalize fills the aggregate fields from Values.
func (r Result) finalize() Result {
	var total float64
	for _, v := range r.Values {
		total += v
	}
	r.TotalPredicted = total
	if len(r.Values) > 0 {
		r.AverageDaily = total / float64(len(r.Values))
	}
	return r
}
