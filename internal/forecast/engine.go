package forecast

import (
	"context"
	"log/slog"
	"math"
	"time"

	"tourinsights/internal/config"
	"tourinsights/internal/dataset"
	"tourinsights/internal/synthetic"
)

// Params carries the tunable assumptions behind the forecasting methods.
type Params struct {
	AssumedRoomRate    float64
	RevenuePerVisitor  float64
	EconomicMultiplier float64
	DefaultDailyGrowth float64
	ConfidenceLevel    float64
}

// ParamsFromConfig lifts the analytics settings into forecast parameters.
func ParamsFromConfig(cfg config.AnalyticsConfig) Params {
	return Params{
		AssumedRoomRate:    cfg.AssumedRoomRate,
		RevenuePerVisitor:  cfg.RevenuePerVisitor,
		EconomicMultiplier: cfg.EconomicMultiplier,
		DefaultDailyGrowth: cfg.DefaultDailyGrowth,
		ConfidenceLevel:    cfg.ConfidenceLevel,
	}
}

// Engine produces tiered forecasts over normalized tourism datasets.
// The tiers degrade gracefully: a richer method that cannot apply falls
// through to a simpler one, and only total exhaustion yields a failed
// Result. Engine methods never return Go errors or panic.
type Engine struct {
	params Params
	source synthetic.Source
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the engine's clock, used by tests for stable dates
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an Engine with the given parameters and randomness
// source. The source feeds statistical jitter and simulated metrics.
func NewEngine(params Params, source synthetic.Source, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		params: params,
		source: source,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params exposes the engine's assumptions to downstream consumers.
func (e *Engine) Params() Params {
	return e.params
}

// futureDates returns ISO dates for tomorrow through tomorrow+horizon-1.
func (e *Engine) futureDates(horizon int) []string {
	base := e.now()
	dates := make([]string, horizon)
	for i := 0; i < horizon; i++ {
		dates[i] = base.AddDate(0, 0, i+1).Format("2006-01-02")
	}
	return dates
}

// ForecastActivity predicts daily visitor activity over the horizon. It
// walks the tier ladder: seasonal decomposition over a long daily series,
// then trend extrapolation, then a statistical estimate from a numeric
// proxy column or the record count over an assumed month, then a flat
// baseline with random offsets.
func (e *Engine) ForecastActivity(ctx context.Context, ds *dataset.Dataset, horizon int) Result {
	if ds == nil || ds.IsEmpty() || horizon < 1 {
		return failure(ErrMsgInsufficientData)
	}

	caps := dataset.Probe(ds)

	if caps.HasDate() {
		series := ds.DailySeries(caps.DateColumn, caps.ActivityColumn)
		if len(series) > 30 {
			if result, ok := e.seasonalForecast(series, horizon); ok {
				e.logger.InfoContext(ctx, "activity forecast complete",
					slog.String("method", result.Method),
					slog.Int("horizon", horizon))
				return result
			}
		}
		if len(series) > 7 {
			result := e.trendForecast(series, horizon)
			e.logger.InfoContext(ctx, "activity forecast complete",
				slog.String("method", result.Method),
				slog.Int("horizon", horizon))
			return result
		}
	}

	if result, ok := e.statisticalForecast(ds, caps, horizon); ok {
		e.logger.InfoContext(ctx, "activity forecast complete",
			slog.String("method", result.Method),
			slog.Int("horizon", horizon))
		return result
	}

	result := e.basicForecast(ds, horizon)
	e.logger.InfoContext(ctx, "activity forecast complete",
		slog.String("method", result.Method),
		slog.Int("horizon", horizon))
	return result
}

// seasonalForecast decomposes the daily series into a linear trend plus
// additive weekday and month indices, then projects forward. Residual
// spread drives the confidence interval. Returns false when the series
// degenerates, letting the caller fall through to the next tier.
func (e *Engine) seasonalForecast(series []dataset.DailyPoint, horizon int) (Result, bool) {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}

	intercept, slope := linearFit(values)

	// Additive seasonal indices from detrended values.
	var weekSum [7]float64
	var weekN [7]int
	var monthSums [13]float64
	var monthCounts [13]int
	for i, p := range series {
		detrended := values[i] - (intercept + slope*float64(i))
		wd := int(p.Date.Weekday())
		weekSum[wd] += detrended
		weekN[wd]++
		m := int(p.Date.Month())
		monthSums[m] += detrended
		monthCounts[m]++
	}
	weekIdx := make([]float64, 7)
	for d := 0; d < 7; d++ {
		if weekN[d] > 0 {
			weekIdx[d] = weekSum[d] / float64(weekN[d])
		}
	}
	monthIdx := make([]float64, 13)
	for m := 1; m <= 12; m++ {
		if monthCounts[m] > 0 {
			monthIdx[m] = monthSums[m] / float64(monthCounts[m])
		}
	}

	residuals := make([]float64, len(series))
	for i, p := range series {
		fitted := intercept + slope*float64(i) +
			weekIdx[int(p.Date.Weekday())] + monthIdx[int(p.Date.Month())]
		residuals[i] = values[i] - fitted
	}
	spread := stddev(residuals)

	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return Result{}, false
	}

	base := e.now()
	z := zScore(e.params.ConfidenceLevel)
	n := float64(len(series))

	result := Result{
		Method:            MethodAdvanced,
		Values:            make([]float64, horizon),
		Dates:             e.futureDates(horizon),
		HistoricalAverage: mean(values),
		TrendSlope:        slope,
		Confidence: &Interval{
			Lower: make([]float64, horizon),
			Upper: make([]float64, horizon),
		},
	}
	for i := 0; i < horizon; i++ {
		day := base.AddDate(0, 0, i+1)
		v := intercept + slope*(n+float64(i)) +
			weekIdx[int(day.Weekday())] + monthIdx[int(day.Month())]
		v = math.Max(0, math.Round(v))
		result.Values[i] = v
		result.Confidence.Lower[i] = math.Max(0, math.Round(v-z*spread))
		result.Confidence.Upper[i] = math.Round(v + z*spread)
	}
	return result.finalize(), true
}

// trendForecast fits a slope over the most recent 30 daily points and
// layers the annual and weekly seasonal cycle on top of the historical
// average.
func (e *Engine) trendForecast(series []dataset.DailyPoint, horizon int) Result {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}

	window := values
	if len(window) > 30 {
		window = window[len(window)-30:]
	}
	_, slope := linearFit(window)
	avg := mean(values)

	result := Result{
		Method:            MethodTrendAnalysis,
		Values:            make([]float64, horizon),
		Dates:             e.futureDates(horizon),
		HistoricalAverage: avg,
		TrendSlope:        slope,
	}
	for i := 1; i <= horizon; i++ {
		v := (avg + slope*float64(i)) * seasonalFactor(i, 0.15, 0.1)
		result.Values[i-1] = math.Max(0, math.Round(v))
	}
	return result.finalize()
}

// statisticalForecast estimates from the distribution of a numeric proxy
// column when no usable date column exists. Without a proxy column the
// record count spread over an assumed 30-day span stands in, with a
// fifth of that average as the variability. Jitter is drawn at a tenth
// of the spread either way.
func (e *Engine) statisticalForecast(ds *dataset.Dataset, caps dataset.Capabilities, horizon int) (Result, bool) {
	var avg, spread float64
	observed := false
	if caps.ActivityColumn != "" {
		if m, ok := ds.Mean(caps.ActivityColumn); ok {
			avg = m
			spread = ds.Std(caps.ActivityColumn)
			observed = true
		}
	}
	if !observed {
		avg = float64(ds.Len()) / 30
		spread = avg * 0.2
	}
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return Result{}, false
	}

	result := Result{
		Method:            MethodStatistical,
		Values:            make([]float64, horizon),
		Dates:             e.futureDates(horizon),
		HistoricalAverage: avg,
	}
	for i := 1; i <= horizon; i++ {
		jitter := e.source.Normal(0, spread*0.1)
		v := (avg + jitter) * seasonalFactor(i, 0.1, 0.05)
		result.Values[i-1] = math.Max(0, math.Round(v))
	}
	return result.finalize(), true
}

// basicForecast is the last-resort flat baseline with small random
// offsets, used when every richer method has fallen through.
func (e *Engine) basicForecast(ds *dataset.Dataset, horizon int) Result {
	base := math.Max(10, float64(ds.Len())/30)

	result := Result{
		Method:            MethodBasic,
		Values:            make([]float64, horizon),
		Dates:             e.futureDates(horizon),
		HistoricalAverage: base,
	}
	for i := 0; i < horizon; i++ {
		v := base + float64(e.source.IntBetween(-5, 5))
		result.Values[i] = math.Max(0, math.Round(v))
	}
	return result.finalize()
}
