package forecast

import (
	"context"
	"log/slog"
	"math"

	"tourinsights/internal/dataset"
)

// growthWindow is the number of recent and earliest days compared to
// derive the compound daily growth factor.
const growthWindow = 14

// ForecastRevenue predicts daily tourism revenue over the horizon. With
// a dated revenue series it compounds an observed growth factor onto the
// recent daily baseline; without one it estimates from room or visitor
// volumes at the configured rates.
func (e *Engine) ForecastRevenue(ctx context.Context, ds *dataset.Dataset, horizon int) Result {
	if ds == nil || ds.IsEmpty() || horizon < 1 {
		return failure(ErrMsgInsufficientData)
	}

	caps := dataset.Probe(ds)
	revenueCol := revenueColumn(ds, caps)

	if caps.HasDate() && revenueCol != "" {
		series := ds.DailySeries(caps.DateColumn, revenueCol)
		if len(series) > 7 {
			result := e.trendRevenue(series, horizon)
			e.logger.InfoContext(ctx, "revenue forecast complete",
				slog.String("method", result.Method),
				slog.String("revenue_column", revenueCol))
			return result
		}
	}

	result := e.estimatedRevenue(ds, caps, revenueCol, horizon)
	if !result.Failed() {
		e.logger.InfoContext(ctx, "revenue forecast complete",
			slog.String("method", result.Method))
	}
	return result
}

// trendRevenue compounds the observed daily growth factor onto the
// recent average, with the stronger annual and weekly revenue cycles
// layered on.
func (e *Engine) trendRevenue(series []dataset.DailyPoint, horizon int) Result {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}

	window := growthWindow
	if len(values) < window {
		window = len(values)
	}
	recent := mean(values[len(values)-window:])
	earliest := mean(values[:window])

	growth := e.params.DefaultDailyGrowth
	if earliest > 0 && recent > 0 {
		g := math.Pow(recent/earliest, 1/float64(window))
		if !math.IsNaN(g) && !math.IsInf(g, 0) && g > 0 {
			growth = g
		}
	}

	result := Result{
		Method:            MethodEnhancedTrend,
		Values:            make([]float64, horizon),
		Dates:             e.futureDates(horizon),
		HistoricalAverage: mean(values),
		TrendSlope:        growth - 1,
	}
	for i := 1; i <= horizon; i++ {
		v := recent * math.Pow(growth, float64(i)) * seasonalFactor(i, 0.2, 0.1)
		result.Values[i-1] = math.Max(0, math.Round(v*100)/100)
	}
	return result.finalize()
}

// estimatedRevenue falls back to flat volume-times-rate estimates:
// occupied rooms at the assumed room rate, then visitor counts at the
// per-visitor figure, then undated revenue observations spread over a
// month.
func (e *Engine) estimatedRevenue(ds *dataset.Dataset, caps dataset.Capabilities, revenueCol string, horizon int) Result {
	var base float64
	switch {
	case caps.HasOccupiedRooms:
		rooms, ok := ds.Mean("occupied_rooms")
		if !ok {
			return failure(ErrMsgInsufficientData)
		}
		base = rooms * e.params.AssumedRoomRate
	case caps.VisitorColumn != "":
		visitors, ok := ds.Mean(caps.VisitorColumn)
		if !ok {
			return failure(ErrMsgInsufficientData)
		}
		base = visitors * e.params.RevenuePerVisitor
	case revenueCol != "":
		base = ds.Sum(revenueCol) / 30
	default:
		return failure(ErrMsgInsufficientData)
	}

	if base <= 0 {
		return failure(ErrMsgInsufficientData)
	}

	// The estimate is a flat baseline; only the annual cycle moves it,
	// starting at zero phase so day one carries the baseline itself.
	result := Result{
		Method:            MethodEstimated,
		Values:            make([]float64, horizon),
		Dates:             e.futureDates(horizon),
		HistoricalAverage: base,
	}
	for i := 0; i < horizon; i++ {
		v := base * (1 + 0.15*math.Sin(2*math.Pi*float64(i)/365))
		result.Values[i] = math.Max(0, math.Round(v*100)/100)
	}
	return result.finalize()
}

// revenueColumn picks the best revenue measure: an explicit revenue
// column, then the derived total spend, then the raw spend amount.
func revenueColumn(ds *dataset.Dataset, caps dataset.Capabilities) string {
	if caps.RevenueColumn != "" {
		return caps.RevenueColumn
	}
	if col, ok := ds.FirstColumn("total_spend", "spend_amount"); ok {
		return col
	}
	return ""
}
