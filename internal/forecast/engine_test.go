package forecast

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourinsights/internal/dataset"
	"tourinsights/internal/synthetic"
)

var frozenNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	params := Params{
		AssumedRoomRate:    100,
		RevenuePerVisitor:  150,
		EconomicMultiplier: 2.5,
		DefaultDailyGrowth: 1.02,
		ConfidenceLevel:    0.85,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(params, synthetic.Fixed{}, logger,
		WithClock(func() time.Time { return frozenNow }))
}

// datedRows builds one row per day counting back from the frozen clock.
func datedRows(days int, spend func(i int) float64) []dataset.Row {
	rows := make([]dataset.Row, 0, days)
	for i := 0; i < days; i++ {
		day := frozenNow.AddDate(0, 0, -days+i+1)
		rows = append(rows, dataset.Row{
			"arrival_date": dataset.String(day.Format("2006-01-02")),
			"spend_amount": dataset.Number(spend(i)),
		})
	}
	return rows
}

func assertShape(t *testing.T, r Result, horizon int) {
	t.Helper()
	require.False(t, r.Failed(), "unexpected failure: %s", r.Err)
	require.Len(t, r.Values, horizon)
	require.Len(t, r.Dates, horizon)
	assert.Equal(t, frozenNow.AddDate(0, 0, 1).Format("2006-01-02"), r.Dates[0])
	assert.Equal(t, frozenNow.AddDate(0, 0, horizon).Format("2006-01-02"), r.Dates[horizon-1])
	for i, v := range r.Values {
		assert.GreaterOrEqual(t, v, 0.0, "value %d negative", i)
	}
	var total float64
	for _, v := range r.Values {
		total += v
	}
	assert.InDelta(t, total, r.TotalPredicted, 1e-9)
	assert.InDelta(t, total/float64(horizon), r.AverageDaily, 1e-9)
}

func TestForecastActivity_AdvancedTier(t *testing.T) {
	engine := testEngine()
	ds := dataset.New("arrivals", datedRows(60, func(i int) float64 {
		return 100 + float64(i) + 10*float64(i%7)
	}))

	result := engine.ForecastActivity(context.Background(), ds, 14)

	assertShape(t, result, 14)
	assert.Equal(t, MethodAdvanced, result.Method)
	require.NotNil(t, result.Confidence)
	require.Len(t, result.Confidence.Lower, 14)
	require.Len(t, result.Confidence.Upper, 14)
	for i := range result.Values {
		assert.LessOrEqual(t, result.Confidence.Lower[i], result.Values[i])
		assert.GreaterOrEqual(t, result.Confidence.Upper[i], result.Values[i])
	}
	assert.Greater(t, result.TrendSlope, 0.0)
}

func TestForecastActivity_TrendTier(t *testing.T) {
	engine := testEngine()
	ds := dataset.New("arrivals", datedRows(14, func(i int) float64 {
		return 50 + 2*float64(i)
	}))

	result := engine.ForecastActivity(context.Background(), ds, 7)

	assertShape(t, result, 7)
	assert.Equal(t, MethodTrendAnalysis, result.Method)
	assert.Greater(t, result.HistoricalAverage, 0.0)
}

func TestForecastActivity_StatisticalTier(t *testing.T) {
	engine := testEngine()
	rows := make([]dataset.Row, 300)
	for i := range rows {
		rows[i] = dataset.Row{"spend_amount": dataset.Number(200)}
	}
	ds := dataset.New("arrivals", rows)

	result := engine.ForecastActivity(context.Background(), ds, 10)

	assertShape(t, result, 10)
	assert.Equal(t, MethodStatistical, result.Method)
	assert.InDelta(t, 200, result.HistoricalAverage, 1e-9)
}

func TestForecastActivity_StatisticalCountFallback(t *testing.T) {
	engine := testEngine()
	// No date column, no numeric proxy recognized by the activity list:
	// the record count spread over 30 days carries the statistical tier.
	rows := make([]dataset.Row, 300)
	for i := range rows {
		rows[i] = dataset.Row{"nationality": dataset.String("Ethiopia")}
	}
	ds := dataset.New("arrivals", rows)

	result := engine.ForecastActivity(context.Background(), ds, 7)

	assertShape(t, result, 7)
	assert.Equal(t, MethodStatistical, result.Method)
	assert.InDelta(t, 10, result.HistoricalAverage, 1e-9)
	// Fixed source draws zero jitter; day one rounds back to the average.
	assert.Equal(t, 10.0, result.Values[0])
}

func TestBasicForecast(t *testing.T) {
	engine := testEngine()
	rows := make([]dataset.Row, 90)
	for i := range rows {
		rows[i] = dataset.Row{"nationality": dataset.String("Ethiopia")}
	}
	ds := dataset.New("arrivals", rows)

	result := engine.basicForecast(ds, 5)

	assertShape(t, result, 5)
	assert.Equal(t, MethodBasic, result.Method)
	// Fixed source offsets by -5 from the max(10, rows/30) baseline.
	assert.Equal(t, 5.0, result.Values[0])
}

func TestForecastActivity_EmptyDataset(t *testing.T) {
	engine := testEngine()

	for _, ds := range []*dataset.Dataset{nil, dataset.Empty("arrivals")} {
		result := engine.ForecastActivity(context.Background(), ds, 7)
		assert.True(t, result.Failed())
		assert.Equal(t, ErrMsgInsufficientData, result.Err)
		assert.Empty(t, result.Values)
	}
}

// regionRows builds one occupancy row per day counting back from the
// frozen clock, all attributed to the given home region.
func regionRows(region string, days int, nights, duration float64) []dataset.Row {
	rows := make([]dataset.Row, 0, days)
	for i := 0; i < days; i++ {
		day := frozenNow.AddDate(0, 0, -days+i+1)
		rows = append(rows, dataset.Row{
			"arrival_date":        dataset.String(day.Format("2006-01-02")),
			"home_region":         dataset.String(region),
			"hotel_nights":        dataset.Number(nights),
			"visit_duration_days": dataset.Number(duration),
		})
	}
	return rows
}

func TestForecastOccupancy_NightsBased(t *testing.T) {
	engine := testEngine()
	rows := append(
		regionRows("Addis Ababa", 10, 3.5, 5),
		regionRows("Lalibela", 10, 7, 7)...,
	)
	ds := dataset.New("visits", rows)

	results := engine.ForecastOccupancy(context.Background(), ds, 7)

	require.Len(t, results, 2)
	addis, ok := results["Addis Ababa"]
	require.True(t, ok)
	assert.Equal(t, MethodHotelNightsBased, addis.Method)
	// Mean of the last seven daily averages of 3.5 nights over 5 days.
	assert.InDelta(t, 0.7, addis.HistoricalAverage, 1e-9)
	// Annual cycle starts at zero phase, so day one carries the base rate.
	assert.InDelta(t, 0.7, addis.Values[0], 1e-9)
	assert.Greater(t, addis.Values[6], addis.Values[0])

	lalibela := results["Lalibela"]
	assert.InDelta(t, 1.0, lalibela.HistoricalAverage, 1e-9)

	for region, r := range results {
		require.False(t, r.Failed(), "region %s failed", region)
		require.Len(t, r.Values, 7)
		for _, v := range r.Values {
			assert.GreaterOrEqual(t, v, 0.1)
			assert.LessOrEqual(t, v, 0.95)
		}
	}
}

func TestForecastOccupancy_ShortHistoryFallsToRating(t *testing.T) {
	engine := testEngine()
	// Five observed days is not enough daily history for the nights
	// path, so the rating estimate takes over.
	rows := regionRows("Addis Ababa", 5, 4, 5)
	for i := range rows {
		rows[i]["hotel_rating"] = dataset.Number(4.0)
	}
	ds := dataset.New("visits", rows)

	results := engine.ForecastOccupancy(context.Background(), ds, 7)

	require.Len(t, results, 1)
	estimated, ok := results[EstimatedRegion]
	require.True(t, ok)
	assert.Equal(t, MethodRatingBased, estimated.Method)
}

func TestForecastOccupancy_RatingFallback(t *testing.T) {
	engine := testEngine()
	rows := []dataset.Row{
		{"hotel_rating": dataset.Number(4.0)},
		{"hotel_rating": dataset.Number(4.5)},
	}
	ds := dataset.New("visits", rows)

	results := engine.ForecastOccupancy(context.Background(), ds, 5)

	require.Len(t, results, 1)
	estimated := results[EstimatedRegion]
	require.False(t, estimated.Failed())
	assert.Equal(t, MethodRatingBased, estimated.Method)
	assert.InDelta(t, 0.85, estimated.HistoricalAverage, 1e-9)
	assert.InDelta(t, 0.85, estimated.Values[0], 1e-9)
}

func TestForecastOccupancy_RatingClamped(t *testing.T) {
	engine := testEngine()
	ds := dataset.New("visits", []dataset.Row{{"hotel_rating": dataset.Number(1.0)}})

	results := engine.ForecastOccupancy(context.Background(), ds, 3)

	estimated := results[EstimatedRegion]
	require.False(t, estimated.Failed())
	// rating/5 = 0.2 is lifted to the estimate floor.
	assert.InDelta(t, 0.3, estimated.HistoricalAverage, 1e-9)
}

func TestForecastOccupancy_NoUsableColumns(t *testing.T) {
	engine := testEngine()
	ds := dataset.New("visits", []dataset.Row{{"nationality": dataset.String("Kenya")}})

	results := engine.ForecastOccupancy(context.Background(), ds, 7)

	require.Len(t, results, 1)
	assert.True(t, results[OverallRegion].Failed())
}

func TestForecastRevenue_EnhancedTrend(t *testing.T) {
	engine := testEngine()
	ds := dataset.New("visits", datedRows(40, func(i int) float64 {
		return 1000 + 20*float64(i)
	}))

	result := engine.ForecastRevenue(context.Background(), ds, 14)

	assertShape(t, result, 14)
	assert.Equal(t, MethodEnhancedTrend, result.Method)
	// Rising daily revenue implies a positive growth component.
	assert.Greater(t, result.TrendSlope, 0.0)
}

func TestForecastRevenue_EstimatedFromRooms(t *testing.T) {
	engine := testEngine()
	rows := []dataset.Row{
		{"occupied_rooms": dataset.Number(50)},
		{"occupied_rooms": dataset.Number(70)},
	}
	ds := dataset.New("occupancy", rows)

	result := engine.ForecastRevenue(context.Background(), ds, 7)

	assertShape(t, result, 7)
	assert.Equal(t, MethodEstimated, result.Method)
	// 60 rooms at the assumed 100 per room.
	assert.InDelta(t, 6000, result.HistoricalAverage, 1e-9)
	// Flat baseline with only the annual cycle on top: day one is the
	// estimate itself and no growth compounds into later days.
	assert.InDelta(t, 6000, result.Values[0], 1e-9)
	for _, v := range result.Values {
		assert.LessOrEqual(t, v, 6000*1.15+1e-9)
	}
}

func TestForecastRevenue_EstimatedFromVisitors(t *testing.T) {
	engine := testEngine()
	rows := []dataset.Row{
		{"passenger_count": dataset.Number(40)},
		{"passenger_count": dataset.Number(60)},
	}
	ds := dataset.New("arrivals", rows)

	result := engine.ForecastRevenue(context.Background(), ds, 7)

	assertShape(t, result, 7)
	assert.Equal(t, MethodEstimated, result.Method)
	// 50 visitors at 150 per visitor.
	assert.InDelta(t, 7500, result.HistoricalAverage, 1e-9)
	assert.InDelta(t, 7500, result.Values[0], 1e-9)
}

func TestForecastRevenue_NoUsableColumns(t *testing.T) {
	engine := testEngine()
	ds := dataset.New("visits", []dataset.Row{{"nationality": dataset.String("Italy")}})

	result := engine.ForecastRevenue(context.Background(), ds, 7)

	assert.True(t, result.Failed())
}

func TestFutureDates_Sequential(t *testing.T) {
	engine := testEngine()
	dates := engine.futureDates(30)

	require.Len(t, dates, 30)
	for i := 0; i < len(dates)-1; i++ {
		a, err := time.Parse("2006-01-02", dates[i])
		require.NoError(t, err)
		b, err := time.Parse("2006-01-02", dates[i+1])
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, b.Sub(a), fmt.Sprintf("gap between %s and %s", dates[i], dates[i+1]))
	}
}

func TestLinearFit(t *testing.T) {
	tests := []struct {
		name      string
		y         []float64
		intercept float64
		slope     float64
	}{
		{"perfect line", []float64{1, 3, 5, 7}, 1, 2},
		{"flat", []float64{4, 4, 4}, 4, 0},
		{"single point", []float64{9}, 9, 0},
		{"empty", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intercept, slope := linearFit(tt.y)
			assert.InDelta(t, tt.intercept, intercept, 1e-9)
			assert.InDelta(t, tt.slope, slope, 1e-9)
		})
	}
}

func TestZScore(t *testing.T) {
	assert.InDelta(t, 1.440, zScore(0.85), 1e-9)
	assert.InDelta(t, 1.960, zScore(0.95), 1e-9)
	assert.InDelta(t, 1.440, zScore(0.5), 1e-9)
}
