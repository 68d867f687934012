package report

import (
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourinsights/internal/config"
	"tourinsights/internal/dataset"
	"tourinsights/internal/forecast"
	"tourinsights/internal/insight"
)

var assembleNow = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

func testAssembler() *Assembler {
	cfg := config.AnalyticsConfig{
		ForecastHorizonDays: 30,
		ConfidenceLevel:     0.85,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAssembler(cfg, logger, WithIDFunc(func() string { return "report-1" }))
}

func sampleInsights() map[string]insight.DepartmentInsight {
	return map[string]insight.DepartmentInsight{
		"operations": {
			Department: "operations",
			AlertLevel: insight.AlertWarning,
			Metrics: []insight.Metric{
				{Name: "Average Hotel Rating", CurrentValue: 3.2, ImpactLevel: insight.ImpactHigh, Trend: insight.TrendStable},
				{Name: "Average Visit Duration (Days)", CurrentValue: 4.1, ImpactLevel: insight.ImpactMedium, Trend: insight.TrendStable},
			},
		},
		"marketing": {
			Department: "marketing",
			AlertLevel: insight.AlertNormal,
			Metrics: []insight.Metric{
				{Name: "Overall Satisfaction Score", CurrentValue: 4.2, ImpactLevel: insight.ImpactHigh, Trend: insight.TrendStable},
			},
		},
		"tourism_funding": {
			Department: "tourism_funding",
			AlertLevel: insight.AlertNormal,
			Metrics: []insight.Metric{
				{Name: "Total Tourism Revenue", CurrentValue: 500000, ImpactLevel: insight.ImpactHigh, Trend: insight.TrendIncreasing},
			},
		},
	}
}

func sampleData() dataset.Collection {
	rows := []dataset.Row{
		{"nationality": dataset.String("Germany"), "home_region": dataset.String("Addis Ababa"), "total_spend": dataset.Number(800), "sector": dataset.String("leisure")},
		{"nationality": dataset.String("Germany"), "home_region": dataset.String("Addis Ababa"), "total_spend": dataset.Number(600), "sector": dataset.String("leisure")},
		{"nationality": dataset.String("Kenya"), "home_region": dataset.String("Lalibela"), "total_spend": dataset.Number(200), "sector": dataset.String("business")},
	}
	c := dataset.EmptyCollection()
	c.Arrivals = dataset.New(dataset.NameArrivals, rows)
	return c
}

func sampleForecasts() forecast.Bundle {
	return forecast.Bundle{
		Arrivals: forecast.Result{Method: forecast.MethodTrendAnalysis, TotalPredicted: 900},
		Revenue:  forecast.Result{Method: forecast.MethodEnhancedTrend, TotalPredicted: 120000},
	}
}

func TestAssemble_Metadata(t *testing.T) {
	a := testAssembler()

	report := a.Assemble(sampleData(), sampleForecasts(), sampleInsights(), 30, assembleNow)

	assert.Equal(t, "report-1", report.Metadata.ID)
	assert.Equal(t, assembleNow, report.Metadata.GeneratedAt)
	assert.Equal(t, "Last 3 records", report.Metadata.DataPeriod)
	assert.Equal(t, "30 days", report.Metadata.ForecastPeriod)
	assert.InDelta(t, 0.85, report.Metadata.ConfidenceLevel, 1e-9)
	assert.Len(t, report.Initiatives, 4)
}

func TestAssemble_ExecutiveSummary(t *testing.T) {
	a := testAssembler()

	report := a.Assemble(sampleData(), sampleForecasts(), sampleInsights(), 30, assembleNow)
	summary := report.ExecutiveSummary

	assert.Equal(t, insight.AlertNormal, summary.OverallStatus)
	assert.Equal(t, 1, summary.AlertDistribution[insight.AlertWarning])
	assert.Equal(t, 2, summary.AlertDistribution[insight.AlertNormal])

	// High-impact metrics follow canonical department order.
	require.Len(t, summary.HighImpactMetrics, 3)
	assert.Equal(t, "operations", summary.HighImpactMetrics[0].Department)
	assert.Equal(t, "Average Hotel Rating", summary.HighImpactMetrics[0].Metric)
	assert.Equal(t, "marketing", summary.HighImpactMetrics[1].Department)
	assert.Equal(t, "tourism_funding", summary.HighImpactMetrics[2].Department)

	assert.InDelta(t, 900, summary.ForecastSummary["arrivals"], 1e-9)
	assert.InDelta(t, 120000, summary.ForecastSummary["revenue"], 1e-9)

	regions, ok := summary.DimensionalAnalysis["regions"]
	require.True(t, ok)
	assert.Equal(t, "Addis Ababa", regions.TopPerformers[0].Name)

	_, ok = summary.DimensionalAnalysis["nationalities"]
	assert.True(t, ok)
}

func TestAssemble_HighImpactMetricsCapped(t *testing.T) {
	a := testAssembler()

	metrics := make([]insight.Metric, 8)
	for i := range metrics {
		metrics[i] = insight.Metric{Name: "m", ImpactLevel: insight.ImpactHigh}
	}
	insights := map[string]insight.DepartmentInsight{
		"operations": {Department: "operations", AlertLevel: insight.AlertNormal, Metrics: metrics},
	}

	report := a.Assemble(dataset.EmptyCollection(), forecast.Bundle{}, insights, 30, assembleNow)

	assert.Len(t, report.ExecutiveSummary.HighImpactMetrics, 5)
}

func TestAssemble_KeyOpportunities(t *testing.T) {
	a := testAssembler()

	report := a.Assemble(sampleData(), sampleForecasts(), sampleInsights(), 30, assembleNow)
	opportunities := report.ExecutiveSummary.KeyOpportunities

	require.GreaterOrEqual(t, len(opportunities), 4)
	assert.Equal(t, baseOpportunities, opportunities[:4])
	assert.LessOrEqual(t, len(opportunities), 8)
	assert.Contains(t, opportunities, "Leverage success model from Addis Ababa for other regions")
	// Addis Ababa holds 1400 of 1600 total spend in the regions dimension.
	assert.Contains(t, opportunities, "Diversify tourism development across underperforming regions")
	assert.Contains(t, opportunities, "Expand marketing to emerging source markets")
	// Four data-driven entries fill the cap before the forecast one.
	assert.NotContains(t, opportunities, "Prepare infrastructure for projected visitor growth")
}

func TestAssemble_PerformanceIndicators(t *testing.T) {
	a := testAssembler()

	report := a.Assemble(sampleData(), sampleForecasts(), sampleInsights(), 30, assembleNow)
	indicators := report.ExecutiveSummary.PerformanceIndicators

	// Two distinct nationalities over three records.
	assert.InDelta(t, 66.67, indicators["market_diversity_index"], 1e-9)
	assert.InDelta(t, 0.85, indicators["forecast_confidence"], 1e-9)
	// Too few dated rows for a growth estimate.
	_, ok := indicators["monthly_growth_rate"]
	assert.False(t, ok)
}

func TestAssemble_Deterministic(t *testing.T) {
	a := testAssembler()

	first := a.Assemble(sampleData(), sampleForecasts(), sampleInsights(), 30, assembleNow)
	second := a.Assemble(sampleData(), sampleForecasts(), sampleInsights(), 30, assembleNow)

	assert.True(t, reflect.DeepEqual(first, second))
}

func TestMonthlyGrowthRate(t *testing.T) {
	rows := make([]dataset.Row, 0, 90)
	// One arrival per day for 90 days before the reference time.
	for i := 1; i <= 90; i++ {
		day := assembleNow.AddDate(0, 0, -i)
		rows = append(rows, dataset.Row{"arrival_date": dataset.String(day.Format("2006-01-02"))})
	}
	ds := dataset.New(dataset.NameArrivals, rows)

	growth, ok := monthlyGrowthRate(ds, assembleNow)
	require.True(t, ok)
	// The historical rate is diluted by its longer denominator, so a
	// steady series reads as moderate positive growth.
	assert.Greater(t, growth, 0.0)
	assert.Less(t, growth, 100.0)
}

func TestMonthlyGrowthRate_NotEnoughData(t *testing.T) {
	rows := make([]dataset.Row, 0, 40)
	for i := 1; i <= 40; i++ {
		day := assembleNow.AddDate(0, 0, -i)
		rows = append(rows, dataset.Row{"arrival_date": dataset.String(day.Format("2006-01-02"))})
	}
	ds := dataset.New(dataset.NameArrivals, rows)

	_, ok := monthlyGrowthRate(ds, assembleNow)
	assert.False(t, ok)
}
