package insight

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourinsights/internal/dataset"
	"tourinsights/internal/forecast"
	"tourinsights/internal/synthetic"
)

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	params := forecast.Params{
		AssumedRoomRate:    100,
		RevenuePerVisitor:  150,
		EconomicMultiplier: 2.5,
		DefaultDailyGrowth: 1.02,
		ConfidenceLevel:    0.85,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g, err := NewGenerator(params, synthetic.Fixed{}, logger)
	require.NoError(t, err)
	return g
}

func TestDepartments_CanonicalOrder(t *testing.T) {
	g := testGenerator(t)

	assert.Equal(t, []string{
		"software_development",
		"operations",
		"marketing",
		"research_development",
		"resource_mobility",
		"tourism_funding",
	}, g.Departments())
}

func TestGenerate_EmptyDataStillProducesOutput(t *testing.T) {
	g := testGenerator(t)

	insights := g.Generate(context.Background(), dataset.EmptyCollection(), forecast.Bundle{
		Arrivals: forecast.Result{Err: forecast.ErrMsgInsufficientData},
		Revenue:  forecast.Result{Err: forecast.ErrMsgInsufficientData},
	})

	require.Len(t, insights, 6)
	for dept, ins := range insights {
		assert.Equal(t, dept, ins.Department)
		assert.NotEmpty(t, ins.Recommendations, "department %s has no recommendations", dept)
		assert.NotEmpty(t, ins.ActionItems, "department %s has no action items", dept)
		assert.Equal(t, AlertNormal, ins.AlertLevel, "department %s alert", dept)
	}
}

func TestGenerateDepartment_Unknown(t *testing.T) {
	g := testGenerator(t)

	_, err := g.GenerateDepartment(context.Background(), "finance", dataset.EmptyCollection(), forecast.Bundle{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown department")
}

func arrivalsCollection(rows []dataset.Row) dataset.Collection {
	c := dataset.EmptyCollection()
	c.Arrivals = dataset.New(dataset.NameArrivals, rows)
	return c
}

func TestMarketing_ConcentratedMarket(t *testing.T) {
	g := testGenerator(t)

	// One source market at 70% share.
	rows := make([]dataset.Row, 0, 10)
	for i := 0; i < 7; i++ {
		rows = append(rows, dataset.Row{"nationality": dataset.String("Germany")})
	}
	for _, n := range []string{"Kenya", "Italy", "Japan"} {
		rows = append(rows, dataset.Row{"nationality": dataset.String(n)})
	}

	ins, err := g.GenerateDepartment(context.Background(), "marketing", arrivalsCollection(rows), forecast.Bundle{})
	require.NoError(t, err)

	var topShare, diversity *Metric
	for i := range ins.Metrics {
		if strings.HasPrefix(ins.Metrics[i].Name, "Top Source Market Share") {
			topShare = &ins.Metrics[i]
		}
		if ins.Metrics[i].Name == "Market Diversity Index" {
			diversity = &ins.Metrics[i]
		}
	}
	require.NotNil(t, topShare)
	assert.Contains(t, topShare.Name, "Germany")
	assert.InDelta(t, 70, topShare.CurrentValue, 1e-9)

	require.NotNil(t, diversity)
	assert.Contains(t, diversity.Recommendation, "Diversify marketing")

	var targeted bool
	for _, rec := range ins.Recommendations {
		if strings.Contains(rec, "Target Germany market") {
			targeted = true
		}
	}
	assert.True(t, targeted)
}

func TestMarketing_LowSatisfactionEscalates(t *testing.T) {
	g := testGenerator(t)

	rows := []dataset.Row{
		{"satisfaction_score": dataset.Number(3.2)},
		{"satisfaction_score": dataset.Number(3.8)},
	}

	ins, err := g.GenerateDepartment(context.Background(), "marketing", arrivalsCollection(rows), forecast.Bundle{})
	require.NoError(t, err)

	assert.Equal(t, AlertWarning, ins.AlertLevel)

	var flagged bool
	for _, item := range ins.ActionItems {
		if strings.Contains(item, "satisfaction issues") {
			flagged = true
		}
	}
	assert.True(t, flagged)
}

func TestSoftwareDevelopment_IncompleteDataEscalates(t *testing.T) {
	g := testGenerator(t)

	// Half the cells in a two-column dataset are missing.
	rows := []dataset.Row{
		{"nationality": dataset.String("Kenya"), "age": dataset.Number(30)},
		{"nationality": dataset.Missing, "age": dataset.Missing},
	}

	ins, err := g.GenerateDepartment(context.Background(), "software_development", arrivalsCollection(rows), forecast.Bundle{})
	require.NoError(t, err)

	assert.Equal(t, AlertWarning, ins.AlertLevel)
	require.NotEmpty(t, ins.Metrics)
	assert.Equal(t, "Data Completeness", ins.Metrics[0].Name)
	assert.InDelta(t, 50, ins.Metrics[0].CurrentValue, 1e-9)
}

func TestOperations_LowRatingEscalates(t *testing.T) {
	g := testGenerator(t)

	c := dataset.EmptyCollection()
	c.Occupancy = dataset.New(dataset.NameOccupancy, []dataset.Row{
		{"hotel_nights": dataset.Number(3), "hotel_rating": dataset.Number(3.0)},
		{"hotel_nights": dataset.Number(4), "hotel_rating": dataset.Number(3.2)},
	})

	ins, err := g.GenerateDepartment(context.Background(), "operations", c, forecast.Bundle{})
	require.NoError(t, err)

	assert.Equal(t, AlertWarning, ins.AlertLevel)
}

func TestTourismFunding_EconomicImpact(t *testing.T) {
	g := testGenerator(t)

	rows := []dataset.Row{
		{"nationality": dataset.String("Kenya")},
		{"nationality": dataset.String("Italy")},
	}
	fx := forecast.Bundle{
		Arrivals: forecast.Result{Method: forecast.MethodBasic, TotalPredicted: 300},
	}

	ins, err := g.GenerateDepartment(context.Background(), "tourism_funding", arrivalsCollection(rows), fx)
	require.NoError(t, err)

	var impact *Metric
	for i := range ins.Metrics {
		if ins.Metrics[i].Name == "Projected Economic Impact" {
			impact = &ins.Metrics[i]
		}
	}
	require.NotNil(t, impact)
	// Two current visitors at the default 150 per visitor and 2.5 multiplier.
	assert.InDelta(t, 2*150*2.5, impact.CurrentValue, 1e-9)
	require.NotNil(t, impact.PredictedValue)
	assert.InDelta(t, 300*150*2.5, *impact.PredictedValue, 1e-9)
}

func TestGenerateDepartment_CarriesForecasts(t *testing.T) {
	g := testGenerator(t)

	fx := forecast.Bundle{
		Arrivals: forecast.Result{Method: forecast.MethodTrendAnalysis, TotalPredicted: 420},
		Occupancy: map[string]forecast.Result{
			forecast.OverallRegion: {Method: forecast.MethodRatingBased},
		},
	}

	ins, err := g.GenerateDepartment(context.Background(), "operations", dataset.EmptyCollection(), fx)
	require.NoError(t, err)

	assert.Equal(t, fx, ins.Forecasts)
}

func TestOverallStatus(t *testing.T) {
	mk := func(levels ...string) map[string]DepartmentInsight {
		insights := make(map[string]DepartmentInsight, len(levels))
		for i, level := range levels {
			insights[string(rune('a'+i))] = DepartmentInsight{AlertLevel: level}
		}
		return insights
	}

	tests := []struct {
		name     string
		insights map[string]DepartmentInsight
		want     string
	}{
		{"all normal", mk(AlertNormal, AlertNormal, AlertNormal), AlertNormal},
		{"two warnings tolerated", mk(AlertWarning, AlertWarning, AlertNormal), AlertNormal},
		{"three warnings escalate", mk(AlertWarning, AlertWarning, AlertWarning), AlertWarning},
		{"any critical escalates", mk(AlertCritical, AlertNormal, AlertNormal), AlertWarning},
		{"empty", mk(), AlertNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverallStatus(tt.insights))
		})
	}
}
