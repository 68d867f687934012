// Package report assembles forecasts, departmental insights and
// dimensional analysis into one comprehensive reporting structure.
package report

import (
	"time"

	"tourinsights/internal/dimension"
	"tourinsights/internal/forecast"
	"tourinsights/internal/insight"
)

// Metadata describes one report run.
type Metadata struct {
	ID              string    `json:"id"`
	GeneratedAt     time.Time `json:"generated_at"`
	DataPeriod      string    `json:"data_period"`
	ForecastPeriod  string    `json:"forecast_period"`
	ConfidenceLevel float64   `json:"confidence_level"`
}

// HighImpactMetric is a department metric surfaced into the executive
// summary.
type HighImpactMetric struct {
	Department string  `json:"department"`
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
	Trend      string  `json:"trend"`
}

// Initiative is one cross-departmental programme from the static
// catalogue included in every report.
type Initiative struct {
	Title       string   `json:"title"`
	Departments []string `json:"departments"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Timeline    string   `json:"timeline"`
}

// ExecutiveSummary condenses the full report for leadership review.
type ExecutiveSummary struct {
	OverallStatus         string                        `json:"overall_status"`
	AlertDistribution     map[string]int                `json:"alert_distribution"`
	HighImpactMetrics     []HighImpactMetric            `json:"high_impact_metrics"`
	ForecastSummary       map[string]float64            `json:"forecast_summary"`
	DimensionalAnalysis   map[string]dimension.Analysis `json:"dimensional_analysis"`
	KeyOpportunities      []string                      `json:"key_opportunities"`
	PerformanceIndicators map[string]float64            `json:"performance_indicators"`
}

// Comprehensive is the full assembled report.
type Comprehensive struct {
	Metadata         Metadata                             `json:"report_metadata"`
	ExecutiveSummary ExecutiveSummary                     `json:"executive_summary"`
	Forecasts        forecast.Bundle                      `json:"forecasts"`
	Departments      map[string]insight.DepartmentInsight `json:"departmental_insights"`
	Initiatives      []Initiative                         `json:"cross_departmental_initiatives"`
}

// initiatives is the static cross-departmental catalogue.
var initiatives = []Initiative{
	{
		Title:       "Integrated Revenue Optimization",
		Departments: []string{"operations", "marketing", "tourism_funding"},
		Description: "Combine operational data, marketing insights, and funding strategies to maximize revenue per visitor",
		Priority:    "high",
		Timeline:    "3 months",
	},
	{
		Title:       "Digital Tourism Platform Development",
		Departments: []string{"software_development", "marketing", "research_development"},
		Description: "Build comprehensive digital platform for enhanced visitor experience and data collection",
		Priority:    "high",
		Timeline:    "6 months",
	},
	{
		Title:       "Resource Allocation Optimization",
		Departments: []string{"resource_mobility", "operations", "tourism_funding"},
		Description: "Implement data-driven resource allocation based on demand patterns and ROI analysis",
		Priority:    "medium",
		Timeline:    "4 months",
	},
	{
		Title:       "Predictive Analytics Implementation",
		Departments: []string{"software_development", "research_development", "operations"},
		Description: "Deploy ML models for demand forecasting and operational optimization",
		Priority:    "medium",
		Timeline:    "5 months",
	},
}
