// Package insight derives per-department metrics, recommendations and
// action items from the loaded tourism datasets and their forecasts.
package insight

import "tourinsights/internal/forecast"

// Alert levels, from worst to best. Department evaluation only ever
// escalates to AlertWarning; AlertCritical stays in the vocabulary for
// externally determined incidents.
const (
	AlertCritical = "critical"
	AlertWarning  = "warning"
	AlertNormal   = "normal"
	AlertPositive = "positive"
)

// Trend labels for a metric's expected direction.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Impact levels for a metric's business weight.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// Metric is one named observation about the current data, optionally
// paired with a predicted value. Metrics are immutable once produced.
type Metric struct {
	Name           string   `json:"metric_name"`
	CurrentValue   float64  `json:"current_value"`
	PredictedValue *float64 `json:"predicted_value,omitempty"`
	Trend          string   `json:"trend"`
	Confidence     float64  `json:"confidence"`
	ImpactLevel    string   `json:"impact_level"`
	Recommendation string   `json:"recommendation"`
	Relevance      []string `json:"department_relevance"`
}

// DepartmentInsight is the full evaluation result for one department.
// Forecasts carries the bundle the evaluation ran against, so a stored
// insight stays interpretable without the parent report.
type DepartmentInsight struct {
	Department      string          `json:"department"`
	Priority        string          `json:"priority"`
	FocusMetrics    []string        `json:"focus_metrics"`
	Metrics         []Metric        `json:"key_metrics"`
	Forecasts       forecast.Bundle `json:"forecasts"`
	Recommendations []string        `json:"recommendations"`
	ActionItems     []string        `json:"action_items"`
	AlertLevel      string          `json:"alert_level"`
}

// DepartmentOrder is the canonical iteration order for cross-department
// aggregation, matching the profile table.
var DepartmentOrder = []string{
	"software_development",
	"operations",
	"marketing",
	"research_development",
	"resource_mobility",
	"tourism_funding",
}

// OverallStatus aggregates department alert levels: warning when any
// department is critical or more than two are at warning.
func OverallStatus(insights map[string]DepartmentInsight) string {
	warnings := 0
	for _, ins := range insights {
		switch ins.AlertLevel {
		case AlertCritical:
			return AlertWarning
		case AlertWarning:
			warnings++
		}
	}
	if warnings > 2 {
		return AlertWarning
	}
	return AlertNormal
}

func floatPtr(v float64) *float64 {
	return &v
}
