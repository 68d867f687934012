package report

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"tourinsights/internal/config"
	"tourinsights/internal/dataset"
	"tourinsights/internal/dimension"
	"tourinsights/internal/forecast"
	"tourinsights/internal/insight"
)

// baseOpportunities open every opportunity list; data-driven entries are
// appended after them.
var baseOpportunities = []string{
	"Optimize pricing strategies based on demand forecasts",
	"Invest in digital transformation initiatives",
	"Strengthen international market partnerships",
	"Develop sustainable tourism practices",
}

// maxDynamicOpportunities caps the data-driven opportunity entries.
const maxDynamicOpportunities = 4

// maxHighImpactMetrics caps the executive summary's metric spotlight.
const maxHighImpactMetrics = 5

// Assembler builds comprehensive reports. Output is deterministic for a
// fixed input snapshot and timestamp when the identifier function is
// pinned.
type Assembler struct {
	confidence float64
	logger     *slog.Logger
	newID      func() string
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithIDFunc overrides report identifier generation, used by tests.
func WithIDFunc(newID func() string) Option {
	return func(a *Assembler) { a.newID = newID }
}

// NewAssembler builds an Assembler from the analytics settings.
func NewAssembler(cfg config.AnalyticsConfig, logger *slog.Logger, opts ...Option) *Assembler {
	a := &Assembler{
		confidence: cfg.ConfidenceLevel,
		logger:     logger,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble combines datasets, forecasts and department insights into
// one comprehensive report for the given timestamp.
func (a *Assembler) Assemble(data dataset.Collection, fx forecast.Bundle, insights map[string]insight.DepartmentInsight, horizon int, now time.Time) Comprehensive {
	dimensional := a.dimensionalAnalysis(data.Arrivals)

	summary := ExecutiveSummary{
		OverallStatus:         insight.OverallStatus(insights),
		AlertDistribution:     alertDistribution(insights),
		HighImpactMetrics:     highImpactMetrics(insights),
		ForecastSummary:       forecastSummary(fx),
		DimensionalAnalysis:   dimensional,
		KeyOpportunities:      keyOpportunities(dimensional, fx),
		PerformanceIndicators: a.performanceIndicators(data.Arrivals, fx, now),
	}

	report := Comprehensive{
		Metadata: Metadata{
			ID:              a.newID(),
			GeneratedAt:     now,
			DataPeriod:      fmt.Sprintf("Last %d records", data.Arrivals.Len()),
			ForecastPeriod:  fmt.Sprintf("%d days", horizon),
			ConfidenceLevel: a.confidence,
		},
		ExecutiveSummary: summary,
		Forecasts:        fx,
		Departments:      insights,
		Initiatives:      initiatives,
	}

	a.logger.Info("report assembled",
		slog.String("report_id", report.Metadata.ID),
		slog.String("overall_status", summary.OverallStatus),
		slog.Int("departments", len(insights)))
	return report
}

func alertDistribution(insights map[string]insight.DepartmentInsight) map[string]int {
	counts := map[string]int{
		insight.AlertCritical: 0,
		insight.AlertWarning:  0,
		insight.AlertNormal:   0,
		insight.AlertPositive: 0,
	}
	for _, ins := range insights {
		counts[ins.AlertLevel]++
	}
	return counts
}

// highImpactMetrics surfaces the first high-impact metrics in canonical
// department order, keeping the selection stable across runs.
func highImpactMetrics(insights map[string]insight.DepartmentInsight) []HighImpactMetric {
	var selected []HighImpactMetric
	for _, dept := range insight.DepartmentOrder {
		ins, ok := insights[dept]
		if !ok {
			continue
		}
		for _, metric := range ins.Metrics {
			if metric.ImpactLevel != insight.ImpactHigh {
				continue
			}
			selected = append(selected, HighImpactMetric{
				Department: dept,
				Metric:     metric.Name,
				Value:      metric.CurrentValue,
				Trend:      metric.Trend,
			})
			if len(selected) == maxHighImpactMetrics {
				return selected
			}
		}
	}
	return selected
}

func forecastSummary(fx forecast.Bundle) map[string]float64 {
	summary := make(map[string]float64)
	if !fx.Arrivals.Failed() {
		summary["arrivals"] = fx.Arrivals.TotalPredicted
	}
	if !fx.Revenue.Failed() {
		summary["revenue"] = fx.Revenue.TotalPredicted
	}
	return summary
}

// dimensionDefs maps summary keys to the arrival columns they analyze.
var dimensionDefs = []struct {
	key    string
	column string
	topN   int
}{
	{"regions", "home_region", 5},
	{"destinations", "tourist_destination", 5},
	{"sectors", "sector", 5},
	{"demographics", "sex", 5},
	{"nationalities", "nationality", 10},
	{"age_groups", "age_group", 5},
	{"package_types", "package_type", 5},
}

func (a *Assembler) dimensionalAnalysis(arrivals *dataset.Dataset) map[string]dimension.Analysis {
	analyses := make(map[string]dimension.Analysis)
	if arrivals.IsEmpty() {
		return analyses
	}

	ds := arrivals
	if arrivals.HasColumn("age") {
		ds = withAgeGroups(arrivals)
	}

	for _, def := range dimensionDefs {
		if !ds.HasColumn(def.column) {
			continue
		}
		analysis := dimension.Analyze(ds, def.column, "", def.topN)
		if !analysis.Empty() {
			analyses[def.key] = analysis
		}
	}
	return analyses
}

// ageBounds label visitor ages for the age-group dimension.
var ageBounds = []struct {
	label string
	upper float64
}{
	{"18-25", 25},
	{"26-35", 35},
	{"36-50", 50},
	{"51-65", 65},
	{"65+", 200},
}

// withAgeGroups copies the dataset with a derived age_group column.
func withAgeGroups(ds *dataset.Dataset) *dataset.Dataset {
	rows := make([]dataset.Row, 0, ds.Len())
	for _, row := range ds.Rows {
		copied := make(dataset.Row, len(row)+1)
		for k, v := range row {
			copied[k] = v
		}
		if age, ok := row.Float("age"); ok {
			for _, bound := range ageBounds {
				if age <= bound.upper {
					copied["age_group"] = dataset.String(bound.label)
					break
				}
			}
		}
		rows = append(rows, copied)
	}
	return dataset.New(ds.Name, rows)
}

// keyOpportunities layers up to four data-driven entries on top of the
// static base list.
func keyOpportunities(dimensional map[string]dimension.Analysis, fx forecast.Bundle) []string {
	var dynamic []string

	if regions, ok := dimensional["regions"]; ok {
		if regions.GrowthPotential == dimension.HighConcentration {
			dynamic = append(dynamic, "Diversify tourism development across underperforming regions")
		}
		if len(regions.TopPerformers) > 0 {
			dynamic = append(dynamic, fmt.Sprintf("Leverage success model from %s for other regions", regions.TopPerformers[0].Name))
		}
	}
	if nationalities, ok := dimensional["nationalities"]; ok {
		if len(nationalities.TopPerformers) < 5 {
			dynamic = append(dynamic, "Expand marketing to emerging source markets")
		}
	}
	if _, ok := dimensional["sectors"]; ok {
		dynamic = append(dynamic, "Strengthen public-private partnerships in tourism development")
	}
	if !fx.Arrivals.Failed() && fx.Arrivals.TotalPredicted > 0 {
		dynamic = append(dynamic, "Prepare infrastructure for projected visitor growth")
	}

	if len(dynamic) > maxDynamicOpportunities {
		dynamic = dynamic[:maxDynamicOpportunities]
	}
	return append(append([]string{}, baseOpportunities...), dynamic...)
}

// performanceIndicators derives the summary KPIs: market diversity,
// monthly growth when enough dated history exists, and the configured
// forecast confidence when any forecast succeeded.
func (a *Assembler) performanceIndicators(arrivals *dataset.Dataset, fx forecast.Bundle, now time.Time) map[string]float64 {
	indicators := make(map[string]float64)
	if arrivals.IsEmpty() {
		return indicators
	}

	if arrivals.HasColumn("nationality") {
		distinct := make(map[string]struct{})
		for _, row := range arrivals.Rows {
			if v := row.Get("nationality").Text(); v != "" {
				distinct[v] = struct{}{}
			}
		}
		if len(distinct) > 0 {
			indicators["market_diversity_index"] = round2(float64(len(distinct)) / float64(arrivals.Len()) * 100)
		}
	}

	if growth, ok := monthlyGrowthRate(arrivals, now); ok {
		indicators["monthly_growth_rate"] = round2(growth)
	}

	if !fx.Arrivals.Failed() || !fx.Revenue.Failed() {
		indicators["forecast_confidence"] = a.confidence
	}
	return indicators
}

// monthlyGrowthRate compares the last 30 days of arrivals against the
// longer history. It needs more than 60 dated rows to say anything.
func monthlyGrowthRate(arrivals *dataset.Dataset, now time.Time) (float64, bool) {
	caps := dataset.Probe(arrivals)
	if !caps.HasDate() {
		return 0, false
	}

	cutoff := now.AddDate(0, 0, -30)
	var dated, recent, historical int
	var earliest time.Time
	for _, row := range arrivals.Rows {
		ts, ok := dataset.ParseDate(row.Get(caps.DateColumn).Text())
		if !ok {
			continue
		}
		dated++
		if ts.After(cutoff) || ts.Equal(cutoff) {
			recent++
		} else {
			historical++
			if earliest.IsZero() || ts.Before(earliest) {
				earliest = ts
			}
		}
	}
	if dated <= 60 || recent == 0 || historical == 0 {
		return 0, false
	}

	historicalDays := now.Sub(earliest).Hours() / 24
	if historicalDays < 1 {
		historicalDays = 1
	}
	recentAvg := float64(recent) / 30
	historicalAvg := float64(historical) / historicalDays
	if historicalAvg <= 0 {
		return 0, false
	}
	return (recentAvg - historicalAvg) / historicalAvg * 100, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
