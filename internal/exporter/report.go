package exporter

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"tourinsights/internal/forecast"
	"tourinsights/internal/insight"
	"tourinsights/internal/report"
)

// ReportExporter renders comprehensive reports to files under the
// reports directory.
type ReportExporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewReportExporter creates a report exporter rooted at baseDir.
func NewReportExporter(baseDir string, logger *slog.Logger) *ReportExporter {
	return &ReportExporter{
		csv:    NewCSVWriter(baseDir),
		logger: logger,
	}
}

// ExportSummaryCSV writes the executive summary as a key/value CSV.
func (e *ReportExporter) ExportSummaryCSV(rpt report.Comprehensive, filePath string) error {
	records := [][]string{
		{"report_id", rpt.Metadata.ID},
		{"generated_at", rpt.Metadata.GeneratedAt.Format(time.RFC3339)},
		{"data_period", rpt.Metadata.DataPeriod},
		{"forecast_period", rpt.Metadata.ForecastPeriod},
		{"overall_status", rpt.ExecutiveSummary.OverallStatus},
	}

	for _, level := range []string{insight.AlertCritical, insight.AlertWarning, insight.AlertNormal, insight.AlertPositive} {
		records = append(records, []string{
			"alerts_" + level,
			formatInt(int64(rpt.ExecutiveSummary.AlertDistribution[level])),
		})
	}

	for _, m := range rpt.ExecutiveSummary.HighImpactMetrics {
		records = append(records, []string{
			fmt.Sprintf("high_impact/%s/%s", m.Department, m.Metric),
			formatFloat(m.Value),
		})
	}

	for _, kind := range sortedKeys(rpt.ExecutiveSummary.ForecastSummary) {
		records = append(records, []string{
			"forecast_" + kind,
			formatFloat(rpt.ExecutiveSummary.ForecastSummary[kind]),
		})
	}

	for _, name := range sortedKeys(rpt.ExecutiveSummary.PerformanceIndicators) {
		records = append(records, []string{
			name,
			formatFloat(rpt.ExecutiveSummary.PerformanceIndicators[name]),
		})
	}

	return e.csv.WriteSimpleCSV(filePath, []string{"field", "value"}, records)
}

// ExportForecastCSV streams the daily forecast values for every
// forecast kind into one CSV.
func (e *ReportExporter) ExportForecastCSV(fx forecast.Bundle, filePath string) error {
	stream, err := e.csv.CreateStreamWriter(filePath, []string{"kind", "method", "date", "value"})
	if err != nil {
		return err
	}

	write := func(kind string, result forecast.Result) error {
		if result.Failed() {
			return nil
		}
		for i, date := range result.Dates {
			record := []string{kind, result.Method, date, formatFloat(result.Values[i])}
			if err := stream.WriteRecord(record); err != nil {
				return fmt.Errorf("writing %s forecast: %w", kind, err)
			}
		}
		return nil
	}

	if err := write("arrivals", fx.Arrivals); err != nil {
		stream.Close()
		return err
	}
	if err := write("revenue", fx.Revenue); err != nil {
		stream.Close()
		return err
	}
	for _, region := range sortedResultKeys(fx.Occupancy) {
		if err := write("occupancy:"+region, fx.Occupancy[region]); err != nil {
			stream.Close()
			return err
		}
	}

	return stream.Close()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedResultKeys(m map[string]forecast.Result) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
