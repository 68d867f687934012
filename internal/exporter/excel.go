package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"tourinsights/internal/insight"
	"tourinsights/internal/report"
)

// ExportWorkbook writes the report as an Excel workbook: a summary
// sheet followed by one sheet per department in canonical order.
func (e *ReportExporter) ExportWorkbook(rpt report.Comprehensive, filePath string) error {
	fullPath := e.csv.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, rpt); err != nil {
		return err
	}
	for _, dept := range insight.DepartmentOrder {
		ins, ok := rpt.Departments[dept]
		if !ok {
			continue
		}
		if err := writeDepartmentSheet(f, ins); err != nil {
			return err
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("workbook exported",
		slog.String("path", fullPath),
		slog.Int("departments", len(rpt.Departments)))
	return nil
}

func writeSummarySheet(f *excelize.File, rpt report.Comprehensive) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}

	rows := [][]any{
		{"Report ID", rpt.Metadata.ID},
		{"Generated At", rpt.Metadata.GeneratedAt.Format(time.RFC3339)},
		{"Data Period", rpt.Metadata.DataPeriod},
		{"Forecast Period", rpt.Metadata.ForecastPeriod},
		{"Confidence Level", formatPercent(rpt.Metadata.ConfidenceLevel * 100)},
		{"Overall Status", rpt.ExecutiveSummary.OverallStatus},
		{},
		{"High Impact Metrics"},
		{"Department", "Metric", "Value", "Trend"},
	}
	for _, m := range rpt.ExecutiveSummary.HighImpactMetrics {
		rows = append(rows, []any{m.Department, m.Metric, m.Value, m.Trend})
	}

	rows = append(rows, []any{}, []any{"Key Opportunities"})
	for _, opp := range rpt.ExecutiveSummary.KeyOpportunities {
		rows = append(rows, []any{opp})
	}

	return writeRows(f, sheet, rows)
}

func writeDepartmentSheet(f *excelize.File, ins insight.DepartmentInsight) error {
	sheet := ins.Department
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	rows := [][]any{
		{"Department", ins.Department},
		{"Alert Level", ins.AlertLevel},
		{},
		{"Metric", "Current", "Predicted", "Trend", "Impact"},
	}
	for _, m := range ins.Metrics {
		row := []any{m.Name, m.CurrentValue, nil, m.Trend, m.ImpactLevel}
		if m.PredictedValue != nil {
			row[2] = *m.PredictedValue
		}
		rows = append(rows, row)
	}

	rows = append(rows, []any{}, []any{"Recommendations"})
	for _, rec := range ins.Recommendations {
		rows = append(rows, []any{rec})
	}
	rows = append(rows, []any{}, []any{"Action Items"})
	for _, item := range ins.ActionItems {
		rows = append(rows, []any{item})
	}

	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("computing cell for row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
