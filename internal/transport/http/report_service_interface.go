package http

import (
	"context"

	"tourinsights/internal/report"
	"tourinsights/internal/services"
)

// ReportService defines the business operations the report handler
// depends on. Satisfied by services.ReportService; tests substitute
// a stub.
type ReportService interface {
	GenerateComprehensive(ctx context.Context, opts services.GenerateOptions) (report.Comprehensive, error)
	Latest(ctx context.Context) (report.Comprehensive, error)
}
