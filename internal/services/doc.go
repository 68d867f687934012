// Package services hosts the business layer between the HTTP transport
// and the analytics packages. ReportService runs the full reporting
// pipeline: load datasets, fan out forecasts and department insights,
// assemble the comprehensive report, and persist it when a store is
// configured.
package services
