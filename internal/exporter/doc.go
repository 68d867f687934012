// Package exporter writes assembled analytics reports to disk.
//
// It contains two components:
//
// CSVWriter: core CSV writing with headers, streaming, and a UTF-8 BOM
// for Excel compatibility.
//
// ReportExporter: renders a comprehensive report as a summary CSV, a
// per-day forecast CSV, and a multi-sheet Excel workbook with one sheet
// per department.
package exporter
