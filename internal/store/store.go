// Package store persists analytics output to Postgres and serves as the
// hosted row source for the dataset loader. The schema keeps full
// reports as JSONB blobs with a few queryable columns alongside.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tourinsights/internal/config"
	"tourinsights/internal/dataset"
	apperrors "tourinsights/internal/errors"
	"tourinsights/internal/forecast"
	"tourinsights/internal/insight"
	"tourinsights/internal/report"
)

// tableDateColumns maps each hosted source table to the column used for
// daysBack filtering.
var tableDateColumns = map[string]string{
	dataset.NameArrivals:  "timestamp",
	dataset.NameOccupancy: "date",
	dataset.NameVisits:    "visit_date",
	dataset.NameSurveys:   "survey_date",
}

// flatTable is the single-table fallback queried when the per-table
// layout is absent.
const (
	flatTable        = "tourism_data"
	flatTableDateCol = "created_at"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool         *pgxpool.Pool
	logger       *slog.Logger
	queryTimeout time.Duration
}

// Open connects to the database described by cfg and verifies the
// connection with a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, apperrors.NewStorageError("invalid database DSN", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create connection pool", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, apperrors.NewStorageError("database ping failed", err)
	}

	logger.InfoContext(ctx, "database connection established",
		slog.Int("max_conns", int(poolCfg.MaxConns)))
	return &Store{
		pool:         pool,
		logger:       logger,
		queryTimeout: cfg.QueryTimeout,
	}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies database connectivity, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// LoadTables reads the four analysis tables. A table that fails to read
// is skipped with a log entry so a partial schema still yields data;
// all four failing is an error.
func (s *Store) LoadTables(ctx context.Context, daysBack int) (map[string][]dataset.Row, error) {
	tables := make(map[string][]dataset.Row, len(tableDateColumns))
	failures := 0
	for table, dateCol := range tableDateColumns {
		rows, err := s.queryRows(ctx, table, dateCol, daysBack)
		if err != nil {
			failures++
			s.logger.WarnContext(ctx, "hosted table unavailable",
				slog.String("table", table),
				slog.String("error", err.Error()))
			continue
		}
		tables[table] = rows
	}
	if failures == len(tableDateColumns) {
		return nil, apperrors.NewStorageError("no hosted tables readable", apperrors.ErrDataUnavailable)
	}
	return tables, nil
}

// QueryFlatTable reads the single-table fallback layout.
func (s *Store) QueryFlatTable(ctx context.Context, daysBack int) ([]dataset.Row, error) {
	return s.queryRows(ctx, flatTable, flatTableDateCol, daysBack)
}

// queryRows selects every column of a table, optionally filtered to the
// trailing daysBack window. Table and column names come from the fixed
// maps above, never from input.
func (s *Store) queryRows(ctx context.Context, table, dateCol string, daysBack int) ([]dataset.Row, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT * FROM %s`, table)
	args := []any{}
	if daysBack > 0 {
		query += fmt.Sprintf(` WHERE %s >= $1`, dateCol)
		args = append(args, time.Now().AddDate(0, 0, -daysBack))
	}

	rows, err := s.pool.Query(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []dataset.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading %s row: %w", table, err)
		}
		row := make(dataset.Row, len(fields))
		for i, field := range fields {
			row[field.Name] = toValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return out, nil
}

// toValue converts a driver value into the dataset representation.
func toValue(v any) dataset.Value {
	switch t := v.(type) {
	case nil:
		return dataset.Missing
	case string:
		return dataset.String(t)
	case bool:
		return dataset.String(strconv.FormatBool(t))
	case time.Time:
		return dataset.String(t.Format(time.RFC3339))
	case float64:
		return dataset.Number(t)
	case float32:
		return dataset.Number(float64(t))
	case int64:
		return dataset.Number(float64(t))
	case int32:
		return dataset.Number(float64(t))
	case int16:
		return dataset.Number(float64(t))
	case int:
		return dataset.Number(float64(t))
	default:
		s := fmt.Sprintf("%v", t)
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return dataset.Number(f)
		}
		return dataset.String(s)
	}
}

// SaveReport persists the full report as JSONB, upserting on the report
// identifier.
func (s *Store) SaveReport(ctx context.Context, rpt report.Comprehensive) error {
	payload, err := json.Marshal(rpt)
	if err != nil {
		return apperrors.NewStorageError("failed to encode report", err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err = s.pool.Exec(queryCtx, `
		INSERT INTO analytics_reports (id, generated_at, overall_status, report_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			generated_at = EXCLUDED.generated_at,
			overall_status = EXCLUDED.overall_status,
			report_json = EXCLUDED.report_json`,
		rpt.Metadata.ID, rpt.Metadata.GeneratedAt, rpt.ExecutiveSummary.OverallStatus, payload)
	if err != nil {
		return apperrors.NewStorageError("failed to save report", err)
	}
	return nil
}

// SaveForecasts records the per-method forecast summaries for a report.
func (s *Store) SaveForecasts(ctx context.Context, reportID string, fx forecast.Bundle, generatedAt time.Time) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	batch := &pgx.Batch{}
	queue := func(kind string, result forecast.Result) {
		if result.Failed() {
			return
		}
		batch.Queue(`
			INSERT INTO forecasts (report_id, kind, method, total_predicted, average_daily, generated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			reportID, kind, result.Method, result.TotalPredicted, result.AverageDaily, generatedAt)
	}
	queue("arrivals", fx.Arrivals)
	queue("revenue", fx.Revenue)
	for region, result := range fx.Occupancy {
		queue("occupancy:"+region, result)
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := s.pool.SendBatch(queryCtx, batch).Close(); err != nil {
		return apperrors.NewStorageError("failed to save forecasts", err)
	}
	return nil
}

// SaveInsights records each department's evaluation outcome.
func (s *Store) SaveInsights(ctx context.Context, reportID string, insights map[string]insight.DepartmentInsight, generatedAt time.Time) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	batch := &pgx.Batch{}
	for _, dept := range insight.DepartmentOrder {
		ins, ok := insights[dept]
		if !ok {
			continue
		}
		payload, err := json.Marshal(ins)
		if err != nil {
			return apperrors.NewStorageError("failed to encode insight", err)
		}
		batch.Queue(`
			INSERT INTO department_insights (report_id, department, alert_level, insight_json, generated_at)
			VALUES ($1, $2, $3, $4, $5)`,
			reportID, dept, ins.AlertLevel, payload, generatedAt)
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := s.pool.SendBatch(queryCtx, batch).Close(); err != nil {
		return apperrors.NewStorageError("failed to save insights", err)
	}
	return nil
}

// LatestReport returns the most recently generated report.
func (s *Store) LatestReport(ctx context.Context) (report.Comprehensive, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var payload []byte
	err := s.pool.QueryRow(queryCtx, `
		SELECT report_json FROM analytics_reports
		ORDER BY generated_at DESC
		LIMIT 1`).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return report.Comprehensive{}, apperrors.ErrRecordNotFound
	}
	if err != nil {
		return report.Comprehensive{}, apperrors.NewStorageError("failed to load latest report", err)
	}

	var rpt report.Comprehensive
	if err := json.Unmarshal(payload, &rpt); err != nil {
		return report.Comprehensive{}, apperrors.NewStorageError("failed to decode stored report", err)
	}
	return rpt, nil
}
