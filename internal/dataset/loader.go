package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "tourinsights/internal/errors"
)

// RowSource supplies rows from the hosted data store. Implementations live in
// the store package; the loader only needs these two call shapes.
type RowSource interface {
	// LoadTables returns rows for the four analysis tables keyed by dataset
	// name. Missing tables come back as empty slices, not errors.
	LoadTables(ctx context.Context, daysBack int) (map[string][]Row, error)
	// QueryFlatTable returns rows from the single flat tourism_data table.
	QueryFlatTable(ctx context.Context, daysBack int) ([]Row, error)
}

// Loader resolves tourism data through an ordered chain of sources: hosted
// tables, then a CSV file, then the flat fallback table.
type Loader struct {
	source   RowSource
	csvPaths []string
	logger   *slog.Logger
	now      func() time.Time
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithSource attaches a hosted row source
func WithSource(source RowSource) LoaderOption {
	return func(l *Loader) { l.source = source }
}

// WithCSVPaths overrides the candidate CSV file paths
func WithCSVPaths(paths []string) LoaderOption {
	return func(l *Loader) { l.csvPaths = paths }
}

// WithClock overrides the loader's clock, used by tests for stable cutoffs
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// DefaultCSVPaths are the candidate locations for the fallback dataset file
var DefaultCSVPaths = []string{
	"tourism_dataset.csv",
	"data/tourism_dataset.csv",
	"../tourism_dataset.csv",
	"functions/tourism_dataset.csv",
}

// NewLoader creates a loader with the given options
func NewLoader(logger *slog.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		csvPaths: DefaultCSVPaths,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves the four analysis datasets, walking the source chain until
// one yields data. Only total exhaustion is an error (ErrDataUnavailable).
func (l *Loader) Load(ctx context.Context, daysBack int) (Collection, error) {
	if l.source != nil {
		collection, err := l.loadFromSource(ctx, daysBack)
		if err != nil {
			l.logger.WarnContext(ctx, "hosted source failed, trying fallbacks",
				slog.String("error", err.Error()))
		} else if !collection.AllEmpty() {
			l.logger.InfoContext(ctx, "loaded data from hosted source",
				slog.Int("total_rows", collection.TotalRows()))
			return collection, nil
		} else {
			l.logger.WarnContext(ctx, "hosted source returned no rows, trying fallbacks")
		}
	}

	for _, path := range l.csvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		collection, err := l.loadFromCSV(ctx, path, daysBack)
		if err != nil {
			l.logger.ErrorContext(ctx, "failed to load CSV file",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		l.logger.InfoContext(ctx, "loaded data from CSV file",
			slog.String("path", path),
			slog.Int("rows", collection.Arrivals.Len()))
		return collection, nil
	}

	if l.source != nil {
		rows, err := l.source.QueryFlatTable(ctx, daysBack)
		if err == nil && len(rows) > 0 {
			l.logger.InfoContext(ctx, "loaded data from flat fallback table",
				slog.Int("rows", len(rows)))
			return l.partitionFlat(rows), nil
		}
		if err != nil {
			l.logger.ErrorContext(ctx, "flat table query failed",
				slog.String("error", err.Error()))
		}
	}

	return Collection{}, apperrors.NewDataSourceError(
		"all data loading fallbacks exhausted", apperrors.ErrDataUnavailable)
}

// loadFromSource loads the four named tables and normalizes each
func (l *Loader) loadFromSource(ctx context.Context, daysBack int) (Collection, error) {
	tables, err := l.source.LoadTables(ctx, daysBack)
	if err != nil {
		return Collection{}, fmt.Errorf("loading hosted tables: %w", err)
	}

	collection := EmptyCollection()
	for _, name := range []string{NameArrivals, NameOccupancy, NameVisits, NameSurveys} {
		rows := tables[name]
		normalized := l.normalize(rows)
		switch name {
		case NameArrivals:
			collection.Arrivals = New(name, normalized)
		case NameOccupancy:
			collection.Occupancy = New(name, normalized)
		case NameVisits:
			collection.Visits = New(name, normalized)
		case NameSurveys:
			collection.Surveys = New(name, normalized)
		}
	}
	return collection, nil
}

// loadFromCSV reads the dataset file and partitions it into the four datasets
func (l *Loader) loadFromCSV(ctx context.Context, path string, daysBack int) (Collection, error) {
	rows, err := l.readCSV(path)
	if err != nil {
		return Collection{}, err
	}

	rows = l.normalize(rows)
	rows = l.filterByDate(ctx, rows, daysBack)

	return l.partition(rows), nil
}

// readCSV parses a CSV file into raw rows, stripping a UTF-8 BOM if present
func (l *Loader) readCSV(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content: %w", err)
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV file has no data rows")
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i >= len(record) {
				break
			}
			row[strings.TrimSpace(col)] = String(record[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// normalize coerces known numeric columns and computes the derived fields:
// calendar components, total_spend and occupancy_rate.
func (l *Loader) normalize(rows []Row) []Row {
	if len(rows) == 0 {
		return rows
	}

	for _, row := range rows {
		for _, col := range NumericColumns {
			v, ok := row[col]
			if !ok || v.Kind != KindString {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
			if err != nil {
				// Failed coercion propagates as missing, never as zero.
				row[col] = Missing
				continue
			}
			row[col] = Number(f)
		}
	}

	dateCol := firstDateColumn(rows)
	for _, row := range rows {
		if dateCol != "" {
			if ts, ok := ParseDate(row.Get(dateCol).Text()); ok {
				row["year"] = Number(float64(ts.Year()))
				row["month"] = Number(float64(ts.Month()))
				row["day_of_week"] = String(ts.Weekday().String())
				_, week := ts.ISOWeek()
				row["week_of_year"] = Number(float64(week))
			}
		}

		var total float64
		var seen bool
		for _, col := range SpendCategoryColumns {
			if f, ok := row.Float(col); ok {
				total += f
				seen = true
			}
		}
		if seen {
			row["total_spend"] = Number(total)
		}

		nights, okNights := row.Float("hotel_nights")
		duration, okDuration := row.Float("visit_duration_days")
		if okNights && okDuration && duration > 0 {
			rate := nights / duration
			if rate < 0 {
				rate = 0
			}
			if rate > 1 {
				rate = 1
			}
			row["occupancy_rate"] = Number(rate)
		}
	}

	return rows
}

// filterByDate drops rows older than the cutoff when a date column exists.
// Without one, every row is kept.
func (l *Loader) filterByDate(ctx context.Context, rows []Row, daysBack int) []Row {
	if daysBack <= 0 {
		return rows
	}
	dateCol := firstDateColumn(rows)
	if dateCol == "" {
		l.logger.InfoContext(ctx, "no date column found, using all records",
			slog.Int("rows", len(rows)))
		return rows
	}

	cutoff := l.now().AddDate(0, 0, -daysBack)
	kept := make([]Row, 0, len(rows))
	for _, row := range rows {
		ts, ok := ParseDate(row.Get(dateCol).Text())
		if !ok || !ts.Before(cutoff) {
			kept = append(kept, row)
		}
	}
	l.logger.InfoContext(ctx, "filtered rows by date",
		slog.String("date_column", dateCol),
		slog.Int("days_back", daysBack),
		slog.Int("remaining", len(kept)))
	return kept
}

// partition splits normalized rows into the four analysis datasets
func (l *Loader) partition(rows []Row) Collection {
	collection := Collection{
		Arrivals: New(NameArrivals, rows),
		Visits:   New(NameVisits, rows),
	}

	collection.Occupancy = collection.Arrivals.Filter(NameOccupancy, func(r Row) bool {
		_, ok := r.Float("hotel_nights")
		return ok
	})
	collection.Surveys = collection.Arrivals.Filter(NameSurveys, func(r Row) bool {
		_, ok := r.Float("satisfaction_score")
		return ok
	})

	return collection
}

// partitionFlat maps the flat table into the expected shape: everything is an
// arrival and a visit, with no occupancy or survey slices.
func (l *Loader) partitionFlat(rows []Row) Collection {
	rows = l.normalize(rows)
	collection := EmptyCollection()
	collection.Arrivals = New(NameArrivals, rows)
	collection.Visits = New(NameVisits, rows)
	return collection
}

// firstDateColumn finds the first recognized date column present in any row
func firstDateColumn(rows []Row) string {
	for _, candidate := range DateColumns {
		for _, row := range rows {
			if _, ok := row[candidate]; ok {
				return candidate
			}
		}
	}
	return ""
}
