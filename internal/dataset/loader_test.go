package dataset

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tourinsights/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCSV = `arrival_date,nationality,hotel_nights,visit_duration_days,satisfaction_score,spend_amount,hotel_spend
2024-05-01,Ethiopia,3,5,4.5,200,150
2024-05-02,Kenya,,4,3.8,180,
2024-05-03,Germany,2,2,,90,60
bad-date,France,1,3,4.0,not-a-number,20
`

func TestLoader_LoadFromCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "tourism_dataset.csv", sampleCSV)

	loader := NewLoader(discardLogger(), WithCSVPaths([]string{path}))
	collection, err := loader.Load(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 4, collection.Arrivals.Len())
	assert.Equal(t, 4, collection.Visits.Len())
	// Only rows with a parseable hotel_nights value.
	assert.Equal(t, 3, collection.Occupancy.Len())
	// Only rows with a satisfaction score.
	assert.Equal(t, 3, collection.Surveys.Len())
}

func TestLoader_DerivedFields(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "tourism_dataset.csv", sampleCSV)

	loader := NewLoader(discardLogger(), WithCSVPaths([]string{path}))
	collection, err := loader.Load(context.Background(), 0)
	require.NoError(t, err)

	first := collection.Arrivals.Rows[0]

	year, ok := first.Float("year")
	require.True(t, ok)
	assert.Equal(t, 2024.0, year)

	month, ok := first.Float("month")
	require.True(t, ok)
	assert.Equal(t, 5.0, month)

	assert.Equal(t, "Wednesday", first.Get("day_of_week").Text())

	// total_spend = spend_amount + hotel_spend, missing columns skipped.
	total, ok := first.Float("total_spend")
	require.True(t, ok)
	assert.Equal(t, 350.0, total)

	rate, ok := first.Float("occupancy_rate")
	require.True(t, ok)
	assert.InDelta(t, 0.6, rate, 1e-9)

	// Failed numeric coercion stays missing.
	last := collection.Arrivals.Rows[3]
	_, ok = last.Float("spend_amount")
	assert.False(t, ok)
}

func TestLoader_DateFiltering(t *testing.T) {
	dir := t.TempDir()
	csv := `arrival_date,spend_amount
2024-01-01,100
2024-06-01,200
2024-06-20,300
`
	path := writeCSV(t, dir, "tourism_dataset.csv", csv)

	frozen := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	loader := NewLoader(discardLogger(),
		WithCSVPaths([]string{path}),
		WithClock(func() time.Time { return frozen }))

	collection, err := loader.Load(context.Background(), 60)
	require.NoError(t, err)

	// Rows older than 60 days before the frozen clock are dropped.
	assert.Equal(t, 2, collection.Arrivals.Len())
}

func TestLoader_NoDateColumnKeepsAllRows(t *testing.T) {
	dir := t.TempDir()
	csv := `nationality,spend_amount
Ethiopia,100
Kenya,200
`
	path := writeCSV(t, dir, "tourism_dataset.csv", csv)

	loader := NewLoader(discardLogger(), WithCSVPaths([]string{path}))
	collection, err := loader.Load(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 2, collection.Arrivals.Len())
}

func TestLoader_BOMHandling(t *testing.T) {
	dir := t.TempDir()
	content := "\xEF\xBB\xBF" + "nationality,spend_amount\nEthiopia,100\n"
	path := writeCSV(t, dir, "tourism_dataset.csv", content)

	loader := NewLoader(discardLogger(), WithCSVPaths([]string{path}))
	collection, err := loader.Load(context.Background(), 0)
	require.NoError(t, err)

	assert.True(t, collection.Arrivals.HasColumn("nationality"))
}

func TestLoader_AllSourcesExhausted(t *testing.T) {
	loader := NewLoader(discardLogger(),
		WithCSVPaths([]string{filepath.Join(t.TempDir(), "absent.csv")}))

	_, err := loader.Load(context.Background(), 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)
}

type stubSource struct {
	tables map[string][]Row
	flat   []Row
	err    error
}

func (s *stubSource) LoadTables(_ context.Context, _ int) (map[string][]Row, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tables, nil
}

func (s *stubSource) QueryFlatTable(_ context.Context, _ int) ([]Row, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.flat, nil
}

func TestLoader_PrefersHostedSource(t *testing.T) {
	source := &stubSource{tables: map[string][]Row{
		NameArrivals: {{"nationality": String("Ethiopia"), "spend_amount": String("120")}},
	}}

	loader := NewLoader(discardLogger(),
		WithSource(source),
		WithCSVPaths(nil))

	collection, err := loader.Load(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 1, collection.Arrivals.Len())
	// Hosted rows still get coerced.
	spend, ok := collection.Arrivals.Rows[0].Float("spend_amount")
	require.True(t, ok)
	assert.Equal(t, 120.0, spend)
	assert.Equal(t, 0, collection.Occupancy.Len())
}

func TestLoader_FlatTableFallback(t *testing.T) {
	source := &stubSource{
		tables: map[string][]Row{},
		flat:   []Row{{"nationality": String("Kenya")}, {"nationality": String("Italy")}},
	}

	loader := NewLoader(discardLogger(),
		WithSource(source),
		WithCSVPaths(nil))

	collection, err := loader.Load(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 2, collection.Arrivals.Len())
	assert.Equal(t, 2, collection.Visits.Len())
	assert.Equal(t, 0, collection.Occupancy.Len())
	assert.Equal(t, 0, collection.Surveys.Len())
}
