package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind describes what a cell holds after coercion
type Kind int

const (
	// KindMissing marks an absent value or one that failed coercion
	KindMissing Kind = iota
	// KindString holds a categorical/text value
	KindString
	// KindNumber holds a numeric value
	KindNumber
)

// Value is a single nullable cell. Values that fail numeric coercion stay
// missing rather than becoming zero, so completeness metrics remain honest.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
}

// Missing is the zero cell
var Missing = Value{Kind: KindMissing}

// String creates a text value; blank strings are missing
func String(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Missing
	}
	return Value{Kind: KindString, Str: s}
}

// Number creates a numeric value
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing
	}
	return Value{Kind: KindNumber, Num: f}
}

// IsMissing reports whether the cell holds no usable value
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// Float returns the numeric value, attempting string parsing when needed
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Text returns the string form of the cell
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Row maps column names to cells
type Row map[string]Value

// Get returns the cell for a column, Missing when absent
func (r Row) Get(col string) Value {
	if v, ok := r[col]; ok {
		return v
	}
	return Missing
}

// Float returns the numeric value of a column, false when missing
func (r Row) Float(col string) (float64, bool) {
	return r.Get(col).Float()
}

// Dataset is a named, schema-flexible table of tourism records
type Dataset struct {
	Name string
	Rows []Row

	columns map[string]struct{}
}

// New creates a dataset from rows, indexing the union of their columns
func New(name string, rows []Row) *Dataset {
	d := &Dataset{Name: name, Rows: rows, columns: make(map[string]struct{})}
	for _, row := range rows {
		for col := range row {
			d.columns[col] = struct{}{}
		}
	}
	return d
}

// Empty creates a dataset with no rows
func Empty(name string) *Dataset {
	return New(name, nil)
}

// Len returns the row count
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// IsEmpty reports whether the dataset has no rows
func (d *Dataset) IsEmpty() bool {
	return d.Len() == 0
}

// HasColumn reports whether any row carries the column
func (d *Dataset) HasColumn(col string) bool {
	if d == nil {
		return false
	}
	_, ok := d.columns[col]
	return ok
}

// Columns returns the sorted union of column names across rows
func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	cols := make([]string, 0, len(d.columns))
	for col := range d.columns {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// FirstColumn returns the first candidate column present in the dataset
func (d *Dataset) FirstColumn(candidates ...string) (string, bool) {
	for _, col := range candidates {
		if d.HasColumn(col) {
			return col, true
		}
	}
	return "", false
}

// NumericColumn returns all non-missing numeric values of a column
func (d *Dataset) NumericColumn(col string) []float64 {
	if d == nil {
		return nil
	}
	values := make([]float64, 0, len(d.Rows))
	for _, row := range d.Rows {
		if f, ok := row.Float(col); ok {
			values = append(values, f)
		}
	}
	return values
}

// Mean returns the mean of a numeric column, false when no values exist
func (d *Dataset) Mean(col string) (float64, bool) {
	values := d.NumericColumn(col)
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Sum returns the sum of a numeric column
func (d *Dataset) Sum(col string) float64 {
	var sum float64
	for _, v := range d.NumericColumn(col) {
		sum += v
	}
	return sum
}

// Std returns the population standard deviation of a numeric column
func (d *Dataset) Std(col string) float64 {
	values := d.NumericColumn(col)
	if len(values) == 0 {
		return 0
	}
	mean, _ := d.Mean(col)
	var ss float64
	for _, v := range values {
		diff := v - mean
		ss += diff * diff
	}
	return math.Sqrt(ss / float64(len(values)))
}

// Filter returns a new dataset containing the rows the predicate keeps
func (d *Dataset) Filter(name string, keep func(Row) bool) *Dataset {
	if d == nil {
		return Empty(name)
	}
	var rows []Row
	for _, row := range d.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return New(name, rows)
}

// Completeness returns the fraction of non-missing cells across the known
// column set, 1.0 for an empty dataset.
func (d *Dataset) Completeness() float64 {
	if d.Len() == 0 || len(d.columns) == 0 {
		return 1.0
	}
	total := d.Len() * len(d.columns)
	present := 0
	for _, row := range d.Rows {
		for col := range d.columns {
			if !row.Get(col).IsMissing() {
				present++
			}
		}
	}
	return float64(present) / float64(total)
}

// DailyPoint is one day of an aggregated series
type DailyPoint struct {
	Date  time.Time
	Value float64
	Count int
}

// DailySeries aggregates a dataset by calendar day of dateCol. When valueCol
// is non-empty its values are summed per day; otherwise rows are counted.
// Rows whose date fails to parse are skipped. The result is sorted ascending.
func (d *Dataset) DailySeries(dateCol, valueCol string) []DailyPoint {
	if d == nil || dateCol == "" {
		return nil
	}
	byDay := make(map[time.Time]*DailyPoint)
	for _, row := range d.Rows {
		ts, ok := ParseDate(row.Get(dateCol).Text())
		if !ok {
			continue
		}
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		point, exists := byDay[day]
		if !exists {
			point = &DailyPoint{Date: day}
			byDay[day] = point
		}
		point.Count++
		if valueCol != "" {
			if f, ok := row.Float(valueCol); ok {
				point.Value += f
			}
		}
	}

	series := make([]DailyPoint, 0, len(byDay))
	for _, point := range byDay {
		if valueCol == "" {
			point.Value = float64(point.Count)
		}
		series = append(series, *point)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

// DailyMeanSeries aggregates by day using the mean of valueCol per day
func (d *Dataset) DailyMeanSeries(dateCol, valueCol string) []DailyPoint {
	series := d.DailySeries(dateCol, valueCol)
	for i := range series {
		if series[i].Count > 0 {
			series[i].Value /= float64(series[i].Count)
		}
	}
	return series
}

// dateLayouts are the accepted date formats, tried in order
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006",
}

// ParseDate parses a date string against the accepted layouts
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Collection holds the four fixed analysis datasets. All fields are always
// non-nil; emptiness means "no contribution", never an error.
type Collection struct {
	Arrivals  *Dataset
	Occupancy *Dataset
	Visits    *Dataset
	Surveys   *Dataset
}

// Dataset names used throughout the pipeline and persistence layer
const (
	NameArrivals  = "arrivals"
	NameOccupancy = "occupancy"
	NameVisits    = "visits"
	NameSurveys   = "surveys"
)

// EmptyCollection returns a collection with four empty datasets
func EmptyCollection() Collection {
	return Collection{
		Arrivals:  Empty(NameArrivals),
		Occupancy: Empty(NameOccupancy),
		Visits:    Empty(NameVisits),
		Surveys:   Empty(NameSurveys),
	}
}

// Get returns the dataset with the given fixed name, nil for unknown names
func (c Collection) Get(name string) *Dataset {
	switch name {
	case NameArrivals:
		return c.Arrivals
	case NameOccupancy:
		return c.Occupancy
	case NameVisits:
		return c.Visits
	case NameSurveys:
		return c.Surveys
	default:
		return nil
	}
}

// TotalRows returns the row count across all four datasets
func (c Collection) TotalRows() int {
	return c.Arrivals.Len() + c.Occupancy.Len() + c.Visits.Len() + c.Surveys.Len()
}

// AllEmpty reports whether every dataset has zero rows
func (c Collection) AllEmpty() bool {
	return c.TotalRows() == 0
}
