package forecast

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"tourinsights/internal/dataset"
)

// Occupancy rates are bounded to a plausible hotel operating range.
const (
	occupancyFloor = 0.1
	occupancyCeil  = 0.95

	ratingEstimateFloor = 0.3
	ratingEstimateCeil  = 0.9
)

// OverallRegion is the map key used when no region column partitions the
// occupancy forecast. EstimatedRegion keys the single entry produced by
// the hotel rating fallback.
const (
	OverallRegion   = "overall"
	EstimatedRegion = "estimated"
)

// ForecastOccupancy predicts hotel occupancy rates over the horizon,
// partitioned by region when a region column is present. Rates derive
// from dated hotel nights against visit duration; when that path lacks
// the columns or enough daily history, a hotel rating estimate stands
// in under the estimated key. The returned map always has at least one
// entry; a dataset with no usable columns yields a single failed entry.
func (e *Engine) ForecastOccupancy(ctx context.Context, ds *dataset.Dataset, horizon int) map[string]Result {
	if ds == nil || ds.IsEmpty() || horizon < 1 {
		return map[string]Result{OverallRegion: failure(ErrMsgInsufficientData)}
	}

	caps := dataset.Probe(ds)

	if caps.HasHotelNights && caps.HasVisitDuration {
		results := e.nightsBasedOccupancy(ds, caps, horizon)
		if len(results) > 0 {
			e.logger.InfoContext(ctx, "occupancy forecast complete",
				slog.String("method", MethodHotelNightsBased),
				slog.Int("regions", len(results)))
			return results
		}
	}

	if caps.HasHotelRating {
		if result, ok := e.ratingBasedOccupancy(ds, horizon); ok {
			e.logger.InfoContext(ctx, "occupancy forecast complete",
				slog.String("method", MethodRatingBased))
			return map[string]Result{EstimatedRegion: result}
		}
	}

	return map[string]Result{OverallRegion: failure(ErrMsgInsufficientData)}
}

// nightsBasedOccupancy derives per-row occupancy rates, averages them by
// calendar day within each region, and projects the mean of the last
// seven daily averages. Regions with seven or fewer observed days are
// dropped, so the caller can fall through when nothing qualifies.
func (e *Engine) nightsBasedOccupancy(ds *dataset.Dataset, caps dataset.Capabilities, horizon int) map[string]Result {
	if !caps.HasDate() {
		return nil
	}

	byRegion := make(map[string]map[time.Time]*bucket)
	for _, row := range ds.Rows {
		rate, ok := occupancyRate(row)
		if !ok {
			continue
		}
		ts, ok := dataset.ParseDate(row.Get(caps.DateColumn).Text())
		if !ok {
			continue
		}
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		region := OverallRegion
		if caps.HasRegion() {
			if name := row.Get(caps.RegionColumn).Text(); name != "" {
				region = name
			}
		}
		days := byRegion[region]
		if days == nil {
			days = make(map[time.Time]*bucket)
			byRegion[region] = days
		}
		b := days[day]
		if b == nil {
			b = &bucket{}
			days[day] = b
		}
		b.sum += rate
		b.count++
	}

	results := make(map[string]Result, len(byRegion))
	for region, days := range byRegion {
		means := dailyRateMeans(days)
		if len(means) <= 7 {
			continue
		}
		recent := mean(means[len(means)-7:])
		results[region] = e.projectRate(recent, MethodHotelNightsBased, horizon)
	}
	return results
}

// bucket accumulates one calendar day's occupancy rate observations.
type bucket struct {
	sum   float64
	count int
}

// dailyRateMeans flattens the per-day buckets into date-ordered means.
func dailyRateMeans(days map[time.Time]*bucket) []float64 {
	dates := make([]time.Time, 0, len(days))
	for day := range days {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	means := make([]float64, len(dates))
	for i, day := range dates {
		b := days[day]
		means[i] = b.sum / float64(b.count)
	}
	return means
}

// ratingBasedOccupancy estimates occupancy from the mean hotel rating on
// a five-point scale.
func (e *Engine) ratingBasedOccupancy(ds *dataset.Dataset, horizon int) (Result, bool) {
	rating, ok := ds.Mean("hotel_rating")
	if !ok {
		return Result{}, false
	}
	base := clamp(rating/5, ratingEstimateFloor, ratingEstimateCeil)
	return e.projectRate(base, MethodRatingBased, horizon), true
}

// projectRate extends a base occupancy rate across the horizon with the
// annual seasonal cycle, keeping every value inside the operating range.
// The cycle starts at its zero phase, so day one carries the base rate.
func (e *Engine) projectRate(base float64, method string, horizon int) Result {
	result := Result{
		Method:            method,
		Values:            make([]float64, horizon),
		Dates:             e.futureDates(horizon),
		HistoricalAverage: base,
	}
	for i := 0; i < horizon; i++ {
		v := base * (1 + 0.15*math.Sin(2*math.Pi*float64(i)/365))
		result.Values[i] = clamp(v, occupancyFloor, occupancyCeil)
	}
	return result.finalize()
}

// occupancyRate prefers the derived occupancy_rate column and otherwise
// recomputes it from hotel nights over visit duration.
func occupancyRate(row dataset.Row) (float64, bool) {
	if rate, ok := row.Float("occupancy_rate"); ok {
		return clamp(rate, 0, 1), true
	}
	nights, ok := row.Float("hotel_nights")
	if !ok {
		return 0, false
	}
	duration, ok := row.Float("visit_duration_days")
	if !ok || duration <= 0 {
		return 0, false
	}
	return clamp(nights/duration, 0, 1), true
}
