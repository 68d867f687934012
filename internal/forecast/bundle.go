package forecast

import (
	"context"

	"tourinsights/internal/dataset"
)

// Bundle groups the three forecasts one reporting run produces.
type Bundle struct {
	Arrivals  Result            `json:"arrivals"`
	Occupancy map[string]Result `json:"occupancy"`
	Revenue   Result            `json:"revenue"`
}

// ForecastAll runs the three forecasts over a data collection. Arrivals
// and revenue read the arrivals dataset, occupancy reads the occupancy
// partition with the visits partition as fallback.
func (e *Engine) ForecastAll(ctx context.Context, data dataset.Collection, horizon int) Bundle {
	occupancySource := data.Occupancy
	if occupancySource.IsEmpty() {
		occupancySource = data.Visits
	}
	return Bundle{
		Arrivals:  e.ForecastActivity(ctx, data.Arrivals, horizon),
		Occupancy: e.ForecastOccupancy(ctx, occupancySource, horizon),
		Revenue:   e.ForecastRevenue(ctx, data.Arrivals, horizon),
	}
}
