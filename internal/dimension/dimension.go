// Package dimension breaks tourism activity down along a categorical
// column and reports the leading categories with their share of activity.
package dimension

import (
	"sort"
	"strings"

	"tourinsights/internal/dataset"
)

// Concentration labels describe how activity spreads across the top
// categories of a dimension.
const (
	HighConcentration     = "high_concentration"
	ModerateConcentration = "moderate_concentration"
	WellDistributed       = "well_distributed"
)

// CategoryShare is one category's aggregated measure and its percentage
// of the top-N total.
type CategoryShare struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// Analysis summarizes one dimension of the dataset.
type Analysis struct {
	Dimension       string          `json:"dimension"`
	TopPerformers   []CategoryShare `json:"top_performers"`
	TotalCategories int             `json:"total_categories"`
	MetricType      string          `json:"metric_type"`
	GrowthPotential string          `json:"growth_potential"`
}

// Empty reports whether the analysis found no categories at all.
func (a Analysis) Empty() bool {
	return a.TotalCategories == 0
}

// Analyze aggregates measureCol by the categories of dimensionCol and
// returns the topN categories by aggregated value. When measureCol is
// empty the best available spend measure is used, falling back to record
// counts. Rating and score measures aggregate by mean, everything else
// by sum.
func Analyze(ds *dataset.Dataset, dimensionCol, measureCol string, topN int) Analysis {
	analysis := Analysis{Dimension: dimensionCol}
	if ds == nil || ds.IsEmpty() || !ds.HasColumn(dimensionCol) || topN < 1 {
		return analysis
	}

	if measureCol == "" {
		if col, ok := ds.FirstColumn(dataset.MeasureColumns...); ok {
			measureCol = col
		}
	}

	metricType := "count"
	aggregateMean := false
	if measureCol != "" && ds.HasColumn(measureCol) {
		metricType = measureCol
		aggregateMean = meanAggregated(measureCol)
	} else {
		measureCol = ""
	}
	analysis.MetricType = metricType

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, row := range ds.Rows {
		category := row.Get(dimensionCol).Text()
		if category == "" {
			continue
		}
		if measureCol == "" {
			sums[category]++
			counts[category]++
			continue
		}
		v, ok := row.Float(measureCol)
		if !ok {
			continue
		}
		sums[category] += v
		counts[category]++
	}
	if len(sums) == 0 {
		return analysis
	}
	analysis.TotalCategories = len(sums)

	shares := make([]CategoryShare, 0, len(sums))
	for name, sum := range sums {
		value := sum
		if aggregateMean && counts[name] > 0 {
			value = sum / float64(counts[name])
		}
		shares = append(shares, CategoryShare{Name: name, Value: value})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Value != shares[j].Value {
			return shares[i].Value > shares[j].Value
		}
		return shares[i].Name < shares[j].Name
	})
	if len(shares) > topN {
		shares = shares[:topN]
	}

	var total float64
	for _, s := range shares {
		total += s.Value
	}
	if total > 0 {
		for i := range shares {
			shares[i].Percentage = shares[i].Value / total * 100
		}
	}
	analysis.TopPerformers = shares
	analysis.GrowthPotential = growthPotential(shares)
	return analysis
}

// growthPotential classifies concentration by the leading category's
// share of the top-N total.
func growthPotential(shares []CategoryShare) string {
	if len(shares) == 0 {
		return ""
	}
	top := shares[0].Percentage
	switch {
	case top > 50:
		return HighConcentration
	case top < 20:
		return WellDistributed
	default:
		return ModerateConcentration
	}
}

// meanAggregated reports whether a measure should be averaged rather
// than summed per category.
func meanAggregated(col string) bool {
	return strings.HasSuffix(col, "rating") || strings.HasSuffix(col, "score")
}
