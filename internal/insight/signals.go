package insight

import (
	"fmt"
	"sort"
	"strings"

	"tourinsights/internal/dataset"
	"tourinsights/internal/forecast"
	"tourinsights/internal/synthetic"
)

// signalEnv is the read-only context a signal evaluates against.
type signalEnv struct {
	data   dataset.Collection
	fx     forecast.Bundle
	params forecast.Params
	source synthetic.Source
}

type signalFunc func(env *signalEnv, b *builder)

// signalRegistry maps the signal names used by department profiles to
// their extractors. A signal whose required columns are missing from
// the data contributes nothing rather than failing.
var signalRegistry = map[string]signalFunc{
	"data_completeness":         signalDataCompleteness,
	"api_performance":           signalAPIPerformance,
	"hotel_stay":                signalHotelStay,
	"hotel_rating":              signalHotelRating,
	"hotel_revenue":             signalHotelRevenue,
	"regional_performance":      signalRegionalPerformance,
	"temporal_patterns":         signalTemporalPatterns,
	"visitor_totals":            signalVisitorTotals,
	"visit_duration":            signalVisitDuration,
	"infrastructure":            signalInfrastructure,
	"nationality_concentration": signalNationalityConcentration,
	"spending_patterns":         signalSpendingPatterns,
	"satisfaction":              signalSatisfaction,
	"destinations":              signalDestinations,
	"age_demographics":          signalAgeDemographics,
	"gender_distribution":       signalGenderDistribution,
	"seasonal_patterns":         signalSeasonalPatterns,
	"market_diversity":          signalMarketDiversity,
	"technology_adoption":       signalTechnologyAdoption,
	"arrival_congestion":        signalArrivalCongestion,
	"regional_utilization":      signalRegionalUtilization,
	"revenue_performance":       signalRevenuePerformance,
	"revenue_per_visitor":       signalRevenuePerVisitor,
	"investment_efficiency":     signalInvestmentEfficiency,
	"economic_impact":           signalEconomicImpact,
}

func signalDataCompleteness(env *signalEnv, b *builder) {
	if env.data.Arrivals.IsEmpty() {
		return
	}
	completeness := env.data.Arrivals.Completeness()
	b.metric(Metric{
		Name:           "Data Completeness",
		CurrentValue:   completeness * 100,
		Trend:          TrendStable,
		Confidence:     0.95,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Maintain data validation pipelines",
		Relevance:      []string{"software_development", "operations"},
	})
	if completeness < 0.95 {
		b.escalate(AlertWarning)
		b.action("Investigate missing data sources")
	}
}

func signalAPIPerformance(env *signalEnv, b *builder) {
	responseTime := env.source.Uniform(150, 300)
	b.metric(Metric{
		Name:           "API Response Time",
		CurrentValue:   responseTime,
		PredictedValue: floatPtr(responseTime * 1.1),
		Trend:          TrendIncreasing,
		Confidence:     0.8,
		ImpactLevel:    ImpactMedium,
		Recommendation: "Optimize database queries and implement caching",
		Relevance:      []string{"software_development"},
	})
}

func signalHotelStay(env *signalEnv, b *builder) {
	avg, ok := env.data.Occupancy.Mean("hotel_nights")
	if !ok {
		return
	}
	b.metric(Metric{
		Name:           "Average Hotel Nights per Visitor",
		CurrentValue:   avg,
		Trend:          TrendStable,
		Confidence:     0.9,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Optimize pricing to increase average stay duration",
		Relevance:      []string{"operations", "marketing"},
	})
}

func signalHotelRating(env *signalEnv, b *builder) {
	avg, ok := env.data.Occupancy.Mean("hotel_rating")
	if !ok {
		return
	}
	b.metric(Metric{
		Name:           "Average Hotel Rating",
		CurrentValue:   avg,
		Trend:          TrendStable,
		Confidence:     0.85,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Focus on improving service quality for lower-rated properties",
		Relevance:      []string{"operations"},
	})
	if avg < 3.5 {
		b.escalate(AlertWarning)
		b.action("Address service quality issues in underperforming hotels")
	}
}

func signalHotelRevenue(env *signalEnv, b *builder) {
	avg, ok := env.data.Occupancy.Mean("hotel_spend")
	if !ok {
		return
	}
	b.metric(Metric{
		Name:           "Average Revenue per Guest",
		CurrentValue:   avg,
		Trend:          TrendStable,
		Confidence:     0.9,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Implement upselling strategies for higher revenue per guest",
		Relevance:      []string{"operations", "tourism_funding"},
	})
}

func signalRegionalPerformance(env *signalEnv, b *builder) {
	if !env.data.Occupancy.HasColumn("home_region") {
		return
	}
	top := textCounts(env.data.Occupancy, "home_region")
	if len(top) == 0 {
		return
	}
	if len(top) > 3 {
		top = top[:3]
	}
	b.recommend("Expand hotel capacity in top regions: %s", joinNames(top))
}

func signalTemporalPatterns(env *signalEnv, b *builder) {
	ds := env.data.Occupancy
	if !ds.HasColumn("arrival_date") || !ds.HasColumn("hotel_nights") {
		return
	}
	weekly := groupMeanBy(ds, "hotel_nights", func(row dataset.Row) (string, bool) {
		ts, ok := dataset.ParseDate(row.Get("arrival_date").Text())
		if !ok {
			return "", false
		}
		return ts.Weekday().String(), true
	})
	if peak, low, ok := peakAndLow(weekly); ok {
		b.recommend("Optimize pricing for peak day (%s) and promote off-peak day (%s)", peak, low)
	}

	monthly := groupMeanBy(ds, "hotel_nights", func(row dataset.Row) (string, bool) {
		ts, ok := dataset.ParseDate(row.Get("arrival_date").Text())
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%d", int(ts.Month())), true
	})
	if peak, low, ok := peakAndLow(monthly); ok {
		b.recommend("Develop seasonal strategies: peak month %s, low month %s", peak, low)
	}
}

func signalVisitorTotals(env *signalEnv, b *builder) {
	if env.data.Arrivals.IsEmpty() {
		return
	}
	metric := Metric{
		Name:           "Total Visitors",
		CurrentValue:   float64(env.data.Arrivals.Len()),
		Trend:          TrendStable,
		Confidence:     0.8,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Monitor visitor capacity and infrastructure needs",
		Relevance:      []string{"operations"},
	}
	if !env.fx.Arrivals.Failed() {
		metric.PredictedValue = floatPtr(env.fx.Arrivals.TotalPredicted)
	}
	b.metric(metric)
}

func signalVisitDuration(env *signalEnv, b *builder) {
	avg, ok := env.data.Arrivals.Mean("visit_duration_days")
	if !ok {
		return
	}
	b.metric(Metric{
		Name:           "Average Visit Duration (Days)",
		CurrentValue:   avg,
		Trend:          TrendStable,
		Confidence:     0.85,
		ImpactLevel:    ImpactMedium,
		Recommendation: "Create packages to extend average stay duration",
		Relevance:      []string{"operations", "marketing"},
	})
}

func signalInfrastructure(env *signalEnv, b *builder) {
	avg, ok := env.data.Arrivals.Mean("infrastructure_rating")
	if !ok {
		return
	}
	b.metric(Metric{
		Name:           "Infrastructure Satisfaction",
		CurrentValue:   avg,
		Trend:          TrendStable,
		Confidence:     0.8,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Invest in infrastructure improvements for low-rated areas",
		Relevance:      []string{"operations", "resource_mobility"},
	})
	if avg < 3.0 {
		b.escalate(AlertWarning)
		b.action("Priority infrastructure improvements needed")
	}
}

func signalNationalityConcentration(env *signalEnv, b *builder) {
	ds := env.data.Arrivals
	if !ds.HasColumn("nationality") {
		return
	}
	counts := textCounts(ds, "nationality")
	if len(counts) == 0 {
		return
	}
	total := float64(ds.Len())

	topShare := float64(counts[0].Count) / total * 100
	b.metric(Metric{
		Name:           fmt.Sprintf("Top Source Market Share (%s)", counts[0].Name),
		CurrentValue:   topShare,
		Trend:          TrendStable,
		Confidence:     0.85,
		ImpactLevel:    ImpactHigh,
		Recommendation: fmt.Sprintf("Strengthen partnerships in %s market", counts[0].Name),
		Relevance:      []string{"marketing"},
	})

	diversity := float64(len(counts)) / total * 100
	b.metric(Metric{
		Name:           "Market Diversity Index",
		CurrentValue:   diversity,
		Trend:          TrendStable,
		Confidence:     0.8,
		ImpactLevel:    ImpactMedium,
		Recommendation: "Diversify marketing to reduce dependency on top markets",
		Relevance:      []string{"marketing", "research_development"},
	})

	for i, entry := range counts {
		if i == 3 {
			break
		}
		share := float64(entry.Count) / total * 100
		b.recommend("Target %s market (%.1f%% share) with localized campaigns", entry.Name, share)
	}
}

func signalSpendingPatterns(env *signalEnv, b *builder) {
	ds := env.data.Arrivals
	spendCol, ok := ds.FirstColumn("total_spend", "spend_amount")
	if !ok {
		return
	}
	avg, ok := ds.Mean(spendCol)
	if !ok {
		return
	}
	b.metric(Metric{
		Name:           "Average Spending per Visitor",
		CurrentValue:   avg,
		Trend:          TrendStable,
		Confidence:     0.9,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Develop premium packages to increase average spending",
		Relevance:      []string{"marketing", "tourism_funding"},
	})

	if ds.HasColumn("nationality") {
		byNation := groupMean(ds, "nationality", spendCol)
		for i, entry := range byNation {
			if i == 3 {
				break
			}
			b.recommend("Focus on high-value %s visitors (avg $%.2f)", entry.Name, entry.Value)
		}
	}

	var topCategory string
	var topMean float64
	for _, category := range []string{"flight_spend", "hotel_spend", "activity_spend", "package_spend", "souvenir_spend"} {
		if m, ok := ds.Mean(category); ok && (topCategory == "" || m > topMean) {
			topCategory, topMean = category, m
		}
	}
	if topCategory != "" {
		b.recommend("Optimize %s offerings (highest spending category)", strings.ReplaceAll(topCategory, "_", " "))
	}
}

func signalSatisfaction(env *signalEnv, b *builder) {
	ds := env.data.Arrivals
	avg, ok := ds.Mean("satisfaction_score")
	if !ok {
		return
	}
	b.metric(Metric{
		Name:           "Overall Satisfaction Score",
		CurrentValue:   avg,
		Trend:          TrendStable,
		Confidence:     0.9,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Focus on experience improvement initiatives",
		Relevance:      []string{"marketing", "operations"},
	})
	if avg < 4.0 {
		b.escalate(AlertWarning)
		b.action("Address satisfaction issues - score below 4.0")
	}

	if ds.HasColumn("nationality") {
		var lowMarkets []string
		for _, entry := range groupMean(ds, "nationality", "satisfaction_score") {
			if entry.Value < 3.5 {
				lowMarkets = append(lowMarkets, entry.Name)
			}
		}
		if len(lowMarkets) > 0 {
			if len(lowMarkets) > 3 {
				lowMarkets = lowMarkets[:3]
			}
			b.action("Improve experience for: %s", strings.Join(lowMarkets, ", "))
		}
	}
}

func signalDestinations(env *signalEnv, b *builder) {
	ds := env.data.Arrivals
	if !ds.HasColumn("tourist_destination") {
		return
	}
	counts := textCounts(ds, "tourist_destination")
	total := float64(ds.Len())
	for i, entry := range counts {
		if i == 3 {
			break
		}
		share := float64(entry.Count) / total * 100
		if i == 0 {
			b.metric(Metric{
				Name:           fmt.Sprintf("Top Destination Share (%s)", entry.Name),
				CurrentValue:   share,
				Trend:          TrendStable,
				Confidence:     0.85,
				ImpactLevel:    ImpactMedium,
				Recommendation: fmt.Sprintf("Leverage success of %s for marketing other destinations", entry.Name),
				Relevance:      []string{"marketing"},
			})
		}
		b.recommend("Promote %s in targeted campaigns (%.1f%% of visits)", entry.Name, share)
	}
}

// ageBuckets partitions visitor ages into the reporting segments.
var ageBuckets = []struct {
	label string
	upper float64
}{
	{"18-25", 25},
	{"26-35", 35},
	{"36-50", 50},
	{"51-65", 65},
	{"65+", 200},
}

func signalAgeDemographics(env *signalEnv, b *builder) {
	ds := env.data.Arrivals
	ages := ds.NumericColumn("age")
	if len(ages) == 0 {
		return
	}
	segments := make(map[string]int)
	for _, age := range ages {
		for _, bucket := range ageBuckets {
			if age <= bucket.upper {
				segments[bucket.label]++
				break
			}
		}
	}

	var dominant string
	var dominantCount int
	for _, bucket := range ageBuckets {
		if segments[bucket.label] > dominantCount {
			dominant, dominantCount = bucket.label, segments[bucket.label]
		}
	}
	if dominant == "" {
		return
	}
	percentage := float64(dominantCount) / float64(ds.Len()) * 100
	b.metric(Metric{
		Name:           fmt.Sprintf("Dominant Age Group (%s)", dominant),
		CurrentValue:   percentage,
		Trend:          TrendStable,
		Confidence:     0.8,
		ImpactLevel:    ImpactMedium,
		Recommendation: fmt.Sprintf("Develop age-specific packages for %s demographic", dominant),
		Relevance:      []string{"marketing"},
	})
}

func signalGenderDistribution(env *signalEnv, b *builder) {
	ds := env.data.Arrivals
	if !ds.HasColumn("sex") {
		return
	}
	counts := textCounts(ds, "sex")
	var total int
	for _, entry := range counts {
		total += entry.Count
	}
	for _, entry := range counts {
		if float64(entry.Count)/float64(total)*100 > 60 {
			b.recommend("Develop targeted campaigns for underrepresented gender")
			return
		}
	}
}

func signalSeasonalPatterns(env *signalEnv, b *builder) {
	ds := env.data.Arrivals
	if !ds.HasColumn("arrival_date") {
		return
	}
	monthly := make(map[int]int)
	weekly := make(map[string]int)
	for _, row := range ds.Rows {
		ts, ok := dataset.ParseDate(row.Get("arrival_date").Text())
		if !ok {
			continue
		}
		monthly[int(ts.Month())]++
		weekly[ts.Weekday().String()]++
	}
	if len(monthly) == 0 {
		return
	}

	peakMonth, lowMonth := 0, 0
	for month, count := range monthly {
		if peakMonth == 0 || count > monthly[peakMonth] {
			peakMonth = month
		}
		if lowMonth == 0 || count < monthly[lowMonth] {
			lowMonth = month
		}
	}
	b.recommend("Capitalize on peak season (Month %d) with premium pricing", peakMonth)
	b.recommend("Develop promotional campaigns for off-season (Month %d)", lowMonth)
	b.recommend("Create year-round marketing calendar based on seasonal patterns")

	peakDay := ""
	for day, count := range weekly {
		if peakDay == "" || count > weekly[peakDay] || (count == weekly[peakDay] && day < peakDay) {
			peakDay = day
		}
	}
	b.recommend("Optimize marketing campaigns for %s arrivals", peakDay)
}

func signalMarketDiversity(env *signalEnv, b *builder) {
	if env.data.Arrivals.IsEmpty() || env.data.Occupancy.IsEmpty() {
		return
	}
	ds := env.data.Arrivals
	if !ds.HasColumn("nationality") {
		return
	}
	counts := textCounts(ds, "nationality")
	if len(counts) == 0 {
		return
	}
	denom := float64(ds.Len()) / 100
	if denom < 1 {
		denom = 1
	}
	b.metric(Metric{
		Name:           "Market Diversity Index",
		CurrentValue:   float64(len(counts)) / denom,
		Trend:          TrendStable,
		Confidence:     0.7,
		ImpactLevel:    ImpactMedium,
		Recommendation: "Explore emerging markets to increase diversity",
		Relevance:      []string{"research_development", "marketing"},
	})
}

func signalTechnologyAdoption(env *signalEnv, b *builder) {
	if env.data.Arrivals.IsEmpty() || env.data.Occupancy.IsEmpty() {
		return
	}
	score := env.source.Uniform(65, 85)
	b.metric(Metric{
		Name:           "Digital Technology Adoption",
		CurrentValue:   score,
		PredictedValue: floatPtr(score * 1.15),
		Trend:          TrendIncreasing,
		Confidence:     0.8,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Accelerate digital transformation initiatives",
		Relevance:      []string{"research_development", "software_development"},
	})
}

func signalArrivalCongestion(env *signalEnv, b *builder) {
	ds := env.data.Arrivals
	caps := dataset.Probe(ds)
	if !caps.HasDate() {
		return
	}
	hourly := make(map[int]int)
	for _, row := range ds.Rows {
		ts, ok := dataset.ParseDate(row.Get(caps.DateColumn).Text())
		if !ok {
			continue
		}
		hourly[ts.Hour()]++
	}
	if len(hourly) == 0 {
		return
	}
	maxHourly := 0
	for _, count := range hourly {
		if count > maxHourly {
			maxHourly = count
		}
	}
	// Ten arrivals per hour is treated as full throughput.
	congestion := float64(maxHourly) / 10 * 100
	if congestion > 100 {
		congestion = 100
	}
	b.metric(Metric{
		Name:           "Airport Congestion Score",
		CurrentValue:   congestion,
		Trend:          TrendStable,
		Confidence:     0.75,
		ImpactLevel:    ImpactMedium,
		Recommendation: "Optimize flight scheduling and ground services",
		Relevance:      []string{"resource_mobility", "operations"},
	})
}

func signalRegionalUtilization(env *signalEnv, b *builder) {
	ds := env.data.Occupancy
	regionCol, ok := ds.FirstColumn("region_name", "region", "location", "destination")
	if !ok || !ds.HasColumn("total_rooms") || !ds.HasColumn("occupied_rooms") {
		return
	}
	occupied := groupSum(ds, regionCol, "occupied_rooms")
	total := groupSum(ds, regionCol, "total_rooms")
	totals := make(map[string]float64, len(total))
	for _, entry := range total {
		totals[entry.Name] = entry.Value
	}

	var sum float64
	var regions int
	for _, entry := range occupied {
		if capacity := totals[entry.Name]; capacity > 0 {
			sum += entry.Value / capacity
			regions++
		}
	}
	if regions == 0 {
		return
	}
	b.metric(Metric{
		Name:           "Regional Resource Efficiency",
		CurrentValue:   sum / float64(regions) * 100,
		Trend:          TrendStable,
		Confidence:     0.8,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Redistribute resources to high-demand regions",
		Relevance:      []string{"resource_mobility", "operations"},
	})
}

func signalRevenuePerformance(env *signalEnv, b *builder) {
	ds := env.data.Occupancy
	if !ds.HasColumn("revenue") {
		return
	}
	total := ds.Sum("revenue")
	metric := Metric{
		Name:           "Total Tourism Revenue",
		CurrentValue:   total,
		Trend:          TrendStable,
		Confidence:     0.85,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Focus investment on high-ROI segments and regions",
		Relevance:      []string{"tourism_funding", "operations", "marketing"},
	}
	if !env.fx.Revenue.Failed() {
		predicted := env.fx.Revenue.TotalPredicted
		metric.PredictedValue = floatPtr(predicted)
		if predicted > total {
			metric.Trend = TrendIncreasing
		} else {
			metric.Trend = TrendDecreasing
		}
	}
	b.metric(metric)
}

func signalRevenuePerVisitor(env *signalEnv, b *builder) {
	if !env.data.Occupancy.HasColumn("revenue") || env.data.Arrivals.IsEmpty() {
		return
	}
	total := env.data.Occupancy.Sum("revenue")
	visitors := visitorTotal(env.data.Arrivals)
	if visitors <= 0 {
		return
	}
	b.metric(Metric{
		Name:           "Revenue per Visitor",
		CurrentValue:   total / visitors,
		Trend:          TrendStable,
		Confidence:     0.8,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Increase average spending through premium experiences",
		Relevance:      []string{"tourism_funding", "marketing"},
	})
}

func signalInvestmentEfficiency(env *signalEnv, b *builder) {
	ds := env.data.Occupancy
	regionCol, ok := ds.FirstColumn("region_name", "region", "location", "destination")
	if !ok || !ds.HasColumn("revenue") || !ds.HasColumn("total_rooms") {
		return
	}
	revenue := groupSum(ds, regionCol, "revenue")
	capacity := groupSum(ds, regionCol, "total_rooms")
	rooms := make(map[string]float64, len(capacity))
	for _, entry := range capacity {
		rooms[entry.Name] = entry.Value
	}

	efficiency := make([]valueEntry, 0, len(revenue))
	for _, entry := range revenue {
		if r := rooms[entry.Name]; r > 0 {
			efficiency = append(efficiency, valueEntry{Name: entry.Name, Value: entry.Value / r})
		}
	}
	sortValueEntries(efficiency)
	for i, entry := range efficiency {
		if i == 3 {
			break
		}
		b.recommend("Consider expanding investment in %s (high efficiency: $%.2f/room)", entry.Name, entry.Value)
	}
}

func signalEconomicImpact(env *signalEnv, b *builder) {
	if env.fx.Arrivals.Failed() {
		return
	}
	perVisitor := env.params.RevenuePerVisitor
	if env.data.Occupancy.HasColumn("revenue") && !env.data.Arrivals.IsEmpty() {
		if visitors := visitorTotal(env.data.Arrivals); visitors > 0 {
			perVisitor = env.data.Occupancy.Sum("revenue") / visitors
		}
	}

	currentVisitors := float64(env.data.Arrivals.Len())
	if currentVisitors == 0 {
		currentVisitors = 1000
	}
	multiplier := env.params.EconomicMultiplier
	b.metric(Metric{
		Name:           "Projected Economic Impact",
		CurrentValue:   currentVisitors * perVisitor * multiplier,
		PredictedValue: floatPtr(env.fx.Arrivals.TotalPredicted * perVisitor * multiplier),
		Trend:          TrendIncreasing,
		Confidence:     0.7,
		ImpactLevel:    ImpactHigh,
		Recommendation: "Leverage economic impact data for policy advocacy",
		Relevance:      []string{"tourism_funding"},
	})
}

// visitorTotal sums a recognized visitor-count column, falling back to
// the record count.
func visitorTotal(ds *dataset.Dataset) float64 {
	for _, col := range dataset.VisitorCountColumns {
		if values := ds.NumericColumn(col); len(values) > 0 {
			var sum float64
			for _, v := range values {
				sum += v
			}
			return sum
		}
	}
	return float64(ds.Len())
}

type countEntry struct {
	Name  string
	Count int
}

// textCounts tallies the non-empty values of a text column, most
// frequent first with names breaking ties.
func textCounts(ds *dataset.Dataset, col string) []countEntry {
	if ds == nil {
		return nil
	}
	counts := make(map[string]int)
	for _, row := range ds.Rows {
		if v := row.Get(col).Text(); v != "" {
			counts[v]++
		}
	}
	entries := make([]countEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, countEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

type valueEntry struct {
	Name  string
	Value float64
}

func sortValueEntries(entries []valueEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Name < entries[j].Name
	})
}

// groupMean averages valCol per distinct keyCol value, highest first.
func groupMean(ds *dataset.Dataset, keyCol, valCol string) []valueEntry {
	return groupMeanBy(ds, valCol, func(row dataset.Row) (string, bool) {
		key := row.Get(keyCol).Text()
		return key, key != ""
	})
}

// groupMeanBy averages valCol per key derived from each row.
func groupMeanBy(ds *dataset.Dataset, valCol string, key func(dataset.Row) (string, bool)) []valueEntry {
	if ds == nil {
		return nil
	}
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, row := range ds.Rows {
		k, ok := key(row)
		if !ok {
			continue
		}
		v, ok := row.Float(valCol)
		if !ok {
			continue
		}
		sums[k] += v
		counts[k]++
	}
	entries := make([]valueEntry, 0, len(sums))
	for name, sum := range sums {
		entries = append(entries, valueEntry{Name: name, Value: sum / float64(counts[name])})
	}
	sortValueEntries(entries)
	return entries
}

// groupSum totals valCol per distinct keyCol value, highest first.
func groupSum(ds *dataset.Dataset, keyCol, valCol string) []valueEntry {
	if ds == nil {
		return nil
	}
	sums := make(map[string]float64)
	for _, row := range ds.Rows {
		k := row.Get(keyCol).Text()
		if k == "" {
			continue
		}
		v, ok := row.Float(valCol)
		if !ok {
			continue
		}
		sums[k] += v
	}
	entries := make([]valueEntry, 0, len(sums))
	for name, sum := range sums {
		entries = append(entries, valueEntry{Name: name, Value: sum})
	}
	sortValueEntries(entries)
	return entries
}

// peakAndLow picks the highest and lowest entries of a sorted group.
func peakAndLow(entries []valueEntry) (peak, low string, ok bool) {
	if len(entries) == 0 {
		return "", "", false
	}
	return entries[0].Name, entries[len(entries)-1].Name, true
}

func joinNames(entries []countEntry) string {
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name
	}
	return strings.Join(names, ", ")
}
