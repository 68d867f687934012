package dataset

// Candidate column lists, in priority order. The loader and analyzers never
// require any of these; a miss only disables the dependent feature.
var (
	// DateColumns are recognized timestamp columns
	DateColumns = []string{"arrival_date", "created_at", "date", "timestamp", "updated_at"}

	// ActivityColumns are numeric proxies for visitor activity
	ActivityColumns = []string{"spend_amount", "total_spend", "visitors", "count", "passenger_count"}

	// RevenueColumns are direct revenue measurements
	RevenueColumns = []string{"revenue", "total_revenue", "income", "earnings"}

	// RegionColumns identify a geographic grouping
	RegionColumns = []string{"home_region", "region_name", "region", "location", "destination"}

	// VisitorCountColumns are explicit visitor tallies
	VisitorCountColumns = []string{"passenger_count", "visitors", "arrivals", "tourist_count"}

	// SpendCategoryColumns contribute to the derived total_spend
	SpendCategoryColumns = []string{"spend_amount", "flight_spend", "hotel_spend", "activity_spend", "package_spend", "souvenir_spend"}

	// MeasureColumns is the priority order for dimensional analysis measures
	MeasureColumns = []string{"total_spend", "spend_amount", "hotel_spend", "activity_spend", "flight_spend", "package_spend"}

	// NumericColumns is the coercion vocabulary applied on load
	NumericColumns = []string{
		"spend_amount", "visit_duration_days", "satisfaction_score", "age",
		"infrastructure_rating", "local_business_spend", "flight_delay_minutes",
		"flight_spend", "hotel_nights", "hotel_rating", "hotel_spend",
		"activities_count", "activity_spend", "package_spend", "souvenir_spend",
		"other_service_rating", "arrivals", "tourist_arrivals", "visitors",
		"count", "passenger_count", "revenue", "total_revenue", "income",
		"earnings", "occupied_rooms", "total_rooms",
	}
)

// Capabilities is the explicit schema probe for one dataset: which semantic
// columns were found, resolved once so downstream logic branches on a tested
// record instead of scattered presence checks.
type Capabilities struct {
	DateColumn     string `json:"date_column,omitempty"`
	ActivityColumn string `json:"activity_column,omitempty"`
	RevenueColumn  string `json:"revenue_column,omitempty"`
	RegionColumn   string `json:"region_column,omitempty"`
	VisitorColumn  string `json:"visitor_column,omitempty"`

	HasNationality    bool `json:"has_nationality"`
	HasDestination    bool `json:"has_destination"`
	HasSector         bool `json:"has_sector"`
	HasGender         bool `json:"has_gender"`
	HasAge            bool `json:"has_age"`
	HasPackageType    bool `json:"has_package_type"`
	HasHotelNights    bool `json:"has_hotel_nights"`
	HasVisitDuration  bool `json:"has_visit_duration"`
	HasHotelRating    bool `json:"has_hotel_rating"`
	HasHotelSpend     bool `json:"has_hotel_spend"`
	HasSatisfaction   bool `json:"has_satisfaction"`
	HasInfrastructure bool `json:"has_infrastructure"`
	HasOccupiedRooms  bool `json:"has_occupied_rooms"`
	HasTotalRooms     bool `json:"has_total_rooms"`
	HasTotalSpend     bool `json:"has_total_spend"`
}

// HasDate reports whether a usable date column was found
func (c Capabilities) HasDate() bool {
	return c.DateColumn != ""
}

// HasRegion reports whether a usable region column was found
func (c Capabilities) HasRegion() bool {
	return c.RegionColumn != ""
}

// Probe scans a dataset's columns once and returns its capability record
func Probe(d *Dataset) Capabilities {
	caps := Capabilities{}
	if d == nil || d.IsEmpty() {
		return caps
	}

	caps.DateColumn, _ = d.FirstColumn(DateColumns...)
	caps.ActivityColumn = firstNumeric(d, ActivityColumns)
	caps.RevenueColumn = firstNumeric(d, RevenueColumns)
	caps.RegionColumn, _ = d.FirstColumn(RegionColumns...)
	caps.VisitorColumn = firstNumeric(d, VisitorCountColumns)

	caps.HasNationality = d.HasColumn("nationality")
	caps.HasDestination = d.HasColumn("tourist_destination")
	caps.HasSector = d.HasColumn("sector")
	caps.HasGender = d.HasColumn("sex")
	caps.HasAge = d.HasColumn("age")
	caps.HasPackageType = d.HasColumn("package_type")
	caps.HasHotelNights = d.HasColumn("hotel_nights")
	caps.HasVisitDuration = d.HasColumn("visit_duration_days")
	caps.HasHotelRating = d.HasColumn("hotel_rating")
	caps.HasHotelSpend = d.HasColumn("hotel_spend")
	caps.HasSatisfaction = d.HasColumn("satisfaction_score")
	caps.HasInfrastructure = d.HasColumn("infrastructure_rating")
	caps.HasOccupiedRooms = d.HasColumn("occupied_rooms")
	caps.HasTotalRooms = d.HasColumn("total_rooms")
	caps.HasTotalSpend = d.HasColumn("total_spend")

	return caps
}

// firstNumeric returns the first candidate that holds at least one numeric value
func firstNumeric(d *Dataset, candidates []string) string {
	for _, col := range candidates {
		if !d.HasColumn(col) {
			continue
		}
		if len(d.NumericColumn(col)) > 0 {
			return col
		}
	}
	return ""
}
