package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"tourinsights/internal/synthetic"
)

var sectors = []string{"airlines", "hotels", "regional_tourism", "travel_agencies", "other"}

var nationalities = []string{
	"UK", "China", "India", "Germany", "France", "Italy", "Brazil", "Canada",
	"Australia", "Japan", "South Korea", "Russia", "Turkey", "Egypt", "Morocco",
	"Algeria", "Saudi Arabia", "United Kingdom", "United States", "Ethiopia",
	"Spain", "Mexico", "South Africa", "Switzerland", "Netherlands",
	"Thailand", "Indonesia", "Vietnam", "Malaysia", "Singapore",
	"New Zealand", "Argentina", "Chile", "Colombia", "Peru",
}

var regions = []string{
	"Addis Ababa", "Oromia", "Amhara", "Tigray", "Somali", "SNNPR", "Afar", "Harari",
}

var regionDestinations = map[string][]string{
	"Addis Ababa": {
		"National Museum of Ethiopia", "Entoto Hills", "Holy Trinity Cathedral",
		"Friendship Park", "Unity Park", "Adwa Victory Monument",
	},
	"Oromia": {
		"Bale Mountains", "Awash National Park", "Sof Omar Caves",
		"Wenchi Crater Lake", "Lake Langano", "Rift Valley Lakes", "Jimma Museum",
	},
	"Amhara": {
		"Lalibela Churches", "Blue Nile Gorge", "Gondar & Fasil Ghebbi",
		"Simien Mountains National Park", "Lake Tana", "Blue Nile Falls",
	},
	"Tigray": {
		"Axum Obelisks", "Gheralta Rock-Hewn Churches", "Northern Stelae Field",
		"Monastery of Debre Damo",
	},
	"Somali": {"Laas Geel", "Gode", "Kebri Dar"},
	"SNNPR": {
		"Omo Valley", "Konso Cultural Landscape", "Nechisar National Park",
		"Arba Minch", "Dorze Village",
	},
	"Afar":   {"Danakil Depression", "Erta Ale volcano", "Yangudi Rassa National Park"},
	"Harari": {"Harar Old City"},
}

var (
	positiveComments = []string{"Excellent experience", "Loved it", "Highly recommended", "Fantastic service", "Will return"}
	negativeComments = []string{"Very disappointed", "Not worth it", "Terrible service", "Would not recommend", "Poor experience"}
	neutralComments  = []string{"It was okay", "Average", "Nothing special", "Mediocre", "So-so"}
)

var header = []string{
	"arrival_date", "sector", "age", "sex", "nationality", "home_region",
	"tourist_destination", "spend_amount", "visit_duration_days",
	"satisfaction_score", "infrastructure_rating", "local_business_spend",
	"review_sentiment", "review_comment",
	"flight_delay_minutes", "flight_spend",
	"hotel_nights", "hotel_rating", "hotel_spend",
	"activities_count", "activity_spend",
	"package_type", "package_spend",
	"souvenir_spend", "other_service_rating",
}

func main() {
	out := flag.String("out", "tourism_dataset.csv", "output CSV path")
	perSector := flag.Int("per-sector", 200, "records to generate per sector")
	days := flag.Int("days", 180, "spread arrival dates over this many past days")
	seed := flag.Int64("seed", 1, "random seed, 0 for time-based")
	flag.Parse()

	source := synthetic.NewSource(*seed)
	gen := &generator{source: source, now: time.Now().UTC(), days: *days}

	records := make([][]string, 0, len(sectors)*(*perSector))
	for _, sector := range sectors {
		for i := 0; i < *perSector; i++ {
			records = append(records, gen.record(sector))
		}
	}

	if err := writeCSV(*out, records); err != nil {
		slog.Error("failed to write dataset", "error", err, "path", *out)
		os.Exit(1)
	}

	slog.Info("dataset written",
		"path", *out,
		"records", len(records),
		"sectors", len(sectors))
}

type generator struct {
	source synthetic.Source
	now    time.Time
	days   int
}

func (g *generator) record(sector string) []string {
	region := pick(g.source, regions)
	spend := g.gamma(2, 1000)
	duration := g.exponential(3) + 1
	sentiment, comment := g.sentiment()

	row := map[string]string{
		"arrival_date":          g.now.AddDate(0, 0, -g.source.IntBetween(0, g.days)).Format("2006-01-02"),
		"sector":                sector,
		"age":                   fmt.Sprintf("%d", g.source.IntBetween(18, 79)),
		"sex":                   pick(g.source, []string{"Male", "Female"}),
		"nationality":           pick(g.source, nationalities),
		"home_region":           region,
		"tourist_destination":   pick(g.source, regionDestinations[region]),
		"spend_amount":          fmt.Sprintf("%.2f", spend),
		"visit_duration_days":   fmt.Sprintf("%.1f", duration),
		"satisfaction_score":    fmt.Sprintf("%d", g.source.IntBetween(1, 5)),
		"infrastructure_rating": fmt.Sprintf("%d", g.source.IntBetween(1, 5)),
		"local_business_spend":  fmt.Sprintf("%.2f", spend*g.source.Uniform(0.1, 0.5)),
		"review_sentiment":      sentiment,
		"review_comment":        comment,
	}

	switch sector {
	case "airlines":
		row["flight_delay_minutes"] = fmt.Sprintf("%d", g.poisson(15))
		row["flight_spend"] = fmt.Sprintf("%.2f", spend*g.source.Uniform(0.5, 1))
	case "hotels":
		row["hotel_nights"] = fmt.Sprintf("%d", int(duration))
		row["hotel_rating"] = fmt.Sprintf("%d", g.source.IntBetween(1, 5))
		row["hotel_spend"] = fmt.Sprintf("%.2f", spend*g.source.Uniform(0.5, 1))
	case "regional_tourism":
		row["activities_count"] = fmt.Sprintf("%d", g.source.IntBetween(1, 9))
		row["activity_spend"] = fmt.Sprintf("%.2f", spend*g.source.Uniform(0.4, 0.9))
	case "travel_agencies":
		row["package_type"] = pick(g.source, []string{"budget", "standard", "premium"})
		row["package_spend"] = fmt.Sprintf("%.2f", spend*g.source.Uniform(0.6, 1))
	default:
		row["souvenir_spend"] = fmt.Sprintf("%.2f", spend*g.source.Uniform(0.2, 0.6))
		row["other_service_rating"] = fmt.Sprintf("%d", g.source.IntBetween(1, 5))
	}

	record := make([]string, len(header))
	for i, col := range header {
		record[i] = row[col]
	}
	return record
}

// exponential draws from Exp(1/mean) by inverse transform
func (g *generator) exponential(mean float64) float64 {
	u := g.source.Uniform(0, 1)
	if u >= 1 {
		u = 0.999999
	}
	return -mean * math.Log(1-u)
}

// gamma draws from Gamma(shape, scale) for small integer shapes as a
// sum of exponentials
func (g *generator) gamma(shape int, scale float64) float64 {
	var sum float64
	for i := 0; i < shape; i++ {
		sum += g.exponential(1)
	}
	return sum * scale
}

// poisson approximates Poisson(mean) with a clamped rounded normal,
// adequate for the means used here
func (g *generator) poisson(mean float64) int {
	v := int(math.Round(g.source.Normal(mean, math.Sqrt(mean))))
	if v < 0 {
		return 0
	}
	return v
}

func (g *generator) sentiment() (string, string) {
	u := g.source.Uniform(0, 1)
	switch {
	case u < 0.60:
		return "positive", pick(g.source, positiveComments)
	case u < 0.85:
		return "negative", pick(g.source, negativeComments)
	default:
		return "neutral", pick(g.source, neutralComments)
	}
}

func pick(source synthetic.Source, options []string) string {
	return options[source.IntBetween(0, len(options)-1)]
}

func writeCSV(path string, records [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	w.Flush()
	return w.Error()
}
