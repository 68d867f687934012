package insight

import (
	"context"
	"fmt"
	"log/slog"

	"tourinsights/internal/dataset"
	"tourinsights/internal/forecast"
	"tourinsights/internal/synthetic"
)

// Generator evaluates department profiles against a data collection and
// its forecasts. Evaluation is a pure function of the inputs apart from
// the injected synthetic source behind the simulated platform metrics.
type Generator struct {
	params   forecast.Params
	source   synthetic.Source
	logger   *slog.Logger
	profiles []Profile
}

// NewGenerator builds a Generator from the embedded department table.
func NewGenerator(params forecast.Params, source synthetic.Source, logger *slog.Logger) (*Generator, error) {
	profiles, err := loadProfiles()
	if err != nil {
		return nil, err
	}
	return &Generator{
		params:   params,
		source:   source,
		logger:   logger,
		profiles: profiles,
	}, nil
}

// Departments returns the department identifiers in canonical order.
func (g *Generator) Departments() []string {
	names := make([]string, len(g.profiles))
	for i, p := range g.profiles {
		names[i] = p.Name
	}
	return names
}

// Generate evaluates every department.
func (g *Generator) Generate(ctx context.Context, data dataset.Collection, fx forecast.Bundle) map[string]DepartmentInsight {
	insights := make(map[string]DepartmentInsight, len(g.profiles))
	for _, profile := range g.profiles {
		insights[profile.Name] = g.evaluate(ctx, profile, data, fx)
	}
	return insights
}

// GenerateDepartment evaluates a single department by identifier.
func (g *Generator) GenerateDepartment(ctx context.Context, department string, data dataset.Collection, fx forecast.Bundle) (DepartmentInsight, error) {
	for _, profile := range g.profiles {
		if profile.Name == department {
			return g.evaluate(ctx, profile, data, fx), nil
		}
	}
	return DepartmentInsight{}, fmt.Errorf("unknown department %q", department)
}

// evaluate runs the profile's signals in order, then appends the static
// tails. A signal whose columns are absent contributes nothing.
func (g *Generator) evaluate(ctx context.Context, profile Profile, data dataset.Collection, fx forecast.Bundle) DepartmentInsight {
	b := &builder{alert: AlertNormal}
	env := &signalEnv{data: data, fx: fx, params: g.params, source: g.source}

	for _, name := range profile.Signals {
		signalRegistry[name](env, b)
	}

	if profile.RecommendationsMode == tailAlways || len(b.recommendations) == 0 {
		b.recommendations = append(b.recommendations, profile.Recommendations...)
	}
	b.actions = append(b.actions, profile.ActionItems...)

	g.logger.DebugContext(ctx, "department insight generated",
		slog.String("department", profile.Name),
		slog.Int("metrics", len(b.metrics)),
		slog.String("alert_level", b.alert))

	return DepartmentInsight{
		Department:      profile.Name,
		Priority:        profile.Priority,
		FocusMetrics:    profile.FocusMetrics,
		Metrics:         b.metrics,
		Forecasts:       fx,
		Recommendations: b.recommendations,
		ActionItems:     b.actions,
		AlertLevel:      b.alert,
	}
}

// builder accumulates one department's evaluation output.
type builder struct {
	metrics         []Metric
	recommendations []string
	actions         []string
	alert           string
}

func (b *builder) metric(m Metric) {
	b.metrics = append(b.metrics, m)
}

func (b *builder) recommend(format string, args ...any) {
	b.recommendations = append(b.recommendations, fmt.Sprintf(format, args...))
}

func (b *builder) action(format string, args ...any) {
	b.actions = append(b.actions, fmt.Sprintf(format, args...))
}

// escalate raises the alert level, never lowering it.
func (b *builder) escalate(level string) {
	if rank(level) > rank(b.alert) {
		b.alert = level
	}
}

func rank(level string) int {
	switch level {
	case AlertCritical:
		return 3
	case AlertWarning:
		return 2
	case AlertNormal:
		return 1
	default:
		return 0
	}
}
