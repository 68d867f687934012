package insight

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v2"
)

//go:embed profiles.yaml
var profilesYAML []byte

// Static tail recommendations are appended either unconditionally or
// only when no data-driven recommendation was produced.
const (
	tailAlways  = "always"
	tailIfEmpty = "if_empty"
)

// Profile is the declarative description of one department: which
// signals to evaluate and the static recommendation and action tails.
type Profile struct {
	Name                string   `yaml:"name"`
	Priority            string   `yaml:"priority"`
	FocusMetrics        []string `yaml:"focus_metrics"`
	Signals             []string `yaml:"signals"`
	RecommendationsMode string   `yaml:"recommendations_mode"`
	Recommendations     []string `yaml:"recommendations"`
	ActionItems         []string `yaml:"action_items"`
}

type profileFile struct {
	Departments []Profile `yaml:"departments"`
}

// loadProfiles parses the embedded department table, validating that
// every referenced signal exists in the registry.
func loadProfiles() ([]Profile, error) {
	var file profileFile
	if err := yaml.Unmarshal(profilesYAML, &file); err != nil {
		return nil, fmt.Errorf("parsing department profiles: %w", err)
	}
	if len(file.Departments) == 0 {
		return nil, fmt.Errorf("department profile table is empty")
	}
	for i := range file.Departments {
		p := &file.Departments[i]
		if p.Name == "" {
			return nil, fmt.Errorf("department profile %d has no name", i)
		}
		if p.RecommendationsMode == "" {
			p.RecommendationsMode = tailAlways
		}
		if p.RecommendationsMode != tailAlways && p.RecommendationsMode != tailIfEmpty {
			return nil, fmt.Errorf("department %s: unknown recommendations_mode %q", p.Name, p.RecommendationsMode)
		}
		for _, name := range p.Signals {
			if _, ok := signalRegistry[name]; !ok {
				return nil, fmt.Errorf("department %s references unknown signal %q", p.Name, name)
			}
		}
	}
	return file.Departments, nil
}
