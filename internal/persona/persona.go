// Package persona holds the final synthesized artifact and the
// validation boundary that coerces the generation service's free-form
// output into it. the generator is a non-deterministic black box, so
// nothing downstream of this package ever sees an out-of-range score or
// an off-vocabulary category.
package persona

import (
	"encoding/json"
	"fmt"
)

// Score is one named score on the fixed 0-100 scale. scores are kept
// as an ordered slice, not a map, so serialization order is the
// declared order and stays stable across runs.
type Score struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Persona is immutable after Parse returns it. Warnings records every
// field that had to be defaulted or coerced so consumers know how
// reliable the rest of the document is.
type Persona struct {
	Name               string   `json:"name"`
	AgeRange           string   `json:"age_range"`
	OccupationCategory string   `json:"occupation_category"`
	Status             string   `json:"status"`
	LocationType       string   `json:"location_type"`
	Tier               string   `json:"tier"`
	Archetype          string   `json:"archetype"`
	Traits             []string `json:"traits"`
	Motivations        []Score  `json:"motivations"`
	Dimensions         []Score  `json:"dimensions"`
	Habits             []string `json:"habits"`
	Frustrations       []string `json:"frustrations"`
	GoalsNeeds         []string `json:"goals_needs"`
	Quote              string   `json:"quote"`
	Interests          []string `json:"interests"`
	SocialLinks        []string `json:"social_links,omitempty"`
	Warnings           []string `json:"warnings,omitempty"`
}

// Load reads a persona back from its canonical JSON rendering. the
// renderer's json output round-trips through Load exactly. scores are
// re-clamped on the way in so an edited file cannot carry a value
// outside the 0-100 scale into the renderers.
func Load(data []byte) (Persona, error) {
	var p Persona
	if err := json.Unmarshal(data, &p); err != nil {
		return Persona{}, fmt.Errorf("load persona: %w", err)
	}
	for i := range p.Motivations {
		p.Motivations[i].Value = clampScore(float64(p.Motivations[i].Value))
	}
	for i := range p.Dimensions {
		p.Dimensions[i].Value = clampScore(float64(p.Dimensions[i].Value))
	}
	return p, nil
}
