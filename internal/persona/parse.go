package persona

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"personagen/internal/signals"
	"personagen/lib/textutil"

	"github.com/antzucaro/matchr"
	"github.com/kaptinlin/jsonrepair"
)

// minimum JaroWinkler similarity before a free-form category is coerced
// onto a vocabulary entry
const vocabSimilarityThreshold = 0.88

type rawPersona struct {
	Name               string             `json:"name"`
	AgeRange           string             `json:"age_range"`
	OccupationCategory string             `json:"occupation_category"`
	Status             string             `json:"status"`
	LocationType       string             `json:"location_type"`
	Tier               string             `json:"tier"`
	Archetype          string             `json:"archetype"`
	Traits             []string           `json:"traits"`
	Motivations        map[string]float64 `json:"motivations"`
	Dimensions         map[string]float64 `json:"dimensions"`
	Habits             []string           `json:"habits"`
	Frustrations       []string           `json:"frustrations"`
	GoalsNeeds         []string           `json:"goals_needs"`
	Quote              string             `json:"quote"`
}

// Parse extracts a structurally complete Persona from the generation
// service's raw response. it never fails: every absent or out-of-range
// field is substituted with its documented default and the substitution
// is recorded as a warning.
func Parse(raw string, bp signals.BehaviorProfile) Persona {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	decoded, ok := decodeResponse(raw, warn)

	p := Persona{
		Name:               decoded.Name,
		AgeRange:           coerceVocab("age_range", decoded.AgeRange, AgeRanges, warn),
		OccupationCategory: coerceVocab("occupation_category", decoded.OccupationCategory, OccupationCategories, warn),
		Status:             coerceVocab("status", decoded.Status, Statuses, warn),
		LocationType:       coerceVocab("location_type", decoded.LocationType, LocationTypes, warn),
		Tier:               coerceVocab("tier", decoded.Tier, Tiers, warn),
		Archetype:          coerceVocab("archetype", decoded.Archetype, Archetypes, warn),
		Traits:             stringList("traits", decoded.Traits, warn),
		Motivations:        scoreList("motivations", MotivationKeys, decoded.Motivations, warn),
		Dimensions:         scoreList("dimensions", DimensionKeys, decoded.Dimensions, warn),
		Habits:             stringList("habits", decoded.Habits, warn),
		Frustrations:       stringList("frustrations", decoded.Frustrations, warn),
		GoalsNeeds:         stringList("goals_needs", decoded.GoalsNeeds, warn),
		Quote:              decoded.Quote,
	}

	if p.Name == "" {
		p.Name = bp.Label + " Persona"
		if ok {
			warn("name missing, defaulted to %q", p.Name)
		}
	}
	if len(p.Traits) > 4 {
		p.Traits = p.Traits[:4]
	}
	if p.Quote == "" && ok {
		warn("quote missing")
	}

	// interests and social links come from the behavior profile, not
	// from the generator, so they are always trustworthy
	p.Interests = make([]string, len(bp.TopSubreddits))
	for i, freq := range bp.TopSubreddits {
		p.Interests[i] = freq.Name
	}
	p.SocialLinks = append([]string(nil), bp.SocialLinks...)

	p.Warnings = warnings
	return p
}

// decodeResponse finds the JSON object embedded in the response text
// and unmarshals it, running the payload through jsonrepair when the
// generator produced almost-JSON. the second return value is false when
// nothing could be decoded at all.
func decodeResponse(raw string, warn func(string, ...any)) (rawPersona, bool) {
	var decoded rawPersona

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		warn("response contained no JSON object, all fields defaulted")
		return decoded, false
	}
	payload := raw[start : end+1]

	if err := json.Unmarshal([]byte(payload), &decoded); err == nil {
		return decoded, true
	}

	repaired, err := jsonrepair.JSONRepair(payload)
	if err != nil {
		warn("response JSON unparseable and unrepairable, all fields defaulted")
		return rawPersona{}, false
	}
	if err := json.Unmarshal([]byte(repaired), &decoded); err != nil {
		warn("response JSON unparseable even after repair, all fields defaulted")
		return rawPersona{}, false
	}
	warn("response JSON required repair before parsing")
	return decoded, true
}

// coerceVocab maps a free-form value onto a closed vocabulary. exact
// matches (ignoring case) win, then the nearest entry by JaroWinkler
// similarity above the threshold, then the fallback.
func coerceVocab(field, value string, vocab []string, warn func(string, ...any)) string {
	value = strings.TrimSpace(value)
	if value == "" {
		warn("%s missing, defaulted to %q", field, FallbackCategory)
		return FallbackCategory
	}

	for _, entry := range vocab {
		if strings.EqualFold(value, entry) {
			return entry
		}
	}

	best := ""
	bestSim := 0.0
	for _, entry := range vocab {
		sim := matchr.JaroWinkler(strings.ToLower(value), strings.ToLower(entry), false)
		if sim > bestSim {
			bestSim = sim
			best = entry
		}
	}
	if bestSim >= vocabSimilarityThreshold {
		warn("%s %q coerced to %q", field, value, best)
		return best
	}

	warn("%s %q not in vocabulary, defaulted to %q", field, value, FallbackCategory)
	return FallbackCategory
}

// scoreList builds the fixed, ordered score set for the given keys.
// score lookup tolerates key casing and separator differences. absent
// scores default to DefaultScore, out-of-range scores are clamped.
func scoreList(field string, keys []string, values map[string]float64, warn func(string, ...any)) []Score {
	normalized := make(map[string]float64, len(values))
	for k, v := range values {
		normalized[textutil.NormalizeName(k)] = v
	}

	scores := make([]Score, len(keys))
	for i, key := range keys {
		scores[i] = Score{Name: key, Value: DefaultScore}

		value, found := normalized[textutil.NormalizeName(key)]
		if !found {
			warn("%s: %s missing, defaulted to %d", field, key, DefaultScore)
			continue
		}
		if math.IsNaN(value) {
			warn("%s: %s unparseable, defaulted to %d", field, key, DefaultScore)
			continue
		}
		scores[i].Value = clampScore(value)
	}
	return scores
}

func clampScore(value float64) int {
	rounded := int(math.Round(value))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func stringList(field string, values []string, warn func(string, ...any)) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = textutil.CollapseWhitespace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		warn("%s missing, defaulted to empty list", field)
	}
	return out
}
