package persona

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"personagen/internal/signals"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testBehavior = signals.BehaviorProfile{
	Label: "testuser",
	TopSubreddits: []signals.SubredditFreq{
		{Name: "golang", Count: 12},
		{Name: "cooking", Count: 5},
	},
	SocialLinks: []string{"https://github.com/testuser"},
}

func completeResponse() string {
	return `{
		"name": "The Weekend Tinkerer",
		"age_range": "25-35",
		"occupation_category": "Technology",
		"status": "Professional",
		"location_type": "Urban",
		"tier": "Early Adopter",
		"archetype": "The Creator",
		"traits": ["curious", "pragmatic", "direct", "patient"],
		"motivations": {
			"Convenience": 80, "Wellness": 40, "Speed": 70,
			"Preferences": 60, "Comfort": 55, "Belonging": 30
		},
		"dimensions": {
			"Introvert-Extrovert": 35, "Intuition-Sensing": 60,
			"Feeling-Thinking": 75, "Perceiving-Judging": 50
		},
		"habits": ["answers beginner questions", "posts build logs"],
		"frustrations": ["flaky tooling", "vague bug reports", "meetings"],
		"goals_needs": ["ship side projects", "learn distributed systems", "less churn"],
		"quote": "works on my machine is not a diagnosis"
	}`
}

func TestParseCompleteResponse(t *testing.T) {
	p := Parse(completeResponse(), testBehavior)

	require.Empty(t, p.Warnings)
	require.Equal(t, "The Weekend Tinkerer", p.Name)
	require.Equal(t, "25-35", p.AgeRange)
	require.Equal(t, "Technology", p.OccupationCategory)
	require.Equal(t, "The Creator", p.Archetype)
	require.Equal(t, []string{"curious", "pragmatic", "direct", "patient"}, p.Traits)
	require.Equal(t, []string{"golang", "cooking"}, p.Interests)
	require.Equal(t, []string{"https://github.com/testuser"}, p.SocialLinks)

	require.Len(t, p.Motivations, 6)
	require.Equal(t, Score{Name: "Convenience", Value: 80}, p.Motivations[0])
	require.Len(t, p.Dimensions, 4)
	require.Equal(t, Score{Name: "Introvert-Extrovert", Value: 35}, p.Dimensions[0])
}

func TestParseNarrativeOnlyResponse(t *testing.T) {
	p := Parse("This user seems to be a software developer who likes cooking.", testBehavior)

	// every field present with its default, every default recorded
	require.Equal(t, "testuser Persona", p.Name)
	require.Equal(t, FallbackCategory, p.AgeRange)
	require.Equal(t, FallbackCategory, p.Archetype)
	require.Equal(t, FallbackCategory, p.Tier)
	require.Empty(t, p.Traits)
	require.Len(t, p.Motivations, 6)
	for _, score := range p.Motivations {
		require.Equal(t, DefaultScore, score.Value)
	}
	require.Len(t, p.Dimensions, 4)
	require.Equal(t, []string{"golang", "cooking"}, p.Interests)
	require.NotEmpty(t, p.Warnings)
	require.Contains(t, p.Warnings[0], "no JSON object")
}

func TestParseSurroundingProse(t *testing.T) {
	raw := "Sure! Here is the persona you asked for:\n```json\n" + completeResponse() + "\n```\nLet me know if you need anything else."

	p := Parse(raw, testBehavior)
	require.Empty(t, p.Warnings)
	require.Equal(t, "The Weekend Tinkerer", p.Name)
}

func TestParseRepairableJson(t *testing.T) {
	// trailing comma and single quotes, typical almost-JSON output
	raw := `{
		'name': 'Repaired Persona',
		'age_range': '25-35',
	}`

	p := Parse(raw, testBehavior)
	require.Equal(t, "Repaired Persona", p.Name)
	require.Equal(t, "25-35", p.AgeRange)

	repaired := false
	for _, w := range p.Warnings {
		if strings.Contains(w, "repair") {
			repaired = true
		}
	}
	require.True(t, repaired)
}

func TestParseVocabCoercion(t *testing.T) {
	testCases := []struct {
		value    string
		expected string
		warns    bool
	}{
		{value: "Technology", expected: "Technology"},
		{value: "technology", expected: "Technology"},
		{value: "  Technology ", expected: "Technology"},
		{value: "Technolgy", expected: "Technology", warns: true},
		{value: "Underwater Basket Weaving", expected: FallbackCategory, warns: true},
		{value: "", expected: FallbackCategory, warns: true},
	}

	for _, test := range testCases {
		raw := fmt.Sprintf(`{"occupation_category": %q}`, test.value)
		p := Parse(raw, testBehavior)
		require.Equal(t, test.expected, p.OccupationCategory, "value=%q", test.value)

		warned := false
		for _, w := range p.Warnings {
			if strings.Contains(w, "occupation_category") {
				warned = true
			}
		}
		require.Equal(t, test.warns, warned, "value=%q", test.value)
	}
}

func TestParseScoreHandling(t *testing.T) {
	raw := `{
		"motivations": {
			"convenience": 250,
			"Wellness": -10,
			"SPEED": 62.4
		}
	}`

	p := Parse(raw, testBehavior)

	byName := map[string]int{}
	for _, score := range p.Motivations {
		byName[score.Name] = score.Value
	}
	require.Equal(t, 100, byName["Convenience"])
	require.Equal(t, 0, byName["Wellness"])
	require.Equal(t, 62, byName["Speed"])
	require.Equal(t, DefaultScore, byName["Preferences"])

	defaulted := 0
	for _, w := range p.Warnings {
		if strings.Contains(w, "motivations") {
			defaulted++
		}
	}
	// Preferences, Comfort and Belonging were absent
	require.Equal(t, 3, defaulted)
}

func TestParseTruncatesTraits(t *testing.T) {
	raw := `{"traits": ["a", "b", "c", "d", "e", "f"]}`
	p := Parse(raw, testBehavior)
	require.Equal(t, []string{"a", "b", "c", "d"}, p.Traits)
}

func TestParseDeterministic(t *testing.T) {
	first := Parse(completeResponse(), testBehavior)
	second := Parse(completeResponse(), testBehavior)
	require.Empty(t, cmp.Diff(first, second))
}

func TestLoadRoundTrip(t *testing.T) {
	original := Parse(completeResponse(), testBehavior)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	loaded, err := Load(data)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(original, loaded))
}

func TestLoadClampsScores(t *testing.T) {
	data := []byte(`{
		"name": "Edited Persona",
		"motivations": [{"name": "Convenience", "value": -20}],
		"dimensions": [{"name": "Introvert-Extrovert", "value": 150}]
	}`)

	p, err := Load(data)
	require.NoError(t, err)
	require.Equal(t, 0, p.Motivations[0].Value)
	require.Equal(t, 100, p.Dimensions[0].Value)
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load([]byte("not json"))
	require.Error(t, err)
}
