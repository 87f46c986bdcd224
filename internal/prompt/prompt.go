// Package prompt serializes a BehaviorProfile into the bounded request
// sent to the generation service. only whitelisted, already-aggregated
// fields make it into the payload: no raw timestamps, no permalinks and
// no long-form text.
package prompt

import (
	"fmt"
	"strings"

	"personagen/internal/persona"
	"personagen/internal/signals"
)

// hard ceiling on the payload size. excerpts are dropped
// lowest-score-first until the payload fits.
const MaxPayloadBytes = 12_000

type Payload struct {
	Text string
}

func Build(bp signals.BehaviorProfile) (Payload, error) {
	if bp.Label == "" {
		return Payload{}, fmt.Errorf("behavior profile has no label")
	}

	samples := bp.Samples
	for {
		text := render(bp, samples)
		if len(text) <= MaxPayloadBytes || len(samples) == 0 {
			return Payload{Text: text}, nil
		}
		// samples are ordered highest-score-first, so trimming from
		// the tail drops the lowest-weighted excerpt
		samples = samples[:len(samples)-1]
	}
}

func render(bp signals.BehaviorProfile, samples []signals.Sample) string {
	var b strings.Builder

	b.WriteString("Analyze the following aggregated, anonymized activity summary of a Reddit account ")
	b.WriteString("and create a UX-style user persona.\n\n")
	b.WriteString("IMPORTANT: do not infer personally identifying information (real names, exact ages, ")
	b.WriteString("specific locations, employers). Use general categories and ranges only.\n\n")

	fmt.Fprintf(&b, "ACCOUNT SUMMARY:\n")
	fmt.Fprintf(&b, "- Label: %s\n", bp.Label)
	fmt.Fprintf(&b, "- Account age: %s\n", bp.AgeBucket)
	fmt.Fprintf(&b, "- Karma level: %s\n", bp.KarmaBucket)
	fmt.Fprintf(&b, "- Posts: %d, comments: %d, average score: %.1f\n", bp.PostCount, bp.CommentCount, bp.AverageScore)
	fmt.Fprintf(&b, "- Posting cadence: %s\n", bp.Cadence())
	fmt.Fprintf(&b, "- Verified: %t, premium: %t\n", bp.Verified, bp.Premium)
	if len(bp.DeclaredPlatforms) > 0 {
		fmt.Fprintf(&b, "- Also active on: %s\n", strings.Join(bp.DeclaredPlatforms, ", "))
	}

	b.WriteString("\nACTIVE COMMUNITIES:\n")
	for _, freq := range bp.TopSubreddits {
		fmt.Fprintf(&b, "- r/%s: %d items\n", freq.Name, freq.Count)
	}

	if len(bp.CategoryTags) > 0 {
		fmt.Fprintf(&b, "\nCONTENT CATEGORIES: %s\n", strings.Join(bp.CategoryTags, ", "))
	}

	if len(samples) > 0 {
		b.WriteString("\nILLUSTRATIVE EXCERPTS (short, representative, highest-scored first):\n")
		for i, sample := range samples {
			fmt.Fprintf(
				&b, "%d. [%s in r/%s, score %d] %s\n",
				i+1, sample.Kind, sample.Subreddit, sample.Score, sample.Excerpt,
			)
		}
	}

	b.WriteString("\nRespond with a single JSON object and nothing else, using this exact structure:\n")
	b.WriteString(schemaBlock)
	return b.String()
}

var schemaBlock = fmt.Sprintf(`{
  "name": "generated persona name (never a real name)",
  "age_range": one of %s,
  "occupation_category": one of %s,
  "status": one of %s,
  "location_type": one of %s,
  "tier": one of %s,
  "archetype": one of %s,
  "traits": ["exactly", "four", "short", "adjectives"],
  "motivations": {%s},
  "dimensions": {%s},
  "habits": ["3-5 observed behaviors"],
  "frustrations": ["3-5 pain points"],
  "goals_needs": ["3-4 objectives"],
  "quote": "a representative quote capturing their communication style"
}
All numeric scores are integers from 0 to 100.`,
	quoteList(persona.AgeRanges),
	quoteList(persona.OccupationCategories),
	quoteList(persona.Statuses),
	quoteList(persona.LocationTypes),
	quoteList(persona.Tiers),
	quoteList(persona.Archetypes),
	scoreKeys(persona.MotivationKeys),
	scoreKeys(persona.DimensionKeys),
)

func quoteList(options []string) string {
	quoted := make([]string, len(options))
	for i, o := range options {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func scoreKeys(keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%q: 0-100", k)
	}
	return strings.Join(parts, ", ")
}
