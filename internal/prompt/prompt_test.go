package prompt

import (
	"strings"
	"testing"

	"personagen/internal/signals"
	"personagen/lib/scrapers/reddit"

	"github.com/stretchr/testify/require"
)

func testProfile() signals.BehaviorProfile {
	return signals.BehaviorProfile{
		Label:             "testuser",
		AgeBucket:         "1-3y",
		KarmaBucket:       "moderate",
		PostCount:         4,
		CommentCount:      20,
		AverageScore:      7.5,
		CadencePerDay:     1.2,
		CadenceKnown:      true,
		Verified:          true,
		SocialLinks:       []string{"https://github.com/testuser"},
		DeclaredPlatforms: []string{"github.com"},
		TopSubreddits: []signals.SubredditFreq{
			{Name: "golang", Count: 12},
			{Name: "cooking", Count: 5},
		},
		CategoryTags: []string{"technology", "food"},
		Samples: []signals.Sample{
			{Kind: reddit.KindPost, Subreddit: "golang", Score: 40, Excerpt: "goroutine leak in my worker pool"},
			{Kind: reddit.KindComment, Subreddit: "cooking", Score: 12, Excerpt: "salt the pasta water"},
		},
	}
}

func TestBuildRequiresLabel(t *testing.T) {
	_, err := Build(signals.BehaviorProfile{})
	require.Error(t, err)
}

func TestBuildContent(t *testing.T) {
	payload, err := Build(testProfile())
	require.NoError(t, err)

	require.Contains(t, payload.Text, "testuser")
	require.Contains(t, payload.Text, "1-3y")
	require.Contains(t, payload.Text, "moderate")
	require.Contains(t, payload.Text, "1.2 items/day")
	require.Contains(t, payload.Text, "r/golang: 12 items")
	require.Contains(t, payload.Text, "technology, food")
	require.Contains(t, payload.Text, "Also active on: github.com")
	require.Contains(t, payload.Text, "goroutine leak in my worker pool")

	// the response schema with its closed vocabularies rides along
	require.Contains(t, payload.Text, `"age_range"`)
	require.Contains(t, payload.Text, `"archetype"`)
	require.Contains(t, payload.Text, "0 to 100")
}

func TestBuildExcludesRawIdentifiers(t *testing.T) {
	payload, err := Build(testProfile())
	require.NoError(t, err)

	// only aggregated fields appear, never urls or timestamps. the
	// profile's social links are reduced to bare platform domains
	require.NotContains(t, payload.Text, "reddit.com/")
	require.NotContains(t, payload.Text, "http")
	require.NotContains(t, payload.Text, "github.com/testuser")
	require.NotContains(t, payload.Text, "2024-")
}

func TestBuildEnforcesCeiling(t *testing.T) {
	bp := testProfile()
	bp.Samples = nil
	for i := 0; i < 200; i++ {
		bp.Samples = append(bp.Samples, signals.Sample{
			Kind:      reddit.KindComment,
			Subreddit: "golang",
			Score:     200 - i,
			Excerpt:   strings.Repeat("x", 270),
		})
	}

	payload, err := Build(bp)
	require.NoError(t, err)
	require.LessOrEqual(t, len(payload.Text), MaxPayloadBytes)

	// the highest-scored excerpt survives trimming
	require.Contains(t, payload.Text, "1. [comment in r/golang, score 200]")
}

func TestBuildEmptyActivity(t *testing.T) {
	bp := signals.BehaviorProfile{Label: "quietuser", AgeBucket: "Unknown", KarmaBucket: "minimal"}

	payload, err := Build(bp)
	require.NoError(t, err)
	require.Contains(t, payload.Text, "insufficient data")
	require.NotContains(t, payload.Text, "ILLUSTRATIVE EXCERPTS")
}
