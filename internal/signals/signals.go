// Package signals reduces a raw profile scrape into the privacy-safe
// aggregate handed to the persona generator. everything here is pure:
// the same profile and activity always produce the same output.
package signals

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"personagen/lib/scrapers/reddit"
	"personagen/lib/textutil"
)

const (
	// how many subreddits to keep in the frequency ranking
	topSubredditCount = 10
	// how many illustrative excerpts to carry forward
	maxSamples = 8
	// rune cap per excerpt
	maxExcerptLen = 280
)

type SubredditFreq struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Sample struct {
	Kind      reddit.ItemKind `json:"kind"`
	Subreddit string          `json:"subreddit"`
	Score     int             `json:"score"`
	Excerpt   string          `json:"excerpt"`
}

// BehaviorProfile is the derived view of an account. no exact
// timestamps, no activity permalinks and no long-form text survive
// into this structure; the only verbatim carry-over is the profile's
// own declared social links.
type BehaviorProfile struct {
	Label       string `json:"label"`
	AgeBucket   string `json:"age_bucket"`
	KarmaBucket string `json:"karma_bucket"`
	Verified    bool   `json:"verified"`
	Premium     bool   `json:"premium"`

	// full profile urls, carried for the rendered output only. the
	// prompt sees DeclaredPlatforms, never these.
	SocialLinks       []string `json:"social_links"`
	DeclaredPlatforms []string `json:"declared_platforms"`

	PostCount     int             `json:"post_count"`
	CommentCount  int             `json:"comment_count"`
	AverageScore  float64         `json:"average_score"`
	CadencePerDay float64         `json:"cadence_per_day"`
	CadenceKnown  bool            `json:"cadence_known"`
	TopSubreddits []SubredditFreq `json:"top_subreddits"`
	CategoryTags  []string        `json:"category_tags"`
	Samples       []Sample        `json:"samples"`
}

// Cadence renders the posting cadence, falling back to a sentinel when
// the activity sample was too small to divide over.
func (b BehaviorProfile) Cadence() string {
	if !b.CadenceKnown {
		return "insufficient data"
	}
	return fmt.Sprintf("%.1f items/day", b.CadencePerDay)
}

// Aggregate derives a BehaviorProfile from one profile scrape and its
// activity sample. `now` is passed explicitly so the age bucketing is
// reproducible. the only failure mode is a structurally invalid input,
// which indicates a bug in the caller, not a runtime condition.
func Aggregate(profile reddit.ProfileRecord, items []reddit.ActivityItem, now time.Time) (BehaviorProfile, error) {
	if profile.Username == "" {
		return BehaviorProfile{}, fmt.Errorf("profile record has no username")
	}

	bp := BehaviorProfile{
		Label:             profile.Username,
		AgeBucket:         ageBucket(profile.Created, now),
		KarmaBucket:       karmaBucket(profile.TotalKarma),
		Verified:          profile.Verified,
		Premium:           profile.Premium,
		SocialLinks:       append([]string(nil), profile.SocialLinks...),
		DeclaredPlatforms: declaredPlatforms(profile.SocialLinks),
		TopSubreddits:     topSubreddits(items, topSubredditCount),
		CategoryTags:      categoryTags(items),
		Samples:           sampleExcerpts(items, maxSamples),
	}

	var scoreTotal int
	for _, item := range items {
		switch item.Kind {
		case reddit.KindPost:
			bp.PostCount++
		case reddit.KindComment:
			bp.CommentCount++
		}
		scoreTotal += item.Score
	}
	if len(items) > 0 {
		bp.AverageScore = float64(scoreTotal) / float64(len(items))
	}

	bp.CadencePerDay, bp.CadenceKnown = cadence(items)
	return bp, nil
}

// declaredPlatforms reduces social links to their bare platform
// domains, first-seen order, deduplicated. handles never leave the
// link list.
func declaredPlatforms(links []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, link := range links {
		parsed, err := url.Parse(link)
		if err != nil || parsed.Hostname() == "" {
			continue
		}
		domain := strings.TrimPrefix(parsed.Hostname(), "www.")
		if _, dup := seen[domain]; dup {
			continue
		}
		seen[domain] = struct{}{}
		out = append(out, domain)
	}
	return out
}

// fixed age bucket boundaries, deliberately not configurable
func ageBucket(created, now time.Time) string {
	if created.IsZero() || created.After(now) {
		return "Unknown"
	}
	days := int(now.Sub(created).Hours() / 24)
	switch {
	case days < 365:
		return "<1y"
	case days < 3*365:
		return "1-3y"
	case days < 7*365:
		return "3-7y"
	}
	return "7y+"
}

func karmaBucket(total int) string {
	switch {
	case total < 1_000:
		return "minimal"
	case total < 10_000:
		return "moderate"
	case total < 100_000:
		return "high"
	}
	return "very high"
}

// topSubreddits counts activity per subreddit and ranks by count
// descending. ties break by first-seen order so the ranking is stable
// for identical input.
func topSubreddits(items []reddit.ActivityItem, k int) []SubredditFreq {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	for i, item := range items {
		if _, seen := counts[item.Subreddit]; !seen {
			firstSeen[item.Subreddit] = i
		}
		counts[item.Subreddit]++
	}

	freqs := make([]SubredditFreq, 0, len(counts))
	for name, count := range counts {
		freqs = append(freqs, SubredditFreq{Name: name, Count: count})
	}
	sort.SliceStable(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return firstSeen[freqs[i].Name] < firstSeen[freqs[j].Name]
	})

	if len(freqs) > k {
		freqs = freqs[:k]
	}
	return freqs
}

// cadence is items/day over the span between the oldest and newest
// item. a single item or an all-same-timestamp sample has no span to
// divide over, which is reported via the second return value.
func cadence(items []reddit.ActivityItem) (float64, bool) {
	if len(items) < 2 {
		return 0, false
	}

	oldest := items[0].Created
	newest := items[0].Created
	for _, item := range items[1:] {
		if item.Created.Before(oldest) {
			oldest = item.Created
		}
		if item.Created.After(newest) {
			newest = item.Created
		}
	}

	spanDays := newest.Sub(oldest).Hours() / 24
	if spanDays <= 0 {
		return 0, false
	}
	return float64(len(items)) / spanDays, true
}

// keyword table for content category tagging. matching is plain
// substring search over lowercased subreddit names and text bodies so
// the tagging stays deterministic.
var categoryKeywords = []struct {
	Tag      string
	Keywords []string
}{
	{"technology", []string{"programming", "tech", "software", "linux", "python", "javascript", "golang", "webdev", "computer", "coding"}},
	{"gaming", []string{"gaming", "games", "minecraft", "playstation", "xbox", "nintendo", "steam", "rpg"}},
	{"finance", []string{"investing", "stocks", "crypto", "finance", "wallstreetbets", "money", "bitcoin"}},
	{"fitness", []string{"fitness", "gym", "running", "lifting", "workout", "bodybuilding"}},
	{"music", []string{"music", "guitar", "hiphop", "metal", "vinyl", "synthesizer"}},
	{"politics", []string{"politics", "political", "election", "policy"}},
	{"science", []string{"science", "physics", "biology", "chemistry", "space", "astronomy"}},
	{"food", []string{"cooking", "food", "recipes", "baking", "coffee"}},
	{"travel", []string{"travel", "backpacking", "solotravel", "digitalnomad"}},
	{"sports", []string{"soccer", "football", "basketball", "baseball", "hockey", "formula1", "nba", "nfl"}},
}

func categoryTags(items []reddit.ActivityItem) []string {
	var corpus strings.Builder
	for _, item := range items {
		corpus.WriteString(strings.ToLower(item.Subreddit))
		corpus.WriteByte(' ')
		corpus.WriteString(strings.ToLower(item.Title))
		corpus.WriteByte(' ')
		corpus.WriteString(strings.ToLower(item.Body))
		corpus.WriteByte(' ')
	}
	text := corpus.String()

	type hit struct {
		tag   string
		count int
	}
	var hits []hit
	for _, category := range categoryKeywords {
		count := 0
		for _, kw := range category.Keywords {
			count += strings.Count(text, kw)
		}
		if count > 0 {
			hits = append(hits, hit{tag: category.Tag, count: count})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].count != hits[j].count {
			return hits[i].count > hits[j].count
		}
		return hits[i].tag < hits[j].tag
	})

	tags := make([]string, len(hits))
	for i, h := range hits {
		tags[i] = h.tag
	}
	return tags
}

// sampleExcerpts keeps short, whitespace-collapsed excerpts of the
// highest-scoring items as generation context. ties break by encounter
// order.
func sampleExcerpts(items []reddit.ActivityItem, max int) []Sample {
	indexed := make([]int, 0, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.Body) == "" && strings.TrimSpace(item.Title) == "" {
			continue
		}
		indexed = append(indexed, i)
	}
	sort.SliceStable(indexed, func(a, b int) bool {
		return items[indexed[a]].Score > items[indexed[b]].Score
	})
	if len(indexed) > max {
		indexed = indexed[:max]
	}

	samples := make([]Sample, 0, len(indexed))
	for _, i := range indexed {
		item := items[i]
		text := item.Title
		if item.Body != "" {
			if text != "" {
				text += ": "
			}
			text += item.Body
		}
		samples = append(samples, Sample{
			Kind:      item.Kind,
			Subreddit: item.Subreddit,
			Score:     item.Score,
			Excerpt:   textutil.Excerpt(textutil.CollapseWhitespace(text), maxExcerptLen),
		})
	}
	return samples
}
