package reddit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// parseListingItem turns one listing child into an ActivityItem.
// malformed children are skipped (logged, not fatal).
func parseListingItem(ctx context.Context, kind string, data json.RawMessage) (ActivityItem, bool) {
	var raw listingItem
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.WarnContext(ctx, "skipping malformed listing item", "err", err)
		return ActivityItem{}, false
	}

	item := ActivityItem{
		Subreddit: raw.Subreddit,
		Score:     raw.Score,
	}

	// prefer the fullname (e.g. "t1_abc") since it is unique across
	// the post and comment feeds
	item.Id = raw.Name
	if item.Id == "" {
		item.Id = raw.Id
	}
	if item.Id == "" || item.Subreddit == "" {
		slog.WarnContext(
			ctx, "skipping listing item with missing identity",
			"id", item.Id,
			"subreddit", item.Subreddit,
		)
		return ActivityItem{}, false
	}

	switch kind {
	case "t3":
		item.Kind = KindPost
		item.Title = raw.Title
		item.Body = raw.Selftext
	case "t1":
		item.Kind = KindComment
		item.Body = raw.Body
	default:
		slog.WarnContext(ctx, "skipping listing item of unexpected kind", "kind", kind)
		return ActivityItem{}, false
	}

	if raw.CreatedUtc > 0 {
		item.Created = time.Unix(int64(raw.CreatedUtc), 0).UTC()
	}
	return item, true
}

func slogWarnProfileHtml(ctx context.Context, username string, err error) {
	slog.WarnContext(
		ctx, "could not scrape html profile page",
		"username", username,
		"err", err,
	)
}
