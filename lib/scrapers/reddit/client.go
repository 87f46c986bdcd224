package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"personagen/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"golang.org/x/time/rate"
)

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	rateLimitBackoff time.Duration
}

type ClientOptions struct {
	// defaults to https://www.reddit.com
	BaseUrl string
	// defaults to 30 seconds
	Timeout time.Duration
	// how long to wait before the single retry after a 429,
	// defaults to 2 seconds
	RateLimitBackoff time.Duration
	// outbound request budget, defaults to 1 request per second
	RequestsPerSecond float64
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = "https://www.reddit.com"
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.RateLimitBackoff == 0 {
		opts.RateLimitBackoff = time.Second * 2
	}
	if opts.RequestsPerSecond == 0 {
		// reddit tolerates roughly one unauthenticated request per second
		opts.RequestsPerSecond = 1
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 2)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(client, "scrapers/reddit/http")
	restyInstrument(client)

	return &Client{
		BaseUrl:          baseUrl,
		Http:             client,
		rateLimitBackoff: opts.RateLimitBackoff,
	}, nil
}

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// ExtractUsername accepts a bare handle, a "u/handle" shorthand or any
// reddit profile URL and returns the canonical username.
func ExtractUsername(ref string) (string, error) {
	ref = strings.TrimSpace(ref)

	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "www.") {
		if !strings.Contains(ref, "://") {
			ref = "https://" + ref
		}
		link, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parse profile url: %w", err)
		}
		parts := strings.Split(strings.Trim(link.Path, "/"), "/")
		for i, p := range parts {
			if (p == "user" || p == "u") && i+1 < len(parts) {
				ref = parts[i+1]
				break
			}
		}
	}

	ref = strings.TrimPrefix(ref, "u/")
	if !usernameRegex.MatchString(ref) {
		return "", fmt.Errorf("not a valid reddit username: %q", ref)
	}
	return ref, nil
}

// getJSON performs a GET against a .json endpoint, retrying exactly
// once after a fixed backoff (plus jitter) when reddit rate limits us
// or the request fails transiently. only 404 surfaces immediately.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	body, retryable, err := c.getJSONOnce(ctx, path, query)
	if err == nil || !retryable {
		return body, err
	}

	jitterMs, randErr := random.IntRange(0, 500)
	if randErr != nil {
		jitterMs = 250
	}
	wait := c.rateLimitBackoff + time.Duration(jitterMs)*time.Millisecond

	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return nil, fetchError(NetworkError, "backoff interrupted: %w", ctx.Err())
	}

	body, _, err = c.getJSONOnce(ctx, path, query)
	return body, err
}

func (c *Client) getJSONOnce(ctx context.Context, path string, query url.Values) (body []byte, retryable bool, err error) {
	req := c.Http.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	res, err := req.Get(path)
	if err != nil {
		return nil, true, fetchError(NetworkError, "%s: %w", path, err)
	}

	switch {
	case res.StatusCode() == 404:
		return nil, false, fetchError(NotFound, "%s: %s", path, res.Status())
	case res.StatusCode() == 429:
		return nil, true, fetchError(RateLimited, "%s: %s", path, res.Status())
	case res.IsError():
		return nil, true, fetchError(NetworkError, "%s: %s", path, res.Status())
	}
	return res.Body(), false, nil
}

type aboutEnvelope struct {
	Data struct {
		Name         string  `json:"name"`
		LinkKarma    *int    `json:"link_karma"`
		CommentKarma *int    `json:"comment_karma"`
		TotalKarma   *int    `json:"total_karma"`
		CreatedUtc   float64 `json:"created_utc"`
		Verified     bool    `json:"verified"`
		IsGold       bool    `json:"is_gold"`
		IconImg      string  `json:"icon_img"`
		Subreddit    struct {
			PublicDescription string `json:"public_description"`
			Description       string `json:"description"`
		} `json:"subreddit"`
	} `json:"data"`
}

// GetProfile scrapes a user's about page. structurally missing fields
// are filled with "unknown" sentinels instead of failing the fetch.
func (c *Client) GetProfile(ctx context.Context, username string) (ProfileRecord, error) {
	body, err := c.getJSON(ctx, fmt.Sprintf("/user/%s/about.json", username), nil)
	if err != nil {
		return ProfileRecord{}, err
	}

	var about aboutEnvelope
	if err := json.Unmarshal(body, &about); err != nil {
		return ProfileRecord{}, fetchError(Malformed, "parse about page: %w", err)
	}

	record := ProfileRecord{
		Username:  about.Data.Name,
		Verified:  about.Data.Verified,
		Premium:   about.Data.IsGold,
		AvatarUrl: strings.ReplaceAll(about.Data.IconImg, "&amp;", "&"),
		Bio:       about.Data.Subreddit.PublicDescription,
	}
	if record.Username == "" {
		record.Username = username
	}
	if about.Data.LinkKarma != nil {
		record.PostKarma = *about.Data.LinkKarma
	}
	if about.Data.CommentKarma != nil {
		record.CommentKarma = *about.Data.CommentKarma
	}
	if about.Data.TotalKarma != nil {
		record.TotalKarma = *about.Data.TotalKarma
	} else {
		record.TotalKarma = record.PostKarma + record.CommentKarma
	}
	if about.Data.CreatedUtc > 0 {
		record.Created = time.Unix(int64(about.Data.CreatedUtc), 0).UTC()
	}
	if record.Bio == "" {
		record.Bio = Unknown
	}
	if record.AvatarUrl == "" {
		record.AvatarUrl = Unknown
	}

	bioText := about.Data.Subreddit.Description + " " + about.Data.Subreddit.PublicDescription
	record.SocialLinks = extractSocialLinks(bioText)

	// the html profile page sometimes carries social links the about
	// endpoint does not, but failing to scrape it is not fatal
	htmlLinks, err := c.socialLinksFromProfilePage(ctx, username)
	if err != nil {
		slogWarnProfileHtml(ctx, username, err)
	} else {
		record.SocialLinks = dedupeStrings(append(record.SocialLinks, htmlLinks...))
	}

	return record, nil
}

type listingEnvelope struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type listingItem struct {
	Id         string  `json:"id"`
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Body       string  `json:"body"`
	Subreddit  string  `json:"subreddit"`
	Score      int     `json:"score"`
	CreatedUtc float64 `json:"created_utc"`
}

// pageCursor is the explicit pagination state for one listing feed.
// keeping it as a value makes retry and partial-failure behavior
// inspectable in tests.
type pageCursor struct {
	path      string
	after     string
	exhausted bool
}

func (c *Client) nextPage(ctx context.Context, cursor *pageCursor, pageSize int) ([]ActivityItem, error) {
	query := url.Values{}
	query.Set("limit", fmt.Sprint(pageSize))
	if cursor.after != "" {
		query.Set("after", cursor.after)
	}

	body, err := c.getJSON(ctx, cursor.path, query)
	if err != nil {
		return nil, err
	}

	var listing listingEnvelope
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fetchError(Malformed, "parse listing %s: %w", cursor.path, err)
	}

	var items []ActivityItem
	for _, child := range listing.Data.Children {
		item, ok := parseListingItem(ctx, child.Kind, child.Data)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	next := listing.Data.After
	if next == "" || next == cursor.after || len(listing.Data.Children) == 0 {
		// an empty or non-advancing cursor means the feed has nothing
		// further to offer, whatever the source claims
		cursor.exhausted = true
	}
	cursor.after = next
	return items, nil
}

// GetActivity returns up to `limit` of the user's most recent posts and
// comments, newest first, deduplicated by item id across pages.
func (c *Client) GetActivity(ctx context.Context, username string, limit int) ([]ActivityItem, error) {
	if limit <= 0 {
		return nil, nil
	}

	cursors := []*pageCursor{
		{path: fmt.Sprintf("/user/%s/submitted.json", username)},
		{path: fmt.Sprintf("/user/%s/comments.json", username)},
	}

	var collected []ActivityItem
	seen := map[string]struct{}{}
	var feedErrs []error

	for _, cursor := range cursors {
		remaining := limit
		for !cursor.exhausted && remaining > 0 {
			pageSize := remaining
			if pageSize > 100 {
				pageSize = 100
			}
			page, err := c.nextPage(ctx, cursor, pageSize)
			if err != nil {
				feedErrs = append(feedErrs, err)
				break
			}
			added := 0
			for _, item := range page {
				if _, dup := seen[item.Id]; dup {
					continue
				}
				seen[item.Id] = struct{}{}
				collected = append(collected, item)
				added++
			}
			remaining -= added
			if added == 0 {
				// a page of nothing but duplicates will never satisfy
				// the limit, stop the feed instead of refetching
				break
			}
		}
	}

	if len(collected) == 0 && len(feedErrs) > 0 {
		return nil, feedErrs[0]
	}

	// each feed is newest-first on its own, interleave them
	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].Created.After(collected[j].Created)
	})
	if len(collected) > limit {
		collected = collected[:limit]
	}
	return collected, nil
}

func dedupeStrings(in []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
