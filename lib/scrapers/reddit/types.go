package reddit

import (
	"fmt"
	"time"
)

// the "unknown" sentinel used for string fields the source failed to
// provide. partial profiles are preferred over failed fetches.
const Unknown = "unknown"

type ItemKind string

const (
	KindPost    ItemKind = "post"
	KindComment ItemKind = "comment"
)

// ProfileRecord is the raw scrape of a user's about page. it is
// produced once per fetch and never mutated afterwards.
type ProfileRecord struct {
	Username     string
	PostKarma    int
	CommentKarma int
	TotalKarma   int
	Created      time.Time
	Bio          string
	SocialLinks  []string
	Verified     bool
	Premium      bool
	AvatarUrl    string
}

// ActivityItem is a single post or comment. items come back
// most-recent-first, bounded by the requested limit.
type ActivityItem struct {
	Id        string
	Kind      ItemKind
	Subreddit string
	Title     string
	Body      string
	Score     int
	Created   time.Time
}

type FetchErrorKind int

const (
	NotFound FetchErrorKind = iota
	RateLimited
	Malformed
	NetworkError
)

func (k FetchErrorKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case RateLimited:
		return "rate_limited"
	case Malformed:
		return "malformed"
	case NetworkError:
		return "network_error"
	}
	return "unknown"
}

type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch failed: %s", e.Kind)
	}
	return fmt.Sprintf("fetch failed: %s: %s", e.Kind, e.Err.Error())
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func fetchError(kind FetchErrorKind, format string, args ...any) *FetchError {
	return &FetchError{Kind: kind, Err: fmt.Errorf(format, args...)}
}
