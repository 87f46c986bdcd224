package reddit

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"personagen/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var socialDomains = []string{
	"twitter.com", "x.com", "instagram.com", "facebook.com",
	"linkedin.com", "youtube.com", "twitch.tv", "github.com",
	"discord.gg", "tiktok.com", "snapchat.com", "telegram.me",
	"t.me", "medium.com", "dev.to", "stackoverflow.com",
}

var socialLinkRegex = regexp.MustCompile(
	`https?://(?:www\.)?(?:` +
		`(?:twitter\.com|x\.com)/\w+` +
		`|instagram\.com/\w+` +
		`|facebook\.com/\w+` +
		`|linkedin\.com/in/[\w-]+` +
		`|youtube\.com/(?:channel/|user/|c/|@)?[\w-]+` +
		`|twitch\.tv/\w+` +
		`|github\.com/\w+` +
		`|discord\.gg/\w+` +
		`|tiktok\.com/@[\w.]+` +
		`|snapchat\.com/add/\w+` +
		`|(?:t\.me|telegram\.me)/\w+` +
		`|medium\.com/@\w+` +
		`|dev\.to/\w+` +
		`|stackoverflow\.com/users/\d+/[\w-]+` +
		`)`,
)

// extractSocialLinks pulls social profile links out of free text (bio,
// profile description).
func extractSocialLinks(text string) []string {
	return dedupeStrings(socialLinkRegex.FindAllString(text, -1))
}

// socialLinksFromProfilePage scrapes the html profile page for anchors
// pointing at known social platforms.
func (c *Client) socialLinksFromProfilePage(ctx context.Context, username string) ([]string, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/user/%s/", username))
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("profile page: %s", res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse profile page: %w", err)
	}

	var links []string
	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Find("a[href]")) {
		if !strings.HasPrefix(anchor.Href, "http") {
			continue
		}
		for _, domain := range socialDomains {
			if strings.Contains(anchor.Href, domain) {
				links = append(links, anchor.Href)
				break
			}
		}
	}
	return dedupeStrings(links), nil
}
