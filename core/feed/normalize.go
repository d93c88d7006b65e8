// ABOUTME: Post normalizer gives every parsed record the same shape
// ABOUTME: Applies title defaults, self-post links, markup-free URLs and excerpt truncation

package feed

import (
	"strings"

	"community-digest/core/domain"
	htmlutil "community-digest/pkg/utils/html"
)

// normalize converts parser output into domain posts, keeping at most limit
func normalize(raw []rawPost, community string, limit, maxExcerpt int) []domain.Post {
	if limit < 0 {
		limit = 0
	}
	if len(raw) > limit {
		raw = raw[:limit]
	}

	posts := make([]domain.Post, 0, len(raw))
	for _, r := range raw {
		posts = append(posts, normalizePost(r, community, maxExcerpt))
	}
	return posts
}

func normalizePost(r rawPost, community string, maxExcerpt int) domain.Post {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = domain.UntitledPost
	}

	thread := htmlutil.CleanURL(r.ThreadURL)
	link := htmlutil.CleanURL(r.URL)
	if link == "" {
		link = thread
	}

	return domain.Post{
		Community: community,
		Title:     title,
		Score:     r.Score,
		URL:       link,
		ThreadURL: thread,
		Text:      htmlutil.Truncate(strings.TrimSpace(r.Text), maxExcerpt),
	}
}
