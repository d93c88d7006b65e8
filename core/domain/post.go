// ABOUTME: Post domain model represents a single top post fetched from a community
// ABOUTME: Posts are built once per fetch, never mutated, and discarded after curation

package domain

import "strings"

// MaxExcerptLength bounds Post.Text in characters
const MaxExcerptLength = 800

// UntitledPost is used when the source omits a title
const UntitledPost = "Untitled"

// Post is a normalized community post, whichever format it was parsed from
type Post struct {
	// Community is the name of the community the post was fetched from
	Community string

	// Title is the post headline
	Title string

	// Score is the rank score; zero when the source carries no ranking
	Score int

	// URL is the canonical outbound link. Self posts point at the thread.
	URL string

	// ThreadURL is the permanent link to the discussion thread
	ThreadURL string

	// Text is the plain-text body excerpt, at most MaxExcerptLength characters
	Text string
}

// IsSelfPost reports whether the post has no external link of its own
func (p Post) IsSelfPost() bool {
	return p.URL == p.ThreadURL
}

// IsValid checks the invariants every fetched post must hold
func (p Post) IsValid() bool {
	if strings.TrimSpace(p.Title) == "" || p.ThreadURL == "" || p.URL == "" {
		return false
	}
	return len([]rune(p.Text)) <= MaxExcerptLength
}

// WithCommunityTag returns a copy whose title is prefixed with the community name
func (p Post) WithCommunityTag() Post {
	if p.Community == "" {
		return p
	}
	p.Title = "[r/" + p.Community + "] " + p.Title
	return p
}
