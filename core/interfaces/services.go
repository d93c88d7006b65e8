// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines the curation and delivery collaborators used by the digest runner

package interfaces

import (
	"context"

	"community-digest/core/domain"
)

// PostFetcher retrieves top posts for one community.
// Implementations never fail: every problem degrades to an empty slice.
type PostFetcher interface {
	FetchPosts(ctx context.Context, community string, limit int, window string, maxRetries int) []domain.Post
}

// Curator turns a batch of posts into a curated digest document
type Curator interface {
	Curate(ctx context.Context, posts []domain.Post) (*domain.Digest, error)
}

// Mailer delivers a finished digest
type Mailer interface {
	Send(ctx context.Context, subject, htmlBody string) error
}
