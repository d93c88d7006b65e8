// ABOUTME: Digest domain model is the curated document produced from a batch of posts
// ABOUTME: Holds both the raw model output and the HTML body used for delivery

package domain

import "time"

// Digest is a curated newsletter document
type Digest struct {
	// Body is the cleaned model output as written to disk
	Body string

	// HTML is the sanitized HTML rendition used for email delivery
	HTML string

	// Model is the model that produced the digest
	Model string

	// PostCount is the number of posts submitted for curation
	PostCount int

	// GeneratedAt is when the digest was produced
	GeneratedAt time.Time
}
