// Package core contains the business logic for the community digest.
// It is designed to be framework-agnostic: every external concern reaches it
// through the interfaces package.
//
// The core package is organized into several sub-packages:
//
// - domain: Pure domain models (Post, Digest)
// - feed: Top-post fetch pipeline with source switching and retry/backoff
// - curate: Model-backed curation of posts into an HTML digest
// - digest: Batch runner that fetches, curates, saves and delivers
// - errors: Custom error types, including fetch failure classification
// - interfaces: Contracts for external dependencies (HTTP, logger, mail)
//
// # Usage Example
//
//	import (
//	    "community-digest/core/feed"
//	    "community-digest/core/interfaces"
//	)
//
//	deps := interfaces.Dependencies{
//	    HTTPClient: myHTTPClient, // implements interfaces.HTTPClient
//	    Logger:     myLogger,     // implements interfaces.Logger
//	}
//
//	fetcher := feed.NewService(deps, feed.DefaultOptions())
//
//	// never fails; an unreachable community yields an empty slice
//	posts := fetcher.FetchPosts(ctx, "golang", 5, "week", 3)
package core
