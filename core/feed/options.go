// ABOUTME: Endpoint templates and tunables for the community fetch pipeline
// ABOUTME: Everything the retry controller needs is injected here rather than read from globals

package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"community-digest/core/domain"
)

const (
	// DefaultOrigin serves both the feed and the JSON listing
	DefaultOrigin = "https://www.reddit.com"

	// DefaultAlternateOrigin serves the same feed shape from another host
	DefaultAlternateOrigin = "https://old.reddit.com"

	// DefaultTimeout bounds a single HTTP attempt
	DefaultTimeout = 15 * time.Second

	// DefaultMaxRetries is the attempt budget on the primary endpoint
	DefaultMaxRetries = 3

	// DefaultWindow is used when the caller passes no time window
	DefaultWindow = "week"

	// FeedAccept is sent on feed requests
	FeedAccept = "application/rss+xml, application/xml, text/xml, */*"

	// ListingAccept is sent on JSON listing requests
	ListingAccept = "application/json"
)

// ValidWindows lists the ranking periods the upstream understands
var ValidWindows = []string{"hour", "day", "week", "month", "year", "all"}

// IsValidWindow reports whether window is a known ranking period
func IsValidWindow(window string) bool {
	for _, w := range ValidWindows {
		if w == window {
			return true
		}
	}
	return false
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures a Service
type Options struct {
	// Origin is the primary site origin, also used to build thread links
	Origin string

	// AlternateOrigin is tried once when the primary feed answers 403
	AlternateOrigin string

	// MaxExcerpt bounds Post.Text in characters
	MaxExcerpt int

	// Sleep performs backoff waits. Tests replace it to record waits.
	Sleep SleepFunc
}

// DefaultOptions returns the production settings
func DefaultOptions() Options {
	return Options{
		Origin:          DefaultOrigin,
		AlternateOrigin: DefaultAlternateOrigin,
		MaxExcerpt:      domain.MaxExcerptLength,
		Sleep:           sleepContext,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Origin == "" {
		o.Origin = def.Origin
	}
	if o.AlternateOrigin == "" {
		o.AlternateOrigin = def.AlternateOrigin
	}
	if o.MaxExcerpt <= 0 || o.MaxExcerpt > domain.MaxExcerptLength {
		o.MaxExcerpt = def.MaxExcerpt
	}
	if o.Sleep == nil {
		o.Sleep = def.Sleep
	}
	o.Origin = strings.TrimSuffix(o.Origin, "/")
	o.AlternateOrigin = strings.TrimSuffix(o.AlternateOrigin, "/")
	return o
}

// Format identifies the payload shape an endpoint serves
type Format int

const (
	// FormatFeed is the Atom feed
	FormatFeed Format = iota

	// FormatListing is the JSON listing
	FormatListing
)

// String returns the format name used in logs
func (f Format) String() string {
	if f == FormatListing {
		return "json"
	}
	return "feed"
}

// Endpoint is one concrete upstream request
type Endpoint struct {
	Name    string
	URL     string
	Format  Format
	Headers map[string]string
}

func feedEndpoint(name, origin, community, window string, limit int) Endpoint {
	return Endpoint{
		Name:    name,
		URL:     fmt.Sprintf("%s/r/%s/top/.rss?t=%s&limit=%d", origin, url.PathEscape(community), url.QueryEscape(window), limit),
		Format:  FormatFeed,
		Headers: map[string]string{"Accept": FeedAccept},
	}
}

func listingEndpoint(origin, community, window string, limit int) Endpoint {
	return Endpoint{
		Name:    "json",
		URL:     fmt.Sprintf("%s/r/%s/top.json?t=%s&limit=%d", origin, url.PathEscape(community), url.QueryEscape(window), limit),
		Format:  FormatListing,
		Headers: map[string]string{"Accept": ListingAccept},
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
