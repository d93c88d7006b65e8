// ABOUTME: Fallback-format parser extracts posts from the JSON listing
// ABOUTME: Missing or mistyped fields default to zero values and never fail a record

package feed

import (
	"encoding/json"

	htmlutil "community-digest/pkg/utils/html"
	"community-digest/pkg/utils/parse"
)

type listingEnvelope struct {
	Data struct {
		Children []json.RawMessage `json:"children"`
	} `json:"data"`
}

type listingChild struct {
	Data json.RawMessage `json:"data"`
}

type listingPost struct {
	Title     looseString `json:"title"`
	Score     looseInt    `json:"score"`
	URL       looseString `json:"url"`
	Permalink looseString `json:"permalink"`
	Selftext  looseString `json:"selftext"`
}

// listingParser reads the JSON listing. origin prefixes permalinks.
type listingParser struct {
	origin string
}

// parse returns the first limit records in payload order. A payload that is
// not a listing yields no records.
func (p listingParser) parse(payload []byte, limit int) []rawPost {
	if limit <= 0 {
		return nil
	}

	var envelope listingEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil
	}

	children := envelope.Data.Children
	if len(children) > limit {
		children = children[:limit]
	}

	posts := make([]rawPost, 0, len(children))
	for _, raw := range children {
		var child listingChild
		if err := json.Unmarshal(raw, &child); err != nil {
			continue
		}

		var data listingPost
		if len(child.Data) > 0 {
			// fields decode leniently; a non-object data keeps every default
			_ = json.Unmarshal(child.Data, &data)
		}

		posts = append(posts, rawPost{
			Title:     htmlutil.DecodeEntities(string(data.Title)),
			Score:     int(data.Score),
			URL:       string(data.URL),
			ThreadURL: p.origin + string(data.Permalink),
			Text:      htmlutil.DecodeEntities(string(data.Selftext)),
		})
	}

	return posts
}

// looseString accepts any JSON value and keeps it only if it is a string
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err == nil {
		*s = looseString(v)
	}
	return nil
}

// looseInt accepts JSON numbers and numeric strings; anything else is zero
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	if v, ok := parse.Int(string(b)); ok {
		*n = looseInt(v)
	}
	return nil
}
