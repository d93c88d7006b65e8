// ABOUTME: Primary-format parser extracts posts from the community Atom feed
// ABOUTME: Entries are parsed one at a time so a malformed entry is skipped, not fatal

package feed

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	htmlutil "community-digest/pkg/utils/html"
)

const (
	atomEnvelopeOpen  = `<?xml version="1.0" encoding="UTF-8"?><feed xmlns="http://www.w3.org/2005/Atom" xmlns:media="http://search.yahoo.com/mrss/">`
	atomEnvelopeClose = `</feed>`

	linkMarker     = "[link]"
	commentsMarker = "[comments]"
)

var entryPattern = regexp.MustCompile(`(?s)<entry(?:\s[^>]*)?>.*?</entry>`)

// rawPost is what a parser extracted, before normalization
type rawPost struct {
	Title     string
	Score     int
	URL       string
	ThreadURL string
	Text      string
}

// atomParser reads the feed format. selfHosts are the discussion site's
// own hosts; a [link] anchor pointing at one of them is not external.
type atomParser struct {
	selfHosts []string
}

func newAtomParser(origins ...string) atomParser {
	var hosts []string
	for _, origin := range origins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			hosts = append(hosts, strings.ToLower(u.Hostname()))
		}
	}
	return atomParser{selfHosts: hosts}
}

// parse returns up to limit posts. Entries that fail to parse are skipped.
func (p atomParser) parse(payload []byte, limit int) []rawPost {
	if limit <= 0 {
		return nil
	}

	blocks := entryPattern.FindAll(payload, -1)
	posts := make([]rawPost, 0, min(limit, len(blocks)))
	parser := gofeed.NewParser()

	for _, block := range blocks {
		if len(posts) >= limit {
			break
		}
		post, ok := p.parseEntry(parser, block)
		if !ok {
			continue
		}
		posts = append(posts, post)
	}

	return posts
}

func (p atomParser) parseEntry(parser *gofeed.Parser, block []byte) (rawPost, bool) {
	doc := atomEnvelopeOpen + string(block) + atomEnvelopeClose

	parsed, err := parser.ParseString(doc)
	if err != nil || parsed == nil || len(parsed.Items) == 0 {
		return rawPost{}, false
	}
	item := parsed.Items[0]

	thread := strings.TrimSpace(item.Link)
	if thread == "" && len(item.Links) > 0 {
		thread = strings.TrimSpace(item.Links[0])
	}
	if thread == "" {
		return rawPost{}, false
	}

	post := rawPost{
		Title:     item.Title,
		URL:       thread,
		ThreadURL: thread,
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}
	if content != "" {
		post.URL, post.Text = p.readContent(content, thread)
	}

	return post, true
}

// readContent finds the external [link] target and the plain text of the
// content block. The marker anchors themselves are not part of the text.
func (p atomParser) readContent(content, thread string) (string, string) {
	external := thread

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return external, htmlutil.StripHTML(content)
	}

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		switch strings.TrimSpace(a.Text()) {
		case linkMarker:
			if href, ok := a.Attr("href"); ok && href != "" && !p.isSelfLink(href, thread) {
				external = href
			}
			a.Remove()
		case commentsMarker:
			a.Remove()
		}
	})

	return external, htmlutil.SelectionText(doc.Selection)
}

// isSelfLink reports whether target points back at the discussion site
func (p atomParser) isSelfLink(target, thread string) bool {
	u, err := url.Parse(htmlutil.CleanURL(target))
	if err != nil || u.Host == "" {
		return true
	}
	host := strings.ToLower(u.Hostname())

	hosts := p.selfHosts
	if t, err := url.Parse(thread); err == nil && t.Host != "" {
		hosts = append([]string{strings.ToLower(t.Hostname())}, hosts...)
	}

	for _, self := range hosts {
		if host == self || sameSite(host, self) {
			return true
		}
	}
	return false
}

// sameSite treats www.example.com, old.example.com and example.com as one site
func sameSite(a, b string) bool {
	base := func(h string) string {
		for _, prefix := range []string{"www.", "old.", "new."} {
			if strings.HasPrefix(h, prefix) {
				return strings.TrimPrefix(h, prefix)
			}
		}
		return h
	}
	ab, bb := base(a), base(b)
	return ab == bb || strings.HasSuffix(a, "."+bb) || strings.HasSuffix(b, "."+ab)
}
