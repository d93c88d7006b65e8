// ABOUTME: HTML utilities for stripping tags and decoding entities
// ABOUTME: Provides common HTML processing functions used across the application

package html

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
)

// blockSelector lists elements whose boundaries should read as whitespace
const blockSelector = "br, p, div, li, tr, td, th, table, blockquote, pre, h1, h2, h3, h4, h5, h6"

// StripHTML removes HTML tags and decodes entities from a string.
// Script and style content is dropped and whitespace is collapsed.
func StripHTML(html string) string {
	if !strings.Contains(html, "<") {
		return collapseSpace(DecodeEntities(html))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapseSpace(DecodeEntities(html))
	}

	return SelectionText(doc.Selection)
}

// SelectionText returns the collapsed plain text of an already parsed selection
func SelectionText(sel *goquery.Selection) string {
	sel.Find("script, style").Remove()
	sel.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})
	return collapseSpace(sel.Text())
}

// DecodeEntities decodes HTML entities, named and numeric
func DecodeEntities(text string) string {
	return xhtml.UnescapeString(text)
}

// CleanURL returns a link free of markup: entities decoded, tags and
// surrounding whitespace removed
func CleanURL(raw string) string {
	u := DecodeEntities(strings.TrimSpace(raw))
	for {
		start := strings.Index(u, "<")
		if start < 0 {
			break
		}
		end := strings.Index(u[start:], ">")
		if end < 0 {
			u = u[:start]
			break
		}
		u = u[:start] + u[start+end+1:]
	}
	return strings.TrimSpace(u)
}

// Truncate cuts s to at most max characters without splitting a rune
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
