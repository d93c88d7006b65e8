// ABOUTME: Cleans model output into a safe HTML body
// ABOUTME: Strips code fences, renders Markdown when needed and sanitizes the result

package curate

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	sanitizer = newSanitizer()

	// the style attribute is checked against this before bluemonday sees it
	inlineStyle = regexp.MustCompile(`^[a-zA-Z0-9\s:;#%.,()'"-]*$`)
)

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("style").Matching(inlineStyle).OnElements("div", "p", "h1", "h2", "h3", "h4", "span", "a")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

// StripFences removes Markdown code fences the model may wrap around its answer
func StripFences(output string) string {
	output = strings.ReplaceAll(output, "```html", "")
	output = strings.ReplaceAll(output, "```", "")
	return strings.TrimSpace(output)
}

// RenderHTML turns cleaned model output into sanitized HTML. Output that does
// not start with a tag is treated as Markdown.
func RenderHTML(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}

	source := body
	if !strings.HasPrefix(body, "<") {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(body), &buf); err == nil {
			source = buf.String()
		}
	}

	return strings.TrimSpace(sanitizer.Sanitize(source))
}
