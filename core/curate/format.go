// ABOUTME: Formats fetched posts into the plain-text block handed to the language model
// ABOUTME: One numbered item per post with its article link, discussion link and optional snippet

package curate

import (
	"strconv"
	"strings"

	"community-digest/core/domain"
)

const itemSeparator = "------------------------------"

// FormatPosts renders posts as numbered items for the model prompt
func FormatPosts(posts []domain.Post) string {
	var b strings.Builder
	for i, post := range posts {
		b.WriteString("ITEM #" + strconv.Itoa(i+1) + ": " + post.Title + "\n")
		b.WriteString("SOURCE URL (Article/Link): " + post.URL + "\n")
		b.WriteString("REDDIT THREAD (Comments): " + post.ThreadURL + "\n")
		if post.Text != "" {
			b.WriteString("TEXT SNIPPET: " + post.Text + "\n")
		}
		b.WriteString(itemSeparator + "\n")
	}
	return b.String()
}
