package domain

import (
	"html"
	"regexp"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// PreviewLength is the number of characters kept from the tag-stripped content.
	PreviewLength = 150
	// PreviewEllipsis is always appended, even to short previews.
	PreviewEllipsis = "..."

	// DefaultTitleLayout renders as "March 5, 2024 09:07".
	DefaultTitleLayout = "January 2, 2006 15:04"
)

// Matches anything that looks like a tag, including an unterminated one at the end.
var tagPattern = regexp.MustCompile(`<[^>]*>?`)

var contentPolicy = newContentPolicy()

func newContentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// Code blocks keep their highlighting hint.
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w-]+$`)).OnElements("code", "pre")
	return p
}

// Preview strips markup from content, decodes character references
// (sanitized content stores ' as &#39;) and keeps the first PreviewLength
// characters followed by PreviewEllipsis.
func Preview(content string) string {
	text := []rune(html.UnescapeString(tagPattern.ReplaceAllString(content, "")))
	if len(text) > PreviewLength {
		text = text[:PreviewLength]
	}
	return string(text) + PreviewEllipsis
}

// SanitizeContent removes scripts, event handlers and any markup the
// editor cannot produce.
func SanitizeContent(content string) string {
	return contentPolicy.Sanitize(content)
}

// DefaultTitle is the title given to entries created without one.
func DefaultTitle(t time.Time) string {
	return t.Format(DefaultTitleLayout)
}
