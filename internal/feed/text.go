package feed

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// maxCleanPasses bounds how many layers of entity-encoded markup are peeled.
const maxCleanPasses = 4

// CleanText strips markup from free text and decodes entities so the XML and
// CSV encoders escape each character exactly once. Markup that only appears
// after decoding, such as "&lt;b&gt;", is stripped as well.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	for i := 0; i < maxCleanPasses; i++ {
		cleaned := html.UnescapeString(strictPolicy.Sanitize(s))
		if cleaned == s {
			break
		}
		s = cleaned
	}
	return strings.TrimSpace(s)
}
