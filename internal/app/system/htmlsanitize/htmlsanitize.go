// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Group names, idea text, feature text and comments are plain text. Markup
// is stripped rather than escaped so that clients never receive HTML they
// did not write themselves.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxPasses bounds the strip and decode loop for nested entity escapes.
const maxPasses = 8

// PlainText strips all markup from s, decodes entities and trims surrounding
// whitespace. Text that only becomes markup once decoded, such as
// "&lt;b&gt;", is stripped as well.
func PlainText(s string) string {
	for range maxPasses {
		out := html.UnescapeString(strict.Sanitize(s))
		if out == s {
			break
		}
		s = out
	}
	return strings.TrimSpace(s)
}
