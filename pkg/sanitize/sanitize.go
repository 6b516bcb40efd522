// Package sanitize provides the input gates applied before user-supplied
// HTML is rendered or a user-supplied URL is followed.
package sanitize

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the shared allow-list for rich template content: text,
// structural, and table tags, a bounded attribute set, and non-executable
// URL schemes only. bluemonday policies are safe for concurrent use once
// built.
var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"a", "b", "i", "u", "em", "strong", "s", "sub", "sup",
		"p", "br", "hr", "span", "div", "blockquote", "pre", "code",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"img",
		"table", "thead", "tbody", "tfoot", "tr", "td", "th",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt", "title", "class", "style", "width", "height", "align").Globally()
	p.AllowAttrs("target").OnElements("a")

	// Script-executing schemes (javascript:, data:, vbscript:) are excluded
	// by not being listed.
	p.AllowURLSchemes("http", "https", "mailto", "tel")
	p.RequireParseableURLs(true)

	return p
}

// HTML strips the input down to the allow-list. Disallowed tags, attributes,
// and URL schemes are silently removed rather than rejected; the output
// never contains an executable script context. Never errors.
func HTML(input string) string {
	return policy.Sanitize(input)
}

// IsValidURL reports whether the string is an absolute http or https URL.
// Protocol-relative forms ("//host/path") are rejected explicitly even
// though they would resolve against a base URL. Malformed input is invalid,
// never an error.
func IsValidURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "//") {
		return false
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}
