package utils

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

const Bullet = "•"

var (
	lineBreakTag    = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockCloseTag   = regexp.MustCompile(`(?i)</(p|div|ul|ol|li|h[1-6])\s*>`)
	listItemOpenTag = regexp.MustCompile(`(?i)<li(\s[^>]*)?>`)
	anyTag          = regexp.MustCompile(`<[^>]*>`)
	extraNewlines   = regexp.MustCompile(`\n{3,}`)
	trailingSpace   = regexp.MustCompile(`[ \t]+\n`)
)

// HTMLToPlainText turns the simple markup produced by the post editor into
// text a platform will render as-is.
func HTMLToPlainText(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = lineBreakTag.ReplaceAllString(s, "\n")
	s = blockCloseTag.ReplaceAllString(s, "\n")
	s = listItemOpenTag.ReplaceAllString(s, Bullet+" ")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = extraNewlines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// IsHTTPURL reports whether raw is an absolute http(s) URL. Inline data URLs are rejected.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// FilterHTTPURLs keeps the absolute http(s) URLs, in order.
func FilterHTTPURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if IsHTTPURL(u) {
			out = append(out, strings.TrimSpace(u))
		}
	}
	return out
}
