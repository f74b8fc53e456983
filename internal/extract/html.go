package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags are elements whose boundaries become newlines when stripping
// HTML, keeping paragraph structure readable in the plain-text output.
var blockTags = map[string]bool{
	"p": true, "br": true, "div": true, "tr": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "table": true, "ul": true, "ol": true,
}

// skipTags are elements whose text content is never user-visible prose.
var skipTags = map[string]bool{
	"script": true, "style": true, "head": true, "title": true,
}

// StripHTML reduces an HTML fragment to best-effort plain text using a real
// tokenizer, so malformed markup degrades instead of corrupting the output.
// It is not a renderer: no tables, no links, no styling.
func StripHTML(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var (
		b    strings.Builder
		skip int
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return collapseBlankLines(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTags[tag] && tt == html.StartTagToken {
				skip++
			}
			if blockTags[tag] {
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTags[tag] && skip > 0 {
				skip--
			}
			if blockTags[tag] {
				b.WriteString("\n")
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// decodeEntities resolves character references like &amp; and &#8217;.
func decodeEntities(s string) string {
	return html.UnescapeString(s)
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var (
		out   []string
		blank bool
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, trimmed)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
