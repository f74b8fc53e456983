package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	src := `<html><head><title>ignored</title><style>p{color:red}</style></head>
<body><p>Hello <b>world</b></p><p>Second &amp; last</p>
<script>alert("nope")</script></body></html>`
	got := StripHTML(src)
	assert.Contains(t, got, "Hello world")
	assert.Contains(t, got, "Second & last")
	assert.NotContains(t, got, "ignored")
	assert.NotContains(t, got, "alert")
	assert.NotContains(t, got, "color:red")
}

func TestStripHTMLMalformed(t *testing.T) {
	// Unclosed tags degrade, they do not corrupt output.
	got := StripHTML("<div><p>still <b>readable")
	assert.Contains(t, got, "still readable")
}

func TestWordMLToText(t *testing.T) {
	ml := `<w:p><w:r><w:t>First paragraph</w:t></w:r></w:p><w:p><w:r><w:t>Second</w:t><w:tab/><w:t>column</w:t></w:r></w:p>`
	got := wordMLToText(ml)
	assert.Contains(t, got, "First paragraph\n")
	assert.Contains(t, got, "Second\tcolumn")
}
