package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/callsift/callsift/internal/model"
)

var (
	paraCloseRe = regexp.MustCompile(`</w:p>`)
	tabRe       = regexp.MustCompile(`<w:tab[^>]*/>`)
	brRe        = regexp.MustCompile(`<w:br[^>]*/>`)
	xmlTagRe    = regexp.MustCompile(`<[^>]+>`)
)

// extractDOCX pulls paragraph text out of the WordprocessingML body,
// discarding styling. Paragraph and line-break elements become newlines so
// the output keeps the document's reading order.
func extractDOCX(path string) (*model.ExtractedDocument, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("open docx %s: %w", path, err)
	}
	defer r.Close()
	content := r.Editable().GetContent()
	return &model.ExtractedDocument{Text: wordMLToText(content)}, nil
}

func wordMLToText(content string) string {
	content = paraCloseRe.ReplaceAllString(content, "\n")
	content = brRe.ReplaceAllString(content, "\n")
	content = tabRe.ReplaceAllString(content, "\t")
	content = xmlTagRe.ReplaceAllString(content, "")
	content = decodeEntities(content)
	lines := strings.Split(content, "\n")
	var b strings.Builder
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			continue
		}
		b.WriteString(trimmed)
		b.WriteString("\n")
	}
	return b.String()
}
