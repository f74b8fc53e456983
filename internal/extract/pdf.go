package extract

import (
	"bytes"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"github.com/callsift/callsift/internal/model"
)

// extractPDF decodes page text in page order, joined by newlines. Pages with
// a null value (seen in partially corrupt files) are skipped rather than
// failing the whole document.
func extractPDF(path string) (*model.ExtractedDocument, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	text, err := pdfText(data)
	if err != nil {
		return nil, fmt.Errorf("extract pdf %s: %w", path, err)
	}
	return &model.ExtractedDocument{Text: text}, nil
}

// pdfText recovers from library panics: ledongthuc/pdf follows its rsc.io
// lineage and panics on corrupt object structure instead of returning an
// error, and a bad file must stay a per-file drop, never a process death.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed pdf structure: %v", r)
		}
	}()
	reader := bytes.NewReader(data)
	doc, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("new pdf reader: %w", err)
	}
	var builder strings.Builder
	total := doc.NumPage()
	for page := 1; page <= total; page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		builder.WriteString(content)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
