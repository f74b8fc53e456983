// Package extract turns raw files into normalized documents. Dispatch is
// keyed by extension; every branch returns the text plus whatever
// duration/date/context hints the format encodes.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/callsift/callsift/internal/model"
)

// ErrUnsupported is returned for extensions outside the dispatch table.
var ErrUnsupported = errors.New("unsupported file extension")

// ErrEmptyContent is returned when extraction yields no usable text. The
// pipeline drops such files so zero-byte exports never become records.
var ErrEmptyContent = errors.New("document contains no extractable text")

// textExts are the formats handled by the transcript-shape text parser.
var textExts = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
}

// Extract reads the file at path and produces a normalized document. The
// .eml extension is deliberately absent here: email decomposition is driven
// by the pipeline, which routes each attachment back through this function.
func Extract(ctx context.Context, path string) (*model.ExtractedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var (
		doc *model.ExtractedDocument
		err error
	)
	switch {
	case textExts[ext]:
		doc, err = extractPlainText(path)
	case ext == ".json":
		doc, err = extractJSON(path)
	case ext == ".srt":
		doc, err = extractSRT(path)
	case ext == ".pdf":
		doc, err = extractPDF(path)
	case ext == ".docx":
		doc, err = extractDOCX(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyContent)
	}
	doc.SourcePath = path
	doc.Filename = filepath.Base(path)
	return doc, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
