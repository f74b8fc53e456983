package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// corruptPDF builds a file that passes the header/trailer checks but whose
// xref entry points at a garbage object, the shape of corruption that makes
// the pdf library panic during page traversal rather than fail NewReader.
func corruptPDF() []byte {
	body := "%PDF-1.4\n1 0 obj\ngarbage garbage\nendobj\n"
	xref := fmt.Sprintf("xref\n0 2\n0000000000 65535 f \n%010d 00000 n \n", strings.Index(body, "1 0 obj"))
	trailer := fmt.Sprintf("trailer\n<< /Size 2 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(body))
	return []byte(body + xref + trailer)
}

func TestExtractCorruptPDFStructure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.pdf")
	require.NoError(t, os.WriteFile(path, corruptPDF(), 0o644))

	// Must come back as an error, not a panic.
	_, err := Extract(context.Background(), path)
	require.Error(t, err)
}

func TestPDFTextRecoversFromPanic(t *testing.T) {
	text, err := pdfText(corruptPDF())
	require.Error(t, err)
	require.Empty(t, text)
}
