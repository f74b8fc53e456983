package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callsift/callsift/internal/model"
	"github.com/callsift/callsift/internal/store"
)

type fakeDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeDispatcher) Dispatch(_ context.Context, recordID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, recordID)
	return nil
}

func (f *fakeDispatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}

type harness struct {
	store      *store.MemoryStore
	dispatcher *fakeDispatcher
	pipe       *Pipeline

	mu       sync.Mutex
	observed []string
}

func newHarness() *harness {
	h := &harness{
		store:      store.NewMemoryStore(),
		dispatcher: &fakeDispatcher{},
	}
	h.pipe = New(h.store, h.dispatcher, Options{
		Observer: func(recordID, _ string) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.observed = append(h.observed, recordID)
		},
		ExtractTimeout: 5 * time.Second,
	})
	return h
}

func (h *harness) records(t *testing.T) []*model.Transcript {
	t.Helper()
	recs, err := h.store.List(context.Background(), 100)
	require.NoError(t, err)
	return recs
}

// corruptPDF mirrors the malformed shape that panics inside the pdf library:
// plausible header and trailer, xref entry resolving to a garbage object.
func corruptPDF() []byte {
	body := "%PDF-1.4\n1 0 obj\ngarbage garbage\nendobj\n"
	xref := fmt.Sprintf("xref\n0 2\n0000000000 65535 f \n%010d 00000 n \n", strings.Index(body, "1 0 obj"))
	trailer := fmt.Sprintf("trailer\n<< /Size 2 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(body))
	return []byte(body + xref + trailer)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestIdempotence(t *testing.T) {
	h := newHarness()
	path := writeFile(t, t.TempDir(), "hello.txt", "Hello world")

	h.pipe.HandleFile(context.Background(), path)
	h.pipe.HandleFile(context.Background(), path)

	recs := h.records(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "Hello world", recs[0].RawContent)
	assert.Equal(t, path, recs[0].Filepath)
	assert.Equal(t, "hello.txt", recs[0].Filename)
	assert.Equal(t, 1, h.dispatcher.count())
	assert.Len(t, h.observed, 1)
	assert.Equal(t, recs[0].ID, h.observed[0])
}

func TestFilenamePrecedence(t *testing.T) {
	h := newHarness()
	// Content suggests 2023-01-01; the filename encodes 2024-07-04 and a
	// call type, and the filename wins.
	path := writeFile(t, t.TempDir(), "2024-07-04 - Demo - Acme.txt", "Date: 2023-01-01\nhello call")

	h.pipe.HandleFile(context.Background(), path)

	recs := h.records(t)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].CallDate)
	assert.Equal(t, time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC), *recs[0].CallDate)
	assert.Equal(t, "Demo", recs[0].Context)
}

func TestContentDateUsedWithoutFilenameSignal(t *testing.T) {
	h := newHarness()
	path := writeFile(t, t.TempDir(), "notes.txt", "Date: 2023-01-01\nhello call")

	h.pipe.HandleFile(context.Background(), path)

	recs := h.records(t)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].CallDate)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), *recs[0].CallDate)
}

func TestEmptyContentSkipped(t *testing.T) {
	h := newHarness()
	empty := writeFile(t, t.TempDir(), "empty.txt", "")
	blank := writeFile(t, t.TempDir(), "blank.txt", " \n\t ")

	h.pipe.HandleFile(context.Background(), empty)
	h.pipe.HandleFile(context.Background(), blank)

	assert.Empty(t, h.records(t))
	assert.Equal(t, 0, h.dispatcher.count())
}

func TestExtractionFailureContained(t *testing.T) {
	h := newHarness()
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.pdf", "this is not a pdf")
	// Valid header and trailer, xref pointing at a garbage object: the pdf
	// library panics on this shape during page traversal, and that panic
	// must stay contained to the file's processing routine.
	corrupt := writeFile(t, dir, "corrupt.pdf", string(corruptPDF()))
	good := writeFile(t, dir, "good.txt", "still ingested")

	h.pipe.HandleFile(context.Background(), broken)
	h.pipe.HandleFile(context.Background(), corrupt)
	h.pipe.HandleFile(context.Background(), good)

	recs := h.records(t)
	require.Len(t, recs, 1)
	assert.Equal(t, good, recs[0].Filepath)
}
