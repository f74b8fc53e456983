// Package pipeline wires the ingestion flow together: classify, extract,
// pass the dedup gate, materialize a record, and hand it off for analysis.
// All per-file errors are contained to that file's processing; nothing here
// can take the watcher down.
package pipeline

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/callsift/callsift/internal/extract"
	"github.com/callsift/callsift/internal/model"
	"github.com/callsift/callsift/internal/nameparse"
	"github.com/callsift/callsift/internal/repository"
	"github.com/callsift/callsift/internal/watcher"
)

// Store is the slice of the external store the pipeline needs. ExistsByPath
// is the dedup gate; Create must reject filepath collisions so two
// near-simultaneous events cannot both materialize.
type Store interface {
	ExistsByPath(ctx context.Context, path string) (bool, error)
	Create(ctx context.Context, t *model.Transcript) error
}

// Dispatcher hands a created record off for analysis without blocking
// ingestion. An analysis failure never rolls back the record.
type Dispatcher interface {
	Dispatch(ctx context.Context, recordID, path string) error
}

// Observer is notified of each new record so collaborators can react
// without polling. Fire-and-forget.
type Observer func(recordID, path string)

// Archiver optionally mirrors record artifacts to object storage.
type Archiver interface {
	Store(ctx context.Context, rec *model.Transcript) error
}

// attachmentExts is the allow-list for email attachments, narrower than the
// watcher's source allow-list.
var attachmentExts = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
	".csv":  true,
}

// Options carries the optional collaborators and tunables.
type Options struct {
	Observer       Observer
	Archiver       Archiver
	ExtractTimeout time.Duration
	InlineMinBytes int64
	Concurrency    int
}

// Pipeline processes stable-file events into transcript records.
type Pipeline struct {
	store          Store
	dispatcher     Dispatcher
	observer       Observer
	archiver       Archiver
	extractTimeout time.Duration
	inlineMinBytes int64
	concurrency    int
}

// New constructs a Pipeline.
func New(store Store, dispatcher Dispatcher, opts Options) *Pipeline {
	p := &Pipeline{
		store:          store,
		dispatcher:     dispatcher,
		observer:       opts.Observer,
		archiver:       opts.Archiver,
		extractTimeout: opts.ExtractTimeout,
		inlineMinBytes: opts.InlineMinBytes,
		concurrency:    opts.Concurrency,
	}
	if p.extractTimeout <= 0 {
		p.extractTimeout = 2 * time.Minute
	}
	if p.concurrency <= 0 {
		p.concurrency = 4
	}
	return p
}

// Run consumes stable-file events until the context closes. Distinct files
// are processed concurrently up to the configured bound; there is no
// ordering guarantee between unrelated files.
func (p *Pipeline) Run(ctx context.Context, events <-chan watcher.Event) {
	sem := make(chan struct{}, p.concurrency)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			sem <- struct{}{}
			go func(path string) {
				defer func() { <-sem }()
				p.HandleFile(ctx, path)
			}(ev.Path)
		}
	}
}

// HandleFile runs one file through classification, extraction, the dedup
// gate, and dispatch. Every failure is terminal for this file only.
func (p *Pipeline) HandleFile(ctx context.Context, path string) {
	if strings.EqualFold(filepath.Ext(path), ".eml") {
		p.handleEmail(ctx, path)
		return
	}
	doc, err := p.extract(ctx, path)
	if err != nil {
		logDrop(path, err)
		return
	}
	p.materialize(ctx, doc)
}

// extract wraps extraction in a bounded timeout so one pathological
// document cannot occupy a processing slot indefinitely.
func (p *Pipeline) extract(ctx context.Context, path string) (*model.ExtractedDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, p.extractTimeout)
	defer cancel()
	type result struct {
		doc *model.ExtractedDocument
		err error
	}
	ch := make(chan result, 1)
	go func() {
		doc, err := extract.Extract(ctx, path)
		ch <- result{doc, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.doc, r.err
	}
}

// materialize passes the document through the dedup gate and, on a miss,
// creates the record and hands it off. Returns the record id and whether a
// record was created.
func (p *Pipeline) materialize(ctx context.Context, doc *model.ExtractedDocument) (string, bool) {
	exists, err := p.store.ExistsByPath(ctx, doc.SourcePath)
	if err != nil {
		log.Printf("dedup check failed for %s: %v", doc.SourcePath, err)
		return "", false
	}
	if exists {
		log.Printf("already recorded %s, skipping", doc.SourcePath)
		return "", false
	}

	// Filename metadata is the higher-trust signal: it overrides whatever
	// the content suggested.
	meta := nameparse.Parse(doc.Filename)
	callDate := doc.SuggestedDate
	if meta.Date != nil {
		callDate = meta.Date
	}
	recCtx := doc.Context
	if meta.CallType != "" && !doc.ContextLocked {
		recCtx = meta.CallType
	}

	rec := &model.Transcript{
		ID:              uuid.NewString(),
		Filename:        doc.Filename,
		Filepath:        doc.SourcePath,
		RawContent:      doc.Text,
		DurationMinutes: doc.DurationMinutes,
		CallDate:        callDate,
		Context:         recCtx,
		CreatedAt:       time.Now().UTC(),
	}
	if err := p.store.Create(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicatePath) {
			log.Printf("already recorded %s, skipping", doc.SourcePath)
			return "", false
		}
		log.Printf("create record for %s failed: %v", doc.SourcePath, err)
		return "", false
	}
	log.Printf("recorded %s as %s", rec.Filepath, rec.ID)

	if p.archiver != nil {
		if err := p.archiver.Store(ctx, rec); err != nil {
			log.Printf("archive %s failed: %v", rec.ID, err)
		}
	}
	if p.dispatcher != nil {
		if err := p.dispatcher.Dispatch(ctx, rec.ID, rec.Filepath); err != nil {
			log.Printf("dispatch analysis for %s failed: %v", rec.ID, err)
		}
	}
	if p.observer != nil {
		p.observer(rec.ID, rec.Filepath)
	}
	return rec.ID, true
}

// logDrop maps extraction failures onto log severity: unsupported input and
// empty content are routine, everything else is a real decode failure.
func logDrop(path string, err error) {
	switch {
	case errors.Is(err, extract.ErrUnsupported):
		log.Printf("skipping %s: unsupported extension", path)
	case errors.Is(err, extract.ErrEmptyContent):
		log.Printf("skipping %s: no extractable text", path)
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("dropping %s: extraction timed out", path)
	default:
		log.Printf("dropping %s: %v", path, err)
	}
}
