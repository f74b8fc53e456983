package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/callsift/callsift/internal/email"
	"github.com/callsift/callsift/internal/model"
)

// handleEmail expands one .eml file into a body record plus zero or more
// attachment records. The dedup gate keys the whole email on the .eml path:
// if the body is already recorded, a previous pass handled the attachments
// too, and re-staging would mint duplicates under suffixed names.
func (p *Pipeline) handleEmail(ctx context.Context, path string) {
	d, err := email.Decompose(path, p.inlineMinBytes)
	if err != nil {
		log.Printf("dropping %s: %v", path, err)
		return
	}

	bodyDoc := &model.ExtractedDocument{
		SourcePath:    path,
		Filename:      filepath.Base(path),
		Text:          email.HeaderBlock(d) + "\n" + d.BodyText,
		SuggestedDate: d.Date,
		Context:       "Email: " + d.Subject,
		ContextLocked: true,
	}
	_, created := p.materialize(ctx, bodyDoc)
	if !created {
		return
	}

	// Attachments are processed sequentially within one email: bounded
	// memory when an email carries many, and deterministic provenance
	// logging. Attachments across different emails may still overlap.
	stagingDir := email.StagingDir(path)
	for _, att := range d.Attachments {
		p.handleAttachment(ctx, d, stagingDir, att)
	}
}

func (p *Pipeline) handleAttachment(ctx context.Context, d *model.EmailDecomposition, dir string, att model.EmailAttachment) {
	ext := strings.ToLower(filepath.Ext(att.Filename))
	if !attachmentExts[ext] {
		log.Printf("dropping attachment %q from %q: unsupported type %s", att.Filename, d.Subject, att.ContentType)
		return
	}
	staged, err := email.Stage(dir, att)
	if err != nil {
		log.Printf("staging attachment %q from %q failed: %v", att.Filename, d.Subject, err)
		return
	}
	doc, err := p.extract(ctx, staged)
	if err != nil {
		// The parent email's body record already exists, so a rescan will
		// hit the dedup gate before it can reach this attachment again.
		log.Printf("dropping attachment %s from %q: %v (not recoverable by rescan)", staged, d.Subject, err)
		return
	}
	doc.Text = email.AttachmentHeader(d, att.Filename) + "\n" + doc.Text
	doc.Context = fmt.Sprintf("Attachment: %s (from %q)", att.Filename, d.Subject)
	doc.ContextLocked = true
	if doc.SuggestedDate == nil {
		doc.SuggestedDate = d.Date
	}
	p.materialize(ctx, doc)
}
