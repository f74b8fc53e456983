// Package email splits .eml files into a body document plus a retained
// attachment set, and stages attachments to disk for re-extraction.
package email

import (
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"

	"github.com/callsift/callsift/internal/extract"
	"github.com/callsift/callsift/internal/model"
)

// DefaultInlineMinBytes is the size floor for inline parts. Inline images
// below it are almost always signature logos or tracking pixels.
const DefaultInlineMinBytes = 8 << 10

// Decompose parses the message at path. Body preference is the plain-text
// part; when absent the HTML part is stripped to best-effort text. Inline
// parts under inlineMinBytes and parts without a filename are excluded from
// the attachment set.
func Decompose(path string, inlineMinBytes int64) (*model.EmailDecomposition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open eml %s: %w", path, err)
	}
	defer f.Close()

	env, err := enmime.ReadEnvelope(f)
	if err != nil {
		return nil, fmt.Errorf("parse eml %s: %w", path, err)
	}
	if inlineMinBytes <= 0 {
		inlineMinBytes = DefaultInlineMinBytes
	}

	d := &model.EmailDecomposition{
		Subject:   env.GetHeader("Subject"),
		From:      env.GetHeader("From"),
		To:        env.GetHeader("To"),
		Cc:        env.GetHeader("Cc"),
		MessageID: strings.Trim(env.GetHeader("Message-Id"), "<>"),
		InReplyTo: strings.Trim(env.GetHeader("In-Reply-To"), "<>"),
	}
	if raw := env.GetHeader("Date"); raw != "" {
		if t, err := mail.ParseDate(raw); err == nil {
			utc := t.UTC()
			d.Date = &utc
		}
	}

	body := strings.TrimSpace(env.Text)
	if body == "" && env.HTML != "" {
		body = extract.StripHTML(env.HTML)
	}
	d.BodyText = body

	for _, part := range env.Attachments {
		if part.FileName == "" {
			continue
		}
		d.Attachments = append(d.Attachments, attachmentFromPart(part))
	}
	for _, part := range env.Inlines {
		if part.FileName == "" || int64(len(part.Content)) < inlineMinBytes {
			continue
		}
		d.Attachments = append(d.Attachments, attachmentFromPart(part))
	}
	return d, nil
}

func attachmentFromPart(part *enmime.Part) model.EmailAttachment {
	return model.EmailAttachment{
		Filename:    part.FileName,
		ContentType: part.ContentType,
		Size:        int64(len(part.Content)),
		Content:     part.Content,
	}
}

// HeaderBlock renders the provenance header prepended to the body document,
// embedding sender/recipient/subject directly into the record content.
func HeaderBlock(d *model.EmailDecomposition) string {
	var b strings.Builder
	writeHeader(&b, "From", d.From)
	writeHeader(&b, "To", d.To)
	writeHeader(&b, "CC", d.Cc)
	writeHeader(&b, "Subject", d.Subject)
	if d.Date != nil {
		writeHeader(&b, "Date", d.Date.Format(time.RFC1123Z))
	}
	return b.String()
}

// AttachmentHeader renders the provenance header prepended to each staged
// attachment, preserving the causal link to the parent email.
func AttachmentHeader(d *model.EmailDecomposition, attachmentName string) string {
	var b strings.Builder
	writeHeader(&b, "Attachment", attachmentName)
	writeHeader(&b, "Parent Subject", d.Subject)
	writeHeader(&b, "Parent From", d.From)
	if d.Date != nil {
		writeHeader(&b, "Parent Date", d.Date.Format(time.RFC1123Z))
	}
	return b.String()
}

func writeHeader(b *strings.Builder, key, val string) {
	if strings.TrimSpace(val) == "" {
		return
	}
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(val)
	b.WriteString("\n")
}
