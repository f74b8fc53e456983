// Package model contains the struct definitions shared across packages.
package model

import "time"

// Transcript represents a row in the transcripts table. Filepath is the
// unique key: the ingestion pipeline never creates two records for the same
// physical file.
type Transcript struct {
	ID              string     `json:"id"`
	Filename        string     `json:"filename"`
	Filepath        string     `json:"filepath"`
	RawContent      string     `json:"rawContent"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	CallDate        *time.Time `json:"callDate,omitempty"`
	Context         string     `json:"context,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// ExtractedDocument is the in-memory result of format extraction. It exists
// only for the duration of one pipeline pass; the pipeline turns it into a
// Transcript if it survives the dedup gate.
type ExtractedDocument struct {
	SourcePath      string
	Filename        string
	Text            string
	SuggestedDate   *time.Time
	DurationMinutes *int
	Context         string
	// ContextLocked marks contexts assigned by email decomposition, which
	// carry provenance and must not be overridden by filename keywords.
	ContextLocked bool
}

// EmailDecomposition is the parsed form of one .eml file: headers, a body in
// plain text, and the retained attachment set.
type EmailDecomposition struct {
	Subject     string
	From        string
	To          string
	Cc          string
	Date        *time.Time
	MessageID   string
	InReplyTo   string
	BodyText    string
	Attachments []EmailAttachment
}

// EmailAttachment is one retained attachment with its declared metadata and
// raw bytes.
type EmailAttachment struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}
