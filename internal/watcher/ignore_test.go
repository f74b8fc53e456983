package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnored(t *testing.T) {
	noise := []string{
		".DS_Store",
		"report.tmp",
		"budget.gsheet",
		"~$draft.docx",
		"movie.crdownload",
		"file.part",
		".~lock.report.docx#",
		"Thumbs.db",
		"notes.partial",
	}
	for _, name := range noise {
		assert.True(t, Ignored(name), name)
	}

	keep := []string{
		"call.txt",
		"meeting notes.md",
		"export.json",
		"subtitles.srt",
		"deck.pdf",
		"summary.docx",
		"thread.eml",
	}
	for _, name := range keep {
		assert.False(t, Ignored(name), name)
	}
}

func TestEligible(t *testing.T) {
	assert.True(t, Eligible("/drop/call.txt", DefaultExtensions))
	assert.True(t, Eligible("/drop/thread.eml", DefaultExtensions))
	assert.False(t, Eligible("/drop/image.png", DefaultExtensions))
	assert.False(t, Eligible("/drop/.DS_Store", DefaultExtensions))
	assert.False(t, Eligible("/drop/call.tmp", DefaultExtensions))
}
