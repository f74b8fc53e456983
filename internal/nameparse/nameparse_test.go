package nameparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestParseDates(t *testing.T) {
	cases := []struct {
		name string
		want *time.Time
	}{
		{"2024-03-15 - Discovery - Acme.txt", date(2024, time.March, 15)},
		{"call_20240315_notes.md", date(2024, time.March, 15)},
		{"03-15-2024 weekly sync.txt", date(2024, time.March, 15)},
		{"notes.txt", nil},
		{"2024-13-40 broken.txt", nil},
		{"invoice 99999999.pdf", nil},
	}
	for _, tc := range cases {
		got := Parse(tc.name)
		if tc.want == nil {
			assert.Nil(t, got.Date, tc.name)
			continue
		}
		require.NotNil(t, got.Date, tc.name)
		assert.True(t, got.Date.Equal(*tc.want), "%s: got %v", tc.name, got.Date)
	}
}

func TestParseCallType(t *testing.T) {
	cases := map[string]string{
		"2024-03-15 - Discovery - Acme.txt": "Discovery",
		"acme demo recording.srt":           "Demo",
		"follow-up with sam.txt":            "Follow-up",
		"follow_up_sam.txt":                 "Follow-up",
		"customer checkin 2024.md":          "Check-in",
		"kick off notes.docx":               "Kickoff",
		"random notes.txt":                  "",
		"demonstration.txt":                 "", // no partial-word matches
	}
	for name, want := range cases {
		assert.Equal(t, want, Parse(name).CallType, name)
	}
}

// A filename carrying several keywords must always resolve to the same label,
// picked by the fixed keyword priority rather than by chance.
func TestParseCallTypeDeterministicOnMultipleKeywords(t *testing.T) {
	for i := 0; i < 50; i++ {
		assert.Equal(t, "Demo", Parse("acme demo review.txt").CallType)
		assert.Equal(t, "Demo", Parse("review demo acme.txt").CallType)
		assert.Equal(t, "Kickoff", Parse("kick off review.txt").CallType)
	}
}

func TestParseIsPureOverBaseName(t *testing.T) {
	a := Parse("/some/dir/2024-01-02 demo.txt")
	b := Parse("2024-01-02 demo.txt")
	require.NotNil(t, a.Date)
	require.NotNil(t, b.Date)
	assert.True(t, a.Date.Equal(*b.Date))
	assert.Equal(t, a.CallType, b.CallType)
}
