package extract

import (
	"bufio"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/callsift/callsift/internal/model"
)

// headerHintLines bounds how far into a plain-text transcript we look for
// "Date:" / "Duration:" style header lines emitted by export tools.
const headerHintLines = 12

var durationRe = regexp.MustCompile(`(?i)^duration:\s*(\d+)`)
var dateRe = regexp.MustCompile(`(?i)^date:\s*(.+)$`)
var titleRe = regexp.MustCompile(`(?i)^(?:title|subject):\s*(.+)$`)

// extractPlainText reads .txt/.md/.csv content verbatim and scans the top of
// the file for header hints.
func extractPlainText(path string) (*model.ExtractedDocument, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	doc := &model.ExtractedDocument{Text: text}
	scanHeaderHints(text, doc)
	return doc, nil
}

func scanHeaderHints(text string, doc *model.ExtractedDocument) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	for i := 0; scanner.Scan() && i < headerHintLines; i++ {
		line := strings.TrimSpace(scanner.Text())
		if m := durationRe.FindStringSubmatch(line); m != nil && doc.DurationMinutes == nil {
			if mins, err := strconv.Atoi(m[1]); err == nil && mins > 0 {
				doc.DurationMinutes = &mins
			}
		}
		if m := dateRe.FindStringSubmatch(line); m != nil && doc.SuggestedDate == nil {
			if d := parseLooseDate(strings.TrimSpace(m[1])); d != nil {
				doc.SuggestedDate = d
			}
		}
		if m := titleRe.FindStringSubmatch(line); m != nil && doc.Context == "" {
			doc.Context = strings.TrimSpace(m[1])
		}
	}
}

// parseLooseDate tries the date layouts transcript exporters actually emit.
func parseLooseDate(s string) *time.Time {
	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2 January 2006",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// jsonTranscript is the loose shape accepted for .json inputs: either a
// single object with well-known keys or a {"segments": [...]} export.
type jsonTranscript struct {
	Text            string        `json:"text"`
	Transcript      string        `json:"transcript"`
	Content         string        `json:"content"`
	Title           string        `json:"title"`
	Subject         string        `json:"subject"`
	Context         string        `json:"context"`
	Date            string        `json:"date"`
	CallDate        string        `json:"call_date"`
	Duration        float64       `json:"duration"`
	DurationMinutes float64       `json:"duration_minutes"`
	Segments        []jsonSegment `json:"segments"`
}

type jsonSegment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// extractJSON accepts common JSON transcript exports. Anything that fails to
// decode is still ingested as raw text so a hand-rolled JSON note is not
// lost, matching the pass-through behavior of the rest of the text family.
func extractJSON(path string) (*model.ExtractedDocument, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var jt jsonTranscript
	if err := json.Unmarshal(data, &jt); err != nil {
		return &model.ExtractedDocument{Text: string(data)}, nil
	}
	doc := &model.ExtractedDocument{}
	switch {
	case jt.Text != "":
		doc.Text = jt.Text
	case jt.Transcript != "":
		doc.Text = jt.Transcript
	case jt.Content != "":
		doc.Text = jt.Content
	case len(jt.Segments) > 0:
		var b strings.Builder
		for _, seg := range jt.Segments {
			if seg.Speaker != "" {
				b.WriteString(seg.Speaker)
				b.WriteString(": ")
			}
			b.WriteString(seg.Text)
			b.WriteString("\n")
		}
		doc.Text = b.String()
	default:
		doc.Text = string(data)
	}
	if mins := firstPositive(jt.DurationMinutes, jt.Duration); mins > 0 {
		m := int(math.Round(mins))
		doc.DurationMinutes = &m
	}
	for _, raw := range []string{jt.CallDate, jt.Date} {
		if raw == "" {
			continue
		}
		if d := parseLooseDate(raw); d != nil {
			doc.SuggestedDate = d
			break
		}
	}
	for _, c := range []string{jt.Context, jt.Title, jt.Subject} {
		if c != "" {
			doc.Context = c
			break
		}
	}
	return doc, nil
}

func firstPositive(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

var srtTimingRe = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)

// extractSRT strips subtitle indexes and timing lines, keeping the spoken
// text. The last cue's end time becomes the duration hint, rounded up to
// whole minutes.
func extractSRT(path string) (*model.ExtractedDocument, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var (
		b       strings.Builder
		lastEnd time.Duration
	)
	for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := srtTimingRe.FindStringSubmatch(trimmed); m != nil {
			lastEnd = srtTimestamp(m[5], m[6], m[7], m[8])
			continue
		}
		if isCueIndex(trimmed) {
			continue
		}
		b.WriteString(trimmed)
		b.WriteString("\n")
	}
	doc := &model.ExtractedDocument{Text: b.String()}
	if lastEnd > 0 {
		mins := int(math.Ceil(lastEnd.Minutes()))
		doc.DurationMinutes = &mins
	}
	return doc, nil
}

func isCueIndex(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func srtTimestamp(h, m, s, ms string) time.Duration {
	return parseUnit(h, time.Hour) + parseUnit(m, time.Minute) +
		parseUnit(s, time.Second) + parseUnit(ms, time.Millisecond)
}

func parseUnit(v string, unit time.Duration) time.Duration {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return time.Duration(n) * unit
}
