// Package nameparse infers call metadata from filenames. Filenames are a
// deliberate signal supplied by the user or the exporting tool, so whatever
// this package recovers overrides hints derived from file content.
package nameparse

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Metadata holds whatever could be confidently inferred from a filename.
// Nil/empty fields mean the filename carried no such signal.
type Metadata struct {
	Date     *time.Time
	CallType string
}

var (
	isoDateRe     = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	compactDateRe = regexp.MustCompile(`(?:^|[^0-9])(\d{8})(?:[^0-9]|$)`)
	usDateRe      = regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`)
)

// callTypeKeywords pairs lowercase keywords with canonical call-type labels,
// in match-priority order: two-word forms before anything that could shadow
// them, then single words. A fixed order keeps the result deterministic when
// a filename contains several keywords. Separators in the filename are
// normalized to spaces first, so "follow-up", "follow_up" and "followup" all
// land on the same keyword.
var callTypeKeywords = []struct {
	keyword string
	label   string
}{
	{"follow up", "Follow-up"},
	{"check in", "Check-in"},
	{"kick off", "Kickoff"},
	{"followup", "Follow-up"},
	{"checkin", "Check-in"},
	{"kickoff", "Kickoff"},
	{"discovery", "Discovery"},
	{"demo", "Demo"},
	{"intro", "Intro"},
	{"onboarding", "Onboarding"},
	{"renewal", "Renewal"},
	{"review", "Review"},
	{"support", "Support"},
	{"training", "Training"},
	{"interview", "Interview"},
}

// Parse inspects a filename for embedded dates and call-type keywords. It is
// a pure function over the name; it never touches the filesystem.
func Parse(filename string) Metadata {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return Metadata{
		Date:     parseDate(base),
		CallType: parseCallType(base),
	}
}

func parseDate(base string) *time.Time {
	if m := isoDateRe.FindStringSubmatch(base); m != nil {
		if d := buildDate(m[1], m[2], m[3]); d != nil {
			return d
		}
	}
	if m := compactDateRe.FindStringSubmatch(base); m != nil {
		if d := buildDate(m[1][:4], m[1][4:6], m[1][6:8]); d != nil {
			return d
		}
	}
	if m := usDateRe.FindStringSubmatch(base); m != nil {
		if d := buildDate(m[3], m[1], m[2]); d != nil {
			return d
		}
	}
	return nil
}

// buildDate validates components by round-tripping through time.Date, which
// normalizes out-of-range values (month 13 becomes January next year).
func buildDate(year, month, day string) *time.Time {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if y < 1990 || y > 2100 {
		return nil
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return nil
	}
	return &t
}

func parseCallType(base string) string {
	norm := strings.ToLower(base)
	for _, sep := range []string{"-", "_", "."} {
		norm = strings.ReplaceAll(norm, sep, " ")
	}
	norm = " " + strings.Join(strings.Fields(norm), " ") + " "
	for _, ct := range callTypeKeywords {
		if strings.Contains(norm, " "+ct.keyword+" ") {
			return ct.label
		}
	}
	return ""
}
