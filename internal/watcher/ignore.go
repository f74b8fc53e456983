package watcher

import (
	"path/filepath"
	"strings"
)

// ignoreSuffixes covers sync-tool artifacts: temp files, cloud-suite
// placeholder documents, and partial downloads.
var ignoreSuffixes = []string{
	".tmp",
	".temp",
	".gdoc",
	".gsheet",
	".gslides",
	".gdraw",
	".crdownload",
	".part",
	".partial",
	".download",
}

// ignorePrefixes covers dotfiles and office lock files.
var ignorePrefixes = []string{
	".",
	"~$",
	".~lock.",
	"~",
}

var ignoreExact = map[string]bool{
	"thumbs.db":    true,
	"desktop.ini":  true,
	"icon\r":       true,
}

// Ignored reports whether a filename is sync noise that must never become a
// record. Matching is on the base name only, case-insensitive.
func Ignored(name string) bool {
	lower := strings.ToLower(name)
	if ignoreExact[lower] {
		return true
	}
	for _, prefix := range ignorePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, suffix := range ignoreSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Eligible reports whether a file would pass the noise and extension
// filters. One-shot scans share this with the live watcher so both agree on
// what counts as input.
func Eligible(path string, exts []string) bool {
	if Ignored(filepath.Base(path)) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range exts {
		if ext == allowed {
			return true
		}
	}
	return false
}
