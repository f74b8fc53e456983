package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/callsift/callsift/internal/model"
)

// StagingDir returns the per-email staging directory, created alongside the
// source .eml file: "meeting.eml" stages under "meeting_attachments/".
func StagingDir(emlPath string) string {
	stem := strings.TrimSuffix(emlPath, filepath.Ext(emlPath))
	return stem + "_attachments"
}

// Stage writes one attachment into dir under a collision-safe name. When the
// declared filename is taken, a numeric suffix is appended until a free name
// is found, so no attachment ever silently overwrites another.
func Stage(dir string, att model.EmailAttachment) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir %s: %w", dir, err)
	}
	name := sanitizeName(att.Filename)
	target := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		target = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
	if err := os.WriteFile(target, att.Content, 0o644); err != nil {
		return "", fmt.Errorf("stage attachment %s: %w", target, err)
	}
	return target, nil
}

// sanitizeName strips any path components a hostile or broken mail client
// put in the declared filename.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return "attachment"
	}
	return name
}
