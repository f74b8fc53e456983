package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callsift/callsift/internal/model"
)

func TestStagingDir(t *testing.T) {
	assert.Equal(t, "/drop/meeting_attachments", StagingDir("/drop/meeting.eml"))
}

func TestStageCollisionSafe(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "m_attachments")
	first, err := Stage(dir, model.EmailAttachment{Filename: "notes.txt", Content: []byte("alpha")})
	require.NoError(t, err)
	second, err := Stage(dir, model.EmailAttachment{Filename: "notes.txt", Content: []byte("beta")})
	require.NoError(t, err)
	third, err := Stage(dir, model.EmailAttachment{Filename: "notes.txt", Content: []byte("gamma")})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "notes.txt"), first)
	assert.Equal(t, filepath.Join(dir, "notes-1.txt"), second)
	assert.Equal(t, filepath.Join(dir, "notes-2.txt"), third)

	// Nothing was overwritten.
	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	c, _ := os.ReadFile(third)
	assert.Equal(t, "alpha", string(a))
	assert.Equal(t, "beta", string(b))
	assert.Equal(t, "gamma", string(c))
}

func TestStageSanitizesHostileNames(t *testing.T) {
	dir := t.TempDir()
	staged, err := Stage(dir, model.EmailAttachment{Filename: "../../etc/passwd", Content: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "passwd"), staged)

	staged, err = Stage(dir, model.EmailAttachment{Filename: "", Content: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "attachment"), staged)
}
