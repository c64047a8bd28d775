package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("demo"), 0644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestService_Prune(t *testing.T) {
	dir := t.TempDir()
	service := NewService(dir)

	expired := writeAged(t, dir, "Old Video_720p.mp4", 48*time.Hour)
	expiredAudio := writeAged(t, dir, "Old Audio_320kbps.mp3", 25*time.Hour)
	fresh := writeAged(t, dir, "New Video_1080p.mp4", time.Hour)
	unrelated := writeAged(t, dir, "notes.txt", 48*time.Hour)

	removed, err := service.Prune()
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	require.NoFileExists(t, expired)
	require.NoFileExists(t, expiredAudio)
	require.FileExists(t, fresh)
	require.FileExists(t, unrelated)
}

func TestService_PruneMissingDirectory(t *testing.T) {
	service := NewService(filepath.Join(t.TempDir(), "missing"))

	removed, err := service.Prune()
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestService_PruneSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	service := NewService(dir)

	sub := filepath.Join(dir, "archive.mp4")
	require.NoError(t, os.Mkdir(sub, 0755))

	removed, err := service.Prune()
	require.NoError(t, err)
	require.Zero(t, removed)
	require.DirExists(t, sub)
}

func TestIsDemoFile(t *testing.T) {
	tests := []struct {
		name string
		file string
		want bool
	}{
		{"video", "Demo_720p.mp4", true},
		{"audio", "Demo_320kbps.mp3", true},
		{"uppercase extension", "DEMO_720P.MP4", true},
		{"text file", "readme.txt", false},
		{"no extension", "Makefile", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, isDemoFile(tt.file))
		})
	}
}
