package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFilename(t *testing.T) {
	cases := []struct {
		in         string
		wantPrefix string
		wantExt    string
	}{
		{"lunch menu.png", "lunch_menu_", ".png"},
		{"prömo!!.mp4", "prmo_", ".mp4"},
		{"???", "file_", ""},
		{"already-fine.webm", "already-fine_", ".webm"},
	}
	for _, tc := range cases {
		got := normalizeFilename(tc.in)
		assert.True(t, strings.HasPrefix(got, tc.wantPrefix), "%q -> %q", tc.in, got)
		assert.Equal(t, tc.wantExt, filepath.Ext(got), "%q", tc.in)
		assert.NotContains(t, got, " ")
	}
}

func TestContentTypeForFilename(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeForFilename("photo.JPG"))
	assert.Equal(t, "video/mp4", ContentTypeForFilename("clip.mp4"))
	assert.Equal(t, "application/octet-stream", ContentTypeForFilename("mystery.bin"))
}

func TestLocalSignedURL(t *testing.T) {
	ls := NewLocalStorage(t.TempDir(), "http://signage.local/")

	url, err := ls.SignedURL("menu_20250611_120000.png", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://signage.local/uploads/menu_20250611_120000.png", url)

	_, err = ls.SignedURL("", time.Hour)
	assert.ErrorIs(t, err, ErrSigning)
}

func TestLocalDelete(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(dir, "http://signage.local")

	path := filepath.Join(dir, "gone.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.NoError(t, ls.Delete("gone.png"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
