package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStore(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewLocalFileStore(dir, "/media/")
	require.NoError(t, err)

	url, err := fs.Store(strings.NewReader("png bytes"), "cover.png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/media/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	key := strings.TrimPrefix(url, "/media/")
	data, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))

	// Distinct uploads of the same file name never collide.
	second, err := fs.Store(strings.NewReader("other"), "cover.png")
	require.NoError(t, err)
	assert.NotEqual(t, url, second)
}
