package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedImage(t *testing.T) {
	assert.True(t, AllowedImage("image/png"))
	assert.True(t, AllowedImage("image/jpg"))
	assert.True(t, AllowedImage("image/jpeg"))

	assert.False(t, AllowedImage("image/gif"))
	assert.False(t, AllowedImage("application/pdf"))
	assert.False(t, AllowedImage(""))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 Bytes", FormatSize(0, 2))
	assert.Equal(t, "512.00 Bytes", FormatSize(512, 2))
	assert.Equal(t, "1.00 KB", FormatSize(1024, 2))
	assert.Equal(t, "2.35 MB", FormatSize(2463154, 2))
	assert.Equal(t, "1 GB", FormatSize(1<<30, 0))
	assert.Equal(t, "1.00 Bytes", FormatSize(1, -5))
}

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	info, err := store.Save(context.Background(), Upload{
		Name: "photo one.png",
		MIME: "image/png",
		Size: 9,
		Body: strings.NewReader("png bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "photo one.png", info.FileName)
	assert.Equal(t, "image/png", info.FileType)
	assert.Equal(t, "9.00 Bytes", info.FileSize)

	data, err := os.ReadFile(info.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))

	// The stored file name must not carry spaces or path separators.
	base := info.FilePath[strings.LastIndex(info.FilePath, string(os.PathSeparator))+1:]
	assert.NotContains(t, base, " ")
	assert.NotContains(t, base, "/")
}

func TestLocalStorageSave_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	first, err := store.Save(context.Background(), Upload{Name: "a.png", MIME: "image/png", Size: 1, Body: strings.NewReader("x")})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond) // names are timestamped to the millisecond
	second, err := store.Save(context.Background(), Upload{Name: "a.png", MIME: "image/png", Size: 1, Body: strings.NewReader("y")})
	require.NoError(t, err)

	assert.NotEqual(t, first.FilePath, second.FilePath)
}
