package avatars

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	return storage
}

func TestNewStorage(t *testing.T) {
	t.Run("creates storage with valid path", func(t *testing.T) {
		tmpDir := t.TempDir()

		storage, err := NewStorage(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, storage)

		// Verify avatars directory was created.
		avatarsPath := filepath.Join(tmpDir, "avatars")
		info, err := os.Stat(avatarsPath)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("returns error for empty path", func(t *testing.T) {
		storage, err := NewStorage("")
		assert.Error(t, err)
		assert.Nil(t, storage)
		assert.Contains(t, err.Error(), "base path cannot be empty")
	})
}

func TestStorage_SaveAndGet(t *testing.T) {
	t.Run("saves avatar data successfully", func(t *testing.T) {
		storage := setupTestStorage(t)
		testData := []byte("test image data")

		err := storage.Save("user-123", testData)
		require.NoError(t, err)

		data, err := storage.Get("user-123")
		require.NoError(t, err)
		assert.Equal(t, testData, data)
		assert.True(t, storage.Exists("user-123"))
	})

	t.Run("returns error for empty user ID", func(t *testing.T) {
		storage := setupTestStorage(t)

		err := storage.Save("", []byte("data"))
		assert.Error(t, err)
	})

	t.Run("returns error for empty image data", func(t *testing.T) {
		storage := setupTestStorage(t)

		err := storage.Save("user-123", []byte{})
		assert.Error(t, err)
	})

	t.Run("get returns error for missing avatar", func(t *testing.T) {
		storage := setupTestStorage(t)

		_, err := storage.Get("user-missing")
		assert.Error(t, err)
		assert.False(t, storage.Exists("user-missing"))
	})
}

func TestStorage_Delete(t *testing.T) {
	storage := setupTestStorage(t)

	require.NoError(t, storage.Save("user-123", []byte("data")))
	require.NoError(t, storage.Delete("user-123"))
	assert.False(t, storage.Exists("user-123"))

	// Deleting again is not an error.
	assert.NoError(t, storage.Delete("user-123"))
}

func TestStorage_Hash(t *testing.T) {
	storage := setupTestStorage(t)

	require.NoError(t, storage.Save("user-123", []byte("data")))

	hash1, err := storage.Hash("user-123")
	require.NoError(t, err)
	assert.Len(t, hash1, 64) // hex-encoded SHA256

	require.NoError(t, storage.Save("user-123", []byte("other")))
	hash2, err := storage.Hash("user-123")
	require.NoError(t, err)
	assert.NotEqual(t, hash1, hash2)
}

func TestComputeBlurHash(t *testing.T) {
	// Encode a small gradient PNG in memory.
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	hash, err := ComputeBlurHash(buf.Bytes())
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestComputeBlurHash_InvalidData(t *testing.T) {
	_, err := ComputeBlurHash([]byte("not an image"))
	assert.Error(t, err)
}
