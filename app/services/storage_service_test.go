package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/debt-collection-crm/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocalStorage_SaveImageWithThumbnail(t *testing.T) {
	dir := t.TempDir()
	svc := NewLocalStorageService(&config.StorageConfig{
		UploadDir:      dir,
		PublicBaseURL:  "/uploads",
		MaxUploadBytes: 10 << 20,
		ThumbnailSize:  320,
	})
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	stored, err := svc.SaveProofOfPayment(context.Background(), "receipt.PNG", pngBytes(t, 1000, 500), now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.URL, "/uploads/payments/2025-03-15/"))
	assert.True(t, strings.HasSuffix(stored.URL, ".png"))
	require.NotNil(t, stored.ThumbnailURL)

	thumbPath := filepath.Join(dir, strings.TrimPrefix(*stored.ThumbnailURL, "/uploads/"))
	raw, err := os.ReadFile(thumbPath)
	require.NoError(t, err)
	thumb, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 320, thumb.Bounds().Dx())
	assert.Equal(t, 160, thumb.Bounds().Dy())

	require.NoError(t, svc.Delete(context.Background(), stored.URL))
	_, err = os.Stat(thumbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_PDFHasNoThumbnail(t *testing.T) {
	svc := NewLocalStorageService(&config.StorageConfig{UploadDir: t.TempDir(), PublicBaseURL: "/uploads", MaxUploadBytes: 1 << 20})
	stored, err := svc.SaveProofOfPayment(context.Background(), "pop.pdf", []byte("%PDF-1.4\n%test"), time.Now())
	require.NoError(t, err)
	assert.Nil(t, stored.ThumbnailURL)
	assert.Equal(t, "application/pdf", stored.ContentType)
}

func TestLocalStorage_Rejects(t *testing.T) {
	svc := NewLocalStorageService(&config.StorageConfig{UploadDir: t.TempDir(), PublicBaseURL: "/uploads", MaxUploadBytes: 100})

	tests := []struct {
		name    string
		file    string
		content []byte
	}{
		{name: "extension not allowed", file: "run.exe", content: []byte("MZ")},
		{name: "content does not match extension", file: "fake.png", content: []byte("%PDF-1.4")},
		{name: "too large", file: "big.pdf", content: append([]byte("%PDF-1.4"), make([]byte, 200)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveProofOfPayment(context.Background(), tt.file, tt.content, time.Now())
			assert.ErrorIs(t, err, ErrUnsupportedUpload)
		})
	}
}

func TestIsAllowedProofExtension(t *testing.T) {
	for _, name := range []string{"a.jpg", "a.JPEG", "a.png", "a.webp", "a.pdf"} {
		assert.True(t, IsAllowedProofExtension(name), name)
	}
	for _, name := range []string{"a.gif", "a", "a.docx"} {
		assert.False(t, IsAllowedProofExtension(name), name)
	}
}
