package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/amirphl/debt-collection-crm/config"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// StorageService persists proof-of-payment uploads
type StorageService interface {
	SaveProofOfPayment(ctx context.Context, fileName string, content []byte, now time.Time) (*StoredFile, error)
	Delete(ctx context.Context, publicURL string) error
}

// StoredFile locates a saved upload. ThumbnailURL is set for images only.
type StoredFile struct {
	URL          string
	ThumbnailURL *string
	ContentType  string
	Size         int64
}

// allowedProofTypes maps extensions to the content types a sniff may report
var allowedProofTypes = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".webp": {"image/webp"},
	".pdf":  {"application/pdf"},
}

// IsAllowedProofExtension reports whether a file name has an accepted PoP extension
func IsAllowedProofExtension(fileName string) bool {
	_, ok := allowedProofTypes[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

type localStorageService struct {
	config *config.StorageConfig
}

// NewLocalStorageService stores files under UploadDir and serves them from PublicBaseURL
func NewLocalStorageService(cfg *config.StorageConfig) StorageService {
	return &localStorageService{config: cfg}
}

// SaveProofOfPayment writes payments/YYYY-MM-DD/<uuid><ext> and, for images, a JPEG thumbnail next to it
func (s *localStorageService) SaveProofOfPayment(ctx context.Context, fileName string, content []byte, now time.Time) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	allowed, ok := allowedProofTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedUpload, ext)
	}
	sniffed := http.DetectContentType(content)
	if !matchesAny(sniffed, allowed) {
		return nil, fmt.Errorf("%w: content is %s", ErrUnsupportedUpload, sniffed)
	}
	if s.config.MaxUploadBytes > 0 && int64(len(content)) > s.config.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrUnsupportedUpload, s.config.MaxUploadBytes)
	}

	day := now.UTC().Format(time.DateOnly)
	dir := filepath.Join(s.config.UploadDir, "payments", day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	id := uuid.NewString()
	name := id + ext
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	stored := &StoredFile{
		URL:         s.publicURL(day, name),
		ContentType: allowed[0],
		Size:        int64(len(content)),
	}

	if strings.HasPrefix(stored.ContentType, "image/") {
		thumb, err := Thumbnail(content, s.config.ThumbnailSize)
		if err == nil {
			thumbName := id + "_thumb.jpg"
			if err := os.WriteFile(filepath.Join(dir, thumbName), thumb, 0o644); err == nil {
				u := s.publicURL(day, thumbName)
				stored.ThumbnailURL = &u
			}
		}
	}

	return stored, nil
}

// Delete removes a stored upload and its thumbnail. Missing files are ignored.
func (s *localStorageService) Delete(ctx context.Context, publicURL string) error {
	rel, ok := strings.CutPrefix(publicURL, strings.TrimRight(s.config.PublicBaseURL, "/")+"/")
	if !ok || strings.Contains(rel, "..") {
		return nil
	}
	full := filepath.Join(s.config.UploadDir, filepath.FromSlash(rel))
	for _, p := range []string{full, strings.TrimSuffix(full, filepath.Ext(full)) + "_thumb.jpg"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete upload: %w", err)
		}
	}
	return nil
}

func (s *localStorageService) publicURL(day, name string) string {
	return strings.TrimRight(s.config.PublicBaseURL, "/") + "/" + path.Join("payments", day, name)
}

// Thumbnail scales an image so its longer side is at most maxSide and encodes it as JPEG
func Thumbnail(content []byte, maxSide int) ([]byte, error) {
	if maxSide <= 0 {
		maxSide = 320
	}
	src, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxSide || h > maxSide {
		if w >= h {
			h = h * maxSide / w
			w = maxSide
		} else {
			w = w * maxSide / h
			h = maxSide
		}
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func matchesAny(contentType string, allowed []string) bool {
	for _, a := range allowed {
		if strings.HasPrefix(contentType, a) {
			return true
		}
	}
	return false
}
