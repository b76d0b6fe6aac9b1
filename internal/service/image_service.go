package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaDir       = "/tmp/inkwell/media"
	DefaultMaxUploadMB    = 10
	headerImageMaxSize    = 2048
	headerJPEGQuality     = 82
	headerWebPQuality     = 70
)

type UploadImageInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// UploadedImage points at the stored post header image and its WebP
// variant, both relative to the media root.
type UploadedImage struct {
	URL     string `json:"url"`
	WebPURL string `json:"webp_url"`
}

// ImageService stores post header images on disk, writing a JPEG master
// and a smaller WebP variant for each upload. Identical content from the
// same user lands on the same paths, so repeat uploads are free.
type ImageService struct {
	mediaDir           string
	maxUploadSizeBytes int64
}

func NewImageService(cfg *config.Config) *ImageService {
	mediaDir := DefaultMediaDir
	maxUploadMB := DefaultMaxUploadMB

	if cfg != nil {
		if cfg.MediaDir != "" {
			mediaDir = cfg.MediaDir
		}
		if cfg.MediaMaxUploadMB > 0 {
			maxUploadMB = cfg.MediaMaxUploadMB
		}
	}

	return &ImageService{
		mediaDir:           mediaDir,
		maxUploadSizeBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

// MediaDir returns the directory uploads are stored in; the server mounts
// it as a static route.
func (s *ImageService) MediaDir() string {
	return s.mediaDir
}

func (s *ImageService) Upload(in UploadImageInput) (*UploadedImage, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") &&
		!isMatchingContentType(provided, formatToMime(format)) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	master := resizeToFit(decoded, headerImageMaxSize, headerImageMaxSize)

	encodedJPEG, err := encodeJPEG(master, headerJPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	encodedWebP, err := encodeWebP(master, headerWebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	hash := imageHash(in.UserID, encodedJPEG)
	jpegPath := filepath.Join(s.mediaDir, hash+".jpg")
	webpPath := filepath.Join(s.mediaDir, hash+".webp")

	if err := writeBytesToFile(jpegPath, encodedJPEG); err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := writeBytesToFile(webpPath, encodedWebP); err != nil {
		return nil, models.NewInternalError(err)
	}

	return &UploadedImage{
		URL:     "/media/" + hash + ".jpg",
		WebPURL: "/media/" + hash + ".webp",
	}, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func formatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func imageHash(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o640)
}
