// Package imagehost stores uploaded images in an S3 compatible bucket and serves them by public URL.
package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/delordemm1/agency-portfolio-api/internal/domainerr"
)

const MaxUploadBytes = 10 << 20

var (
	ErrUnsupportedImage = domainerr.New("ErrUnsupportedImage", http.StatusUnsupportedMediaType,
		"only JPEG and PNG images are accepted", "urn:problem:image/err-unsupported-image")
	ErrImageTooLarge = domainerr.New("ErrImageTooLarge", http.StatusRequestEntityTooLarge,
		"image exceeds the 10 MB limit", "urn:problem:image/err-image-too-large")
)

// Upload is a single file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Host is the image hosting collaborator used by the catalog.
type Host interface {
	Upload(ctx context.Context, u Upload) (string, error)
	// Delete removes a previously uploaded image. It is best-effort and never fails the caller.
	Delete(ctx context.Context, url string) bool
}

type objectStore interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
	MaxWidth  int
}

type MinIOHost struct {
	store     objectStore
	bucket    string
	publicURL string
	maxWidth  int
	log       *slog.Logger
}

// NewMinIOHost connects to the bucket, creating it when missing.
func NewMinIOHost(ctx context.Context, cfg Config, log *slog.Logger) (*MinIOHost, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("created image bucket", "bucket", cfg.Bucket)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return newHost(client, cfg.Bucket, publicURL, cfg.MaxWidth, log), nil
}

func newHost(store objectStore, bucket, publicURL string, maxWidth int, log *slog.Logger) *MinIOHost {
	return &MinIOHost{
		store:     store,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxWidth:  maxWidth,
		log:       log,
	}
}

func (h *MinIOHost) Upload(ctx context.Context, u Upload) (string, error) {
	format, ext, ok := formatFor(u.ContentType)
	if !ok {
		return "", ErrUnsupportedImage.WithDetail(fmt.Sprintf("%s: unsupported content type %q", u.Filename, u.ContentType))
	}

	raw, err := io.ReadAll(io.LimitReader(u.Body, MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(raw) > MaxUploadBytes {
		return "", ErrImageTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", ErrUnsupportedImage.WithDetail(u.Filename + ": not a valid image").WithCause(err)
	}
	if h.maxWidth > 0 && img.Bounds().Dx() > h.maxWidth {
		img = imaging.Resize(img, h.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	key := "images/" + uuid.NewString() + ext
	_, err = h.store.PutObject(ctx, h.bucket, key, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: u.ContentType,
	})
	if err != nil {
		h.log.Error("image upload failed", "key", key, "error", err)
		return "", domainerr.ErrProviderError.WithDetail("image upload failed").WithCause(err)
	}
	h.log.Info("image uploaded", "key", key, "bytes", buf.Len())
	return h.publicURL + "/" + key, nil
}

func (h *MinIOHost) Delete(ctx context.Context, url string) bool {
	key, ok := h.keyFor(url)
	if !ok {
		h.log.Warn("refusing to delete image outside the bucket", "url", url)
		return false
	}
	if err := h.store.RemoveObject(ctx, h.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		h.log.Warn("image delete failed", "key", key, "error", err)
		return false
	}
	return true
}

func (h *MinIOHost) keyFor(url string) (string, bool) {
	key, found := strings.CutPrefix(url, h.publicURL+"/")
	if !found || key == "" {
		return "", false
	}
	return key, true
}

func formatFor(contentType string) (imaging.Format, string, bool) {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return imaging.JPEG, ".jpg", true
	case "image/png":
		return imaging.PNG, ".png", true
	}
	return 0, "", false
}
