// Package upload coordinates the cover image upload of a draft session.
//
// Only one upload may be outstanding per Coordinator; a second request is
// rejected with ErrInProgress. Inputs are validated before any network call.
// On success the image reference is handed to the attach callback, which the
// draft session uses to store it and flush the draft immediately.
package upload

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophdraft/internal/client/models"
	"github.com/dmitrijs2005/gophdraft/internal/logging"
)

// DefaultMaxSize is the largest accepted image, 5 MiB.
const DefaultMaxSize int64 = 5 << 20

var (
	ErrNotImage   = errors.New("file is not an image")
	ErrTooLarge   = errors.New("image is too large")
	ErrEmpty      = errors.New("image is empty")
	ErrInProgress = errors.New("another upload is in progress")
)

// ImageUploader stores image bytes and returns a reference to them.
type ImageUploader interface {
	UploadImage(ctx context.Context, data []byte, mimeType string) (models.ImageRef, error)
}

// AttachFunc receives the reference of a finished upload.
type AttachFunc func(ctx context.Context, ref models.ImageRef)

type Coordinator struct {
	uploader ImageUploader
	maxSize  int64
	log      logging.Logger

	mu       sync.Mutex
	status   models.ImageUploadStatus
	inFlight bool
	attach   AttachFunc
	onStatus func(models.ImageUploadStatus)
}

func New(uploader ImageUploader, maxSize int64, log logging.Logger) *Coordinator {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Coordinator{uploader: uploader, maxSize: maxSize, log: log}
}

// OnAttach sets the callback invoked with the reference of every successful upload.
func (c *Coordinator) OnAttach(fn AttachFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attach = fn
}

// OnStatus sets the callback invoked after every status change.
func (c *Coordinator) OnStatus(fn func(models.ImageUploadStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = fn
}

// Status returns the current upload status.
func (c *Coordinator) Status() models.ImageUploadStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Validate checks mime type and size without touching the network.
func (c *Coordinator) Validate(mimeType string, size int64) error {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("%w: %q", ErrNotImage, mimeType)
	}
	if size <= 0 {
		return ErrEmpty
	}
	if size > c.maxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, c.maxSize)
	}
	return nil
}

// Upload validates and uploads the image. Validation failures leave the
// status unchanged. The draft is never touched on failure.
func (c *Coordinator) Upload(ctx context.Context, data []byte, mimeType string, size int64) (models.ImageRef, error) {
	if int64(len(data)) > size {
		size = int64(len(data))
	}
	if err := c.Validate(mimeType, size); err != nil {
		return models.ImageRef{}, err
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return models.ImageRef{}, ErrInProgress
	}
	c.inFlight = true
	c.mu.Unlock()
	c.setStatus(models.UploadUploading)

	ref, err := c.uploader.UploadImage(ctx, data, mimeType)

	c.mu.Lock()
	c.inFlight = false
	attach := c.attach
	c.mu.Unlock()

	if err != nil {
		c.log.Warn(ctx, "image upload failed", "mime_type", mimeType, "size", size, "error", err)
		c.setStatus(models.UploadError)
		return models.ImageRef{}, err
	}

	c.log.Info(ctx, "image uploaded", "url", ref.URL, "size", size)
	c.setStatus(models.UploadSuccess)
	if attach != nil {
		attach(ctx, ref)
	}
	return ref, nil
}

// Reset returns the status to Idle, e.g. after the image was removed. It is
// a no-op while an upload is outstanding.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.setStatus(models.UploadIdle)
}

func (c *Coordinator) setStatus(s models.ImageUploadStatus) {
	c.mu.Lock()
	c.status = s
	fn := c.onStatus
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
