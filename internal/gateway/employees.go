package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"safisha/internal/core"
	"safisha/internal/store"
)

// MaxPhotoBytes caps employee photo uploads.
const MaxPhotoBytes = 2 << 20

var (
	ErrPhotoTooLarge = errors.New("photo exceeds 2MB")
	ErrNotImage      = errors.New("photo must be an image")
)

type Employees struct {
	*Repository[core.Employee]
	photos store.PhotoStore
	now    func() time.Time
}

// UploadPhoto stores an employee photo and records its location on the
// employee. With a photo-capable remote the image is hosted there;
// otherwise it is inlined as a base64 data URI.
func (e *Employees) UploadPhoto(ctx context.Context, id, filename, contentType string, data []byte) (core.Employee, error) {
	var zero core.Employee
	if len(data) > MaxPhotoBytes {
		return zero, ErrPhotoTooLarge
	}
	if !strings.HasPrefix(contentType, "image/") {
		return zero, fmt.Errorf("%w: got %q", ErrNotImage, contentType)
	}

	if _, err := e.find(ctx, id); err != nil {
		return zero, fmt.Errorf("upload photo for %s: %w", id, err)
	}

	var photo string
	if e.Remote() && e.photos != nil {
		name := fmt.Sprintf("%s-%d%s", id, e.now().UnixMilli(), photoExt(filename, contentType))
		url, err := e.photos.UploadPhoto(ctx, name, contentType, data)
		if err != nil {
			return zero, fmt.Errorf("upload photo for %s: %w", id, err)
		}
		photo = url
	} else {
		photo = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	}

	return e.Update(ctx, id, map[string]any{"photo": photo})
}

func photoExt(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}
