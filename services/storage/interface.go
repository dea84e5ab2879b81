package storage

import (
	"context"
	"fmt"
)

// Transform describes how an uploaded image is cropped and resized.
type Transform struct {
	Width  int
	Height int
	// Crop is "fill" or "thumb".
	Crop string
}

// String renders the transform in Cloudinary's URL syntax, e.g. c_fill,g_auto,w_400,h_400.
func (t Transform) String() string {
	if t.Width == 0 && t.Height == 0 {
		return ""
	}
	crop := t.Crop
	if crop == "" {
		crop = "fill"
	}
	return fmt.Sprintf("c_%s,g_auto,w_%d,h_%d", crop, t.Width, t.Height)
}

var (
	AvatarTransform  = Transform{Width: 400, Height: 400, Crop: "thumb"}
	ServiceTransform = Transform{Width: 1200, Height: 800, Crop: "fill"}
)

// StorageService stores member images.
type StorageService interface {
	// UploadImage stores the file at localPath under folder and returns its public URL.
	UploadImage(ctx context.Context, localPath, folder string, t Transform) (string, error)
	// DeleteFile removes an image by the URL UploadImage returned for it.
	DeleteFile(ctx context.Context, fileURL string) error
}
