package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage applies transforms at upload time.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

func (s *CloudinaryStorage) UploadImage(ctx context.Context, localPath, folder string, t Transform) (string, error) {
	params := uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "image",
		Transformation: t.String(),
		UniqueFilename: api.Bool(true),
	}
	result, err := s.cld.Upload.Upload(ctx, localPath, params)
	if err != nil {
		return "", fmt.Errorf("cloudinary: failed to upload image: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("cloudinary: no URL returned")
	}
	return result.SecureURL, nil
}

var versionSegment = regexp.MustCompile(`^v[0-9]+$`)

// cloudinaryPublicID extracts the public ID from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1712/services/abc/photo.jpg.
func cloudinaryPublicID(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("cloudinary: bad file URL: %w", err)
	}
	_, rest, ok := strings.Cut(u.Path, "/upload/")
	if !ok || rest == "" {
		return "", fmt.Errorf("cloudinary: %s is not an upload URL", fileURL)
	}
	segments := strings.Split(rest, "/")
	if len(segments) > 1 && versionSegment.MatchString(segments[0]) {
		segments = segments[1:]
	}
	id := strings.Join(segments, "/")
	return strings.TrimSuffix(id, path.Ext(id)), nil
}

func (s *CloudinaryStorage) DeleteFile(ctx context.Context, fileURL string) error {
	publicID, err := cloudinaryPublicID(fileURL)
	if err != nil {
		return err
	}
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("cloudinary: failed to delete file: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	return nil
}
