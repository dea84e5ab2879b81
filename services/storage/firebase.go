package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"servswap/config"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// FirebaseStorage keeps originals in the Firebase bucket. The requested transform is
// recorded as object metadata for the client-side resizer.
type FirebaseStorage struct {
	client     *storage.Client
	bucketName string
}

func NewFirebaseStorage(ctx context.Context, credentialsPath, bucketName string) (*FirebaseStorage, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("firebase storage bucket not configured")
	}
	client, err := storage.NewClient(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &FirebaseStorage{client: client, bucketName: bucketName}, nil
}

func (s *FirebaseStorage) UploadImage(ctx context.Context, localPath, folder string, t Transform) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(localPath))
	objectPath := objectName(folder, uuid.New().String()+ext)
	w := s.client.Bucket(s.bucketName).Object(objectPath).NewWriter(ctx)
	w.ACL = []storage.ACLRule{{Entity: storage.AllUsers, Role: storage.RoleReader}}
	w.ContentType = mime.TypeByExtension(ext)
	if tr := t.String(); tr != "" {
		w.Metadata = map[string]string{"transform": tr}
	}

	if _, err := io.Copy(w, file); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to copy file to storage: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		s.bucketName, url.QueryEscape(objectPath)), nil
}

// firebaseObjectPath recovers the object name from a download URL built by UploadImage.
func firebaseObjectPath(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("bad file URL: %w", err)
	}
	_, escaped, ok := strings.Cut(u.EscapedPath(), "/o/")
	if !ok || escaped == "" {
		return "", fmt.Errorf("%s is not a firebase storage URL", fileURL)
	}
	return url.PathUnescape(escaped)
}

func (s *FirebaseStorage) DeleteFile(ctx context.Context, fileURL string) error {
	objectPath, err := firebaseObjectPath(fileURL)
	if err != nil {
		return err
	}
	err = s.client.Bucket(s.bucketName).Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// New picks the backend named by STORAGE_BACKEND.
func New(ctx context.Context) (StorageService, error) {
	cfg := config.AppConfig
	switch cfg.StorageBackend {
	case "firebase":
		return NewFirebaseStorage(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseBucket)
	case "", "cloudinary":
		return NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
