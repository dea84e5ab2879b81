package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"servswap/services/apperr"
)

const MaxImageSize = 5 * 1024 * 1024

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ValidateImage checks an upload's extension and size.
func ValidateImage(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return apperr.Invalid("unsupported image type %q; use jpg, jpeg, png or webp", ext)
	}
	if size <= 0 {
		return apperr.Invalid("image is empty")
	}
	if size > MaxImageSize {
		return apperr.Invalid("image exceeds %d MB", MaxImageSize/(1024*1024))
	}
	return nil
}

// SaveUpload validates a multipart image and copies it to a temp file.
// The caller must invoke cleanup once the file has been uploaded.
func SaveUpload(fh *multipart.FileHeader) (path string, cleanup func(), err error) {
	if err := ValidateImage(fh.Filename, fh.Size); err != nil {
		return "", nil, err
	}
	src, err := fh.Open()
	if err != nil {
		return "", nil, apperr.Invalid("cannot read upload")
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "upload-*"+strings.ToLower(filepath.Ext(fh.Filename)))
	if err != nil {
		return "", nil, apperr.Internal("failed to stage upload", err)
	}
	cleanup = func() { os.Remove(tmp.Name()) }

	n, err := io.Copy(tmp, io.LimitReader(src, MaxImageSize+1))
	tmp.Close()
	if err != nil {
		cleanup()
		return "", nil, apperr.Internal("failed to stage upload", err)
	}
	if n > MaxImageSize {
		cleanup()
		return "", nil, apperr.Invalid("image exceeds %d MB", MaxImageSize/(1024*1024))
	}
	return tmp.Name(), cleanup, nil
}

func objectName(folder, localPath string) string {
	return fmt.Sprintf("%s/%s", strings.Trim(folder, "/"), filepath.Base(localPath))
}
