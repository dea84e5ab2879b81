package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"servswap/services/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage("me.JPG", 1024))
	assert.NoError(t, ValidateImage("shot.webp", MaxImageSize))

	for name, size := range map[string]int64{
		"doc.pdf":   10,
		"noext":     10,
		"empty.png": 0,
		"huge.png":  MaxImageSize + 1,
	} {
		err := ValidateImage(name, size)
		assert.True(t, apperr.Is(err, apperr.KindInvalid), name)
	}
}

func TestTransformString(t *testing.T) {
	assert.Equal(t, "c_thumb,g_auto,w_400,h_400", AvatarTransform.String())
	assert.Equal(t, "c_fill,g_auto,w_1200,h_800", ServiceTransform.String())
	assert.Equal(t, "c_fill,g_auto,w_100,h_0", Transform{Width: 100}.String())
	assert.Empty(t, Transform{}.String())
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "services/abc/upload-1.png", objectName("/services/abc/", "/tmp/upload-1.png"))
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func TestSaveUpload(t *testing.T) {
	content := []byte("\x89PNG fake image bytes")
	path, cleanup, err := SaveUpload(fileHeader(t, "Avatar.PNG", content))
	require.NoError(t, err)

	assert.Equal(t, ".png", filepath.Ext(path))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveUploadRejectsBadType(t *testing.T) {
	_, _, err := SaveUpload(fileHeader(t, "notes.txt", []byte("hello")))
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}

func TestCloudinaryPublicID(t *testing.T) {
	id, err := cloudinaryPublicID("https://res.cloudinary.com/demo/image/upload/v1712345678/services/abc/photo_x1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "services/abc/photo_x1", id)

	id, err = cloudinaryPublicID("https://res.cloudinary.com/demo/image/upload/avatars/u1/me.png")
	require.NoError(t, err)
	assert.Equal(t, "avatars/u1/me", id)

	_, err = cloudinaryPublicID("https://cdn.example.com/avatars/u1/me.png")
	assert.Error(t, err)
}

func TestFirebaseObjectPath(t *testing.T) {
	p, err := firebaseObjectPath("https://firebasestorage.googleapis.com/v0/b/servswap.appspot.com/o/services%2Fabc%2F1f2e.png?alt=media")
	require.NoError(t, err)
	assert.Equal(t, "services/abc/1f2e.png", p)

	_, err = firebaseObjectPath("https://res.cloudinary.com/demo/image/upload/x.png")
	assert.Error(t, err)
}
