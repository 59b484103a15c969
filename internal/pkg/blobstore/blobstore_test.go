package blobstore

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectKey(t *testing.T) {
	key := NewObjectKey("Photo.JPG")
	assert.True(t, strings.HasSuffix(key, ".jpg"), "extension is preserved lowercase, got %s", key)

	assert.False(t, strings.Contains(NewObjectKey("noext"), "."))

	if NewObjectKey("a.png") == NewObjectKey("a.png") {
		t.Fatal("object keys must be unique per call")
	}
}

func TestLocalStorageURLFor(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "http://localhost:4000/")
	require.NoError(t, err)

	url := storage.URLFor("abc.png")
	assert.Equal(t, "http://localhost:4000/uploads/abc.png", url)
}

func TestLocalStorageStore(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir, "http://localhost:4000")
	require.NoError(t, err)

	key, err := storage.Store(newUploadHeader(t, "human.png", []byte("fake image bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake image bytes"), data)
}

// newUploadHeader builds a real multipart.FileHeader via an in-memory form.
func newUploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["file"][0]
}
