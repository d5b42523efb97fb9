package handlers

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/server/internal/config"
	"skillswap/server/internal/models"
)

// buildFileHeader assembles a multipart.FileHeader the way fiber would
// hand it to a handler.
func buildFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func withUploadConfig(t *testing.T, maxMB int) {
	t.Helper()
	old := Cfg
	Cfg = &config.Config{UploadDir: t.TempDir(), UploadMaxMB: maxMB}
	t.Cleanup(func() { Cfg = old })
}

func TestSaveUploadedFileImage(t *testing.T) {
	withUploadConfig(t, 10)

	fh := buildFileHeader(t, "photo.png", "image/png", pngBytes(t, 4, 6))
	stored, err := saveUploadedFile(fh, "")
	require.NoError(t, err)

	assert.Equal(t, models.MessageTypeImage, stored.Type)
	assert.Equal(t, "photo.png", stored.Name)
	assert.Contains(t, stored.URL, "/uploads/images/")
	require.NotNil(t, stored.Metadata)
	assert.Equal(t, 4, stored.Metadata["width"])
	assert.Equal(t, 6, stored.Metadata["height"])

	// File exists on disk under the type folder
	rel := stored.URL[len("/uploads/"):]
	_, err = os.Stat(filepath.Join(Cfg.UploadDir, rel))
	assert.NoError(t, err)
}

func TestSaveUploadedFileGeneric(t *testing.T) {
	withUploadConfig(t, 10)

	fh := buildFileHeader(t, "notes.pdf", "application/pdf", []byte("%PDF-1.4"))
	stored, err := saveUploadedFile(fh, "")
	require.NoError(t, err)

	assert.Equal(t, models.MessageTypeFile, stored.Type)
	assert.Contains(t, stored.URL, "/uploads/files/")
	assert.Nil(t, stored.Metadata)
	assert.Equal(t, int64(len("%PDF-1.4")), stored.Size)
}

func TestSaveUploadedFileVoice(t *testing.T) {
	withUploadConfig(t, 10)

	fh := buildFileHeader(t, "memo.webm", "audio/webm", []byte("fake audio"))
	stored, err := saveUploadedFile(fh, models.MessageTypeVoice)
	require.NoError(t, err)

	assert.Equal(t, models.MessageTypeVoice, stored.Type)
	assert.Contains(t, stored.URL, "/uploads/audio/")

	// Undeclared audio stays plain audio
	fh = buildFileHeader(t, "song.mp3", "audio/mpeg", []byte("fake audio"))
	stored, err = saveUploadedFile(fh, "")
	require.NoError(t, err)
	assert.Equal(t, models.MessageTypeAudio, stored.Type)
}

func TestSaveUploadedFileBlockedExtension(t *testing.T) {
	withUploadConfig(t, 10)

	fh := buildFileHeader(t, "malware.exe", "application/octet-stream", []byte("MZ"))
	_, err := saveUploadedFile(fh, "")
	assert.Error(t, err)
}

func TestSaveUploadedFileTooLarge(t *testing.T) {
	withUploadConfig(t, 1)

	fh := buildFileHeader(t, "big.bin", "application/octet-stream", bytes.Repeat([]byte("x"), 1<<20+1))
	_, err := saveUploadedFile(fh, "")
	assert.Error(t, err)
}

func TestDeleteStoredFile(t *testing.T) {
	withUploadConfig(t, 10)

	dir := filepath.Join(Cfg.UploadDir, "files")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "doomed.txt")
	require.NoError(t, os.WriteFile(path, []byte("bye"), 0644))

	deleteStoredFile("/uploads/files/doomed.txt")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Traversal attempts and foreign URLs are ignored
	outside := filepath.Join(Cfg.UploadDir, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("stay"), 0644))
	deleteStoredFile("/uploads/files/../keep.txt")
	deleteStoredFile("https://cdn.example.com/file.txt")
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
