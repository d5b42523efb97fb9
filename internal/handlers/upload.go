package handlers

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"skillswap/server/internal/database"
	"skillswap/server/internal/middleware"
	"skillswap/server/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// storedFile describes a saved attachment.
type storedFile struct {
	Type     string
	Name     string
	Size     int64
	MimeType string
	URL      string
	Metadata map[string]interface{}
}

const maxAvatarBytes = 2 << 20

var avatarExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

var blockedExtensions = map[string]bool{
	".exe": true, ".bat": true, ".cmd": true, ".sh": true,
	".php": true, ".js": true, ".msi": true, ".com": true,
}

// saveUploadedFile stores an attachment under a type-specific folder
// and returns its descriptor. The message type is inferred from the
// MIME type; a declared "voice" type is honored for audio uploads.
func saveUploadedFile(fh *multipart.FileHeader, declaredType string) (*storedFile, error) {
	if fh.Size > Cfg.UploadMaxBytes() {
		return nil, fmt.Errorf("file exceeds the %dMB limit", Cfg.UploadMaxMB)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if blockedExtensions[ext] {
		return nil, errors.New("this file type is not allowed")
	}

	mimeType := fh.Header.Get("Content-Type")
	var msgType, subdir string
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		msgType, subdir = models.MessageTypeImage, "images"
	case strings.HasPrefix(mimeType, "video/"):
		msgType, subdir = models.MessageTypeVideo, "videos"
	case strings.HasPrefix(mimeType, "audio/"):
		msgType, subdir = models.MessageTypeAudio, "audio"
		if declaredType == models.MessageTypeVoice {
			msgType = models.MessageTypeVoice
		}
	default:
		msgType, subdir = models.MessageTypeFile, "files"
	}

	dir := filepath.Join(Cfg.UploadDir, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New("failed to prepare upload directory")
	}

	filename := uuid.New().String() + ext
	dst := filepath.Join(dir, filename)
	if err := copyUpload(fh, dst); err != nil {
		return nil, errors.New("failed to save file")
	}

	stored := &storedFile{
		Type:     msgType,
		Name:     fh.Filename,
		Size:     fh.Size,
		MimeType: mimeType,
		URL:      "/uploads/" + subdir + "/" + filename,
	}

	if msgType == models.MessageTypeImage {
		if w, h, err := imageDimensions(dst); err == nil {
			stored.Metadata = map[string]interface{}{"width": w, "height": h}
		}
	}

	return stored, nil
}

func copyUpload(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// imageDimensions reads the header of a stored image without decoding
// the full pixel data.
func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// deleteStoredFile removes an attachment from disk. Best effort.
func deleteStoredFile(fileURL string) {
	if !strings.HasPrefix(fileURL, "/uploads/") {
		return
	}
	rel := strings.TrimPrefix(fileURL, "/uploads/")
	if strings.Contains(rel, "..") {
		return
	}
	os.Remove(filepath.Join(Cfg.UploadDir, filepath.FromSlash(rel)))
}

// UploadAvatar stores a new profile picture for the caller.
func UploadAvatar(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	fh, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Avatar file is required",
		})
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") || !avatarExtensions[ext] {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Avatar must be an image (jpg, png, gif or webp)",
		})
	}
	if fh.Size > maxAvatarBytes {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Avatar must be 2MB or smaller",
		})
	}

	dir := filepath.Join(Cfg.UploadDir, "avatars")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to prepare upload directory",
		})
	}

	filename := uuid.New().String() + strings.ToLower(filepath.Ext(fh.Filename))
	if err := copyUpload(fh, filepath.Join(dir, filename)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save avatar",
		})
	}

	avatarURL := "/uploads/avatars/" + filename

	// Replace the old avatar on disk
	var oldAvatar *string
	database.Pool.QueryRow(context.Background(),
		"SELECT avatar FROM users WHERE id = $1", userID).Scan(&oldAvatar)

	_, err = database.Pool.Exec(context.Background(),
		"UPDATE users SET avatar = $2, updated_at = NOW() WHERE id = $1", userID, avatarURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update avatar",
		})
	}

	if oldAvatar != nil {
		deleteStoredFile(*oldAvatar)
	}

	user, err := getUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch user",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user.ToResponse(),
	})
}

var servableFolders = map[string]bool{
	"images": true, "videos": true, "audio": true, "files": true, "avatars": true,
}

// GetFile serves a stored upload.
func GetFile(c *fiber.Ctx) error {
	folder := c.Params("folder")
	filename := c.Params("filename")

	if !servableFolders[folder] {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "File not found",
		})
	}

	// No path traversal
	if filename == "" || strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid file name",
		})
	}

	path := filepath.Join(Cfg.UploadDir, folder, filename)
	if _, err := os.Stat(path); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "File not found",
		})
	}

	return c.SendFile(path)
}
