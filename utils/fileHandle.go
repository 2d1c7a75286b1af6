package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"lms/config"

	"github.com/google/uuid"
)

var (
	ErrFileType = errors.New("file type not allowed")
	ErrFileSize = errors.New("file too large")
)

var allowedExtensions = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".zip": true, ".doc": true, ".docx": true, ".txt": true, ".mp4": true,
}

// SaveUploadedFile stores the upload under destDir with a random name and returns that name.
func SaveUploadedFile(file *multipart.FileHeader, destDir string, maxBytes int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", ErrFileType
	}
	if maxBytes > 0 && file.Size > maxBytes {
		return "", ErrFileSize
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	newFilename := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(destDir, newFilename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return newFilename, nil
}

func GetFileURL(filename string) string {
	if filename == "" {
		return ""
	}
	return "/uploads/" + filename
}

// StoreUpload saves a form file under the configured upload directory and returns its public URL.
func StoreUpload(file *multipart.FileHeader) (string, error) {
	maxBytes := int64(config.AppConfig.MaxUploadMB) << 20
	name, err := SaveUploadedFile(file, config.AppConfig.UploadDir, maxBytes)
	if err != nil {
		return "", err
	}
	return GetFileURL(name), nil
}
