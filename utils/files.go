package utils

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Accepted upload extensions for proposal and report documents.
var allowedDocumentExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// UploadPath resolves the configured upload root.
func UploadPath() string {
	path := os.Getenv("UPLOAD_PATH")
	if path == "" {
		path = "./uploads"
	}
	return path
}

// ValidateDocumentUpload rejects files that are not document formats or
// exceed the size limit (bytes).
func ValidateDocumentUpload(file *multipart.FileHeader, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedDocumentExtensions[ext] {
		return fmt.Errorf("file type %s is not allowed", ext)
	}
	if file.Size > maxSize {
		return fmt.Errorf("file exceeds the %d MB limit", maxSize/(1024*1024))
	}
	return nil
}

// StoreUpload saves the upload under UPLOAD_PATH/yyyy/mm with a uuid name,
// keeping the original filename only in the database. Returns the stored
// path relative to the upload root.
func StoreUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	subDir := time.Now().Format("2006/01")
	dir := filepath.Join(UploadPath(), subDir)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	fullPath := filepath.Join(dir, storedName)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		return "", err
	}

	return filepath.Join(subDir, storedName), nil
}
