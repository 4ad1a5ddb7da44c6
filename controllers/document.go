package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"research-proposal-api/config"
	"research-proposal-api/models"
	"research-proposal-api/utils"

	"github.com/gin-gonic/gin"
)

// storeFileUpload validates and persists a multipart document, returning
// the created file_uploads row. On failure the response has already been
// written.
func storeFileUpload(c *gin.Context, user models.User, field string) (*models.FileUpload, bool) {
	file, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return nil, false
	}

	if err := utils.ValidateDocumentUpload(file, maxDocumentSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	storedPath, err := utils.StoreUpload(c, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return nil, false
	}

	now := time.Now()
	upload := models.FileUpload{
		OriginalName: file.Filename,
		StoredPath:   storedPath,
		FileSize:     file.Size,
		MimeType:     file.Header.Get("Content-Type"),
		UploadedBy:   user.UserID,
		UploadedAt:   now,
		CreateAt:     now,
		UpdateAt:     now,
	}
	if err := config.DB.Create(&upload).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record file"})
		return nil, false
	}

	return &upload, true
}

// DownloadDocument streams a stored document back to an authenticated user.
func DownloadDocument(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	fileID, err := strconv.Atoi(c.Param("file_id"))
	if err != nil || fileID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return
	}

	var document models.FileUpload
	if err := config.DB.Where("file_id = ? AND delete_at IS NULL", fileID).First(&document).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	fullPath := filepath.Join(utils.UploadPath(), document.StoredPath)
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found on disk"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.OriginalName))
	c.File(fullPath)
}
