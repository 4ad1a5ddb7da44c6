package controllers

import (
	"net/http"
	"strconv"

	"research-proposal-api/config"
	"research-proposal-api/models"
	"research-proposal-api/services"

	"github.com/gin-gonic/gin"
)

// GetFaculties lists faculties for the proposal and profile forms.
func GetFaculties(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var faculties []models.Faculty
	if err := config.DB.
		Where("delete_at IS NULL").
		Find(&faculties).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"faculties": faculties})
}

type FacultyRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateFaculty adds a faculty. Admin only.
func CreateFaculty(c *gin.Context) {
	var req FacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	faculty, err := userService().CreateFaculty(services.FacultyInput{Name: req.Name})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Faculty created",
		"faculty": faculty,
	})
}

// UpdateFaculty renames a faculty. Admin only.
func UpdateFaculty(c *gin.Context) {
	facultyID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid faculty id"})
		return
	}

	var req FacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	faculty, err := userService().UpdateFaculty(facultyID, services.FacultyInput{Name: req.Name})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Faculty updated",
		"faculty": faculty,
	})
}

// DeleteFaculty soft-deletes a faculty with no linked profiles. Admin only.
func DeleteFaculty(c *gin.Context) {
	facultyID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid faculty id"})
		return
	}

	if err := userService().DeleteFaculty(facultyID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Faculty deleted"})
}
