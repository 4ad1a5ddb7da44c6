package controllers

import (
	"net/http"
	"strconv"

	"research-proposal-api/config"
	"research-proposal-api/models"
	"research-proposal-api/services"
	"research-proposal-api/utils"

	"github.com/gin-gonic/gin"
)

// GetUsers lists active accounts with their roles. Used by the proposal
// form to pick member researchers.
func GetUsers(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var users []models.User
	if err := config.DB.
		Preload("Roles").Preload("Dosen").Preload("Student").
		Where("delete_at IS NULL").
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetDosen lists lecturer profiles.
func GetDosen(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var dosen []models.Dosen
	if err := config.DB.
		Preload("Faculty").
		Where("delete_at IS NULL").
		Find(&dosen).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dosen": dosen})
}

// GetStudents lists student profiles.
func GetStudents(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var students []models.Student
	if err := config.DB.
		Preload("Faculty").
		Where("delete_at IS NULL").
		Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students})
}

// GetReviewers lists accounts holding the REVIEWER role, the candidate set
// for reviewer assignment.
func GetReviewers(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var reviewers []models.User
	if err := config.DB.
		Preload("Roles").Preload("Dosen").
		Joins("JOIN user_roles ON user_roles.user_id = users.user_id").
		Joins("JOIN roles ON roles.role_id = user_roles.role_id").
		Where("roles.name = ? AND users.delete_at IS NULL", models.RoleReviewer).
		Find(&reviewers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviewers": reviewers})
}

// AccountRequest is the admin payload for creating or editing a user.
// Password is required on create only; omitting roles on update keeps the
// current role set.
type AccountRequest struct {
	Username  string   `json:"username" binding:"required"`
	Email     string   `json:"email" binding:"required"`
	Password  string   `json:"password"`
	UserType  string   `json:"user_type" binding:"required"`
	DosenID   *int     `json:"dosen_id"`
	StudentID *int     `json:"student_id"`
	Roles     []string `json:"roles"`
}

func (r AccountRequest) toInput() services.AccountInput {
	return services.AccountInput{
		Username:  utils.SanitizeInput(r.Username),
		Email:     utils.SanitizeInput(r.Email),
		Password:  r.Password,
		UserType:  r.UserType,
		DosenID:   r.DosenID,
		StudentID: r.StudentID,
		Roles:     r.Roles,
	}
}

// CreateUser registers an account with its roles. Admin only.
func CreateUser(c *gin.Context) {
	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}

	user, err := userService().CreateAccount(req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created",
		"user":    user,
	})
}

// UpdateUser edits an account and optionally its roles. Admin only.
func UpdateUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := userService().UpdateAccount(userID, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated",
		"user":    user,
	})
}

// DeleteUser soft-deletes an account. Admin only.
func DeleteUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	if err := userService().DeleteAccount(userID, actor); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
