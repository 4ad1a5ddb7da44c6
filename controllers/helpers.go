package controllers

import (
	"errors"
	"net/http"

	"research-proposal-api/config"
	"research-proposal-api/models"
	"research-proposal-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func notifier() *services.NotificationService {
	return services.NewNotificationService(config.DB)
}

func proposalService() *services.ProposalService {
	return services.NewProposalService(config.DB, notifier())
}

func reviewService() *services.ReviewService {
	return services.NewReviewService(config.DB, notifier())
}

func approvalService() *services.ApprovalService {
	return services.NewApprovalService(config.DB, notifier())
}

func monitoringService() *services.MonitoringService {
	return services.NewMonitoringService(config.DB, notifier())
}

func userService() *services.UserService {
	return services.NewUserService(config.DB)
}

// currentUser loads the authenticated user with the associations the
// permission resolver needs.
func currentUser(c *gin.Context) (models.User, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.User{}, false
	}

	var user models.User
	err := config.DB.
		Preload("Roles").Preload("Dosen").Preload("Student").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return models.User{}, false
	}
	return user, true
}

// respondServiceError maps service sentinels onto HTTP status codes. A
// permission failure here means the UI let an action through that the
// resolver forbids; it is reported but treated as a client defect.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrNotPermitted):
		c.JSON(http.StatusForbidden, gin.H{"error": "Action not permitted in the current state"})
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrAlreadyEvaluated),
		errors.Is(err, services.ErrReviewerResponded),
		errors.Is(err, services.ErrMemberResponded),
		errors.Is(err, services.ErrReportAlreadySubmitted),
		errors.Is(err, services.ErrCredentialTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrReviewerLimit),
		errors.Is(err, services.ErrReviewerConflict),
		errors.Is(err, services.ErrNotReviewerRole),
		errors.Is(err, services.ErrNoReportFlow),
		errors.Is(err, services.ErrUnknownRole),
		errors.Is(err, services.ErrInvalidAccount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
