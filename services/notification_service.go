package services

import (
	"fmt"
	"log"
	"time"

	"research-proposal-api/config"
	"research-proposal-api/models"

	"gorm.io/gorm"
)

// NotificationService records workflow notifications for the users who must
// act next and mirrors them to email. Delivery is best-effort: a transition
// never fails because a notification could not be written or sent.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify creates a notification row for one user and sends a best-effort
// email in the background.
func (s *NotificationService) Notify(userID int, title, message, typ string, proposalID *int) {
	if s == nil || s.db == nil || userID == 0 {
		return
	}

	var related *uint
	if proposalID != nil {
		v := uint(*proposalID)
		related = &v
	}

	n := models.Notification{
		UserID:            uint(userID),
		Title:             title,
		Message:           message,
		Type:              typ,
		RelatedProposalID: related,
		IsRead:            false,
		CreateAt:          time.Now(),
	}
	if err := s.db.Create(&n).Error; err != nil {
		log.Printf("notification: failed to create for user %d: %v", userID, err)
		return
	}

	go s.sendEmail(userID, title, message)
}

// NotifyUsers fans out one message to several users.
func (s *NotificationService) NotifyUsers(userIDs []int, title, message, typ string, proposalID *int) {
	seen := make(map[int]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		s.Notify(id, title, message, typ, proposalID)
	}
}

// NotifyRole notifies every active user holding the named role. Used when a
// transition hands responsibility to a role rather than a person, e.g.
// "all members accepted" handing the proposal to the faculty head.
func (s *NotificationService) NotifyRole(roleName, title, message, typ string, proposalID *int) {
	if s == nil || s.db == nil {
		return
	}

	var ids []int
	err := s.db.Model(&models.User{}).
		Joins("JOIN user_roles ON user_roles.user_id = users.user_id").
		Joins("JOIN roles ON roles.role_id = user_roles.role_id").
		Where("roles.name = ? AND users.delete_at IS NULL", roleName).
		Pluck("users.user_id", &ids).Error
	if err != nil {
		log.Printf("notification: failed to resolve role %s: %v", roleName, err)
		return
	}

	s.NotifyUsers(ids, title, message, typ, proposalID)
}

func (s *NotificationService) sendEmail(userID int, subject, message string) {
	var user models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		return
	}
	if user.Email == "" {
		return
	}

	html := fmt.Sprintf("<p>%s</p><p>Silakan masuk ke sistem penelitian untuk menindaklanjuti.</p>", message)
	if err := config.SendMail([]string{user.Email}, subject, html); err != nil {
		log.Printf("notification: email to user %d failed: %v", userID, err)
	}
}
