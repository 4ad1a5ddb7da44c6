package services

import (
	"fmt"

	"research-proposal-api/models"

	"gorm.io/gorm"
)

// ApprovalService runs the sequential proposal approval chain: faculty
// head, then dean, then LPPM head. Each step is permission-checked against
// the current status before the transition is applied, and each step
// notifies whoever must act next.
type ApprovalService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewApprovalService(db *gorm.DB, notifier *NotificationService) *ApprovalService {
	return &ApprovalService{db: db, notifier: notifier}
}

// ApproveAsFacultyHead moves a fully reviewed proposal to the dean's queue.
func (s *ApprovalService) ApproveAsFacultyHead(proposalID int, actor models.User) (*models.Proposal, error) {
	return s.approve(proposalID, actor, ActionApproveAsFacultyHead, TriggerFacultyHeadApproved)
}

// ApproveAsDean passes the proposal to LPPM; APPROVED_BY_DEAN is recorded
// as a pass-through hop.
func (s *ApprovalService) ApproveAsDean(proposalID int, actor models.User) (*models.Proposal, error) {
	return s.approve(proposalID, actor, ActionApproveAsDean, TriggerDeanApproved)
}

// ApproveAsLPPM gives final institutional approval; the proposal starts
// execution (ONGOING).
func (s *ApprovalService) ApproveAsLPPM(proposalID int, actor models.User) (*models.Proposal, error) {
	return s.approve(proposalID, actor, ActionApproveAsLPPM, TriggerLPPMApproved)
}

func (s *ApprovalService) approve(proposalID int, actor models.User, action Action, trigger Trigger) (*models.Proposal, error) {
	var proposal models.Proposal
	err := s.db.
		Preload("Members").
		Preload("Reviewers").
		Preload("ReportFlow").
		Where("proposal_id = ? AND delete_at IS NULL", proposalID).
		First(&proposal).Error
	if err != nil {
		return nil, err
	}

	if !CanPerform(actor, action, &proposal) {
		return nil, ErrNotPermitted
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return applyTransition(tx, &proposal, trigger, actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	s.notifyApproval(&proposal, action)
	return &proposal, nil
}

func (s *ApprovalService) notifyApproval(proposal *models.Proposal, action Action) {
	id := &proposal.ProposalID

	switch action {
	case ActionApproveAsFacultyHead:
		s.notifier.NotifyRole(models.RoleDekan,
			"Proposal menunggu persetujuan Dekan",
			fmt.Sprintf("Proposal %q telah disetujui ketua penelitian fakultas dan menunggu persetujuan Anda.", proposal.Title),
			"info", id)
		s.notifier.Notify(proposal.ChiefResearcher,
			"Proposal disetujui fakultas",
			fmt.Sprintf("Proposal %q disetujui ketua penelitian fakultas dan diteruskan ke Dekan.", proposal.Title),
			"success", id)

	case ActionApproveAsDean:
		s.notifier.NotifyRole(models.RoleKetuaLPPM,
			"Proposal menunggu persetujuan LPPM",
			fmt.Sprintf("Proposal %q telah disetujui Dekan dan menunggu persetujuan Anda.", proposal.Title),
			"info", id)
		s.notifier.Notify(proposal.ChiefResearcher,
			"Proposal disetujui Dekan",
			fmt.Sprintf("Proposal %q disetujui Dekan dan diteruskan ke LPPM.", proposal.Title),
			"success", id)

	case ActionApproveAsLPPM:
		s.notifier.Notify(proposal.ChiefResearcher,
			"Penelitian dapat dimulai",
			fmt.Sprintf("Proposal %q mendapat persetujuan akhir LPPM. Penelitian berstatus berjalan.", proposal.Title),
			"success", id)
	}
}
