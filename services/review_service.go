package services

import (
	"errors"
	"fmt"
	"time"

	"research-proposal-api/models"

	"gorm.io/gorm"
)

const maxReviewersPerProposal = 2

var (
	ErrReviewerLimit     = fmt.Errorf("a proposal takes at most %d reviewers", maxReviewersPerProposal)
	ErrReviewerConflict  = errors.New("reviewer is part of the proposal's research team")
	ErrNotReviewerRole   = errors.New("user does not hold the REVIEWER role")
	ErrReviewerResponded = errors.New("reviewer has already answered this assignment")
	ErrAlreadyEvaluated  = errors.New("evaluation already submitted for this proposal")
)

// ReviewService owns reviewer assignment, reviewer responses, and
// evaluation submission.
type ReviewService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewReviewService(db *gorm.DB, notifier *NotificationService) *ReviewService {
	return &ReviewService{db: db, notifier: notifier}
}

// AssignReviewers lets the faculty head attach up to two reviewers to a
// proposal waiting for assignment. Every id must belong to a REVIEWER-role
// user who is neither the chief researcher nor a dosen member. All
// validation happens before any row is written.
func (s *ReviewService) AssignReviewers(proposalID int, actor models.User, reviewerIDs []int) (*models.Proposal, error) {
	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if !CanPerform(actor, ActionAssignReviewer, proposal) {
		return nil, ErrNotPermitted
	}

	if len(reviewerIDs) == 0 {
		return nil, errors.New("at least one reviewer is required")
	}
	if len(reviewerIDs) > maxReviewersPerProposal {
		return nil, ErrReviewerLimit
	}

	seen := make(map[int]bool, len(reviewerIDs))
	team := make(map[int]bool, len(proposal.Members)+1)
	team[proposal.ChiefResearcher] = true
	for _, id := range proposal.DosenMemberIDs() {
		team[id] = true
	}

	for _, id := range reviewerIDs {
		if seen[id] {
			return nil, fmt.Errorf("duplicate reviewer id %d", id)
		}
		seen[id] = true
		if team[id] {
			return nil, ErrReviewerConflict
		}

		var reviewer models.User
		if err := s.db.Preload("Roles").
			Where("user_id = ? AND delete_at IS NULL", id).
			First(&reviewer).Error; err != nil {
			return nil, fmt.Errorf("reviewer %d: %w", id, err)
		}
		if !reviewer.HasRole(models.RoleReviewer) {
			return nil, ErrNotReviewerRole
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, id := range reviewerIDs {
			row := models.ProposalReviewer{
				ProposalID: proposalID,
				ReviewerID: id,
				Status:     models.ReviewerPending,
				CreateAt:   now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			proposal.Reviewers = append(proposal.Reviewers, row)
		}
		return applyTransition(tx, proposal, TriggerReviewersAssigned, actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUsers(reviewerIDs,
		"Penugasan review proposal",
		fmt.Sprintf("Anda ditunjuk sebagai reviewer untuk proposal %q. Mohon konfirmasi kesediaan Anda.", proposal.Title),
		"info", &proposal.ProposalID)

	return proposal, nil
}

// Respond records a reviewer's accept/reject answer to an assignment. When
// the last pending reviewer accepts, the review starts. A rejection keeps
// the proposal in WAITING_REVIEWER_RESPONSE so the faculty head can replace
// the reviewer.
func (s *ReviewService) Respond(proposalID int, reviewer models.User, accept bool) (*models.Proposal, error) {
	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}

	action := ActionAcceptReview
	answer := models.ReviewerAccepted
	if !accept {
		action = ActionRejectReview
		answer = models.ReviewerRejected
	}
	if !CanPerform(reviewer, action, proposal) {
		return nil, ErrNotPermitted
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.ProposalReviewer{}).
			Where("proposal_id = ? AND reviewer_id = ? AND status = ?", proposalID, reviewer.UserID, models.ReviewerPending).
			Updates(map[string]interface{}{"status": answer, "update_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReviewerResponded
		}

		for i := range proposal.Reviewers {
			if proposal.Reviewers[i].ReviewerID == reviewer.UserID {
				proposal.Reviewers[i].Status = answer
			}
		}

		if accept && allReviewersAccepted(proposal.Reviewers) {
			return applyTransition(tx, proposal, TriggerAllReviewersAccepted, reviewer.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !accept {
		s.notifier.NotifyRole(models.RoleFacultyHead,
			"Reviewer menolak penugasan",
			fmt.Sprintf("%s menolak penugasan review proposal %q. Silakan tunjuk reviewer pengganti.", reviewer.DisplayName(), proposal.Title),
			"warning", &proposal.ProposalID)
	}

	return proposal, nil
}

// ReplaceRejected swaps a rejected reviewer for a new one while the
// proposal is still waiting for reviewer responses.
func (s *ReviewService) ReplaceRejected(proposalID int, actor models.User, oldReviewerID, newReviewerID int) (*models.Proposal, error) {
	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != models.StatusWaitingReviewer || !actor.HasRole(models.RoleFacultyHead) {
		return nil, ErrNotPermitted
	}

	old := proposal.ReviewerFor(oldReviewerID)
	if old == nil || old.Status != models.ReviewerRejected {
		return nil, errors.New("reviewer to replace has not rejected the assignment")
	}

	team := map[int]bool{proposal.ChiefResearcher: true}
	for _, id := range proposal.DosenMemberIDs() {
		team[id] = true
	}
	if team[newReviewerID] || proposal.ReviewerFor(newReviewerID) != nil {
		return nil, ErrReviewerConflict
	}

	var replacement models.User
	if err := s.db.Preload("Roles").
		Where("user_id = ? AND delete_at IS NULL", newReviewerID).
		First(&replacement).Error; err != nil {
		return nil, err
	}
	if !replacement.HasRole(models.RoleReviewer) {
		return nil, ErrNotReviewerRole
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Delete(&models.ProposalReviewer{}, "proposal_reviewer_id = ?", old.ProposalReviewerID).Error; err != nil {
			return err
		}
		row := models.ProposalReviewer{
			ProposalID: proposalID,
			ReviewerID: newReviewerID,
			Status:     models.ReviewerPending,
			CreateAt:   now,
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(newReviewerID,
		"Penugasan review proposal",
		fmt.Sprintf("Anda ditunjuk sebagai reviewer untuk proposal %q. Mohon konfirmasi kesediaan Anda.", proposal.Title),
		"info", &proposal.ProposalID)

	return s.loadProposal(proposalID)
}

// SubmitEvaluation stores one reviewer's scored rubric. The write is
// idempotent-guarded: flipping is_evaluated succeeds exactly once per
// (proposal, reviewer) pair, so a double submission can never create a
// second evaluation row. When the last accepted reviewer submits, the
// proposal advances to REVIEW_COMPLETED.
func (s *ReviewService) SubmitEvaluation(proposalID int, reviewer models.User, scores EvaluationScores, komentar string) (*models.ProposalEvaluation, error) {
	if err := scores.Validate(); err != nil {
		return nil, err
	}

	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if !CanPerform(reviewer, ActionSubmitEvaluation, proposal) {
		return nil, ErrNotPermitted
	}

	evaluation := models.ProposalEvaluation{
		ProposalID:               proposalID,
		ReviewerID:               reviewer.UserID,
		NilaiKualitasDanKebaruan: scores.NilaiKualitasDanKebaruan,
		NilaiRoadmap:             scores.NilaiRoadmap,
		NilaiTinjauanPustaka:     scores.NilaiTinjauanPustaka,
		NilaiKemutakhiranSumber:  scores.NilaiKemutakhiranSumber,
		NilaiMetodologi:          scores.NilaiMetodologi,
		NilaiTargetLuaran:        scores.NilaiTargetLuaran,
		NilaiKompetensiDanTugas:  scores.NilaiKompetensiDanTugas,
		NilaiPenulisan:           scores.NilaiPenulisan,
		Komentar:                 komentar,
		TotalNilai:               TotalScore(scores),
		EvaluatedAt:              time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ProposalReviewer{}).
			Where("proposal_id = ? AND reviewer_id = ? AND is_evaluated = ?", proposalID, reviewer.UserID, false).
			Updates(map[string]interface{}{"is_evaluated": true, "update_at": evaluation.EvaluatedAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyEvaluated
		}

		if err := tx.Create(&evaluation).Error; err != nil {
			return err
		}

		for i := range proposal.Reviewers {
			if proposal.Reviewers[i].ReviewerID == reviewer.UserID {
				proposal.Reviewers[i].IsEvaluated = true
			}
		}

		if allReviewersEvaluated(proposal.Reviewers) {
			return applyTransition(tx, proposal, TriggerAllReviewersEvaluated, reviewer.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if proposal.Status == models.StatusReviewCompleted {
		s.notifier.NotifyRole(models.RoleFacultyHead,
			"Review proposal selesai",
			fmt.Sprintf("Semua reviewer telah menilai proposal %q. Proposal siap untuk persetujuan fakultas.", proposal.Title),
			"success", &proposal.ProposalID)
	}

	return &evaluation, nil
}

// ListForReviewer returns the proposals assigned to a reviewer together
// with their own assignment row state.
func (s *ReviewService) ListForReviewer(reviewerID int) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := s.db.
		Preload("Chief").Preload("Chief.Dosen").
		Preload("Members").Preload("Members.User").
		Preload("Reviewers").Preload("Reviewers.Reviewer").
		Preload("Evaluations").
		Preload("File").
		Where("delete_at IS NULL AND proposal_id IN (?)",
			s.db.Model(&models.ProposalReviewer{}).Select("proposal_id").Where("reviewer_id = ?", reviewerID)).
		Order("create_at DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

func (s *ReviewService) loadProposal(proposalID int) (*models.Proposal, error) {
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
	return &proposal, nil
}

func allReviewersAccepted(reviewers []models.ProposalReviewer) bool {
	if len(reviewers) == 0 {
		return false
	}
	for _, r := range reviewers {
		if r.Status != models.ReviewerAccepted {
			return false
		}
	}
	return true
}

func allReviewersEvaluated(reviewers []models.ProposalReviewer) bool {
	if len(reviewers) == 0 {
		return false
	}
	for _, r := range reviewers {
		if r.Status != models.ReviewerAccepted || !r.IsEvaluated {
			return false
		}
	}
	return true
}
