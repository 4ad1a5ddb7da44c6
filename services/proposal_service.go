package services

import (
	"errors"
	"fmt"
	"time"

	"research-proposal-api/models"

	"gorm.io/gorm"
)

// Service-level sentinels; controllers map them to HTTP status codes.
var (
	ErrNotPermitted    = errors.New("action not permitted")
	ErrMemberNotFound  = errors.New("user is not an invited member of this proposal")
	ErrMemberResponded = errors.New("membership invitation already answered")
)

// ProposalService owns proposal CRUD and the membership-confirmation phase.
type ProposalService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewProposalService(db *gorm.DB, notifier *NotificationService) *ProposalService {
	return &ProposalService{db: db, notifier: notifier}
}

// ProposalInput carries the creation/update payload after binding.
type ProposalInput struct {
	Title          string
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	FundingSource  string
	FundingAmount  float64
	Outcome        string
	PartnerName    *string
	PartnerAddress *string
	FileID         *int
	// Members are invited researchers keyed by user id; role is
	// ANGGOTA_DOSEN or ANGGOTA_MAHASISWA.
	Members map[int]string
	// Draft keeps the proposal in DRAFT instead of submitting it for
	// member confirmation immediately.
	Draft bool
}

// Get loads a proposal with every association the permission resolver and
// the pages need.
func (s *ProposalService) Get(proposalID int) (*models.Proposal, error) {
	var proposal models.Proposal
	err := s.db.
		Preload("Chief").Preload("Chief.Roles").Preload("Chief.Dosen").
		Preload("Members").Preload("Members.User").Preload("Members.User.Dosen").Preload("Members.User.Student").
		Preload("Reviewers").Preload("Reviewers.Reviewer").Preload("Reviewers.Reviewer.Dosen").
		Preload("Evaluations").Preload("Evaluations.Reviewer").
		Preload("ReportFlow").
		Preload("File").
		Where("proposal_id = ? AND delete_at IS NULL", proposalID).
		First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// Create stores a new proposal for chief and invites the listed members.
// Unless input.Draft is set the proposal is submitted immediately: it moves
// to WAITING_MEMBER_APPROVAL, or straight to WAITING_FACULTY_HEAD when
// there is nobody to confirm.
func (s *ProposalService) Create(chief models.User, input ProposalInput) (*models.Proposal, error) {
	if !CanPerform(chief, ActionCreateProposal, nil) {
		return nil, ErrNotPermitted
	}
	if _, invited := input.Members[chief.UserID]; invited {
		return nil, fmt.Errorf("chief researcher cannot be invited as a member")
	}

	now := time.Now()
	proposal := models.Proposal{
		Title:           input.Title,
		PeriodStart:     input.PeriodStart,
		PeriodEnd:       input.PeriodEnd,
		FundingSource:   input.FundingSource,
		FundingAmount:   input.FundingAmount,
		Outcome:         input.Outcome,
		PartnerName:     input.PartnerName,
		PartnerAddress:  input.PartnerAddress,
		FileID:          input.FileID,
		Status:          models.StatusDraft,
		ChiefResearcher: chief.UserID,
		CreateAt:        now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&proposal).Error; err != nil {
			return err
		}

		for userID, role := range input.Members {
			member := models.ProposalMember{
				ProposalID:     proposal.ProposalID,
				UserID:         userID,
				RoleInProposal: role,
				Status:         models.MemberPending,
				CreateAt:       now,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
			proposal.Members = append(proposal.Members, member)
		}

		if input.Draft {
			return nil
		}
		return s.submitLocked(tx, &proposal, chief.UserID)
	})
	if err != nil {
		return nil, err
	}

	s.notifyAfterSubmit(&proposal)
	return &proposal, nil
}

// Submit moves a DRAFT proposal into the confirmation phase.
func (s *ProposalService) Submit(proposalID int, chief models.User) (*models.Proposal, error) {
	proposal, err := s.Get(proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ChiefResearcher != chief.UserID {
		return nil, ErrNotPermitted
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.submitLocked(tx, proposal, chief.UserID)
	})
	if err != nil {
		return nil, err
	}

	s.notifyAfterSubmit(proposal)
	return proposal, nil
}

// submitLocked runs the submit transition inside tx. A proposal without
// pending members skips the confirmation phase.
func (s *ProposalService) submitLocked(tx *gorm.DB, proposal *models.Proposal, actorID int) error {
	if err := applyTransition(tx, proposal, TriggerSubmitProposal, actorID); err != nil {
		return err
	}
	if len(proposal.Members) == 0 {
		return applyTransition(tx, proposal, TriggerAllMembersAccepted, actorID)
	}
	return nil
}

func (s *ProposalService) notifyAfterSubmit(proposal *models.Proposal) {
	switch proposal.Status {
	case models.StatusWaitingMemberApproval:
		s.notifier.NotifyUsers(proposal.MemberIDs(),
			"Undangan anggota penelitian",
			fmt.Sprintf("Anda diundang sebagai anggota pada proposal %q. Mohon konfirmasi keikutsertaan Anda.", proposal.Title),
			"info", &proposal.ProposalID)
	case models.StatusWaitingFacultyHead:
		s.notifier.NotifyRole(models.RoleFacultyHead,
			"Proposal menunggu penunjukan reviewer",
			fmt.Sprintf("Proposal %q siap untuk penunjukan reviewer.", proposal.Title),
			"info", &proposal.ProposalID)
	}
}

// Update edits proposal fields while the proposal is still editable by its
// chief researcher. Membership is not touched here.
func (s *ProposalService) Update(proposalID int, user models.User, input ProposalInput) (*models.Proposal, error) {
	proposal, err := s.Get(proposalID)
	if err != nil {
		return nil, err
	}
	if !CanPerform(user, ActionEditProposal, proposal) {
		return nil, ErrNotPermitted
	}

	now := time.Now()
	updates := map[string]interface{}{
		"title":           input.Title,
		"period_start":    input.PeriodStart,
		"period_end":      input.PeriodEnd,
		"funding_source":  input.FundingSource,
		"funding_amount":  input.FundingAmount,
		"outcome":         input.Outcome,
		"partner_name":    input.PartnerName,
		"partner_address": input.PartnerAddress,
		"update_at":       now,
	}
	if input.FileID != nil {
		updates["file_id"] = input.FileID
	}

	if err := s.db.Model(&models.Proposal{}).
		Where("proposal_id = ?", proposalID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.Get(proposalID)
}

// Delete soft-deletes a proposal. Permitted only for the chief researcher
// (or an admin) while the proposal is still in an early state.
func (s *ProposalService) Delete(proposalID int, user models.User) error {
	proposal, err := s.Get(proposalID)
	if err != nil {
		return err
	}
	if !CanPerform(user, ActionDeleteProposal, proposal) {
		return ErrNotPermitted
	}

	now := time.Now()
	return s.db.Model(&models.Proposal{}).
		Where("proposal_id = ?", proposalID).
		Update("delete_at", now).Error
}

// RespondMembership records a member's accept/reject answer. When the last
// pending member accepts, the proposal advances to WAITING_FACULTY_HEAD. A
// rejection keeps the proposal where it is and flags the chief researcher;
// there is no REJECTED proposal status.
func (s *ProposalService) RespondMembership(proposalID int, user models.User, accept bool) (*models.Proposal, error) {
	proposal, err := s.Get(proposalID)
	if err != nil {
		return nil, err
	}
	if !CanPerform(user, ActionAcceptRejectMembership, proposal) {
		return nil, ErrNotPermitted
	}

	answer := models.MemberAccept
	if !accept {
		answer = models.MemberReject
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.ProposalMember{}).
			Where("proposal_id = ? AND user_id = ? AND status = ?", proposalID, user.UserID, models.MemberPending).
			Updates(map[string]interface{}{"status": answer, "update_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrMemberResponded
		}

		for i := range proposal.Members {
			if proposal.Members[i].UserID == user.UserID {
				proposal.Members[i].Status = answer
			}
		}

		if accept && allMembersAccepted(proposal.Members) {
			return applyTransition(tx, proposal, TriggerAllMembersAccepted, user.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !accept {
		s.notifier.Notify(proposal.ChiefResearcher,
			"Anggota menolak undangan",
			fmt.Sprintf("%s menolak undangan anggota pada proposal %q.", user.DisplayName(), proposal.Title),
			"warning", &proposal.ProposalID)
	} else if proposal.Status == models.StatusWaitingFacultyHead {
		s.notifier.NotifyRole(models.RoleFacultyHead,
			"Proposal menunggu penunjukan reviewer",
			fmt.Sprintf("Semua anggota proposal %q telah konfirmasi. Proposal siap untuk penunjukan reviewer.", proposal.Title),
			"info", &proposal.ProposalID)
	}

	return proposal, nil
}

func allMembersAccepted(members []models.ProposalMember) bool {
	for _, m := range members {
		if m.Status != models.MemberAccept {
			return false
		}
	}
	return true
}

// ListForUser returns the proposals the user may see: admins, the approval
// roles, and reviewers see everything their queue logic filters client-side;
// everyone else sees proposals they lead or were invited to. This filtering
// is a display convenience, never a security boundary: every mutation is
// re-checked through CanPerform.
func (s *ProposalService) ListForUser(user models.User) ([]models.Proposal, error) {
	q := s.db.
		Preload("Chief").Preload("Chief.Dosen").
		Preload("Members").Preload("Members.User").
		Preload("Reviewers").Preload("Reviewers.Reviewer").Preload("Reviewers.Reviewer.Dosen").
		Preload("Evaluations").
		Preload("ReportFlow").
		Where("proposals.delete_at IS NULL")

	broadRoles := user.HasRole(models.RoleAdmin) ||
		user.HasRole(models.RoleFacultyHead) ||
		user.HasRole(models.RoleDekan) ||
		user.HasRole(models.RoleKetuaLPPM) ||
		user.HasRole(models.RoleReviewer)

	if !broadRoles {
		q = q.Where(
			"chief_researcher_id = ? OR proposal_id IN (?)",
			user.UserID,
			s.db.Model(&models.ProposalMember{}).Select("proposal_id").Where("user_id = ?", user.UserID),
		)
	}

	var proposals []models.Proposal
	if err := q.Order("create_at DESC").Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}
