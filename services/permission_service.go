package services

import (
	"research-proposal-api/models"
)

// Action is a privileged operation a user can request against a proposal.
// Controllers resolve every mutating request through CanPerform before
// touching the database, so the status/role gates live in exactly one place.
type Action string

const (
	ActionCreateProposal         Action = "CREATE_PROPOSAL"
	ActionEditProposal           Action = "EDIT_PROPOSAL"
	ActionDeleteProposal         Action = "DELETE_PROPOSAL"
	ActionAcceptRejectMembership Action = "ACCEPT_REJECT_MEMBERSHIP"
	ActionAssignReviewer         Action = "ASSIGN_REVIEWER"
	ActionAcceptReview           Action = "ACCEPT_REVIEW"
	ActionRejectReview           Action = "REJECT_REVIEW"
	ActionSubmitEvaluation       Action = "SUBMIT_EVALUATION"
	ActionApproveAsFacultyHead   Action = "APPROVE_AS_FACULTY_HEAD"
	ActionApproveAsDean          Action = "APPROVE_AS_DEAN"
	ActionApproveAsLPPM          Action = "APPROVE_AS_LPPM"
	ActionSubmitProgressReport   Action = "SUBMIT_PROGRESS_REPORT"
	ActionApproveProgressFaculty Action = "APPROVE_PROGRESS_AS_FACULTY_HEAD"
	ActionApproveProgressDean    Action = "APPROVE_PROGRESS_AS_DEAN"
	ActionApproveProgressLPPM    Action = "APPROVE_PROGRESS_AS_LPPM"
	ActionUploadMonitoringDecree Action = "UPLOAD_MONITORING_DECREE"
	ActionSubmitFinalReport      Action = "SUBMIT_FINAL_REPORT"
	ActionApproveFinalAsDean     Action = "APPROVE_FINAL_AS_DEAN"
	ActionApproveFinalAsLPPM     Action = "APPROVE_FINAL_AS_LPPM"
)

// Proposal statuses in which the chief researcher may still edit or delete.
var editableStatuses = map[models.ProposalStatus]bool{
	models.StatusDraft:                 true,
	models.StatusWaitingMemberApproval: true,
}

// CanPerform reports whether user may perform action on proposal. It is a
// pure predicate: no state is touched, and missing role or relation data
// simply yields false. proposal may be nil only for ActionCreateProposal.
//
// The caller is responsible for handing in a proposal with Members,
// Reviewers, and ReportFlow preloaded; absent associations read as "not a
// member", "not a reviewer", "no report yet".
func CanPerform(user models.User, action Action, proposal *models.Proposal) bool {
	if action == ActionCreateProposal {
		return user.HasRole(models.RoleDosen)
	}
	if proposal == nil {
		return false
	}

	switch action {
	case ActionEditProposal, ActionDeleteProposal:
		if user.UserID != proposal.ChiefResearcher && !user.HasRole(models.RoleAdmin) {
			return false
		}
		return editableStatuses[proposal.Status]

	case ActionAcceptRejectMembership:
		if proposal.Status != models.StatusWaitingMemberApproval {
			return false
		}
		for _, m := range proposal.Members {
			if m.UserID == user.UserID && m.Status == models.MemberPending {
				return true
			}
		}
		return false

	case ActionAssignReviewer:
		return user.HasRole(models.RoleFacultyHead) &&
			proposal.Status == models.StatusWaitingFacultyHead

	case ActionAcceptReview, ActionRejectReview:
		if proposal.Status != models.StatusWaitingReviewer {
			return false
		}
		pr := proposal.ReviewerFor(user.UserID)
		return pr != nil && pr.Status == models.ReviewerPending

	case ActionSubmitEvaluation:
		if proposal.Status != models.StatusReviewInProgress {
			return false
		}
		pr := proposal.ReviewerFor(user.UserID)
		return pr != nil && pr.Status == models.ReviewerAccepted && !pr.IsEvaluated

	case ActionApproveAsFacultyHead:
		return user.HasRole(models.RoleFacultyHead) &&
			proposal.Status == models.StatusReviewCompleted

	case ActionApproveAsDean:
		return user.HasRole(models.RoleDekan) &&
			proposal.Status == models.StatusWaitingDeanApproval

	case ActionApproveAsLPPM:
		return user.HasRole(models.RoleKetuaLPPM) &&
			proposal.Status == models.StatusWaitingLPPMApproval

	case ActionSubmitProgressReport:
		return user.UserID == proposal.ChiefResearcher &&
			proposal.Status == models.StatusOngoing &&
			reportStatus(proposal) == ""

	case ActionApproveProgressFaculty:
		return user.HasRole(models.RoleFacultyHead) &&
			proposal.Status == models.StatusOngoing &&
			reportStatus(proposal) == models.ReportUploaded

	case ActionApproveProgressDean:
		return user.HasRole(models.RoleDekan) &&
			proposal.Status == models.StatusOngoing &&
			reportStatus(proposal) == models.ReportApprovedFacultyHead

	case ActionApproveProgressLPPM:
		return user.HasRole(models.RoleKetuaLPPM) &&
			proposal.Status == models.StatusOngoing &&
			reportStatus(proposal) == models.ReportApprovedDekan

	case ActionUploadMonitoringDecree:
		return user.HasRole(models.RoleKetuaLPPM) &&
			proposal.Status == models.StatusOngoing &&
			reportStatus(proposal) == models.ReportApprovedLPPM &&
			proposal.ReportFlow.SKPemantauanFileID == nil

	case ActionSubmitFinalReport:
		return user.UserID == proposal.ChiefResearcher &&
			proposal.Status == models.StatusProgressApproved

	case ActionApproveFinalAsDean:
		return user.HasRole(models.RoleDekan) &&
			proposal.Status == models.StatusFinalSubmitted

	case ActionApproveFinalAsLPPM:
		return user.HasRole(models.RoleKetuaLPPM) &&
			proposal.Status == models.StatusFinalApprovedByDean
	}

	return false
}

func reportStatus(p *models.Proposal) models.ReportStatus {
	if p == nil || p.ReportFlow == nil {
		return ""
	}
	return p.ReportFlow.Status
}
