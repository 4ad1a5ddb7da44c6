package services

import (
	"errors"
	"fmt"

	"research-proposal-api/models"
)

// ErrInvalidTransition is returned when a trigger does not apply to the
// proposal's current status. Controllers map it to 409.
var ErrInvalidTransition = errors.New("invalid proposal state transition")

// Trigger names a workflow event that advances a proposal. User actions and
// derived events ("all members accepted") share the same table so there is a
// single source of truth for what moves a proposal forward.
type Trigger string

const (
	TriggerSubmitProposal        Trigger = "SUBMIT_PROPOSAL"
	TriggerAllMembersAccepted    Trigger = "ALL_MEMBERS_ACCEPTED"
	TriggerReviewersAssigned     Trigger = "REVIEWERS_ASSIGNED"
	TriggerAllReviewersAccepted  Trigger = "ALL_REVIEWERS_ACCEPTED"
	TriggerAllReviewersEvaluated Trigger = "ALL_REVIEWERS_EVALUATED"
	TriggerFacultyHeadApproved   Trigger = "FACULTY_HEAD_APPROVED"
	TriggerDeanApproved          Trigger = "DEAN_APPROVED"
	TriggerLPPMApproved          Trigger = "LPPM_APPROVED"
	TriggerMonitoringDecree      Trigger = "MONITORING_DECREE_UPLOADED"
	TriggerFinalReportSubmitted  Trigger = "FINAL_REPORT_SUBMITTED"
	TriggerFinalDeanApproved     Trigger = "FINAL_DEAN_APPROVED"
	TriggerFinalLPPMApproved     Trigger = "FINAL_LPPM_APPROVED"
)

// transition is one row of the state machine. Through lists pass-through
// statuses recorded in history but never left visible: dean approval lands a
// proposal in WAITING_LPPM_APPROVAL via APPROVED_BY_DEAN in a single step.
type transition struct {
	From    models.ProposalStatus
	Through []models.ProposalStatus
	To      models.ProposalStatus
}

var transitions = map[Trigger]transition{
	TriggerSubmitProposal: {
		From: models.StatusDraft,
		To:   models.StatusWaitingMemberApproval,
	},
	TriggerAllMembersAccepted: {
		From: models.StatusWaitingMemberApproval,
		To:   models.StatusWaitingFacultyHead,
	},
	TriggerReviewersAssigned: {
		From: models.StatusWaitingFacultyHead,
		To:   models.StatusWaitingReviewer,
	},
	TriggerAllReviewersAccepted: {
		From: models.StatusWaitingReviewer,
		To:   models.StatusReviewInProgress,
	},
	TriggerAllReviewersEvaluated: {
		From: models.StatusReviewInProgress,
		To:   models.StatusReviewCompleted,
	},
	TriggerFacultyHeadApproved: {
		From: models.StatusReviewCompleted,
		To:   models.StatusWaitingDeanApproval,
	},
	TriggerDeanApproved: {
		From:    models.StatusWaitingDeanApproval,
		Through: []models.ProposalStatus{models.StatusApprovedByDean},
		To:      models.StatusWaitingLPPMApproval,
	},
	TriggerLPPMApproved: {
		From:    models.StatusWaitingLPPMApproval,
		Through: []models.ProposalStatus{models.StatusLPPMApproved},
		To:      models.StatusOngoing,
	},
	TriggerMonitoringDecree: {
		From:    models.StatusOngoing,
		Through: []models.ProposalStatus{models.StatusProgressSubmitted},
		To:      models.StatusProgressApproved,
	},
	TriggerFinalReportSubmitted: {
		From: models.StatusProgressApproved,
		To:   models.StatusFinalSubmitted,
	},
	TriggerFinalDeanApproved: {
		From: models.StatusFinalSubmitted,
		To:   models.StatusFinalApprovedByDean,
	},
	TriggerFinalLPPMApproved: {
		From:    models.StatusFinalApprovedByDean,
		Through: []models.ProposalStatus{models.StatusFinalApprovedByLPPM},
		To:      models.StatusCompleted,
	},
}

// NextStatus resolves the status a proposal lands in when trigger fires
// from current. ErrInvalidTransition when the trigger does not apply.
func NextStatus(current models.ProposalStatus, trigger Trigger) (models.ProposalStatus, error) {
	t, ok := transitions[trigger]
	if !ok {
		return "", fmt.Errorf("%w: unknown trigger %s", ErrInvalidTransition, trigger)
	}
	if t.From != current {
		return "", fmt.Errorf("%w: %s does not apply at %s", ErrInvalidTransition, trigger, current)
	}
	return t.To, nil
}

// StatusPath returns every status the proposal passes through for trigger,
// pass-through states included, ending in the visible landing status. Used
// to write one history row per hop.
func StatusPath(current models.ProposalStatus, trigger Trigger) ([]models.ProposalStatus, error) {
	t, ok := transitions[trigger]
	if !ok {
		return nil, fmt.Errorf("%w: unknown trigger %s", ErrInvalidTransition, trigger)
	}
	if t.From != current {
		return nil, fmt.Errorf("%w: %s does not apply at %s", ErrInvalidTransition, trigger, current)
	}
	path := make([]models.ProposalStatus, 0, len(t.Through)+1)
	path = append(path, t.Through...)
	path = append(path, t.To)
	return path, nil
}

// ReportNext resolves the next status of the progress-report approval
// chain. The chain is strictly sequential: each status has exactly one
// predecessor and one successor.
func ReportNext(current models.ReportStatus) (models.ReportStatus, error) {
	switch current {
	case "":
		return models.ReportUploaded, nil
	case models.ReportUploaded:
		return models.ReportApprovedFacultyHead, nil
	case models.ReportApprovedFacultyHead:
		return models.ReportApprovedDekan, nil
	case models.ReportApprovedDekan:
		return models.ReportApprovedLPPM, nil
	}
	return "", fmt.Errorf("%w: report chain has no successor for %q", ErrInvalidTransition, current)
}
