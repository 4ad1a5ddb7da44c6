package services

import (
	"errors"
	"testing"

	"research-proposal-api/models"
)

func TestHappyPathWalkVisitsEveryVisibleStatus(t *testing.T) {
	walk := []struct {
		trigger Trigger
		want    models.ProposalStatus
	}{
		{TriggerSubmitProposal, models.StatusWaitingMemberApproval},
		{TriggerAllMembersAccepted, models.StatusWaitingFacultyHead},
		{TriggerReviewersAssigned, models.StatusWaitingReviewer},
		{TriggerAllReviewersAccepted, models.StatusReviewInProgress},
		{TriggerAllReviewersEvaluated, models.StatusReviewCompleted},
		{TriggerFacultyHeadApproved, models.StatusWaitingDeanApproval},
		{TriggerDeanApproved, models.StatusWaitingLPPMApproval},
		{TriggerLPPMApproved, models.StatusOngoing},
		{TriggerMonitoringDecree, models.StatusProgressApproved},
		{TriggerFinalReportSubmitted, models.StatusFinalSubmitted},
		{TriggerFinalDeanApproved, models.StatusFinalApprovedByDean},
		{TriggerFinalLPPMApproved, models.StatusCompleted},
	}

	current := models.StatusDraft
	for _, step := range walk {
		next, err := NextStatus(current, step.trigger)
		if err != nil {
			t.Fatalf("%s at %s: unexpected error: %v", step.trigger, current, err)
		}
		if next != step.want {
			t.Fatalf("%s at %s: got %s, want %s", step.trigger, current, next, step.want)
		}
		if !next.After(current) {
			t.Fatalf("%s: landing status %s does not come after %s", step.trigger, next, current)
		}
		current = next
	}
	if current != models.StatusCompleted {
		t.Fatalf("walk ended at %s, want %s", current, models.StatusCompleted)
	}
}

func TestNextStatusRejectsTriggerAtWrongStatus(t *testing.T) {
	cases := []struct {
		current models.ProposalStatus
		trigger Trigger
	}{
		{models.StatusDraft, TriggerDeanApproved},
		{models.StatusWaitingMemberApproval, TriggerSubmitProposal},
		{models.StatusWaitingDeanApproval, TriggerLPPMApproved},
		{models.StatusOngoing, TriggerFinalReportSubmitted},
		{models.StatusCompleted, TriggerSubmitProposal},
		{models.StatusReviewInProgress, TriggerFacultyHeadApproved},
	}
	for _, c := range cases {
		if _, err := NextStatus(c.current, c.trigger); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s at %s: got %v, want ErrInvalidTransition", c.trigger, c.current, err)
		}
	}
}

func TestNextStatusRejectsUnknownTrigger(t *testing.T) {
	if _, err := NextStatus(models.StatusDraft, Trigger("TELEPORT")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
}

func TestStatusPathRecordsPassThroughHops(t *testing.T) {
	cases := []struct {
		current models.ProposalStatus
		trigger Trigger
		want    []models.ProposalStatus
	}{
		{models.StatusWaitingDeanApproval, TriggerDeanApproved,
			[]models.ProposalStatus{models.StatusApprovedByDean, models.StatusWaitingLPPMApproval}},
		{models.StatusWaitingLPPMApproval, TriggerLPPMApproved,
			[]models.ProposalStatus{models.StatusLPPMApproved, models.StatusOngoing}},
		{models.StatusOngoing, TriggerMonitoringDecree,
			[]models.ProposalStatus{models.StatusProgressSubmitted, models.StatusProgressApproved}},
		{models.StatusFinalApprovedByDean, TriggerFinalLPPMApproved,
			[]models.ProposalStatus{models.StatusFinalApprovedByLPPM, models.StatusCompleted}},
		{models.StatusDraft, TriggerSubmitProposal,
			[]models.ProposalStatus{models.StatusWaitingMemberApproval}},
	}
	for _, c := range cases {
		path, err := StatusPath(c.current, c.trigger)
		if err != nil {
			t.Fatalf("%s at %s: unexpected error: %v", c.trigger, c.current, err)
		}
		if len(path) != len(c.want) {
			t.Fatalf("%s at %s: path %v, want %v", c.trigger, c.current, path, c.want)
		}
		for i := range path {
			if path[i] != c.want[i] {
				t.Fatalf("%s at %s: path %v, want %v", c.trigger, c.current, path, c.want)
			}
		}
	}
}

func TestEveryTransitionTargetIsAValidForwardStatus(t *testing.T) {
	for trigger, tr := range transitions {
		if !tr.From.IsValid() {
			t.Errorf("%s: source %s is not a known status", trigger, tr.From)
		}
		if !tr.To.IsValid() {
			t.Errorf("%s: target %s is not a known status", trigger, tr.To)
		}
		if !tr.To.After(tr.From) {
			t.Errorf("%s: %s -> %s moves backwards", trigger, tr.From, tr.To)
		}
		prev := tr.From
		for _, hop := range tr.Through {
			if !hop.IsValid() {
				t.Errorf("%s: pass-through %s is not a known status", trigger, hop)
			}
			if !hop.After(prev) {
				t.Errorf("%s: pass-through %s does not come after %s", trigger, hop, prev)
			}
			prev = hop
		}
	}
}

func TestReportNextWalksTheChainStrictly(t *testing.T) {
	cases := []struct {
		current models.ReportStatus
		want    models.ReportStatus
	}{
		{"", models.ReportUploaded},
		{models.ReportUploaded, models.ReportApprovedFacultyHead},
		{models.ReportApprovedFacultyHead, models.ReportApprovedDekan},
		{models.ReportApprovedDekan, models.ReportApprovedLPPM},
	}
	for _, c := range cases {
		next, err := ReportNext(c.current)
		if err != nil {
			t.Fatalf("ReportNext(%q): unexpected error: %v", c.current, err)
		}
		if next != c.want {
			t.Fatalf("ReportNext(%q) = %s, want %s", c.current, next, c.want)
		}
	}

	if _, err := ReportNext(models.ReportApprovedLPPM); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("ReportNext at chain end: got %v, want ErrInvalidTransition", err)
	}
	if _, err := ReportNext(models.ReportStatus("UNKNOWN")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("ReportNext(unknown): got %v, want ErrInvalidTransition", err)
	}
}
