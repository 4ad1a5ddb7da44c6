package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"research-proposal-api/models"
)

func validScores() EvaluationScores {
	return EvaluationScores{
		NilaiKualitasDanKebaruan: 85,
		NilaiRoadmap:             80,
		NilaiTinjauanPustaka:     75,
		NilaiKemutakhiranSumber:  70,
		NilaiMetodologi:          90,
		NilaiTargetLuaran:        80,
		NilaiKompetensiDanTugas:  85,
		NilaiPenulisan:           95,
	}
}

func TestSubmitEvaluationRejectsOutOfRangeScores(t *testing.T) {
	gormDB, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	service := NewReviewService(gormDB, NewNotificationService(nil))

	scores := validScores()
	scores.NilaiRoadmap = 150
	if _, err := service.SubmitEvaluation(1, userWithRoles(9, models.RoleReviewer), scores, ""); err == nil {
		t.Fatal("expected a validation error for a score above 100")
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSubmitEvaluationDoubleSubmissionGuard(t *testing.T) {
	// The preload still shows is_evaluated = false, but the guarded UPDATE
	// affects no rows: a concurrent submission won the race.
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "REVIEW_IN_PROGRESS", int64(10)},
		nil, nil,
		[][]driver.Value{{int64(1), int64(1), int64(9), "ACCEPTED", int64(0)}},
	)
	steps = append(steps, &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("UPDATE `proposal_reviewers` SET"),
		result:  scriptedResult{rowsAffected: 0},
	})

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewReviewService(gormDB, NewNotificationService(nil))

	_, err := service.SubmitEvaluation(1, userWithRoles(9, models.RoleReviewer), validScores(), "baik")
	if !errors.Is(err, ErrAlreadyEvaluated) {
		t.Fatalf("got %v, want ErrAlreadyEvaluated", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSubmitEvaluationLastReviewerCompletesReview(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "REVIEW_IN_PROGRESS", int64(10)},
		nil, nil,
		[][]driver.Value{
			{int64(1), int64(1), int64(9), "ACCEPTED", int64(0)},
			{int64(2), int64(1), int64(11), "ACCEPTED", int64(1)},
		},
	)
	steps = append(steps,
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `proposal_reviewers` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `proposal_evaluations`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `proposals` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `proposal_status_history`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewReviewService(gormDB, NewNotificationService(nil))

	evaluation, err := service.SubmitEvaluation(1, userWithRoles(9, models.RoleReviewer), validScores(), "layak didanai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evaluation.TotalNilai != TotalScore(validScores()) {
		t.Fatalf("stored total %v disagrees with the rubric total %v", evaluation.TotalNilai, TotalScore(validScores()))
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAssignReviewersRejectsTeamMembers(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "WAITING_FACULTY_HEAD", int64(10)},
		[][]driver.Value{{int64(1), int64(1), int64(7), "ANGGOTA_DOSEN", "ACCEPT"}},
		nil, nil,
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewReviewService(gormDB, NewNotificationService(nil))

	head := userWithRoles(1, models.RoleFacultyHead)
	_, err := service.AssignReviewers(1, head, []int{7})
	if !errors.Is(err, ErrReviewerConflict) {
		t.Fatalf("got %v, want ErrReviewerConflict for a dosen member", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAssignReviewersRejectsChiefResearcher(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "WAITING_FACULTY_HEAD", int64(10)},
		nil, nil, nil,
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewReviewService(gormDB, NewNotificationService(nil))

	_, err := service.AssignReviewers(1, userWithRoles(1, models.RoleFacultyHead), []int{10})
	if !errors.Is(err, ErrReviewerConflict) {
		t.Fatalf("got %v, want ErrReviewerConflict for the chief researcher", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAssignReviewersEnforcesLimit(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "WAITING_FACULTY_HEAD", int64(10)},
		nil, nil, nil,
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewReviewService(gormDB, NewNotificationService(nil))

	_, err := service.AssignReviewers(1, userWithRoles(1, models.RoleFacultyHead), []int{2, 3, 4})
	if !errors.Is(err, ErrReviewerLimit) {
		t.Fatalf("got %v, want ErrReviewerLimit", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAssignReviewersRequiresReviewerRole(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "WAITING_FACULTY_HEAD", int64(10)},
		nil, nil, nil,
	)
	steps = append(steps,
		&queryStep{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `users` WHERE user_id = \\?"),
			columns: []string{"user_id", "username", "email"},
			rows:    [][]driver.Value{{int64(2), "pak.budi", "budi@univ.ac.id"}},
		},
		&queryStep{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `user_roles`"),
			columns: []string{"user_id", "role_id"},
			rows:    nil,
		},
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewReviewService(gormDB, NewNotificationService(nil))

	_, err := service.AssignReviewers(1, userWithRoles(1, models.RoleFacultyHead), []int{2})
	if !errors.Is(err, ErrNotReviewerRole) {
		t.Fatalf("got %v, want ErrNotReviewerRole", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestRespondRejectionDoesNotAdvanceProposal(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "WAITING_REVIEWER_RESPONSE", int64(10)},
		nil, nil,
		[][]driver.Value{
			{int64(1), int64(1), int64(9), "PENDING", int64(0)},
			{int64(2), int64(1), int64(11), "ACCEPTED", int64(0)},
		},
	)
	steps = append(steps, &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("UPDATE `proposal_reviewers` SET"),
		result:  scriptedResult{rowsAffected: 1},
	})

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewReviewService(gormDB, NewNotificationService(nil))

	proposal, err := service.Respond(1, userWithRoles(9, models.RoleReviewer), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proposal.Status != models.StatusWaitingReviewer {
		t.Fatalf("rejection moved the proposal to %s; it must stay waiting", proposal.Status)
	}
	if pr := proposal.ReviewerFor(9); pr == nil || pr.Status != models.ReviewerRejected {
		t.Fatal("rejection was not recorded on the assignment row")
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestRespondLastAcceptanceStartsReview(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "WAITING_REVIEWER_RESPONSE", int64(10)},
		nil, nil,
		[][]driver.Value{
			{int64(1), int64(1), int64(9), "PENDING", int64(0)},
			{int64(2), int64(1), int64(11), "ACCEPTED", int64(0)},
		},
	)
	steps = append(steps,
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `proposal_reviewers` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `proposals` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `proposal_status_history`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewReviewService(gormDB, NewNotificationService(nil))

	proposal, err := service.Respond(1, userWithRoles(9, models.RoleReviewer), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proposal.Status != models.StatusReviewInProgress {
		t.Fatalf("last acceptance left the proposal at %s, want %s", proposal.Status, models.StatusReviewInProgress)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAllReviewersAcceptedEmptySetIsFalse(t *testing.T) {
	if allReviewersAccepted(nil) {
		t.Error("a proposal without reviewers must not count as fully accepted")
	}
	if allReviewersEvaluated(nil) {
		t.Error("a proposal without reviewers must not count as fully evaluated")
	}
}
