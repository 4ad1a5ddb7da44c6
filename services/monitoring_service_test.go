package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"research-proposal-api/models"
)

func TestSubmitProgressReportRejectsSecondSubmission(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "ONGOING", int64(10)},
		nil,
		[][]driver.Value{{int64(1), int64(1), "LAPORAN_DIUPLOAD_KETUA_PENELITI"}},
		nil,
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewMonitoringService(gormDB, NewNotificationService(nil))

	chief := models.User{UserID: 10}
	_, err := service.SubmitProgressReport(1, chief, ProgressReportInput{
		TahunPelaksanaan:   2026,
		BiayaTahunBerjalan: 50_000_000,
		BiayaKeseluruhan:   150_000_000,
		ReportFileID:       3,
	})
	if !errors.Is(err, ErrReportAlreadySubmitted) {
		t.Fatalf("got %v, want ErrReportAlreadySubmitted", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSubmitProgressReportValidatesBudgets(t *testing.T) {
	cases := []struct {
		name  string
		input ProgressReportInput
	}{
		{"current year exceeds cumulative", ProgressReportInput{
			TahunPelaksanaan:   2026,
			BiayaTahunBerjalan: 200_000_000,
			BiayaKeseluruhan:   150_000_000,
			ReportFileID:       3,
		}},
		{"negative budget", ProgressReportInput{
			TahunPelaksanaan:   2026,
			BiayaTahunBerjalan: -1,
			BiayaKeseluruhan:   150_000_000,
			ReportFileID:       3,
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			steps := loadProposalSteps(
				[]driver.Value{int64(1), "Proposal A", "ONGOING", int64(10)},
				nil, nil, nil,
			)

			gormDB, state, cleanup := newScriptedGormDB(t, steps)
			defer cleanup()

			service := NewMonitoringService(gormDB, NewNotificationService(nil))

			if _, err := service.SubmitProgressReport(1, models.User{UserID: 10}, c.input); err == nil {
				t.Fatal("expected a budget validation error")
			}

			if err := state.verifyComplete(); err != nil {
				t.Fatalf("%v", err)
			}
		})
	}
}

func TestSubmitProgressReportOpensTheChain(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "ONGOING", int64(10)},
		nil, nil, nil,
	)
	steps = append(steps,
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `report_approval_flows`"),
			result:  scriptedResult{lastInsertID: 5, rowsAffected: 1},
		},
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `report_approval_flows` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewMonitoringService(gormDB, NewNotificationService(nil))

	flow, err := service.SubmitProgressReport(1, models.User{UserID: 10}, ProgressReportInput{
		TahunPelaksanaan:   2026,
		BiayaTahunBerjalan: 50_000_000,
		BiayaKeseluruhan:   150_000_000,
		ReportFileID:       3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.Status != models.ReportUploaded {
		t.Fatalf("flow opened at %s, want %s", flow.Status, models.ReportUploaded)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestApproveProgressRequiresAnUploadedReport(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "ONGOING", int64(10)},
		nil, nil, nil,
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewMonitoringService(gormDB, NewNotificationService(nil))

	_, err := service.ApproveProgressAsFacultyHead(1, userWithRoles(1, models.RoleFacultyHead))
	if !errors.Is(err, ErrNoReportFlow) {
		t.Fatalf("got %v, want ErrNoReportFlow", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestApproveProgressRejectsOutOfOrderApproval(t *testing.T) {
	// The dean cannot act while the report still waits for the faculty head.
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "ONGOING", int64(10)},
		nil,
		[][]driver.Value{{int64(1), int64(1), "LAPORAN_DIUPLOAD_KETUA_PENELITI"}},
		nil,
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewMonitoringService(gormDB, NewNotificationService(nil))

	_, err := service.ApproveProgressAsDean(1, userWithRoles(1, models.RoleDekan))
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("got %v, want ErrNotPermitted", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestApproveProgressAdvancesOneStep(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "ONGOING", int64(10)},
		nil,
		[][]driver.Value{{int64(1), int64(1), "LAPORAN_DIUPLOAD_KETUA_PENELITI"}},
		nil,
	)
	steps = append(steps, &queryStep{
		kind:    kindExec,
		pattern: regexp.MustCompile("UPDATE `report_approval_flows` SET"),
		result:  scriptedResult{rowsAffected: 1},
	})

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewMonitoringService(gormDB, NewNotificationService(nil))

	flow, err := service.ApproveProgressAsFacultyHead(1, userWithRoles(1, models.RoleFacultyHead))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flow.Status != models.ReportApprovedFacultyHead {
		t.Fatalf("flow advanced to %s, want %s", flow.Status, models.ReportApprovedFacultyHead)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestUploadMonitoringDecreeRecordsMilestone(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "ONGOING", int64(10)},
		nil,
		[][]driver.Value{{int64(1), int64(1), "DISETUJUI_KETUA_LPPM"}},
		nil,
	)
	steps = append(steps,
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `report_approval_flows` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `proposals` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		// Two history rows: the pass-through submission hop and the landing
		// status.
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `proposal_status_history`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `proposal_status_history`"),
			result:  scriptedResult{lastInsertID: 2, rowsAffected: 1},
		},
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewMonitoringService(gormDB, NewNotificationService(nil))

	proposal, err := service.UploadMonitoringDecree(1, userWithRoles(1, models.RoleKetuaLPPM), 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proposal.Status != models.StatusProgressApproved {
		t.Fatalf("proposal landed at %s, want %s", proposal.Status, models.StatusProgressApproved)
	}
	if proposal.ReportFlow.SKPemantauanFileID == nil || *proposal.ReportFlow.SKPemantauanFileID != 8 {
		t.Fatal("decree file id was not recorded on the flow")
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestUploadMonitoringDecreeRequiresFullChainApproval(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "ONGOING", int64(10)},
		nil,
		[][]driver.Value{{int64(1), int64(1), "DISETUJUI_DEKAN"}},
		nil,
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewMonitoringService(gormDB, NewNotificationService(nil))

	_, err := service.UploadMonitoringDecree(1, userWithRoles(1, models.RoleKetuaLPPM), 8)
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("got %v, want ErrNotPermitted", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestEnsureCanSubmitProgressReportStopsARejectedUpload(t *testing.T) {
	// The gate runs before the document is persisted, so a proposal whose
	// report is already in flight answers with the conflict and issues no
	// writes at all.
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "ONGOING", int64(10)},
		nil,
		[][]driver.Value{{int64(1), int64(1), "LAPORAN_DIUPLOAD_KETUA_PENELITI"}},
		nil,
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewMonitoringService(gormDB, NewNotificationService(nil))

	err := service.EnsureCanSubmitProgressReport(1, models.User{UserID: 10})
	if !errors.Is(err, ErrReportAlreadySubmitted) {
		t.Fatalf("got %v, want ErrReportAlreadySubmitted", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestEnsureCanSubmitFinalReportRejectsBeforeMilestone(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "ONGOING", int64(10)},
		nil,
		[][]driver.Value{{int64(1), int64(1), "DISETUJUI_KETUA_LPPM"}},
		nil,
	)

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewMonitoringService(gormDB, NewNotificationService(nil))

	if err := service.EnsureCanSubmitFinalReport(1, models.User{UserID: 10}); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("got %v, want ErrNotPermitted", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestSubmitFinalReportKeepsTheProgressDocument(t *testing.T) {
	steps := loadProposalSteps(
		[]driver.Value{int64(1), "Proposal A", "PROGRESS_APPROVED", int64(10)},
		nil,
		[][]driver.Value{{int64(1), int64(1), "DISETUJUI_KETUA_LPPM"}},
		nil,
	)
	steps = append(steps,
		// The final report lands in its own column; a write touching
		// report_file_id would not match and fail the script.
		&queryStep{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `report_approval_flows` SET `final_report_file_id`"),
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

	service := NewMonitoringService(gormDB, NewNotificationService(nil))

	proposal, err := service.SubmitFinalReport(1, models.User{UserID: 10}, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proposal.Status != models.StatusFinalSubmitted {
		t.Fatalf("proposal landed at %s, want %s", proposal.Status, models.StatusFinalSubmitted)
	}
	if proposal.ReportFlow.FinalReportFileID == nil || *proposal.ReportFlow.FinalReportFileID != 9 {
		t.Fatal("final report file id was not recorded on the flow")
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
