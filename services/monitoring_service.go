package services

import (
	"errors"
	"fmt"
	"time"

	"research-proposal-api/models"

	"gorm.io/gorm"
)

var (
	ErrReportAlreadySubmitted = errors.New("progress report already submitted for this proposal")
	ErrNoReportFlow           = errors.New("proposal has no progress report to approve")
)

// MonitoringService owns the progress-report approval chain that runs while
// a proposal is ONGOING, and the final-report tail that completes it.
type MonitoringService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewMonitoringService(db *gorm.DB, notifier *NotificationService) *MonitoringService {
	return &MonitoringService{db: db, notifier: notifier}
}

// ProgressReportInput carries the chief researcher's submission.
type ProgressReportInput struct {
	TahunPelaksanaan   int
	BiayaTahunBerjalan float64
	BiayaKeseluruhan   float64
	ReportFileID       int
}

// SubmitProgressReport opens the approval chain: the chief researcher
// uploads the annual report with its budgets, and the faculty head is asked
// to approve.
func (s *MonitoringService) SubmitProgressReport(proposalID int, actor models.User, input ProgressReportInput) (*models.ReportApprovalFlow, error) {
	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if err := checkSubmitProgress(proposal, actor); err != nil {
		return nil, err
	}

	if input.BiayaTahunBerjalan < 0 || input.BiayaKeseluruhan < 0 {
		return nil, errors.New("budget amounts cannot be negative")
	}
	if input.BiayaTahunBerjalan > input.BiayaKeseluruhan {
		return nil, errors.New("current-year budget cannot exceed the cumulative budget")
	}

	now := time.Now()
	flow := proposal.ReportFlow
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if flow == nil {
			flow = &models.ReportApprovalFlow{
				ProposalID: proposalID,
				CreateAt:   now,
			}
			if err := tx.Create(flow).Error; err != nil {
				return err
			}
		}
		return s.advanceFlow(tx, flow, models.ReportUploaded, map[string]interface{}{
			"tahun_pelaksanaan":    input.TahunPelaksanaan,
			"biaya_tahun_berjalan": input.BiayaTahunBerjalan,
			"biaya_keseluruhan":    input.BiayaKeseluruhan,
			"report_file_id":       input.ReportFileID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyRole(models.RoleFacultyHead,
		"Laporan kemajuan menunggu persetujuan",
		fmt.Sprintf("Ketua peneliti mengunggah laporan kemajuan proposal %q.", proposal.Title),
		"info", &proposal.ProposalID)

	return flow, nil
}

// checkSubmitProgress is the shared gate for the progress-report upload.
// A second submission reads as its own conflict, everything else as a
// permission failure.
func checkSubmitProgress(proposal *models.Proposal, actor models.User) error {
	if !CanPerform(actor, ActionSubmitProgressReport, proposal) {
		if proposal.ReportFlow != nil && proposal.ReportFlow.Status != "" {
			return ErrReportAlreadySubmitted
		}
		return ErrNotPermitted
	}
	return nil
}

func checkUploadDecree(proposal *models.Proposal, actor models.User) error {
	if proposal.ReportFlow == nil {
		return ErrNoReportFlow
	}
	if !CanPerform(actor, ActionUploadMonitoringDecree, proposal) {
		return ErrNotPermitted
	}
	return nil
}

func checkSubmitFinal(proposal *models.Proposal, actor models.User) error {
	if !CanPerform(actor, ActionSubmitFinalReport, proposal) {
		return ErrNotPermitted
	}
	return nil
}

// EnsureCanSubmitProgressReport runs the submission gate without writing
// anything, so controllers can reject a request before persisting the
// uploaded document.
func (s *MonitoringService) EnsureCanSubmitProgressReport(proposalID int, actor models.User) error {
	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return err
	}
	return checkSubmitProgress(proposal, actor)
}

// EnsureCanUploadMonitoringDecree is the write-free gate for the SK
// Pemantauan upload.
func (s *MonitoringService) EnsureCanUploadMonitoringDecree(proposalID int, actor models.User) error {
	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return err
	}
	return checkUploadDecree(proposal, actor)
}

// EnsureCanSubmitFinalReport is the write-free gate for the final-report
// upload.
func (s *MonitoringService) EnsureCanSubmitFinalReport(proposalID int, actor models.User) error {
	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return err
	}
	return checkSubmitFinal(proposal, actor)
}

// ApproveProgressAsFacultyHead approves the uploaded report at faculty level.
func (s *MonitoringService) ApproveProgressAsFacultyHead(proposalID int, actor models.User) (*models.ReportApprovalFlow, error) {
	return s.approveProgress(proposalID, actor, ActionApproveProgressFaculty, models.ReportApprovedFacultyHead)
}

// ApproveProgressAsDean approves the report at dean level.
func (s *MonitoringService) ApproveProgressAsDean(proposalID int, actor models.User) (*models.ReportApprovalFlow, error) {
	return s.approveProgress(proposalID, actor, ActionApproveProgressDean, models.ReportApprovedDekan)
}

// ApproveProgressAsLPPM approves the report at LPPM level; only the
// monitoring decree upload remains after this.
func (s *MonitoringService) ApproveProgressAsLPPM(proposalID int, actor models.User) (*models.ReportApprovalFlow, error) {
	return s.approveProgress(proposalID, actor, ActionApproveProgressLPPM, models.ReportApprovedLPPM)
}

func (s *MonitoringService) approveProgress(proposalID int, actor models.User, action Action, target models.ReportStatus) (*models.ReportApprovalFlow, error) {
	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ReportFlow == nil {
		return nil, ErrNoReportFlow
	}
	if !CanPerform(actor, action, proposal) {
		return nil, ErrNotPermitted
	}

	flow := proposal.ReportFlow
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.advanceFlow(tx, flow, target, nil)
	})
	if err != nil {
		return nil, err
	}

	s.notifyProgress(proposal, target)
	return flow, nil
}

// advanceFlow moves the chain exactly one step; target must be the single
// legal successor of the flow's current status.
func (s *MonitoringService) advanceFlow(tx *gorm.DB, flow *models.ReportApprovalFlow, target models.ReportStatus, extra map[string]interface{}) error {
	next, err := ReportNext(flow.Status)
	if err != nil {
		return err
	}
	if next != target {
		return fmt.Errorf("%w: report chain expects %s, not %s", ErrInvalidTransition, next, target)
	}

	now := time.Now()
	updates := map[string]interface{}{"status": target, "update_at": now}
	for k, v := range extra {
		updates[k] = v
	}

	if err := tx.Model(&models.ReportApprovalFlow{}).
		Where("flow_id = ?", flow.FlowID).
		Updates(updates).Error; err != nil {
		return err
	}

	flow.Status = target
	flow.UpdateAt = &now
	return nil
}

func (s *MonitoringService) notifyProgress(proposal *models.Proposal, reached models.ReportStatus) {
	id := &proposal.ProposalID

	switch reached {
	case models.ReportApprovedFacultyHead:
		s.notifier.NotifyRole(models.RoleDekan,
			"Laporan kemajuan menunggu persetujuan Dekan",
			fmt.Sprintf("Laporan kemajuan proposal %q telah disetujui ketua penelitian fakultas.", proposal.Title),
			"info", id)
	case models.ReportApprovedDekan:
		s.notifier.NotifyRole(models.RoleKetuaLPPM,
			"Laporan kemajuan menunggu persetujuan LPPM",
			fmt.Sprintf("Laporan kemajuan proposal %q telah disetujui Dekan.", proposal.Title),
			"info", id)
	case models.ReportApprovedLPPM:
		s.notifier.NotifyRole(models.RoleKetuaLPPM,
			"SK Pemantauan perlu diterbitkan",
			fmt.Sprintf("Laporan kemajuan proposal %q disetujui penuh. Silakan unggah SK Pemantauan.", proposal.Title),
			"info", id)
		s.notifier.Notify(proposal.ChiefResearcher,
			"Laporan kemajuan disetujui",
			fmt.Sprintf("Laporan kemajuan proposal %q disetujui LPPM.", proposal.Title),
			"success", id)
	}
}

// UploadMonitoringDecree terminates the chain: LPPM uploads the SK
// Pemantauan document and the proposal records the monitoring milestone
// (PROGRESS_REPORT_SUBMITTED is logged as a pass-through hop, the proposal
// lands in PROGRESS_APPROVED).
func (s *MonitoringService) UploadMonitoringDecree(proposalID int, actor models.User, fileID int) (*models.Proposal, error) {
	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if err := checkUploadDecree(proposal, actor); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.ReportApprovalFlow{}).
			Where("flow_id = ?", proposal.ReportFlow.FlowID).
			Updates(map[string]interface{}{"sk_pemantauan_file_id": fileID, "update_at": now}).Error; err != nil {
			return err
		}
		proposal.ReportFlow.SKPemantauanFileID = &fileID
		return applyTransition(tx, proposal, TriggerMonitoringDecree, actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(proposal.ChiefResearcher,
		"SK Pemantauan diterbitkan",
		fmt.Sprintf("LPPM menerbitkan SK Pemantauan untuk proposal %q.", proposal.Title),
		"success", &proposal.ProposalID)

	return proposal, nil
}

// SubmitFinalReport opens the completion tail: the chief researcher uploads
// the final report once the monitoring milestone is approved.
func (s *MonitoringService) SubmitFinalReport(proposalID int, actor models.User, fileID int) (*models.Proposal, error) {
	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if err := checkSubmitFinal(proposal, actor); err != nil {
		return nil, err
	}

	// The final report gets its own column so the progress-report
	// document stays retrievable alongside it.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.ReportApprovalFlow{}).
			Where("proposal_id = ?", proposalID).
			Updates(map[string]interface{}{"final_report_file_id": fileID, "update_at": now}).Error; err != nil {
			return err
		}
		if proposal.ReportFlow != nil {
			proposal.ReportFlow.FinalReportFileID = &fileID
		}
		return applyTransition(tx, proposal, TriggerFinalReportSubmitted, actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyRole(models.RoleDekan,
		"Laporan akhir menunggu persetujuan",
		fmt.Sprintf("Ketua peneliti mengunggah laporan akhir proposal %q.", proposal.Title),
		"info", &proposal.ProposalID)

	return proposal, nil
}

// ApproveFinalAsDean approves the final report at dean level.
func (s *MonitoringService) ApproveFinalAsDean(proposalID int, actor models.User) (*models.Proposal, error) {
	return s.approveFinal(proposalID, actor, ActionApproveFinalAsDean, TriggerFinalDeanApproved)
}

// ApproveFinalAsLPPM gives the closing institutional approval; the proposal
// completes.
func (s *MonitoringService) ApproveFinalAsLPPM(proposalID int, actor models.User) (*models.Proposal, error) {
	return s.approveFinal(proposalID, actor, ActionApproveFinalAsLPPM, TriggerFinalLPPMApproved)
}

func (s *MonitoringService) approveFinal(proposalID int, actor models.User, action Action, trigger Trigger) (*models.Proposal, error) {
	proposal, err := s.loadProposal(proposalID)
	if err != nil {
		return nil, err
	}
	if !CanPerform(actor, action, proposal) {
		return nil, ErrNotPermitted
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return applyTransition(tx, proposal, trigger, actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	switch trigger {
	case TriggerFinalDeanApproved:
		s.notifier.NotifyRole(models.RoleKetuaLPPM,
			"Laporan akhir menunggu persetujuan LPPM",
			fmt.Sprintf("Laporan akhir proposal %q telah disetujui Dekan.", proposal.Title),
			"info", &proposal.ProposalID)
	case TriggerFinalLPPMApproved:
		s.notifier.Notify(proposal.ChiefResearcher,
			"Penelitian selesai",
			fmt.Sprintf("Proposal %q dinyatakan selesai oleh LPPM.", proposal.Title),
			"success", &proposal.ProposalID)
	}

	return proposal, nil
}

func (s *MonitoringService) loadProposal(proposalID int) (*models.Proposal, error) {
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
