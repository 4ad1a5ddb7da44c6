package models

// ProposalStatus is the canonical lifecycle state of a proposal. The value
// stored in proposals.status is always one of the constants below; nothing
// in the service layer ever writes a free-form string.
type ProposalStatus string

const (
	StatusDraft                 ProposalStatus = "DRAFT"
	StatusWaitingMemberApproval ProposalStatus = "WAITING_MEMBER_APPROVAL"
	StatusWaitingFacultyHead    ProposalStatus = "WAITING_FACULTY_HEAD"
	StatusWaitingReviewer       ProposalStatus = "WAITING_REVIEWER_RESPONSE"
	StatusReviewInProgress      ProposalStatus = "REVIEW_IN_PROGRESS"
	StatusReviewCompleted       ProposalStatus = "REVIEW_COMPLETED"
	StatusWaitingDeanApproval   ProposalStatus = "WAITING_DEAN_APPROVAL"
	StatusApprovedByDean        ProposalStatus = "APPROVED_BY_DEAN"
	StatusWaitingLPPMApproval   ProposalStatus = "WAITING_LPPM_APPROVAL"
	StatusLPPMApproved          ProposalStatus = "LPPM_APPROVED"
	StatusOngoing               ProposalStatus = "ONGOING"
	StatusProgressSubmitted     ProposalStatus = "PROGRESS_REPORT_SUBMITTED"
	StatusProgressApproved      ProposalStatus = "PROGRESS_APPROVED"
	StatusFinalSubmitted        ProposalStatus = "FINAL_REPORT_SUBMITTED"
	StatusFinalApprovedByDean   ProposalStatus = "FINAL_APPROVED_BY_DEAN"
	StatusFinalApprovedByLPPM   ProposalStatus = "FINAL_APPROVED_BY_LPPM"
	StatusCompleted             ProposalStatus = "COMPLETED"
)

// proposalLifecycle lists every status in lifecycle order. Transitions only
// ever move forward through this list.
var proposalLifecycle = []ProposalStatus{
	StatusDraft,
	StatusWaitingMemberApproval,
	StatusWaitingFacultyHead,
	StatusWaitingReviewer,
	StatusReviewInProgress,
	StatusReviewCompleted,
	StatusWaitingDeanApproval,
	StatusApprovedByDean,
	StatusWaitingLPPMApproval,
	StatusLPPMApproved,
	StatusOngoing,
	StatusProgressSubmitted,
	StatusProgressApproved,
	StatusFinalSubmitted,
	StatusFinalApprovedByDean,
	StatusFinalApprovedByLPPM,
	StatusCompleted,
}

// ProposalLifecycle returns the ordered status list (copy, callers may not
// mutate the canonical slice).
func ProposalLifecycle() []ProposalStatus {
	out := make([]ProposalStatus, len(proposalLifecycle))
	copy(out, proposalLifecycle)
	return out
}

// IsValid reports whether s is a member of the canonical enumeration.
func (s ProposalStatus) IsValid() bool {
	return s.Index() >= 0
}

// Index returns the position of s in lifecycle order, or -1 for an unknown
// status.
func (s ProposalStatus) Index() int {
	for i, v := range proposalLifecycle {
		if v == s {
			return i
		}
	}
	return -1
}

// After reports whether s comes strictly after other in lifecycle order.
// Unknown statuses never compare after anything.
func (s ProposalStatus) After(other ProposalStatus) bool {
	si, oi := s.Index(), other.Index()
	return si >= 0 && oi >= 0 && si > oi
}

// Membership acceptance states for ProposalMember rows.
const (
	MemberPending = "PENDING"
	MemberAccept  = "ACCEPT"
	MemberReject  = "REJECT"
)

// Roles a member holds within a proposal.
const (
	MemberRoleDosen     = "ANGGOTA_DOSEN"
	MemberRoleMahasiswa = "ANGGOTA_MAHASISWA"
)

// Reviewer response states for ProposalReviewer rows.
const (
	ReviewerPending  = "PENDING"
	ReviewerAccepted = "ACCEPTED"
	ReviewerRejected = "REJECTED"
)

// ReportStatus tracks the sequential progress-report approval chain. The
// zero value (empty string, NULL column) means no report has been submitted
// yet.
type ReportStatus string

const (
	ReportUploaded            ReportStatus = "LAPORAN_DIUPLOAD_KETUA_PENELITI"
	ReportApprovedFacultyHead ReportStatus = "DISETUJUI_KETUA_PENELITIAN_FAKULTAS"
	ReportApprovedDekan       ReportStatus = "DISETUJUI_DEKAN"
	ReportApprovedLPPM        ReportStatus = "DISETUJUI_KETUA_LPPM"
)

var reportChain = []ReportStatus{
	ReportUploaded,
	ReportApprovedFacultyHead,
	ReportApprovedDekan,
	ReportApprovedLPPM,
}

// ReportChain returns the ordered report approval statuses.
func ReportChain() []ReportStatus {
	out := make([]ReportStatus, len(reportChain))
	copy(out, reportChain)
	return out
}

// IsValid reports whether s is a member of the report chain enumeration.
// The empty "not yet submitted" state is not a member.
func (s ReportStatus) IsValid() bool {
	for _, v := range reportChain {
		if v == s {
			return true
		}
	}
	return false
}
