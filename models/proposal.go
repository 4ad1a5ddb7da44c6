package models

import "time"

// Proposal represents the proposals table.
type Proposal struct {
	ProposalID      int            `gorm:"primaryKey;column:proposal_id" json:"proposal_id"`
	Title           string         `gorm:"column:title" json:"title"`
	PeriodStart     *time.Time     `gorm:"column:period_start" json:"period_start"`
	PeriodEnd       *time.Time     `gorm:"column:period_end" json:"period_end"`
	FundingSource   string         `gorm:"column:funding_source" json:"funding_source"`
	FundingAmount   float64        `gorm:"column:funding_amount" json:"funding_amount"`
	Outcome         string         `gorm:"column:outcome" json:"outcome"`
	PartnerName     *string        `gorm:"column:partner_name" json:"partner_name,omitempty"`
	PartnerAddress  *string        `gorm:"column:partner_address" json:"partner_address,omitempty"`
	FileID          *int           `gorm:"column:file_id" json:"file_id,omitempty"`
	Status          ProposalStatus `gorm:"column:status" json:"status"`
	ChiefResearcher int            `gorm:"column:chief_researcher_id" json:"chief_researcher_id"`
	CreateAt        time.Time      `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time     `gorm:"column:update_at" json:"update_at"`
	DeleteAt        *time.Time     `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Chief       *User                `gorm:"foreignKey:ChiefResearcher;references:UserID" json:"chief,omitempty"`
	File        *FileUpload          `gorm:"foreignKey:FileID;references:FileID" json:"file,omitempty"`
	Members     []ProposalMember     `gorm:"foreignKey:ProposalID;references:ProposalID" json:"members,omitempty"`
	Reviewers   []ProposalReviewer   `gorm:"foreignKey:ProposalID;references:ProposalID" json:"reviewers,omitempty"`
	Evaluations []ProposalEvaluation `gorm:"foreignKey:ProposalID;references:ProposalID" json:"evaluations,omitempty"`
	ReportFlow  *ReportApprovalFlow  `gorm:"foreignKey:ProposalID;references:ProposalID" json:"report_approval_flow,omitempty"`
}

// ProposalMember joins a proposal to an invited researcher with the role
// they hold in the proposal and their acceptance status. Rows are frozen
// once the proposal leaves the membership-confirmation phase.
type ProposalMember struct {
	MemberID       int        `gorm:"primaryKey;column:member_id" json:"member_id"`
	ProposalID     int        `gorm:"column:proposal_id" json:"proposal_id"`
	UserID         int        `gorm:"column:user_id" json:"user_id"`
	RoleInProposal string     `gorm:"column:role_in_proposal" json:"role_in_proposal"`
	Status         string     `gorm:"column:status" json:"status"`
	CreateAt       time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// ProposalReviewer joins a proposal to an assigned reviewer.
type ProposalReviewer struct {
	ProposalReviewerID int        `gorm:"primaryKey;column:proposal_reviewer_id" json:"proposal_reviewer_id"`
	ProposalID         int        `gorm:"column:proposal_id" json:"proposal_id"`
	ReviewerID         int        `gorm:"column:reviewer_id" json:"reviewer_id"`
	Status             string     `gorm:"column:status" json:"status"`
	IsEvaluated        bool       `gorm:"column:is_evaluated" json:"is_evaluated"`
	CreateAt           time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt           *time.Time `gorm:"column:update_at" json:"update_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
}

// ProposalEvaluation is one reviewer's scored rubric for a proposal.
// Created exactly once per (proposal, reviewer) pair; immutable thereafter.
// Criterion column names keep the Indonesian rubric terms used on the
// evaluation form.
type ProposalEvaluation struct {
	EvaluationID             int       `gorm:"primaryKey;column:evaluation_id" json:"evaluation_id"`
	ProposalID               int       `gorm:"column:proposal_id" json:"proposal_id"`
	ReviewerID               int       `gorm:"column:reviewer_id" json:"reviewer_id"`
	NilaiKualitasDanKebaruan float64   `gorm:"column:nilai_kualitas_dan_kebaruan" json:"nilaiKualitasDanKebaruan"`
	NilaiRoadmap             float64   `gorm:"column:nilai_roadmap" json:"nilaiRoadmap"`
	NilaiTinjauanPustaka     float64   `gorm:"column:nilai_tinjauan_pustaka" json:"nilaiTinjauanPustaka"`
	NilaiKemutakhiranSumber  float64   `gorm:"column:nilai_kemutakhiran_sumber" json:"nilaiKemutakhiranSumber"`
	NilaiMetodologi          float64   `gorm:"column:nilai_metodologi" json:"nilaiMetodologi"`
	NilaiTargetLuaran        float64   `gorm:"column:nilai_target_luaran" json:"nilaiTargetLuaran"`
	NilaiKompetensiDanTugas  float64   `gorm:"column:nilai_kompetensi_dan_tugas" json:"nilaiKompetensiDanTugas"`
	NilaiPenulisan           float64   `gorm:"column:nilai_penulisan" json:"nilaiPenulisan"`
	Komentar                 string    `gorm:"column:komentar" json:"komentar"`
	TotalNilai               float64   `gorm:"column:total_nilai" json:"totalNilai"`
	EvaluatedAt              time.Time `gorm:"column:evaluated_at" json:"evaluated_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
}

// ReportApprovalFlow tracks the progress-report approval chain attached to
// an ONGOING proposal. Status is NULL until the chief researcher uploads
// the first report; SKPemantauanFileID set marks the chain terminal.
type ReportApprovalFlow struct {
	FlowID             int          `gorm:"primaryKey;column:flow_id" json:"flow_id"`
	ProposalID         int          `gorm:"column:proposal_id" json:"proposal_id"`
	Status             ReportStatus `gorm:"column:status" json:"status"`
	TahunPelaksanaan   *int         `gorm:"column:tahun_pelaksanaan" json:"tahunPelaksanaan,omitempty"`
	BiayaTahunBerjalan *float64     `gorm:"column:biaya_tahun_berjalan" json:"biayaTahunBerjalan,omitempty"`
	BiayaKeseluruhan   *float64     `gorm:"column:biaya_keseluruhan" json:"biayaKeseluruhan,omitempty"`
	ReportFileID       *int         `gorm:"column:report_file_id" json:"report_file_id,omitempty"`
	SKPemantauanFileID *int         `gorm:"column:sk_pemantauan_file_id" json:"sk_pemantauan_file_id,omitempty"`
	FinalReportFileID  *int         `gorm:"column:final_report_file_id" json:"final_report_file_id,omitempty"`
	CreateAt           time.Time    `gorm:"column:create_at" json:"create_at"`
	UpdateAt           *time.Time   `gorm:"column:update_at" json:"update_at"`

	ReportFile       *FileUpload `gorm:"foreignKey:ReportFileID;references:FileID" json:"report_file,omitempty"`
	SKPemantauanFile *FileUpload `gorm:"foreignKey:SKPemantauanFileID;references:FileID" json:"sk_pemantauan_file,omitempty"`
	FinalReportFile  *FileUpload `gorm:"foreignKey:FinalReportFileID;references:FileID" json:"final_report_file,omitempty"`
}

// TableName overrides
func (Proposal) TableName() string {
	return "proposals"
}

func (ProposalMember) TableName() string {
	return "proposal_members"
}

func (ProposalReviewer) TableName() string {
	return "proposal_reviewers"
}

func (ProposalEvaluation) TableName() string {
	return "proposal_evaluations"
}

func (ReportApprovalFlow) TableName() string {
	return "report_approval_flows"
}

// MemberIDs returns the user ids of all invited members.
func (p Proposal) MemberIDs() []int {
	ids := make([]int, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// DosenMemberIDs returns user ids of members invited as ANGGOTA_DOSEN.
func (p Proposal) DosenMemberIDs() []int {
	ids := make([]int, 0, len(p.Members))
	for _, m := range p.Members {
		if m.RoleInProposal == MemberRoleDosen {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// ReviewerFor returns the reviewer join row for the given user, or nil.
func (p Proposal) ReviewerFor(userID int) *ProposalReviewer {
	for i := range p.Reviewers {
		if p.Reviewers[i].ReviewerID == userID {
			return &p.Reviewers[i]
		}
	}
	return nil
}
