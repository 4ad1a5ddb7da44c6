package models

import "time"

// ProposalStatusHistory tracks historical status changes for proposals.
// Pass-through statuses (APPROVED_BY_DEAN, LPPM_APPROVED, ...) get their own
// rows even though the proposal is never observed in them.
type ProposalStatusHistory struct {
	HistoryID  int             `gorm:"primaryKey;column:history_id" json:"history_id"`
	ProposalID int             `gorm:"column:proposal_id" json:"proposal_id"`
	OldStatus  *ProposalStatus `gorm:"column:old_status" json:"old_status"`
	NewStatus  ProposalStatus  `gorm:"column:new_status" json:"new_status"`
	ChangedBy  int             `gorm:"column:changed_by" json:"changed_by"`
	Trigger    string          `gorm:"column:trigger" json:"trigger"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for ProposalStatusHistory.
func (ProposalStatusHistory) TableName() string {
	return "proposal_status_history"
}
