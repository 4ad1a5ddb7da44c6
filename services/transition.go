package services

import (
	"time"

	"research-proposal-api/models"

	"gorm.io/gorm"
)

// applyTransition advances proposal through the state machine inside the
// caller's transaction: it validates the trigger against the current status,
// updates the proposal row, and writes one history row per hop including
// pass-through statuses. The proposal struct is updated in place on success.
func applyTransition(tx *gorm.DB, proposal *models.Proposal, trigger Trigger, actorID int) error {
	path, err := StatusPath(proposal.Status, trigger)
	if err != nil {
		return err
	}

	now := time.Now()
	final := path[len(path)-1]

	if err := tx.Model(&models.Proposal{}).
		Where("proposal_id = ?", proposal.ProposalID).
		Updates(map[string]interface{}{"status": final, "update_at": now}).Error; err != nil {
		return err
	}

	prev := proposal.Status
	for _, next := range path {
		old := prev
		history := models.ProposalStatusHistory{
			ProposalID: proposal.ProposalID,
			OldStatus:  &old,
			NewStatus:  next,
			ChangedBy:  actorID,
			Trigger:    string(trigger),
			CreatedAt:  now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		prev = next
	}

	proposal.Status = final
	proposal.UpdateAt = &now
	return nil
}
