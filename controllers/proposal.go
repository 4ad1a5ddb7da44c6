package controllers

import (
	"net/http"
	"strconv"
	"time"

	"research-proposal-api/config"
	"research-proposal-api/models"
	"research-proposal-api/services"

	"github.com/gin-gonic/gin"
)

const maxDocumentSize = 10 * 1024 * 1024

type proposalMemberRequest struct {
	UserID         int    `json:"user_id" binding:"required"`
	RoleInProposal string `json:"role_in_proposal" binding:"required,oneof=ANGGOTA_DOSEN ANGGOTA_MAHASISWA"`
}

type proposalRequest struct {
	Title          string                  `json:"title" binding:"required"`
	PeriodStart    *time.Time              `json:"period_start"`
	PeriodEnd      *time.Time              `json:"period_end"`
	FundingSource  string                  `json:"funding_source" binding:"required"`
	FundingAmount  float64                 `json:"funding_amount" binding:"required,gt=0"`
	Outcome        string                  `json:"outcome"`
	PartnerName    *string                 `json:"partner_name"`
	PartnerAddress *string                 `json:"partner_address"`
	FileID         *int                    `json:"file_id"`
	Members        []proposalMemberRequest `json:"members" binding:"dive"`
	Draft          bool                    `json:"draft"`
}

func (r proposalRequest) toInput() services.ProposalInput {
	members := make(map[int]string, len(r.Members))
	for _, m := range r.Members {
		members[m.UserID] = m.RoleInProposal
	}
	return services.ProposalInput{
		Title:          r.Title,
		PeriodStart:    r.PeriodStart,
		PeriodEnd:      r.PeriodEnd,
		FundingSource:  r.FundingSource,
		FundingAmount:  r.FundingAmount,
		Outcome:        r.Outcome,
		PartnerName:    r.PartnerName,
		PartnerAddress: r.PartnerAddress,
		FileID:         r.FileID,
		Members:        members,
		Draft:          r.Draft,
	}
}

// GetProposals lists the proposals visible to the caller.
func GetProposals(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposals, err := proposalService().ListForUser(user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// GetProposal returns one proposal with its full workflow state.
func GetProposal(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	proposal, err := proposalService().Get(proposalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

// CreateProposal creates (and unless draft, submits) a proposal.
func CreateProposal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req proposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := proposalService().Create(user, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"proposal": proposal, "message": "Proposal created"})
}

// UpdateProposal edits an early-state proposal.
func UpdateProposal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	var req proposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := proposalService().Update(proposalID, user, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal, "message": "Proposal updated"})
}

// DeleteProposal soft-deletes an early-state proposal.
func DeleteProposal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	if err := proposalService().Delete(proposalID, user); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Proposal deleted"})
}

// SubmitProposal moves a draft into the confirmation phase.
func SubmitProposal(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	proposal, err := proposalService().Submit(proposalID, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal, "message": "Proposal submitted"})
}

// ApproveMembership records the caller's acceptance of a member invitation.
func ApproveMembership(c *gin.Context) {
	respondMembership(c, true)
}

// RejectMembership records the caller's rejection of a member invitation.
func RejectMembership(c *gin.Context) {
	respondMembership(c, false)
}

func respondMembership(c *gin.Context, accept bool) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	proposal, err := proposalService().RespondMembership(proposalID, user, accept)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

// UploadProposalFile stores a proposal document and returns the file row to
// reference from a create/update call.
func UploadProposalFile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	upload, ok := storeFileUpload(c, user, "file")
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file": upload})
}

// GetProposalStatuses exposes the canonical lifecycle for clients that
// render progress indicators.
func GetProposalStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"statuses": models.ProposalLifecycle()})
}

// GetProposalHistory returns the recorded status transitions of a proposal.
func GetProposalHistory(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	var history []models.ProposalStatusHistory
	if err := config.DB.
		Where("proposal_id = ?", proposalID).
		Order("history_id ASC").
		Find(&history).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
