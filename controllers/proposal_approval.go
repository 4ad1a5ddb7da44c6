package controllers

import (
	"net/http"
	"strconv"

	"research-proposal-api/models"

	"github.com/gin-gonic/gin"
)

// ApproveAsFacultyHead moves a fully reviewed proposal to the dean's queue.
func ApproveAsFacultyHead(c *gin.Context) {
	approveProposal(c, models.RoleFacultyHead)
}

// ApproveAsDean passes a proposal to LPPM.
func ApproveAsDean(c *gin.Context) {
	approveProposal(c, models.RoleDekan)
}

// ApproveAsLPPM gives final institutional approval.
func ApproveAsLPPM(c *gin.Context) {
	approveProposal(c, models.RoleKetuaLPPM)
}

func approveProposal(c *gin.Context, role string) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	svc := approvalService()
	var proposal *models.Proposal
	switch role {
	case models.RoleFacultyHead:
		proposal, err = svc.ApproveAsFacultyHead(proposalID, user)
	case models.RoleDekan:
		proposal, err = svc.ApproveAsDean(proposalID, user)
	case models.RoleKetuaLPPM:
		proposal, err = svc.ApproveAsLPPM(proposalID, user)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal, "message": "Proposal approved"})
}
