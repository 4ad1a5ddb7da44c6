package controllers

import (
	"net/http"
	"strconv"

	"research-proposal-api/services"

	"github.com/gin-gonic/gin"
)

type assignReviewersRequest struct {
	ReviewerIDs []int `json:"reviewer_ids" binding:"required,min=1,max=2"`
}

type replaceReviewerRequest struct {
	OldReviewerID int `json:"old_reviewer_id" binding:"required"`
	NewReviewerID int `json:"new_reviewer_id" binding:"required"`
}

type evaluationRequest struct {
	services.EvaluationScores
	Komentar string `json:"komentar"`
}

// AssignReviewers lets the faculty head attach reviewers to a proposal.
func AssignReviewers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	var req assignReviewersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := reviewService().AssignReviewers(proposalID, user, req.ReviewerIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal, "message": "Reviewers assigned"})
}

// ReplaceReviewer swaps a rejected reviewer for a replacement.
func ReplaceReviewer(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	var req replaceReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := reviewService().ReplaceRejected(proposalID, user, req.OldReviewerID, req.NewReviewerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal, "message": "Reviewer replaced"})
}

// ReviewerAccept records the caller's acceptance of a review assignment.
func ReviewerAccept(c *gin.Context) {
	respondReview(c, true)
}

// ReviewerReject records the caller's rejection of a review assignment.
func ReviewerReject(c *gin.Context) {
	respondReview(c, false)
}

func respondReview(c *gin.Context, accept bool) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	proposal, err := reviewService().Respond(proposalID, user, accept)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

// SubmitEvaluation stores the caller's scored rubric for a proposal.
func SubmitEvaluation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	var req evaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	evaluation, err := reviewService().SubmitEvaluation(proposalID, user, req.EvaluationScores, req.Komentar)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"evaluation": evaluation, "message": "Evaluation submitted"})
}

// GetReviewerProposals lists the proposals assigned to the caller.
func GetReviewerProposals(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposals, err := reviewService().ListForReviewer(user.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals})
}

// GetEvaluationCriteria exposes the fixed rubric so the evaluation form and
// the server always agree on weights.
func GetEvaluationCriteria(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"criteria": services.EvaluationCriteria})
}

// GetProposalEvaluationSummary returns the per-reviewer totals and their
// average for an evaluated proposal.
func GetProposalEvaluationSummary(c *gin.Context) {
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

	resp := gin.H{"evaluations": proposal.Evaluations}
	if avg, err := services.AverageTotal(proposal.Evaluations); err == nil {
		resp["average_total"] = avg
	}

	c.JSON(http.StatusOK, resp)
}
