package controllers

import (
	"net/http"
	"strconv"

	"research-proposal-api/services"

	"github.com/gin-gonic/gin"
)

// SubmitProgressReport lets the chief researcher open the monitoring chain
// for an ONGOING proposal. Multipart form: tahun_pelaksanaan,
// biaya_tahun_berjalan, biaya_keseluruhan, file.
func SubmitProgressReport(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.PostForm("proposal_id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	tahun, err := strconv.Atoi(c.PostForm("tahun_pelaksanaan"))
	if err != nil || tahun <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tahun pelaksanaan wajib diisi"})
		return
	}

	biayaTahunBerjalan, err := strconv.ParseFloat(c.PostForm("biaya_tahun_berjalan"), 64)
	if err != nil || biayaTahunBerjalan < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Biaya tahun berjalan tidak valid"})
		return
	}

	biayaKeseluruhan, err := strconv.ParseFloat(c.PostForm("biaya_keseluruhan"), 64)
	if err != nil || biayaKeseluruhan < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Biaya keseluruhan tidak valid"})
		return
	}

	// Gate before touching the upload so a rejected submission leaves no
	// file on disk and no file_uploads row.
	if err := monitoringService().EnsureCanSubmitProgressReport(proposalID, user); err != nil {
		respondServiceError(c, err)
		return
	}

	upload, ok := storeFileUpload(c, user, "file")
	if !ok {
		return
	}

	flow, err := monitoringService().SubmitProgressReport(proposalID, user, services.ProgressReportInput{
		TahunPelaksanaan:   tahun,
		BiayaTahunBerjalan: biayaTahunBerjalan,
		BiayaKeseluruhan:   biayaKeseluruhan,
		ReportFileID:       upload.FileID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report_approval_flow": flow, "message": "Laporan kemajuan diunggah"})
}

// ApproveProgressFacultyHead approves the report at faculty level.
func ApproveProgressFacultyHead(c *gin.Context) {
	approveProgress(c, "faculty_head")
}

// ApproveProgressDean approves the report at dean level.
func ApproveProgressDean(c *gin.Context) {
	approveProgress(c, "dean")
}

// ApproveProgressLPPM approves the report at LPPM level.
func ApproveProgressLPPM(c *gin.Context) {
	approveProgress(c, "lppm")
}

func approveProgress(c *gin.Context, level string) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	svc := monitoringService()
	var flow interface{}
	switch level {
	case "faculty_head":
		flow, err = svc.ApproveProgressAsFacultyHead(proposalID, user)
	case "dean":
		flow, err = svc.ApproveProgressAsDean(proposalID, user)
	case "lppm":
		flow, err = svc.ApproveProgressAsLPPM(proposalID, user)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report_approval_flow": flow})
}

// UploadMonitoringDecree lets LPPM upload the SK Pemantauan, terminating
// the monitoring chain.
func UploadMonitoringDecree(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	if err := monitoringService().EnsureCanUploadMonitoringDecree(proposalID, user); err != nil {
		respondServiceError(c, err)
		return
	}

	upload, ok := storeFileUpload(c, user, "file")
	if !ok {
		return
	}

	proposal, err := monitoringService().UploadMonitoringDecree(proposalID, user, upload.FileID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal, "message": "SK Pemantauan diunggah"})
}

// SubmitFinalReport lets the chief researcher upload the final report.
func SubmitFinalReport(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	if err := monitoringService().EnsureCanSubmitFinalReport(proposalID, user); err != nil {
		respondServiceError(c, err)
		return
	}

	upload, ok := storeFileUpload(c, user, "file")
	if !ok {
		return
	}

	proposal, err := monitoringService().SubmitFinalReport(proposalID, user, upload.FileID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal, "message": "Laporan akhir diunggah"})
}

// ApproveFinalDean approves the final report at dean level.
func ApproveFinalDean(c *gin.Context) {
	approveFinal(c, "dean")
}

// ApproveFinalLPPM gives the closing LPPM approval; the proposal completes.
func ApproveFinalLPPM(c *gin.Context) {
	approveFinal(c, "lppm")
}

func approveFinal(c *gin.Context, level string) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	proposalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || proposalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid proposal ID"})
		return
	}

	svc := monitoringService()
	var proposal interface{}
	switch level {
	case "dean":
		proposal, err = svc.ApproveFinalAsDean(proposalID, user)
	case "lppm":
		proposal, err = svc.ApproveFinalAsLPPM(proposalID, user)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}
