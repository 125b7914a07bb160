package controllers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"voucher-redemption-api/config"
	"voucher-redemption-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var knownStatuses = map[string]bool{
	models.StatusSubmitted:        true,
	models.StatusApproved:         true,
	models.StatusNeedsReview:      true,
	models.StatusRejected:         true,
	models.StatusSentForPayment:   true,
	models.StatusPaymentConfirmed: true,
	models.StatusReissueRequested: true,
	models.StatusReissueConfirmed: true,
}

// ListApplications returns applications, optionally filtered by status,
// newest first.
func ListApplications(c *gin.Context) {
	query := config.DB.Order("submitted_date DESC")

	status := c.Query("status")
	if status != "" {
		if !knownStatuses[status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + status})
			return
		}
		query = query.Where("status = ?", status)
	}

	var apps []models.Application
	if err := query.Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": apps,
		"total":        len(apps),
	})
}

// GetApplication returns one application with its status history.
func GetApplication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	var app models.Application
	if err := config.DB.First(&app, "application_id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	var history []models.StatusUpdate
	if err := config.DB.Order("date ASC").
		Find(&history, "application_id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application":    app,
		"status_updates": history,
	})
}

type bulkStatusRequest struct {
	ApplicationIDs   []uuid.UUID `json:"application_ids" binding:"required,min=1"`
	Status           string      `json:"status" binding:"required"`
	SendTextMessages *bool       `json:"send_text_messages"`
}

// UpdateApplicationStatuses bulk-moves applications to a new status. A
// payment_confirmed transition texts the applicants unless
// send_text_messages is false.
func UpdateApplicationStatuses(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !knownStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + req.Status})
		return
	}

	notify := req.SendTextMessages == nil || *req.SendTextMessages
	if err := statusSvc.UpdateStatuses(req.ApplicationIDs, req.Status, notify); err != nil {
		log.Printf("Bulk status update to %s failed: %v", req.Status, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update statuses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Statuses updated successfully",
		"status":  req.Status,
		"count":   len(req.ApplicationIDs),
	})
}

// RunDedupSweep triggers the duplicate-detection sweep over newly submitted
// applications.
func RunDedupSweep(c *gin.Context) {
	if err := dedupSvc.Sweep(); err != nil {
		log.Printf("Dedup sweep failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Dedup sweep failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dedup sweep completed"})
}

// DownloadStatusReport streams the CSV report for one status bucket. An
// empty bucket yields 204 instead of a headers-only file.
func DownloadStatusReport(c *gin.Context) {
	status := c.Param("status")
	if !knownStatuses[status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + status})
		return
	}

	var buf bytes.Buffer
	count, err := exportSvc.WriteStatusReportCSV(&buf, status)
	if err != nil {
		log.Printf("Status report export for %s failed: %v", status, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export report"})
		return
	}
	if count == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	filename := fmt.Sprintf("applications_%s_%s.csv", status, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// DownloadPaymentsCSV streams the card-processor upload for all approved
// applications and moves them to sent_for_payment. The approved set is
// loaded once and both the export and the status flip act on it, so the
// exported rows and the flipped rows are always the same set.
func DownloadPaymentsCSV(c *gin.Context) {
	var apps []*models.Application
	if err := config.DB.Order("submitted_date DESC").
		Find(&apps, "status = ?", models.StatusApproved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}
	if len(apps) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if _, err := exportSvc.WritePaymentsCSV(&buf, apps); err != nil {
		log.Printf("Payments export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export payments"})
		return
	}

	ids := make([]uuid.UUID, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ApplicationID)
	}
	if err := statusSvc.UpdateStatuses(ids, models.StatusSentForPayment, false); err != nil {
		log.Printf("Failed to mark %d applications sent_for_payment: %v", len(ids), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update statuses"})
		return
	}

	filename := fmt.Sprintf("payments_%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
