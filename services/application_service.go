package services

import (
	"fmt"
	"time"

	"voucher-redemption-api/models"

	"gorm.io/gorm"
)

// SaveApplication persists an application, maintaining the submission and
// status-history invariants:
//
//   - submitted_date is set on the first save and never touched again
//   - a status change (or the initial save) refreshes status_last_modified
//     and appends exactly one StatusUpdate row
//   - saving with an unchanged status appends nothing and leaves
//     status_last_modified alone
func SaveApplication(db *gorm.DB, app *models.Application) error {
	now := time.Now().UTC()
	isNew := app.SubmittedDate == nil
	if isNew {
		app.SubmittedDate = &now
	}
	if app.Status == "" {
		app.Status = models.StatusSubmitted
	}
	statusChanged := isNew || app.StatusChanged()
	if statusChanged {
		app.StatusLastModified = &now
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(app).Error; err != nil {
			return fmt.Errorf("failed to save application %s: %w", app.ApplicationID, err)
		}
		if statusChanged {
			update := models.StatusUpdate{
				ApplicationID: app.ApplicationID,
				Status:        app.Status,
				Date:          now,
			}
			if err := tx.Create(&update).Error; err != nil {
				return fmt.Errorf("failed to record status update for %s: %w", app.ApplicationID, err)
			}
		}
		app.MarkStatusSynced()
		return nil
	})
}
