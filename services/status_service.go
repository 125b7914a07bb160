package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"voucher-redemption-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrUnsubmittedApplication is a precondition violation: bulk status updates
// only apply to applications that have actually been submitted.
var ErrUnsubmittedApplication = errors.New("cannot update status for an unsubmitted application")

// StatusService performs bulk status transitions, maintaining the
// StatusUpdate history and triggering applicant notifications.
type StatusService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewStatusService(db *gorm.DB, notifier *NotificationService) *StatusService {
	return &StatusService{db: db, notifier: notifier}
}

// planStatusUpdates applies newStatus to the given applications in memory,
// sharing one timestamp across the whole batch. It returns the applications
// whose status actually changed and the history rows to append for them;
// applications already in newStatus are skipped so no duplicate history
// accumulates.
func planStatusUpdates(apps []*models.Application, newStatus string, now time.Time) ([]*models.Application, []models.StatusUpdate, error) {
	changed := make([]*models.Application, 0, len(apps))
	history := make([]models.StatusUpdate, 0, len(apps))

	for _, app := range apps {
		if app.SubmittedDate == nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnsubmittedApplication, app.ApplicationID)
		}
		if app.LastStatus() == newStatus {
			continue
		}
		app.Status = newStatus
		ts := now
		app.StatusLastModified = &ts
		changed = append(changed, app)
		history = append(history, models.StatusUpdate{
			ApplicationID: app.ApplicationID,
			Status:        newStatus,
			Date:          now,
		})
	}
	return changed, history, nil
}

// UpdateStatuses bulk-sets the status for the given application ids. Each
// changed application gets exactly one new StatusUpdate row stamped with the
// same instant for the whole batch. A payment_confirmed transition
// additionally texts the affected applicants unless notify is false.
func (s *StatusService) UpdateStatuses(applicationIDs []uuid.UUID, newStatus string, notify bool) error {
	var apps []*models.Application
	if err := s.db.Find(&apps, "application_id IN ?", applicationIDs).Error; err != nil {
		return fmt.Errorf("failed to load applications: %w", err)
	}

	log.Printf("Setting status to %s for %d applications...", newStatus, len(apps))

	changed, history, err := planStatusUpdates(apps, newStatus, time.Now().UTC())
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, app := range changed {
			res := tx.Model(&models.Application{}).
				Where("application_id = ?", app.ApplicationID).
				Updates(map[string]interface{}{
					"status":               app.Status,
					"status_last_modified": app.StatusLastModified,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to update application %s: %w", app.ApplicationID, res.Error)
			}
		}
		if len(history) > 0 {
			if err := tx.CreateInBatches(history, 30).Error; err != nil {
				return fmt.Errorf("failed to record status updates: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, app := range apps {
		app.MarkStatusSynced()
	}

	if newStatus == models.StatusPaymentConfirmed && notify {
		s.notifier.SendStatusTexts(apps, TextPaymentConfirmed)
	}

	log.Println("Done")
	return nil
}
