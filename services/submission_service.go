package services

import (
	"errors"
	"time"

	"voucher-redemption-api/metrics"
	"voucher-redemption-api/models"

	"gorm.io/gorm"
)

// SubmissionService drives the voucher redemption protocol: verify the
// code, then atomically claim it and persist the application.
type SubmissionService struct {
	db       *gorm.DB
	vouchers *VoucherService
	notifier *NotificationService
}

func NewSubmissionService(db *gorm.DB, vouchers *VoucherService, notifier *NotificationService) *SubmissionService {
	return &SubmissionService{db: db, vouchers: vouchers, notifier: notifier}
}

// Submit attempts to redeem app.VoucherCodeStr for the given application.
//
// The code is first verified (logged as a review-time check); an invalid
// code aborts with a user-facing message and no state changes. Otherwise the
// code claim and the application insert happen in one transaction, so either
// both land or neither does. Returns whether the submission went through and
// a user-facing error message if it did not.
func (s *SubmissionService) Submit(app *models.Application, ipAddress string) (bool, string, error) {
	start := time.Now()
	result := "failed"
	defer func() {
		metrics.RecordSubmissionDuration(result, time.Since(start).Seconds())
	}()

	status := s.vouchers.Verify(app.VoucherCodeStr, ipAddress, models.ActionApplicationReview)
	if status != models.CheckSuccess {
		return false, "voucher code cannot be redeemed", nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.vouchers.Redeem(tx, app.VoucherCodeStr, app); err != nil {
			return err
		}
		return SaveApplication(tx, app)
	})
	if errors.Is(err, ErrCodeAlreadyUsed) {
		// Lost the race for the code; the re-verification on retry will
		// report already-used.
		return false, "voucher code cannot be redeemed", nil
	}
	if err != nil {
		return false, "", err
	}

	result = "success"
	s.notifier.SendSubmissionText(app)
	return true, "", nil
}
