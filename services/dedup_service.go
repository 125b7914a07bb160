package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"voucher-redemption-api/metrics"
	"voucher-redemption-api/models"

	"gorm.io/gorm"
)

// DedupRule describes one duplicate-detection policy. Key maps an
// application to a comparable value; applications sharing a key with more
// than MaxDuplicates others are moved to NewStatus with Message appended to
// their note, unless Exempt says otherwise.
type DedupRule struct {
	Name          string
	Key           func(*models.Application) string
	MaxDuplicates int
	NewStatus     string
	Message       string
	// Exempt reports whether the application skips this rule. nil means
	// no exemption.
	Exempt func(*models.Application) (bool, error)
}

// AddressDedupRule flags applications sharing a street address beyond 3
// occurrences for review. Addresses matching a PreapprovedAddress on
// addr1 + zip are exempt.
func AddressDedupRule(db *gorm.DB) DedupRule {
	return DedupRule{
		Name: "address",
		Key: func(a *models.Application) string {
			return strings.Join([]string{a.Addr1, a.City, a.State, a.ZipCode}, "\n")
		},
		MaxDuplicates: 3,
		NewStatus:     models.StatusNeedsReview,
		Message:       "duplicate address",
		Exempt: func(a *models.Application) (bool, error) {
			var n int64
			err := db.Model(&models.PreapprovedAddress{}).
				Where("addr1 = ? AND zip_code = ?", a.Addr1, a.ZipCode).
				Count(&n).Error
			if err != nil {
				return false, fmt.Errorf("failed preapproved address lookup: %w", err)
			}
			return n > 0, nil
		},
	}
}

// NamePhoneDedupRule rejects applications sharing first name, last name
// (case-insensitive) and phone number.
func NamePhoneDedupRule() DedupRule {
	return DedupRule{
		Name: "name_phone",
		Key: func(a *models.Application) string {
			return strings.ToLower(a.FirstName) + strings.ToLower(a.LastName) + a.PhoneNumber
		},
		MaxDuplicates: 1,
		NewStatus:     models.StatusRejected,
		Message:       "duplicate first/last/phone",
	}
}

// DedupService scans newly submitted applications for likely-fraudulent
// duplicates and finalizes their statuses. Sweeps are not designed for
// concurrent invocation; run them single-flight.
type DedupService struct {
	db       *gorm.DB
	notifier *NotificationService
	rules    []DedupRule
}

func NewDedupService(db *gorm.DB, notifier *NotificationService) *DedupService {
	return &DedupService{
		db:       db,
		notifier: notifier,
		// Rules apply in this order; a later rule may overwrite the
		// status set by an earlier one. Notes concatenate.
		rules: []DedupRule{
			AddressDedupRule(db),
			NamePhoneDedupRule(),
		},
	}
}

// Sweep runs every dedup rule over all applications, then finalizes the
// statuses of newly submitted ones: flagged applications keep the status
// their rule assigned, everything else becomes approved. Rejections are
// texted once per distinct applicant language.
func (s *DedupService) Sweep() error {
	start := time.Now()
	defer func() {
		metrics.RecordDedupSweepDuration(time.Since(start).Seconds())
	}()

	var all []*models.Application
	if err := s.db.Order("submitted_date DESC").Find(&all).Error; err != nil {
		return fmt.Errorf("failed to load applications: %w", err)
	}

	newApps := make([]*models.Application, 0)
	for _, app := range all {
		if app.Status == models.StatusSubmitted {
			newApps = append(newApps, app)
		}
	}
	log.Printf("Setting statuses for %d new applications...", len(newApps))

	for _, rule := range s.rules {
		if err := applyDedupRule(rule, all, newApps); err != nil {
			return err
		}
	}

	// Approve everything that wasn't flagged for review or rejected.
	rejected := make([]*models.Application, 0)
	for _, app := range newApps {
		if app.Status != models.StatusNeedsReview && app.Status != models.StatusRejected {
			app.Status = models.StatusApproved
		}
		if err := SaveApplication(s.db, app); err != nil {
			return err
		}
		if app.Status == models.StatusRejected {
			rejected = append(rejected, app)
		}
		log.Printf("Application %s: %s", app.ApplicationID, app.Status)
	}

	s.notifier.SendStatusTexts(rejected, TextRejection)

	log.Printf("Set statuses for %d new applications.", len(newApps))
	return nil
}

// applyDedupRule counts the rule's key across every application in the
// system (duplicates can span previously processed applications), then
// flags the newly submitted ones whose key's total count exceeds the
// rule's threshold.
func applyDedupRule(rule DedupRule, all, newApps []*models.Application) error {
	counts := make(map[string]int, len(all))
	for _, app := range all {
		counts[rule.Key(app)]++
	}

	for _, app := range newApps {
		if counts[rule.Key(app)] <= rule.MaxDuplicates {
			continue
		}
		if rule.Exempt != nil {
			exempt, err := rule.Exempt(app)
			if err != nil {
				return err
			}
			if exempt {
				continue
			}
		}
		app.Status = rule.NewStatus
		if app.Note != "" {
			app.Note += "; " + rule.Message
		} else {
			app.Note = rule.Message
		}
	}
	return nil
}
