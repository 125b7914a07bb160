package services

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"time"

	"voucher-redemption-api/metrics"
	"voucher-redemption-api/models"
	"voucher-redemption-api/utils"

	"gorm.io/gorm"
)

// DefaultCodeAlphabet is the character set codes are generated from:
// lowercase letters with the visually ambiguous 'l' excluded.
const DefaultCodeAlphabet = "abcdefghijkmnopqrstuvwxyz"

// DefaultCodeLength matches the codes currently generated and accepted.
const DefaultCodeLength = 9

// ErrCodeAlreadyUsed is returned when a redemption loses the race for a
// code: some other application claimed it first.
var ErrCodeAlreadyUsed = errors.New("voucher code has already been redeemed")

// VoucherService owns the voucher code ledger: verification, redemption,
// generation, import and invalidation.
type VoucherService struct {
	db *gorm.DB
}

func NewVoucherService(db *gorm.DB) *VoucherService {
	return &VoucherService{db: db}
}

var checkActionNames = map[int]string{
	models.ActionVoucherCodeCheck:  "voucher_code_check",
	models.ActionApplicationReview: "application_review",
}

// Verify checks whether the given code string can be redeemed and logs the
// attempt. Every call writes a VoucherCodeAttempt row, regardless of
// outcome.
func (s *VoucherService) Verify(code, ipAddress string, action int) models.VoucherCodeCheckStatus {
	status := s.checkCode(code)

	attempt := models.VoucherCodeAttempt{
		IPAddress: ipAddress,
		Action:    action,
		Time:      time.Now().UTC(),
		Code:      code,
		Status:    int(status),
	}
	log.Printf("#VoucherCodeAttempt: code=%q ip=%s action=%d status=%s",
		code, ipAddress, action, status)
	if err := s.db.Create(&attempt).Error; err != nil {
		log.Printf("Failed to record voucher code attempt for %q: %v", code, err)
	}

	metrics.RecordVoucherCheck(checkActionNames[action], status.String())
	return status
}

// checkCode resolves the check status for a code. Precedence when several
// conditions hold: already-used before expired before invalidated, so a
// consumed code always reports already-used.
func (s *VoucherService) checkCode(code string) models.VoucherCodeCheckStatus {
	var vc models.VoucherCode
	err := s.db.Preload("Batch").First(&vc, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CheckCodeNotFound
	}
	if err != nil {
		log.Printf("Failed to look up voucher code %q: %v", code, err)
		return models.CheckCodeNotFound
	}

	if vc.ApplicationID != nil {
		return models.CheckCodeAlreadyUsed
	}
	// Legacy rows stored the code string directly on the application
	// without a ledger link; those codes are consumed too.
	var legacy int64
	if err := s.db.Model(&models.Application{}).
		Where("vouchercode_str = ?", code).Count(&legacy).Error; err != nil {
		log.Printf("Failed legacy code lookup for %q: %v", code, err)
	}
	if legacy > 0 {
		return models.CheckCodeAlreadyUsed
	}
	if vc.Expired(time.Now().UTC()) {
		return models.CheckCodeExpired
	}
	if !vc.IsActive {
		return models.CheckCodeInvalidated
	}
	return models.CheckSuccess
}

// Redeem claims the code for the given application inside the caller's
// transaction. The claim is conditioned on the code being unclaimed, so two
// concurrent submissions for the same code resolve to exactly one winner;
// the loser gets ErrCodeAlreadyUsed.
func (s *VoucherService) Redeem(tx *gorm.DB, code string, app *models.Application) error {
	res := tx.Model(&models.VoucherCode{}).
		Where("code = ? AND application_id IS NULL", code).
		Update("application_id", app.ApplicationID)
	if res.Error != nil {
		return fmt.Errorf("failed to claim voucher code %q: %w", code, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCodeAlreadyUsed
	}
	return nil
}

// Generate returns numCodes new unique codes not already in the ledger.
//
// Uniqueness is checked against a snapshot of the existing code set; there
// is no transactional guarantee against two staff generating batches at the
// same moment. Generation is a rare, manual operation, so that window is
// accepted rather than engineered away.
func (s *VoucherService) Generate(numCodes, codeLength int, alphabet string) ([]string, error) {
	if numCodes < 1 || codeLength < 1 || alphabet == "" {
		return nil, fmt.Errorf("invalid generation parameters: num=%d length=%d alphabet=%q",
			numCodes, codeLength, alphabet)
	}

	var existing []string
	if err := s.db.Model(&models.VoucherCode{}).Pluck("code", &existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load existing codes: %w", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		taken[c] = struct{}{}
	}

	return generateCodes(numCodes, codeLength, alphabet, taken)
}

// generateCodes draws codes uniformly at random from alphabet, rejecting
// collisions against taken until numCodes fresh codes are collected.
func generateCodes(numCodes, codeLength int, alphabet string, taken map[string]struct{}) ([]string, error) {
	codes := make([]string, 0, numCodes)
	for len(codes) < numCodes {
		code, err := randomCode(codeLength, alphabet)
		if err != nil {
			return nil, err
		}
		if _, dup := taken[code]; dup {
			continue
		}
		taken[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

func randomCode(length int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random character: %w", err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}

// CreateBatch persists a batch and its codes together.
func (s *VoucherService) CreateBatch(batch *models.VoucherCodeBatch, codes []string) error {
	if batch.Created.IsZero() {
		batch.Created = time.Now().UTC()
	}
	batch.NumCodes = len(codes)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return fmt.Errorf("failed to create voucher code batch: %w", err)
		}
		rows := make([]models.VoucherCode, 0, len(codes))
		for _, code := range codes {
			rows = append(rows, models.VoucherCode{
				Code:     code,
				BatchID:  &batch.BatchID,
				IsActive: true,
			})
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("failed to create voucher codes: %w", err)
		}
		return nil
	})
}

// ImportCodes reads a line-delimited code list and attaches the codes to
// batch. Malformed lines are logged and skipped; the valid/invalid counts
// are returned so callers can surface running totals.
func (s *VoucherService) ImportCodes(r io.Reader, batch *models.VoucherCodeBatch) (valid, invalid int, err error) {
	log.Println("Uploading codes...")

	scanner := bufio.NewScanner(r)
	codes := make([]string, 0)
	seen := make(map[string]struct{})
	for scanner.Scan() {
		code := utils.SanitizeInput(scanner.Text())
		if code == "" {
			continue
		}
		if !utils.ValidateVoucherCodeFormat(code) {
			log.Printf("Error importing code %q: invalid format", code)
			invalid++
			continue
		}
		if _, dup := seen[code]; dup {
			log.Printf("Error importing code %q: duplicate in file", code)
			invalid++
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
		valid++
	}
	if err := scanner.Err(); err != nil {
		return valid, invalid, fmt.Errorf("failed to read code list: %w", err)
	}

	log.Printf("Writing %d codes to database (%d invalid)...", valid, invalid)
	if err := s.CreateBatch(batch, codes); err != nil {
		return valid, invalid, err
	}
	log.Println("Done.")
	return valid, invalid, nil
}

// InvalidateByCodeList deactivates the given codes. Unknown codes are
// silently ignored; the number of matched rows is returned.
func (s *VoucherService) InvalidateByCodeList(codes []string) (int64, error) {
	res := s.db.Model(&models.VoucherCode{}).
		Where("code IN ?", codes).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to invalidate codes: %w", res.Error)
	}
	log.Printf("Found %d out of %d provided codes. Invalidated.", res.RowsAffected, len(codes))
	return res.RowsAffected, nil
}

// InvalidateByCampaign deactivates every code whose batch matches both the
// affiliate and campaign labels exactly.
func (s *VoucherService) InvalidateByCampaign(affiliate, campaign string) (int64, error) {
	batchIDs := s.db.Model(&models.VoucherCodeBatch{}).
		Select("batch_id").
		Where("affiliate = ? AND campaign = ?", affiliate, campaign)
	res := s.db.Model(&models.VoucherCode{}).
		Where("batch_id IN (?)", batchIDs).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to invalidate campaign codes: %w", res.Error)
	}
	log.Printf("Found %d codes with affiliate %q and campaign %q. Invalidated.",
		res.RowsAffected, affiliate, campaign)
	return res.RowsAffected, nil
}
