package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VoucherCodeCheckStatus is the outcome of verifying a voucher code.
type VoucherCodeCheckStatus int

const (
	CheckSuccess VoucherCodeCheckStatus = iota
	CheckCodeNotFound
	CheckCodeAlreadyUsed
	CheckCodeExpired
	CheckCodeInvalidated
)

func (s VoucherCodeCheckStatus) String() string {
	switch s {
	case CheckSuccess:
		return "success"
	case CheckCodeNotFound:
		return "code_not_found"
	case CheckCodeAlreadyUsed:
		return "code_already_used"
	case CheckCodeExpired:
		return "code_expired"
	case CheckCodeInvalidated:
		return "code_invalidated"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// VoucherCodeBatch captures a group of codes generated or imported together.
// Batches are immutable once created; fields common to all codes in the
// batch (amount, expiration, campaign labels) live here instead of on the
// codes themselves.
type VoucherCodeBatch struct {
	BatchID   int       `gorm:"primaryKey;autoIncrement;column:batch_id" json:"batch_id"`
	Created   time.Time `gorm:"column:created" json:"created"`
	CreatedBy string    `gorm:"column:created_by;size:20" json:"created_by"`

	NumCodes   int    `gorm:"column:num_codes" json:"num_codes"`
	CodeLength int    `gorm:"column:code_length" json:"code_length"`
	Alphabet   string `gorm:"column:alphabet;size:100" json:"alphabet"`

	BaseAmount     float64   `gorm:"column:base_amount;type:decimal(7,2)" json:"base_amount"`
	ExpirationDate time.Time `gorm:"column:expiration_date" json:"expiration_date"`

	Affiliate string `gorm:"column:affiliate;size:50" json:"affiliate"`
	Campaign  string `gorm:"column:campaign;size:50" json:"campaign"`
	Channel   string `gorm:"column:channel;size:50" json:"channel"`
}

func (VoucherCodeBatch) TableName() string { return "voucher_code_batches" }

// VoucherCode is a redeemable code. A submitted code string is valid iff a
// row exists with a matching (case-sensitive) code, is_active is true, the
// batch expiration is in the future and no application has claimed it. Once
// application_id is set the code is permanently consumed, regardless of the
// active flag.
type VoucherCode struct {
	Code string `gorm:"primaryKey;column:code;size:20" json:"code"`

	// BatchID is nullable to support legacy rows imported before batches
	// existed.
	BatchID *int              `gorm:"column:batch_id" json:"batch_id"`
	Batch   *VoucherCodeBatch `gorm:"foreignKey:BatchID" json:"batch,omitempty"`

	// AddedAmount is a per-code adjustment on top of the batch base amount.
	AddedAmount float64 `gorm:"column:added_amount;type:decimal(7,2)" json:"added_amount"`
	IsActive    bool    `gorm:"column:is_active" json:"is_active"`

	// ApplicationID links the application that redeemed this code. The
	// unique index enforces the at-most-one-application invariant.
	ApplicationID *uuid.UUID   `gorm:"column:application_id;type:char(36);uniqueIndex" json:"application_id"`
	Application   *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

func (VoucherCode) TableName() string { return "voucher_codes" }

// Amount is the total dollar amount the code redeems for.
func (vc *VoucherCode) Amount() float64 {
	if vc.Batch == nil {
		return vc.AddedAmount
	}
	return vc.Batch.BaseAmount + vc.AddedAmount
}

// Expired reports whether the code's batch expiration has passed. Legacy
// rows without a batch never expire; they predate expiration dates and are
// retired via the active flag instead.
func (vc *VoucherCode) Expired(now time.Time) bool {
	if vc.Batch == nil {
		return false
	}
	return !now.Before(vc.Batch.ExpirationDate)
}

// Voucher code attempt actions.
const (
	ActionVoucherCodeCheck  = 0 // applicant checking a code up front
	ActionApplicationReview = 1 // pre-submission review check
)

// VoucherCodeAttempt is an append-only audit row written for every
// verification attempt, successful or not.
type VoucherCodeAttempt struct {
	AttemptID int       `gorm:"primaryKey;autoIncrement;column:attempt_id" json:"attempt_id"`
	IPAddress string    `gorm:"column:ip_address;size:45" json:"ip_address"`
	Action    int       `gorm:"column:action" json:"action"`
	Time      time.Time `gorm:"column:time" json:"time"`
	Code      string    `gorm:"column:code;size:20" json:"code"`
	Status    int       `gorm:"column:status" json:"status"`
}

func (VoucherCodeAttempt) TableName() string { return "voucher_code_attempts" }
