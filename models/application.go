package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application statuses. There is deliberately no enforced transition table:
// staff tooling may move an application between any two statuses. The
// intended path is submitted -> approved/needs_review/rejected ->
// sent_for_payment -> payment_confirmed, with reissue_requested ->
// reissue_confirmed reachable from payment_confirmed.
const (
	StatusSubmitted        = "submitted"
	StatusApproved         = "approved"
	StatusNeedsReview      = "needs_review"
	StatusRejected         = "rejected"
	StatusSentForPayment   = "sent_for_payment"
	StatusPaymentConfirmed = "payment_confirmed"
	StatusReissueRequested = "reissue_requested"
	StatusReissueConfirmed = "reissue_confirmed"
)

// Type-of-work choices for the applicant profile step.
const (
	WorkHouseCleaning = "House cleaning"
	WorkNanny         = "Nanny"
	WorkHomeCare      = "Home care"
	WorkOther         = "Other"
)

// Age range choices for the applicant profile step.
const (
	AgeRange17OrYounger = "17"
	AgeRange18To29      = "18-29"
	AgeRange30To49      = "30-49"
	AgeRange50To69      = "50-69"
	AgeRange70Plus      = "70+"
)

// Household income brackets.
const (
	IncomeUnder20K      = "<20k"
	IncomeBetween20K40K = "20,000-39,999"
	IncomeBetween40K60K = "40,000-59,999"
	IncomeBetween60K80K = "60,000-79,999"
	IncomeAbove80K      = "80,000+"
)

// Supported applicant languages.
const (
	LanguageEnglish = "en"
	LanguageSpanish = "es"
)

// Application is one voucher redemption application. A row is only created
// on successful submission; in-progress applications live in the session
// draft (services.ApplicationDraft) and never touch this table.
type Application struct {
	ApplicationID uuid.UUID `gorm:"primaryKey;column:application_id;type:char(36)" json:"application_id"`

	TypeOfWork     string `gorm:"column:type_of_work;size:15" json:"type_of_work"`
	VoucherCodeStr string `gorm:"column:vouchercode_str;size:200" json:"vouchercode_str"`
	FirstName      string `gorm:"column:first_name;size:200" json:"first_name"`
	LastName       string `gorm:"column:last_name;size:200" json:"last_name"`
	AgeRange       string `gorm:"column:age_range;size:6" json:"age_range"`
	HouseholdSize  *int   `gorm:"column:household_size" json:"household_size"`
	HouseholdIncome string `gorm:"column:household_income;size:20" json:"household_income"`
	Ethnicity      string `gorm:"column:ethnicity;size:400" json:"ethnicity"`
	Gender         string `gorm:"column:gender;size:400" json:"gender"`
	Language       string `gorm:"column:language;size:15" json:"language"`
	PhoneNumber    string `gorm:"column:phone_number;size:50" json:"phone_number"`
	Email          string `gorm:"column:email;size:254" json:"email"`

	Addr1   string `gorm:"column:addr1;size:200" json:"addr1"`
	Addr2   string `gorm:"column:addr2;size:100" json:"addr2"`
	City    string `gorm:"column:city;size:100" json:"city"`
	State   string `gorm:"column:state;size:100" json:"state"`
	ZipCode string `gorm:"column:zip_code;size:5" json:"zip_code"`

	// UspsVerified is true if the address passed USPS verification;
	// UspsStandardized is true if the applicant accepted the standardized
	// version USPS returned.
	UspsVerified     bool `gorm:"column:usps_verified" json:"usps_verified"`
	UspsStandardized bool `gorm:"column:usps_standardized" json:"usps_standardized"`

	Signature string `gorm:"column:signature;size:200" json:"signature"`

	PaymentConfirmedReminderSent bool `gorm:"column:payment_confirmed_reminder_sent" json:"payment_confirmed_reminder_sent"`

	// SubmittedDate is set exactly once, on first save, and never changes.
	SubmittedDate      *time.Time `gorm:"column:submitted_date" json:"submitted_date"`
	Status             string     `gorm:"column:status;size:40" json:"status"`
	StatusLastModified *time.Time `gorm:"column:status_last_modified" json:"status_last_modified"`
	Note               string     `gorm:"column:note;size:200" json:"note"`

	// lastStatus mirrors the status as loaded from (or last synced with)
	// the database, so saves can tell a real transition from a no-op.
	lastStatus string `gorm:"-"`
}

func (Application) TableName() string { return "applications" }

// AfterFind captures the persisted status for transition detection.
func (a *Application) AfterFind(*gorm.DB) error {
	a.lastStatus = a.Status
	return nil
}

// StatusChanged reports whether Status differs from the last persisted value.
func (a *Application) StatusChanged() bool {
	return a.Status != a.lastStatus
}

// LastStatus returns the status as loaded from the database.
func (a *Application) LastStatus() string {
	return a.lastStatus
}

// MarkStatusSynced records that the current status has been persisted.
func (a *Application) MarkStatusSynced() {
	a.lastStatus = a.Status
}

// FullAddress renders the mailing address as it appears in notifications.
func (a *Application) FullAddress() string {
	lines := []string{a.Addr1}
	if a.Addr2 != "" {
		lines = append(lines, a.Addr2)
	}
	lines = append(lines, fmt.Sprintf("%s, %s %s", a.City, a.State, a.ZipCode))
	return strings.Join(lines, "\n")
}

// StatusUpdate is an append-only history row. Rows are created whenever an
// application's status changes (including the initial submitted status) and
// are never updated or deleted.
type StatusUpdate struct {
	StatusUpdateID int       `gorm:"primaryKey;autoIncrement;column:status_update_id" json:"status_update_id"`
	ApplicationID  uuid.UUID `gorm:"column:application_id;type:char(36)" json:"application_id"`
	Status         string    `gorm:"column:status;size:40" json:"status"`
	Date           time.Time `gorm:"column:date" json:"date"`
}

func (StatusUpdate) TableName() string { return "status_updates" }
