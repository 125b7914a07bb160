package services

import (
	"encoding/json"
	"log"

	"voucher-redemption-api/models"

	"github.com/google/uuid"
)

// DraftChecks are the in-progress acknowledgements the applicant makes
// along the multi-step form. They gate submission but are never persisted
// to the application row, since a submitted application has them all true.
type DraftChecks struct {
	Qualified    bool `json:"qualified"`
	VoucherCheck bool `json:"vouchercheck"`
}

// ApplicationDraft carries the multi-step form state between requests. It
// lives only in the session store; an Application row is created from it on
// successful submission.
type ApplicationDraft struct {
	TypeOfWork      string `json:"type_of_work"`
	VoucherCode     string `json:"vouchercode_str"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	AgeRange        string `json:"age_range"`
	HouseholdSize   *int   `json:"household_size"`
	HouseholdIncome string `json:"household_income"`
	Ethnicity       string `json:"ethnicity"`
	Gender          string `json:"gender"`
	Language        string `json:"language"`
	PhoneNumber     string `json:"phone_number"`
	Email           string `json:"email"`

	Addr1            string `json:"addr1"`
	Addr2            string `json:"addr2"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZipCode          string `json:"zip_code"`
	UspsVerified     bool   `json:"usps_verified"`
	UspsStandardized bool   `json:"usps_standardized"`

	Signature string `json:"signature"`

	Checks DraftChecks `json:"checks"`
}

func NewApplicationDraft() *ApplicationDraft {
	return &ApplicationDraft{}
}

// Encode serializes the draft for the session store.
func (d *ApplicationDraft) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// DecodeApplicationDraft restores a draft from its serialized form. Stale
// encodings are tolerated: unknown fields are dropped, missing fields take
// their zero value, and an unparseable blob resets to a fresh draft rather
// than failing the request.
func DecodeApplicationDraft(data []byte) *ApplicationDraft {
	if len(data) == 0 {
		return NewApplicationDraft()
	}
	var d ApplicationDraft
	if err := json.Unmarshal(data, &d); err != nil {
		log.Printf("Got %v while loading draft. Resetting application draft...", err)
		return NewApplicationDraft()
	}
	return &d
}

// Complete reports whether every required check has been acknowledged.
func (d *ApplicationDraft) Complete() bool {
	return d.Checks.Qualified && d.Checks.VoucherCheck
}

// ToApplication builds the Application row for submission.
func (d *ApplicationDraft) ToApplication() *models.Application {
	return &models.Application{
		ApplicationID:    uuid.New(),
		TypeOfWork:       d.TypeOfWork,
		VoucherCodeStr:   d.VoucherCode,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		AgeRange:         d.AgeRange,
		HouseholdSize:    d.HouseholdSize,
		HouseholdIncome:  d.HouseholdIncome,
		Ethnicity:        d.Ethnicity,
		Gender:           d.Gender,
		Language:         d.Language,
		PhoneNumber:      d.PhoneNumber,
		Email:            d.Email,
		Addr1:            d.Addr1,
		Addr2:            d.Addr2,
		City:             d.City,
		State:            d.State,
		ZipCode:          d.ZipCode,
		UspsVerified:     d.UspsVerified,
		UspsStandardized: d.UspsStandardized,
		Signature:        d.Signature,
		Status:           models.StatusSubmitted,
	}
}
