package controllers

import (
	"log"
	"net/http"
	"time"

	"voucher-redemption-api/models"
	"voucher-redemption-api/services"
	"voucher-redemption-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const draftCookieName = "draft_session"

// draftSessionToken returns the applicant's draft session token, minting a
// new one (and setting the cookie) when missing. The token is the only
// guard on draft data, so in release mode the cookie is HTTPS-only.
func draftSessionToken(c *gin.Context) string {
	token, err := c.Cookie(draftCookieName)
	if err != nil || token == "" {
		token = uuid.NewString()
		secure := gin.Mode() == gin.ReleaseMode
		c.SetCookie(draftCookieName, token, int((12 * time.Hour).Seconds()), "/", "", secure, true)
	}
	return token
}

func loadDraft(c *gin.Context, token string) *services.ApplicationDraft {
	data, err := draftStore.Load(c.Request.Context(), token)
	if err != nil {
		log.Printf("Failed to load draft %s: %v", token, err)
	}
	return services.DecodeApplicationDraft(data)
}

func saveDraft(c *gin.Context, token string, draft *services.ApplicationDraft) error {
	data, err := draft.Encode()
	if err != nil {
		return err
	}
	return draftStore.Save(c.Request.Context(), token, data)
}

type voucherCheckRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckVoucherCode verifies an entered code before the applicant starts the
// form. A successful check is remembered on the draft.
func CheckVoucherCode(c *gin.Context) {
	var req voucherCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := utils.FromUserFacingCode(req.Code)
	if !utils.ValidateVoucherCodeFormat(code) {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": "voucher code has an invalid format",
		})
		return
	}

	status := voucherSvc.Verify(code, c.ClientIP(), models.ActionVoucherCodeCheck)
	if status != models.CheckSuccess {
		c.JSON(http.StatusOK, gin.H{
			"valid":   false,
			"message": "voucher code cannot be redeemed",
		})
		return
	}

	token := draftSessionToken(c)
	draft := loadDraft(c, token)
	draft.VoucherCode = code
	draft.Checks.VoucherCheck = true
	if err := saveDraft(c, token, draft); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// GetDraft returns the in-progress draft so the form can pre-populate.
func GetDraft(c *gin.Context) {
	token := draftSessionToken(c)
	c.JSON(http.StatusOK, loadDraft(c, token))
}

type draftUpdateRequest struct {
	TypeOfWork      *string `json:"type_of_work"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	AgeRange        *string `json:"age_range"`
	HouseholdSize   *int    `json:"household_size"`
	HouseholdIncome *string `json:"household_income"`
	Ethnicity       *string `json:"ethnicity"`
	Gender          *string `json:"gender"`
	Language        *string `json:"language"`
	PhoneNumber     *string `json:"phone_number"`
	Email           *string `json:"email"`

	Addr1            *string `json:"addr1"`
	Addr2            *string `json:"addr2"`
	City             *string `json:"city"`
	State            *string `json:"state"`
	ZipCode          *string `json:"zip_code"`
	UspsVerified     *bool   `json:"usps_verified"`
	UspsStandardized *bool   `json:"usps_standardized"`

	Signature *string `json:"signature"`
	Qualified *bool   `json:"qualified"`
}

// UpdateDraft merges one form step's fields into the draft. Only provided
// fields are touched, so each step posts just its own inputs.
func UpdateDraft(c *gin.Context) {
	var req draftUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.PhoneNumber != nil {
		cleaned := utils.CleanPhoneNumber(*req.PhoneNumber)
		if !utils.ValidatePhoneNumber(cleaned) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phone number has an invalid format"})
			return
		}
		req.PhoneNumber = &cleaned
	}
	if req.Email != nil && *req.Email != "" && !utils.ValidateEmail(*req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email has an invalid format"})
		return
	}
	if req.ZipCode != nil && !utils.ValidateZipCode(*req.ZipCode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "zip code has an invalid format"})
		return
	}
	if req.Addr1 != nil && !utils.ValidateStreetAddress(*req.Addr1) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "street address has an invalid format"})
		return
	}

	token := draftSessionToken(c)
	draft := loadDraft(c, token)
	applyDraftUpdate(draft, &req)
	if err := saveDraft(c, token, draft); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, draft)
}

func applyDraftUpdate(draft *services.ApplicationDraft, req *draftUpdateRequest) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&draft.TypeOfWork, req.TypeOfWork)
	setString(&draft.FirstName, req.FirstName)
	setString(&draft.LastName, req.LastName)
	setString(&draft.AgeRange, req.AgeRange)
	if req.HouseholdSize != nil {
		draft.HouseholdSize = req.HouseholdSize
	}
	setString(&draft.HouseholdIncome, req.HouseholdIncome)
	setString(&draft.Ethnicity, req.Ethnicity)
	setString(&draft.Gender, req.Gender)
	setString(&draft.Language, req.Language)
	setString(&draft.PhoneNumber, req.PhoneNumber)
	setString(&draft.Email, req.Email)
	setString(&draft.Addr1, req.Addr1)
	setString(&draft.Addr2, req.Addr2)
	setString(&draft.City, req.City)
	setString(&draft.State, req.State)
	setString(&draft.ZipCode, req.ZipCode)
	setBool(&draft.UspsVerified, req.UspsVerified)
	setBool(&draft.UspsStandardized, req.UspsStandardized)
	setString(&draft.Signature, req.Signature)
	setBool(&draft.Checks.Qualified, req.Qualified)
}

type verifyAddressRequest struct {
	Addr1   string `json:"addr1" binding:"required"`
	Addr2   string `json:"addr2"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`
}

// VerifyDraftAddress runs the entered address through USPS verification.
// A provider error routes the applicant to manual entry; it is never
// retried automatically.
func VerifyDraftAddress(c *gin.Context) {
	var req verifyAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verified, errDescription, err := addressSvc.VerifyAddress(
		req.Addr1, req.Addr2, req.City, req.State, req.ZipCode)
	if err != nil {
		log.Printf("Address verification failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"manual_entry": true})
		return
	}
	if errDescription != "" {
		c.JSON(http.StatusOK, gin.H{"manual_entry": true, "reason": errDescription})
		return
	}

	standardized := verified.Addr1 == req.Addr1 &&
		verified.Addr2 == req.Addr2 &&
		verified.City == req.City &&
		verified.State == req.State &&
		verified.ZipCode == req.ZipCode

	token := draftSessionToken(c)
	draft := loadDraft(c, token)
	draft.UspsVerified = true
	draft.UspsStandardized = standardized
	if err := saveDraft(c, token, draft); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"manual_entry": false,
		"standardized": standardized,
		"address": gin.H{
			"addr1":    verified.Addr1,
			"addr2":    verified.Addr2,
			"city":     verified.City,
			"state":    verified.State,
			"zip_code": verified.ZipCode,
		},
	})
}

// SubmitApplication finalizes the draft: the voucher code is re-verified
// and, if still redeemable, claimed atomically together with the
// application insert.
func SubmitApplication(c *gin.Context) {
	token := draftSessionToken(c)
	draft := loadDraft(c, token)

	if !draft.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application is incomplete"})
		return
	}
	if draft.FirstName == "" || draft.LastName == "" || draft.Signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application is incomplete"})
		return
	}

	app := draft.ToApplication()
	ok, userMsg, err := submissionSvc.Submit(app, c.ClientIP())
	if err != nil {
		log.Printf("Submission failed for %s: %v", app.ApplicationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submission failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": userMsg})
		return
	}

	if err := draftStore.Delete(c.Request.Context(), token); err != nil {
		log.Printf("Failed to delete draft %s: %v", token, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"application_id": app.ApplicationID,
		"status":         app.Status,
	})
}
