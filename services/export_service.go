package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"voucher-redemption-api/config"
	"voucher-redemption-api/models"

	"gorm.io/gorm"
)

// ExportService produces the staff CSV exports and ingests the
// preapproved-address list.
type ExportService struct {
	db       *gorm.DB
	settings *config.Settings
}

func NewExportService(db *gorm.DB, settings *config.Settings) *ExportService {
	return &ExportService{db: db, settings: settings}
}

// statusReportHeader is the fixed column order of the per-status report.
var statusReportHeader = []string{
	"submitted_date", "vouchercode", "application_id", "language",
	"first_name", "last_name", "phone_number", "email",
	"addr1", "addr2", "city", "state", "zip_code",
	"usps_verified", "usps_standardized", "status", "note",
}

func statusReportRow(app *models.Application) []string {
	submitted := ""
	if app.SubmittedDate != nil {
		submitted = app.SubmittedDate.UTC().Format(time.RFC3339)
	}
	return []string{
		submitted,
		app.VoucherCodeStr,
		app.ApplicationID.String(),
		app.Language,
		app.FirstName,
		app.LastName,
		app.PhoneNumber,
		app.Email,
		app.Addr1,
		app.Addr2,
		app.City,
		app.State,
		app.ZipCode,
		strconv.FormatBool(app.UspsVerified),
		strconv.FormatBool(app.UspsStandardized),
		app.Status,
		app.Note,
	}
}

// WriteStatusReportCSV writes the report for one status bucket and returns
// the number of applications written. Callers omit the file entirely when
// the count is zero.
func (s *ExportService) WriteStatusReportCSV(w io.Writer, status string) (int, error) {
	var apps []*models.Application
	if err := s.db.Order("submitted_date DESC").
		Find(&apps, "status = ?", status).Error; err != nil {
		return 0, fmt.Errorf("failed to load %s applications: %w", status, err)
	}
	if len(apps) == 0 {
		return 0, nil
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(statusReportHeader); err != nil {
		return 0, err
	}
	for _, app := range apps {
		if err := writer.Write(statusReportRow(app)); err != nil {
			return 0, err
		}
	}
	writer.Flush()
	return len(apps), writer.Error()
}

// paymentsHeader is the fixed column order the card processor expects.
var paymentsHeader = []string{
	"cardType", "cardCount", "shippingDestination",
	"firstName", "lastName", "address", "address2", "city", "state", "zipCode",
	"phone", "email", "loadAmount", "loadNow", "distributorId", "cardDesignId",
	"giftMessage", "giftSenderFirstName", "giftSenderLastName",
	"giftVirtualDeliveryMethod", "expiresIn",
	"reportData1", "reportData2", "reportData3", "Source", "Shipping Method",
}

func paymentRow(app *models.Application, loadAmount float64, cardDesignID string) []string {
	return []string{
		"Incentive-Card",
		"1",
		"consumer",
		app.FirstName,
		app.LastName,
		app.Addr1,
		app.Addr2,
		app.City,
		app.State,
		app.ZipCode,
		strings.ReplaceAll(app.PhoneNumber, "+", ""),
		"", // emails withheld for privacy
		strconv.FormatFloat(loadAmount, 'f', 2, 64),
		"y",
		"",
		cardDesignID,
		"", "", "", "", "",
		"", "", "", "",
		"3", // 3 = US_Postal_Service
	}
}

// WritePaymentsCSV writes the card-processor upload for the given
// applications. The caller supplies the rows so the exported set is exactly
// the set it goes on to act on. Amounts come from the voucher ledger; codes
// are pre-loaded in one query because a per-application lookup is far too
// slow on large buckets.
func (s *ExportService) WritePaymentsCSV(w io.Writer, apps []*models.Application) (int, error) {
	if len(apps) == 0 {
		return 0, nil
	}

	codes := make([]string, 0, len(apps))
	for _, app := range apps {
		codes = append(codes, app.VoucherCodeStr)
	}
	var voucherCodes []*models.VoucherCode
	if err := s.db.Preload("Batch").
		Find(&voucherCodes, "code IN ?", codes).Error; err != nil {
		return 0, fmt.Errorf("failed to load voucher codes: %w", err)
	}
	amounts := make(map[string]float64, len(voucherCodes))
	for _, vc := range voucherCodes {
		amounts[vc.Code] = vc.Amount()
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(paymentsHeader); err != nil {
		return 0, err
	}
	for _, app := range apps {
		row := paymentRow(app, amounts[app.VoucherCodeStr], s.settings.CardDesignID(app.Language))
		if err := writer.Write(row); err != nil {
			return 0, err
		}
	}
	writer.Flush()
	return len(apps), writer.Error()
}

// preapprovedHeader is the required header of the preapproved-address
// import file.
var preapprovedHeader = []string{"Addr1", "City", "State", "Zip", "Notes"}

// ImportPreapprovedAddresses reads the delimited address list. Malformed
// rows and duplicates are logged and skipped, never fatal; the valid and
// invalid totals are returned.
func (s *ExportService) ImportPreapprovedAddresses(r io.Reader) (valid, invalid int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) != len(preapprovedHeader) || !equalFold(header, preapprovedHeader) {
		return 0, 0, fmt.Errorf("unexpected header %v, want %v", header, preapprovedHeader)
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("Error importing address row %d: %v", line, err)
			invalid++
			continue
		}
		if len(record) < 4 {
			log.Printf("Error importing address row %d: too few fields", line)
			invalid++
			continue
		}

		addr := models.PreapprovedAddress{
			Addr1:   strings.TrimSpace(record[0]),
			City:    strings.TrimSpace(record[1]),
			State:   strings.TrimSpace(record[2]),
			ZipCode: strings.TrimSpace(record[3]),
		}
		if len(record) > 4 {
			addr.Note = strings.TrimSpace(record[4])
		}
		if addr.Addr1 == "" || addr.ZipCode == "" {
			log.Printf("Error importing address row %d: missing addr1 or zip", line)
			invalid++
			continue
		}

		var existing int64
		if err := s.db.Model(&models.PreapprovedAddress{}).
			Where("addr1 = ? AND zip_code = ?", addr.Addr1, addr.ZipCode).
			Count(&existing).Error; err != nil {
			return valid, invalid, fmt.Errorf("failed duplicate check on row %d: %w", line, err)
		}
		if existing > 0 {
			log.Printf("Skipping duplicate preapproved address on row %d: %s / %s",
				line, addr.Addr1, addr.ZipCode)
			invalid++
			continue
		}

		if err := s.db.Create(&addr).Error; err != nil {
			log.Printf("Error importing address row %d: %v", line, err)
			invalid++
			continue
		}
		valid++
	}

	log.Printf("Imported %d preapproved addresses (%d invalid).", valid, invalid)
	return valid, invalid, nil
}

func equalFold(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
