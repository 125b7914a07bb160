package services

import (
	"strings"
	"testing"

	"voucher-redemption-api/models"
)

func TestMessagesFallBackToEnglishForUnknownLanguages(t *testing.T) {
	settings := testSettings()

	got := RejectionMessage(settings, "fr")
	want := RejectionMessage(settings, "en")
	if got != want {
		t.Fatalf("expected english fallback, got %q", got)
	}
}

func TestMessagesIncludeCustomerServicePhone(t *testing.T) {
	settings := testSettings()
	app := &models.Application{Language: "en", Addr1: "123 Main St", City: "Fresno", State: "CA", ZipCode: "93650"}

	for name, body := range map[string]string{
		"submission": SubmissionMessage(settings, app),
		"payment":    PaymentConfirmedMessage(settings, "en"),
		"rejection":  RejectionMessage(settings, "es"),
	} {
		if !strings.Contains(body, settings.CustomerServicePhone) {
			t.Errorf("%s message missing customer service phone: %q", name, body)
		}
	}
}
