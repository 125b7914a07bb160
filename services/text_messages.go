package services

import (
	"fmt"

	"voucher-redemption-api/config"
	"voucher-redemption-api/models"
)

// TextType identifies which applicant notification to send.
type TextType int

const (
	TextSubmission TextType = iota + 1
	TextPaymentConfirmed
	TextRejection
)

// Message templates per language. Placeholders are filled from Settings and
// the application; unknown languages fall back to English.
var (
	submissionTemplates = map[string]string{
		"en": "Your application to the %s has been received. Your card will be mailed to:\n%s\nQuestions? Call %s.",
		"es": "Su solicitud para el %s ha sido recibida. Su tarjeta sera enviada a:\n%s\nPreguntas? Llame al %s.",
	}
	paymentConfirmedTemplates = map[string]string{
		"en": "Your payment card is on its way. If it does not arrive within 10 business days, call %s.",
		"es": "Su tarjeta de pago esta en camino. Si no llega dentro de 10 dias habiles, llame al %s.",
	}
	rejectionTemplates = map[string]string{
		"en": "We could not approve your application. For more information, call %s.",
		"es": "No pudimos aprobar su solicitud. Para mas informacion, llame al %s.",
	}
)

func templateFor(templates map[string]string, language string) string {
	if t, ok := templates[language]; ok {
		return t
	}
	return templates["en"]
}

// SubmissionMessage is the text sent to one applicant right after a
// successful submission.
func SubmissionMessage(settings *config.Settings, app *models.Application) string {
	return fmt.Sprintf(templateFor(submissionTemplates, app.Language),
		settings.FundName, app.FullAddress(), settings.CustomerServicePhone)
}

// PaymentConfirmedMessage is the text sent when an application reaches
// payment_confirmed.
func PaymentConfirmedMessage(settings *config.Settings, language string) string {
	return fmt.Sprintf(templateFor(paymentConfirmedTemplates, language),
		settings.CustomerServicePhone)
}

// RejectionMessage is the text sent when the dedup sweep rejects an
// application.
func RejectionMessage(settings *config.Settings, language string) string {
	return fmt.Sprintf(templateFor(rejectionTemplates, language),
		settings.CustomerServicePhone)
}
