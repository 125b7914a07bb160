package services

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"voucher-redemption-api/config"
	"voucher-redemption-api/models"
)

const twilioNotifyEndpoint = "https://notify.twilio.com/v1/Services/%s/Notifications"

// NotificationService sends text messages to applicants through a
// Twilio-style notify API. Delivery is best-effort: provider errors are
// logged and swallowed, and a misconfigured gateway is a silent no-op.
// Applicants who provided an email address also get an email copy.
type NotificationService struct {
	settings *config.Settings
	client   *http.Client

	// endpoint overrides the provider URL in tests.
	endpoint string
}

func NewNotificationService(settings *config.Settings) *NotificationService {
	return &NotificationService{
		settings: settings,
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: fmt.Sprintf(twilioNotifyEndpoint, settings.Twilio.ServiceSID),
	}
}

// SendSubmissionText sends the one-off submission confirmation to a single
// applicant.
func (n *NotificationService) SendSubmissionText(app *models.Application) {
	body := SubmissionMessage(n.settings, app)
	n.sendText([]string{app.PhoneNumber}, body)
	n.sendEmailCopies([]*models.Application{app}, body)
}

// SendStatusTexts sends a status notification to a batch of applicants,
// grouped and sent once per distinct language.
func (n *NotificationService) SendStatusTexts(apps []*models.Application, textType TextType) {
	for _, language := range n.settings.Languages {
		langApps := make([]*models.Application, 0)
		for _, app := range apps {
			if app.Language == language {
				langApps = append(langApps, app)
			}
		}
		if len(langApps) == 0 {
			continue
		}

		var body string
		switch textType {
		case TextPaymentConfirmed:
			body = PaymentConfirmedMessage(n.settings, language)
		case TextRejection:
			body = RejectionMessage(n.settings, language)
		default:
			log.Printf("Unsupported batch text type %d, skipping", textType)
			return
		}

		recipients := make(map[string]struct{}, len(langApps))
		for _, app := range langApps {
			recipients[app.PhoneNumber] = struct{}{}
		}
		n.sendText(sortedKeys(recipients), body)
		n.sendEmailCopies(langApps, body)
	}
}

// sendText delivers one message body to a set of phone numbers. Errors
// never propagate to the caller.
func (n *NotificationService) sendText(recipients []string, body string) {
	log.Printf("About to send %q to %v.", body, recipients)

	if !n.settings.Twilio.Configured() {
		log.Println("Text gateway is not configured. Aborting sending the text...")
		return
	}

	form := url.Values{}
	for _, recipient := range recipients {
		form.Add("ToBinding", fmt.Sprintf(`{"binding_type":"sms","address":"%s"}`, recipient))
	}
	form.Set("Body", body)

	req, err := http.NewRequest(http.MethodPost, n.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("Failed to build notification request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(n.settings.Twilio.AccountSID, n.settings.Twilio.AuthToken)

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("Failed to send text messages: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("Text gateway returned status %d", resp.StatusCode)
		return
	}
	log.Println("Successfully sent the text messages.")
}

// sendEmailCopies mails the same body to applicants that provided an email
// address. Best-effort, like the texts.
func (n *NotificationService) sendEmailCopies(apps []*models.Application, body string) {
	to := make([]string, 0)
	for _, app := range apps {
		if app.Email != "" {
			to = append(to, app.Email)
		}
	}
	if len(to) == 0 {
		return
	}
	html := "<p>" + strings.ReplaceAll(body, "\n", "<br>") + "</p>"
	if err := config.SendMail(to, n.settings.FundName, html); err != nil {
		log.Printf("Failed to send email copies: %v", err)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
