package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Settings is the immutable application configuration. It is built once at
// startup from the environment and passed by reference to the components
// that need it; nothing reads these values ambiently at request time.
type Settings struct {
	FundName             string   `env:"FUND_NAME,default=Community Care Fund"`
	Languages            []string `env:"LANGUAGES,default=en,es"`
	CustomerServicePhone string   `env:"CUSTOMER_SERVICE_PHONE,default=+1 888 888 8888"`
	PaymentAmount        string   `env:"PAYMENT_AMOUNT,default=400"`

	// Card design IDs the payment processor uses per applicant language.
	CardDesignIDEnglish string `env:"USIO_CARD_DESIGN_ID_EN,default=111"`
	CardDesignIDSpanish string `env:"USIO_CARD_DESIGN_ID_ES,default=222"`

	USPSUserID string `env:"USPS_USER_ID"`

	Twilio TwilioSettings `env:",prefix=TWILIO_"`

	DraftTTLMinutes int `env:"DRAFT_TTL_MINUTES,default=60"`
}

// TwilioSettings holds the SMS gateway credentials. Leaving any of them
// empty turns the gateway into a logged no-op.
type TwilioSettings struct {
	AccountSID string `env:"ACCOUNT_SID"`
	AuthToken  string `env:"AUTH_TOKEN"`
	ServiceSID string `env:"SERVICE_SID"`
}

// Configured reports whether all gateway credentials are present.
func (t TwilioSettings) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.ServiceSID != ""
}

// LoadSettings builds the Settings object from environment variables.
func LoadSettings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := envconfig.Process(ctx, &s); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &s, nil
}

// CardDesignID returns the card design id for the given applicant language,
// falling back to the English design for unknown languages.
func (s *Settings) CardDesignID(language string) string {
	if language == "es" {
		return s.CardDesignIDSpanish
	}
	return s.CardDesignIDEnglish
}
