package services

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"voucher-redemption-api/config"
)

const uspsVerifyEndpoint = "https://secure.shippingapis.com/ShippingAPI.dll"

// VerifiedAddress is the standardized address USPS returns. Note the USPS
// API swaps the line meanings: their Address1 is the unit line and Address2
// is the street line.
type VerifiedAddress struct {
	Addr1      string
	Addr2      string
	City       string
	State      string
	ZipCode    string
	ReturnText string
}

type uspsAddressResponse struct {
	XMLName   xml.Name      `xml:"AddressValidateResponse"`
	Addresses []uspsAddress `xml:"Address"`
}

type uspsAddress struct {
	Address1   string     `xml:"Address1"`
	Address2   string     `xml:"Address2"`
	City       string     `xml:"City"`
	State      string     `xml:"State"`
	Zip5       string     `xml:"Zip5"`
	ReturnText string     `xml:"ReturnText"`
	Error      *uspsError `xml:"Error"`
}

type uspsError struct {
	Description string `xml:"Description"`
}

// AddressService verifies addresses against the USPS Verify API. The
// service is fallible and slow; callers must treat a non-empty error
// description as a signal to branch to manual address entry, never to
// retry automatically.
type AddressService struct {
	settings *config.Settings
	client   *http.Client

	// endpoint overrides the USPS URL in tests.
	endpoint string
}

func NewAddressService(settings *config.Settings) *AddressService {
	return &AddressService{
		settings: settings,
		client:   &http.Client{Timeout: 15 * time.Second},
		endpoint: uspsVerifyEndpoint,
	}
}

// VerifyAddress submits the entered address for standardization. It returns
// the standardized address and the provider's error description ("" when
// verification succeeded). The error return covers transport-level failures
// only.
func (s *AddressService) VerifyAddress(addr1, addr2, city, state, zip string) (*VerifiedAddress, string, error) {
	requestXML := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" ?>
    <AddressValidateRequest USERID="%s">
        <Address>
            <Address1>%s</Address1>
            <Address2>%s</Address2>
            <City>%s</City>
            <State>%s</State>
            <Zip5>%s</Zip5>
            <Zip4/>
        </Address>
    </AddressValidateRequest>`, s.settings.USPSUserID, addr2, addr1, city, state, zip)

	params := url.Values{}
	params.Set("API", "Verify")
	params.Set("XML", requestXML)

	resp, err := s.client.Get(s.endpoint + "?" + params.Encode())
	if err != nil {
		return nil, "", fmt.Errorf("usps request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("#UspsHttpError: status %d", resp.StatusCode)
		return nil, "", fmt.Errorf("usps returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read usps response: %w", err)
	}

	var parsed uspsAddressResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, "", fmt.Errorf("failed to parse usps response: %w", err)
	}
	if len(parsed.Addresses) == 0 {
		return nil, "", fmt.Errorf("usps response contained no address")
	}

	// There should only be one <Address> tag; use the first.
	addr := parsed.Addresses[0]
	errorDescription := ""
	if addr.Error != nil {
		errorDescription = addr.Error.Description
	}
	return &VerifiedAddress{
		Addr1:      addr.Address2,
		Addr2:      addr.Address1,
		City:       addr.City,
		State:      addr.State,
		ZipCode:    addr.Zip5,
		ReturnText: addr.ReturnText,
	}, errorDescription, nil
}
