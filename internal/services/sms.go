package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Delivery faults. The first two are fatal: the destination itself is bad and
// a verification record must not be created. Everything else is advisory and
// the caller may proceed with the generated code.
var (
	ErrInvalidPhoneNumber = errors.New("the phone number format is invalid")
	ErrPhoneUnreachable   = errors.New("this phone number cannot receive SMS messages")
	ErrSMSNotConfigured   = errors.New("sms credentials not properly configured")
	ErrSMSAuthFailed      = errors.New("sms service authentication failed")
)

// Twilio REST error codes the platform reacts to.
const (
	twilioInvalidToNumber     = 21211
	twilioUnreachableToNumber = 21214
	twilioAuthenticationError = 21608
)

// Sender delivers a text message to a destination phone number.
type Sender interface {
	Send(to, body string) error
}

// TwilioSender sends SMS through the Twilio API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender builds a sender from TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN
// and TWILIO_PHONE_NUMBER. Missing credentials return ErrSMSNotConfigured;
// callers decide whether to degrade.
func NewTwilioSender() (*TwilioSender, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, ErrSMSNotConfigured
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}, nil
}

// Send delivers one SMS, translating Twilio failures into the platform's
// delivery faults.
func (t *TwilioSender) Send(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(normalizePhoneNumber(to))
	params.SetBody(body)

	_, err := t.client.Api.CreateMessage(params)
	if err == nil {
		return nil
	}

	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		switch restErr.Code {
		case twilioInvalidToNumber:
			return ErrInvalidPhoneNumber
		case twilioUnreachableToNumber:
			return ErrPhoneUnreachable
		case twilioAuthenticationError:
			return ErrSMSAuthFailed
		default:
			return fmt.Errorf("sms service error (%d): %s", restErr.Code, restErr.Message)
		}
	}
	return fmt.Errorf("sms delivery failed: %w", err)
}

// disabledSender stands in when Twilio credentials are absent. Every
// delivery fails with ErrSMSNotConfigured, an advisory fault, so generated
// codes survive and callers still see the degraded-credentials warning.
// Distinct from a nil sender, which means deliberate test mode and reports
// no fault at all.
type disabledSender struct{}

func (disabledSender) Send(to, body string) error {
	return ErrSMSNotConfigured
}

// NewDisabledSender returns the stand-in sender for missing credentials.
func NewDisabledSender() Sender {
	return disabledSender{}
}

// normalizePhoneNumber coerces a number into E.164: leading +, digits only.
func normalizePhoneNumber(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return "+" + b.String()
}
