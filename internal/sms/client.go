// Package sms delivers the resolution text message to the original reporter
// through a Twilio-compatible REST API.
package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/your-org/reunite/internal/config"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
)

type Client struct {
	cfg        config.SMSConfig
	httpClient *http.Client
}

func NewClient(cfg config.SMSConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether provider credentials are configured. When they are
// not, SendResolutionSMS is a logged no-op upstream.
func (c *Client) Enabled() bool {
	return c.cfg.AccountSID != "" && c.cfg.AuthToken != "" && c.cfg.FromNumber != ""
}

// SendResolutionSMS notifies the reporter that the person has been found and
// where to collect them.
func (c *Client) SendResolutionSMS(ctx context.Context, toNumber string, cs *models.Case) error {
	if !c.Enabled() {
		return fmt.Errorf("sms provider credentials not configured")
	}
	if toNumber == "" {
		return fmt.Errorf("reporter contact number is empty")
	}

	body := fmt.Sprintf(
		"Dear Sir/Madam, the person you reported, %s, has been found. Identification: %s. You can contact the help booth at %s. Thank you.",
		cs.FullName, cs.IdentificationDetails, cs.BoothOfficerContact)

	form := url.Values{}
	form.Set("To", c.formatE164(toNumber))
	form.Set("From", c.cfg.FromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.cfg.BaseURL, c.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	observability.ExternalCallDuration.WithLabelValues("sms").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms provider returned %d", resp.StatusCode)
	}
	return nil
}

// formatE164 normalizes a local number to E.164 using the configured country
// prefix, keeping the last 10 digits.
func (c *Client) formatE164(number string) string {
	digits := make([]rune, 0, len(number))
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return c.cfg.CountryPrefix + string(digits)
}
