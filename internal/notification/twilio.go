package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const twilioProvider = "twilio"

// twilioError is the error envelope returned by Twilio REST APIs.
type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// TwilioClient talks to the Twilio Messages and Verify APIs. It implements
// both SMSSender and PhoneVerifier.
type TwilioClient struct {
	cfg     TwilioConfig
	client  *resty.Client
	limiter *rate.Limiter
}

// NewTwilioClient returns a TwilioClient. A nil httpClient uses a default
// client. Requests answered with 429 are retried cfg.Retries times.
func NewTwilioClient(cfg TwilioConfig, httpClient *http.Client) *TwilioClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	client := resty.NewWithClient(httpClient).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.retryWait()).
		AddRetryCondition(func(r *resty.Response, _ error) bool {
			return r != nil && r.StatusCode() == http.StatusTooManyRequests
		})

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return &TwilioClient{cfg: cfg, client: client, limiter: limiter}
}

// SendSMS sends body to the phone number to.
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		c.cfg.apiBase(), url.PathEscape(c.cfg.AccountSID))

	_, err := c.post(ctx, endpoint, map[string]string{
		"To":   to,
		"From": c.cfg.FromNumber,
		"Body": body,
	})
	return err
}

// StartVerification asks Twilio Verify to text a one-time code to phone.
func (c *TwilioClient) StartVerification(ctx context.Context, phone string) error {
	if c.cfg.VerifyServiceSID == "" {
		return &SendError{Provider: twilioProvider, Err: errors.New("verify service is not configured")}
	}
	endpoint := fmt.Sprintf("%s/v2/Services/%s/Verifications",
		c.cfg.verifyBase(), url.PathEscape(c.cfg.VerifyServiceSID))

	_, err := c.post(ctx, endpoint, map[string]string{"To": phone, "Channel": "sms"})
	return err
}

// CheckVerification reports whether code matches the one sent to phone.
func (c *TwilioClient) CheckVerification(ctx context.Context, phone, code string) (bool, error) {
	if c.cfg.VerifyServiceSID == "" {
		return false, &SendError{Provider: twilioProvider, Err: errors.New("verify service is not configured")}
	}
	endpoint := fmt.Sprintf("%s/v2/Services/%s/VerificationCheck",
		c.cfg.verifyBase(), url.PathEscape(c.cfg.VerifyServiceSID))

	respBody, err := c.post(ctx, endpoint, map[string]string{"To": phone, "Code": code})
	if err != nil {
		return false, err
	}

	var check struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &check); err != nil {
		return false, &SendError{Provider: twilioProvider, Err: fmt.Errorf("parsing response: %w", err)}
	}
	return check.Status == "approved", nil
}

// post sends a form-encoded request and returns the body of a 2xx response.
func (c *TwilioClient) post(ctx context.Context, endpoint string, form map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &SendError{Provider: twilioProvider, Err: fmt.Errorf("rate limited: %w", err)}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(endpoint)
	if err != nil {
		return nil, &SendError{Provider: twilioProvider, Err: err}
	}

	if !resp.IsSuccess() {
		var apiErr twilioError
		respBody := resp.Body()
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			msg = fmt.Sprintf("%s (code %d)", apiErr.Message, apiErr.Code)
		}
		return nil, &SendError{Provider: twilioProvider, StatusCode: resp.StatusCode(), Err: errors.New(msg)}
	}
	return resp.Body(), nil
}
