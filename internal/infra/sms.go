package infra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrSMSNotConfigured is returned when no gateway URL is set.
var ErrSMSNotConfigured = errors.New("sms gateway not configured")

// SMSSender delivers one text message to one phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// SMSMessage is the JSON body accepted by the gateway's /messages endpoint.
type SMSMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type smsResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type smsError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// SMSClient is a resty-backed gateway client. Calls go through the circuit
// breaker so a dead gateway fails fast instead of stalling the workers.
type SMSClient struct {
	http    *resty.Client
	breaker *CircuitBreaker
}

// NewSMSClient builds a client for baseURL authenticated with a bearer token.
// A nil breaker gets the default configuration.
func NewSMSClient(baseURL, token string, breaker *CircuitBreaker) *SMSClient {
	if breaker == nil {
		breaker = NewCircuitBreaker(DefaultCBConfig())
	}
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if token != "" {
		rc.SetAuthToken(token)
	}
	return &SMSClient{http: rc, breaker: breaker}
}

// Breaker exposes the breaker for health reporting.
func (c *SMSClient) Breaker() *CircuitBreaker { return c.breaker }

// SendSMS posts a single message to the gateway.
func (c *SMSClient) SendSMS(ctx context.Context, to, body string) error {
	if c.http.BaseURL == "" {
		return ErrSMSNotConfigured
	}
	return c.breaker.Execute(func() error {
		result := new(smsResponse)
		apiErr := new(smsError)

		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(SMSMessage{To: to, Body: body}).
			SetResult(result).
			SetError(apiErr).
			Post("/messages")
		if err != nil {
			return fmt.Errorf("sms: gateway unreachable: %w", err)
		}
		if resp.StatusCode() >= http.StatusBadRequest {
			return fmt.Errorf("sms: gateway returned %d: %s", resp.StatusCode(), apiErr.Message)
		}
		return nil
	})
}
