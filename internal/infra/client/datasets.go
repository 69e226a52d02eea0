// Package client holds HTTP clients for the upstream dataset API. Calls go
// through the circuit breaker and a retry policy that retries server and
// network errors but fails client errors immediately.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("client")

// retryable is the shared retry predicate: 4xx upstream responses are
// permanent, everything else (5xx, network, decode) may be transient.
func retryable(err error) bool {
	var apiErr *domain.ErrAPIStatus
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return true
}

func newConfig(cfg resilience.Config) resilience.Config {
	cfg.ShouldRetry = retryable
	return cfg
}

// getJSON fetches url and decodes the 2xx body into out. Non-2xx responses
// become ErrAPIStatus carrying the status and body.
func getJSON(ctx context.Context, httpClient *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.ErrAPIStatus{Status: resp.StatusCode, Body: string(body)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// SubscriptionsClient fetches the subscription dataset.
type SubscriptionsClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewSubscriptionsClient creates a SubscriptionsClient.
func NewSubscriptionsClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *SubscriptionsClient {
	return &SubscriptionsClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        newConfig(cfg),
	}
}

// GetSubscriptions fetches the dataset with retry and circuit breaker.
func (c *SubscriptionsClient) GetSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	ctx, span := tracer.Start(ctx, "SubscriptionsClient.GetSubscriptions")
	defer span.End()

	var subs []domain.Subscription

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/api/subscriptions", c.baseURL)
			return getJSON(ctx, c.httpClient, url, &subs)
		})
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "subscriptions", Err: err}
	}
	return subs, nil
}

// EmailsClient fetches the email source dataset.
type EmailsClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewEmailsClient creates an EmailsClient.
func NewEmailsClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *EmailsClient {
	return &EmailsClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        newConfig(cfg),
	}
}

// GetEmails fetches the dataset with retry and circuit breaker.
func (c *EmailsClient) GetEmails(ctx context.Context) ([]domain.EmailSource, error) {
	ctx, span := tracer.Start(ctx, "EmailsClient.GetEmails")
	defer span.End()

	var emails []domain.EmailSource

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/api/emails", c.baseURL)
			return getJSON(ctx, c.httpClient, url, &emails)
		})
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "emails", Err: err}
	}
	return emails, nil
}
