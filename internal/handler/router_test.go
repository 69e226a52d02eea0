package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/handler"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/cache"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/observability"
	"github.com/cleanslate/cleanslate-api-go/internal/service"
	"github.com/cleanslate/cleanslate-api-go/internal/store"

	"go.uber.org/zap"
)

// newTestServer wires the full router over the built-in seed data with no
// persistence and no upstream clients.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	st := store.New(domain.InitialState(domain.DefaultSeed()), nil, logger)

	analyticsSvc := service.NewAnalytics(st, cache.New[domain.AnalyticsSummary](time.Minute), metrics, logger)
	svcs := handler.Services{
		Declutter: service.NewDeclutterService(st, nil, metrics, logger),
		Analytics: analyticsSvc,
		Assistant: service.NewAssistant(st, analyticsSvc, metrics, logger),
		Detector:  service.NewDetector(logger),
		Auth:      service.NewAuthService(&memCredentials{}, "router-test-secret", time.Minute, logger),
	}

	server := httptest.NewServer(handler.NewRouter(svcs, metrics, logger))
	t.Cleanup(server.Close)
	return server
}

type memCredentials struct {
	creds domain.Credentials
	saved bool
}

func (m *memCredentials) SaveCredentials(creds domain.Credentials) error {
	m.creds = creds
	m.saved = true
	return nil
}

func (m *memCredentials) LoadCredentials() (domain.Credentials, bool, error) {
	return m.creds, m.saved, nil
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestListSubscriptionsRoute(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/v1/subscriptions")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Subscriptions []domain.Subscription `json:"subscriptions"`
	}
	decodeBody(t, resp, &body)
	if len(body.Subscriptions) != 8 {
		t.Errorf("expected 8 seeded subscriptions, got %d", len(body.Subscriptions))
	}
}

func TestCancelSubscriptionRoute(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/v1/subscriptions/sub-1/cancel", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var sub domain.Subscription
	decodeBody(t, resp, &sub)
	if sub.Status != domain.StatusCancelled {
		t.Errorf("expected cancelled, got %s", sub.Status)
	}

	resp = postJSON(t, server.URL+"/v1/subscriptions/no-such-id/cancel", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
}

func TestAssistantRoute(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/v1/assistant", domain.ChatRequest{Message: "how can I save money?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var chat domain.ChatResponse
	decodeBody(t, resp, &chat)
	if chat.Reply.Intent != "savings" {
		t.Errorf("expected savings intent, got %s", chat.Reply.Intent)
	}
	if chat.ConversationID == "" {
		t.Error("expected a generated conversation id")
	}

	// An empty message opens the conversation with the welcome reply.
	resp = postJSON(t, server.URL+"/v1/assistant", domain.ChatRequest{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for empty message, got %d", resp.StatusCode)
	}
	decodeBody(t, resp, &chat)
	if chat.Reply.Intent != "welcome" {
		t.Errorf("expected welcome intent for empty message, got %s", chat.Reply.Intent)
	}
}

func TestAnalyticsSummaryRoute(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/v1/analytics/summary")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var summary domain.AnalyticsSummary
	decodeBody(t, resp, &summary)
	if summary.Financial.MonthlySpend <= 0 {
		t.Errorf("expected positive monthly spend, got %v", summary.Financial.MonthlySpend)
	}
	if summary.Subscriptions.Total != 8 {
		t.Errorf("expected 8 subscriptions counted, got %d", summary.Subscriptions.Total)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/v1/user/savings", map[string]float64{"amount": 10})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp = postJSON(t, server.URL+"/v1/auth/register", domain.LoginRequest{
		Email:    "demo@example.com",
		Password: "hunter22secret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", resp.StatusCode)
	}
	var token domain.TokenResponse
	decodeBody(t, resp, &token)
	if token.AccessToken == "" {
		t.Fatal("expected an access token")
	}

	req, err := http.NewRequest(http.MethodPost, server.URL+"/v1/user/savings", strings.NewReader(`{"amount":10}`))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST with token: %v", err)
	}
	defer authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", authed.StatusCode)
	}

	var user domain.UserProfile
	if err := json.NewDecoder(authed.Body).Decode(&user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.TotalSaved <= 247.80 {
		t.Errorf("expected savings to grow, got %v", user.TotalSaved)
	}
}

func TestEngineMetricsRoute(t *testing.T) {
	server := newTestServer(t)

	// Generate a little traffic first.
	for i := 0; i < 3; i++ {
		resp, err := http.Get(server.URL + "/v1/subscriptions")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(server.URL + "/v1/metrics/engine")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var snapshot domain.EngineMetrics
	decodeBody(t, resp, &snapshot)
	if snapshot.TotalRequests < 3 {
		t.Errorf("expected at least 3 requests recorded, got %d", snapshot.TotalRequests)
	}
}

func TestHealthzRoute(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var health domain.HealthStatus
	decodeBody(t, resp, &health)
	if health.Status != "healthy" {
		t.Errorf("expected healthy with seed data, got %s", health.Status)
	}
	if len(health.Services) != 2 {
		t.Errorf("expected 2 service entries, got %d", len(health.Services))
	}
}

func TestPrometheusEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestDetectRoute(t *testing.T) {
	server := newTestServer(t)

	body := map[string]any{
		"transactions": []domain.BankTransaction{
			{Merchant: "NETFLIX.COM", Amount: -15.99},
			{Merchant: "NETFLIX.COM", Amount: -15.99},
		},
	}
	resp := postJSON(t, server.URL+"/v1/subscriptions/detect", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		Candidates []domain.ImportCandidate `json:"candidates"`
	}
	decodeBody(t, resp, &out)
	if len(out.Candidates) != 1 || out.Candidates[0].Name != "Netflix" {
		t.Fatalf("unexpected candidates: %+v", out.Candidates)
	}
}

func TestImportRouteValidation(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/v1/subscriptions/import", map[string]any{"subscriptions": []any{}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty import, got %d", resp.StatusCode)
	}

	resp = postJSON(t, server.URL+"/v1/subscriptions/import", map[string]any{
		"subscriptions": []domain.ImportedSubscription{{Name: "Hulu", Amount: 11.99}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Added   int `json:"added"`
		Skipped int `json:"skipped"`
	}
	decodeBody(t, resp, &result)
	if result.Added != 1 || result.Skipped != 0 {
		t.Errorf("unexpected import result: %+v", result)
	}
}

func TestEmailRoutes(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/v1/emails/email-1/unsubscribe", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var email domain.EmailSource
	decodeBody(t, resp, &email)
	if !email.Unsubscribed {
		t.Error("expected email to be unsubscribed")
	}

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/v1/emails/email-2", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 from archive, got %d", del.StatusCode)
	}

	list, err := http.Get(server.URL + "/v1/emails")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var body struct {
		Emails []domain.EmailSource `json:"emails"`
	}
	decodeBody(t, list, &body)
	if len(body.Emails) != 3 {
		t.Errorf("expected 3 emails after archive, got %d", len(body.Emails))
	}
}

func TestNotFoundRoute(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(fmt.Sprintf("%s/v1/nope", server.URL))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
