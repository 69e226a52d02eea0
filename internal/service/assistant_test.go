package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/cache"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/observability"
	"github.com/cleanslate/cleanslate-api-go/internal/service"
	"github.com/cleanslate/cleanslate-api-go/internal/store"

	"go.uber.org/zap"
)

func newAssistant(state domain.State) *service.Assistant {
	st := store.New(state, nil, zap.NewNop())
	metrics := observability.NewMetrics()
	analytics := service.NewAnalytics(st, cache.New[domain.AnalyticsSummary](time.Minute), metrics, zap.NewNop())
	return service.NewAssistant(st, analytics, metrics, zap.NewNop())
}

func TestDetectIntent(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"How can I save money?", "savings"},
		{"My BUDGET is tight", "savings"},
		{"clean up my inbox please", "emails"},
		{"unsubscribe me from newsletters", "emails"},
		{"what subscriptions are unused?", "unused"},
		{"anything forgotten?", "unused"},
		{"how is my goal progress?", "goal"},
		{"show me the analytics report", "analytics"},
		{"hello there", "greeting"},
		{"help", "greeting"},
		{"what's the weather like", "general"},
		{"", "general"},
	}

	for _, tc := range cases {
		if got := service.DetectIntent(tc.message); got != tc.want {
			t.Errorf("DetectIntent(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestDetectIntent_FirstMatchWins(t *testing.T) {
	// "save" (savings) appears before "cancel" (unused) in the group order,
	// so a message hitting both resolves to savings.
	if got := service.DetectIntent("cancel something to save money"); got != "savings" {
		t.Errorf("expected savings, got %q", got)
	}
	// "email" beats "goal" the same way.
	if got := service.DetectIntent("email me my goal progress"); got != "emails" {
		t.Errorf("expected emails, got %q", got)
	}
}

func TestRespond_SavingsNamesBiggestWaste(t *testing.T) {
	svc := newAssistant(analyticsState())

	resp := svc.Respond(context.Background(), domain.ChatRequest{Message: "how do I save money?"})

	if resp.Reply.Intent != "savings" {
		t.Fatalf("expected savings intent, got %s", resp.Reply.Intent)
	}
	if !strings.Contains(resp.Reply.Message, "Adobe") {
		t.Errorf("expected Adobe named as biggest waste, got: %s", resp.Reply.Message)
	}
	if !strings.Contains(resp.Reply.Message, "$60.98") {
		t.Errorf("expected combined waste $60.98, got: %s", resp.Reply.Message)
	}
	if len(resp.Reply.Suggestions) == 0 {
		t.Error("expected suggestion chips")
	}
}

func TestRespond_UnusedListsEachSubscription(t *testing.T) {
	svc := newAssistant(analyticsState())

	resp := svc.Respond(context.Background(), domain.ChatRequest{Message: "show me unused subscriptions"})

	if resp.Reply.Intent != "unused" {
		t.Fatalf("expected unused intent, got %s", resp.Reply.Intent)
	}
	for _, name := range []string{"Adobe", "Disney+"} {
		if !strings.Contains(resp.Reply.Message, name) {
			t.Errorf("expected %s in the bullet list, got: %s", name, resp.Reply.Message)
		}
	}
}

func TestRespond_UnusedWithCleanState(t *testing.T) {
	state := analyticsState()
	for i := range state.Subscriptions {
		state.Subscriptions[i].Status = domain.StatusActive
	}
	svc := newAssistant(state)

	resp := svc.Respond(context.Background(), domain.ChatRequest{Message: "anything unused?"})

	if !strings.Contains(resp.Reply.Message, "don't have any unused") {
		t.Errorf("expected congratulation message, got: %s", resp.Reply.Message)
	}
}

func TestRespond_GoalReportsProgress(t *testing.T) {
	svc := newAssistant(analyticsState())

	resp := svc.Respond(context.Background(), domain.ChatRequest{Message: "how close am I to my goal?"})

	if resp.Reply.Intent != "goal" {
		t.Fatalf("expected goal intent, got %s", resp.Reply.Intent)
	}
	if !strings.Contains(resp.Reply.Message, "82.6%") {
		t.Errorf("expected 82.6%% progress, got: %s", resp.Reply.Message)
	}
}

func TestRespond_AnalyticsNamesTopCategory(t *testing.T) {
	svc := newAssistant(analyticsState())

	resp := svc.Respond(context.Background(), domain.ChatRequest{Message: "run an analysis"})

	if resp.Reply.Intent != "analytics" {
		t.Fatalf("expected analytics intent, got %s", resp.Reply.Intent)
	}
	// Active spend: Entertainment 15.99 beats Music 9.99.
	if !strings.Contains(resp.Reply.Message, "Entertainment") {
		t.Errorf("expected Entertainment as top category, got: %s", resp.Reply.Message)
	}
}

func TestRespond_FallbackSummarizes(t *testing.T) {
	svc := newAssistant(analyticsState())

	resp := svc.Respond(context.Background(), domain.ChatRequest{Message: "xyzzy"})

	if resp.Reply.Intent != "general" {
		t.Fatalf("expected general intent, got %s", resp.Reply.Intent)
	}
	if !strings.Contains(resp.Reply.Message, "$25.98") {
		t.Errorf("expected monthly spend in fallback, got: %s", resp.Reply.Message)
	}
}

func TestRespond_WelcomeOnEmptyMessage(t *testing.T) {
	svc := newAssistant(analyticsState())

	resp := svc.Respond(context.Background(), domain.ChatRequest{Message: ""})

	if resp.Reply.Intent != "welcome" {
		t.Fatalf("expected welcome intent, got %s", resp.Reply.Intent)
	}
	// Potential savings 60.98 crosses the 50 threshold; 26 emails/week does not.
	if !strings.Contains(resp.Reply.Message, "$60.98") {
		t.Errorf("expected potential savings in welcome, got: %s", resp.Reply.Message)
	}
	if strings.Contains(resp.Reply.Message, "emails/week") {
		t.Errorf("expected no inbox warning below 50/week, got: %s", resp.Reply.Message)
	}
	if !strings.Contains(resp.Reply.Message, "What would you like to optimize first?") {
		t.Errorf("expected the opening question, got: %s", resp.Reply.Message)
	}
}

func TestRespond_WelcomeMentionsInboxOverload(t *testing.T) {
	state := analyticsState()
	state.Emails = append(state.Emails, domain.EmailSource{
		ID: "email-9", Sender: "Flash Deals", EmailsPerWeek: 40, Importance: domain.ImportanceLow,
	})
	svc := newAssistant(state)

	resp := svc.Respond(context.Background(), domain.ChatRequest{Message: "   "})

	if resp.Reply.Intent != "welcome" {
		t.Fatalf("expected welcome intent for blank message, got %s", resp.Reply.Intent)
	}
	if !strings.Contains(resp.Reply.Message, "66 emails/week") {
		t.Errorf("expected inbox overload mention, got: %s", resp.Reply.Message)
	}
}

func TestRespond_WelcomeWithNothingToFlag(t *testing.T) {
	state := analyticsState()
	for i := range state.Subscriptions {
		state.Subscriptions[i].Status = domain.StatusActive
	}
	svc := newAssistant(state)

	resp := svc.Respond(context.Background(), domain.ChatRequest{Message: ""})

	if strings.Contains(resp.Reply.Message, "save $") {
		t.Errorf("expected no savings pitch without unused subscriptions, got: %s", resp.Reply.Message)
	}
}

func TestRespond_ConversationID(t *testing.T) {
	svc := newAssistant(analyticsState())

	fresh := svc.Respond(context.Background(), domain.ChatRequest{Message: "hi"})
	if fresh.ConversationID == "" {
		t.Error("expected a generated conversation id")
	}

	kept := svc.Respond(context.Background(), domain.ChatRequest{Message: "hi", ConversationID: "conv-1"})
	if kept.ConversationID != "conv-1" {
		t.Errorf("expected conversation id preserved, got %s", kept.ConversationID)
	}
}
