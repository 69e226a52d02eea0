package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/observability"
	"github.com/cleanslate/cleanslate-api-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Assistant is the scripted chat responder. It matches the lowercased
// message against an ordered list of keyword groups — first match wins, so
// the order below is part of the contract — and builds each canned reply
// from the current analytics. No model, no external calls.
type Assistant struct {
	store     *store.Store
	analytics *Analytics
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAssistant creates the assistant with all dependencies injected.
func NewAssistant(st *store.Store, analytics *Analytics, metrics *observability.Metrics, logger *zap.Logger) *Assistant {
	return &Assistant{
		store:     st,
		analytics: analytics,
		metrics:   metrics,
		logger:    logger,
	}
}

// keywordGroups is the ordered dispatch table. Each entry maps an intent to
// the keywords that trigger it.
var keywordGroups = []struct {
	intent   string
	keywords []string
}{
	{"savings", []string{"save", "money", "budget"}},
	{"emails", []string{"email", "inbox", "unsubscribe"}},
	{"unused", []string{"unused", "cancel", "forgotten"}},
	{"goal", []string{"goal", "target", "progress"}},
	{"analytics", []string{"analytics", "report", "analysis"}},
	{"greeting", []string{"hello", "hi", "help"}},
}

// DetectIntent returns the first intent whose keyword group matches the
// message, or "general" when nothing matches.
func DetectIntent(message string) string {
	lower := strings.ToLower(message)
	for _, group := range keywordGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.intent
			}
		}
	}
	return "general"
}

// Respond answers one chat message. It never fails: an empty message opens
// the conversation with the metrics-derived welcome, and unmatched messages
// get the fallback summary.
func (a *Assistant) Respond(ctx context.Context, req domain.ChatRequest) domain.ChatResponse {
	ctx, span := tracer.Start(ctx, "Assistant.Respond")
	defer span.End()

	start := time.Now()
	defer func() {
		a.metrics.RecordRequestDuration("assistant", time.Since(start))
	}()

	intent := DetectIntent(req.Message)
	if strings.TrimSpace(req.Message) == "" {
		intent = "welcome"
	}
	a.logger.Info("chat message received",
		zap.String("intent", intent),
		zap.Int("message_length", len(req.Message)),
	)

	state, _ := a.store.Snapshot()
	summary := a.analytics.Summary(ctx)

	var reply domain.ChatReply
	switch intent {
	case "welcome":
		reply = welcomeReply(summary)
	case "savings":
		reply = a.savingsReply(state)
	case "emails":
		reply = a.emailsReply(state)
	case "unused":
		reply = a.unusedReply(state)
	case "goal":
		reply = a.goalReply(summary.Goals)
	case "analytics":
		reply = a.analyticsReply(state, summary.Financial)
	case "greeting":
		reply = greetingReply()
	default:
		reply = fallbackReply(summary)
	}
	reply.Intent = intent

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	return domain.ChatResponse{
		ConversationID: conversationID,
		Reply:          reply,
		Timestamp:      time.Now().Format(time.RFC3339),
	}
}

func (a *Assistant) savingsReply(state domain.State) domain.ChatReply {
	unused := unusedSubscriptions(state.Subscriptions)
	if len(unused) == 0 {
		return domain.ChatReply{
			Message:     "💰 Your subscriptions are all in use — no obvious savings right now. Want me to look for yearly-billing discounts instead?",
			Suggestions: []string{"Show me yearly discounts", "Analyze my spending"},
		}
	}

	var total float64
	for _, sub := range unused {
		total += sub.Amount
	}
	biggest := unused[0]
	for _, sub := range unused[1:] {
		if sub.Amount > biggest.Amount {
			biggest = sub
		}
	}

	return domain.ChatReply{
		Message: fmt.Sprintf("💰 I found %d unused subscriptions costing you $%.2f/month! The biggest waste is %s at $%.2f/month. Want me to help you cancel them?",
			len(unused), total, biggest.Name, biggest.Amount),
		Suggestions: []string{"Cancel unused subscriptions", "Show me yearly discounts", "Analyze my spending"},
	}
}

func (a *Assistant) emailsReply(state domain.State) domain.ChatReply {
	var lowPriority, minutes float64
	for _, email := range state.Emails {
		if email.Importance == domain.ImportanceLow && !email.Unsubscribed {
			lowPriority++
			minutes += float64(email.EmailsPerWeek) * minutesPerEmail
		}
	}

	return domain.ChatReply{
		Message: fmt.Sprintf("📧 You're receiving %.0f low-priority email sources that waste %.1f minutes/week. I can bulk unsubscribe you from the noisiest ones!",
			lowPriority, minutes),
		Suggestions: []string{"Bulk unsubscribe low priority", "Show email breakdown", "Optimize my inbox"},
	}
}

func (a *Assistant) unusedReply(state domain.State) domain.ChatReply {
	unused := unusedSubscriptions(state.Subscriptions)
	if len(unused) == 0 {
		return domain.ChatReply{
			Message:     "🎉 Great news! You don't have any unused subscriptions. Your subscription management is on point!",
			Suggestions: []string{"Check for yearly discounts", "Optimize email subscriptions", "Set spending alerts"},
		}
	}

	lines := make([]string, 0, len(unused))
	for _, sub := range unused {
		lines = append(lines, fmt.Sprintf("• %s: $%.2f/month (last used %s)", sub.Name, sub.Amount, sub.LastUsed))
	}

	return domain.ChatReply{
		Message:     fmt.Sprintf("🎯 Here are your unused subscriptions:\n%s\n\nShall I help you cancel these?", strings.Join(lines, "\n")),
		Suggestions: []string{"Cancel all unused", "Review each individually", "Set usage reminders"},
	}
}

func (a *Assistant) goalReply(goals domain.GoalMetrics) domain.ChatReply {
	return domain.ChatReply{
		Message: fmt.Sprintf("🎯 You're %.1f%% to your $%.0f savings goal! Just $%.2f to go. Canceling those unused subscriptions would get you there faster.",
			goals.Progress, goals.Goal, goals.Remaining),
		Suggestions: []string{"Update savings goal", "Track monthly progress", "Celebrate milestones"},
	}
}

func (a *Assistant) analyticsReply(state domain.State, financial domain.FinancialMetrics) domain.ChatReply {
	category, amount := topSpendCategory(state.Subscriptions)
	if category == "" {
		return domain.ChatReply{
			Message:     "📊 There's nothing to analyze yet — no active subscriptions. Import your subscriptions and I'll break down your spending.",
			Suggestions: []string{"Import subscriptions"},
		}
	}

	score := 0.0
	if financial.MonthlySpend > 0 {
		score = (financial.MonthlySpend - financial.PotentialSavings) / financial.MonthlySpend * 100
	}

	return domain.ChatReply{
		Message: fmt.Sprintf("📊 Quick analysis: You spend most on %s ($%.2f/month). Your optimization score is %.0f%%. Want a detailed breakdown?",
			category, amount, score),
		Suggestions: []string{"Show detailed analytics", "Category breakdown", "Spending trends"},
	}
}

// welcomeReply opens a conversation. It leads with the savings and inbox
// numbers only when they're worth mentioning.
func welcomeReply(summary domain.AnalyticsSummary) domain.ChatReply {
	var b strings.Builder
	b.WriteString("👋 Hi! I'm your CleanSlate assistant. I've analyzed your subscriptions and emails. ")
	if summary.Financial.PotentialSavings > 50 {
		fmt.Fprintf(&b, "I found you could save $%.2f/month! ", summary.Financial.PotentialSavings)
	}
	if summary.Emails.WeeklyEmails > 50 {
		fmt.Fprintf(&b, "Also, you're getting %d emails/week - I can help reduce that. ", summary.Emails.WeeklyEmails)
	}
	b.WriteString("What would you like to optimize first?")

	return domain.ChatReply{
		Message:     b.String(),
		Suggestions: []string{"Find savings opportunities", "Clean up my emails", "Show me analytics"},
	}
}

func greetingReply() domain.ChatReply {
	return domain.ChatReply{
		Message:     "👋 Hello! I'm here to help you optimize your digital subscriptions and clean up your inbox. I can analyze your spending, find unused subscriptions, and reduce email overload. What would you like to work on?",
		Suggestions: []string{"Find savings opportunities", "Clean up my emails", "Show me analytics", "Set savings goals"},
	}
}

func fallbackReply(summary domain.AnalyticsSummary) domain.ChatReply {
	var b strings.Builder
	b.WriteString("👋 Here's where you stand: ")
	fmt.Fprintf(&b, "you spend $%.2f/month across %d active subscriptions", summary.Financial.MonthlySpend, summary.Subscriptions.Active)
	if summary.Financial.PotentialSavings > 0 {
		fmt.Fprintf(&b, ", and you could save $%.2f/month", summary.Financial.PotentialSavings)
	}
	fmt.Fprintf(&b, ". Your inbox gets %d emails/week. What would you like to optimize first?", summary.Emails.WeeklyEmails)

	return domain.ChatReply{
		Message:     b.String(),
		Suggestions: []string{"Find savings opportunities", "Clean up my emails", "Show me analytics"},
	}
}

func unusedSubscriptions(subs []domain.Subscription) []domain.Subscription {
	out := make([]domain.Subscription, 0)
	for _, sub := range subs {
		if sub.Status == domain.StatusUnused || sub.Status == domain.StatusForgotten {
			out = append(out, sub)
		}
	}
	return out
}

func topSpendCategory(subs []domain.Subscription) (string, float64) {
	totals := make(map[string]float64)
	for _, sub := range subs {
		if sub.Status == domain.StatusActive {
			totals[sub.Category] += sub.Amount
		}
	}

	categories := make([]string, 0, len(totals))
	for cat := range totals {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		if totals[categories[i]] != totals[categories[j]] {
			return totals[categories[i]] > totals[categories[j]]
		}
		return categories[i] < categories[j]
	})

	if len(categories) == 0 {
		return "", 0
	}
	return categories[0], totals[categories[0]]
}
