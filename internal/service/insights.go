package service

import (
	"fmt"
	"sort"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"

	"github.com/google/uuid"
)

// GenerateInsights runs the recommendation rules against one state snapshot.
// Every rule is evaluated unconditionally and is a pure function of its
// inputs; the result is sorted high > medium > low, stable within a rank.
func GenerateInsights(state domain.State, summary domain.AnalyticsSummary) []domain.Insight {
	insights := []domain.Insight{}

	if in, ok := unusedSubscriptionsRule(state.Subscriptions); ok {
		insights = append(insights, in)
	}
	if in, ok := annualBillingRule(summary.Financial); ok {
		insights = append(insights, in)
	}
	if in, ok := emailOverloadRule(summary.Emails); ok {
		insights = append(insights, in)
	}
	if in, ok := goalProgressRule(summary.Goals); ok {
		insights = append(insights, in)
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Priority.Rank() < insights[j].Priority.Rank()
	})
	return insights
}

// unusedSubscriptionsRule flags money burning on unused/forgotten services.
func unusedSubscriptionsRule(subs []domain.Subscription) (domain.Insight, bool) {
	var count int
	var waste float64
	for _, sub := range subs {
		if sub.Status == domain.StatusUnused || sub.Status == domain.StatusForgotten {
			count++
			waste += sub.Amount
		}
	}
	if count == 0 {
		return domain.Insight{}, false
	}

	return domain.Insight{
		ID:       uuid.New().String(),
		Type:     domain.InsightWarning,
		Title:    fmt.Sprintf("%d Unused Subscriptions", count),
		Message:  fmt.Sprintf("You have %d subscriptions you haven't used recently. Consider canceling to save $%.2f/month.", count, waste),
		Impact:   round2(waste),
		Priority: domain.PriorityHigh,
	}, true
}

// annualBillingRule surfaces the yearly-discount opportunity on active
// subscriptions.
func annualBillingRule(financial domain.FinancialMetrics) (domain.Insight, bool) {
	if financial.AnnualDiscountSavings <= 0 {
		return domain.Insight{}, false
	}

	return domain.Insight{
		ID:       uuid.New().String(),
		Type:     domain.InsightTip,
		Title:    "Switch to Annual Billing",
		Message:  fmt.Sprintf("Switching eligible subscriptions to annual billing would save $%.2f/year.", financial.AnnualDiscountSavings),
		Impact:   round2(financial.AnnualDiscountSavings / monthsPerYear),
		Priority: domain.PriorityMedium,
	}, true
}

// emailOverloadRule warns when weekly volume crosses the overload line.
func emailOverloadRule(emails domain.EmailMetrics) (domain.Insight, bool) {
	if emails.WeeklyEmails <= 40 {
		return domain.Insight{}, false
	}

	return domain.Insight{
		ID:       uuid.New().String(),
		Type:     domain.InsightWarning,
		Title:    "Inbox Overload",
		Message:  fmt.Sprintf("You're receiving %d emails/week, costing about %.1f minutes of attention. Unsubscribing from low-importance sources would win most of it back.", emails.WeeklyEmails, emails.TimeWastedWeekly),
		Impact:   0,
		Priority: domain.PriorityMedium,
	}, true
}

// goalProgressRule celebrates goal progress at 80% and beyond.
func goalProgressRule(goals domain.GoalMetrics) (domain.Insight, bool) {
	if goals.Progress < 80 {
		return domain.Insight{}, false
	}

	return domain.Insight{
		ID:       uuid.New().String(),
		Type:     domain.InsightSuccess,
		Title:    "Great Progress!",
		Message:  fmt.Sprintf("You're %.0f%% of the way to your savings goal! Only $%.2f to go.", goals.Progress, goals.Remaining),
		Impact:   0,
		Priority: domain.PriorityLow,
	}, true
}
