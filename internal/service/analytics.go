package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/observability"
	"github.com/cleanslate/cleanslate-api-go/internal/port"
	"github.com/cleanslate/cleanslate-api-go/internal/store"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service")

// Per-email time cost and period scaling for email aggregates.
const (
	minutesPerEmail = 1.5
	weeksPerMonth   = 4.33
	weeksPerYear    = 52
	monthsPerYear   = 12
)

// Analytics derives display metrics from the current state tree. All
// calculators are pure; the engine memoizes whole summaries on the store's
// section versions so unchanged state never recomputes.
type Analytics struct {
	store   *store.Store
	cache   port.Cache[domain.AnalyticsSummary]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAnalytics creates the analytics engine with its dependencies injected.
func NewAnalytics(st *store.Store, cache port.Cache[domain.AnalyticsSummary], metrics *observability.Metrics, logger *zap.Logger) *Analytics {
	return &Analytics{
		store:   st,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Summary returns the derived metrics for the current state, memoized on
// the (subscriptions, emails, user) version triple.
func (a *Analytics) Summary(ctx context.Context) domain.AnalyticsSummary {
	_, span := tracer.Start(ctx, "Analytics.Summary")
	defer span.End()

	start := time.Now()
	defer func() {
		a.metrics.RecordRequestDuration("analytics", time.Since(start))
	}()

	state, versions := a.store.Snapshot()
	key := cacheKey(versions)

	if cached, ok := a.cache.Get(key); ok {
		a.metrics.IncrCacheHit("analytics")
		return cached
	}
	a.metrics.IncrCacheMiss("analytics")

	summary := Summarize(state)
	a.cache.Set(key, summary)
	return summary
}

// Insights evaluates the recommendation rules against the current state.
func (a *Analytics) Insights(ctx context.Context) []domain.Insight {
	_, span := tracer.Start(ctx, "Analytics.Insights")
	defer span.End()

	state, _ := a.store.Snapshot()
	return GenerateInsights(state, Summarize(state))
}

func cacheKey(v store.Versions) string {
	return fmt.Sprintf("subs:%d|emails:%d|user:%d", v.Subscriptions, v.Emails, v.User)
}

// Summarize computes the full derived-metrics view for one state snapshot.
// It never mutates the input and tolerates empty collections.
func Summarize(state domain.State) domain.AnalyticsSummary {
	financial := CalculateFinancialMetrics(state.Subscriptions)
	emails := CalculateEmailMetrics(state.Emails)
	goals := CalculateGoalMetrics(state.User)

	return domain.AnalyticsSummary{
		Subscriptions: CalculateSubscriptionCounts(state.Subscriptions),
		Financial:     financial,
		Emails:        emails,
		Goals:         goals,
		Trends:        CalculateTrends(financial, emails, goals),
	}
}

// CalculateSubscriptionCounts tallies subscriptions per status.
func CalculateSubscriptionCounts(subs []domain.Subscription) domain.SubscriptionCounts {
	counts := domain.SubscriptionCounts{Total: len(subs)}
	for _, sub := range subs {
		switch sub.Status {
		case domain.StatusActive:
			counts.Active++
		case domain.StatusUnused:
			counts.Unused++
		case domain.StatusForgotten:
			counts.Forgotten++
		case domain.StatusPaused:
			counts.Paused++
		case domain.StatusCancelled:
			counts.Cancelled++
		}
	}
	return counts
}

// CalculateFinancialMetrics aggregates monthly costs by status. Active
// subscriptions drive spend; unused and forgotten ones drive potential
// savings; cancelled ones are excluded from everything.
func CalculateFinancialMetrics(subs []domain.Subscription) domain.FinancialMetrics {
	var monthlySpend, potentialSavings, discountSavings float64
	activeCount := 0

	for _, sub := range subs {
		switch sub.Status {
		case domain.StatusActive:
			monthlySpend += sub.Amount
			discountSavings += sub.Amount * monthsPerYear * sub.YearlyDiscount / 100
			activeCount++
		case domain.StatusUnused, domain.StatusForgotten:
			potentialSavings += sub.Amount
		}
	}

	avgCost := 0.0
	if activeCount > 0 {
		avgCost = monthlySpend / float64(activeCount)
	}

	return domain.FinancialMetrics{
		MonthlySpend:           round2(monthlySpend),
		AnnualSpend:            round2(monthlySpend * monthsPerYear),
		PotentialSavings:       round2(potentialSavings),
		PotentialAnnualSavings: round2(potentialSavings * monthsPerYear),
		AnnualDiscountSavings:  round2(discountSavings),
		AvgSubscriptionCost:    round2(avgCost),
	}
}

// CalculateEmailMetrics aggregates inbox volume. Unsubscribed sources are
// excluded from the weekly count and its time cost.
func CalculateEmailMetrics(emails []domain.EmailSource) domain.EmailMetrics {
	metrics := domain.EmailMetrics{TotalSources: len(emails)}
	for _, email := range emails {
		if email.Unsubscribed {
			metrics.Unsubscribed++
			continue
		}
		metrics.WeeklyEmails += email.EmailsPerWeek
	}

	weeklyMinutes := float64(metrics.WeeklyEmails) * minutesPerEmail
	metrics.TimeWastedWeekly = round1(weeklyMinutes)
	metrics.TimeWastedMonthly = round1(weeklyMinutes * weeksPerMonth)
	metrics.TimeWastedAnnual = round1(weeklyMinutes * weeksPerYear)
	return metrics
}

// CalculateGoalMetrics reports savings-goal progress. A zero goal yields
// zero progress rather than dividing by zero.
func CalculateGoalMetrics(user domain.UserProfile) domain.GoalMetrics {
	progress := 0.0
	if user.SavingsGoal > 0 {
		progress = user.TotalSaved / user.SavingsGoal * 100
	}
	if progress > 100 {
		progress = 100
	}
	if progress < 0 {
		progress = 0
	}

	remaining := user.SavingsGoal - user.TotalSaved
	if remaining < 0 {
		remaining = 0
	}

	return domain.GoalMetrics{
		Progress:   round1(progress),
		Remaining:  round2(remaining),
		TotalSaved: user.TotalSaved,
		Goal:       user.SavingsGoal,
		IsGoalMet:  user.TotalSaved >= user.SavingsGoal,
	}
}

// CalculateTrends derives percentage deltas from the current metrics. The
// thresholds stand in for period-over-period comparison; given the same
// metrics the result is always the same.
func CalculateTrends(financial domain.FinancialMetrics, emails domain.EmailMetrics, goals domain.GoalMetrics) domain.Trends {
	trends := domain.Trends{Savings: -5, Spending: 8, Emails: 15, Goal: -3}
	if financial.PotentialSavings > 50 {
		trends.Savings = 12
	}
	if financial.MonthlySpend > 100 {
		trends.Spending = -5
	}
	if emails.WeeklyEmails > 40 {
		trends.Emails = -8
	}
	if goals.Progress > 50 {
		trends.Goal = 15
	}
	return trends
}

// round2 rounds half-up to two decimals, consistent with currency display.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func round1(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}
