package domain

// Analytics output types. All currency values are rounded half-up to two
// decimal places; percentages to one.

// SubscriptionCounts breaks the subscription list down by status.
type SubscriptionCounts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Unused    int `json:"unused"`
	Forgotten int `json:"forgotten"`
	Paused    int `json:"paused"`
	Cancelled int `json:"cancelled"`
}

// FinancialMetrics aggregates monthly costs by status.
type FinancialMetrics struct {
	MonthlySpend           float64 `json:"monthlySpend"`
	AnnualSpend            float64 `json:"annualSpend"`
	PotentialSavings       float64 `json:"potentialSavings"`
	PotentialAnnualSavings float64 `json:"potentialAnnualSavings"`
	AnnualDiscountSavings  float64 `json:"annualDiscountSavings"`
	AvgSubscriptionCost    float64 `json:"avgSubscriptionCost"`
}

// EmailMetrics aggregates inbox volume and its time cost in minutes.
type EmailMetrics struct {
	TotalSources      int     `json:"totalSources"`
	WeeklyEmails      int     `json:"weeklyEmails"`
	Unsubscribed      int     `json:"unsubscribed"`
	TimeWastedWeekly  float64 `json:"timeWastedWeekly"`
	TimeWastedMonthly float64 `json:"timeWastedMonthly"`
	TimeWastedAnnual  float64 `json:"timeWastedAnnual"`
}

// GoalMetrics reports progress toward the savings goal.
type GoalMetrics struct {
	Progress   float64 `json:"progress"` // percent, clamped to [0,100]
	Remaining  float64 `json:"remaining"`
	TotalSaved float64 `json:"totalSaved"`
	Goal       float64 `json:"goal"`
	IsGoalMet  bool    `json:"isGoalMet"`
}

// Trends are percentage deltas derived deterministically from the current
// metrics. There is no historical data behind them; the thresholds stand in
// for real period-over-period comparison.
type Trends struct {
	Savings  float64 `json:"savings"`
	Spending float64 `json:"spending"`
	Emails   float64 `json:"emails"`
	Goal     float64 `json:"goal"`
}

// AnalyticsSummary is the full derived-metrics view for one state snapshot.
type AnalyticsSummary struct {
	Subscriptions SubscriptionCounts `json:"subscriptions"`
	Financial     FinancialMetrics   `json:"financial"`
	Emails        EmailMetrics       `json:"emails"`
	Goals         GoalMetrics        `json:"goals"`
	Trends        Trends             `json:"trends"`
}

// InsightType tags the tone of a recommendation.
type InsightType string

const (
	InsightWarning InsightType = "warning"
	InsightTip     InsightType = "tip"
	InsightSuccess InsightType = "success"
	InsightInfo    InsightType = "info"
)

// InsightPriority ranks recommendations; high sorts before medium before low.
type InsightPriority string

const (
	PriorityHigh   InsightPriority = "high"
	PriorityMedium InsightPriority = "medium"
	PriorityLow    InsightPriority = "low"
)

// Rank returns the sort rank for the priority (lower sorts first).
func (p InsightPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Insight is a generated recommendation derived from current aggregates.
type Insight struct {
	ID       string          `json:"id"`
	Type     InsightType     `json:"type"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Impact   float64         `json:"impact"` // monthly dollars at stake
	Priority InsightPriority `json:"priority"`
}
