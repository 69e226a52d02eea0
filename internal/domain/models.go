// Package domain holds the CleanSlate data model: subscriptions, email
// sources, the user profile, and the client state tree they live in.
package domain

// SubscriptionStatus drives both display and financial aggregation.
// Statuses are mutually exclusive.
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusUnused    SubscriptionStatus = "unused"
	StatusForgotten SubscriptionStatus = "forgotten"
	StatusPaused    SubscriptionStatus = "paused"
	StatusCancelled SubscriptionStatus = "cancelled"
)

// Valid reports whether s is one of the five known statuses.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusUnused, StatusForgotten, StatusPaused, StatusCancelled:
		return true
	}
	return false
}

// NextBillingPaused is the nextBilling sentinel for paused subscriptions.
const NextBillingPaused = "Paused"

// Subscription is a recurring-cost service entity tracked for
// cancellation/optimization. Amount is the monthly cost and must be >= 0.
type Subscription struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Category       string             `json:"category"`
	Amount         float64            `json:"amount"`
	Status         SubscriptionStatus `json:"status"`
	LastUsed       string             `json:"lastUsed"`
	NextBilling    string             `json:"nextBilling"`
	YearlyDiscount float64            `json:"yearlyDiscount"` // percent, 0-100
	Logo           string             `json:"logo,omitempty"`
}

// EmailType classifies an email source.
type EmailType string

const (
	EmailNewsletter   EmailType = "newsletter"
	EmailPromotional  EmailType = "promotional"
	EmailNotification EmailType = "notification"
)

// EmailFrequency is descriptive only; EmailsPerWeek drives the aggregates.
type EmailFrequency string

const (
	FrequencyDaily   EmailFrequency = "daily"
	FrequencyWeekly  EmailFrequency = "weekly"
	FrequencyMonthly EmailFrequency = "monthly"
)

// EmailImportance ranks how much the user cares about a source.
type EmailImportance string

const (
	ImportanceHigh   EmailImportance = "high"
	ImportanceMedium EmailImportance = "medium"
	ImportanceLow    EmailImportance = "low"
)

// EmailSource is a sender/category bucket of incoming promotional,
// newsletter, or notification traffic.
type EmailSource struct {
	ID            string          `json:"id"`
	Sender        string          `json:"sender"`
	Category      string          `json:"category"`
	Type          EmailType       `json:"type"`
	Frequency     EmailFrequency  `json:"frequency"`
	EmailsPerWeek int             `json:"emailsPerWeek"`
	Importance    EmailImportance `json:"importance"`
	Unsubscribed  bool            `json:"unsubscribed"`
	Logo          string          `json:"logo,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// UserProfile carries the savings goal the analytics engine reports against.
type UserProfile struct {
	Name        string  `json:"name"`
	Email       string  `json:"email,omitempty"`
	TotalSaved  float64 `json:"totalSaved"`
	SavingsGoal float64 `json:"savingsGoal"`
}

// UIState is pure view state, not business data.
type UIState struct {
	ActiveTab    string `json:"activeTab"`
	SearchTerm   string `json:"searchTerm"`
	FilterStatus string `json:"filterStatus"`
	SortBy       string `json:"sortBy"`
}

// PWAState tracks install-prompt chrome flags.
type PWAState struct {
	IsInstallable     bool `json:"isInstallable"`
	IsInstalled       bool `json:"isInstalled"`
	ShowInstallPrompt bool `json:"showInstallPrompt"`
}

// State is the single client state tree. It is only ever replaced as a
// whole by the store's reducer, never mutated in place.
type State struct {
	User          UserProfile    `json:"user"`
	UI            UIState        `json:"ui"`
	PWA           PWAState       `json:"pwa"`
	Subscriptions []Subscription `json:"subscriptions"`
	Emails        []EmailSource  `json:"emails"`
}

// ImportedSubscription is the external shape accepted by the subscription
// import: detected or user-provided services not yet in the tree.
type ImportedSubscription struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category,omitempty"`
	Logo     string  `json:"logo,omitempty"`
}

// BankTransaction is a minimal bank statement line fed to the detector.
type BankTransaction struct {
	Merchant    string  `json:"merchant"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date,omitempty"`
}

// ImportCandidate is a recurring payment the detector believes is a
// subscription, with a confidence score in (0, 0.95].
type ImportCandidate struct {
	Name             string  `json:"name"`
	Merchant         string  `json:"merchant"`
	Amount           float64 `json:"amount"`
	Category         string  `json:"category"`
	Logo             string  `json:"logo,omitempty"`
	Frequency        string  `json:"frequency"`
	Confidence       float64 `json:"confidence"`
	TransactionCount int     `json:"transactionCount"`
}
