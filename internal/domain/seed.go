package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed datasets. These are the fallback when the upstream dataset API is
// unreachable and the default content of a fresh state tree.

// SeedData bundles the startup datasets.
type SeedData struct {
	User          UserProfile    `yaml:"user" json:"user"`
	Subscriptions []Subscription `yaml:"subscriptions" json:"subscriptions"`
	Emails        []EmailSource  `yaml:"emails" json:"emails"`
}

// DefaultSeed returns the built-in demo datasets.
func DefaultSeed() SeedData {
	return SeedData{
		User: UserProfile{
			Name:        "Alex Johnson",
			Email:       "alex@example.com",
			TotalSaved:  247.80,
			SavingsGoal: 300,
		},
		Subscriptions: DefaultSubscriptions(),
		Emails:        DefaultEmails(),
	}
}

// DefaultSubscriptions returns the built-in subscription dataset.
func DefaultSubscriptions() []Subscription {
	return []Subscription{
		{ID: "sub-1", Name: "Netflix", Amount: 15.99, Status: StatusActive, LastUsed: "2 days ago", Category: "Entertainment", Logo: "🎬", NextBilling: "2025-08-15", YearlyDiscount: 0},
		{ID: "sub-2", Name: "Spotify Premium", Amount: 9.99, Status: StatusActive, LastUsed: "1 hour ago", Category: "Music", Logo: "🎵", NextBilling: "2025-08-12", YearlyDiscount: 20},
		{ID: "sub-3", Name: "Adobe Creative Cloud", Amount: 52.99, Status: StatusUnused, LastUsed: "3 months ago", Category: "Software", Logo: "🎨", NextBilling: "2025-08-20", YearlyDiscount: 16},
		{ID: "sub-4", Name: "Disney+", Amount: 7.99, Status: StatusForgotten, LastUsed: "6 months ago", Category: "Entertainment", Logo: "🏰", NextBilling: "2025-08-18", YearlyDiscount: 0},
		{ID: "sub-5", Name: "LinkedIn Premium", Amount: 29.99, Status: StatusUnused, LastUsed: "2 months ago", Category: "Professional", Logo: "💼", NextBilling: "2025-08-25", YearlyDiscount: 25},
		{ID: "sub-6", Name: "Canva Pro", Amount: 12.99, Status: StatusPaused, LastUsed: "1 month ago", Category: "Design", Logo: "🎯", NextBilling: NextBillingPaused, YearlyDiscount: 10},
		{ID: "sub-7", Name: "GitHub Pro", Amount: 4.00, Status: StatusActive, LastUsed: "Today", Category: "Development", Logo: "💻", NextBilling: "2025-08-11", YearlyDiscount: 16},
		{ID: "sub-8", Name: "Notion Pro", Amount: 8.00, Status: StatusActive, LastUsed: "Yesterday", Category: "Productivity", Logo: "📝", NextBilling: "2025-08-14", YearlyDiscount: 20},
	}
}

// DefaultEmails returns the built-in email source dataset.
func DefaultEmails() []EmailSource {
	return []EmailSource{
		{ID: "email-1", Sender: "TechCrunch", Type: EmailNewsletter, Frequency: FrequencyDaily, Unsubscribed: false, EmailsPerWeek: 7, Category: "Tech News", Importance: ImportanceMedium, Logo: "📱", Description: "Latest startup and technology news"},
		{ID: "email-2", Sender: "The Verge", Type: EmailNewsletter, Frequency: FrequencyDaily, Unsubscribed: false, EmailsPerWeek: 5, Category: "Tech News", Importance: ImportanceMedium, Logo: "⚡", Description: "Technology, science, art, and culture"},
		{ID: "email-3", Sender: "Amazon", Type: EmailPromotional, Frequency: FrequencyWeekly, Unsubscribed: false, EmailsPerWeek: 3, Category: "Shopping", Importance: ImportanceMedium, Logo: "📦", Description: "Product recommendations and deals"},
		{ID: "email-4", Sender: "Groupon", Type: EmailPromotional, Frequency: FrequencyDaily, Unsubscribed: false, EmailsPerWeek: 14, Category: "Deals", Importance: ImportanceLow, Logo: "🎫", Description: "Local deals and discounts"},
	}
}

// InitialState builds a fresh state tree from seed data.
func InitialState(seed SeedData) State {
	return State{
		User: seed.User,
		UI: UIState{
			ActiveTab:    "dashboard",
			SearchTerm:   "",
			FilterStatus: "all",
			SortBy:       "amount",
		},
		PWA:           PWAState{},
		Subscriptions: seed.Subscriptions,
		Emails:        seed.Emails,
	}
}

// LoadSeedFile reads seed datasets from a YAML file. Sections left empty in
// the file fall back to the built-in defaults.
func LoadSeedFile(path string) (SeedData, error) {
	seed := DefaultSeed()

	raw, err := os.ReadFile(path)
	if err != nil {
		return seed, err
	}

	var loaded SeedData
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return seed, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	if loaded.User.Name != "" {
		seed.User = loaded.User
	}
	if len(loaded.Subscriptions) > 0 {
		seed.Subscriptions = loaded.Subscriptions
	}
	if len(loaded.Emails) > 0 {
		seed.Emails = loaded.Emails
	}
	return seed, nil
}
