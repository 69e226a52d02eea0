// Package store holds the client state tree and the reducer that is the
// only way to change it. Every mutation funnels through Store.Dispatch with
// one of the actions below; the reducer itself is a pure function, so time
// and identifiers are captured by the action constructors, not read inside
// the transition.
package store

import (
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"

	"github.com/google/uuid"
)

// ActionType names a state transition. The set is closed.
type ActionType string

const (
	ActionSetActiveTab         ActionType = "SET_ACTIVE_TAB"
	ActionSetSearchTerm        ActionType = "SET_SEARCH_TERM"
	ActionSetFilterStatus      ActionType = "SET_FILTER_STATUS"
	ActionSetSortBy            ActionType = "SET_SORT_BY"
	ActionCancelSubscription   ActionType = "CANCEL_SUBSCRIPTION"
	ActionPauseSubscription    ActionType = "PAUSE_SUBSCRIPTION"
	ActionActivateSubscription ActionType = "ACTIVATE_SUBSCRIPTION"
	ActionUnsubscribeEmail     ActionType = "UNSUBSCRIBE_EMAIL"
	ActionResubscribeEmail     ActionType = "RESUBSCRIBE_EMAIL"
	ActionArchiveEmail         ActionType = "ARCHIVE_EMAIL"
	ActionImportSubscriptions  ActionType = "IMPORT_SUBSCRIPTIONS"
	ActionSetPWAInstallable    ActionType = "SET_PWA_INSTALLABLE"
	ActionSetPWAInstalled      ActionType = "SET_PWA_INSTALLED"
	ActionAddSavings           ActionType = "ADD_SAVINGS"
	ActionSetSavingsGoal       ActionType = "SET_SAVINGS_GOAL"
)

// Action is one state transition request. Only the fields relevant to the
// Type are set; the rest stay zero.
type Action struct {
	Type ActionType

	// Scalar setters (tab, search term, filter, sort).
	Value string

	// Entity actions.
	ID string

	// ACTIVATE_SUBSCRIPTION carries the recomputed next billing date so the
	// reducer stays deterministic.
	NextBilling string

	// IMPORT_SUBSCRIPTIONS carries fully-built entities (ids and billing
	// dates already assigned).
	Subscriptions []domain.Subscription

	// PWA flag setters.
	Flag bool

	// Savings actions.
	Amount float64
}

// SetActiveTab replaces the active tab.
func SetActiveTab(tab string) Action {
	return Action{Type: ActionSetActiveTab, Value: tab}
}

// SetSearchTerm replaces the search term.
func SetSearchTerm(term string) Action {
	return Action{Type: ActionSetSearchTerm, Value: term}
}

// SetFilterStatus replaces the status filter.
func SetFilterStatus(status string) Action {
	return Action{Type: ActionSetFilterStatus, Value: status}
}

// SetSortBy replaces the sort key.
func SetSortBy(sortBy string) Action {
	return Action{Type: ActionSetSortBy, Value: sortBy}
}

// CancelSubscription marks the subscription cancelled.
func CancelSubscription(id string) Action {
	return Action{Type: ActionCancelSubscription, ID: id}
}

// PauseSubscription marks the subscription paused and sets the billing
// sentinel.
func PauseSubscription(id string) Action {
	return Action{Type: ActionPauseSubscription, ID: id}
}

// ActivateSubscription reactivates the subscription with the next billing
// date 30 days from now.
func ActivateSubscription(id string, now time.Time) Action {
	return Action{
		Type:        ActionActivateSubscription,
		ID:          id,
		NextBilling: now.Add(30 * 24 * time.Hour).Format("2006-01-02"),
	}
}

// UnsubscribeEmail flags the email source as unsubscribed.
func UnsubscribeEmail(id string) Action {
	return Action{Type: ActionUnsubscribeEmail, ID: id}
}

// ResubscribeEmail clears the unsubscribed flag.
func ResubscribeEmail(id string) Action {
	return Action{Type: ActionResubscribeEmail, ID: id}
}

// ArchiveEmail removes the email source from the tree entirely.
func ArchiveEmail(id string) Action {
	return Action{Type: ActionArchiveEmail, ID: id}
}

// ImportSubscriptions builds new subscription entities from an external
// list. Name dedup against the existing tree happens in the reducer.
func ImportSubscriptions(imports []domain.ImportedSubscription, now time.Time) Action {
	nextBilling := now.Add(30 * 24 * time.Hour).Format("2006-01-02")

	subs := make([]domain.Subscription, 0, len(imports))
	for _, imp := range imports {
		category := imp.Category
		if category == "" {
			category = "Other"
		}
		logo := imp.Logo
		if logo == "" {
			logo = "📊"
		}
		subs = append(subs, domain.Subscription{
			ID:          uuid.New().String(),
			Name:        imp.Name,
			Amount:      imp.Amount,
			Status:      domain.StatusActive,
			LastUsed:    "Today",
			Category:    category,
			Logo:        logo,
			NextBilling: nextBilling,
		})
	}
	return Action{Type: ActionImportSubscriptions, Subscriptions: subs}
}

// SetPWAInstallable replaces the installable flag.
func SetPWAInstallable(installable bool) Action {
	return Action{Type: ActionSetPWAInstallable, Flag: installable}
}

// SetPWAInstalled replaces the installed flag and clears the prompt.
func SetPWAInstalled(installed bool) Action {
	return Action{Type: ActionSetPWAInstalled, Flag: installed}
}

// AddSavings accumulates realized savings on the user profile.
func AddSavings(amount float64) Action {
	return Action{Type: ActionAddSavings, Amount: amount}
}

// SetSavingsGoal replaces the savings goal.
func SetSavingsGoal(goal float64) Action {
	return Action{Type: ActionSetSavingsGoal, Amount: goal}
}
