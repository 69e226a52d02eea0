package store

import (
	"strings"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
)

// Reduce is the state transition function. It never mutates the input state:
// changed sections are rebuilt, unchanged ones are shared. Unknown action
// types and actions referencing a missing id return the state unchanged —
// dispatch is total, it does not fail for expected conditions.
func Reduce(state domain.State, action Action) domain.State {
	switch action.Type {
	case ActionSetActiveTab:
		state.UI.ActiveTab = action.Value
		return state

	case ActionSetSearchTerm:
		state.UI.SearchTerm = action.Value
		return state

	case ActionSetFilterStatus:
		state.UI.FilterStatus = action.Value
		return state

	case ActionSetSortBy:
		state.UI.SortBy = action.Value
		return state

	case ActionCancelSubscription:
		state.Subscriptions = mapSubscription(state.Subscriptions, action.ID, func(sub domain.Subscription) domain.Subscription {
			sub.Status = domain.StatusCancelled
			return sub
		})
		return state

	case ActionPauseSubscription:
		state.Subscriptions = mapSubscription(state.Subscriptions, action.ID, func(sub domain.Subscription) domain.Subscription {
			sub.Status = domain.StatusPaused
			sub.NextBilling = domain.NextBillingPaused
			return sub
		})
		return state

	case ActionActivateSubscription:
		state.Subscriptions = mapSubscription(state.Subscriptions, action.ID, func(sub domain.Subscription) domain.Subscription {
			sub.Status = domain.StatusActive
			sub.NextBilling = action.NextBilling
			return sub
		})
		return state

	case ActionUnsubscribeEmail:
		state.Emails = mapEmail(state.Emails, action.ID, func(email domain.EmailSource) domain.EmailSource {
			email.Unsubscribed = true
			return email
		})
		return state

	case ActionResubscribeEmail:
		state.Emails = mapEmail(state.Emails, action.ID, func(email domain.EmailSource) domain.EmailSource {
			email.Unsubscribed = false
			return email
		})
		return state

	case ActionArchiveEmail:
		emails := make([]domain.EmailSource, 0, len(state.Emails))
		for _, email := range state.Emails {
			if email.ID != action.ID {
				emails = append(emails, email)
			}
		}
		state.Emails = emails
		return state

	case ActionImportSubscriptions:
		// At-most-once-per-name: skip imports whose name already exists,
		// case-insensitively.
		existing := make(map[string]bool, len(state.Subscriptions))
		for _, sub := range state.Subscriptions {
			existing[strings.ToLower(sub.Name)] = true
		}

		merged := append([]domain.Subscription(nil), state.Subscriptions...)
		for _, sub := range action.Subscriptions {
			key := strings.ToLower(sub.Name)
			if existing[key] {
				continue
			}
			existing[key] = true
			merged = append(merged, sub)
		}
		state.Subscriptions = merged
		return state

	case ActionSetPWAInstallable:
		state.PWA.IsInstallable = action.Flag
		return state

	case ActionSetPWAInstalled:
		state.PWA.IsInstalled = action.Flag
		state.PWA.ShowInstallPrompt = false
		return state

	case ActionAddSavings:
		state.User.TotalSaved += action.Amount
		return state

	case ActionSetSavingsGoal:
		state.User.SavingsGoal = action.Amount
		return state

	default:
		return state
	}
}

// mapSubscription returns a new slice with the matching subscription
// replaced by fn's result. No match means the slice is rebuilt unchanged.
func mapSubscription(subs []domain.Subscription, id string, fn func(domain.Subscription) domain.Subscription) []domain.Subscription {
	out := make([]domain.Subscription, len(subs))
	for i, sub := range subs {
		if sub.ID == id {
			out[i] = fn(sub)
		} else {
			out[i] = sub
		}
	}
	return out
}

func mapEmail(emails []domain.EmailSource, id string, fn func(domain.EmailSource) domain.EmailSource) []domain.EmailSource {
	out := make([]domain.EmailSource, len(emails))
	for i, email := range emails {
		if email.ID == id {
			out[i] = fn(email)
		} else {
			out[i] = email
		}
	}
	return out
}
