package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/observability"
	"github.com/cleanslate/cleanslate-api-go/internal/port"
	"github.com/cleanslate/cleanslate-api-go/internal/store"

	"go.uber.org/zap"
)

// DeclutterService exposes the typed operations the API serves. It is the
// only writer of the store: every mutation validates at this boundary, then
// dispatches an action. Reducer dispatch itself never fails, so the service
// pre-checks ids to give callers a useful not-found.
type DeclutterService struct {
	store    *store.Store
	notifier port.Notifier
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewDeclutterService creates the service with all dependencies injected.
// notifier may be nil.
func NewDeclutterService(st *store.Store, notifier port.Notifier, metrics *observability.Metrics, logger *zap.Logger) *DeclutterService {
	return &DeclutterService{
		store:    st,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// State returns a copy-safe snapshot of the full tree.
func (s *DeclutterService) State(ctx context.Context) domain.State {
	_, span := tracer.Start(ctx, "DeclutterService.State")
	defer span.End()

	state, _ := s.store.Snapshot()
	return state
}

// ============================================================
// Subscriptions
// ============================================================

// SubscriptionQuery narrows and orders the subscription list. Zero-value
// fields fall back to the stored UI filter state.
type SubscriptionQuery struct {
	Search string
	Status string
	SortBy string
}

// ListSubscriptions returns subscriptions filtered by search term and
// status, ordered by the sort key.
func (s *DeclutterService) ListSubscriptions(ctx context.Context, q SubscriptionQuery) []domain.Subscription {
	_, span := tracer.Start(ctx, "DeclutterService.ListSubscriptions")
	defer span.End()

	state, _ := s.store.Snapshot()
	if q.Search == "" {
		q.Search = state.UI.SearchTerm
	}
	if q.Status == "" {
		q.Status = state.UI.FilterStatus
	}
	if q.SortBy == "" {
		q.SortBy = state.UI.SortBy
	}

	search := strings.ToLower(q.Search)
	filtered := make([]domain.Subscription, 0, len(state.Subscriptions))
	for _, sub := range state.Subscriptions {
		if search != "" &&
			!strings.Contains(strings.ToLower(sub.Name), search) &&
			!strings.Contains(strings.ToLower(sub.Category), search) {
			continue
		}
		if q.Status != "" && q.Status != "all" && string(sub.Status) != q.Status {
			continue
		}
		filtered = append(filtered, sub)
	}

	sortSubscriptions(filtered, q.SortBy)
	return filtered
}

// PrioritySubscriptions returns unused and forgotten subscriptions, most
// expensive first — the cancellation shortlist.
func (s *DeclutterService) PrioritySubscriptions(ctx context.Context) []domain.Subscription {
	_, span := tracer.Start(ctx, "DeclutterService.PrioritySubscriptions")
	defer span.End()

	state, _ := s.store.Snapshot()
	priority := unusedSubscriptions(state.Subscriptions)
	sort.SliceStable(priority, func(i, j int) bool {
		return priority[i].Amount > priority[j].Amount
	})
	return priority
}

// CancelSubscription marks the subscription cancelled and notifies.
func (s *DeclutterService) CancelSubscription(ctx context.Context, id string) (domain.Subscription, error) {
	ctx, span := tracer.Start(ctx, "DeclutterService.CancelSubscription")
	defer span.End()

	sub, ok := s.store.FindSubscription(id)
	if !ok {
		return domain.Subscription{}, &domain.ErrNotFound{Resource: "subscription", ID: id}
	}

	s.store.Dispatch(store.CancelSubscription(id))
	s.metrics.IncrAction("cancel_subscription")
	s.notify(ctx, "Subscription cancelled", fmt.Sprintf("%s ($%.2f/month) has been cancelled.", sub.Name, sub.Amount))

	sub.Status = domain.StatusCancelled
	return sub, nil
}

// PauseSubscription marks the subscription paused.
func (s *DeclutterService) PauseSubscription(ctx context.Context, id string) (domain.Subscription, error) {
	_, span := tracer.Start(ctx, "DeclutterService.PauseSubscription")
	defer span.End()

	if _, ok := s.store.FindSubscription(id); !ok {
		return domain.Subscription{}, &domain.ErrNotFound{Resource: "subscription", ID: id}
	}

	s.store.Dispatch(store.PauseSubscription(id))
	s.metrics.IncrAction("pause_subscription")

	sub, _ := s.store.FindSubscription(id)
	return sub, nil
}

// ActivateSubscription reactivates the subscription; the next billing date
// is recomputed as 30 days out.
func (s *DeclutterService) ActivateSubscription(ctx context.Context, id string) (domain.Subscription, error) {
	_, span := tracer.Start(ctx, "DeclutterService.ActivateSubscription")
	defer span.End()

	if _, ok := s.store.FindSubscription(id); !ok {
		return domain.Subscription{}, &domain.ErrNotFound{Resource: "subscription", ID: id}
	}

	s.store.Dispatch(store.ActivateSubscription(id, time.Now()))
	s.metrics.IncrAction("activate_subscription")

	sub, _ := s.store.FindSubscription(id)
	return sub, nil
}

// ImportSubscriptions appends new subscription entities built from an
// external list. Entries whose name already exists (case-insensitive) are
// skipped. Rejects negative amounts and empty names at the boundary.
func (s *DeclutterService) ImportSubscriptions(ctx context.Context, imports []domain.ImportedSubscription) (added, skipped int, err error) {
	_, span := tracer.Start(ctx, "DeclutterService.ImportSubscriptions")
	defer span.End()

	for _, imp := range imports {
		if imp.Name == "" {
			return 0, 0, &domain.ErrValidation{Field: "name", Message: "required"}
		}
		if imp.Amount < 0 {
			return 0, 0, &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
		}
	}

	before, _ := s.store.Snapshot()
	after := s.store.Dispatch(store.ImportSubscriptions(imports, time.Now()))

	added = len(after.Subscriptions) - len(before.Subscriptions)
	skipped = len(imports) - added
	s.metrics.IncrAction("import_subscriptions")
	s.logger.Info("subscriptions imported",
		zap.Int("added", added),
		zap.Int("skipped", skipped),
	)
	return added, skipped, nil
}

// ============================================================
// Email sources
// ============================================================

// ListEmails returns all email sources.
func (s *DeclutterService) ListEmails(ctx context.Context) []domain.EmailSource {
	_, span := tracer.Start(ctx, "DeclutterService.ListEmails")
	defer span.End()

	state, _ := s.store.Snapshot()
	return state.Emails
}

// UnsubscribeEmail flags the source unsubscribed and notifies.
func (s *DeclutterService) UnsubscribeEmail(ctx context.Context, id string) (domain.EmailSource, error) {
	ctx, span := tracer.Start(ctx, "DeclutterService.UnsubscribeEmail")
	defer span.End()

	email, ok := s.store.FindEmail(id)
	if !ok {
		return domain.EmailSource{}, &domain.ErrNotFound{Resource: "email source", ID: id}
	}

	s.store.Dispatch(store.UnsubscribeEmail(id))
	s.metrics.IncrAction("unsubscribe_email")
	s.notify(ctx, "Unsubscribed", fmt.Sprintf("You will no longer receive emails from %s.", email.Sender))

	email.Unsubscribed = true
	return email, nil
}

// ResubscribeEmail clears the unsubscribed flag.
func (s *DeclutterService) ResubscribeEmail(ctx context.Context, id string) (domain.EmailSource, error) {
	_, span := tracer.Start(ctx, "DeclutterService.ResubscribeEmail")
	defer span.End()

	if _, ok := s.store.FindEmail(id); !ok {
		return domain.EmailSource{}, &domain.ErrNotFound{Resource: "email source", ID: id}
	}

	s.store.Dispatch(store.ResubscribeEmail(id))
	s.metrics.IncrAction("resubscribe_email")

	email, _ := s.store.FindEmail(id)
	return email, nil
}

// ArchiveEmail removes the source from the tree. This is the only hard
// delete in the model.
func (s *DeclutterService) ArchiveEmail(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "DeclutterService.ArchiveEmail")
	defer span.End()

	if _, ok := s.store.FindEmail(id); !ok {
		return &domain.ErrNotFound{Resource: "email source", ID: id}
	}

	s.store.Dispatch(store.ArchiveEmail(id))
	s.metrics.IncrAction("archive_email")
	return nil
}

// ============================================================
// User, UI, and PWA state
// ============================================================

// User returns the current profile.
func (s *DeclutterService) User(ctx context.Context) domain.UserProfile {
	_, span := tracer.Start(ctx, "DeclutterService.User")
	defer span.End()

	state, _ := s.store.Snapshot()
	return state.User
}

// AddSavings accumulates realized savings on the profile.
func (s *DeclutterService) AddSavings(ctx context.Context, amount float64) (domain.UserProfile, error) {
	_, span := tracer.Start(ctx, "DeclutterService.AddSavings")
	defer span.End()

	if amount < 0 {
		return domain.UserProfile{}, &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
	}

	next := s.store.Dispatch(store.AddSavings(amount))
	s.metrics.IncrAction("add_savings")
	return next.User, nil
}

// SetSavingsGoal replaces the savings goal.
func (s *DeclutterService) SetSavingsGoal(ctx context.Context, goal float64) (domain.UserProfile, error) {
	_, span := tracer.Start(ctx, "DeclutterService.SetSavingsGoal")
	defer span.End()

	if goal <= 0 {
		return domain.UserProfile{}, &domain.ErrValidation{Field: "savingsGoal", Message: "must be positive"}
	}

	next := s.store.Dispatch(store.SetSavingsGoal(goal))
	s.metrics.IncrAction("set_savings_goal")
	return next.User, nil
}

// UpdateUI applies the non-empty fields of the patch as individual filter
// setter actions.
func (s *DeclutterService) UpdateUI(ctx context.Context, patch domain.UIState) domain.UIState {
	_, span := tracer.Start(ctx, "DeclutterService.UpdateUI")
	defer span.End()

	if patch.ActiveTab != "" {
		s.store.Dispatch(store.SetActiveTab(patch.ActiveTab))
	}
	if patch.SearchTerm != "" {
		s.store.Dispatch(store.SetSearchTerm(patch.SearchTerm))
	}
	if patch.FilterStatus != "" {
		s.store.Dispatch(store.SetFilterStatus(patch.FilterStatus))
	}
	if patch.SortBy != "" {
		s.store.Dispatch(store.SetSortBy(patch.SortBy))
	}

	state, _ := s.store.Snapshot()
	return state.UI
}

// SetPWAInstallable replaces the installable flag.
func (s *DeclutterService) SetPWAInstallable(ctx context.Context, installable bool) domain.PWAState {
	_, span := tracer.Start(ctx, "DeclutterService.SetPWAInstallable")
	defer span.End()

	next := s.store.Dispatch(store.SetPWAInstallable(installable))
	return next.PWA
}

// SetPWAInstalled replaces the installed flag and dismisses the prompt.
func (s *DeclutterService) SetPWAInstalled(ctx context.Context, installed bool) domain.PWAState {
	_, span := tracer.Start(ctx, "DeclutterService.SetPWAInstalled")
	defer span.End()

	next := s.store.Dispatch(store.SetPWAInstalled(installed))
	return next.PWA
}

func (s *DeclutterService) notify(ctx context.Context, title, body string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, title, body)
}

func sortSubscriptions(subs []domain.Subscription, sortBy string) {
	sort.SliceStable(subs, func(i, j int) bool {
		switch sortBy {
		case "name":
			return subs[i].Name < subs[j].Name
		case "status":
			return subs[i].Status < subs[j].Status
		case "category":
			return subs[i].Category < subs[j].Category
		default: // amount, most expensive first
			return subs[i].Amount > subs[j].Amount
		}
	})
}
