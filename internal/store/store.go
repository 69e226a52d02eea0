package store

import (
	"reflect"
	"sync"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/port"

	"go.uber.org/zap"
)

// Versions counts how many times each state section has changed. The
// analytics engine keys its memo cache on this triple, so a version bumps
// only when the section's content actually changed.
type Versions struct {
	Subscriptions uint64
	Emails        uint64
	User          uint64
}

// Store is the single source of truth. All mutations funnel through
// Dispatch, which serializes transitions with a mutex; readers get
// copy-safe snapshots.
type Store struct {
	mu        sync.RWMutex
	state     domain.State
	versions  Versions
	persister port.StatePersister
	logger    *zap.Logger

	// Saves are serialized and stamped so a slow write of an older
	// snapshot can never land after a newer one.
	persistMu  sync.Mutex
	dispatched uint64 // guarded by mu
	persisted  uint64 // guarded by persistMu
}

// New creates a store seeded with the initial state. persister may be nil.
func New(initial domain.State, persister port.StatePersister, logger *zap.Logger) *Store {
	return &Store{
		state:     initial,
		persister: persister,
		logger:    logger,
	}
}

// Dispatch applies one action and returns the resulting state snapshot.
// It never fails: unknown actions and missing ids are no-ops.
func (s *Store) Dispatch(action Action) domain.State {
	s.mu.Lock()

	prev := s.state
	next := Reduce(prev, action)

	if !reflect.DeepEqual(prev.Subscriptions, next.Subscriptions) {
		s.versions.Subscriptions++
	}
	if !reflect.DeepEqual(prev.Emails, next.Emails) {
		s.versions.Emails++
	}
	if prev.User != next.User {
		s.versions.User++
	}

	s.state = next
	s.dispatched++
	seq := s.dispatched
	snapshot := cloneState(next)
	s.mu.Unlock()

	s.logger.Debug("action dispatched",
		zap.String("action", string(action.Type)),
		zap.String("id", action.ID),
	)

	if s.persister != nil {
		go func() {
			s.persistMu.Lock()
			defer s.persistMu.Unlock()

			if seq <= s.persisted {
				// A newer snapshot already reached disk.
				return
			}
			if err := s.persister.SaveState(snapshot); err != nil {
				s.logger.Debug("state persistence failed", zap.Error(err))
				return
			}
			s.persisted = seq
		}()
	}

	return snapshot
}

// Snapshot returns the current state and section versions. The returned
// state is safe for the caller to hold; its slices are copies.
func (s *Store) Snapshot() (domain.State, Versions) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneState(s.state), s.versions
}

// FindSubscription returns the subscription with the given id.
func (s *Store) FindSubscription(id string) (domain.Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.state.Subscriptions {
		if sub.ID == id {
			return sub, true
		}
	}
	return domain.Subscription{}, false
}

// FindEmail returns the email source with the given id.
func (s *Store) FindEmail(id string) (domain.EmailSource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, email := range s.state.Emails {
		if email.ID == id {
			return email, true
		}
	}
	return domain.EmailSource{}, false
}

func cloneState(state domain.State) domain.State {
	state.Subscriptions = append([]domain.Subscription(nil), state.Subscriptions...)
	state.Emails = append([]domain.EmailSource(nil), state.Emails...)
	return state
}
