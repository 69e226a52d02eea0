package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/store"

	"go.uber.org/zap"
)

func TestStore_DispatchBumpsVersions(t *testing.T) {
	st := store.New(testState(), nil, zap.NewNop())

	_, v0 := st.Snapshot()

	st.Dispatch(store.CancelSubscription("sub-1"))
	_, v1 := st.Snapshot()
	if v1.Subscriptions != v0.Subscriptions+1 {
		t.Errorf("expected subscriptions version bump, got %d -> %d", v0.Subscriptions, v1.Subscriptions)
	}
	if v1.Emails != v0.Emails || v1.User != v0.User {
		t.Error("unrelated section versions changed")
	}

	st.Dispatch(store.UnsubscribeEmail("email-1"))
	_, v2 := st.Snapshot()
	if v2.Emails != v1.Emails+1 {
		t.Error("expected emails version bump")
	}

	st.Dispatch(store.AddSavings(10))
	_, v3 := st.Snapshot()
	if v3.User != v2.User+1 {
		t.Error("expected user version bump")
	}
}

func TestStore_NoOpDispatchKeepsVersions(t *testing.T) {
	st := store.New(testState(), nil, zap.NewNop())
	_, before := st.Snapshot()

	st.Dispatch(store.CancelSubscription("sub-404"))
	st.Dispatch(store.Action{Type: "NOT_A_REAL_ACTION"})

	_, after := st.Snapshot()
	if before != after {
		t.Errorf("no-op dispatches changed versions: %+v -> %+v", before, after)
	}
}

func TestStore_SnapshotIsIsolated(t *testing.T) {
	st := store.New(testState(), nil, zap.NewNop())

	snap, _ := st.Snapshot()
	snap.Subscriptions[0].Name = "mutated"

	current, _ := st.Snapshot()
	if current.Subscriptions[0].Name != "Netflix" {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestStore_FindSubscription(t *testing.T) {
	st := store.New(testState(), nil, zap.NewNop())

	sub, ok := st.FindSubscription("sub-2")
	if !ok || sub.Name != "Adobe" {
		t.Errorf("expected Adobe, got %+v ok=%v", sub, ok)
	}

	if _, ok := st.FindSubscription("sub-404"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestStore_FindEmail(t *testing.T) {
	st := store.New(testState(), nil, zap.NewNop())

	email, ok := st.FindEmail("email-2")
	if !ok || email.Sender != "Groupon" {
		t.Errorf("expected Groupon, got %+v ok=%v", email, ok)
	}

	if _, ok := st.FindEmail("email-404"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	st := store.New(testState(), nil, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Dispatch(store.AddSavings(1))
		}()
	}
	wg.Wait()

	state, versions := st.Snapshot()
	if state.User.TotalSaved != 150 {
		t.Errorf("expected totalSaved 150 after 50 increments, got %.2f", state.User.TotalSaved)
	}
	if versions.User != 50 {
		t.Errorf("expected user version 50, got %d", versions.User)
	}
}

func TestStore_PersistsAfterDispatch(t *testing.T) {
	persister := &recordingPersister{saved: make(chan domain.State, 1)}
	st := store.New(testState(), persister, zap.NewNop())

	st.Dispatch(store.CancelSubscription("sub-1"))

	saved := <-persister.saved
	if saved.Subscriptions[0].Status != domain.StatusCancelled {
		t.Error("persisted state does not reflect the dispatched action")
	}
}

func TestStore_KeepsNewestSnapshotOnDisk(t *testing.T) {
	persister := &laggyPersister{slowBelow: 102}
	st := store.New(testState(), persister, zap.NewNop())

	// The first snapshot's save is slow; the second must still win.
	st.Dispatch(store.AddSavings(1))
	st.Dispatch(store.AddSavings(1))

	deadline := time.Now().Add(2 * time.Second)
	for persister.lastSaved() != 102 {
		if time.Now().After(deadline) {
			t.Fatalf("newest snapshot never persisted, last saved totalSaved=%v", persister.lastSaved())
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Leave the slow writer enough time to land after the fast one.
	time.Sleep(150 * time.Millisecond)
	if got := persister.lastSaved(); got != 102 {
		t.Errorf("stale snapshot overwrote the newest one: totalSaved=%v", got)
	}
}

// laggyPersister delays saves of snapshots below a TotalSaved threshold, so
// an older snapshot's write finishes after a newer one's.
type laggyPersister struct {
	mu        sync.Mutex
	slowBelow float64
	last      float64
}

func (p *laggyPersister) SaveState(state domain.State) error {
	if state.User.TotalSaved < p.slowBelow {
		time.Sleep(50 * time.Millisecond)
	}
	p.mu.Lock()
	p.last = state.User.TotalSaved
	p.mu.Unlock()
	return nil
}

func (p *laggyPersister) LoadState() (domain.State, bool, error) {
	return domain.State{}, false, nil
}

func (p *laggyPersister) lastSaved() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

type recordingPersister struct {
	saved chan domain.State
}

func (p *recordingPersister) SaveState(state domain.State) error {
	select {
	case p.saved <- state:
	default:
	}
	return nil
}

func (p *recordingPersister) LoadState() (domain.State, bool, error) {
	return domain.State{}, false, nil
}
