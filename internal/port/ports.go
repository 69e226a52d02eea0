// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
)

// SubscriptionsFetcher retrieves the subscription dataset from the upstream
// dataset API.
type SubscriptionsFetcher interface {
	GetSubscriptions(ctx context.Context) ([]domain.Subscription, error)
}

// EmailsFetcher retrieves the email source dataset from the upstream
// dataset API.
type EmailsFetcher interface {
	GetEmails(ctx context.Context) ([]domain.EmailSource, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// StatePersister mirrors the state tree to durable storage and restores it
// at startup. Save is best-effort; the store never fails a dispatch over a
// persistence error.
type StatePersister interface {
	SaveState(state domain.State) error
	LoadState() (domain.State, bool, error)
}

// CredentialsStore persists the demo login account.
type CredentialsStore interface {
	SaveCredentials(creds domain.Credentials) error
	LoadCredentials() (domain.Credentials, bool, error)
}

// Notifier delivers fire-and-forget user notifications on cancel and
// unsubscribe events. Implementations must never block dispatch.
type Notifier interface {
	Notify(ctx context.Context, title, body string)
}
