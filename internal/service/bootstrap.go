package service

import (
	"context"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/observability"
	"github.com/cleanslate/cleanslate-api-go/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BootstrapState assembles the startup state tree. Order of preference:
// a persisted snapshot, then the upstream dataset API, then the built-in
// seed. Upstream failures are logged and fall back — startup never fails
// over data loading.
func BootstrapState(
	ctx context.Context,
	persister port.StatePersister,
	subsClient port.SubscriptionsFetcher,
	emailsClient port.EmailsFetcher,
	seed domain.SeedData,
	metrics *observability.Metrics,
	logger *zap.Logger,
) domain.State {
	if persister != nil {
		state, ok, err := persister.LoadState()
		if err != nil {
			logger.Warn("could not restore persisted state", zap.Error(err))
		} else if ok {
			logger.Info("state restored from snapshot",
				zap.Int("subscriptions", len(state.Subscriptions)),
				zap.Int("emails", len(state.Emails)),
			)
			return state
		}
	}

	state := domain.InitialState(seed)
	if subsClient == nil && emailsClient == nil {
		return state
	}

	var (
		subs   []domain.Subscription
		emails []domain.EmailSource
	)

	g, gCtx := errgroup.WithContext(ctx)
	if subsClient != nil {
		g.Go(func() error {
			fetched, err := subsClient.GetSubscriptions(gCtx)
			if err != nil {
				metrics.IncrExternalError("subscriptions")
				return err
			}
			subs = fetched
			return nil
		})
	}
	if emailsClient != nil {
		g.Go(func() error {
			fetched, err := emailsClient.GetEmails(gCtx)
			if err != nil {
				metrics.IncrExternalError("emails")
				return err
			}
			emails = fetched
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn("dataset API unavailable, using seed datasets", zap.Error(err))
		return state
	}

	if len(subs) > 0 {
		state.Subscriptions = subs
	}
	if len(emails) > 0 {
		state.Emails = emails
	}
	logger.Info("datasets loaded from upstream",
		zap.Int("subscriptions", len(state.Subscriptions)),
		zap.Int("emails", len(state.Emails)),
	)
	return state
}
