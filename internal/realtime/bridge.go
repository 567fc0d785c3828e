package realtime

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lbricard/stockdesk-backend/pkg/config"
	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
	"github.com/lbricard/stockdesk-backend/pkg/logger"
)

// Refresher re-pulls the authoritative reservation view. Implemented by the
// listing service.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Subscriber opens a pub/sub subscription, implemented by pkg/redis.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (*goredis.PubSub, error)
}

// Bridge consumes reservation created/updated events and triggers a
// refresh. A burst of events while a refresh is pending coalesces into one
// re-pull: the next successful fetch is authoritative anyway, so refreshing
// once per burst loses nothing.
type Bridge struct {
	sub       Subscriber
	refresher Refresher
	channels  []string
	logg      *logger.Logger
}

// NewBridge wires the bridge to the configured channels.
func NewBridge(sub Subscriber, refresher Refresher, cfg config.RealtimeConfig, logg *logger.Logger) (*Bridge, error) {
	if sub == nil {
		return nil, apperr.New(apperr.CodeInternal, "subscriber is required")
	}
	if refresher == nil {
		return nil, apperr.New(apperr.CodeInternal, "refresher is required")
	}
	if logg == nil {
		return nil, apperr.New(apperr.CodeInternal, "logger is required")
	}
	return &Bridge{
		sub:       sub,
		refresher: refresher,
		channels:  []string{cfg.CreatedChannel, cfg.UpdatedChannel},
		logg:      logg,
	}, nil
}

// Run blocks consuming events until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	pubsub, err := b.sub.Subscribe(ctx, b.channels...)
	if err != nil {
		return apperr.Wrap(apperr.CodeDependency, err, "failed to subscribe to reservation events")
	}
	defer pubsub.Close()

	b.logg.Info(ctx, "realtime bridge subscribed")
	return b.pump(ctx, pubsub.Channel())
}

// pump is the consumer loop, split out so tests can feed it directly.
func (b *Bridge) pump(ctx context.Context, events <-chan *goredis.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-events:
			if !ok {
				return nil
			}
			drained := drain(events)
			logCtx := b.logg.WithFields(ctx, map[string]any{
				"channel":   msg.Channel,
				"coalesced": drained,
			})
			if err := b.refresher.Refresh(ctx); err != nil {
				// Refresh failures are not fatal: the next event
				// triggers another attempt.
				b.logg.Warn(logCtx, "refresh after reservation event failed")
				continue
			}
			b.logg.Info(logCtx, "reservation view refreshed")
		}
	}
}

// drain empties queued events so a burst collapses into one refresh.
func drain(events <-chan *goredis.Message) int {
	count := 0
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return count
			}
			count++
		default:
			return count
		}
	}
}
