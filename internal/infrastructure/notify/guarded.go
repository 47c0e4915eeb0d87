package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/levelup-fitness/levelup-core/internal/domain/notification"
	"github.com/levelup-fitness/levelup-core/pkg/circuitbreaker"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// Guarded wraps a remote notifier with a circuit breaker. While the breaker
// is open, reminders to that channel fail fast with circuitbreaker.ErrOpen.
type Guarded struct {
	next    notification.Notifier
	breaker *circuitbreaker.Breaker
	logger  *slog.Logger
}

// NewGuarded wraps next. Three consecutive failures open the breaker for
// two minutes; a cancelled caller is not a channel failure. observe, when
// set, is told whether the breaker is open after every transition. Extra
// options override the defaults.
func NewGuarded(name string, next notification.Notifier, log *slog.Logger, observe func(open bool), opts ...circuitbreaker.Option) *Guarded {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("notifier"), slog.String("channel", name))
	base := []circuitbreaker.Option{
		circuitbreaker.WithFailureThreshold(3),
		circuitbreaker.WithCoolDown(2 * time.Minute),
		circuitbreaker.WithIsFailure(func(err error) bool {
			return !errors.Is(err, context.Canceled)
		}),
		circuitbreaker.WithOnStateChange(func(_ string, from, to circuitbreaker.State) {
			log.Warn("notification channel breaker changed state",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			if observe != nil {
				observe(to == circuitbreaker.StateOpen)
			}
		}),
	}
	return &Guarded{
		next:    next,
		breaker: circuitbreaker.New(name, append(base, opts...)...),
		logger:  log,
	}
}

// Notify implements notification.Notifier.
func (g *Guarded) Notify(ctx context.Context, title, body string) error {
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.next.Notify(ctx, title, body)
	})
	if circuitbreaker.IsRejection(err) {
		g.logger.DebugContext(ctx, "reminder skipped, channel unavailable", slog.String("title", title))
	}
	return err
}

// State returns the breaker state.
func (g *Guarded) State() circuitbreaker.State {
	return g.breaker.State()
}
