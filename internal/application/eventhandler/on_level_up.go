package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/levelup-fitness/levelup-core/internal/domain/notification"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON LEVEL UP HANDLER
// Celebrates a level-up through the notifier.
// ═══════════════════════════════════════════════════════════════════════════

// OnLevelUpHandler sends the level-up message.
type OnLevelUpHandler struct {
	notifier notification.Notifier
	logger   *slog.Logger
	timeout  time.Duration
}

// NewOnLevelUpHandler creates the handler. A nil notifier makes it log only.
func NewOnLevelUpHandler(notifier notification.Notifier, log *slog.Logger) *OnLevelUpHandler {
	if log == nil {
		log = slog.Default()
	}
	return &OnLevelUpHandler{
		notifier: notifier,
		logger:   log.With(logger.Component("on_level_up")),
		timeout:  15 * time.Second,
	}
}

// Handle implements Handler.
func (h *OnLevelUpHandler) Handle(event shared.Event) error {
	e, ok := event.(shared.LevelUpEvent)
	if !ok {
		h.logger.Warn("received non-LevelUpEvent", slog.String("event_type", string(event.EventType())))
		return nil
	}

	h.logger.Info("level up",
		slog.Int("old_level", e.OldLevel),
		logger.UserLevel(e.NewLevel),
		slog.Int("coins_awarded", e.CoinsAwarded),
	)
	if h.notifier == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	if err := notification.Send(ctx, h.notifier, notification.LevelUp(e.NewLevel)); err != nil {
		// Celebrations are best effort.
		h.logger.Warn("level-up notification failed", logger.Err(err))
	}
	return nil
}

// EventTypes implements Handler.
func (h *OnLevelUpHandler) EventTypes() []shared.EventType {
	return []shared.EventType{shared.EventLevelUp}
}
