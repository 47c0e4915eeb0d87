package eventhandler

import (
	"log/slog"

	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// OnStreakChangedHandler records streak milestones and breaks in the log.
type OnStreakChangedHandler struct {
	logger     *slog.Logger
	milestones map[int]bool
}

// DefaultStreakMilestones are the streak lengths worth a log line.
var DefaultStreakMilestones = []int{3, 7, 14, 30, 60, 100, 365}

// NewOnStreakChangedHandler creates the handler.
func NewOnStreakChangedHandler(log *slog.Logger, milestones []int) *OnStreakChangedHandler {
	if log == nil {
		log = slog.Default()
	}
	if milestones == nil {
		milestones = DefaultStreakMilestones
	}
	set := make(map[int]bool, len(milestones))
	for _, m := range milestones {
		set[m] = true
	}
	return &OnStreakChangedHandler{
		logger:     log.With(logger.Component("on_streak_changed")),
		milestones: set,
	}
}

// Handle implements Handler.
func (h *OnStreakChangedHandler) Handle(event shared.Event) error {
	e, ok := event.(shared.StreakEvent)
	if !ok {
		return nil
	}

	attrs := []any{
		slog.Int("previous_streak", e.PreviousStreak),
		slog.Int("current_streak", e.CurrentStreak),
		slog.Int("highest_streak", e.HighestStreak),
	}
	switch {
	case e.Broken():
		h.logger.Info("streak broken", attrs...)
	case h.IsMilestone(e.CurrentStreak):
		h.logger.Info("streak milestone", attrs...)
	default:
		h.logger.Debug("streak extended", attrs...)
	}
	return nil
}

// IsMilestone reports whether streak is a milestone length.
func (h *OnStreakChangedHandler) IsMilestone(streak int) bool {
	return h.milestones[streak]
}

// EventTypes implements Handler.
func (h *OnStreakChangedHandler) EventTypes() []shared.EventType {
	return []shared.EventType{shared.EventDailyStreakUpdated, shared.EventDailyStreakBroken}
}
