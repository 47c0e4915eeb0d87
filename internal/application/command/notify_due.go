package command

import (
	"context"
	"fmt"

	"github.com/levelup-fitness/levelup-core/internal/domain/daily"
	"github.com/levelup-fitness/levelup-core/internal/domain/notification"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// NotifyDueResult describes one fired reminder.
type NotifyDueResult struct {
	SessionID int

	// Delivered is false when delivery failed or no notifier is configured.
	Delivered bool
	Muted     bool
}

// NotifyDueHandler fires the reminder for the earliest due slot.
type NotifyDueHandler struct {
	deps Deps
}

// NewNotifyDueHandler creates a new NotifyDueHandler.
func NewNotifyDueHandler(deps Deps) *NotifyDueHandler {
	return &NotifyDueHandler{deps: deps.withDefaults()}
}

// Handle polls today's schedule. At most one slot fires per call, and the
// slot is marked and saved even when delivery fails, so it never fires twice.
// It returns nil when nothing is due.
func (h *NotifyDueHandler) Handle(ctx context.Context) (*NotifyDueResult, error) {
	st, err := h.deps.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("notify_due: %w", err)
	}

	slot, ok := daily.PollDue(st.day.Schedule, st.day.SessionsDone, st.now)
	if !ok {
		return nil, nil
	}

	res := &NotifyDueResult{SessionID: slot.SessionID}
	if h.deps.Notifier == nil {
		res.Muted = true
	} else if err := notification.Send(ctx, h.deps.Notifier, notification.SessionDue(slot.SessionID)); err != nil {
		h.deps.Logger.WarnContext(ctx, "reminder not delivered", logger.SessionID(slot.SessionID), logger.Err(err))
	} else {
		res.Delivered = true
	}

	if err := st.day.MarkNotified(slot.SessionID); err != nil {
		return nil, fmt.Errorf("notify_due: %w", err)
	}
	if err := h.deps.Daily.Set(ctx, st.day); err != nil {
		return nil, fmt.Errorf("notify_due: %w", err)
	}

	h.deps.publish(ctx, shared.SessionDueEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventSessionDue, st.user.Profile.ID, st.now),
		SessionID: slot.SessionID,
		Delivered: res.Delivered,
		Muted:     res.Muted,
	})
	return res, nil
}

// NotifyDue reports whether a reminder fired.
func (h *NotifyDueHandler) NotifyDue(ctx context.Context) (bool, error) {
	res, err := h.Handle(ctx)
	return res != nil, err
}
