package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/levelup-fitness/levelup-core/internal/domain/analytics"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// LogWeightCommand records a body-weight measurement.
type LogWeightCommand struct {
	// Date is the day key of the measurement. Blank means today.
	Date     string
	WeightKg float64
	Note     string
}

// LogWeightResult contains the result of logging a weight.
type LogWeightResult struct {
	Entry analytics.WeightEntry

	// Created is false when an entry for the date was replaced.
	Created      bool
	CoinsAwarded int
}

// LogWeightHandler handles the LogWeightCommand.
type LogWeightHandler struct {
	deps Deps
}

// NewLogWeightHandler creates a new LogWeightHandler.
func NewLogWeightHandler(deps Deps) *LogWeightHandler {
	return &LogWeightHandler{deps: deps.withDefaults()}
}

// Handle upserts the entry. The first entry logged for today earns coins.
func (h *LogWeightHandler) Handle(ctx context.Context, cmd LogWeightCommand) (*LogWeightResult, error) {
	st, err := h.deps.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("log_weight: %w", err)
	}

	date := strings.TrimSpace(cmd.Date)
	if date == "" {
		date = st.day.Date
	}

	hist, err := h.deps.History.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("log_weight: %w", err)
	}
	created, err := hist.UpsertWeight(date, cmd.WeightKg, cmd.Note)
	if err != nil {
		return nil, fmt.Errorf("log_weight: %w", err)
	}
	if err := h.deps.History.Set(ctx, hist); err != nil {
		return nil, fmt.Errorf("log_weight: %w", err)
	}

	res := &LogWeightResult{Created: created}
	for _, e := range hist.WeightEntries {
		if e.Date == date {
			res.Entry = e
			break
		}
	}

	u := st.user
	if created && date == st.day.Date {
		res.CoinsAwarded = h.deps.Rules.WeightLogCoins
		u.Stats = u.Stats.AddCoins(res.CoinsAwarded)
		if err := h.deps.Users.Set(ctx, u); err != nil {
			return nil, fmt.Errorf("log_weight: %w", err)
		}
	}

	h.deps.Logger.InfoContext(ctx, "weight logged",
		logger.DayKey(date),
		slog.Float64("weight_kg", res.Entry.WeightKg),
		slog.Bool("created", created),
	)
	h.deps.publish(ctx, shared.WeightLoggedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventWeightLogged, u.Profile.ID, st.now),
		Date:         date,
		WeightKg:     res.Entry.WeightKg,
		CoinsAwarded: res.CoinsAwarded,
	})
	return res, nil
}
