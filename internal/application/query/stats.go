package query

import (
	"context"
	"fmt"
	"time"

	"github.com/levelup-fitness/levelup-core/internal/domain/analytics"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS QUERY
// Lifetime history, rep totals and the body-weight log with derived BMI.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultHistoryDays is how many archived days the stats view shows.
const DefaultHistoryDays = 7

// StatsQuery selects how much history to return.
type StatsQuery struct {
	// HistoryDays limits the history to the most recent days. Zero means the
	// default; negative means everything.
	HistoryDays int
}

// Validate normalizes the query.
func (q *StatsQuery) Validate() error {
	if q.HistoryDays == 0 {
		q.HistoryDays = DefaultHistoryDays
	}
	return nil
}

// BodyDTO is the health summary.
type BodyDTO struct {
	HeightCm     *float64               `json:"height_cm,omitempty"`
	LatestWeight *analytics.WeightEntry `json:"latest_weight,omitempty"`
	BMI          *float64               `json:"bmi,omitempty"`
	BMICategory  string                 `json:"bmi_category,omitempty"`
	Age          *int                   `json:"age,omitempty"`
}

// StatsResult contains the stats view.
type StatsResult struct {
	History       []analytics.HistoryEntry `json:"history"`
	TotalSessions int                      `json:"total_sessions"`
	TotalXP       int                      `json:"total_xp"`
	ActiveDays    int                      `json:"active_days"`

	TotalReps    analytics.TotalReps     `json:"total_reps"`
	TotalRepsSum int                     `json:"total_reps_sum"`
	Weights      []analytics.WeightEntry `json:"weights"`
	Body         BodyDTO                 `json:"body"`

	CurrentStreak int `json:"current_streak"`
	HighestStreak int `json:"highest_streak"`

	GeneratedAt time.Time `json:"generated_at"`
}

// StatsHandler handles the stats query.
type StatsHandler struct {
	deps Deps
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(deps Deps) *StatsHandler {
	return &StatsHandler{deps: deps.withDefaults()}
}

// Handle builds the stats view.
func (h *StatsHandler) Handle(ctx context.Context, q StatsQuery) (*StatsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	now := h.deps.Clock.Now()

	u, err := h.deps.Users.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	hist, err := h.deps.History.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	result := &StatsResult{
		History:       hist.Recent(q.HistoryDays),
		ActiveDays:    len(hist.History),
		TotalReps:     hist.TotalReps,
		TotalRepsSum:  hist.TotalReps.Total(),
		Weights:       append([]analytics.WeightEntry{}, hist.WeightEntries...),
		CurrentStreak: u.Stats.CurrentStreak,
		HighestStreak: u.Stats.HighestStreak,
		GeneratedAt:   now,
	}
	for _, e := range hist.History {
		result.TotalSessions += e.SessionsDone
		result.TotalXP += e.XPEarned
	}

	result.Body = buildBody(u, hist, now)
	return result, nil
}

func buildBody(u user.User, hist analytics.Data, now time.Time) BodyDTO {
	body := BodyDTO{HeightCm: u.Profile.HeightCm}

	if latest, ok := hist.LatestWeight(); ok {
		body.LatestWeight = &latest
		if u.Profile.HeightCm != nil {
			if bmi, ok := user.BMI(*u.Profile.HeightCm, latest.WeightKg); ok {
				body.BMI = &bmi
				body.BMICategory = user.BMICategory(bmi)
			}
		}
	}
	if age, ok := user.Age(u.Profile.BirthDate, now); ok {
		body.Age = &age
	}
	return body
}
