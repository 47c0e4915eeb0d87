package repository

import (
	"encoding/json"

	"github.com/levelup-fitness/levelup-core/internal/domain/analytics"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/kv"
)

// AnalyticsRepository stores history, rep totals and weights under
// levelup_history.
//
// Schema history:
//
//	v1  history, totalReps
//	v2  weightEntries
type AnalyticsRepository struct {
	*kv.Repository[analytics.Data]
}

var _ analytics.Repository = (*AnalyticsRepository)(nil)

// NewAnalyticsRepository creates the analytics repository.
func NewAnalyticsRepository(deps Deps) *AnalyticsRepository {
	deps = deps.withDefaults()
	return &AnalyticsRepository{kv.NewRepository(kv.Options[analytics.Data]{
		Key:        HistoryKey,
		Version:    HistoryVersion,
		Store:      deps.Store,
		Default:    analytics.New,
		Migrations: AnalyticsMigrations(),
		Normalize:  (*analytics.Data).Normalize,
		Validate:   analytics.Data.Validate,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
		Hooks:      deps.Hooks,
	})}
}

// AnalyticsMigrations returns the analytics migration chain.
func AnalyticsMigrations() kv.Migrations {
	return kv.Migrations{
		1: func(raw json.RawMessage) (json.RawMessage, error) {
			doc, err := parseDocument(raw)
			if err != nil {
				return nil, err
			}
			doc.setDefault("history", []any{})
			doc.setDefault("weightEntries", []any{})

			reps := doc.object("totalReps")
			for _, bucket := range []string{"push", "pull", "core", "legs"} {
				reps.setDefault(bucket, 0)
			}
			return doc.encode()
		},
	}
}
