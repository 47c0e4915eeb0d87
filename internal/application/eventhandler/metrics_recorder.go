package eventhandler

import (
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/metrics"
)

// MetricsRecorder mirrors domain events into Prometheus instruments.
type MetricsRecorder struct {
	m *metrics.Manager
}

// NewMetricsRecorder creates a recorder for m.
func NewMetricsRecorder(m *metrics.Manager) *MetricsRecorder {
	return &MetricsRecorder{m: m}
}

// Handle implements Handler.
func (r *MetricsRecorder) Handle(event shared.Event) error {
	switch e := event.(type) {
	case shared.SessionLoggedEvent:
		r.m.CounterSessions.Inc()
		r.m.CounterXP.Add(float64(e.XPEarned))
	case shared.LevelUpEvent:
		r.m.CounterLevelUps.Add(float64(e.LevelsGained))
		r.m.GaugeLevel.Set(float64(e.NewLevel))
	case shared.StreakEvent:
		r.m.GaugeStreak.Set(float64(e.CurrentStreak))
	case shared.DayRolledOverEvent:
		r.m.CounterRollovers.Inc()
	case shared.WeightLoggedEvent:
		r.m.CounterWeightLogs.Inc()
	case shared.SessionDueEvent:
		result := metrics.ResultFailed
		switch {
		case e.Muted:
			result = metrics.ResultMuted
		case e.Delivered:
			result = metrics.ResultDelivered
		}
		r.m.CounterNotifications.WithLabelValues(result).Inc()
	}
	return nil
}

// EventTypes implements Handler.
func (r *MetricsRecorder) EventTypes() []shared.EventType {
	return nil
}
