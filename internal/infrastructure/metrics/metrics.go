// Package metrics exposes Prometheus instruments for the tracker runtime.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/kv"
)

const (
	Namespace = "levelup"
	Subsystem = "core"
)

// Notification delivery outcomes.
const (
	ResultDelivered = "delivered"
	ResultFailed    = "failed"
	ResultMuted     = "muted"
)

type Manager struct {
	// counters
	CounterSessions         prometheus.Counter
	CounterXP               prometheus.Counter
	CounterLevelUps         prometheus.Counter
	CounterRollovers        prometheus.Counter
	CounterWeightLogs       prometheus.Counter
	CounterNotifications    *prometheus.CounterVec
	CounterMigrations       *prometheus.CounterVec
	CounterStorageFallbacks *prometheus.CounterVec
	CounterRetries          *prometheus.CounterVec

	// gauges
	GaugeLevel       prometheus.Gauge
	GaugeStreak      prometheus.Gauge
	GaugeBreakerOpen *prometheus.GaugeVec

	// histograms
	HistJobDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager(Namespace, "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager(Namespace, "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterSessions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_logged",
			Help:      "The total number of logged workout sessions",
		}),
		CounterXP: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "xp_awarded",
			Help:      "The total XP awarded for sessions",
		}),
		CounterLevelUps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "level_ups",
			Help:      "The total number of levels gained",
		}),
		CounterRollovers: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "day_rollovers",
			Help:      "The total number of day rollovers",
		}),
		CounterWeightLogs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "weight_logs",
			Help:      "The total number of weight entries logged",
		}),
		CounterNotifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications",
			Help:      "Session reminders by delivery result",
		}, []string{"result"}),
		CounterMigrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "record_migrations",
			Help:      "Stored records migrated to the current schema",
		}, []string{"key"}),
		CounterStorageFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "record_fallbacks",
			Help:      "Stored records replaced by defaults",
		}, []string{"key", "reason"}),
		CounterRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "retries",
			Help:      "Retried calls to external dependencies",
		}, []string{"component"}),

		GaugeLevel: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "user_level",
			Help:      "Current level of the user",
		}),
		GaugeStreak: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "user_streak",
			Help:      "Current daily streak of the user",
		}),
		GaugeBreakerOpen: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "breaker_open",
			Help:      "1 while the notification channel breaker rejects calls",
		}, []string{"channel"}),

		HistJobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduler job runs in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}, []string{"job"}),
	}
}

// StorageHooks reports repository recovery paths to the counters.
func (m *Manager) StorageHooks() kv.Hooks {
	return kv.Hooks{
		OnMigrate: func(key string, _, _ int) {
			m.CounterMigrations.WithLabelValues(key).Inc()
		},
		OnFallback: func(key, reason string) {
			m.CounterStorageFallbacks.WithLabelValues(key, reason).Inc()
		},
	}
}

// RetryHook counts retries of one component. It fits retry.WithOnRetry.
func (m *Manager) RetryHook(component string) func(attempt int, err error, delay time.Duration) {
	c := m.CounterRetries.WithLabelValues(component)
	return func(int, error, time.Duration) { c.Inc() }
}

// BreakerObserver tracks whether a channel breaker is open.
func (m *Manager) BreakerObserver(channel string) func(open bool) {
	g := m.GaugeBreakerOpen.WithLabelValues(channel)
	return func(open bool) {
		if open {
			g.Set(1)
			return
		}
		g.Set(0)
	}
}

// SetupRegistry returns a registry with build, Go runtime and process
// collectors.
func SetupRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
