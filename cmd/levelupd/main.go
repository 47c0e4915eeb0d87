// Package main is the entry point of levelupd, the headless LevelUp Fitness
// runner.
//
// The daemon owns the periodic work of the tracker:
// - the due-session poll that fires one reminder per slot
// - the day-boundary check that archives yesterday and resets the schedule
//
// It runs the day check on start and again on SIGUSR1, which the host sends
// when the application comes back to the foreground.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"

	"github.com/levelup-fitness/levelup-core/config"
	"github.com/levelup-fitness/levelup-core/internal/application"
	"github.com/levelup-fitness/levelup-core/internal/application/command"
	"github.com/levelup-fitness/levelup-core/internal/application/eventhandler"
	"github.com/levelup-fitness/levelup-core/internal/domain/notification"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/idgen"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/messaging"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/metrics"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/notify"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/kv"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/postgres"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/redis"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/repository"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/scheduler"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/scheduler/jobs"
	httpapi "github.com/levelup-fitness/levelup-core/internal/interface/http"
	"github.com/levelup-fitness/levelup-core/pkg/circuitbreaker"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
	"github.com/levelup-fitness/levelup-core/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) (err error) {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION & LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, logCloser := setupLogger(cfg)
	defer func() { err = multierr.Append(err, logCloser.Close()) }()

	log.Info("starting levelupd",
		slog.String("env", string(cfg.App.Environment)),
		slog.String("version", cfg.App.Version),
		slog.String("storage", cfg.Storage.Driver),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	reg := metrics.SetupRegistry()
	m := metrics.NewManager(metrics.Namespace, metrics.Subsystem, reg)
	clock := shared.SystemClock{}

	storage, err := openStore(ctx, cfg, m, log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() { err = multierr.Append(err, storage.close()) }()

	repos := repository.NewSet(repository.Deps{
		Store:           storage.store,
		Clock:           clock,
		IDs:             idgen.UUID{},
		Logger:          log,
		Hooks:           m.StorageHooks(),
		DefaultTimeZone: cfg.Game.DefaultTimeZone,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EVENT BUS & HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewInMemoryEventBus(messaging.Config{Logger: log})
	defer func() {
		log.Info("closing event bus...")
		err = multierr.Append(err, bus.Close())
	}()

	notifier := buildNotifier(cfg, clock, m, log)
	if err := eventhandler.Register(bus,
		eventhandler.NewMetricsRecorder(m),
		eventhandler.NewOnLevelUpHandler(notifier, log),
		eventhandler.NewOnStreakChangedHandler(log, nil),
	); err != nil {
		return fmt.Errorf("failed to register event handlers: %w", err)
	}

	svc := application.NewService(application.Config{
		Users:     repos.Users,
		Daily:     repos.Daily,
		History:   repos.History,
		Clans:     repos.Clans,
		Clock:     clock,
		IDs:       idgen.UUID{},
		Publisher: bus,
		Logger:    log,
		Notifier:  notifier,
		Rules:     &command.Rules{WeightLogCoins: cfg.Game.WeightLogCoins},
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 4. STARTUP DAY CHECK
	// ─────────────────────────────────────────────────────────────────────────
	if _, err := svc.CheckDay(ctx); err != nil {
		return fmt.Errorf("initial day check: %w", err)
	}
	if dash, err := svc.Dashboard(ctx); err == nil {
		m.GaugeLevel.Set(float64(dash.Stats.Level))
		m.GaugeStreak.Set(float64(dash.Stats.CurrentStreak))
		log.Info("day loaded",
			logger.DayKey(dash.DayKey),
			slog.Int("sessions_done", dash.SessionsDone),
			logger.UserLevel(dash.Stats.Level),
		)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{Logger: log})
	sched.OnJobComplete(func(r scheduler.JobResult) {
		m.HistJobDuration.WithLabelValues(r.JobName).Observe(r.Duration.Seconds())
	})
	if cfg.Scheduler.Enabled {
		if err := sched.Register(
			jobs.NewNotifyDueJob(svc, cfg.Scheduler.JobTimeout.Duration, log),
			scheduler.Every(cfg.Scheduler.PollInterval.Duration),
		); err != nil {
			return err
		}
		if err := sched.Register(
			jobs.NewDayCheckJob(svc, log),
			scheduler.Every(cfg.Scheduler.DayCheckInterval.Duration),
		); err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			err = multierr.Append(err, sched.Stop())
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. OPERATIONS ENDPOINT
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Observability.MetricsEnabled {
		health := httpapi.NewHealthChecker(cfg.App.Version)
		health.AddCheck("storage", storage.ping)
		if cfg.Scheduler.Enabled {
			health.AddCheck("scheduler", func(context.Context) error {
				return sched.Healthy(jobs.DayCheckName)
			})
		}

		srvCfg := httpapi.DefaultConfig()
		srvCfg.Addr = cfg.Observability.MetricsAddr
		srv := httpapi.NewServer(srvCfg, httpapi.Dependencies{
			Metrics: metrics.Handler(reg),
			Health:  health,
			Reader:  svc,
			Logger:  log,
		})
		go func() {
			if err := <-srv.StartAsync(); err != nil {
				log.Error("http server failed", logger.Err(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout.Duration)
			defer cancel()
			err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. SIGNALS & GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("levelupd is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sigCh:
			if sig == syscall.SIGUSR1 {
				rolled, err := svc.CheckDay(ctx)
				if err != nil {
					log.Error("resume day check failed", logger.Err(err))
				} else {
					log.Info("resumed", slog.Bool("day_rolled", rolled))
				}
				continue
			}
			log.Info("received shutdown signal", slog.String("signal", sig.String()))
			return nil
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger configures structured logging and makes it the default.
func setupLogger(cfg *config.Config) (*slog.Logger, io.Closer) {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	opts.Format = cfg.Observability.LogFormat
	opts.FilePath = cfg.Observability.LogFile
	opts.FileMaxSizeMB = cfg.Observability.LogFileMaxSizeMB
	opts.FileMaxBackups = cfg.Observability.LogFileMaxBackups

	log, closer := logger.New(opts)
	slog.SetDefault(log)
	return log, closer
}

// healthCheckKey is read by the readiness check of local stores.
const healthCheckKey = "levelup_health_check"

// openedStore is the configured DataStore with its lifecycle hooks.
type openedStore struct {
	store kv.DataStore
	close func() error
	ping  httpapi.CheckFunc
}

// openStore opens the configured DataStore, wrapped in the read-through
// cache when one is configured.
func openStore(ctx context.Context, cfg *config.Config, m *metrics.Manager, log *slog.Logger) (*openedStore, error) {
	var (
		store   kv.DataStore
		closeFn = func() error { return nil }
		ping    httpapi.CheckFunc
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory storage, nothing survives a restart")
		store = kv.NewMemoryStore()

	case config.DriverFile:
		fs, err := kv.NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		store = fs

	case config.DriverRedis:
		rc := redis.DefaultConfig()
		rc.Host = cfg.Redis.Host
		rc.Port = cfg.Redis.Port
		rc.Password = cfg.Redis.Password
		rc.DB = cfg.Redis.DB
		rc.KeyPrefix = cfg.Redis.KeyPrefix
		rc.PoolSize = cfg.Redis.PoolSize
		rc.MaxRetries = cfg.Redis.MaxRetries
		rc.DialTimeout = cfg.Redis.DialTimeout.Duration
		rc.ReadTimeout = cfg.Redis.ReadTimeout.Duration
		rc.WriteTimeout = cfg.Redis.WriteTimeout.Duration

		rs, err := redis.NewStore(rc, retry.WithOnRetry(m.RetryHook("redis")))
		if err != nil {
			return nil, err
		}
		log.Info("redis connection established", slog.String("addr", rc.Addr()))
		store, closeFn, ping = rs, rs.Close, httpapi.PingCheck(rs)

	case config.DriverPostgres:
		pc := postgres.DefaultConfig()
		pc.URL = cfg.Database.URL
		pc.Table = cfg.Database.Table
		pc.MaxConns = cfg.Database.MaxConns
		pc.MaxConnLifetime = cfg.Database.ConnMaxLifetime.Duration
		pc.ConnectTimeout = cfg.Database.ConnectTimeout.Duration

		conn, err := postgres.NewConnection(ctx, pc)
		if err != nil {
			return nil, err
		}
		closeFn = func() error {
			log.Info("closing database connection...")
			conn.Close()
			return nil
		}
		if cfg.Database.Migrate {
			if err := postgres.NewMigrator(conn, pc.Table).Migrate(ctx); err != nil {
				return nil, multierr.Append(fmt.Errorf("failed to run migrations: %w", err), closeFn())
			}
			log.Info("database schema is up to date")
		}
		ps, err := postgres.NewStore(conn, pc.Table, retry.WithOnRetry(m.RetryHook("postgres")))
		if err != nil {
			return nil, multierr.Append(err, closeFn())
		}
		store, ping = ps, httpapi.PingCheck(conn)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if ping == nil {
		raw := store
		ping = func(ctx context.Context) error {
			_, _, err := raw.Get(ctx, healthCheckKey)
			return err
		}
	}
	if cfg.Storage.CacheSizeMB > 0 {
		store = kv.NewCachedStore(store, cfg.Storage.CacheSizeMB, int(cfg.Storage.CacheTTL.Seconds()), log)
	}
	return &openedStore{store: store, close: closeFn, ping: ping}, nil
}

// buildNotifier returns nil when reminders are disabled, which mutes them.
func buildNotifier(cfg *config.Config, clock shared.Clock, m *metrics.Manager, log *slog.Logger) notification.Notifier {
	if !cfg.Game.Notifications {
		return nil
	}
	targets := notify.Multi{notify.NewLogNotifier(log)}
	if cfg.Telegram.Enabled() {
		tg := notify.NewTelegramNotifier(notify.TelegramConfig{
			Token:         cfg.Telegram.Token,
			ChatID:        cfg.Telegram.ChatID,
			BaseURL:       cfg.Telegram.BaseURL,
			RetryAttempts: 3,
			Silent:        cfg.Telegram.Silent,
			OnRetry:       m.RetryHook("telegram"),
		}, log)
		targets = append(targets, notify.NewGuarded("telegram", tg, log,
			m.BreakerObserver("telegram"),
			circuitbreaker.WithClock(clock.Now),
		))
	}
	return targets
}
