// Package application wires the command and query handlers behind a single
// entry point. Every call holds one mutex, so the scheduler goroutine and the
// caller never interleave read-modify-write cycles on the stored records.
package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/levelup-fitness/levelup-core/internal/application/command"
	"github.com/levelup-fitness/levelup-core/internal/application/query"
	"github.com/levelup-fitness/levelup-core/internal/domain/analytics"
	"github.com/levelup-fitness/levelup-core/internal/domain/clan"
	"github.com/levelup-fitness/levelup-core/internal/domain/daily"
	"github.com/levelup-fitness/levelup-core/internal/domain/notification"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
)

// Config holds the service dependencies.
type Config struct {
	Users   user.Repository
	Daily   daily.Repository
	History analytics.Repository
	Clans   clan.Repository

	Clock     shared.Clock
	IDs       shared.IDGenerator
	Publisher shared.EventPublisher
	Logger    *slog.Logger

	// Notifier delivers reminders. Nil mutes them.
	Notifier notification.Notifier
	Rules    *command.Rules
}

// Service is the tracker's application facade.
type Service struct {
	mu sync.Mutex

	rollover *command.DayRolloverHandler
	sessions *command.LogSessionHandler
	schedule *command.ScheduleHandler
	settings *command.SettingsHandler
	weights  *command.LogWeightHandler
	reminder *command.NotifyDueHandler
	clans    *command.ClanHandler

	dashboard *query.DashboardHandler
	stats     *query.StatsHandler
	clanView  *query.ClanViewHandler
}

// NewService builds every handler from cfg.
func NewService(cfg Config) *Service {
	cmd := command.Deps{
		Users:     cfg.Users,
		Daily:     cfg.Daily,
		History:   cfg.History,
		Clans:     cfg.Clans,
		Clock:     cfg.Clock,
		IDs:       cfg.IDs,
		Notifier:  cfg.Notifier,
		Publisher: cfg.Publisher,
		Logger:    cfg.Logger,
		Rules:     cfg.Rules,
	}
	q := query.Deps{
		Users:   cfg.Users,
		Daily:   cfg.Daily,
		History: cfg.History,
		Clans:   cfg.Clans,
		Clock:   cfg.Clock,
		Logger:  cfg.Logger,
	}

	return &Service{
		rollover:  command.NewDayRolloverHandler(cmd),
		sessions:  command.NewLogSessionHandler(cmd),
		schedule:  command.NewScheduleHandler(cmd),
		settings:  command.NewSettingsHandler(cmd),
		weights:   command.NewLogWeightHandler(cmd),
		reminder:  command.NewNotifyDueHandler(cmd),
		clans:     command.NewClanHandler(cmd),
		dashboard: query.NewDashboardHandler(q),
		stats:     query.NewStatsHandler(q),
		clanView:  query.NewClanViewHandler(q),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DAY LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// CheckDay rolls the stored day over when the logical day changed.
func (s *Service) CheckDay(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollover.CheckDay(ctx)
}

// NotifyDue fires the reminder of the earliest due slot.
func (s *Service) NotifyDue(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminder.NotifyDue(ctx)
}

// LogSession records a completed session.
func (s *Service) LogSession(ctx context.Context, cmd command.LogSessionCommand) (*command.LogSessionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Handle(ctx, cmd)
}

// StartDay generates today's schedule.
func (s *Service) StartDay(ctx context.Context, cmd command.StartDayCommand) (*command.ScheduleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule.StartDay(ctx, cmd)
}

// RescheduleSlot moves one slot.
func (s *Service) RescheduleSlot(ctx context.Context, cmd command.RescheduleSlotCommand) (*command.ScheduleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule.RescheduleSlot(ctx, cmd)
}

// UpdateSessionsPerDay changes the daily target.
func (s *Service) UpdateSessionsPerDay(ctx context.Context, n int) (*command.ScheduleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule.UpdateSessionsPerDay(ctx, command.UpdateSessionsPerDayCommand{SessionsPerDay: n})
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS & BODY
// ══════════════════════════════════════════════════════════════════════════════

// UpdateDayStartHour changes the hour the logical day begins.
func (s *Service) UpdateDayStartHour(ctx context.Context, hour int) (*command.SettingsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.UpdateDayStartHour(ctx, hour)
}

// UpdateTimeZone changes the user's zone.
func (s *Service) UpdateTimeZone(ctx context.Context, zone string) (*command.SettingsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.UpdateTimeZone(ctx, zone)
}

// SetNotifications stores the notification preference.
func (s *Service) SetNotifications(ctx context.Context, enabled bool) (*command.SettingsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.SetNotifications(ctx, enabled)
}

// UpdateProfile renames the user.
func (s *Service) UpdateProfile(ctx context.Context, cmd command.UpdateProfileCommand) (*command.SettingsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.UpdateProfile(ctx, cmd)
}

// UpdateHealth stores the health profile.
func (s *Service) UpdateHealth(ctx context.Context, cmd command.UpdateHealthCommand) (*command.SettingsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.UpdateHealth(ctx, cmd)
}

// LogWeight records a weight measurement.
func (s *Service) LogWeight(ctx context.Context, cmd command.LogWeightCommand) (*command.LogWeightResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weights.Handle(ctx, cmd)
}

// ══════════════════════════════════════════════════════════════════════════════
// CLANS
// ══════════════════════════════════════════════════════════════════════════════

// CreateClan founds a clan.
func (s *Service) CreateClan(ctx context.Context, cmd command.CreateClanCommand) (*command.ClanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clans.Create(ctx, cmd)
}

// RequestInvite asks to join a clan.
func (s *Service) RequestInvite(ctx context.Context, clanID string) (*command.ClanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clans.RequestInvite(ctx, clanID)
}

// AcceptInvite joins the invited clan.
func (s *Service) AcceptInvite(ctx context.Context) (*command.ClanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clans.AcceptInvite(ctx)
}

// DeclineInvite rejects the pending invite.
func (s *Service) DeclineInvite(ctx context.Context) (*command.ClanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clans.DeclineInvite(ctx)
}

// LeaveClan leaves the current clan.
func (s *Service) LeaveClan(ctx context.Context) (*command.ClanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clans.Leave(ctx)
}

// DisbandClan deletes the led clan.
func (s *Service) DisbandClan(ctx context.Context) (*command.ClanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clans.Disband(ctx)
}

// SendInvite invites a user by name.
func (s *Service) SendInvite(ctx context.Context, username string) (*command.ClanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clans.SendInvite(ctx, username)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// Dashboard returns today's view.
func (s *Service) Dashboard(ctx context.Context) (*query.DashboardResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dashboard.Handle(ctx)
}

// Stats returns the history view.
func (s *Service) Stats(ctx context.Context, q query.StatsQuery) (*query.StatsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Handle(ctx, q)
}

// ClanView returns the clan standing.
func (s *Service) ClanView(ctx context.Context) (*query.ClanViewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clanView.Handle(ctx)
}
