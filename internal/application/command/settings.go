package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
	"github.com/levelup-fitness/levelup-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS & PROFILE COMMANDS
// Changing the day start hour or the time zone can move "today", so both run
// the day check right after saving.
// ══════════════════════════════════════════════════════════════════════════════

// SettingsResult contains the user after a settings command.
type SettingsResult struct {
	User user.User

	// Rollover is set when the change moved the user into a new day.
	Rollover *RolloverResult
}

// UpdateHealthCommand carries optional health fields. Nil leaves a field
// unchanged; an empty BirthDate clears it.
type UpdateHealthCommand struct {
	HeightCm  *float64
	Sex       *user.Sex
	BirthDate *string
}

// UpdateProfileCommand renames the user.
type UpdateProfileCommand struct {
	Username  string
	AvatarURL string
}

// SettingsHandler handles settings and profile commands.
type SettingsHandler struct {
	deps Deps
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(deps Deps) *SettingsHandler {
	return &SettingsHandler{deps: deps.withDefaults()}
}

// UpdateDayStartHour clamps hour into [0, 23], saves it and rolls the day
// over if today moved.
func (h *SettingsHandler) UpdateDayStartHour(ctx context.Context, hour int) (*SettingsResult, error) {
	return h.updateBoundary(ctx, "update_day_start_hour", func(s *user.Settings) error {
		s.DayStartHour = timeutil.ClampDayStartHour(hour)
		return nil
	})
}

// UpdateTimeZone saves an IANA zone. Blank means UTC.
func (h *SettingsHandler) UpdateTimeZone(ctx context.Context, zone string) (*SettingsResult, error) {
	return h.updateBoundary(ctx, "update_time_zone", func(s *user.Settings) error {
		zone = strings.TrimSpace(zone)
		if zone == "" {
			zone = "UTC"
		}
		if !timeutil.IsValidTimeZone(zone) {
			return shared.ErrInvalidTimeZone
		}
		s.TimeZone = zone
		return nil
	})
}

func (h *SettingsHandler) updateBoundary(ctx context.Context, op string, fn func(*user.Settings) error) (*SettingsResult, error) {
	u, err := h.deps.Users.Update(ctx, func(u *user.User) error {
		return fn(&u.Settings)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	h.deps.Logger.InfoContext(ctx, "settings updated",
		logger.Operation(op),
		slog.Int("day_start_hour", u.Settings.DayStartHour),
		slog.String("time_zone", u.Settings.TimeZone),
	)

	st, err := h.deps.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &SettingsResult{User: st.user, Rollover: st.rollover}, nil
}

// SetNotifications stores the notification preference.
func (h *SettingsHandler) SetNotifications(ctx context.Context, enabled bool) (*SettingsResult, error) {
	u, err := h.deps.Users.Update(ctx, func(u *user.User) error {
		u.Settings.NotificationsEnabled = enabled
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set_notifications: %w", err)
	}
	return &SettingsResult{User: u}, nil
}

// UpdateProfile changes the display name and avatar.
func (h *SettingsHandler) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (*SettingsResult, error) {
	u, err := h.deps.Users.Update(ctx, func(u *user.User) error {
		return u.Rename(cmd.Username, cmd.AvatarURL)
	})
	if err != nil {
		return nil, fmt.Errorf("update_profile: %w", err)
	}
	return &SettingsResult{User: u}, nil
}

// UpdateHealth validates and stores the health profile as a whole.
func (h *SettingsHandler) UpdateHealth(ctx context.Context, cmd UpdateHealthCommand) (*SettingsResult, error) {
	u, err := h.deps.Users.Update(ctx, func(u *user.User) error {
		return u.UpdateHealth(user.HealthUpdate{
			HeightCm:  cmd.HeightCm,
			Sex:       cmd.Sex,
			BirthDate: cmd.BirthDate,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("update_health: %w", err)
	}
	return &SettingsResult{User: u}, nil
}
