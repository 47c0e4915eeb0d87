package repository

import (
	"encoding/json"

	"github.com/levelup-fitness/levelup-core/internal/domain/progression"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/kv"
)

// UserRepository stores the user under levelup_user.
//
// Schema history:
//
//	v1  profile, stats, settings.notificationsEnabled
//	v2  settings.sessionsPerDay, settings.dayStartHour, settings.timeZone, profile.id
//	v3  clan membership
type UserRepository struct {
	*kv.Repository[user.User]
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository creates the user repository.
func NewUserRepository(deps Deps) *UserRepository {
	deps = deps.withDefaults()
	return &UserRepository{kv.NewRepository(kv.Options[user.User]{
		Key:     UserKey,
		Version: UserVersion,
		Store:   deps.Store,
		Default: func() user.User {
			return user.New(deps.IDs.NewID(), deps.Clock.Now().UTC(), deps.DefaultTimeZone)
		},
		Migrations: UserMigrations(deps.IDs, deps.DefaultTimeZone),
		Normalize:  NormalizeUser,
		Validate:   user.User.Validate,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
		Hooks:      deps.Hooks,
	})}
}

// UserMigrations returns the user migration chain.
func UserMigrations(ids shared.IDGenerator, defaultTimeZone string) kv.Migrations {
	return kv.Migrations{
		1: func(raw json.RawMessage) (json.RawMessage, error) {
			doc, err := parseDocument(raw)
			if err != nil {
				return nil, err
			}
			settings := doc.object("settings")
			settings.setDefault("sessionsPerDay", user.DefaultSessionsPerDay)
			settings.setDefault("dayStartHour", user.DefaultDayStartHour)
			settings.setDefault("timeZone", defaultTimeZone)
			settings.setDefault("notificationsEnabled", false)

			profile := doc.object("profile")
			profile.setDefault("id", ids.NewID())
			return doc.encode()
		},
		2: func(raw json.RawMessage) (json.RawMessage, error) {
			doc, err := parseDocument(raw)
			if err != nil {
				return nil, err
			}
			doc.setDefault("clan", map[string]any{"status": string(user.StatusNone)})
			return doc.encode()
		},
	}
}

// NormalizeUser repairs fields that a decoded record may lack or carry out
// of range. Stats that still break their invariants are left for Validate.
func NormalizeUser(u *user.User) {
	if u.Profile.Username == "" {
		u.Profile.Username = user.DefaultUsername
	}
	if u.Profile.AvatarURL == "" {
		u.Profile.AvatarURL = user.DefaultAvatarURL
	}
	if !u.Profile.Sex.IsValid() {
		u.Profile.Sex = ""
	}

	u.Settings = u.Settings.Normalize()

	if u.Stats.Level < 1 {
		u.Stats.Level = 1
	}
	u.Stats.NextLevelXP = progression.NextLevelXP(u.Stats.Level)
	if u.Stats.CurrentXP < 0 {
		u.Stats.CurrentXP = 0
	}
	if u.Stats.CurrentStreak < 0 {
		u.Stats.CurrentStreak = 0
	}
	if u.Stats.HighestStreak < u.Stats.CurrentStreak {
		u.Stats.HighestStreak = u.Stats.CurrentStreak
	}

	u.Clan = u.Clan.Repair()
}
