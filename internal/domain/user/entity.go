// Package user contains the User aggregate: profile, progression stats,
// settings and clan membership.
package user

import (
	"strings"
	"time"

	"github.com/levelup-fitness/levelup-core/internal/domain/daily"
	"github.com/levelup-fitness/levelup-core/internal/domain/progression"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/pkg/timeutil"
)

// Defaults for a new user.
const (
	DefaultUsername       = "Rookie"
	DefaultAvatarURL      = "https://picsum.photos/200"
	DefaultSessionsPerDay = 10
	DefaultDayStartHour   = 0
)

// Sex is the optional biological sex used for body estimates.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// IsValid returns true for a known value or empty.
func (s Sex) IsValid() bool {
	switch s {
	case "", SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

// Profile is the identity and health data of the user.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	HeightCm  *float64  `json:"heightCm,omitempty"`
	Sex       Sex       `json:"sex,omitempty"`
	BirthDate string    `json:"birthDate,omitempty"`
}

// Settings are the user's scheduling preferences.
type Settings struct {
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	SessionsPerDay       int    `json:"sessionsPerDay"`
	DayStartHour         int    `json:"dayStartHour"`
	TimeZone             string `json:"timeZone"`
}

// Location resolves the configured zone, UTC when unknown.
func (s Settings) Location() *time.Location {
	return timeutil.LoadLocation(s.TimeZone)
}

// TodayKey returns the user's logical day at now.
func (s Settings) TodayKey(now time.Time) string {
	return timeutil.TodayKey(s.DayStartHour, s.Location(), now)
}

// Normalize clamps every field into its allowed range.
func (s Settings) Normalize() Settings {
	s.SessionsPerDay = daily.ClampSessionsPerDay(s.SessionsPerDay)
	s.DayStartHour = timeutil.ClampDayStartHour(s.DayStartHour)
	s.TimeZone = strings.TrimSpace(s.TimeZone)
	if s.TimeZone == "" {
		s.TimeZone = "UTC"
	}
	return s
}

// User is the aggregate stored under the user key.
type User struct {
	Profile  Profile           `json:"profile"`
	Stats    progression.Stats `json:"stats"`
	Settings Settings          `json:"settings"`
	Clan     Membership        `json:"clan"`
}

// New creates the default user.
func New(id string, now time.Time, timeZone string) User {
	if strings.TrimSpace(timeZone) == "" {
		timeZone = "UTC"
	}
	return User{
		Profile: Profile{
			ID:        id,
			Username:  DefaultUsername,
			AvatarURL: DefaultAvatarURL,
			CreatedAt: now,
		},
		Stats: progression.NewStats(),
		Settings: Settings{
			SessionsPerDay: DefaultSessionsPerDay,
			DayStartHour:   DefaultDayStartHour,
			TimeZone:       timeZone,
		},
		Clan: NoMembership(),
	}
}

// Validate checks the aggregate invariants.
func (u User) Validate() error {
	if strings.TrimSpace(u.Profile.ID) == "" {
		return shared.NewDomainError("user", "Validate", shared.ErrEmptyValue, "missing profile id")
	}
	if err := u.Stats.Validate(); err != nil {
		return shared.WrapError("user", "Validate", shared.ErrInvalidState, "stats", err)
	}
	if !u.Clan.Valid() {
		return shared.ErrInvalidMembership
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE UPDATES
// ══════════════════════════════════════════════════════════════════════════════

// Rename changes the display name and avatar. A blank avatar keeps the
// current one.
func (u *User) Rename(username, avatarURL string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.ErrInvalidUsername
	}
	u.Profile.Username = username
	if avatar := strings.TrimSpace(avatarURL); avatar != "" {
		u.Profile.AvatarURL = avatar
	}
	return nil
}

// HealthUpdate carries optional health fields. Nil leaves a field unchanged.
type HealthUpdate struct {
	HeightCm  *float64
	Sex       *Sex
	BirthDate *string
}

// UpdateHealth validates and applies a health update as a whole.
func (u *User) UpdateHealth(upd HealthUpdate) error {
	if upd.HeightCm != nil && *upd.HeightCm <= 0 {
		return shared.ErrInvalidHeight
	}
	if upd.Sex != nil && !upd.Sex.IsValid() {
		return shared.ErrInvalidSex
	}
	if upd.BirthDate != nil && *upd.BirthDate != "" && !timeutil.IsValidDayKey(*upd.BirthDate) {
		return shared.ErrInvalidBirthDate
	}

	if upd.HeightCm != nil {
		h := *upd.HeightCm
		u.Profile.HeightCm = &h
	}
	if upd.Sex != nil {
		u.Profile.Sex = *upd.Sex
	}
	if upd.BirthDate != nil {
		u.Profile.BirthDate = *upd.BirthDate
	}
	return nil
}
