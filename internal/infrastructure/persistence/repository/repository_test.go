package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelup-fitness/levelup-core/internal/domain/daily"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/idgen"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/kv"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type recorder struct {
	migrations []string
	fallbacks  []string
}

func newTestDeps(t *testing.T) (Deps, *kv.MemoryStore, *recorder) {
	t.Helper()
	store := kv.NewMemoryStore()
	rec := &recorder{}
	return Deps{
		Store: store,
		Clock: shared.NewFixedClock(testNow),
		IDs:   idgen.NewSequence("id"),
		Hooks: kv.Hooks{
			OnMigrate: func(key string, from, to int) {
				rec.migrations = append(rec.migrations, key)
			},
			OnFallback: func(key, reason string) {
				rec.fallbacks = append(rec.fallbacks, key+":"+reason)
			},
		},
		DefaultTimeZone: "Europe/Berlin",
	}, store, rec
}

func storedEnvelope(t *testing.T, store *kv.MemoryStore, key string) map[string]json.RawMessage {
	t.Helper()
	raw, ok, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)
	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	return env
}

// ══════════════════════════════════════════════════════════════════════════════
// USER
// ══════════════════════════════════════════════════════════════════════════════

func TestUserRepository_DefaultOnFirstUse(t *testing.T) {
	deps, store, rec := newTestDeps(t)
	repo := NewUserRepository(deps)

	u, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id-1", u.Profile.ID)
	assert.Equal(t, user.DefaultUsername, u.Profile.Username)
	assert.Equal(t, "Europe/Berlin", u.Settings.TimeZone)
	assert.Equal(t, user.StatusNone, u.Clan.Status)
	assert.Empty(t, rec.fallbacks)

	env := storedEnvelope(t, store, UserKey)
	assert.JSONEq(t, "3", string(env["version"]))
}

func TestUserRepository_MigratesLegacyV1Record(t *testing.T) {
	deps, store, rec := newTestDeps(t)
	legacy := `{"version":1,"updatedAt":"2023-12-01T00:00:00Z","data":{
		"profile":{"username":"Sam","avatarUrl":"https://example.com/a.png","createdAt":"2023-11-01T00:00:00Z"},
		"stats":{"level":3,"currentXP":500,"nextLevelXP":3600,"totalXP":4100,"fitCoins":200,"currentStreak":2,"highestStreak":4},
		"settings":{"notificationsEnabled":true}
	}}`
	require.NoError(t, store.Set(context.Background(), UserKey, legacy))

	u, err := NewUserRepository(deps).Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Sam", u.Profile.Username)
	assert.Equal(t, "id-1", u.Profile.ID)
	assert.Equal(t, 3, u.Stats.Level)
	assert.Equal(t, 4100, u.Stats.TotalXP)
	assert.True(t, u.Settings.NotificationsEnabled)
	assert.Equal(t, user.DefaultSessionsPerDay, u.Settings.SessionsPerDay)
	assert.Equal(t, 0, u.Settings.DayStartHour)
	assert.Equal(t, "Europe/Berlin", u.Settings.TimeZone)
	assert.Equal(t, user.StatusNone, u.Clan.Status)
	assert.Nil(t, u.Clan.ClanID)
	assert.Nil(t, u.Clan.InvitedClanID)
	assert.Equal(t, []string{UserKey}, rec.migrations)

	env := storedEnvelope(t, store, UserKey)
	assert.JSONEq(t, "3", string(env["version"]))
}

func TestUserRepository_MigratesBareLegacyPayload(t *testing.T) {
	deps, store, _ := newTestDeps(t)
	bare := `{"profile":{"username":"Old"},"stats":{"level":1,"currentXP":0,"totalXP":0,"fitCoins":0,"currentStreak":0,"highestStreak":0},"settings":{}}`
	require.NoError(t, store.Set(context.Background(), UserKey, bare))

	u, err := NewUserRepository(deps).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Old", u.Profile.Username)
	assert.Equal(t, "Europe/Berlin", u.Settings.TimeZone)
	assert.Equal(t, user.StatusNone, u.Clan.Status)
}

func TestUserRepository_V2KeepsSettingsAndRepairsMembership(t *testing.T) {
	deps, store, _ := newTestDeps(t)
	v2 := `{"version":2,"updatedAt":"2024-01-01T00:00:00Z","data":{
		"profile":{"id":"u-7","username":"Kim","avatarUrl":"a","createdAt":"2024-01-01T00:00:00Z"},
		"stats":{"level":1,"currentXP":0,"nextLevelXP":1200,"totalXP":0,"fitCoins":0,"currentStreak":0,"highestStreak":0},
		"settings":{"notificationsEnabled":false,"sessionsPerDay":6,"dayStartHour":5,"timeZone":"Asia/Tokyo"}
	}}`
	require.NoError(t, store.Set(context.Background(), UserKey, v2))

	u, err := NewUserRepository(deps).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-7", u.Profile.ID)
	assert.Equal(t, 6, u.Settings.SessionsPerDay)
	assert.Equal(t, 5, u.Settings.DayStartHour)
	assert.Equal(t, "Asia/Tokyo", u.Settings.TimeZone)
	assert.True(t, u.Clan.Valid())
}

func TestUserMigrations_AreTotal(t *testing.T) {
	migrations := UserMigrations(idgen.NewSequence("x"), "UTC")

	for _, input := range []string{`{}`, `{"settings":null,"profile":null}`, `{"settings":"oops","profile":{"id":""}}`} {
		out, err := migrations[1](json.RawMessage(input))
		require.NoError(t, err, input)
		out, err = migrations[2](out)
		require.NoError(t, err, input)

		var doc map[string]map[string]any
		require.NoError(t, json.Unmarshal(out, &doc), input)
		assert.Equal(t, "UTC", doc["settings"]["timeZone"], input)
		assert.EqualValues(t, 10, doc["settings"]["sessionsPerDay"], input)
		assert.NotEmpty(t, doc["profile"]["id"], input)
		assert.Equal(t, "none", doc["clan"]["status"], input)
	}

	_, err := migrations[1](json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

func TestUserRepository_CorruptRecordFallsBack(t *testing.T) {
	deps, store, rec := newTestDeps(t)
	require.NoError(t, store.Set(context.Background(), UserKey, "{not json"))

	u, err := NewUserRepository(deps).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.DefaultUsername, u.Profile.Username)
	assert.Equal(t, []string{UserKey + ":" + kv.ReasonCorrupt}, rec.fallbacks)
}

func TestUserRepository_InvalidStatsFallBack(t *testing.T) {
	deps, store, rec := newTestDeps(t)
	bad := `{"version":3,"updatedAt":"2024-01-01T00:00:00Z","data":{
		"profile":{"id":"u","username":"X","avatarUrl":"a","createdAt":"2024-01-01T00:00:00Z"},
		"stats":{"level":1,"currentXP":99999,"totalXP":0},
		"settings":{},"clan":{"status":"none"}
	}}`
	require.NoError(t, store.Set(context.Background(), UserKey, bad))

	u, err := NewUserRepository(deps).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, u.Stats.CurrentXP)
	assert.Equal(t, []string{UserKey + ":" + kv.ReasonInvalid}, rec.fallbacks)
}

func TestUserRepository_Update(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	repo := NewUserRepository(deps)

	updated, err := repo.Update(context.Background(), func(u *user.User) error {
		return u.Rename("Alex", "")
	})
	require.NoError(t, err)
	assert.Equal(t, "Alex", updated.Profile.Username)

	again, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alex", again.Profile.Username)
	assert.Equal(t, updated.Profile.ID, again.Profile.ID)
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY
// ══════════════════════════════════════════════════════════════════════════════

func TestDailyRepository_Today(t *testing.T) {
	deps, store, _ := newTestDeps(t)
	repo := NewDailyRepository(deps)
	ctx := context.Background()

	p := daily.New("2024-03-01")
	p.SessionsDone = 2
	require.NoError(t, repo.Set(ctx, p))

	today, err := repo.Today(ctx, 0, time.UTC, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, today.SessionsDone)

	// 03:00 with a 06:00 day start is still the previous day.
	early := time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC)
	today, err = repo.Today(ctx, 6, time.UTC, early)
	require.NoError(t, err)
	assert.Equal(t, 2, today.SessionsDone)

	tomorrow, err := repo.Today(ctx, 0, time.UTC, testNow.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", tomorrow.Date)
	assert.Zero(t, tomorrow.SessionsDone)
	assert.NotNil(t, tomorrow.Schedule)

	env := storedEnvelope(t, store, DailyKey)
	assert.Contains(t, string(env["data"]), `"2024-03-01"`)
}

func TestDailyRepository_TodayIsReadOnly(t *testing.T) {
	deps, store, rec := newTestDeps(t)
	ctx := context.Background()

	today, err := NewDailyRepository(deps).Today(ctx, 0, time.UTC, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", today.Date)

	_, ok, err := store.Get(ctx, DailyKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rec.fallbacks)
}

func TestDailyRepository_BackfillsSchedule(t *testing.T) {
	deps, store, _ := newTestDeps(t)
	raw := `{"version":1,"updatedAt":"2024-03-01T00:00:00Z","data":{"date":"2024-03-01","isCompleted":false,"sessionsDone":1,"sessions":[]}}`
	require.NoError(t, store.Set(context.Background(), DailyKey, raw))

	p, err := NewDailyRepository(deps).Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, p.Schedule)
	assert.Empty(t, p.Schedule)
	assert.Equal(t, 1, p.SessionsDone)
}

// ══════════════════════════════════════════════════════════════════════════════
// ANALYTICS & CLANS
// ══════════════════════════════════════════════════════════════════════════════

func TestAnalyticsRepository_MigratesV1(t *testing.T) {
	deps, store, rec := newTestDeps(t)
	v1 := `{"version":1,"updatedAt":"2024-01-01T00:00:00Z","data":{
		"history":[{"date":"2024-02-02","sessionsDone":3,"xpEarned":330},{"date":"2024-02-01","sessionsDone":1,"xpEarned":110}],
		"totalReps":{"push":40}
	}}`
	require.NoError(t, store.Set(context.Background(), HistoryKey, v1))

	data, err := NewAnalyticsRepository(deps).Get(context.Background())
	require.NoError(t, err)
	require.Len(t, data.History, 2)
	assert.Equal(t, "2024-02-01", data.History[0].Date)
	assert.Equal(t, 40, data.TotalReps.Push)
	assert.Zero(t, data.TotalReps.Legs)
	assert.NotNil(t, data.WeightEntries)
	assert.Empty(t, data.WeightEntries)
	assert.Equal(t, []string{HistoryKey}, rec.migrations)
}

func TestAnalyticsRepository_FutureVersionFallsBack(t *testing.T) {
	deps, store, rec := newTestDeps(t)
	require.NoError(t, store.Set(context.Background(), HistoryKey, `{"version":9,"updatedAt":"2024-01-01T00:00:00Z","data":{}}`))

	data, err := NewAnalyticsRepository(deps).Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data.History)
	assert.Equal(t, []string{HistoryKey + ":" + kv.ReasonFutureVersion}, rec.fallbacks)
}

func TestClanRepository_DefaultAndNormalize(t *testing.T) {
	deps, store, _ := newTestDeps(t)
	repo := NewClanRepository(deps)

	s, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, s.Clans)

	raw := `{"version":1,"updatedAt":"2024-01-01T00:00:00Z","data":{"clans":[{"id":"c1","name":"Iron","tag":"IRN","leaderId":"u1","members":null,"invites":null,"stats":{"totalXP":0,"totalSessions":0}}]}}`
	require.NoError(t, store.Set(context.Background(), ClansKey, raw))

	s, err = repo.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, s.Clans, 1)
	assert.NotNil(t, s.Clans[0].Members)
	assert.NotNil(t, s.Clans[0].Invites)
}

func TestNewSet(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	set := NewSet(deps)
	assert.Equal(t, UserKey, set.Users.Key())
	assert.Equal(t, DailyKey, set.Daily.Key())
	assert.Equal(t, HistoryKey, set.History.Key())
	assert.Equal(t, ClansKey, set.Clans.Key())
}
