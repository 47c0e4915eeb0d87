package progression

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionXP(t *testing.T) {
	assert.Equal(t, 110, SessionXP(1))
	assert.Equal(t, 200, SessionXP(10))
}

func TestNextLevelXP(t *testing.T) {
	assert.Equal(t, 1200, NextLevelXP(1))
	assert.Equal(t, 2400, NextLevelXP(2))
	assert.Equal(t, 12000, NextLevelXP(10))
}

func TestApplyXP_MultiLevelJump(t *testing.T) {
	result := ApplyXP(NewStats(), 3000)

	assert.Equal(t, 2, result.Stats.Level)
	assert.Equal(t, 1800, result.Stats.CurrentXP)
	assert.Equal(t, 2400, result.Stats.NextLevelXP)
	assert.Equal(t, 3000, result.Stats.TotalXP)
	assert.Equal(t, 100, result.Stats.FitCoins)
	assert.Equal(t, 1, result.LevelsGained)
	assert.True(t, result.LeveledUp())
}

func TestApplyXP_SeveralLevelsAtOnce(t *testing.T) {
	// 1200 + 2400 + 3600 = 7200 reaches level 4 exactly.
	result := ApplyXP(NewStats(), 7200)

	assert.Equal(t, 4, result.Stats.Level)
	assert.Equal(t, 0, result.Stats.CurrentXP)
	assert.Equal(t, 3, result.LevelsGained)
	assert.Equal(t, 300, result.CoinsAwarded())
	assert.Equal(t, 300, result.Stats.FitCoins)
}

func TestApplyXP_Invariants(t *testing.T) {
	stats := NewStats()
	for _, award := range []int{0, 1, 110, 1199, 5000, 25000, 120, 99999} {
		before := stats
		result := ApplyXP(stats, award)
		stats = result.Stats

		assert.Equal(t, before.TotalXP+award, stats.TotalXP)
		assert.GreaterOrEqual(t, stats.Level, before.Level)
		assert.GreaterOrEqual(t, stats.CurrentXP, 0)
		assert.Less(t, stats.CurrentXP, NextLevelXP(stats.Level))
		assert.Equal(t, stats.Level-before.Level, result.LevelsGained)
		require.NoError(t, stats.Validate())
	}
}

func TestApplyXP_NoLevelUp(t *testing.T) {
	result := ApplyXP(NewStats(), 110)

	assert.False(t, result.LeveledUp())
	assert.Equal(t, 110, result.Stats.CurrentXP)
	assert.Equal(t, 0, result.Stats.FitCoins)
}

func TestApplyXP_IgnoresNegativeAward(t *testing.T) {
	result := ApplyXP(NewStats(), -50)
	assert.Equal(t, 0, result.Stats.TotalXP)
}

func TestStreaks(t *testing.T) {
	stats := NewStats().ExtendStreak().ExtendStreak()
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Equal(t, 2, stats.HighestStreak)

	stats = stats.ResetStreak().ExtendStreak()
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 2, stats.HighestStreak)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "Every rep is a step towards greatness.", Quote(1))
	assert.Contains(t, Quote(7), "Discipline")
	assert.Contains(t, Quote(15), "forging")
	assert.Contains(t, Quote(20), "legend")
}

func TestDefaultRoutine(t *testing.T) {
	even := DefaultRoutine(2)
	odd := DefaultRoutine(3)

	require.Len(t, even, 5)
	assert.Equal(t, "Glute Bridges", even[4].Name)
	assert.Equal(t, "Supermans", odd[4].Name)
	assert.Equal(t, Duration("60s"), even[3].Reps)
	assert.Equal(t, even[:4], odd[:4])
}

func TestClassifyExercise(t *testing.T) {
	cases := map[string]Bucket{
		"Pushups":       BucketPush,
		"Bench Press":   BucketPush,
		"Supermans":     BucketPull,
		"Bent-over Row": BucketPull,
		"Squats":        BucketLegs,
		"Glute Bridges": BucketLegs,
		"Situps":        BucketCore,
		"Plank":         BucketCore,
		"Jumping Jacks": BucketOther,
	}
	for name, want := range cases {
		assert.Equal(t, want, ClassifyExercise(name), name)
	}
}

func TestReps_JSON(t *testing.T) {
	var items []ExerciseItem
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"1","name":"Pushups","reps":12,"completed":true},{"id":"4","name":"Plank","reps":"45s","completed":false}]`), &items))

	assert.Equal(t, 12, items[0].Reps.Value())
	assert.Equal(t, 45, items[1].Reps.Value())
	assert.Equal(t, "45s", items[1].Reps.String())

	out, err := json.Marshal(items[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"4","name":"Plank","reps":"45s","completed":false}`, string(out))
}

func TestReps_ValueWithoutLeadingNumber(t *testing.T) {
	assert.Equal(t, 0, Duration("max").Value())
	assert.Equal(t, 0, Count(-3).Value())
}
