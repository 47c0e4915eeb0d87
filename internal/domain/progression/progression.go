// Package progression contains the pure XP and leveling rules of LevelUp.
//
// Every function here is deterministic: no clock, no storage. Callers feed
// the current stats in and persist what comes out.
package progression

import (
	"fmt"
)

const (
	// SessionBaseXP is the flat XP of one completed session.
	SessionBaseXP = 100

	// SessionXPPerLevel is added to the session reward for every level held.
	SessionXPPerLevel = 10

	// LevelUpCoins is the fitCoins reward for each level gained.
	LevelUpCoins = 100
)

// Stats is the progression snapshot stored on the user record.
type Stats struct {
	Level         int `json:"level"`
	CurrentXP     int `json:"currentXP"`
	NextLevelXP   int `json:"nextLevelXP"`
	TotalXP       int `json:"totalXP"`
	FitCoins      int `json:"fitCoins"`
	CurrentStreak int `json:"currentStreak"`
	HighestStreak int `json:"highestStreak"`
}

// NewStats returns the stats of a brand new user.
func NewStats() Stats {
	return Stats{
		Level:       1,
		NextLevelXP: NextLevelXP(1),
	}
}

// SessionXP returns the XP awarded for one session at the given level.
func SessionXP(level int) int {
	return SessionBaseXP + level*SessionXPPerLevel
}

// NextLevelXP returns floor(level * 1000 * 1.2), computed in integers.
func NextLevelXP(level int) int {
	return level * 1200
}

// Validate checks the stats invariants.
func (s Stats) Validate() error {
	switch {
	case s.Level < 1:
		return fmt.Errorf("level %d below 1", s.Level)
	case s.CurrentXP < 0 || s.CurrentXP >= NextLevelXP(s.Level):
		return fmt.Errorf("currentXP %d outside [0, %d)", s.CurrentXP, NextLevelXP(s.Level))
	case s.TotalXP < 0 || s.FitCoins < 0:
		return fmt.Errorf("negative totals")
	case s.CurrentStreak < 0 || s.HighestStreak < s.CurrentStreak:
		return fmt.Errorf("streak %d/%d inconsistent", s.CurrentStreak, s.HighestStreak)
	}
	return nil
}

// ProgressPercent returns how far the user is into the current level, 0-100.
func (s Stats) ProgressPercent() int {
	need := NextLevelXP(s.Level)
	if need <= 0 {
		return 0
	}
	return s.CurrentXP * 100 / need
}

// ══════════════════════════════════════════════════════════════════════════════
// LEVELING
// ══════════════════════════════════════════════════════════════════════════════

// LevelUpResult is the outcome of one XP award.
type LevelUpResult struct {
	Stats        Stats
	LevelsGained int
}

// LeveledUp returns true if at least one level was gained.
func (r LevelUpResult) LeveledUp() bool {
	return r.LevelsGained > 0
}

// CoinsAwarded returns the fitCoins granted for the levels gained.
func (r LevelUpResult) CoinsAwarded() int {
	return r.LevelsGained * LevelUpCoins
}

// ApplyXP adds earned to the stats and resolves every level-up it causes.
// Negative awards are ignored. A level below 1 is repaired to 1 first.
func ApplyXP(stats Stats, earned int) LevelUpResult {
	if earned < 0 {
		earned = 0
	}
	if stats.Level < 1 {
		stats.Level = 1
	}

	stats.CurrentXP += earned
	stats.TotalXP += earned

	gained := 0
	for need := NextLevelXP(stats.Level); stats.CurrentXP >= need; need = NextLevelXP(stats.Level) {
		stats.CurrentXP -= need
		stats.Level++
		stats.FitCoins += LevelUpCoins
		gained++
	}
	stats.NextLevelXP = NextLevelXP(stats.Level)

	return LevelUpResult{Stats: stats, LevelsGained: gained}
}

// ══════════════════════════════════════════════════════════════════════════════
// STREAKS
// ══════════════════════════════════════════════════════════════════════════════

// ExtendStreak increments the current streak and raises the highest streak.
func (s Stats) ExtendStreak() Stats {
	s.CurrentStreak++
	if s.CurrentStreak > s.HighestStreak {
		s.HighestStreak = s.CurrentStreak
	}
	return s
}

// ResetStreak sets the current streak to zero. The highest streak is kept.
func (s Stats) ResetStreak() Stats {
	s.CurrentStreak = 0
	return s
}

// AddCoins credits fitCoins. Non-positive amounts are ignored.
func (s Stats) AddCoins(amount int) Stats {
	if amount > 0 {
		s.FitCoins += amount
	}
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// QUOTES
// ══════════════════════════════════════════════════════════════════════════════

// Quote returns the motivational line shown for a level.
func Quote(level int) string {
	switch {
	case level < 5:
		return "Every rep is a step towards greatness."
	case level < 10:
		return "Discipline is doing what needs to be done, even if you don't want to."
	case level < 20:
		return "You are forging a new identity in the fires of effort."
	default:
		return "You have become a legend. Inspire others."
	}
}
