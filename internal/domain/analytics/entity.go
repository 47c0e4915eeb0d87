// Package analytics holds the long-lived history of a user: archived days,
// lifetime rep counters and weight entries.
package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/levelup-fitness/levelup-core/internal/domain/progression"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/pkg/timeutil"
)

// HistoryEntry summarises one day that had at least one session.
type HistoryEntry struct {
	Date         string `json:"date"`
	SessionsDone int    `json:"sessionsDone"`
	XPEarned     int    `json:"xpEarned"`
}

// TotalReps are lifetime counters per muscle group.
type TotalReps struct {
	Push int `json:"push"`
	Pull int `json:"pull"`
	Core int `json:"core"`
	Legs int `json:"legs"`
}

// Total returns the sum of all buckets.
func (t TotalReps) Total() int {
	return t.Push + t.Pull + t.Core + t.Legs
}

// WeightEntry is one body-weight measurement, unique by date.
type WeightEntry struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weightKg"`
	Note     string  `json:"note,omitempty"`
}

// Data is the aggregate stored under the history key.
type Data struct {
	History       []HistoryEntry `json:"history"`
	TotalReps     TotalReps      `json:"totalReps"`
	WeightEntries []WeightEntry  `json:"weightEntries"`
}

// New returns empty analytics.
func New() Data {
	return Data{
		History:       []HistoryEntry{},
		WeightEntries: []WeightEntry{},
	}
}

// Normalize replaces nil slices and restores date ordering.
func (d *Data) Normalize() {
	if d.History == nil {
		d.History = []HistoryEntry{}
	}
	if d.WeightEntries == nil {
		d.WeightEntries = []WeightEntry{}
	}
	sort.SliceStable(d.History, func(i, j int) bool { return d.History[i].Date < d.History[j].Date })
	sort.SliceStable(d.WeightEntries, func(i, j int) bool { return d.WeightEntries[i].Date < d.WeightEntries[j].Date })
}

// Validate checks the shape a stored record must have to be trusted.
func (d Data) Validate() error {
	seen := make(map[string]struct{}, len(d.History))
	for _, h := range d.History {
		if _, dup := seen[h.Date]; dup || h.Date == "" {
			return shared.NewDomainError("analytics", "Validate", shared.ErrInvalidState, "history dates must be unique")
		}
		seen[h.Date] = struct{}{}
	}
	for _, w := range d.WeightEntries {
		if w.WeightKg <= 0 {
			return shared.ErrInvalidWeight
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HISTORY
// ══════════════════════════════════════════════════════════════════════════════

// Entry returns the history entry for date.
func (d Data) Entry(date string) (HistoryEntry, bool) {
	if i := d.entryIndex(date); i >= 0 {
		return d.History[i], true
	}
	return HistoryEntry{}, false
}

func (d Data) entryIndex(date string) int {
	for i, h := range d.History {
		if h.Date == date {
			return i
		}
	}
	return -1
}

// RecordSession upserts today's entry after a session: the sessions snapshot
// is replaced and xp accumulates.
func (d *Data) RecordSession(date string, sessionsDone, xp int) {
	if i := d.entryIndex(date); i >= 0 {
		d.History[i].SessionsDone = sessionsDone
		d.History[i].XPEarned += xp
		return
	}
	d.insertEntry(HistoryEntry{Date: date, SessionsDone: sessionsDone, XPEarned: xp})
}

// ArchiveDay preserves a finished day. An existing entry keeps its xpEarned
// and takes the final sessions count; otherwise a zero-xp entry is added.
// Days without sessions are not archived. Returns true if history changed.
func (d *Data) ArchiveDay(date string, sessionsDone int) bool {
	if sessionsDone <= 0 {
		return false
	}
	if i := d.entryIndex(date); i >= 0 {
		if d.History[i].SessionsDone == sessionsDone {
			return false
		}
		d.History[i].SessionsDone = sessionsDone
		return true
	}
	d.insertEntry(HistoryEntry{Date: date, SessionsDone: sessionsDone})
	return true
}

func (d *Data) insertEntry(e HistoryEntry) {
	i := sort.Search(len(d.History), func(i int) bool { return d.History[i].Date > e.Date })
	d.History = append(d.History, HistoryEntry{})
	copy(d.History[i+1:], d.History[i:])
	d.History[i] = e
}

// Recent returns up to n most recent entries, oldest first.
func (d Data) Recent(n int) []HistoryEntry {
	if n <= 0 || n >= len(d.History) {
		out := make([]HistoryEntry, len(d.History))
		copy(out, d.History)
		return out
	}
	out := make([]HistoryEntry, n)
	copy(out, d.History[len(d.History)-n:])
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// REPS
// ══════════════════════════════════════════════════════════════════════════════

// AddReps adds every exercise submitted with a session to the lifetime
// buckets. The Completed flag is display state and does not filter; names
// matching no bucket are skipped.
func (d *Data) AddReps(exercises []progression.ExerciseItem) {
	for _, ex := range exercises {
		n := ex.Reps.Value()
		switch progression.ClassifyExercise(ex.Name) {
		case progression.BucketPush:
			d.TotalReps.Push += n
		case progression.BucketPull:
			d.TotalReps.Pull += n
		case progression.BucketCore:
			d.TotalReps.Core += n
		case progression.BucketLegs:
			d.TotalReps.Legs += n
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// WEIGHT
// ══════════════════════════════════════════════════════════════════════════════

// RoundWeight rounds to one decimal.
func RoundWeight(kg float64) float64 {
	return math.Round(kg*10) / 10
}

// UpsertWeight inserts or replaces the entry for date, keeping entries sorted
// ascending. It reports whether a new entry was created.
func (d *Data) UpsertWeight(date string, weightKg float64, note string) (created bool, err error) {
	if !timeutil.IsValidDayKey(date) {
		return false, shared.ErrInvalidDate
	}
	weightKg = RoundWeight(weightKg)
	if weightKg <= 0 || math.IsNaN(weightKg) || math.IsInf(weightKg, 0) {
		return false, shared.ErrInvalidWeight
	}

	entry := WeightEntry{Date: date, WeightKg: weightKg, Note: strings.TrimSpace(note)}
	i := sort.Search(len(d.WeightEntries), func(i int) bool { return d.WeightEntries[i].Date >= date })
	if i < len(d.WeightEntries) && d.WeightEntries[i].Date == date {
		d.WeightEntries[i] = entry
		return false, nil
	}

	d.WeightEntries = append(d.WeightEntries, WeightEntry{})
	copy(d.WeightEntries[i+1:], d.WeightEntries[i:])
	d.WeightEntries[i] = entry
	return true, nil
}

// LatestWeight returns the most recent weight entry.
func (d Data) LatestWeight() (WeightEntry, bool) {
	if len(d.WeightEntries) == 0 {
		return WeightEntry{}, false
	}
	return d.WeightEntries[len(d.WeightEntries)-1], true
}
