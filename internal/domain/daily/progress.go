// Package daily implements the per-day schedule state machine: the slots a
// user plans for the day, the sessions they log, and the reminder flags.
//
// A Progress document describes exactly one logical day, identified by its
// day key. It is replaced wholesale at rollover; earlier days survive only in
// analytics history.
package daily

import (
	"sort"
	"time"

	"github.com/levelup-fitness/levelup-core/internal/domain/progression"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
)

// Schedule bounds.
const (
	MinSessionsPerDay = 1
	MaxSessionsPerDay = 50

	// DefaultIntervalMinutes is used when a schedule has fewer than two slots
	// to derive the spacing from.
	DefaultIntervalMinutes = 60
)

// ScheduledSession is one planned slot of the day.
type ScheduledSession struct {
	SessionID        int       `json:"sessionId"`
	TargetTime       time.Time `json:"targetTime"`
	NotificationSent bool      `json:"notificationSent"`
}

// Session is a completed workout.
type Session struct {
	SessionID int                        `json:"sessionId"`
	Timestamp time.Time                  `json:"timestamp"`
	Exercises []progression.ExerciseItem `json:"exercises"`
}

// Progress is the state of one logical day.
type Progress struct {
	Date         string             `json:"date"`
	IsCompleted  bool               `json:"isCompleted"`
	SessionsDone int                `json:"sessionsDone"`
	Sessions     []Session          `json:"sessions"`
	Schedule     []ScheduledSession `json:"schedule"`
}

// New returns an empty day.
func New(dayKey string) Progress {
	return Progress{
		Date:     dayKey,
		Sessions: []Session{},
		Schedule: []ScheduledSession{},
	}
}

// ClampSessionsPerDay clamps n into [1, 50].
func ClampSessionsPerDay(n int) int {
	if n < MinSessionsPerDay {
		return MinSessionsPerDay
	}
	if n > MaxSessionsPerDay {
		return MaxSessionsPerDay
	}
	return n
}

// Normalize replaces nil slices so the stored shape is stable.
func (p *Progress) Normalize() {
	if p.Sessions == nil {
		p.Sessions = []Session{}
	}
	if p.Schedule == nil {
		p.Schedule = []ScheduledSession{}
	}
}

// HasSchedule returns true once the day has been planned.
func (p Progress) HasSchedule() bool {
	return len(p.Schedule) > 0
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE
// ══════════════════════════════════════════════════════════════════════════════

// BuildSchedule returns n slots starting at start, spaced by interval, with
// dense ids 1..n and no reminder sent.
func BuildSchedule(start time.Time, interval time.Duration, n int) []ScheduledSession {
	slots := make([]ScheduledSession, n)
	for i := range slots {
		slots[i] = ScheduledSession{
			SessionID:  i + 1,
			TargetTime: start.Add(time.Duration(i) * interval),
		}
	}
	return slots
}

// StartDay plans the day. It only applies while the schedule is empty.
func (p *Progress) StartDay(start time.Time, intervalMinutes, sessionsPerDay int) error {
	if p.HasSchedule() {
		return shared.ErrScheduleExists
	}
	if intervalMinutes < 1 {
		return shared.ErrInvalidInterval
	}
	if sessionsPerDay < MinSessionsPerDay || sessionsPerDay > MaxSessionsPerDay {
		return shared.ErrInvalidSessionCnt
	}

	p.Schedule = BuildSchedule(start, time.Duration(intervalMinutes)*time.Minute, sessionsPerDay)
	return nil
}

// RescheduleSlot moves a slot that is not yet completed and re-arms its
// reminder.
func (p *Progress) RescheduleSlot(sessionID int, target time.Time) error {
	idx := p.slotIndex(sessionID)
	if idx < 0 {
		return shared.ErrSlotNotFound
	}
	if sessionID <= p.SessionsDone {
		return shared.ErrSlotCompleted
	}

	p.Schedule[idx].TargetTime = target
	p.Schedule[idx].NotificationSent = false
	return nil
}

// MarkNotified flips the reminder flag of a slot. The flag never goes back
// except through RescheduleSlot or a resize.
func (p *Progress) MarkNotified(sessionID int) error {
	idx := p.slotIndex(sessionID)
	if idx < 0 {
		return shared.ErrSlotNotFound
	}
	p.Schedule[idx].NotificationSent = true
	return nil
}

// Interval derives the slot spacing from slots 1 and 2, rounded to whole
// minutes and at least one. Without two slots it is 60 minutes.
func (p Progress) Interval() time.Duration {
	first, second := p.slotIndex(1), p.slotIndex(2)
	if first < 0 || second < 0 {
		return DefaultIntervalMinutes * time.Minute
	}
	gap := p.Schedule[second].TargetTime.Sub(p.Schedule[first].TargetTime).Round(time.Minute)
	if gap < time.Minute {
		gap = time.Minute
	}
	return gap
}

// ResizeSchedule regenerates the schedule for a new session count, keeping
// slot 1's start time and the current interval. Only valid before any session
// is logged.
func (p *Progress) ResizeSchedule(sessionsPerDay int) error {
	if sessionsPerDay < MinSessionsPerDay || sessionsPerDay > MaxSessionsPerDay {
		return shared.ErrInvalidSessionCnt
	}
	if p.SessionsDone != 0 {
		return shared.ErrSessionsStarted
	}
	first := p.slotIndex(1)
	if first < 0 {
		return shared.ErrNoSchedule
	}

	p.Schedule = BuildSchedule(p.Schedule[first].TargetTime, p.Interval(), sessionsPerDay)
	return nil
}

func (p Progress) slotIndex(sessionID int) int {
	for i, slot := range p.Schedule {
		if slot.SessionID == sessionID {
			return i
		}
	}
	return -1
}

// ══════════════════════════════════════════════════════════════════════════════
// POLLING
// ══════════════════════════════════════════════════════════════════════════════

// SlotState is the derived state of a slot.
type SlotState string

const (
	SlotPending   SlotState = "pending"
	SlotDue       SlotState = "due"
	SlotCompleted SlotState = "completed"
)

// StateOf derives a slot's state from the day's progress at now. A slot whose
// reminder already fired but is not completed is pending: it will not alert
// again.
func StateOf(slot ScheduledSession, sessionsDone int, now time.Time) SlotState {
	switch {
	case slot.SessionID <= sessionsDone:
		return SlotCompleted
	case !slot.TargetTime.After(now) && !slot.NotificationSent:
		return SlotDue
	default:
		return SlotPending
	}
}

// PollDue returns the earliest slot that is due at now, ties broken by the
// lower session id. It is pure: the caller must mark and persist the slot
// after firing, otherwise the same slot is returned again.
func PollDue(schedule []ScheduledSession, sessionsDone int, now time.Time) (ScheduledSession, bool) {
	var (
		due   ScheduledSession
		found bool
	)
	for _, slot := range schedule {
		if StateOf(slot, sessionsDone, now) != SlotDue {
			continue
		}
		if !found ||
			slot.TargetTime.Before(due.TargetTime) ||
			(slot.TargetTime.Equal(due.TargetTime) && slot.SessionID < due.SessionID) {
			due = slot
			found = true
		}
	}
	return due, found
}

// NextPending returns the next slot that is not completed, in session order.
func (p Progress) NextPending() (ScheduledSession, bool) {
	slots := make([]ScheduledSession, len(p.Schedule))
	copy(slots, p.Schedule)
	sort.Slice(slots, func(i, j int) bool { return slots[i].SessionID < slots[j].SessionID })

	for _, slot := range slots {
		if slot.SessionID > p.SessionsDone {
			return slot, true
		}
	}
	return ScheduledSession{}, false
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSIONS
// ══════════════════════════════════════════════════════════════════════════════

// LogSession appends a completed session. The session takes the next id in
// sequence, matching the slot it fulfils when a schedule exists.
func (p *Progress) LogSession(at time.Time, exercises []progression.ExerciseItem, sessionsPerDay int) (Session, error) {
	if p.SessionsDone >= sessionsPerDay {
		return Session{}, shared.ErrDayCompleted
	}
	if len(exercises) == 0 {
		return Session{}, shared.ErrEmptySession
	}

	items := make([]progression.ExerciseItem, len(exercises))
	copy(items, exercises)

	session := Session{
		SessionID: p.SessionsDone + 1,
		Timestamp: at,
		Exercises: items,
	}
	p.Sessions = append(p.Sessions, session)
	p.SessionsDone++
	p.RefreshCompletion(sessionsPerDay)
	return session, nil
}

// RefreshCompletion recomputes IsCompleted for the current session target.
// A target lowered below the sessions already done caps SessionsDone.
func (p *Progress) RefreshCompletion(sessionsPerDay int) {
	if p.SessionsDone > sessionsPerDay {
		p.SessionsDone = sessionsPerDay
	}
	p.IsCompleted = p.SessionsDone >= sessionsPerDay
}

// Validate checks the shape a stored day must have to be trusted.
func (p Progress) Validate() error {
	if p.Date == "" {
		return shared.NewDomainError("daily", "Validate", shared.ErrEmptyValue, "missing date")
	}
	if p.SessionsDone < 0 || p.SessionsDone > MaxSessionsPerDay {
		return shared.NewDomainError("daily", "Validate", shared.ErrValueOutOfRange, "sessionsDone out of range")
	}
	return nil
}
