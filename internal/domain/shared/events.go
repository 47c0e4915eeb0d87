package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types.
const (
	// Progress events
	EventSessionLogged      EventType = "progress.session_logged"
	EventLevelUp            EventType = "progress.level_up"
	EventDailyStreakUpdated EventType = "progress.streak_updated"
	EventDailyStreakBroken  EventType = "progress.streak_broken"

	// Schedule events
	EventDayRolledOver EventType = "schedule.day_rolled_over"
	EventSessionDue    EventType = "schedule.session_due"

	// Body events
	EventWeightLogged EventType = "body.weight_logged"

	// Clan events
	EventClanCreated   EventType = "clan.created"
	EventClanJoined    EventType = "clan.joined"
	EventClanLeft      EventType = "clan.left"
	EventClanDisbanded EventType = "clan.disbanded"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event stamped with the injected clock time.
func NewBaseEvent(eventType EventType, aggregateID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   at,
		AggregateId: aggregateID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// SessionLoggedEvent is emitted when a workout session is recorded.
type SessionLoggedEvent struct {
	BaseEvent
	DayKey       string `json:"day_key"`
	SessionID    int    `json:"session_id"`
	XPEarned     int    `json:"xp_earned"`
	SessionsDone int    `json:"sessions_done"`
	DayCompleted bool   `json:"day_completed"`
}

// Payload implements Event interface.
func (e SessionLoggedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"day_key":       e.DayKey,
		"session_id":    e.SessionID,
		"xp_earned":     e.XPEarned,
		"sessions_done": e.SessionsDone,
		"day_completed": e.DayCompleted,
	}
}

// LevelUpEvent is emitted when one XP award crosses one or more levels.
type LevelUpEvent struct {
	BaseEvent
	OldLevel     int `json:"old_level"`
	NewLevel     int `json:"new_level"`
	LevelsGained int `json:"levels_gained"`
	CoinsAwarded int `json:"coins_awarded"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"old_level":     e.OldLevel,
		"new_level":     e.NewLevel,
		"levels_gained": e.LevelsGained,
		"coins_awarded": e.CoinsAwarded,
	}
}

// StreakEvent is emitted when the day rollover changes the streak. Type is
// either EventDailyStreakUpdated or EventDailyStreakBroken.
type StreakEvent struct {
	BaseEvent
	PreviousStreak int `json:"previous_streak"`
	CurrentStreak  int `json:"current_streak"`
	HighestStreak  int `json:"highest_streak"`
}

// Payload implements Event interface.
func (e StreakEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"previous_streak": e.PreviousStreak,
		"current_streak":  e.CurrentStreak,
		"highest_streak":  e.HighestStreak,
	}
}

// Broken returns true if the streak was reset.
func (e StreakEvent) Broken() bool {
	return e.Type == EventDailyStreakBroken
}

// ═══════════════════════════════════════════════════════════════════════════
// Schedule Events
// ═══════════════════════════════════════════════════════════════════════════

// DayRolledOverEvent is emitted after a stale day was archived and reset.
type DayRolledOverEvent struct {
	BaseEvent
	ArchivedDay  string `json:"archived_day"`
	NewDay       string `json:"new_day"`
	SessionsDone int    `json:"sessions_done"`
}

// Payload implements Event interface.
func (e DayRolledOverEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"archived_day":  e.ArchivedDay,
		"new_day":       e.NewDay,
		"sessions_done": e.SessionsDone,
	}
}

// SessionDueEvent is emitted when a reminder fires for a slot.
type SessionDueEvent struct {
	BaseEvent
	SessionID int  `json:"session_id"`
	Delivered bool `json:"delivered"`
	Muted     bool `json:"muted"`
}

// Payload implements Event interface.
func (e SessionDueEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionID,
		"delivered":  e.Delivered,
		"muted":      e.Muted,
	}
}

// WeightLoggedEvent is emitted when a weight entry is recorded.
type WeightLoggedEvent struct {
	BaseEvent
	Date         string  `json:"date"`
	WeightKg     float64 `json:"weight_kg"`
	CoinsAwarded int     `json:"coins_awarded"`
}

// Payload implements Event interface.
func (e WeightLoggedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"date":          e.Date,
		"weight_kg":     e.WeightKg,
		"coins_awarded": e.CoinsAwarded,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Clan Events
// ═══════════════════════════════════════════════════════════════════════════

// ClanEvent is emitted on clan membership changes.
type ClanEvent struct {
	BaseEvent
	ClanID string `json:"clan_id"`
	UserID string `json:"user_id"`
}

// Payload implements Event interface.
func (e ClanEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"clan_id": e.ClanID,
		"user_id": e.UserID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Bus contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
