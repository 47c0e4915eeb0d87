// Package shared contains common domain types, errors, events, and ports
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrLimitReached    = errors.New("limit reached")

	// Infrastructure errors
	ErrStorage            = errors.New("storage error")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "daily", "clan", "user"
	Op      string // Operation that failed, e.g., "StartDay", "Accept"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching against both the kind and the cause.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrInvalidUsername   = NewDomainError("user", "Validate", ErrEmptyValue, "username cannot be empty")
	ErrInvalidHeight     = NewDomainError("user", "Validate", ErrValueOutOfRange, "height must be positive")
	ErrInvalidSex        = NewDomainError("user", "Validate", ErrInvalidInput, "sex must be male, female or other")
	ErrInvalidBirthDate  = NewDomainError("user", "Validate", ErrInvalidFormat, "birth date must be YYYY-MM-DD")
	ErrInvalidMembership = NewDomainError("user", "Validate", ErrInvalidState, "clan membership pointers do not match status")
	ErrInvalidTimeZone   = NewDomainError("user", "UpdateSettings", ErrInvalidInput, "unknown time zone")
)

// Daily schedule errors
var (
	ErrScheduleExists    = NewDomainError("daily", "StartDay", ErrInvalidState, "schedule already exists for today")
	ErrInvalidInterval   = NewDomainError("daily", "StartDay", ErrValueOutOfRange, "interval must be at least one minute")
	ErrInvalidStartTime  = NewDomainError("daily", "StartDay", ErrInvalidFormat, "start time must be HH:MM")
	ErrSlotNotFound      = NewDomainError("daily", "FindSlot", ErrNotFound, "schedule slot not found")
	ErrSlotCompleted     = NewDomainError("daily", "Reschedule", ErrInvalidState, "slot already completed")
	ErrDayCompleted      = NewDomainError("daily", "LogSession", ErrLimitReached, "all sessions for today are done")
	ErrNoSchedule        = NewDomainError("daily", "Resize", ErrInvalidState, "no schedule to resize")
	ErrSessionsStarted   = NewDomainError("daily", "Resize", ErrInvalidState, "sessions already logged today")
	ErrEmptySession      = NewDomainError("daily", "LogSession", ErrEmptyValue, "session must contain exercises")
	ErrInvalidSessionCnt = NewDomainError("daily", "Resize", ErrValueOutOfRange, "sessions per day out of range")
)

// Analytics errors
var (
	ErrInvalidWeight = NewDomainError("analytics", "LogWeight", ErrValueOutOfRange, "weight must be positive")
	ErrInvalidDate   = NewDomainError("analytics", "LogWeight", ErrInvalidFormat, "date must be YYYY-MM-DD")
)

// Clan domain errors
var (
	ErrClanNotFound      = NewDomainError("clan", "Find", ErrNotFound, "clan not found")
	ErrInviteNotFound    = NewDomainError("clan", "FindInvite", ErrNotFound, "invite not found")
	ErrInvalidClanName   = NewDomainError("clan", "Create", ErrEmptyValue, "clan name cannot be empty")
	ErrInvalidClanTag    = NewDomainError("clan", "Create", ErrInvalidInput, "clan tag must be 1-5 characters")
	ErrAlreadyInClan     = NewDomainError("clan", "Join", ErrInvalidState, "already a clan member")
	ErrAlreadyInvited    = NewDomainError("clan", "RequestInvite", ErrInvalidState, "an invite is already pending")
	ErrNotInClan         = NewDomainError("clan", "Leave", ErrInvalidState, "not a clan member")
	ErrNotClanLeader     = NewDomainError("clan", "Manage", ErrStateTransition, "only the clan leader can do this")
	ErrLeaderMustDisband = NewDomainError("clan", "Leave", ErrStateTransition, "the leader must disband the clan")
	ErrNoPendingInvite   = NewDomainError("clan", "Respond", ErrInvalidState, "no pending invite")
	ErrInvalidAmount     = NewDomainError("clan", "Contribute", ErrValueOutOfRange, "contribution must not be negative")
)

// Storage errors
var (
	ErrCorruptRecord = NewDomainError("storage", "Decode", ErrInvalidFormat, "stored record is corrupt")
	ErrMigration     = NewDomainError("storage", "Migrate", ErrStorage, "migration failed")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsPrecondition reports whether err means the operation did not apply in the
// current state. Callers treat these as no-ops.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrStateTransition) ||
		errors.Is(err, ErrLimitReached)
}
