package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInterval  = errors.New("end time must be after start time")
	ErrScheduleConflict = errors.New("schedule conflict")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrValidation     = errors.New("validation failed")
	ErrUnknownOwner   = errors.New("owner does not exist")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("incorrect email or password")
)

// IntervalError reports the rejected bounds of an interval with end <= start.
type IntervalError struct {
	Start time.Time
	End   time.Time
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("%s: start=%s end=%s", ErrInvalidInterval,
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func (e *IntervalError) Is(target error) bool { return target == ErrInvalidInterval }

// ConflictError reports the candidate interval and, when known, the stored
// reservation it collides with. Existing is nil when the conflict was raised
// by the database constraint rather than the detector.
type ConflictError struct {
	Start    time.Time
	End      time.Time
	Existing *Reservation
}

func (e *ConflictError) Error() string {
	if e.Existing == nil {
		return fmt.Sprintf("%s: [%s, %s) overlaps an existing reservation", ErrScheduleConflict,
			e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
	}
	return fmt.Sprintf("%s: [%s, %s) overlaps reservation %d [%s, %s)", ErrScheduleConflict,
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339), e.Existing.ID,
		e.Existing.StartTime.Format(time.RFC3339), e.Existing.EndTime.Format(time.RFC3339))
}

func (e *ConflictError) Is(target error) bool { return target == ErrScheduleConflict }
