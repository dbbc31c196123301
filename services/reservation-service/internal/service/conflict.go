package service

import (
	"context"
	"time"

	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
)

// ConflictDetector decides whether a candidate interval collides with any
// stored reservation. It never writes.
type ConflictDetector struct{}

// FindConflict returns the first stored reservation (by start, then id) that
// overlaps [start, end), ignoring excludeID. It returns nil when the slot is
// free and an *IntervalError when end <= start.
func (ConflictDetector) FindConflict(ctx context.Context, store domain.ReservationStore, start, end time.Time, excludeID uint) (*domain.Reservation, error) {
	in, err := domain.NewInterval(start, end)
	if err != nil {
		return nil, err
	}
	rows, err := store.Overlapping(ctx, in, excludeID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID != excludeID && rows[i].Interval().Overlaps(in) {
			return &rows[i], nil
		}
	}
	return nil, nil
}

func (d ConflictDetector) HasConflict(ctx context.Context, store domain.ReservationStore, start, end time.Time, excludeID uint) (bool, error) {
	r, err := d.FindConflict(ctx, store, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return r != nil, nil
}
