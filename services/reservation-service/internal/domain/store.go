package domain

import "context"

// ReservationStore is the persistence contract the scheduler relies on.
// An excludeID of 0 excludes nothing; stored ids start at 1.
type ReservationStore interface {
	Insert(ctx context.Context, r *Reservation) error
	ByID(ctx context.Context, id uint) (*Reservation, error)
	Update(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id uint) error
	// Overlapping returns reservations with start < in.End and end > in.Start,
	// ordered by start then id.
	Overlapping(ctx context.Context, in Interval, excludeID uint) ([]Reservation, error)
	ByOwner(ctx context.Context, ownerID uint) ([]Reservation, error)
	All(ctx context.Context) ([]Reservation, error)
	// Transaction runs fn against a store bound to one transaction. Overlap
	// queries inside it lock the calendar against concurrent writers.
	Transaction(ctx context.Context, fn func(tx ReservationStore) error) error
}

type UserStore interface {
	Create(ctx context.Context, u *User) error
	ByID(ctx context.Context, id uint) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
}
