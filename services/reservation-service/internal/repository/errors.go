package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
)

// SQLSTATE exclusion_violation, raised by reservations_no_overlap.
const pgExclusionViolation = "23P01"

var passthrough = []error{
	domain.ErrInvalidInterval,
	domain.ErrScheduleConflict,
	domain.ErrNotFound,
	domain.ErrForbidden,
	domain.ErrUnauthorized,
	domain.ErrStoreUnavailable,
	domain.ErrValidation,
	domain.ErrUnknownOwner,
	domain.ErrEmailTaken,
	domain.ErrBadCredentials,
}

// mapErr translates gorm and driver errors into the domain taxonomy. Domain
// errors returned from inside a transaction pass through untouched.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range passthrough {
		if errors.Is(err, target) {
			return err
		}
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation:
		return fmt.Errorf("%w: %s", domain.ErrScheduleConflict, pgErr.ConstraintName)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrUnknownOwner
	default:
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
}
