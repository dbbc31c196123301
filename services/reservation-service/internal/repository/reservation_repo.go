package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
)

const noOverlapConstraint = "reservations_no_overlap"

type ReservationRepo struct {
	db *gorm.DB
	// inTx is set on repos handed to Transaction callbacks.
	inTx bool
}

func NewReservationRepo(db *gorm.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// Migrate creates the reservations table. On PostgreSQL it also installs the
// exclusion constraint that rejects overlapping [start_time, end_time) ranges.
func (r *ReservationRepo) Migrate() error {
	if err := r.db.AutoMigrate(&domain.Reservation{}); err != nil {
		return err
	}
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	var n int64
	if err := r.db.Raw(`SELECT count(*) FROM pg_constraint WHERE conname = ?`, noOverlapConstraint).Scan(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return r.db.Exec(`ALTER TABLE reservations ADD CONSTRAINT ` + noOverlapConstraint +
		` EXCLUDE USING gist (tstzrange(start_time, end_time, '[)') WITH &&)`).Error
}

func (r *ReservationRepo) Insert(ctx context.Context, res *domain.Reservation) error {
	return mapErr(r.db.WithContext(ctx).Omit(clause.Associations).Create(res).Error)
}

func (r *ReservationRepo) ByID(ctx context.Context, id uint) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.db.WithContext(ctx).Preload("Owner").First(&res, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &res, nil
}

// Update overwrites the mutable fields of res. Owner, id and created_at are
// never written.
func (r *ReservationRepo) Update(ctx context.Context, res *domain.Reservation) error {
	tx := r.db.WithContext(ctx).Model(&domain.Reservation{}).Where("id = ?", res.ID).Updates(map[string]any{
		"title":       res.Title,
		"description": res.Description,
		"start_time":  res.StartTime,
		"end_time":    res.EndTime,
	})
	if tx.Error != nil {
		return mapErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id uint) error {
	tx := r.db.WithContext(ctx).Delete(&domain.Reservation{}, "id = ?", id)
	if tx.Error != nil {
		return mapErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReservationRepo) Overlapping(ctx context.Context, in domain.Interval, excludeID uint) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Where("start_time < ? AND end_time > ?", in.End, in.Start) // overlap condition
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if r.inTx {
		// lock candidate rows; a no-op on sqlite
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out []domain.Reservation
	if err := q.Order("start_time ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (r *ReservationRepo) ByOwner(ctx context.Context, ownerID uint) ([]domain.Reservation, error) {
	return r.list(r.db.WithContext(ctx).Where("owner_id = ?", ownerID))
}

func (r *ReservationRepo) All(ctx context.Context) ([]domain.Reservation, error) {
	return r.list(r.db.WithContext(ctx))
}

func (r *ReservationRepo) list(q *gorm.DB) ([]domain.Reservation, error) {
	var out []domain.Reservation
	if err := q.Preload("Owner").Order("start_time ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// Transaction runs fn inside one database transaction. On PostgreSQL the
// reservations table is locked in SHARE ROW EXCLUSIVE mode first, so two
// writers cannot both pass an overlap check against the same snapshot.
func (r *ReservationRepo) Transaction(ctx context.Context, fn func(tx domain.ReservationStore) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(`LOCK TABLE reservations IN SHARE ROW EXCLUSIVE MODE`).Error; err != nil {
				return err
			}
		}
		return fn(&ReservationRepo{db: tx, inTx: true})
	})
	return mapErr(err)
}

var _ domain.ReservationStore = (*ReservationRepo)(nil)
var _ domain.UserStore = (*UserRepo)(nil)
