package repository_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/you/meeting-room-booking/pkg/db"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/repository"
)

func newTestRepos(t *testing.T) (*repository.UserRepo, *repository.ReservationRepo) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(db.Config{
		Driver: db.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	users := repository.NewUserRepo(gdb)
	if err := users.Migrate(); err != nil {
		t.Fatalf("migrate users: %v", err)
	}
	res := repository.NewReservationRepo(gdb)
	if err := res.Migrate(); err != nil {
		t.Fatalf("migrate reservations: %v", err)
	}
	return users, res
}

func at(hh, mm int) time.Time {
	return time.Date(2025, 1, 1, hh, mm, 0, 0, time.UTC)
}

func seedUser(t *testing.T, users *repository.UserRepo, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x"}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func seedReservation(t *testing.T, repo *repository.ReservationRepo, owner uint, start, end time.Time) *domain.Reservation {
	t.Helper()
	r := &domain.Reservation{Title: "standup", StartTime: start, EndTime: end, OwnerID: owner, CreatedAt: at(0, 0)}
	if err := repo.Insert(context.Background(), r); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return r
}

func TestUserRepo_CreateAndLookup(t *testing.T) {
	users, _ := newTestRepos(t)
	ctx := context.Background()

	u := seedUser(t, users, "  Alice@Example.com ")
	if u.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}

	byEmail, err := users.ByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("ByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("ByEmail id = %d, want %d", byEmail.ID, u.ID)
	}

	if _, err := users.ByID(ctx, 9999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	users, _ := newTestRepos(t)
	seedUser(t, users, "dup@example.com")

	err := users.Create(context.Background(), &domain.User{Email: "DUP@example.com", PasswordHash: "x"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestReservationRepo_InsertAndByID(t *testing.T) {
	users, repo := newTestRepos(t)
	owner := seedUser(t, users, "owner@example.com")

	r := seedReservation(t, repo, owner.ID, at(9, 0), at(10, 0))
	if r.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	got, err := repo.ByID(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if !got.StartTime.Equal(at(9, 0)) || !got.EndTime.Equal(at(10, 0)) {
		t.Errorf("unexpected interval [%v, %v)", got.StartTime, got.EndTime)
	}
	if got.Owner == nil || got.Owner.Email != "owner@example.com" {
		t.Errorf("owner not preloaded: %+v", got.Owner)
	}
}

func TestReservationRepo_InsertUnknownOwner(t *testing.T) {
	_, repo := newTestRepos(t)
	r := &domain.Reservation{Title: "ghost", StartTime: at(9, 0), EndTime: at(10, 0), OwnerID: 404, CreatedAt: at(0, 0)}
	if err := repo.Insert(context.Background(), r); !errors.Is(err, domain.ErrUnknownOwner) {
		t.Fatalf("expected ErrUnknownOwner, got %v", err)
	}
}

func TestReservationRepo_Overlapping(t *testing.T) {
	users, repo := newTestRepos(t)
	owner := seedUser(t, users, "o@example.com")
	ctx := context.Background()

	nine := seedReservation(t, repo, owner.ID, at(9, 0), at(10, 0))
	seedReservation(t, repo, owner.ID, at(11, 0), at(12, 0))

	tests := []struct {
		name      string
		in        domain.Interval
		excludeID uint
		want      int
	}{
		{"adjacent after", domain.Interval{Start: at(10, 0), End: at(11, 0)}, 0, 0},
		{"overlaps first", domain.Interval{Start: at(9, 59), End: at(10, 30)}, 0, 1},
		{"spans both", domain.Interval{Start: at(8, 0), End: at(13, 0)}, 0, 2},
		{"self excluded", domain.Interval{Start: at(9, 0), End: at(10, 0)}, nine.ID, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Overlapping(ctx, tt.in, tt.excludeID)
			if err != nil {
				t.Fatalf("Overlapping: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReservationRepo_UpdateKeepsOwnerAndCreatedAt(t *testing.T) {
	users, repo := newTestRepos(t)
	owner := seedUser(t, users, "o@example.com")
	ctx := context.Background()
	r := seedReservation(t, repo, owner.ID, at(9, 0), at(10, 0))

	desc := "moved"
	err := repo.Update(ctx, &domain.Reservation{
		ID: r.ID, Title: "retro", Description: &desc,
		StartTime: at(14, 0), EndTime: at(15, 0),
		OwnerID: 12345, CreatedAt: at(23, 0),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := repo.ByID(ctx, r.ID)
	if got.Title != "retro" || got.Description == nil || *got.Description != "moved" {
		t.Errorf("fields not updated: %+v", got)
	}
	if got.OwnerID != owner.ID {
		t.Errorf("owner changed to %d", got.OwnerID)
	}
	if !got.CreatedAt.Equal(at(0, 0)) {
		t.Errorf("created_at changed to %v", got.CreatedAt)
	}

	if err := repo.Update(ctx, &domain.Reservation{ID: 999, Title: "x", StartTime: at(1, 0), EndTime: at(2, 0)}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReservationRepo_Delete(t *testing.T) {
	users, repo := newTestRepos(t)
	owner := seedUser(t, users, "o@example.com")
	ctx := context.Background()
	r := seedReservation(t, repo, owner.ID, at(9, 0), at(10, 0))

	if err := repo.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.ByID(ctx, r.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, r.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestReservationRepo_ListOrdering(t *testing.T) {
	users, repo := newTestRepos(t)
	a := seedUser(t, users, "a@example.com")
	b := seedUser(t, users, "b@example.com")
	ctx := context.Background()

	late := seedReservation(t, repo, a.ID, at(15, 0), at(16, 0))
	early := seedReservation(t, repo, b.ID, at(8, 0), at(9, 0))
	mid := seedReservation(t, repo, a.ID, at(10, 0), at(11, 0))

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	wantIDs := []uint{early.ID, mid.ID, late.ID}
	if len(all) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(all), len(wantIDs))
	}
	for i, id := range wantIDs {
		if all[i].ID != id {
			t.Errorf("all[%d].ID = %d, want %d", i, all[i].ID, id)
		}
	}

	mine, err := repo.ByOwner(ctx, a.ID)
	if err != nil {
		t.Fatalf("ByOwner: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != mid.ID || mine[1].ID != late.ID {
		t.Errorf("unexpected ByOwner result: %+v", mine)
	}
}

func TestReservationRepo_TransactionRollsBack(t *testing.T) {
	users, repo := newTestRepos(t)
	owner := seedUser(t, users, "o@example.com")
	ctx := context.Background()

	sentinel := errors.New("abort")
	err := repo.Transaction(ctx, func(tx domain.ReservationStore) error {
		r := &domain.Reservation{Title: "temp", StartTime: at(9, 0), EndTime: at(10, 0), OwnerID: owner.ID, CreatedAt: at(0, 0)}
		if err := tx.Insert(ctx, r); err != nil {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrForbidden, sentinel)
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected domain error to pass through, got %v", err)
	}

	all, _ := repo.All(ctx)
	if len(all) != 0 {
		t.Fatalf("expected rollback, found %d reservations", len(all))
	}
}

func TestReservationRepo_CanceledContext(t *testing.T) {
	users, repo := newTestRepos(t)
	owner := seedUser(t, users, "o@example.com")
	seedReservation(t, repo, owner.ID, at(9, 0), at(10, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.All(ctx); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
