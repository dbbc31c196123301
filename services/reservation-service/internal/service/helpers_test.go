package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/you/meeting-room-booking/pkg/auth"
	"github.com/you/meeting-room-booking/pkg/clock"
	"github.com/you/meeting-room-booking/pkg/db"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/policy"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/repository"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/service"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func at(hh, mm int) time.Time {
	return epoch.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordedEvent struct {
	Key     string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Key: key, Payload: v})
	return p.err
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Key)
	}
	return out
}

type fixture struct {
	users     *repository.UserRepo
	store     *repository.ReservationRepo
	clock     *clock.FakeClock
	pub       *recordingPublisher
	scheduler *service.Scheduler
	auth      *service.AuthSvc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(db.Config{
		Driver: db.DriverSQLite,
		DSN:    fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_foreign_keys=on", name),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	users := repository.NewUserRepo(gdb)
	store := repository.NewReservationRepo(gdb)
	if err := users.Migrate(); err != nil {
		t.Fatalf("migrate users: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate reservations: %v", err)
	}

	clk := clock.NewFakeClock(at(7, 0))
	pub := &recordingPublisher{}
	issuer := auth.NewIssuer("test-secret", time.Hour, clk)
	return &fixture{
		users:     users,
		store:     store,
		clock:     clk,
		pub:       pub,
		scheduler: service.NewScheduler(store, users, clk, pub, quietLogger(), time.Second),
		auth:      service.NewAuthSvc(users, issuer, false, quietLogger()),
	}
}

func (f *fixture) user(t *testing.T, email string, admin bool) policy.Actor {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x", IsAdmin: admin}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return policy.Actor{ID: u.ID, IsAdmin: u.IsAdmin}
}

func (f *fixture) create(t *testing.T, actor policy.Actor, start, end time.Time) *domain.Reservation {
	t.Helper()
	r, err := f.scheduler.Create(context.Background(), actor, service.CreateInput{Title: "meeting", Start: start, End: end})
	if err != nil {
		t.Fatalf("Create([%v, %v)) error = %v", start, end, err)
	}
	return r
}

func uintPtr(v uint) *uint { return &v }
