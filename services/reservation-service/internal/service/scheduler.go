package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/you/meeting-room-booking/pkg/clock"
	"github.com/you/meeting-room-booking/pkg/events"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/domain"
	"github.com/you/meeting-room-booking/services/reservation-service/internal/policy"
)

const (
	defaultStoreTimeout = 5 * time.Second
	publishTimeout      = 2 * time.Second
	maxTitleLen         = 200
)

// EventPublisher is satisfied by *mq.Publisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type CreateInput struct {
	Title       string
	Description *string
	Start       time.Time
	End         time.Time
	// OwnerID is honoured for admins only.
	OwnerID *uint
}

type UpdateInput struct {
	Title       string
	Description *string
	Start       time.Time
	End         time.Time
}

// Scheduler owns every reservation mutation. Check-then-write sequences run
// one at a time in this process and inside a single store transaction.
type Scheduler struct {
	// one-slot semaphore; a waiting request gives up when its context ends
	gate chan struct{}

	store    domain.ReservationStore
	users    domain.UserStore
	detector ConflictDetector
	clock    clock.Clock
	pub      EventPublisher
	log      *slog.Logger
	timeout  time.Duration
	tracer   trace.Tracer
}

// NewScheduler wires a scheduler. pub may be nil, in which case no events are
// emitted; a zero timeout falls back to five seconds.
func NewScheduler(store domain.ReservationStore, users domain.UserStore, c clock.Clock, pub EventPublisher, log *slog.Logger, timeout time.Duration) *Scheduler {
	if c == nil {
		c = clock.RealClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &Scheduler{
		gate:    make(chan struct{}, 1),
		store:   store,
		users:   users,
		clock:   c,
		pub:     pub,
		log:     log,
		timeout: timeout,
		tracer:  otel.Tracer("reservation-service/scheduler"),
	}
}

func (s *Scheduler) Create(ctx context.Context, actor policy.Actor, in CreateInput) (_ *domain.Reservation, err error) {
	ctx, span := s.tracer.Start(ctx, "Scheduler.Create")
	defer func() { endSpan(span, err) }()

	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	iv, err := domain.NewInterval(in.Start, in.End)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ownerID := policy.OwnerFor(actor, in.OwnerID)
	span.SetAttributes(attribute.Int64("reservation.owner_id", int64(ownerID)))
	owner, err := s.users.ByID(ctx, ownerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnknownOwner
	}
	if err != nil {
		return nil, err
	}

	r := &domain.Reservation{
		Title:       title,
		Description: in.Description,
		StartTime:   iv.Start,
		EndTime:     iv.End,
		OwnerID:     ownerID,
	}
	err = s.serialize(ctx, func(tx domain.ReservationStore) error {
		if err := s.ensureFree(ctx, tx, iv, 0); err != nil {
			return err
		}
		r.CreatedAt = s.clock.Now().UTC()
		return tx.Insert(ctx, r)
	})
	if err != nil {
		return nil, withConflictDetail(err, iv)
	}
	r.Owner = owner

	s.log.Info("reservation created", "id", r.ID, "owner_id", r.OwnerID, "actor_id", actor.ID,
		"start", r.StartTime, "end", r.EndTime)
	s.publish(ctx, events.RKReservationCreated, changedEvent(r, actor))
	return r, nil
}

func (s *Scheduler) Update(ctx context.Context, actor policy.Actor, id uint, in UpdateInput) (_ *domain.Reservation, err error) {
	ctx, span := s.tracer.Start(ctx, "Scheduler.Update", trace.WithAttributes(attribute.Int64("reservation.id", int64(id))))
	defer func() { endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		updated *domain.Reservation
		iv      domain.Interval
	)
	err = s.serialize(ctx, func(tx domain.ReservationStore) error {
		cur, err := tx.ByID(ctx, id)
		if err != nil {
			return err
		}
		if !policy.CanMutate(actor, cur) {
			return domain.ErrForbidden
		}
		title, err := normalizeTitle(in.Title)
		if err != nil {
			return err
		}
		if iv, err = domain.NewInterval(in.Start, in.End); err != nil {
			return err
		}
		if err := s.ensureFree(ctx, tx, iv, id); err != nil {
			return err
		}
		cur.Title = title
		cur.Description = in.Description
		cur.StartTime = iv.Start
		cur.EndTime = iv.End
		if err := tx.Update(ctx, cur); err != nil {
			return err
		}
		updated = cur
		return nil
	})
	if err != nil {
		return nil, withConflictDetail(err, iv)
	}

	s.log.Info("reservation updated", "id", updated.ID, "actor_id", actor.ID,
		"start", updated.StartTime, "end", updated.EndTime)
	s.publish(ctx, events.RKReservationUpdated, changedEvent(updated, actor))
	return updated, nil
}

func (s *Scheduler) Delete(ctx context.Context, actor policy.Actor, id uint) (err error) {
	ctx, span := s.tracer.Start(ctx, "Scheduler.Delete", trace.WithAttributes(attribute.Int64("reservation.id", int64(id))))
	defer func() { endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var ownerID uint
	err = s.serialize(ctx, func(tx domain.ReservationStore) error {
		cur, err := tx.ByID(ctx, id)
		if err != nil {
			return err
		}
		if !policy.CanMutate(actor, cur) {
			return domain.ErrForbidden
		}
		ownerID = cur.OwnerID
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("reservation deleted", "id", id, "owner_id", ownerID, "actor_id", actor.ID)
	s.publish(ctx, events.RKReservationDeleted, events.ReservationDeleted{
		EventID:       uuid.NewString(),
		ReservationID: id,
		OwnerID:       ownerID,
		ActorID:       actor.ID,
	})
	return nil
}

// List returns the reservations visible to actor under scope, ordered by
// start time then id.
func (s *Scheduler) List(ctx context.Context, actor policy.Actor, scope policy.Scope) (_ []domain.Reservation, err error) {
	ctx, span := s.tracer.Start(ctx, "Scheduler.List", trace.WithAttributes(attribute.String("scope", string(scope))))
	defer func() { endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ownerID, all := policy.Visibility(actor, scope)
	if all {
		return s.store.All(ctx)
	}
	return s.store.ByOwner(ctx, ownerID)
}

// Get returns one reservation. Reservations the actor may not see are
// reported as not found.
func (s *Scheduler) Get(ctx context.Context, actor policy.Actor, id uint) (_ *domain.Reservation, err error) {
	ctx, span := s.tracer.Start(ctx, "Scheduler.Get", trace.WithAttributes(attribute.Int64("reservation.id", int64(id))))
	defer func() { endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r, err := s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanRead(actor, r, policy.ScopeAll) {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// serialize runs fn in a store transaction while holding the process-wide
// reservation lock.
func (s *Scheduler) serialize(ctx context.Context, fn func(tx domain.ReservationStore) error) error {
	select {
	case s.gate <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, ctx.Err())
	}
	defer func() { <-s.gate }()
	return s.store.Transaction(ctx, fn)
}

func (s *Scheduler) ensureFree(ctx context.Context, tx domain.ReservationStore, iv domain.Interval, excludeID uint) error {
	existing, err := s.detector.FindConflict(ctx, tx, iv.Start, iv.End, excludeID)
	if err != nil {
		return err
	}
	if existing != nil {
		return &domain.ConflictError{Start: iv.Start, End: iv.End, Existing: existing}
	}
	return nil
}

func (s *Scheduler) publish(ctx context.Context, key string, v any) {
	if s.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.pub.PublishJSON(ctx, key, v); err != nil {
		s.log.Warn("publish event failed", "key", key, "err", err)
	}
}

func changedEvent(r *domain.Reservation, actor policy.Actor) events.ReservationChanged {
	return events.ReservationChanged{
		EventID:       uuid.NewString(),
		ReservationID: r.ID,
		OwnerID:       r.OwnerID,
		ActorID:       actor.ID,
		Title:         r.Title,
		Start:         r.StartTime.Unix(),
		End:           r.EndTime.Unix(),
	}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return "", fmt.Errorf("%w: title is required", domain.ErrValidation)
	case len([]rune(title)) > maxTitleLen:
		return "", fmt.Errorf("%w: title longer than %d characters", domain.ErrValidation, maxTitleLen)
	}
	return title, nil
}

// withConflictDetail attaches the candidate interval to a conflict raised by
// the database constraint, which carries no detail of its own.
func withConflictDetail(err error, iv domain.Interval) error {
	var ce *domain.ConflictError
	if errors.Is(err, domain.ErrScheduleConflict) && !errors.As(err, &ce) {
		return &domain.ConflictError{Start: iv.Start, End: iv.End}
	}
	return err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
