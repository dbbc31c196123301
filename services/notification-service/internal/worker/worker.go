package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/you/meeting-room-booking/pkg/events"
	"github.com/you/meeting-room-booking/services/notification-service/internal/notifier"
)

// errPoison marks deliveries that can never be processed; they are
// dead-lettered instead of requeued.
var errPoison = errors.New("poison message")

type Worker struct {
	notifier notifier.Notifier
	log      *slog.Logger
	loc      *time.Location
	seen     *seenSet
}

// New builds a worker. dedupeWindow bounds how many recent event ids are
// remembered; loc is the zone used in messages.
func New(n notifier.Notifier, log *slog.Logger, loc *time.Location, dedupeWindow int) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{notifier: n, log: log, loc: loc, seen: newSeenSet(dedupeWindow)}
}

// Run consumes until ctx ends or the delivery channel closes. Handled
// messages are acked, poison messages are rejected without requeue and other
// failures are requeued.
func (w *Worker) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			err := w.Handle(ctx, d.RoutingKey, d.Body)
			switch {
			case err == nil:
				_ = d.Ack(false)
			case errors.Is(err, errPoison):
				w.log.Error("dead-lettering message", "key", d.RoutingKey, "err", err)
				_ = d.Nack(false, false)
			default:
				w.log.Warn("handle failed, requeue", "key", d.RoutingKey, "err", err)
				_ = d.Nack(false, true)
			}
		}
	}
}

func (w *Worker) Handle(ctx context.Context, key string, body []byte) error {
	switch key {
	case events.RKReservationCreated, events.RKReservationUpdated:
		ev, err := events.Decode[events.ReservationChanged](body)
		if err != nil {
			return fmt.Errorf("%w: %w", errPoison, err)
		}
		verb := "created"
		if key == events.RKReservationUpdated {
			verb = "updated"
		}
		return w.once(ev.EventID, func() error {
			return w.notifier.Notify(ctx, "Reservation "+verb,
				fmt.Sprintf("Reservation %d %q for user %d %s (by user %d)",
					ev.ReservationID, ev.Title, ev.OwnerID, notifier.HumanTimeRange(ev.Start, ev.End, w.loc), ev.ActorID))
		})

	case events.RKReservationDeleted:
		ev, err := events.Decode[events.ReservationDeleted](body)
		if err != nil {
			return fmt.Errorf("%w: %w", errPoison, err)
		}
		return w.once(ev.EventID, func() error {
			return w.notifier.Notify(ctx, "Reservation deleted",
				fmt.Sprintf("Reservation %d of user %d was deleted by user %d", ev.ReservationID, ev.OwnerID, ev.ActorID))
		})

	default:
		w.log.Info("skip unknown key", "key", key)
		return nil
	}
}

// once runs fn unless id was already handled. Events without an id are
// always delivered.
func (w *Worker) once(id string, fn func() error) error {
	if id != "" && w.seen.Contains(id) {
		w.log.Debug("duplicate event", "event_id", id)
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	if id != "" {
		w.seen.Add(id)
	}
	return nil
}
