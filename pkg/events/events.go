package events

import (
	"encoding/json"
	"fmt"
)

// Routing keys published on the reservation exchange.
const (
	RKReservationCreated = "reservation.created"
	RKReservationUpdated = "reservation.updated"
	RKReservationDeleted = "reservation.deleted"

	// BindAllReservations matches every reservation event.
	BindAllReservations = "reservation.*"
)

// ReservationChanged is the payload of created and updated events. Start and
// End are unix seconds.
type ReservationChanged struct {
	EventID       string `json:"event_id"`
	ReservationID uint   `json:"reservation_id"`
	OwnerID       uint   `json:"owner_id"`
	ActorID       uint   `json:"actor_id"`
	Title         string `json:"title"`
	Start         int64  `json:"start"`
	End           int64  `json:"end"`
}

type ReservationDeleted struct {
	EventID       string `json:"event_id"`
	ReservationID uint   `json:"reservation_id"`
	OwnerID       uint   `json:"owner_id"`
	ActorID       uint   `json:"actor_id"`
}

func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
