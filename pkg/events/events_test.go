package events

import "testing"

func TestDecode(t *testing.T) {
	ev, err := Decode[ReservationChanged]([]byte(`{"event_id":"e1","reservation_id":7,"owner_id":2,"actor_id":1,"title":"sync","start":1735722000,"end":1735725600}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ev.ReservationID != 7 || ev.OwnerID != 2 || ev.ActorID != 1 || ev.End-ev.Start != 3600 {
		t.Errorf("unexpected event %+v", ev)
	}

	if _, err := Decode[ReservationDeleted]([]byte(`{"reservation_id":"seven"}`)); err == nil {
		t.Error("expected error for mistyped field")
	}
}
