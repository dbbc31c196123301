package clock

import (
	"testing"
	"time"
)

func TestRealClock_NowIsUTC(t *testing.T) {
	before := time.Now()
	actual := RealClock{}.Now()
	after := time.Now()

	if actual.Location() != time.UTC {
		t.Errorf("RealClock.Now() location = %v, want UTC", actual.Location())
	}
	if actual.Before(before.Add(-time.Second)) || actual.After(after.Add(time.Second)) {
		t.Errorf("RealClock.Now() = %v, expected between %v and %v", actual, before, after)
	}
}

func TestFakeClock(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	t.Run("returns fixed time", func(t *testing.T) {
		if !c.Now().Equal(start) {
			t.Errorf("Now() = %v, want %v", c.Now(), start)
		}
	})

	t.Run("advance accumulates", func(t *testing.T) {
		c.Set(start)
		c.Advance(time.Hour)
		c.Advance(30 * time.Minute)
		want := start.Add(90 * time.Minute)
		if !c.Now().Equal(want) {
			t.Errorf("Now() = %v, want %v", c.Now(), want)
		}
	})

	t.Run("set can move backwards", func(t *testing.T) {
		past := start.Add(-24 * time.Hour)
		c.Set(past)
		if !c.Now().Equal(past) {
			t.Errorf("Now() = %v, want %v", c.Now(), past)
		}
	})
}
