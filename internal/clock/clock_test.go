package clock

import (
	"testing"
	"time"
)

func TestDayKey_UsesClockLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	c := NewReal(loc)
	ts := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC) // 01:30 next day in IST
	if got := DayKey(c, ts); got != "2024-03-02" {
		t.Fatalf("DayKey = %q; want 2024-03-02", got)
	}
}

func TestFake_AdvanceFiresInOrder(t *testing.T) {
	f := NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	var order []int
	f.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	f.AfterFunc(time.Second, func() { order = append(order, 1) })
	stopped := f.AfterFunc(time.Second, func() { order = append(order, 99) })
	if !stopped.Stop() {
		t.Fatalf("Stop should report true on a pending timer")
	}
	if stopped.Stop() {
		t.Fatalf("second Stop should report false")
	}

	f.Advance(1500 * time.Millisecond)
	if len(order) != 1 || order[0] != 1 {
		t.Fatalf("after 1.5s: %v", order)
	}
	f.Advance(time.Second)
	if len(order) != 2 || order[1] != 2 {
		t.Fatalf("after 2.5s: %v", order)
	}
	if f.Pending() != 0 {
		t.Fatalf("pending = %d", f.Pending())
	}
}

func TestFake_CallbackCanRearm(t *testing.T) {
	f := NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	fired := 0
	var arm func()
	arm = func() {
		f.AfterFunc(time.Second, func() {
			fired++
			if fired < 3 {
				arm()
			}
		})
	}
	arm()
	f.Advance(10 * time.Second)
	if fired != 3 {
		t.Fatalf("fired = %d; want 3", fired)
	}
	if got := f.Now(); !got.Equal(time.Date(2024, 1, 1, 0, 0, 10, 0, time.UTC)) {
		t.Fatalf("now = %v", got)
	}
}
