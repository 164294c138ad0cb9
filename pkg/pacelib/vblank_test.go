package pacelib

import "testing"

// TestVBlankTimer_PredictsNextVBlank verifies the oracle targets the first
// interval multiple after now, with the latch a redzone in front of it.
func TestVBlankTimer_PredictsNextVBlank(t *testing.T) {
	clock := &fakeClock{now: 0}
	v := NewVBlankTimer(clock, 16_666_666, 2_000_000)

	clock.set(5_000_000)
	st := v.CalcNextWakeupTime(true)

	if st.TargetRefresh != 16_666_666 {
		t.Fatalf("expected vblank at 16666666, got %d", st.TargetRefresh)
	}
	if st.TargetLatch != 14_666_666 {
		t.Fatalf("expected latch at 14666666, got %d", st.TargetLatch)
	}
	if st.ScheduledWakeup != st.TargetLatch {
		t.Fatalf("oracle wakeup should equal latch, got %d", st.ScheduledWakeup)
	}
}

// TestVBlankTimer_SkipsUnlatchableVBlank verifies that inside the redzone
// the oracle aims at the following vblank instead of an unmeetable latch.
func TestVBlankTimer_SkipsUnlatchableVBlank(t *testing.T) {
	clock := &fakeClock{now: 0}
	v := NewVBlankTimer(clock, 16_666_666, 2_000_000)

	// 15ms: past the 14.66ms latch of the first vblank.
	clock.set(15_000_000)
	st := v.CalcNextWakeupTime(true)

	if st.TargetRefresh != 33_333_332 {
		t.Fatalf("expected second vblank 33333332, got %d", st.TargetRefresh)
	}
	if st.TargetLatch != 31_333_332 {
		t.Fatalf("expected latch 31333332, got %d", st.TargetLatch)
	}
}

// TestVBlankTimer_PeekDoesNotCommit verifies peeks leave the committed
// schedule untouched while non-peek queries record it.
func TestVBlankTimer_PeekDoesNotCommit(t *testing.T) {
	clock := &fakeClock{now: 0}
	v := NewVBlankTimer(clock, 16_666_666, 2_000_000)

	clock.set(1_000_000)
	v.CalcNextWakeupTime(true)
	if got := v.LastCommitted(); got != (ScheduleTime{}) {
		t.Fatalf("peek committed a schedule: %+v", got)
	}

	st := v.CalcNextWakeupTime(false)
	if got := v.LastCommitted(); got != st {
		t.Fatalf("commit not recorded: got %+v want %+v", got, st)
	}
}

// TestVBlankTimer_DefaultsAndClamp verifies zero configuration selects the
// 60Hz defaults and an oversized redzone is clamped inside the interval.
func TestVBlankTimer_DefaultsAndClamp(t *testing.T) {
	v := NewVBlankTimer(&fakeClock{}, 0, 0)
	interval, redzone := v.RefreshInterval()
	if interval != DefaultRefreshInterval || redzone != DefaultRedzone {
		t.Fatalf("expected defaults, got interval=%d redzone=%d", interval, redzone)
	}

	v.SetRefreshInterval(10_000_000, 12_000_000)
	interval, redzone = v.RefreshInterval()
	if redzone >= interval {
		t.Fatalf("redzone %d not clamped below interval %d", redzone, interval)
	}
}
