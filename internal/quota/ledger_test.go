package quota

import (
	"testing"
	"time"
)

func TestGetOrCreateZeroed(t *testing.T) {
	l := NewLedger()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	l.mu.Lock()
	rec := l.getOrCreate("1.2.3.4", TierStandard, now)
	l.mu.Unlock()

	if rec.DailyCount != 0 || rec.MonthlyCount != 0 {
		t.Errorf("new record counts = %d/%d, want 0/0", rec.DailyCount, rec.MonthlyCount)
	}
	if !rec.DailyWindowStart.Equal(now) || !rec.MonthlyWindowStart.Equal(now) {
		t.Errorf("new record window starts not set to creation instant")
	}

	l.mu.Lock()
	again := l.getOrCreate("1.2.3.4", TierStandard, now.Add(time.Hour))
	l.mu.Unlock()
	if again != rec {
		t.Error("getOrCreate created a second record for the same identity")
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

func TestRollWindowsDaily(t *testing.T) {
	start := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		now       time.Time
		wantCount int
	}{
		{"under 24h keeps count", start.Add(23 * time.Hour), 2},
		{"exactly 24h resets", start.Add(24 * time.Hour), 0},
		{"over 24h resets", start.Add(30 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Record{
				Tier:               TierStandard,
				DailyCount:         2,
				DailyWindowStart:   start,
				MonthlyCount:       2,
				MonthlyWindowStart: start,
			}
			rollWindows(rec, tt.now)
			if rec.DailyCount != tt.wantCount {
				t.Errorf("DailyCount = %d, want %d", rec.DailyCount, tt.wantCount)
			}
		})
	}
}

func TestRollWindowsMonthlyCalendarBoundary(t *testing.T) {
	// Created late on the last day of March; checked early on April 1st.
	// Less than 24h elapsed, but the calendar month changed.
	start := time.Date(2025, time.March, 31, 20, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.April, 1, 6, 0, 0, 0, time.UTC)

	rec := &Record{
		Tier:               TierPrivileged,
		MonthlyCount:       150,
		MonthlyWindowStart: start,
	}
	rollWindows(rec, now)
	if rec.MonthlyCount != 0 {
		t.Errorf("MonthlyCount = %d, want 0 after calendar-month change", rec.MonthlyCount)
	}
	if !rec.MonthlyWindowStart.Equal(now) {
		t.Errorf("MonthlyWindowStart = %v, want %v", rec.MonthlyWindowStart, now)
	}
}

func TestRollWindowsMonthlyYearBoundary(t *testing.T) {
	// Same month number, one year apart. Must still roll.
	start := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	rec := &Record{Tier: TierPrivileged, MonthlyCount: 10, MonthlyWindowStart: start}
	rollWindows(rec, now)
	if rec.MonthlyCount != 0 {
		t.Errorf("MonthlyCount = %d, want 0 after year change", rec.MonthlyCount)
	}
}

func TestRollWindowsIdempotent(t *testing.T) {
	start := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	now := start.Add(25 * time.Hour)

	rec := &Record{
		Tier:               TierStandard,
		DailyCount:         3,
		DailyWindowStart:   start,
		MonthlyCount:       5,
		MonthlyWindowStart: start,
	}
	rollWindows(rec, now)
	once := *rec
	rollWindows(rec, now)
	if *rec != once {
		t.Errorf("second rollover changed the record: %+v != %+v", *rec, once)
	}
}

func TestSweepAll(t *testing.T) {
	l := NewLedger()
	old := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.April, 2, 12, 0, 0, 0, time.UTC)

	l.mu.Lock()
	stale := l.getOrCreate("stale-ip", TierStandard, old)
	stale.DailyCount = 3
	stale.MonthlyCount = 9
	fresh := l.getOrCreate("fresh-ip", TierStandard, now)
	fresh.DailyCount = 1
	fresh.MonthlyCount = 1
	l.mu.Unlock()

	l.SweepAll(now)

	if stale.DailyCount != 0 || stale.MonthlyCount != 0 {
		t.Errorf("stale record not swept: daily=%d monthly=%d", stale.DailyCount, stale.MonthlyCount)
	}
	if fresh.DailyCount != 1 || fresh.MonthlyCount != 1 {
		t.Errorf("fresh record disturbed by sweep: daily=%d monthly=%d", fresh.DailyCount, fresh.MonthlyCount)
	}
	if l.Len() != 2 {
		t.Errorf("sweep changed record count: Len() = %d, want 2", l.Len())
	}
}

func TestSnapshot(t *testing.T) {
	l := NewLedger()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	l.mu.Lock()
	ip := l.getOrCreate("9.9.9.9", TierStandard, now)
	ip.DailyCount = 2
	ip.MonthlyCount = 7
	key := l.getOrCreate("igk_abc", TierPrivileged, now)
	key.MonthlyCount = 40
	l.mu.Unlock()

	entries := l.Snapshot()
	if len(entries) != 2 {
		t.Fatalf("Snapshot() returned %d entries, want 2", len(entries))
	}
	// Sorted by identity: "9.9.9.9" < "igk_abc".
	if entries[0].Identity != "9.9.9.9" || entries[0].Tier != "free" {
		t.Errorf("entries[0] = %+v, want standard caller first", entries[0])
	}
	if entries[0].DailyCount != 2 || entries[0].MonthlyCount != 7 {
		t.Errorf("entries[0] counts = %d/%d, want 2/7", entries[0].DailyCount, entries[0].MonthlyCount)
	}
	if entries[1].Identity != "igk_abc" || entries[1].Tier != "paid" {
		t.Errorf("entries[1] = %+v, want privileged caller", entries[1])
	}
	if entries[1].DailyCount != 0 {
		t.Errorf("privileged entry carries a daily count: %d", entries[1].DailyCount)
	}
}
