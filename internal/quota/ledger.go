package quota

import (
	"sort"
	"sync"
	"time"
)

// Tier classifies a caller by credential validity.
type Tier int

const (
	// TierStandard is an IP-identified caller with daily and monthly caps.
	TierStandard Tier = iota
	// TierPrivileged is an allow-listed API key with a monthly cap only.
	TierPrivileged
)

// UserType returns the tier name surfaced to callers in rate-limit headers.
func (t Tier) UserType() string {
	if t == TierPrivileged {
		return "paid"
	}
	return "free"
}

// Record tracks fixed-window usage for one caller identity. The daily fields
// are only meaningful for standard-tier records; privileged callers carry a
// monthly counter alone.
type Record struct {
	Tier               Tier
	DailyCount         int
	DailyWindowStart   time.Time
	MonthlyCount       int
	MonthlyWindowStart time.Time
}

// Ledger holds per-identity usage records behind a single lock. Records are
// created lazily on first sight and never deleted; the map lives for the
// process lifetime.
type Ledger struct {
	mu      sync.Mutex
	records map[string]*Record
}

func NewLedger() *Ledger {
	return &Ledger{records: make(map[string]*Record)}
}

// getOrCreate returns the record for identity, creating a zeroed one with
// window starts at now if none exists. Callers must hold l.mu.
func (l *Ledger) getOrCreate(identity string, tier Tier, now time.Time) *Record {
	if rec, ok := l.records[identity]; ok {
		return rec
	}
	rec := &Record{
		Tier:               tier,
		DailyWindowStart:   now,
		MonthlyWindowStart: now,
	}
	l.records[identity] = rec
	return rec
}

// rollWindows resets expired windows in place. The daily window expires 24h
// after its start; the monthly window expires when the calendar month of now
// differs from the month of its start. Idempotent: a record already in its
// current windows is untouched. Callers must hold the ledger lock.
func rollWindows(rec *Record, now time.Time) {
	if rec.Tier == TierStandard && now.Sub(rec.DailyWindowStart) >= 24*time.Hour {
		rec.DailyCount = 0
		rec.DailyWindowStart = now
	}
	ny, nm, _ := now.Date()
	wy, wm, _ := rec.MonthlyWindowStart.Date()
	if ny != wy || nm != wm {
		rec.MonthlyCount = 0
		rec.MonthlyWindowStart = now
	}
}

// SweepAll rolls expired windows for every record. Identities that stop
// sending requests never reach the lazy rollover in Decide, so the sweep
// keeps their windows current for snapshot inspection.
func (l *Ledger) SweepAll(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, rec := range l.records {
		rollWindows(rec, now)
	}
}

// Len returns the number of distinct identities seen.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// UsageEntry is one row of the usage snapshot.
type UsageEntry struct {
	Identity           string    `json:"identity"`
	Tier               string    `json:"tier"`
	DailyCount         int       `json:"daily_count,omitempty"`
	DailyWindowStart   time.Time `json:"daily_window_start,omitzero"`
	MonthlyCount       int       `json:"monthly_count"`
	MonthlyWindowStart time.Time `json:"monthly_window_start"`
}

// Snapshot returns a copy of every record, sorted by identity.
func (l *Ledger) Snapshot() []UsageEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]UsageEntry, 0, len(l.records))
	for identity, rec := range l.records {
		e := UsageEntry{
			Identity:           identity,
			Tier:               rec.Tier.UserType(),
			MonthlyCount:       rec.MonthlyCount,
			MonthlyWindowStart: rec.MonthlyWindowStart,
		}
		if rec.Tier == TierStandard {
			e.DailyCount = rec.DailyCount
			e.DailyWindowStart = rec.DailyWindowStart
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Identity < entries[j].Identity })
	return entries
}
