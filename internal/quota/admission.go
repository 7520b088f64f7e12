package quota

import (
	"fmt"
	"strconv"
	"time"
)

// Limits holds the per-tier request caps. Values come from deployment
// configuration, not from the ledger.
type Limits struct {
	StandardDaily     int
	StandardMonthly   int
	PrivilegedMonthly int
}

// Window names which quota window a denial hit.
type Window string

const (
	WindowDaily   Window = "daily"
	WindowMonthly Window = "monthly"
)

const (
	dailyResetLayout   = "2006-01-02 15:04:05"
	monthlyResetLayout = "2006-01-02"
)

// Decision is the outcome of one admission check. Denial is a regular value,
// not an error: the only failure mode this subsystem has is "over quota".
type Decision struct {
	Admitted bool

	// Set on denial.
	Reason       string
	Limit        int
	ResetAt      string
	DeniedWindow Window

	// Set on admission. Remaining is "daily/monthly" for standard callers
	// and a single integer for privileged ones, both post-increment.
	UserType  string
	Remaining string
}

// Controller makes the admission decision for each inbound request against
// a shared ledger.
type Controller struct {
	ledger *Ledger
	limits Limits
}

func NewController(ledger *Ledger, limits Limits) *Controller {
	return &Controller{ledger: ledger, limits: limits}
}

// Decide admits or denies a single request from identity at now, charging
// the quota unit on admission. Fetch, rollover, compare and increment all
// run under the ledger lock as one unit, so two concurrent requests can
// never both observe the last free slot.
func (c *Controller) Decide(identity string, tier Tier, now time.Time) Decision {
	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	rec := c.ledger.getOrCreate(identity, tier, now)
	rollWindows(rec, now)

	if tier == TierPrivileged {
		if rec.MonthlyCount >= c.limits.PrivilegedMonthly {
			return Decision{
				Reason:       "Monthly limit exceeded",
				Limit:        c.limits.PrivilegedMonthly,
				ResetAt:      rec.MonthlyWindowStart.Format(monthlyResetLayout),
				DeniedWindow: WindowMonthly,
			}
		}
		rec.MonthlyCount++
		return Decision{
			Admitted:  true,
			UserType:  tier.UserType(),
			Remaining: strconv.Itoa(c.limits.PrivilegedMonthly - rec.MonthlyCount),
		}
	}

	if rec.DailyCount >= c.limits.StandardDaily {
		return Decision{
			Reason:       "Daily free limit exceeded",
			Limit:        c.limits.StandardDaily,
			ResetAt:      rec.DailyWindowStart.Add(24 * time.Hour).Format(dailyResetLayout),
			DeniedWindow: WindowDaily,
		}
	}
	if rec.MonthlyCount >= c.limits.StandardMonthly {
		return Decision{
			Reason:       "Monthly free limit exceeded",
			Limit:        c.limits.StandardMonthly,
			ResetAt:      rec.MonthlyWindowStart.Format(monthlyResetLayout),
			DeniedWindow: WindowMonthly,
		}
	}

	rec.DailyCount++
	rec.MonthlyCount++
	return Decision{
		Admitted: true,
		UserType: tier.UserType(),
		Remaining: fmt.Sprintf("%d/%d",
			c.limits.StandardDaily-rec.DailyCount,
			c.limits.StandardMonthly-rec.MonthlyCount),
	}
}
