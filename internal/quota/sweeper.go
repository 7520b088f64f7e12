package quota

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper rolls expired windows for every ledger record on a fixed schedule.
// Correctness never depends on it: Decide rolls windows lazily on each
// request. The sweep exists so idle identities' windows stay current and a
// usage snapshot reports honest numbers.
type Sweeper struct {
	cron   *cron.Cron
	logger *log.Logger
}

// NewSweeper schedules SweepAll on the ledger every interval.
func NewSweeper(ledger *Ledger, interval time.Duration, logger *log.Logger) *Sweeper {
	c := cron.New()
	c.Schedule(cron.Every(interval), cron.FuncJob(func() {
		ledger.SweepAll(time.Now())
		logger.Printf("swept %d usage records", ledger.Len())
	}))
	return &Sweeper{cron: c, logger: logger}
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop cancels the schedule and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
