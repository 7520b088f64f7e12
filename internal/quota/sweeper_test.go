package quota

import (
	"io"
	"log"
	"testing"
	"time"
)

func TestSweeperRollsIdleRecords(t *testing.T) {
	ledger := NewLedger()
	c := NewController(ledger, testLimits)

	// An identity that stopped sending requests more than a day ago.
	old := time.Now().Add(-25 * time.Hour)
	c.Decide("idle-ip", TierStandard, old)

	sweeper := NewSweeper(ledger, time.Second, log.New(io.Discard, "", 0))
	sweeper.Start()
	defer sweeper.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		entries := ledger.Snapshot()
		if len(entries) == 1 && entries[0].DailyCount == 0 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("sweeper never rolled the idle record: %+v", ledger.Snapshot())
}

func TestSweeperStop(t *testing.T) {
	sweeper := NewSweeper(NewLedger(), time.Second, log.New(io.Discard, "", 0))
	sweeper.Start()

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}
