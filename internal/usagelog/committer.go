package usagelog

import (
	"log"
	"time"
)

// Committer writes audit entries asynchronously so a slow disk never sits on
// the request path. A nil *Committer silently drops entries, which is how
// the gateway runs with the audit log disabled.
type Committer struct {
	store  *Store
	logger *log.Logger
}

func NewCommitter(store *Store, logger *log.Logger) *Committer {
	return &Committer{store: store, logger: logger}
}

// RecordAsync logs the entry in a goroutine with retries. Non-blocking.
func (c *Committer) RecordAsync(e Entry) {
	if c == nil || c.store == nil {
		return
	}
	go func() {
		var err error
		for attempt := 1; attempt <= 3; attempt++ {
			if err = c.store.Record(e); err == nil {
				return
			}
			c.logger.Printf("WARN [usagelog] attempt %d failed: %v", attempt, err)
			time.Sleep(time.Duration(attempt) * time.Second)
		}
		c.logger.Printf("ERROR [usagelog] dropped entry request_id=%s: %v", e.RequestID, err)
	}()
}
