package db

import (
	"log"
	"time"
)

// runPruneOnce performs a single pass of subscription cleanup, hard-deleting
// rows that were deactivated by delivery failures and have not been seen
// for afterDays days. Explicit unsubscribes are deleted immediately and
// never reach this path.
func runPruneOnce(store Store, afterDays int) error {
	cutoff := time.Now().Add(-time.Duration(afterDays) * 24 * time.Hour)
	n, err := store.PruneInactiveSubscriptions(cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("pruned %d stale inactive subscriptions", n)
	}
	return nil
}

// StartPruneWorker launches a background goroutine that runs the
// subscription cleanup once at startup and then once per day.
func StartPruneWorker(store Store, afterDays int) {
	go func() {
		if err := runPruneOnce(store, afterDays); err != nil {
			log.Printf("subscription prune error (startup): %v", err)
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := runPruneOnce(store, afterDays); err != nil {
				log.Printf("subscription prune error: %v", err)
			}
		}
	}()
}
