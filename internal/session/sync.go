package session

import (
	"sync"
	"time"
)

// DefaultSyncInterval is how often the rest countdown is recomputed.
const DefaultSyncInterval = time.Second

// restSync periodically dispatches SyncRestTimer. It owns no state; the
// controller starts one when the rest timer becomes active and stops it when
// the timer deactivates or the controller closes.
type restSync struct {
	stop chan struct{}
	once sync.Once
}

func startRestSync(interval time.Duration, dispatch func(Action), wg *sync.WaitGroup) *restSync {
	rs := &restSync{stop: make(chan struct{})}
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-rs.stop:
				return
			case <-ticker.C:
				// A stop may have raced the tick.
				select {
				case <-rs.stop:
					return
				default:
				}
				dispatch(SyncRestTimer{})
			}
		}
	}()
	return rs
}

func (rs *restSync) halt() {
	rs.once.Do(func() { close(rs.stop) })
}
