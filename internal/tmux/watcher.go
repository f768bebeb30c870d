package tmux

import (
	"sync"
	"time"
)

// Watcher periodically resyncs a Session against tmux so panes opened or
// killed outside deskpin surface as host events. Syncs go through a rate
// limiter; a dropped tick costs nothing since every sync is a full
// reconciliation.
type Watcher struct {
	sess     *Session
	limiter  *RateLimiter
	interval time.Duration

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewWatcher creates a watcher polling at the given interval, capped at
// perSecond syncs per second.
func NewWatcher(sess *Session, interval time.Duration, perSecond int) *Watcher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if perSecond <= 0 {
		perSecond = 4
	}
	return &Watcher{
		sess:     sess,
		limiter:  NewRateLimiter(perSecond),
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the poll loop.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.limiter.Coalesce(func() {
				if err := w.sess.Sync(); err != nil {
					log.Debug("pane sync failed", "error", err)
				}
			})
		}
	}
}

// Close stops the poll loop and waits for it to finish. No sync runs after
// Close returns. Close is idempotent.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() { close(w.done) })
	w.wg.Wait()
}
