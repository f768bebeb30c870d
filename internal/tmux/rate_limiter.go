package tmux

import "golang.org/x/time/rate"

// RateLimiter caps how often pane resyncs run. tmux fires a change event per
// output line in busy panes; without a cap the watcher would hammer
// list-panes.
type RateLimiter struct {
	lim *rate.Limiter
}

// NewRateLimiter allows at most perSecond events per second, no bursting.
func NewRateLimiter(perSecond int) *RateLimiter {
	return &RateLimiter{lim: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Allow reports whether an event may proceed now.
func (r *RateLimiter) Allow() bool {
	return r.lim.Allow()
}

// Coalesce runs fn only if the limiter permits it, silently dropping the
// call otherwise. Dropped calls are safe because every sync is a full
// resync, not an increment.
func (r *RateLimiter) Coalesce(fn func()) {
	if r.lim.Allow() {
		fn()
	}
}
