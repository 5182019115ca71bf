package websocket

import "sync/atomic"

// connLimiter caps concurrent dashboard connections. A non-positive max
// disables the cap.
type connLimiter struct {
	max    int64
	active atomic.Int64
}

func newConnLimiter(max int) *connLimiter {
	return &connLimiter{max: int64(max)}
}

func (l *connLimiter) acquire() bool {
	if l.max <= 0 {
		l.active.Add(1)
		return true
	}
	for {
		n := l.active.Load()
		if n >= l.max {
			return false
		}
		if l.active.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (l *connLimiter) release() {
	l.active.Add(-1)
}

func (l *connLimiter) count() int {
	return int(l.active.Load())
}
