package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	window int64
	count  int
}

// MemoryLimiter is a fixed-window limiter held in process memory. Keys
// are client addresses, so counters from past windows are swept once per
// window to keep the map from growing with every address ever seen.
type MemoryLimiter struct {
	window time.Duration

	mu        sync.Mutex
	counters  map[string]*memoryEntry
	lastSweep int64
}

// NewMemoryLimiter constructs a MemoryLimiter. A non-positive window
// defaults to one second.
func NewMemoryLimiter(window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = time.Second
	}
	return &MemoryLimiter{
		window:   window,
		counters: make(map[string]*memoryEntry),
	}
}

// windowIndex numbers the fixed windows since the epoch.
func (l *MemoryLimiter) windowIndex(now time.Time) int64 {
	return now.UnixNano() / int64(l.window)
}

// Allow checks whether the request fits the current window's limit.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	idx := l.windowIndex(now)
	reset := time.Unix(0, (idx+1)*int64(l.window)).UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(idx)

	entry := l.counters[key]
	if entry == nil {
		entry = &memoryEntry{window: idx}
		l.counters[key] = entry
	}
	if entry.window != idx {
		entry.window = idx
		entry.count = 0
	}
	if entry.count >= limit {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	entry.count++
	return Result{Allowed: true, Remaining: limit - entry.count, Reset: reset}, nil
}

// sweep drops counters left over from earlier windows. It runs at most
// once per window, so Allow stays O(1) amortized.
func (l *MemoryLimiter) sweep(idx int64) {
	if idx == l.lastSweep {
		return
	}
	l.lastSweep = idx
	for key, entry := range l.counters {
		if entry.window < idx {
			delete(l.counters, key)
		}
	}
}
